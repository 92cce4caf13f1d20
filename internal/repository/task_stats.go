package repository

import (
	"context"
	"fmt"

	"github.com/ysam020/task-management-assessment/internal/domain"
)

// Stats counts an owner's tasks per status with a single aggregate query.
func (r *TaskRepository) Stats(ctx context.Context, ownerID string) (domain.TaskStats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(CASE WHEN status = 'PENDING' THEN 1 END) AS pending,
			COUNT(CASE WHEN status = 'IN_PROGRESS' THEN 1 END) AS in_progress,
			COUNT(CASE WHEN status = 'COMPLETED' THEN 1 END) AS completed
		FROM tasks
		WHERE owner_id = $1
	`

	var stats domain.TaskStats
	err := r.q(ctx).QueryRow(ctx, query, ownerID).Scan(
		&stats.Total,
		&stats.Pending,
		&stats.InProgress,
		&stats.Completed,
	)
	if err != nil {
		return domain.TaskStats{}, fmt.Errorf("query task stats: %w", err)
	}

	return stats, nil
}
