package repository

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/ysam020/task-management-assessment/internal/domain"
)

var taskSortColumns = map[domain.TaskSortField]string{
	domain.TaskSortCreatedAt: "created_at",
	domain.TaskSortUpdatedAt: "updated_at",
	domain.TaskSortTitle:     "title",
}

func taskFilterClauses(f domain.TaskFilter) sq.And {
	clauses := sq.And{sq.Eq{"owner_id": f.OwnerID}}

	if f.Status != nil {
		clauses = append(clauses, sq.Eq{"status": *f.Status})
	}

	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := likePattern(search)
		clauses = append(clauses, sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"description": pattern},
		})
	}

	return clauses
}

// List retrieves one page of an owner's tasks and the total number of matches.
func (r *TaskRepository) List(ctx context.Context, f domain.TaskFilter) ([]*domain.Task, int, error) {
	where := taskFilterClauses(f)

	column, ok := taskSortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if f.SortDesc {
		direction = "DESC"
	}

	qb := psql.Select(taskColumns...).From("tasks").
		Where(where).
		OrderBy(column+" "+direction, "id ASC")
	if f.Limit > 0 {
		qb = qb.Limit(uint64(f.Limit))
		if f.Page > 1 {
			qb = qb.Offset(uint64((f.Page - 1) * f.Limit))
		}
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build List query: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query tasks: %w", err)
	}

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, 0, err
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("tasks").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := r.q(ctx).QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	return tasks, total, nil
}

// Recent returns an owner's most recently created tasks.
func (r *TaskRepository) Recent(ctx context.Context, ownerID string, limit int) ([]*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Recent query: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent tasks: %w", err)
	}

	return scanTasks(rows)
}
