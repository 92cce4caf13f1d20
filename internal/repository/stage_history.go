package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ysam020/task-management-assessment/internal/database"
	"github.com/ysam020/task-management-assessment/internal/domain"
)

// StageHistoryRepository appends and reads the stage audit trail.
// Entries are never updated; they disappear only with their candidate.
type StageHistoryRepository struct {
	db database.Queryer
}

// NewStageHistoryRepository creates a new StageHistoryRepository.
func NewStageHistoryRepository(db database.Queryer) *StageHistoryRepository {
	return &StageHistoryRepository{db: db}
}

// Create appends a history entry and fills in its ID.
func (r *StageHistoryRepository) Create(ctx context.Context, entry *domain.StageHistoryEntry) error {
	query, args, err := psql.
		Insert("stage_history").
		Columns("candidate_id", "from_stage", "to_stage", "reason", "moved_at").
		Values(entry.CandidateID, entry.FromStage, entry.ToStage, entry.Reason, entry.MovedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	q := database.QueryerFromContext(ctx, r.db)
	if err := q.QueryRow(ctx, query, args...).Scan(&entry.ID); err != nil {
		return fmt.Errorf("create stage history entry: %w", err)
	}

	return nil
}

// ListByCandidate returns a candidate's history, newest first.
func (r *StageHistoryRepository) ListByCandidate(ctx context.Context, candidateID string) ([]*domain.StageHistoryEntry, error) {
	query, args, err := psql.
		Select("id", "candidate_id", "from_stage", "to_stage", "reason", "moved_at").
		From("stage_history").
		Where(sq.Eq{"candidate_id": candidateID}).
		OrderBy("moved_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := database.QueryerFromContext(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stage history: %w", err)
	}
	defer rows.Close()

	entries := []*domain.StageHistoryEntry{}
	for rows.Next() {
		var e domain.StageHistoryEntry
		err := rows.Scan(
			&e.ID,
			&e.CandidateID,
			&e.FromStage,
			&e.ToStage,
			&e.Reason,
			&e.MovedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan stage history entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return entries, nil
}

// CountTransitions aggregates the whole audit trail by (from, to) pair.
func (r *StageHistoryRepository) CountTransitions(ctx context.Context) ([]domain.TransitionCount, error) {
	query := `
		SELECT from_stage, to_stage, COUNT(*)
		FROM stage_history
		GROUP BY from_stage, to_stage
		ORDER BY COUNT(*) DESC
	`

	rows, err := database.QueryerFromContext(ctx, r.db).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query transition counts: %w", err)
	}
	defer rows.Close()

	counts := []domain.TransitionCount{}
	for rows.Next() {
		var tc domain.TransitionCount
		if err := rows.Scan(&tc.From, &tc.To, &tc.Count); err != nil {
			return nil, fmt.Errorf("scan transition count: %w", err)
		}
		counts = append(counts, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return counts, nil
}
