package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/ysam020/task-management-assessment/internal/database"
	"github.com/ysam020/task-management-assessment/internal/domain"
)

var feedbackColumns = []string{
	"f.id", "f.candidate_id", "f.user_id", "u.name", "f.stage", "f.rating",
	"f.comment", "f.created_at", "f.updated_at",
}

// FeedbackRepository handles database operations for interview feedback.
type FeedbackRepository struct {
	db database.Queryer
}

// NewFeedbackRepository creates a new FeedbackRepository.
func NewFeedbackRepository(db database.Queryer) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func scanFeedback(row pgx.Row) (*domain.Feedback, error) {
	var f domain.Feedback
	err := row.Scan(
		&f.ID,
		&f.CandidateID,
		&f.UserID,
		&f.UserName,
		&f.Stage,
		&f.Rating,
		&f.Comment,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFeedbackNotFound
		}
		return nil, fmt.Errorf("scan feedback: %w", err)
	}
	return &f, nil
}

// Create inserts feedback and fills in its ID and timestamps.
func (r *FeedbackRepository) Create(ctx context.Context, f *domain.Feedback) error {
	query, args, err := psql.
		Insert("feedbacks").
		Columns("candidate_id", "user_id", "stage", "rating", "comment").
		Values(f.CandidateID, f.UserID, f.Stage, f.Rating, f.Comment).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build Create query for feedback: %w", err)
	}

	q := database.QueryerFromContext(ctx, r.db)
	if err := q.QueryRow(ctx, query, args...).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}

// GetByID retrieves feedback with its author's name.
func (r *FeedbackRepository) GetByID(ctx context.Context, id string) (*domain.Feedback, error) {
	query, args, err := psql.
		Select(feedbackColumns...).
		From("feedbacks f").
		Join("users u ON u.id = f.user_id").
		Where(sq.Eq{"f.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for feedback: %w", err)
	}

	return scanFeedback(database.QueryerFromContext(ctx, r.db).QueryRow(ctx, query, args...))
}

// ListByCandidate returns feedback for a candidate, newest first. A limit of
// zero returns everything.
func (r *FeedbackRepository) ListByCandidate(ctx context.Context, candidateID string, limit int) ([]*domain.Feedback, error) {
	qb := psql.
		Select(feedbackColumns...).
		From("feedbacks f").
		Join("users u ON u.id = f.user_id").
		Where(sq.Eq{"f.candidate_id": candidateID}).
		OrderBy("f.created_at DESC")
	if limit > 0 {
		qb = qb.Limit(uint64(limit))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListByCandidate query for feedback: %w", err)
	}

	rows, err := database.QueryerFromContext(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	feedbacks := []*domain.Feedback{}
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		feedbacks = append(feedbacks, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return feedbacks, nil
}

// Delete removes feedback by ID.
func (r *FeedbackRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("feedbacks").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build Delete query for feedback: %w", err)
	}

	tag, err := database.QueryerFromContext(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFeedbackNotFound
	}
	return nil
}
