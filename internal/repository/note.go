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

var noteColumns = []string{
	"n.id", "n.candidate_id", "n.user_id", "u.name", "n.content",
	"n.created_at", "n.updated_at",
}

// NoteRepository handles database operations for candidate notes.
type NoteRepository struct {
	db database.Queryer
}

// NewNoteRepository creates a new NoteRepository.
func NewNoteRepository(db database.Queryer) *NoteRepository {
	return &NoteRepository{db: db}
}

func scanNote(row pgx.Row) (*domain.Note, error) {
	var n domain.Note
	err := row.Scan(&n.ID, &n.CandidateID, &n.UserID, &n.UserName, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, fmt.Errorf("scan note: %w", err)
	}
	return &n, nil
}

// Create inserts a note and fills in its ID and timestamps.
func (r *NoteRepository) Create(ctx context.Context, n *domain.Note) error {
	query, args, err := psql.
		Insert("notes").
		Columns("candidate_id", "user_id", "content").
		Values(n.CandidateID, n.UserID, n.Content).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build Create query for note: %w", err)
	}

	q := database.QueryerFromContext(ctx, r.db)
	if err := q.QueryRow(ctx, query, args...).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

// GetByID retrieves a note with its author's name.
func (r *NoteRepository) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	query, args, err := psql.
		Select(noteColumns...).
		From("notes n").
		Join("users u ON u.id = n.user_id").
		Where(sq.Eq{"n.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for note: %w", err)
	}

	return scanNote(database.QueryerFromContext(ctx, r.db).QueryRow(ctx, query, args...))
}

// ListByCandidate returns notes for a candidate, newest first. A limit of
// zero returns everything.
func (r *NoteRepository) ListByCandidate(ctx context.Context, candidateID string, limit int) ([]*domain.Note, error) {
	qb := psql.
		Select(noteColumns...).
		From("notes n").
		Join("users u ON u.id = n.user_id").
		Where(sq.Eq{"n.candidate_id": candidateID}).
		OrderBy("n.created_at DESC")
	if limit > 0 {
		qb = qb.Limit(uint64(limit))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListByCandidate query for notes: %w", err)
	}

	rows, err := database.QueryerFromContext(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	notes := []*domain.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return notes, nil
}

// UpdateContent replaces the text of a note.
func (r *NoteRepository) UpdateContent(ctx context.Context, id, content string) error {
	query, args, err := psql.
		Update("notes").
		Set("content", content).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build UpdateContent query for note %s: %w", id, err)
	}

	tag, err := database.QueryerFromContext(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

// Delete removes a note by ID.
func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("notes").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build Delete query for note: %w", err)
	}

	tag, err := database.QueryerFromContext(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}
