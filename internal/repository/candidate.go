package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/ysam020/task-management-assessment/internal/database"
	"github.com/ysam020/task-management-assessment/internal/domain"
)

// candidateColumns is the shared list of columns for candidate queries.
var candidateColumns = []string{
	"id", "name", "email", "phone", "position", "experience", "skills",
	"resume_url", "resume_text", "stage", "stage_entered_at",
	"created_at", "updated_at",
}

var candidateReturning = "RETURNING " + strings.Join(candidateColumns, ", ")

// CandidateRepository handles database operations for candidates.
type CandidateRepository struct {
	db database.Queryer
}

// NewCandidateRepository creates a new CandidateRepository.
func NewCandidateRepository(db database.Queryer) *CandidateRepository {
	return &CandidateRepository{db: db}
}

func (r *CandidateRepository) q(ctx context.Context) database.Queryer {
	return database.QueryerFromContext(ctx, r.db)
}

// scanCandidate scans a single row into a Candidate struct.
func scanCandidate(row pgx.Row) (*domain.Candidate, error) {
	var c domain.Candidate
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Position,
		&c.Experience,
		&c.Skills,
		&c.ResumeURL,
		&c.ResumeText,
		&c.Stage,
		&c.StageEnteredAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCandidateNotFound
		}
		return nil, fmt.Errorf("scan candidate: %w", err)
	}
	if c.Skills == nil {
		c.Skills = []string{}
	}
	return &c, nil
}

// scanCandidates scans multiple rows into a slice of Candidate structs.
func scanCandidates(rows pgx.Rows) ([]*domain.Candidate, error) {
	defer rows.Close()

	candidates := []*domain.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return candidates, nil
}

// Create inserts a candidate with the given stage and entry time.
func (r *CandidateRepository) Create(ctx context.Context, c *domain.Candidate) (*domain.Candidate, error) {
	if c.Skills == nil {
		c.Skills = []string{}
	}

	query, args, err := psql.
		Insert("candidates").
		Columns(
			"name", "email", "phone", "position", "experience", "skills",
			"stage", "stage_entered_at",
		).
		Values(
			c.Name,
			c.Email,
			c.Phone,
			c.Position,
			c.Experience,
			c.Skills,
			c.Stage,
			c.StageEnteredAt,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for candidate: %w", err)
	}

	err = r.q(ctx).QueryRow(ctx, query, args...).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create candidate: %w", translatePgError(err, domain.ErrEmailTaken))
	}

	return c, nil
}

// GetByID retrieves a candidate by ID.
func (r *CandidateRepository) GetByID(ctx context.Context, id string) (*domain.Candidate, error) {
	query, args, err := psql.
		Select(candidateColumns...).
		From("candidates").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for candidate: %w", err)
	}

	return scanCandidate(r.q(ctx).QueryRow(ctx, query, args...))
}

// GetByIDForUpdate retrieves a candidate and locks its row until the
// surrounding transaction ends.
func (r *CandidateRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Candidate, error) {
	query, args, err := psql.
		Select(candidateColumns...).
		From("candidates").
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByIDForUpdate query for candidate %s: %w", id, err)
	}

	return scanCandidate(r.q(ctx).QueryRow(ctx, query, args...))
}

// UpdateStage moves the candidate to a new stage only if it is still in
// oldStage. Returns ErrStageChanged if another writer got there first.
func (r *CandidateRepository) UpdateStage(
	ctx context.Context,
	id string,
	oldStage domain.Stage,
	newStage domain.Stage,
	enteredAt time.Time,
) (*domain.Candidate, error) {
	query, args, err := psql.
		Update("candidates").
		Set("stage", newStage).
		Set("stage_entered_at", enteredAt).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{
			"id":    id,
			"stage": oldStage,
		}).
		Suffix(candidateReturning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build UpdateStage query for candidate %s: %w", id, err)
	}

	c, err := scanCandidate(r.q(ctx).QueryRow(ctx, query, args...))
	if errors.Is(err, domain.ErrCandidateNotFound) {
		return nil, fmt.Errorf("%w: %s is no longer in %s", domain.ErrStageChanged, id, oldStage)
	}
	return c, err
}

// UpdateFields applies contact field changes. Stage fields are never touched here.
func (r *CandidateRepository) UpdateFields(ctx context.Context, id string, f domain.CandidateFields) (*domain.Candidate, error) {
	qb := psql.Update("candidates").Set("updated_at", sq.Expr("NOW()"))
	if f.Name != nil {
		qb = qb.Set("name", *f.Name)
	}
	if f.Email != nil {
		qb = qb.Set("email", *f.Email)
	}
	if f.Phone != nil {
		qb = qb.Set("phone", *f.Phone)
	}
	if f.Position != nil {
		qb = qb.Set("position", *f.Position)
	}
	if f.Experience != nil {
		qb = qb.Set("experience", *f.Experience)
	}
	if f.Skills != nil {
		qb = qb.Set("skills", f.Skills)
	}

	query, args, err := qb.
		Where(sq.Eq{"id": id}).
		Suffix(candidateReturning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build UpdateFields query for candidate %s: %w", id, err)
	}

	c, err := scanCandidate(r.q(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translatePgError(err, domain.ErrEmailTaken)
	}
	return c, nil
}

// SetResume stores the resume location and its extracted text.
func (r *CandidateRepository) SetResume(ctx context.Context, id, url string, text *string) (*domain.Candidate, error) {
	query, args, err := psql.
		Update("candidates").
		Set("resume_url", url).
		Set("resume_text", text).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix(candidateReturning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build SetResume query for candidate %s: %w", id, err)
	}

	return scanCandidate(r.q(ctx).QueryRow(ctx, query, args...))
}

// Delete removes a candidate. History, feedback and notes cascade.
func (r *CandidateRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.
		Delete("candidates").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Delete query for candidate %s: %w", id, err)
	}

	tag, err := r.q(ctx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCandidateNotFound
	}
	return nil
}

// ListStuck returns candidates that entered their current stage before cutoff,
// oldest first.
func (r *CandidateRepository) ListStuck(ctx context.Context, cutoff time.Time) ([]*domain.Candidate, error) {
	query, args, err := psql.
		Select(candidateColumns...).
		From("candidates").
		Where(sq.Lt{"stage_entered_at": cutoff}).
		OrderBy("stage_entered_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListStuck query: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stuck candidates: %w", err)
	}

	return scanCandidates(rows)
}
