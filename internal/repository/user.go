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

var userColumns = []string{"id", "email", "name", "password_hash", "role", "created_at", "updated_at"}

// UserRepository handles database operations for users and their refresh tokens.
type UserRepository struct {
	db database.Queryer
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db database.Queryer) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// Create inserts a user. Emails are stored lower-cased.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.Email = strings.ToLower(u.Email)

	query, args, err := psql.
		Insert("users").
		Columns("email", "name", "password_hash", "role").
		Values(u.Email, u.Name, u.PasswordHash, u.Role).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build Create query for user: %w", err)
	}

	q := database.QueryerFromContext(ctx, r.db)
	if err := q.QueryRow(ctx, query, args...).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return fmt.Errorf("create user: %w", translatePgError(err, domain.ErrEmailTaken))
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getBy(ctx, sq.Eq{"id": id})
}

// GetByEmail retrieves a user by email, ignoring case.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, sq.Eq{"email": strings.ToLower(email)})
}

func (r *UserRepository) getBy(ctx context.Context, pred sq.Eq) (*domain.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").Where(pred).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query for user: %w", err)
	}
	return scanUser(database.QueryerFromContext(ctx, r.db).QueryRow(ctx, query, args...))
}

// CreateRefreshToken stores a refresh token for a user.
func (r *UserRepository) CreateRefreshToken(ctx context.Context, t *domain.RefreshToken) error {
	query, args, err := psql.
		Insert("refresh_tokens").
		Columns("token", "user_id", "expires_at").
		Values(t.Token, t.UserID, t.ExpiresAt).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build CreateRefreshToken query: %w", err)
	}

	q := database.QueryerFromContext(ctx, r.db)
	if err := q.QueryRow(ctx, query, args...).Scan(&t.ID, &t.CreatedAt); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// GetRefreshToken looks up a stored refresh token. Returns ErrInvalidToken if absent.
func (r *UserRepository) GetRefreshToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	query, args, err := psql.
		Select("id", "token", "user_id", "expires_at", "created_at").
		From("refresh_tokens").
		Where(sq.Eq{"token": token}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetRefreshToken query: %w", err)
	}

	var t domain.RefreshToken
	err = database.QueryerFromContext(ctx, r.db).QueryRow(ctx, query, args...).
		Scan(&t.ID, &t.Token, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	return &t, nil
}

// DeleteRefreshToken removes a refresh token. Deleting an unknown token is not an error.
func (r *UserRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	query, args, err := psql.Delete("refresh_tokens").Where(sq.Eq{"token": token}).ToSql()
	if err != nil {
		return fmt.Errorf("build DeleteRefreshToken query: %w", err)
	}
	if _, err := database.QueryerFromContext(ctx, r.db).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

// DeleteExpiredRefreshTokens purges tokens that expired before now and
// returns how many were removed.
func (r *UserRepository) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	query, args, err := psql.Delete("refresh_tokens").Where(sq.LtOrEq{"expires_at": now}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build DeleteExpiredRefreshTokens query: %w", err)
	}
	tag, err := database.QueryerFromContext(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
