package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ysam020/task-management-assessment/internal/auth"
	"github.com/ysam020/task-management-assessment/internal/domain"
)

// RegisterInput is the body of a sign-up request.
type RegisterInput struct {
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=8,password"`
	Name     string      `json:"name" validate:"required,notblank,min=2"`
	Role     domain.Role `json:"role" validate:"omitempty,role"`
}

// LoginInput is the body of a sign-in request.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshInput carries a refresh token for rotation or logout.
type RefreshInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AuthResult is returned by sign-up, sign-in and refresh.
type AuthResult struct {
	User   *domain.User
	Tokens auth.TokenPair
}

// AuthService handles accounts and token lifecycles.
type AuthService struct {
	tx     TxManager
	users  UserStore
	issuer *auth.Issuer
	now    func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(tx TxManager, users UserStore, issuer *auth.Issuer) *AuthService {
	return &AuthService{
		tx:     tx,
		users:  users,
		issuer: issuer,
		now:    time.Now,
	}
}

// WithClock replaces the time source.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = domain.RoleInterviewer
	}

	user := &domain.User{
		Email:        strings.TrimSpace(in.Email),
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
		Role:         role,
	}

	var result *AuthResult
	err = s.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		result, err = s.signIn(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("user registered",
		"user_id", user.ID,
		"role", user.Role,
	)

	return result, nil
}

// Login verifies credentials and issues a token pair. Unknown emails and wrong
// passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.CheckPassword(user.PasswordHash, in.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	var result *AuthResult
	err = s.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		result, err = s.signIn(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("user logged in", "user_id", user.ID)

	return result, nil
}

// Refresh rotates a refresh token: the presented token is consumed and a new
// pair is issued. Expired tokens are deleted and rejected.
func (s *AuthService) Refresh(ctx context.Context, in RefreshInput) (*AuthResult, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	result, err := s.rotate(ctx, in.RefreshToken)
	if errors.Is(err, domain.ErrRefreshTokenExpired) {
		if delErr := s.users.DeleteRefreshToken(ctx, in.RefreshToken); delErr != nil {
			slog.Warn("failed to delete expired refresh token", "error", delErr)
		}
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *AuthService) rotate(ctx context.Context, token string) (*AuthResult, error) {
	userID, err := s.issuer.VerifyRefresh(token)
	if err != nil {
		return nil, err
	}

	var result *AuthResult
	err = s.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		stored, err := s.users.GetRefreshToken(ctx, token)
		if err != nil {
			return err
		}
		if stored.UserID != userID {
			return fmt.Errorf("%w: token subject mismatch", domain.ErrInvalidToken)
		}
		if stored.IsExpiredAt(s.now()) {
			return domain.ErrRefreshTokenExpired
		}
		if err := s.users.DeleteRefreshToken(ctx, token); err != nil {
			return err
		}

		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return domain.ErrInvalidToken
			}
			return err
		}

		result, err = s.signIn(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Logout forgets a refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, in RefreshInput) error {
	if err := Validate(in); err != nil {
		return err
	}
	return s.users.DeleteRefreshToken(ctx, in.RefreshToken)
}

// Me returns the account behind the caller.
func (s *AuthService) Me(ctx context.Context, caller domain.Caller) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// PurgeExpiredTokens deletes refresh tokens past their expiry.
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.users.DeleteExpiredRefreshTokens(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge expired refresh tokens: %w", err)
	}
	if n > 0 {
		slog.Info("purged expired refresh tokens", "count", n)
	}
	return n, nil
}

func (s *AuthService) signIn(ctx context.Context, user *domain.User) (*AuthResult, error) {
	pair, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}

	err = s.users.CreateRefreshToken(ctx, &domain.RefreshToken{
		Token:     pair.RefreshToken,
		UserID:    user.ID,
		ExpiresAt: pair.RefreshExpiresAt,
	})
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Tokens: pair}, nil
}
