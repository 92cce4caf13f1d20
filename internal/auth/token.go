// Package auth issues and verifies JWT access and refresh tokens and hashes
// passwords with bcrypt.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ysam020/task-management-assessment/internal/domain"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims is the JWT payload for both token kinds.
type Claims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	Type  string      `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair is the result of a login, registration or refresh.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Issuer signs and verifies tokens with HMAC-SHA256.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewIssuer creates an Issuer. The refresh secret falls back to the access
// secret when empty.
func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	if refreshSecret == "" {
		refreshSecret = accessSecret
	}
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// WithClock replaces the time source used for issuing and validating tokens.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// Issue creates a fresh access and refresh token for the user.
func (i *Issuer) Issue(u *domain.User) (TokenPair, error) {
	access, _, err := i.sign(u, tokenTypeAccess, i.accessTTL, i.accessSecret)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExp, err := i.sign(u, tokenTypeRefresh, i.refreshTTL, i.refreshSecret)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (i *Issuer) sign(u *domain.User, typ string, ttl time.Duration, secret []byte) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(ttl)
	claims := Claims{
		Email: u.Email,
		Role:  u.Role,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, exp, nil
}

// VerifyAccess validates an access token and returns the caller it identifies.
func (i *Issuer) VerifyAccess(token string) (domain.Caller, error) {
	claims, err := i.parse(token, tokenTypeAccess, i.accessSecret)
	if err != nil {
		return domain.Caller{}, err
	}
	if !claims.Role.IsValid() {
		return domain.Caller{}, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidToken, claims.Role)
	}
	return domain.Caller{ID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}

// VerifyRefresh validates the signature and expiry of a refresh token and
// returns the user ID it was issued to.
func (i *Issuer) VerifyRefresh(token string) (string, error) {
	claims, err := i.parse(token, tokenTypeRefresh, i.refreshSecret)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (i *Issuer) parse(token, typ string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) && typ == tokenTypeRefresh {
			return nil, domain.ErrRefreshTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if claims.Type != typ {
		return nil, fmt.Errorf("%w: expected %s token", domain.ErrInvalidToken, typ)
	}
	return claims, nil
}
