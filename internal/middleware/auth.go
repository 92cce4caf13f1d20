package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ysam020/task-management-assessment/internal/domain"
	"github.com/ysam020/task-management-assessment/internal/handler/dto"
)

type contextKey string

const (
	// ContextKeyCaller is the key for storing the authenticated caller in request context.
	ContextKeyCaller contextKey = "caller"
)

// TokenVerifier validates an access token and returns the caller it identifies.
type TokenVerifier interface {
	VerifyAccess(token string) (domain.Caller, error)
}

// AuthMiddleware handles Bearer token authentication.
type AuthMiddleware struct {
	verifier TokenVerifier
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

// Authenticate validates the Bearer token and adds the caller to request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, domain.ErrUnauthorized)
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			writeError(w, domain.ErrInvalidToken)
			return
		}

		caller, err := m.verifier.VerifyAccess(strings.TrimSpace(token))
		if err != nil {
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyCaller, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects callers whose role differs from role. It must run after
// Authenticate.
func RequireRole(role domain.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, err := CallerFromContext(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if caller.Role != role {
			if role == domain.RoleHR {
				writeError(w, domain.ErrHRRoleRequired)
				return
			}
			writeError(w, domain.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CallerFromContext retrieves the authenticated caller from request context.
func CallerFromContext(ctx context.Context) (domain.Caller, error) {
	caller, ok := ctx.Value(ContextKeyCaller).(domain.Caller)
	if !ok || caller.ID == "" {
		return domain.Caller{}, domain.ErrUnauthorized
	}
	return caller, nil
}

// WithCaller returns a copy of ctx carrying caller.
func WithCaller(ctx context.Context, caller domain.Caller) context.Context {
	return context.WithValue(ctx, ContextKeyCaller, caller)
}

func writeError(w http.ResponseWriter, err error) {
	status, message, fields := dto.MapDomainError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(dto.NewErrorResponse(message, fields)); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}
