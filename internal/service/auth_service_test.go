package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ysam020/task-management-assessment/internal/auth"
	"github.com/ysam020/task-management-assessment/internal/domain"
)

type authFixture struct {
	db     *memDB
	clock  *testClock
	issuer *auth.Issuer
	svc    *AuthService
}

func newAuthFixture() *authFixture {
	db := newMemDB()
	clock := newTestClock()
	issuer := auth.NewIssuer("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour).WithClock(clock.Now)
	svc := NewAuthService(fakeTx{db}, fakeUsers{db}, issuer).WithClock(clock.Now)
	return &authFixture{db: db, clock: clock, issuer: issuer, svc: svc}
}

func (f *authFixture) register(t *testing.T, email string) *AuthResult {
	t.Helper()
	res, err := f.svc.Register(context.Background(), RegisterInput{
		Email:    email,
		Password: "Secret123",
		Name:     "Rita Recruiter",
	})
	require.NoError(t, err)
	return res
}

func TestRegister_DefaultsToInterviewer(t *testing.T) {
	f := newAuthFixture()
	res := f.register(t, "Rita@Example.com")

	assert.Equal(t, domain.RoleInterviewer, res.User.Role)
	assert.Equal(t, "rita@example.com", res.User.Email)
	assert.NotEqual(t, "Secret123", res.User.PasswordHash)

	caller, err := f.issuer.VerifyAccess(res.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, caller.ID)
	assert.Equal(t, domain.RoleInterviewer, caller.Role)

	assert.Contains(t, f.db.tokens, res.Tokens.RefreshToken)
}

func TestRegister_Validation(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.Register(context.Background(), RegisterInput{
		Email:    "bad",
		Password: "alllowercase",
		Name:     "R",
		Role:     "ADMIN",
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be a valid email address", verr.Fields["email"])
	assert.Equal(t, "must contain at least one uppercase letter, one lowercase letter, and one number", verr.Fields["password"])
	assert.Equal(t, "must be at least 2 characters", verr.Fields["name"])
	assert.Equal(t, "must be one of HR, INTERVIEWER", verr.Fields["role"])
}

func TestRegister_DuplicateEmailLeavesNoToken(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "rita@example.com")

	_, err := f.svc.Register(context.Background(), RegisterInput{
		Email: "rita@example.com", Password: "Secret123", Name: "Another",
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	assert.Len(t, f.db.tokens, 1)
}

func TestLogin(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "rita@example.com")
	ctx := context.Background()

	res, err := f.svc.Login(ctx, LoginInput{Email: "rita@example.com", Password: "Secret123"})
	require.NoError(t, err)
	assert.Equal(t, "rita@example.com", res.User.Email)

	_, err = f.svc.Login(ctx, LoginInput{Email: "rita@example.com", Password: "Wrong1234"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "Secret123"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRefresh_RotatesToken(t *testing.T) {
	f := newAuthFixture()
	first := f.register(t, "rita@example.com")
	ctx := context.Background()

	second, err := f.svc.Refresh(ctx, RefreshInput{RefreshToken: first.Tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, first.Tokens.RefreshToken, second.Tokens.RefreshToken)
	assert.NotContains(t, f.db.tokens, first.Tokens.RefreshToken)
	assert.Contains(t, f.db.tokens, second.Tokens.RefreshToken)

	_, err = f.svc.Refresh(ctx, RefreshInput{RefreshToken: first.Tokens.RefreshToken})
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestRefresh_ExpiredTokenIsDeleted(t *testing.T) {
	f := newAuthFixture()
	res := f.register(t, "rita@example.com")

	f.clock.Advance(25 * time.Hour)

	_, err := f.svc.Refresh(context.Background(), RefreshInput{RefreshToken: res.Tokens.RefreshToken})
	assert.ErrorIs(t, err, domain.ErrRefreshTokenExpired)
	assert.NotContains(t, f.db.tokens, res.Tokens.RefreshToken)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	f := newAuthFixture()
	res := f.register(t, "rita@example.com")

	_, err := f.svc.Refresh(context.Background(), RefreshInput{RefreshToken: res.Tokens.AccessToken})
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestLogoutAndMe(t *testing.T) {
	f := newAuthFixture()
	res := f.register(t, "rita@example.com")
	ctx := context.Background()

	me, err := f.svc.Me(ctx, domain.Caller{ID: res.User.ID})
	require.NoError(t, err)
	assert.Equal(t, "Rita Recruiter", me.Name)

	require.NoError(t, f.svc.Logout(ctx, RefreshInput{RefreshToken: res.Tokens.RefreshToken}))
	assert.Empty(t, f.db.tokens)

	_, err = f.svc.Me(ctx, domain.Caller{ID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestPurgeExpiredTokens(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "a@example.com")
	f.clock.Advance(12 * time.Hour)
	f.register(t, "b@example.com")
	f.clock.Advance(13 * time.Hour)

	n, err := f.svc.PurgeExpiredTokens(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Len(t, f.db.tokens, 1)
}
