package domain

import "time"

// Role determines which operations a user may perform.
type Role string

const (
	RoleHR          Role = "HR"
	RoleInterviewer Role = "INTERVIEWER"
)

// IsValid checks if the role is one of the allowed values.
func (r Role) IsValid() bool {
	return r == RoleHR || r == RoleInterviewer
}

// User is an authenticated account.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Caller is the identity extracted from a verified access token.
type Caller struct {
	ID    string
	Email string
	Role  Role
}

// IsHR returns true if the caller holds the HR role.
func (c Caller) IsHR() bool {
	return c.Role == RoleHR
}

// CanModify reports whether the caller may edit or delete a record authored by authorID.
func (c Caller) CanModify(authorID string) bool {
	return c.ID == authorID || c.IsHR()
}

// RefreshToken is a persisted refresh credential.
type RefreshToken struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpiredAt reports whether the token is no longer usable at the given instant.
func (t *RefreshToken) IsExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
