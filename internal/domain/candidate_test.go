package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCandidate_IsStuckAt(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		entered time.Time
		want    bool
	}{
		{"just created", now, false},
		{"exactly two days", now.Add(-StuckThreshold), false},
		{"two days and a second", now.Add(-StuckThreshold - time.Second), true},
		{"three days in L1", now.Add(-72 * time.Hour), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Candidate{Stage: StageL1, StageEnteredAt: tt.entered}
			assert.Equal(t, tt.want, c.IsStuckAt(now))
		})
	}
}

func TestCallerCanModify(t *testing.T) {
	author := Caller{ID: "u1", Role: RoleInterviewer}
	other := Caller{ID: "u2", Role: RoleInterviewer}
	hr := Caller{ID: "u3", Role: RoleHR}

	assert.True(t, author.CanModify("u1"))
	assert.False(t, other.CanModify("u1"))
	assert.True(t, hr.CanModify("u1"))
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"name": "is required", "email": "must be a valid email"}}
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation failed: email: must be a valid email; name: is required", err.Error())
}
