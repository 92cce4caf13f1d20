// Package service implements the business rules of the task manager and the
// hiring pipeline on top of the repositories.
package service

import (
	"context"
	"time"

	"github.com/ysam020/task-management-assessment/internal/domain"
	"github.com/ysam020/task-management-assessment/internal/events"
	"github.com/ysam020/task-management-assessment/internal/repository"
)

// TxManager runs a function inside a database transaction carried by the context.
type TxManager interface {
	WithinReadWrite(ctx context.Context, fn func(ctx context.Context) error) error
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// CandidateStore persists candidates.
type CandidateStore interface {
	Create(ctx context.Context, c *domain.Candidate) (*domain.Candidate, error)
	GetByID(ctx context.Context, id string) (*domain.Candidate, error)
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Candidate, error)
	UpdateStage(ctx context.Context, id string, oldStage, newStage domain.Stage, enteredAt time.Time) (*domain.Candidate, error)
	UpdateFields(ctx context.Context, id string, f domain.CandidateFields) (*domain.Candidate, error)
	SetResume(ctx context.Context, id, url string, text *string) (*domain.Candidate, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f domain.CandidateFilter) ([]*domain.Candidate, int, error)
	CountByStage(ctx context.Context) ([]domain.StageCount, int, error)
	RecentlyUpdated(ctx context.Context, limit int) ([]*domain.Candidate, error)
	ListStuck(ctx context.Context, cutoff time.Time) ([]*domain.Candidate, error)
}

// HistoryStore appends and reads the stage audit trail.
type HistoryStore interface {
	Create(ctx context.Context, entry *domain.StageHistoryEntry) error
	ListByCandidate(ctx context.Context, candidateID string) ([]*domain.StageHistoryEntry, error)
	CountTransitions(ctx context.Context) ([]domain.TransitionCount, error)
}

// FeedbackStore persists interviewer feedback.
type FeedbackStore interface {
	Create(ctx context.Context, f *domain.Feedback) error
	GetByID(ctx context.Context, id string) (*domain.Feedback, error)
	ListByCandidate(ctx context.Context, candidateID string, limit int) ([]*domain.Feedback, error)
	Delete(ctx context.Context, id string) error
}

// NoteStore persists candidate notes.
type NoteStore interface {
	Create(ctx context.Context, n *domain.Note) error
	GetByID(ctx context.Context, id string) (*domain.Note, error)
	ListByCandidate(ctx context.Context, candidateID string, limit int) ([]*domain.Note, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
}

// TaskStore persists personal tasks.
type TaskStore interface {
	GetByID(ctx context.Context, taskID string) (*domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, taskID string, u repository.TaskUpdate) (*domain.Task, error)
	ToggleStatus(ctx context.Context, taskID string) (*domain.Task, error)
	Delete(ctx context.Context, taskID string) error
	List(ctx context.Context, f domain.TaskFilter) ([]*domain.Task, int, error)
	Recent(ctx context.Context, ownerID string, limit int) ([]*domain.Task, error)
	Stats(ctx context.Context, ownerID string) (domain.TaskStats, error)
}

// UserStore persists accounts and their refresh tokens.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateRefreshToken(ctx context.Context, t *domain.RefreshToken) error
	GetRefreshToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

// publisherOrNop lets callers pass a nil publisher.
func publisherOrNop(p events.Publisher) events.Publisher {
	if p == nil {
		return events.NopPublisher{}
	}
	return p
}

func stagePtr(s domain.Stage) *domain.Stage {
	return &s
}

// normalizePage applies the listing defaults and caps the page size.
func normalizePage(page, limit, defaultLimit, maxLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
