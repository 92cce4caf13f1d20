package domain

import (
	"fmt"
	"time"
)

// TaskStatus represents the status of a personal task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
)

// IsValid checks if the status is one of the allowed values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// Next returns the cyclic successor used by the toggle operation:
// PENDING -> IN_PROGRESS -> COMPLETED -> PENDING.
func (s TaskStatus) Next() TaskStatus {
	switch s {
	case TaskStatusPending:
		return TaskStatusInProgress
	case TaskStatusInProgress:
		return TaskStatusCompleted
	default:
		return TaskStatusPending
	}
}

// ParseTaskStatus validates a raw status token.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	s := TaskStatus(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// Task is a personal to-do item owned by a single user.
type Task struct {
	ID          string
	Title       string
	Description *string
	Status      TaskStatus
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOwnedBy checks if the task belongs to the given user.
func (t *Task) IsOwnedBy(userID string) bool {
	return t.OwnerID == userID
}

// TaskSortField is a column tasks can be ordered by.
type TaskSortField string

const (
	TaskSortCreatedAt TaskSortField = "createdAt"
	TaskSortUpdatedAt TaskSortField = "updatedAt"
	TaskSortTitle     TaskSortField = "title"
)

// TaskFilter narrows task listings for one owner.
type TaskFilter struct {
	OwnerID  string
	Status   *TaskStatus
	Search   string
	SortBy   TaskSortField
	SortDesc bool
	Page     int
	Limit    int
}

// TaskStats counts an owner's tasks per status.
type TaskStats struct {
	Total      int
	Pending    int
	InProgress int
	Completed  int
}

// Adjust adds delta to the bucket for the given status and to the total.
func (s *TaskStats) Adjust(status TaskStatus, delta int) {
	s.Total += delta
	switch status {
	case TaskStatusPending:
		s.Pending += delta
	case TaskStatusInProgress:
		s.InProgress += delta
	case TaskStatusCompleted:
		s.Completed += delta
	}
}

// Move shifts one task from one status bucket to another.
func (s *TaskStats) Move(from, to TaskStatus) {
	if from == to {
		return
	}
	s.Adjust(from, -1)
	s.Adjust(to, 1)
}
