package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ysam020/task-management-assessment/internal/domain"
	"github.com/ysam020/task-management-assessment/internal/events"
	"github.com/ysam020/task-management-assessment/internal/repository"
)

const (
	defaultTaskPageSize = 10
	maxTaskPageSize     = 100
	defaultRecentTasks  = 5
)

// CreateTaskInput is the body of a task creation request.
type CreateTaskInput struct {
	Title       string            `json:"title" validate:"required,notblank,max=255"`
	Description *string           `json:"description" validate:"omitempty,max=1000"`
	Status      domain.TaskStatus `json:"status" validate:"omitempty,taskstatus"`
}

// UpdateTaskInput is a partial task update. Absent fields are left unchanged.
type UpdateTaskInput struct {
	Title       *string            `json:"title" validate:"omitempty,notblank,max=255"`
	Description *string            `json:"description" validate:"omitempty,max=1000"`
	Status      *domain.TaskStatus `json:"status" validate:"omitempty,taskstatus"`
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Tasks      []*domain.Task
	Pagination domain.Pagination
}

// TaskService coordinates personal task operations. Every operation is scoped
// to the calling user.
type TaskService struct {
	tasks     TaskStore
	publisher events.Publisher
	now       func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks TaskStore, publisher events.Publisher) *TaskService {
	return &TaskService{
		tasks:     tasks,
		publisher: publisherOrNop(publisher),
		now:       time.Now,
	}
}

// getOwnedTask fetches a task and verifies the caller owns it.
func (s *TaskService) getOwnedTask(ctx context.Context, caller domain.Caller, taskID string) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsOwnedBy(caller.ID) {
		return nil, fmt.Errorf("%w: user %s, task %s", domain.ErrNotTaskOwner, caller.ID, taskID)
	}
	return task, nil
}

func (s *TaskService) publish(ctx context.Context, typ domain.EventType, caller domain.Caller, taskID string) {
	s.publisher.Publish(ctx, domain.ChangeEvent{
		Type:       typ,
		EntityID:   taskID,
		ActorID:    caller.ID,
		OccurredAt: s.now(),
	})
}

// ListTasks returns one page of the caller's tasks.
func (s *TaskService) ListTasks(ctx context.Context, caller domain.Caller, f domain.TaskFilter) (*TaskPage, error) {
	f.OwnerID = caller.ID
	f.Page, f.Limit = normalizePage(f.Page, f.Limit, defaultTaskPageSize, maxTaskPageSize)
	if f.Status != nil && !f.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, *f.Status)
	}

	tasks, total, err := s.tasks.List(ctx, f)
	if err != nil {
		return nil, err
	}

	return &TaskPage{
		Tasks:      tasks,
		Pagination: domain.NewPagination(f.Page, f.Limit, total),
	}, nil
}

// GetTask returns one of the caller's tasks.
func (s *TaskService) GetTask(ctx context.Context, caller domain.Caller, taskID string) (*domain.Task, error) {
	return s.getOwnedTask(ctx, caller, taskID)
}

// CreateTask stores a new task owned by the caller.
func (s *TaskService) CreateTask(ctx context.Context, caller domain.Caller, in CreateTaskInput) (*domain.Task, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	task, err := s.tasks.Create(ctx, &domain.Task{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      in.Status,
		OwnerID:     caller.ID,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("task created",
		"task_id", task.ID,
		"owner_id", caller.ID,
		"status", task.Status,
	)
	s.publish(ctx, domain.EventTaskCreated, caller, task.ID)

	return task, nil
}

// UpdateTask applies a partial update to one of the caller's tasks.
func (s *TaskService) UpdateTask(ctx context.Context, caller domain.Caller, taskID string, in UpdateTaskInput) (*domain.Task, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	if in.Title == nil && in.Description == nil && in.Status == nil {
		return nil, domain.ErrNothingToUpdate
	}

	if _, err := s.getOwnedTask(ctx, caller, taskID); err != nil {
		return nil, err
	}

	u := repository.TaskUpdate{Description: in.Description, Status: in.Status}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		u.Title = &title
	}

	task, err := s.tasks.Update(ctx, taskID, u)
	if err != nil {
		return nil, err
	}

	slog.Info("task updated", "task_id", taskID, "owner_id", caller.ID)
	s.publish(ctx, domain.EventTaskUpdated, caller, taskID)

	return task, nil
}

// ToggleTask advances the task to the next status in the
// PENDING -> IN_PROGRESS -> COMPLETED -> PENDING cycle.
func (s *TaskService) ToggleTask(ctx context.Context, caller domain.Caller, taskID string) (*domain.Task, error) {
	before, err := s.getOwnedTask(ctx, caller, taskID)
	if err != nil {
		return nil, err
	}

	task, err := s.tasks.ToggleStatus(ctx, taskID)
	if err != nil {
		return nil, err
	}

	slog.Info("task status toggled",
		"task_id", taskID,
		"old_status", before.Status,
		"new_status", task.Status,
	)
	s.publish(ctx, domain.EventTaskUpdated, caller, taskID)

	return task, nil
}

// DeleteTask removes one of the caller's tasks.
func (s *TaskService) DeleteTask(ctx context.Context, caller domain.Caller, taskID string) error {
	if _, err := s.getOwnedTask(ctx, caller, taskID); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return err
	}

	slog.Info("task deleted", "task_id", taskID, "owner_id", caller.ID)
	s.publish(ctx, domain.EventTaskDeleted, caller, taskID)

	return nil
}

// Stats counts the caller's tasks per status.
func (s *TaskService) Stats(ctx context.Context, caller domain.Caller) (domain.TaskStats, error) {
	return s.tasks.Stats(ctx, caller.ID)
}

// RecentTasks returns the caller's newest tasks.
func (s *TaskService) RecentTasks(ctx context.Context, caller domain.Caller, limit int) ([]*domain.Task, error) {
	if limit < 1 {
		limit = defaultRecentTasks
	}
	if limit > maxTaskPageSize {
		limit = maxTaskPageSize
	}
	return s.tasks.Recent(ctx, caller.ID, limit)
}
