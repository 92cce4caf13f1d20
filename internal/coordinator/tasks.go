package coordinator

import (
	"context"
	"fmt"

	"github.com/ysam020/task-management-assessment/internal/client"
	"github.com/ysam020/task-management-assessment/internal/domain"
	"github.com/ysam020/task-management-assessment/internal/handler/dto"
	"github.com/ysam020/task-management-assessment/internal/service"
)

// TaskAPI is the part of the REST client the task store uses.
type TaskAPI interface {
	ListTasks(ctx context.Context, q client.TaskQuery) (dto.TasksListResponse, error)
	TaskStats(ctx context.Context) (dto.TaskStatsResponse, error)
	CreateTask(ctx context.Context, in service.CreateTaskInput) (dto.TaskResponse, error)
	UpdateTask(ctx context.Context, id string, in service.UpdateTaskInput) (dto.TaskResponse, error)
	ToggleTask(ctx context.Context, id string) (dto.TaskResponse, error)
	DeleteTask(ctx context.Context, id string) error
}

// Tasks is the optimistic store for the caller's task list.
type Tasks struct {
	*Store[dto.TaskResponse, client.TaskQuery, dto.TaskStatsResponse]
	api TaskAPI
}

// NewTasks creates a task store backed by api.
func NewTasks(api TaskAPI) *Tasks {
	return &Tasks{
		api: api,
		Store: New(Options[dto.TaskResponse, client.TaskQuery, dto.TaskStatsResponse]{
			ID: func(t dto.TaskResponse) string { return t.ID },
			List: func(ctx context.Context, q client.TaskQuery) (Page[dto.TaskResponse], error) {
				res, err := api.ListTasks(ctx, q)
				if err != nil {
					return Page[dto.TaskResponse]{}, err
				}
				return Page[dto.TaskResponse]{Items: res.Tasks, Total: res.Pagination.Total}, nil
			},
			FilterKey: func(q client.TaskQuery) string {
				return fmt.Sprintf("page=%d&limit=%d&status=%s&search=%s", q.Page, q.Limit, q.Status, q.Search)
			},
			Stats: api.TaskStats,
		}),
	}
}

// Create adds a task once the server has assigned its ID.
func (t *Tasks) Create(ctx context.Context, in service.CreateTaskInput) (dto.TaskResponse, error) {
	status := in.Status
	if status == "" {
		status = domain.TaskStatusPending
	}
	return t.Store.Create(ctx,
		func(s *dto.TaskStatsResponse) { bump(s, string(status), 1) },
		func(ctx context.Context) (dto.TaskResponse, error) { return t.api.CreateTask(ctx, in) },
	)
}

// Toggle advances the status locally to its cyclic successor.
func (t *Tasks) Toggle(ctx context.Context, id string) (dto.TaskResponse, error) {
	return t.Store.Update(ctx, id,
		func(task dto.TaskResponse) dto.TaskResponse {
			task.Status = string(domain.TaskStatus(task.Status).Next())
			return task
		},
		moveBucket,
		func(ctx context.Context) (dto.TaskResponse, error) { return t.api.ToggleTask(ctx, id) },
	)
}

// Update applies the non-nil fields locally and sends them to the server.
func (t *Tasks) Update(ctx context.Context, id string, in service.UpdateTaskInput) (dto.TaskResponse, error) {
	return t.Store.Update(ctx, id,
		func(task dto.TaskResponse) dto.TaskResponse {
			if in.Title != nil {
				task.Title = *in.Title
			}
			if in.Description != nil {
				task.Description = in.Description
			}
			if in.Status != nil {
				task.Status = string(*in.Status)
			}
			return task
		},
		moveBucket,
		func(ctx context.Context) (dto.TaskResponse, error) { return t.api.UpdateTask(ctx, id, in) },
	)
}

// Delete removes the task locally before the server confirms.
func (t *Tasks) Delete(ctx context.Context, id string) error {
	return t.Store.Delete(ctx, id,
		func(s *dto.TaskStatsResponse, task dto.TaskResponse) { bump(s, task.Status, -1) },
		func(ctx context.Context) error { return t.api.DeleteTask(ctx, id) },
	)
}

func moveBucket(s *dto.TaskStatsResponse, before, after dto.TaskResponse) {
	if before.Status == after.Status {
		return
	}
	bucket(s, before.Status, -1)
	bucket(s, after.Status, 1)
}

// bump adjusts one status bucket and the total.
func bump(s *dto.TaskStatsResponse, status string, delta int) {
	s.Total += delta
	bucket(s, status, delta)
}

func bucket(s *dto.TaskStatsResponse, status string, delta int) {
	switch domain.TaskStatus(status) {
	case domain.TaskStatusPending:
		s.Pending += delta
	case domain.TaskStatusInProgress:
		s.InProgress += delta
	case domain.TaskStatusCompleted:
		s.Completed += delta
	}
}
