package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ysam020/task-management-assessment/internal/domain"
)

func newTaskFixture() (*memDB, *recordingPublisher, *TaskService) {
	db := newMemDB()
	pub := &recordingPublisher{}
	svc := NewTaskService(fakeTasks{db}, pub)
	svc.now = newTestClock().Now
	return db, pub, svc
}

var (
	owner    = domain.Caller{ID: "owner", Role: domain.RoleInterviewer}
	stranger = domain.Caller{ID: "stranger", Role: domain.RoleHR}
)

func TestCreateTask_DefaultsToPending(t *testing.T) {
	_, pub, svc := newTaskFixture()

	task, err := svc.CreateTask(context.Background(), owner, CreateTaskInput{Title: "  Write report  "})
	require.NoError(t, err)

	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, domain.TaskStatusPending, task.Status)
	assert.Equal(t, owner.ID, task.OwnerID)
	assert.Equal(t, []domain.EventType{domain.EventTaskCreated}, pub.types())
}

func TestCreateTask_Validation(t *testing.T) {
	_, _, svc := newTaskFixture()
	long := make([]byte, 1001)
	for i := range long {
		long[i] = 'x'
	}
	desc := string(long)

	_, err := svc.CreateTask(context.Background(), owner, CreateTaskInput{
		Title:       "",
		Description: &desc,
		Status:      "DONE",
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields["title"])
	assert.Equal(t, "must be at most 1000 characters", verr.Fields["description"])
	assert.Equal(t, "must be one of PENDING, IN_PROGRESS, COMPLETED", verr.Fields["status"])
}

func TestToggleTask_CyclesThroughAllStatuses(t *testing.T) {
	_, _, svc := newTaskFixture()
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, owner, CreateTaskInput{Title: "cycle"})
	require.NoError(t, err)
	require.Equal(t, domain.TaskStatusPending, task.Status)

	want := []domain.TaskStatus{
		domain.TaskStatusInProgress,
		domain.TaskStatusCompleted,
		domain.TaskStatusPending,
	}
	for _, w := range want {
		task, err = svc.ToggleTask(ctx, owner, task.ID)
		require.NoError(t, err)
		assert.Equal(t, w, task.Status)
	}
}

func TestTaskOwnership(t *testing.T) {
	_, _, svc := newTaskFixture()
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, owner, CreateTaskInput{Title: "mine"})
	require.NoError(t, err)

	_, err = svc.GetTask(ctx, stranger, task.ID)
	assert.ErrorIs(t, err, domain.ErrNotTaskOwner)

	_, err = svc.ToggleTask(ctx, stranger, task.ID)
	assert.ErrorIs(t, err, domain.ErrNotTaskOwner)

	title := "theirs"
	_, err = svc.UpdateTask(ctx, stranger, task.ID, UpdateTaskInput{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotTaskOwner)

	assert.ErrorIs(t, svc.DeleteTask(ctx, stranger, task.ID), domain.ErrNotTaskOwner)
	assert.ErrorIs(t, svc.DeleteTask(ctx, owner, "missing"), domain.ErrTaskNotFound)
}

func TestUpdateTask(t *testing.T) {
	_, pub, svc := newTaskFixture()
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, owner, CreateTaskInput{Title: "draft"})
	require.NoError(t, err)

	status := domain.TaskStatusCompleted
	updated, err := svc.UpdateTask(ctx, owner, task.ID, UpdateTaskInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, updated.Status)
	assert.Equal(t, "draft", updated.Title)

	_, err = svc.UpdateTask(ctx, owner, task.ID, UpdateTaskInput{})
	assert.ErrorIs(t, err, domain.ErrNothingToUpdate)

	assert.Equal(t, []domain.EventType{domain.EventTaskCreated, domain.EventTaskUpdated}, pub.types())
}

func TestListTasksAndStats(t *testing.T) {
	_, _, svc := newTaskFixture()
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		_, err := svc.CreateTask(ctx, owner, CreateTaskInput{Title: "t"})
		require.NoError(t, err)
	}
	_, err := svc.CreateTask(ctx, owner, CreateTaskInput{Title: "done", Status: domain.TaskStatusCompleted})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, stranger, CreateTaskInput{Title: "other"})
	require.NoError(t, err)

	page, err := svc.ListTasks(ctx, owner, domain.TaskFilter{Page: 2})
	require.NoError(t, err)
	assert.Len(t, page.Tasks, 3)
	assert.Equal(t, domain.Pagination{Page: 2, Limit: 10, Total: 13, TotalPages: 2, HasNext: false, HasPrev: true}, page.Pagination)

	page, err = svc.ListTasks(ctx, owner, domain.TaskFilter{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 100, page.Pagination.Limit)

	stats, err := svc.Stats(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStats{Total: 13, Pending: 12, Completed: 1}, stats)

	recent, err := svc.RecentTasks(ctx, owner, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 5)
}
