package coordinator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ysam020/task-management-assessment/internal/client"
	"github.com/ysam020/task-management-assessment/internal/domain"
	"github.com/ysam020/task-management-assessment/internal/handler/dto"
	"github.com/ysam020/task-management-assessment/internal/service"
)

var errServer = errors.New("api error 500: Internal server error")

type fakeTaskAPI struct {
	tasks      []dto.TaskResponse
	stats      dto.TaskStatsResponse
	listCalls  atomic.Int32
	statsCalls atomic.Int32
	listGate   chan struct{}
	toggleGate chan struct{}
	fail       error
	// during runs inside create and delete calls, before they return.
	during func()
}

func (f *fakeTaskAPI) ListTasks(ctx context.Context, _ client.TaskQuery) (dto.TasksListResponse, error) {
	f.listCalls.Add(1)
	if f.listGate != nil {
		<-f.listGate
	}
	return dto.TasksListResponse{
		Tasks:      f.tasks,
		Pagination: dto.PaginationResponse{Total: len(f.tasks)},
	}, nil
}

func (f *fakeTaskAPI) TaskStats(context.Context) (dto.TaskStatsResponse, error) {
	f.statsCalls.Add(1)
	return f.stats, nil
}

func (f *fakeTaskAPI) CreateTask(_ context.Context, in service.CreateTaskInput) (dto.TaskResponse, error) {
	if f.during != nil {
		f.during()
	}
	if f.fail != nil {
		return dto.TaskResponse{}, f.fail
	}
	return dto.TaskResponse{ID: "t-new", Title: in.Title, Status: string(domain.TaskStatusPending)}, nil
}

func (f *fakeTaskAPI) UpdateTask(_ context.Context, id string, in service.UpdateTaskInput) (dto.TaskResponse, error) {
	if f.fail != nil {
		return dto.TaskResponse{}, f.fail
	}
	return dto.TaskResponse{ID: id, Title: *in.Title + " (saved)", Status: string(domain.TaskStatusPending)}, nil
}

func (f *fakeTaskAPI) ToggleTask(_ context.Context, id string) (dto.TaskResponse, error) {
	if f.toggleGate != nil {
		<-f.toggleGate
	}
	if f.fail != nil {
		return dto.TaskResponse{}, f.fail
	}
	return dto.TaskResponse{ID: id, Title: "server copy", Status: string(domain.TaskStatusInProgress)}, nil
}

func (f *fakeTaskAPI) DeleteTask(context.Context, string) error {
	if f.during != nil {
		f.during()
	}
	return f.fail
}

func seededTasks(t *testing.T, api *fakeTaskAPI) *Tasks {
	t.Helper()
	api.tasks = []dto.TaskResponse{
		{ID: "t-1", Title: "First", Status: "PENDING"},
		{ID: "t-2", Title: "Second", Status: "IN_PROGRESS"},
		{ID: "t-3", Title: "Third", Status: "COMPLETED"},
	}
	api.stats = dto.TaskStatsResponse{Total: 3, Pending: 1, InProgress: 1, Completed: 1}

	store := NewTasks(api)
	require.NoError(t, store.Fetch(context.Background(), client.TaskQuery{}))
	require.NoError(t, store.RefreshStats(context.Background()))
	return store
}

func TestToggle_Success(t *testing.T) {
	api := &fakeTaskAPI{}
	store := seededTasks(t, api)

	got, err := store.Toggle(context.Background(), "t-1")
	require.NoError(t, err)

	assert.Equal(t, "server copy", got.Title)
	view := store.View()
	assert.Equal(t, "server copy", view.Items[0].Title)
	assert.Equal(t, dto.TaskStatsResponse{Total: 3, Pending: 0, InProgress: 2, Completed: 1}, view.Stats)
	assert.Equal(t, StateSucceeded, store.State("t-1"))
}

func TestToggle_OptimisticBeforeResponse(t *testing.T) {
	api := &fakeTaskAPI{toggleGate: make(chan struct{})}
	store := seededTasks(t, api)

	done := make(chan error, 1)
	go func() {
		_, err := store.Toggle(context.Background(), "t-3")
		done <- err
	}()

	assert.Eventually(t, func() bool { return store.State("t-3") == StatePending }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "PENDING", store.View().Items[2].Status)

	_, err := store.Toggle(context.Background(), "t-3")
	assert.ErrorIs(t, err, ErrMutationInFlight)

	close(api.toggleGate)
	require.NoError(t, <-done)
}

func TestUpdate_FailureRestoresSnapshotExactly(t *testing.T) {
	api := &fakeTaskAPI{}
	store := seededTasks(t, api)
	before := store.View().Items

	events, unsubscribe := store.Subscribe(8)
	defer unsubscribe()

	api.fail = errServer
	title := "Renamed"
	_, err := store.Update(context.Background(), "t-2", service.UpdateTaskInput{Title: &title})
	require.ErrorIs(t, err, errServer)

	assert.Equal(t, before, store.View().Items)
	assert.Equal(t, StateFailed, store.State("t-2"))
	assert.Equal(t, int32(2), api.statsCalls.Load(), "failure refetches stats")

	pending := <-events
	assert.Equal(t, StatePending, pending.State)
	failed := <-events
	assert.Equal(t, StateFailed, failed.State)
	assert.ErrorIs(t, failed.Err, errServer)
}

func TestDelete_FailureReinsertsAtIndex(t *testing.T) {
	api := &fakeTaskAPI{fail: errServer}
	store := seededTasks(t, api)

	err := store.Delete(context.Background(), "t-2")
	require.ErrorIs(t, err, errServer)

	view := store.View()
	require.Len(t, view.Items, 3)
	assert.Equal(t, "t-2", view.Items[1].ID)
	assert.Equal(t, 3, view.Total)
	assert.Equal(t, 3, view.Stats.Total)
}

func TestDelete_FailureAfterRefetchKeepsOneCopy(t *testing.T) {
	api := &fakeTaskAPI{}
	store := seededTasks(t, api)
	api.fail = errServer
	api.during = func() {
		require.NoError(t, store.Fetch(context.Background(), client.TaskQuery{}))
	}

	err := store.Delete(context.Background(), "t-2")
	require.ErrorIs(t, err, errServer)

	view := store.View()
	ids := make([]string, 0, len(view.Items))
	for _, item := range view.Items {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"t-1", "t-2", "t-3"}, ids)
	assert.Equal(t, 3, view.Total)
}

func TestDelete_SuccessAfterRefetchRemovesRow(t *testing.T) {
	api := &fakeTaskAPI{}
	store := seededTasks(t, api)
	api.during = func() {
		require.NoError(t, store.Fetch(context.Background(), client.TaskQuery{}))
	}

	require.NoError(t, store.Delete(context.Background(), "t-2"))

	view := store.View()
	assert.Len(t, view.Items, 2)
	assert.Equal(t, 2, view.Total)
}

func TestCreate_AfterRefetchReplacesInPlace(t *testing.T) {
	api := &fakeTaskAPI{}
	store := seededTasks(t, api)
	api.during = func() {
		api.tasks = append([]dto.TaskResponse{{ID: "t-new", Title: "Fourth", Status: "PENDING"}}, api.tasks...)
		require.NoError(t, store.Fetch(context.Background(), client.TaskQuery{Page: 2}))
	}

	_, err := store.Create(context.Background(), service.CreateTaskInput{Title: "Fourth"})
	require.NoError(t, err)

	view := store.View()
	require.Len(t, view.Items, 4)
	assert.Equal(t, "t-new", view.Items[0].ID)
	assert.Equal(t, 4, view.Total)
}

func TestDelete_Success(t *testing.T) {
	api := &fakeTaskAPI{}
	store := seededTasks(t, api)

	require.NoError(t, store.Delete(context.Background(), "t-1"))

	view := store.View()
	assert.Len(t, view.Items, 2)
	assert.Equal(t, 2, view.Total)
	assert.Equal(t, dto.TaskStatsResponse{Total: 2, Pending: 0, InProgress: 1, Completed: 1}, view.Stats)
}

func TestCreate_InsertsConfirmedEntity(t *testing.T) {
	api := &fakeTaskAPI{}
	store := seededTasks(t, api)

	created, err := store.Create(context.Background(), service.CreateTaskInput{Title: "Fourth"})
	require.NoError(t, err)

	view := store.View()
	assert.Equal(t, created, view.Items[0])
	assert.Equal(t, 4, view.Total)
	assert.Equal(t, 2, view.Stats.Pending)
}

func TestCreate_FailureResyncsStats(t *testing.T) {
	api := &fakeTaskAPI{fail: errServer}
	store := seededTasks(t, api)

	_, err := store.Create(context.Background(), service.CreateTaskInput{Title: "Fourth"})
	require.Error(t, err)

	view := store.View()
	assert.Len(t, view.Items, 3)
	assert.Equal(t, 3, view.Total)
	assert.Equal(t, api.stats, view.Stats)
}

func TestMutation_NotLoaded(t *testing.T) {
	store := seededTasks(t, &fakeTaskAPI{})

	_, err := store.Toggle(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestFetch_DeduplicatesIdenticalFilters(t *testing.T) {
	api := &fakeTaskAPI{listGate: make(chan struct{})}
	store := NewTasks(api)

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Fetch(context.Background(), client.TaskQuery{Page: 1, Status: "PENDING"}))
		}()
	}

	assert.Eventually(t, func() bool { return api.listCalls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, store.View().Loading)
	time.Sleep(20 * time.Millisecond)
	close(api.listGate)
	wg.Wait()

	assert.Equal(t, int32(1), api.listCalls.Load())
	assert.False(t, store.View().Loading)
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	store := seededTasks(t, &fakeTaskAPI{})

	events, unsubscribe := store.Subscribe(1)
	unsubscribe()
	unsubscribe()

	_, open := <-events
	assert.False(t, open)

	_, err := store.Toggle(context.Background(), "t-1")
	assert.NoError(t, err)
}

func TestMutationState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "succeeded", StateSucceeded.String())
	assert.Equal(t, "failed", StateFailed.String())
}
