package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ysam020/task-management-assessment/internal/domain"
)

func TestToggleStatusExpr(t *testing.T) {
	assert.Equal(t,
		"CASE status WHEN 'PENDING' THEN 'IN_PROGRESS' WHEN 'IN_PROGRESS' THEN 'COMPLETED' WHEN 'COMPLETED' THEN 'PENDING' END",
		toggleStatusExpr,
	)
}

func TestTaskRepository_ToggleStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTaskRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE tasks SET status = CASE status")).
		WithArgs("task-1").
		WillReturnRows(pgxmock.NewRows(taskColumns).
			AddRow("task-1", "Write report", (*string)(nil), domain.TaskStatusInProgress, "user-1", now, now))

	task, err := repo.ToggleStatus(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusInProgress, task.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ToggleStatus_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTaskRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE tasks SET status = CASE status")).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(taskColumns))

	_, err = repo.ToggleStatus(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Stats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTaskRepository(mock)

	mock.ExpectQuery(`SELECT\s+COUNT\(\*\) AS total`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"total", "pending", "in_progress", "completed"}).
			AddRow(6, 3, 2, 1))

	stats, err := repo.Stats(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStats{Total: 6, Pending: 3, InProgress: 2, Completed: 1}, stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_List_SortAndSearch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTaskRepository(mock)
	status := domain.TaskStatusPending

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM tasks WHERE (owner_id = $1 AND status = $2 AND (title ILIKE $3 OR description ILIKE $4)) ORDER BY title DESC, id ASC LIMIT 5",
	)).
		WithArgs("user-1", status, "%report%", "%report%").
		WillReturnRows(pgxmock.NewRows(taskColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tasks WHERE")).
		WithArgs("user-1", status, "%report%", "%report%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))

	tasks, total, err := repo.List(context.Background(), domain.TaskFilter{
		OwnerID:  "user-1",
		Status:   &status,
		Search:   "report",
		SortBy:   domain.TaskSortTitle,
		SortDesc: true,
		Page:     1,
		Limit:    5,
	})
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStageHistoryRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewStageHistoryRepository(mock)
	movedAt := time.Now().UTC()
	reason := "Initial stage"
	entry := &domain.StageHistoryEntry{
		CandidateID: "cand-1",
		ToStage:     domain.StageScreening,
		Reason:      &reason,
		MovedAt:     movedAt,
	}

	mock.ExpectQuery(regexp.QuoteMeta(
		"INSERT INTO stage_history (candidate_id,from_stage,to_stage,reason,moved_at) VALUES ($1,$2,$3,$4,$5) RETURNING id",
	)).
		WithArgs("cand-1", (*domain.Stage)(nil), domain.StageScreening, &reason, movedAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("hist-1"))

	require.NoError(t, repo.Create(context.Background(), entry))
	assert.Equal(t, "hist-1", entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
