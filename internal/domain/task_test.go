package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskStatus_NextCycle(t *testing.T) {
	assert.Equal(t, TaskStatusInProgress, TaskStatusPending.Next())
	assert.Equal(t, TaskStatusCompleted, TaskStatusInProgress.Next())
	assert.Equal(t, TaskStatusPending, TaskStatusCompleted.Next())

	for _, s := range []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted} {
		assert.Equal(t, s, s.Next().Next().Next(), "three toggles from %s", s)
	}
}

func TestParseTaskStatus(t *testing.T) {
	s, err := ParseTaskStatus("COMPLETED")
	assert.NoError(t, err)
	assert.Equal(t, TaskStatusCompleted, s)

	_, err = ParseTaskStatus("done")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestTaskStats_AdjustAndMove(t *testing.T) {
	var stats TaskStats
	stats.Adjust(TaskStatusPending, 1)
	stats.Adjust(TaskStatusPending, 1)
	stats.Move(TaskStatusPending, TaskStatusCompleted)

	assert.Equal(t, TaskStats{Total: 2, Pending: 1, Completed: 1}, stats)

	stats.Move(TaskStatusCompleted, TaskStatusCompleted)
	assert.Equal(t, 1, stats.Completed)
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)
	assert.Equal(t, 10, p.Offset())

	p = NewPagination(0, 10, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)

	p = NewPagination(3, 10, 25).WithTotal(20)
	assert.Equal(t, 2, p.TotalPages)
	assert.False(t, p.HasNext)
}
