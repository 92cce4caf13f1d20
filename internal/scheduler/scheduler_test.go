package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ysam020/task-management-assessment/internal/domain"
	"github.com/ysam020/task-management-assessment/internal/metrics"
)

type fakeLister struct {
	stuck []*domain.Candidate
	err   error
	calls atomic.Int32
}

func (f *fakeLister) StuckCandidates(context.Context) ([]*domain.Candidate, error) {
	f.calls.Add(1)
	return f.stuck, f.err
}

type fakePurger struct {
	n   int64
	err error
}

func (f *fakePurger) PurgeExpiredTokens(context.Context) (int64, error) {
	return f.n, f.err
}

func TestRunOnce(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lister := &fakeLister{stuck: []*domain.Candidate{
		{ID: "c-1", Stage: domain.StageL1, StageEnteredAt: now.Add(-72 * time.Hour)},
		{ID: "c-2", Stage: domain.StageHR, StageEnteredAt: now.Add(-49 * time.Hour)},
	}}
	m := metrics.New()

	s := New("@every 1h", lister, &fakePurger{n: 3}, m)
	s.now = func() time.Time { return now }

	report, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Stuck, 2)
	assert.Equal(t, int64(3), report.Purged)

	expected := `
# HELP tracker_auth_refresh_tokens_purged_total Expired refresh tokens removed by the sweep.
# TYPE tracker_auth_refresh_tokens_purged_total counter
tracker_auth_refresh_tokens_purged_total 3
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"tracker_auth_refresh_tokens_purged_total"))
}

func TestRunOnce_PartialFailure(t *testing.T) {
	lister := &fakeLister{err: errors.New("db down")}

	s := New("@every 1h", lister, &fakePurger{n: 1}, nil)

	report, err := s.RunOnce(context.Background())
	assert.ErrorContains(t, err, "db down")
	assert.Nil(t, report.Stuck)
	assert.Equal(t, int64(1), report.Purged)
}

func TestRunOnce_WithoutPurger(t *testing.T) {
	s := New("@every 1h", &fakeLister{}, nil, nil)

	report, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Purged)
}

func TestStart_InvalidSpec(t *testing.T) {
	s := New("every now and then", &fakeLister{}, nil, nil)

	err := s.Start(context.Background())
	assert.ErrorContains(t, err, "schedule sweep")
}

func TestStart_RunsImmediately(t *testing.T) {
	lister := &fakeLister{}
	s := New("@every 1h", lister, nil, nil)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return lister.calls.Load() >= 1 }, time.Second, 10*time.Millisecond)
}
