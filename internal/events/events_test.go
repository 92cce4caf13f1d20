package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ysam020/task-management-assessment/internal/domain"
)

type fakeRedis struct {
	channel string
	payload []byte
	err     error
}

func (f *fakeRedis) Publish(_ context.Context, channel string, message any) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	return redis.NewIntResult(1, f.err)
}

func stageMoved() domain.ChangeEvent {
	from, to := domain.StageL1, domain.StageL2
	return domain.ChangeEvent{
		Type:       domain.EventCandidateStageMoved,
		EntityID:   "cand-1",
		ActorID:    "user-1",
		FromStage:  &from,
		ToStage:    &to,
		OccurredAt: time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC),
	}
}

func TestEncodeDecode(t *testing.T) {
	payload, err := Encode(stageMoved())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "CANDIDATE_STAGE_MOVED",
		"entityId": "cand-1",
		"actorId": "user-1",
		"from": "L1",
		"to": "L2",
		"occurredAt": "2025-02-03T04:05:06Z"
	}`, string(payload))

	decoded, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, stageMoved(), decoded)
}

func TestRedisPublisher_Publish(t *testing.T) {
	rdb := &fakeRedis{}
	p := NewRedisPublisher(rdb, "")

	p.Publish(context.Background(), stageMoved())

	assert.Equal(t, DefaultChannel, rdb.channel)
	decoded, err := Decode(rdb.payload)
	require.NoError(t, err)
	assert.Equal(t, "cand-1", decoded.EntityID)
}

func TestRedisPublisher_FailureIsSwallowed(t *testing.T) {
	rdb := &fakeRedis{err: errors.New("connection refused")}
	p := NewRedisPublisher(rdb, "custom")

	assert.NotPanics(t, func() {
		p.Publish(context.Background(), stageMoved())
	})
	assert.Equal(t, "custom", rdb.channel)
}
