package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/ysam020/task-management-assessment/internal/domain"
)

// NewRedisClient creates and verifies a Redis client connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	slog.Info("redis connected", "addr", opts.Addr)
	return rdb, nil
}

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisPublisher publishes change events to a Redis channel.
type RedisPublisher struct {
	rdb     redisPublisher
	channel string
}

// NewRedisPublisher creates a RedisPublisher on the given channel.
func NewRedisPublisher(rdb redisPublisher, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{rdb: rdb, channel: channel}
}

// Publish implements Publisher. Failures are logged and swallowed.
func (p *RedisPublisher) Publish(ctx context.Context, event domain.ChangeEvent) {
	payload, err := Encode(event)
	if err != nil {
		slog.Warn("encode change event failed", "type", event.Type, "error", err)
		return
	}
	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		slog.Warn("publish change event failed",
			"type", event.Type,
			"entity_id", event.EntityID,
			"channel", p.channel,
			"error", err,
		)
	}
}

// Listen subscribes to the channel and calls fn for every decoded event until
// ctx is cancelled.
func Listen(ctx context.Context, rdb *redis.Client, channel string, fn func(domain.ChangeEvent)) error {
	if channel == "" {
		channel = DefaultChannel
	}
	sub := rdb.Subscribe(ctx, channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			event, err := Decode([]byte(msg.Payload))
			if err != nil {
				slog.Warn("skipping malformed change event", "error", err)
				continue
			}
			fn(event)
		}
	}
}
