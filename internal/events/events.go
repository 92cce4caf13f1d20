// Package events broadcasts committed entity changes over Redis pub/sub.
// Publishing never fails the operation that triggered it.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ysam020/task-management-assessment/internal/domain"
)

// DefaultChannel is the Redis channel change events are published on.
const DefaultChannel = "tracker.events"

// Publisher sends change events to interested listeners.
type Publisher interface {
	Publish(ctx context.Context, event domain.ChangeEvent)
}

// NopPublisher drops every event. Used when Redis is not configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, domain.ChangeEvent) {}

// message is the JSON form of a change event on the wire.
type message struct {
	Type       string    `json:"type"`
	EntityID   string    `json:"entityId"`
	ActorID    string    `json:"actorId,omitempty"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Encode serializes an event for publishing.
func Encode(e domain.ChangeEvent) ([]byte, error) {
	m := message{
		Type:       string(e.Type),
		EntityID:   e.EntityID,
		ActorID:    e.ActorID,
		OccurredAt: e.OccurredAt.UTC(),
	}
	if e.FromStage != nil {
		m.From = string(*e.FromStage)
	}
	if e.ToStage != nil {
		m.To = string(*e.ToStage)
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return b, nil
}

// Decode parses an event received from the channel.
func Decode(payload []byte) (domain.ChangeEvent, error) {
	var m message
	if err := json.Unmarshal(payload, &m); err != nil {
		return domain.ChangeEvent{}, fmt.Errorf("decode event: %w", err)
	}
	e := domain.ChangeEvent{
		Type:       domain.EventType(m.Type),
		EntityID:   m.EntityID,
		ActorID:    m.ActorID,
		OccurredAt: m.OccurredAt,
	}
	if m.From != "" {
		from := domain.Stage(m.From)
		e.FromStage = &from
	}
	if m.To != "" {
		to := domain.Stage(m.To)
		e.ToStage = &to
	}
	return e, nil
}
