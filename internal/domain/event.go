package domain

import "time"

// EventType names a committed change broadcast to subscribers.
type EventType string

const (
	EventTaskCreated         EventType = "TASK_CREATED"
	EventTaskUpdated         EventType = "TASK_UPDATED"
	EventTaskDeleted         EventType = "TASK_DELETED"
	EventCandidateCreated    EventType = "CANDIDATE_CREATED"
	EventCandidateUpdated    EventType = "CANDIDATE_UPDATED"
	EventCandidateDeleted    EventType = "CANDIDATE_DELETED"
	EventCandidateStageMoved EventType = "CANDIDATE_STAGE_MOVED"
)

// ChangeEvent describes an entity change after its transaction committed.
type ChangeEvent struct {
	Type       EventType
	EntityID   string
	ActorID    string
	FromStage  *Stage
	ToStage    *Stage
	OccurredAt time.Time
}
