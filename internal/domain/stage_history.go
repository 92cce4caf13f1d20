package domain

import "time"

// InitialStageReason is recorded on the history entry written at creation.
const InitialStageReason = "Initial stage"

// StageHistoryEntry is an immutable audit record of one stage change.
type StageHistoryEntry struct {
	ID          string
	CandidateID string
	FromStage   *Stage // nil only for the creation entry
	ToStage     Stage
	Reason      *string
	MovedAt     time.Time
}

// IsCreation returns true if the entry was written when the candidate was created.
func (e *StageHistoryEntry) IsCreation() bool {
	return e.FromStage == nil
}

// TransitionResult is the outcome of a stage move.
type TransitionResult struct {
	Candidate *Candidate
	Entry     *StageHistoryEntry
	IsStuck   bool
}

// TransitionCount is the number of recorded moves between two stages.
// From is nil for creation entries.
type TransitionCount struct {
	From  *Stage
	To    Stage
	Count int
}
