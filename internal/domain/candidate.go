package domain

import "time"

// StuckThreshold is how long a candidate may stay in one stage before being
// reported as stuck.
const StuckThreshold = 48 * time.Hour

// Candidate is an applicant moving through the hiring pipeline.
// Stage and StageEnteredAt are written only on creation and by stage moves.
type Candidate struct {
	ID             string
	Name           string
	Email          string
	Phone          *string
	Position       string
	Experience     *int
	Skills         []string
	ResumeURL      *string
	ResumeText     *string
	Stage          Stage
	StageEnteredAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsStuckAt reports whether the candidate has been in the current stage
// longer than StuckThreshold at the given instant.
func (c *Candidate) IsStuckAt(now time.Time) bool {
	return now.Sub(c.StageEnteredAt) > StuckThreshold
}

// CandidateDetail is a candidate with its collaboration records and, for the
// single-candidate view, its audit trail. IsStuck is computed at read time.
type CandidateDetail struct {
	Candidate *Candidate
	IsStuck   bool
	Feedbacks []*Feedback
	Notes     []*Note
	History   []*StageHistoryEntry
}

// CandidateFields holds the contact fields that may be set on creation or
// edited afterwards. Nil pointers are left unchanged on update.
type CandidateFields struct {
	Name       *string
	Email      *string
	Phone      *string
	Position   *string
	Experience *int
	Skills     []string
}

// IsEmpty returns true if no field is set.
func (f CandidateFields) IsEmpty() bool {
	return f.Name == nil && f.Email == nil && f.Phone == nil &&
		f.Position == nil && f.Experience == nil && f.Skills == nil
}

// CandidateFilter narrows candidate listings.
type CandidateFilter struct {
	Stage    *Stage
	Search   string
	Skills   []string
	Position string
	Page     int
	Limit    int
}

// StageCount is the number of candidates currently in one stage.
type StageCount struct {
	Stage Stage
	Count int
}

// Dashboard summarizes the pipeline at a point in time.
type Dashboard struct {
	TotalCandidates int
	ByStage         []StageCount
	RecentlyUpdated []*Candidate
	StuckCandidates []*Candidate
	Transitions     []TransitionCount
	GeneratedAt     time.Time
}
