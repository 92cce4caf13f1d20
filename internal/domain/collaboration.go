package domain

import "time"

// Feedback is an interviewer's assessment recorded against the stage the
// candidate was in when it was written.
type Feedback struct {
	ID          string
	CandidateID string
	UserID      string
	UserName    string
	Stage       Stage
	Rating      *int
	Comment     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Note is a free-form remark on a candidate.
type Note struct {
	ID          string
	CandidateID string
	UserID      string
	UserName    string
	Content     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
