package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ysam020/task-management-assessment/internal/domain"
)

// FeedbackInput is the body of a feedback submission.
type FeedbackInput struct {
	Comment string `json:"comment" validate:"required,notblank,max=5000"`
	Rating  *int   `json:"rating" validate:"omitempty,min=1,max=5"`
}

// NoteInput is the body of a note submission or edit.
type NoteInput struct {
	Content string `json:"content" validate:"required,notblank,max=5000"`
}

// CollaborationService manages feedback and notes on candidates. Any
// authenticated user may write them; only the author or HR may change them.
type CollaborationService struct {
	tx         TxManager
	candidates CandidateStore
	feedbacks  FeedbackStore
	notes      NoteStore
}

// NewCollaborationService creates a new CollaborationService.
func NewCollaborationService(tx TxManager, candidates CandidateStore, feedbacks FeedbackStore, notes NoteStore) *CollaborationService {
	return &CollaborationService{
		tx:         tx,
		candidates: candidates,
		feedbacks:  feedbacks,
		notes:      notes,
	}
}

// AddFeedback records feedback against the candidate's current stage.
func (s *CollaborationService) AddFeedback(ctx context.Context, caller domain.Caller, candidateID string, in FeedbackInput) (*domain.Feedback, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	var created *domain.Feedback
	err := s.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		c, err := s.candidates.GetByID(ctx, candidateID)
		if err != nil {
			return err
		}

		f := &domain.Feedback{
			CandidateID: candidateID,
			UserID:      caller.ID,
			Stage:       c.Stage,
			Rating:      in.Rating,
			Comment:     strings.TrimSpace(in.Comment),
		}
		if err := s.feedbacks.Create(ctx, f); err != nil {
			return err
		}

		created, err = s.feedbacks.GetByID(ctx, f.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("feedback added",
		"feedback_id", created.ID,
		"candidate_id", candidateID,
		"stage", created.Stage,
		"user_id", caller.ID,
	)

	return created, nil
}

// ListFeedback returns all feedback for a candidate, newest first.
func (s *CollaborationService) ListFeedback(ctx context.Context, candidateID string) ([]*domain.Feedback, error) {
	if _, err := s.candidates.GetByID(ctx, candidateID); err != nil {
		return nil, err
	}
	return s.feedbacks.ListByCandidate(ctx, candidateID, 0)
}

// GetFeedback returns a single feedback entry.
func (s *CollaborationService) GetFeedback(ctx context.Context, feedbackID string) (*domain.Feedback, error) {
	return s.feedbacks.GetByID(ctx, feedbackID)
}

// DeleteFeedback removes feedback written by the caller, or any feedback for HR.
func (s *CollaborationService) DeleteFeedback(ctx context.Context, caller domain.Caller, feedbackID string) error {
	f, err := s.feedbacks.GetByID(ctx, feedbackID)
	if err != nil {
		return err
	}
	if !caller.CanModify(f.UserID) {
		return fmt.Errorf("%w: feedback %s", domain.ErrNotAuthor, feedbackID)
	}
	if err := s.feedbacks.Delete(ctx, feedbackID); err != nil {
		return err
	}

	slog.Info("feedback deleted", "feedback_id", feedbackID, "deleted_by", caller.ID)
	return nil
}

// AddNote attaches a note to a candidate.
func (s *CollaborationService) AddNote(ctx context.Context, caller domain.Caller, candidateID string, in NoteInput) (*domain.Note, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	var created *domain.Note
	err := s.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		if _, err := s.candidates.GetByID(ctx, candidateID); err != nil {
			return err
		}

		n := &domain.Note{
			CandidateID: candidateID,
			UserID:      caller.ID,
			Content:     strings.TrimSpace(in.Content),
		}
		if err := s.notes.Create(ctx, n); err != nil {
			return err
		}

		var err error
		created, err = s.notes.GetByID(ctx, n.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("note added",
		"note_id", created.ID,
		"candidate_id", candidateID,
		"user_id", caller.ID,
	)

	return created, nil
}

// ListNotes returns all notes for a candidate, newest first.
func (s *CollaborationService) ListNotes(ctx context.Context, candidateID string) ([]*domain.Note, error) {
	if _, err := s.candidates.GetByID(ctx, candidateID); err != nil {
		return nil, err
	}
	return s.notes.ListByCandidate(ctx, candidateID, 0)
}

// GetNote returns a single note.
func (s *CollaborationService) GetNote(ctx context.Context, noteID string) (*domain.Note, error) {
	return s.notes.GetByID(ctx, noteID)
}

// UpdateNote replaces the content of a note.
func (s *CollaborationService) UpdateNote(ctx context.Context, caller domain.Caller, noteID string, in NoteInput) (*domain.Note, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	var updated *domain.Note
	err := s.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		n, err := s.notes.GetByID(ctx, noteID)
		if err != nil {
			return err
		}
		if !caller.CanModify(n.UserID) {
			return fmt.Errorf("%w: note %s", domain.ErrNotAuthor, noteID)
		}
		if err := s.notes.UpdateContent(ctx, noteID, strings.TrimSpace(in.Content)); err != nil {
			return err
		}
		updated, err = s.notes.GetByID(ctx, noteID)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("note updated", "note_id", noteID, "updated_by", caller.ID)
	return updated, nil
}

// DeleteNote removes a note written by the caller, or any note for HR.
func (s *CollaborationService) DeleteNote(ctx context.Context, caller domain.Caller, noteID string) error {
	n, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		return err
	}
	if !caller.CanModify(n.UserID) {
		return fmt.Errorf("%w: note %s", domain.ErrNotAuthor, noteID)
	}
	if err := s.notes.Delete(ctx, noteID); err != nil {
		return err
	}

	slog.Info("note deleted", "note_id", noteID, "deleted_by", caller.ID)
	return nil
}
