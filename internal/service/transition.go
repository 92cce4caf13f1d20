package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ysam020/task-management-assessment/internal/domain"
)

// MoveStageInput is the body of a stage move request.
type MoveStageInput struct {
	ToStage string  `json:"toStage" validate:"required"`
	Reason  *string `json:"reason" validate:"omitempty,max=1000"`
}

// MoveToStage advances a candidate through the pipeline. The candidate row is
// locked for the duration of the transaction, the stage is written with a
// compare-and-swap on the stage that was read, and exactly one history entry
// is appended. Moving to the current stage is accepted: it records history
// and restarts the stage clock.
func (s *CandidateService) MoveToStage(ctx context.Context, caller domain.Caller, candidateID string, in MoveStageInput) (*domain.TransitionResult, error) {
	if err := requireHR(caller); err != nil {
		s.metrics.TransitionRejected("forbidden")
		return nil, err
	}
	if err := Validate(in); err != nil {
		return nil, err
	}
	toStage, err := domain.ParseStage(in.ToStage)
	if err != nil {
		s.metrics.TransitionRejected("invalid_stage")
		return nil, err
	}

	reason := trimmed(in.Reason)
	if reason != nil && *reason == "" {
		reason = nil
	}

	var result *domain.TransitionResult
	err = s.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		current, err := s.candidates.GetByIDForUpdate(ctx, candidateID)
		if err != nil {
			return err
		}

		ok, err := domain.IsForwardOrEqual(current.Stage, toStage)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, current.Stage, toStage)
		}

		movedAt := s.now()
		updated, err := s.candidates.UpdateStage(ctx, candidateID, current.Stage, toStage, movedAt)
		if err != nil {
			return err
		}

		entry := &domain.StageHistoryEntry{
			CandidateID: candidateID,
			FromStage:   stagePtr(current.Stage),
			ToStage:     toStage,
			Reason:      reason,
			MovedAt:     movedAt,
		}
		if err := s.history.Create(ctx, entry); err != nil {
			return err
		}

		result = &domain.TransitionResult{Candidate: updated, Entry: entry}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidTransition):
			s.metrics.TransitionRejected("backward")
		case errors.Is(err, domain.ErrStageChanged):
			s.metrics.TransitionRejected("conflict")
		}
		return nil, err
	}

	result.IsStuck = result.Candidate.IsStuckAt(s.now())
	from := *result.Entry.FromStage

	s.metrics.StageMoved(from, toStage)
	slog.Info("candidate stage moved",
		"candidate_id", candidateID,
		"from_stage", from,
		"to_stage", toStage,
		"moved_by", caller.ID,
		"entry_id", result.Entry.ID,
	)
	s.publish(ctx, domain.ChangeEvent{
		Type:       domain.EventCandidateStageMoved,
		EntityID:   candidateID,
		ActorID:    caller.ID,
		FromStage:  stagePtr(from),
		ToStage:    stagePtr(toStage),
		OccurredAt: result.Entry.MovedAt,
	})

	return result, nil
}

// nextStage returns the stage after s, or s itself for the final stage.
func nextStage(s domain.Stage) (domain.Stage, error) {
	idx, err := domain.IndexOf(s)
	if err != nil {
		return "", err
	}
	if idx == len(domain.Stages)-1 {
		return s, nil
	}
	return domain.Stages[idx+1], nil
}

// MoveToNextStage advances a candidate by exactly one stage.
func (s *CandidateService) MoveToNextStage(ctx context.Context, caller domain.Caller, candidateID string, reason *string) (*domain.TransitionResult, error) {
	c, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	next, err := nextStage(c.Stage)
	if err != nil {
		return nil, err
	}
	return s.MoveToStage(ctx, caller, candidateID, MoveStageInput{
		ToStage: string(next),
		Reason:  reason,
	})
}
