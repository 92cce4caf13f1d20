package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ysam020/task-management-assessment/internal/domain"
	"github.com/ysam020/task-management-assessment/internal/events"
	"github.com/ysam020/task-management-assessment/internal/metrics"
	"github.com/ysam020/task-management-assessment/internal/storage"
)

const (
	defaultCandidatePageSize = 10
	maxCandidatePageSize     = 100
	listPreviewSize          = 5
	dashboardRecentSize      = 10
)

// CreateCandidateInput is the body of a candidate creation request.
type CreateCandidateInput struct {
	Name       string   `json:"name" validate:"required,notblank,max=255"`
	Email      string   `json:"email" validate:"required,email"`
	Phone      *string  `json:"phone" validate:"omitempty,max=50"`
	Position   string   `json:"position" validate:"required,notblank,max=255"`
	Experience *int     `json:"experience" validate:"omitempty,gte=0"`
	Skills     []string `json:"skills" validate:"omitempty,dive,notblank"`
}

// UpdateCandidateInput edits contact fields. Stage fields cannot be changed here.
type UpdateCandidateInput struct {
	Name       *string  `json:"name" validate:"omitempty,notblank,max=255"`
	Email      *string  `json:"email" validate:"omitempty,email"`
	Phone      *string  `json:"phone" validate:"omitempty,max=50"`
	Position   *string  `json:"position" validate:"omitempty,notblank,max=255"`
	Experience *int     `json:"experience" validate:"omitempty,gte=0"`
	Skills     []string `json:"skills" validate:"omitempty,dive,notblank"`
}

// ResumeUpload is a resume file received from a client.
type ResumeUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// CandidatePage is one page of a candidate listing.
type CandidatePage struct {
	Candidates []*domain.CandidateDetail
	Pagination domain.Pagination
}

// CandidateService runs the hiring pipeline: candidate records, stage moves
// and their audit trail.
type CandidateService struct {
	tx            TxManager
	candidates    CandidateStore
	history       HistoryStore
	feedbacks     FeedbackStore
	notes         NoteStore
	files         storage.FileStore
	maxResumeSize int64
	publisher     events.Publisher
	metrics       *metrics.Metrics
	now           func() time.Time
}

// NewCandidateService creates a new CandidateService.
func NewCandidateService(
	tx TxManager,
	candidates CandidateStore,
	history HistoryStore,
	feedbacks FeedbackStore,
	notes NoteStore,
	publisher events.Publisher,
) *CandidateService {
	return &CandidateService{
		tx:            tx,
		candidates:    candidates,
		history:       history,
		feedbacks:     feedbacks,
		notes:         notes,
		maxResumeSize: storage.DefaultMaxFileSize,
		publisher:     publisherOrNop(publisher),
		now:           time.Now,
	}
}

// WithFileStore enables resume uploads.
func (s *CandidateService) WithFileStore(files storage.FileStore, maxSize int64) *CandidateService {
	s.files = files
	if maxSize > 0 {
		s.maxResumeSize = maxSize
	}
	return s
}

// WithMetrics records pipeline metrics.
func (s *CandidateService) WithMetrics(m *metrics.Metrics) *CandidateService {
	s.metrics = m
	return s
}

// WithClock replaces the time source.
func (s *CandidateService) WithClock(now func() time.Time) *CandidateService {
	s.now = now
	return s
}

func requireHR(caller domain.Caller) error {
	if !caller.IsHR() {
		return fmt.Errorf("%w: user %s has role %s", domain.ErrHRRoleRequired, caller.ID, caller.Role)
	}
	return nil
}

func (s *CandidateService) publish(ctx context.Context, e domain.ChangeEvent) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = s.now()
	}
	s.publisher.Publish(ctx, e)
}

func cleanSkills(skills []string) []string {
	if skills == nil {
		return nil
	}
	out := make([]string, 0, len(skills))
	for _, sk := range skills {
		if sk = strings.TrimSpace(sk); sk != "" {
			out = append(out, sk)
		}
	}
	return out
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

// CreateCandidate stores a new candidate at SCREENING together with the
// creation entry of its audit trail.
func (s *CandidateService) CreateCandidate(ctx context.Context, caller domain.Caller, in CreateCandidateInput) (*domain.CandidateDetail, error) {
	if err := requireHR(caller); err != nil {
		return nil, err
	}
	if err := Validate(in); err != nil {
		return nil, err
	}

	now := s.now()
	candidate := &domain.Candidate{
		Name:           strings.TrimSpace(in.Name),
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:          trimmed(in.Phone),
		Position:       strings.TrimSpace(in.Position),
		Experience:     in.Experience,
		Skills:         cleanSkills(in.Skills),
		Stage:          domain.StageScreening,
		StageEnteredAt: now,
	}
	reason := domain.InitialStageReason
	entry := &domain.StageHistoryEntry{
		ToStage: domain.StageScreening,
		Reason:  &reason,
		MovedAt: now,
	}

	err := s.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		created, err := s.candidates.Create(ctx, candidate)
		if err != nil {
			return err
		}
		candidate = created
		entry.CandidateID = created.ID
		return s.history.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("candidate created",
		"candidate_id", candidate.ID,
		"stage", candidate.Stage,
		"created_by", caller.ID,
	)
	s.publish(ctx, domain.ChangeEvent{
		Type:       domain.EventCandidateCreated,
		EntityID:   candidate.ID,
		ActorID:    caller.ID,
		ToStage:    stagePtr(candidate.Stage),
		OccurredAt: now,
	})

	return &domain.CandidateDetail{
		Candidate: candidate,
		IsStuck:   candidate.IsStuckAt(s.now()),
		Feedbacks: []*domain.Feedback{},
		Notes:     []*domain.Note{},
		History:   []*domain.StageHistoryEntry{entry},
	}, nil
}

// ListCandidates returns one page of candidates, each with its newest
// feedback and notes.
func (s *CandidateService) ListCandidates(ctx context.Context, f domain.CandidateFilter) (*CandidatePage, error) {
	f.Page, f.Limit = normalizePage(f.Page, f.Limit, defaultCandidatePageSize, maxCandidatePageSize)

	var page *CandidatePage
	err := s.tx.WithinReadOnly(ctx, func(ctx context.Context) error {
		candidates, total, err := s.candidates.List(ctx, f)
		if err != nil {
			return err
		}

		now := s.now()
		details := make([]*domain.CandidateDetail, 0, len(candidates))
		for _, c := range candidates {
			feedbacks, err := s.feedbacks.ListByCandidate(ctx, c.ID, listPreviewSize)
			if err != nil {
				return err
			}
			notes, err := s.notes.ListByCandidate(ctx, c.ID, listPreviewSize)
			if err != nil {
				return err
			}
			details = append(details, &domain.CandidateDetail{
				Candidate: c,
				IsStuck:   c.IsStuckAt(now),
				Feedbacks: feedbacks,
				Notes:     notes,
			})
		}

		page = &CandidatePage{
			Candidates: details,
			Pagination: domain.NewPagination(f.Page, f.Limit, total),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// GetCandidate returns a candidate with all feedback, notes and history.
func (s *CandidateService) GetCandidate(ctx context.Context, candidateID string) (*domain.CandidateDetail, error) {
	var detail *domain.CandidateDetail
	err := s.tx.WithinReadOnly(ctx, func(ctx context.Context) error {
		c, err := s.candidates.GetByID(ctx, candidateID)
		if err != nil {
			return err
		}
		feedbacks, err := s.feedbacks.ListByCandidate(ctx, candidateID, 0)
		if err != nil {
			return err
		}
		notes, err := s.notes.ListByCandidate(ctx, candidateID, 0)
		if err != nil {
			return err
		}
		history, err := s.history.ListByCandidate(ctx, candidateID)
		if err != nil {
			return err
		}

		detail = &domain.CandidateDetail{
			Candidate: c,
			IsStuck:   c.IsStuckAt(s.now()),
			Feedbacks: feedbacks,
			Notes:     notes,
			History:   history,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// History returns a candidate's audit trail, newest first.
func (s *CandidateService) History(ctx context.Context, candidateID string) ([]*domain.StageHistoryEntry, error) {
	var entries []*domain.StageHistoryEntry
	err := s.tx.WithinReadOnly(ctx, func(ctx context.Context) error {
		if _, err := s.candidates.GetByID(ctx, candidateID); err != nil {
			return err
		}
		var err error
		entries, err = s.history.ListByCandidate(ctx, candidateID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// UpdateCandidate edits contact fields.
func (s *CandidateService) UpdateCandidate(ctx context.Context, caller domain.Caller, candidateID string, in UpdateCandidateInput) (*domain.Candidate, error) {
	if err := requireHR(caller); err != nil {
		return nil, err
	}
	if err := Validate(in); err != nil {
		return nil, err
	}

	fields := domain.CandidateFields{
		Name:       trimmed(in.Name),
		Email:      trimmed(in.Email),
		Phone:      trimmed(in.Phone),
		Position:   trimmed(in.Position),
		Experience: in.Experience,
		Skills:     cleanSkills(in.Skills),
	}
	if fields.Email != nil {
		email := strings.ToLower(*fields.Email)
		fields.Email = &email
	}
	if fields.IsEmpty() {
		return nil, domain.ErrNothingToUpdate
	}

	c, err := s.candidates.UpdateFields(ctx, candidateID, fields)
	if err != nil {
		return nil, err
	}

	slog.Info("candidate updated", "candidate_id", candidateID, "updated_by", caller.ID)
	s.publish(ctx, domain.ChangeEvent{
		Type:     domain.EventCandidateUpdated,
		EntityID: candidateID,
		ActorID:  caller.ID,
	})

	return c, nil
}

// DeleteCandidate removes a candidate with its history, feedback and notes.
func (s *CandidateService) DeleteCandidate(ctx context.Context, caller domain.Caller, candidateID string) error {
	if err := requireHR(caller); err != nil {
		return err
	}
	if err := s.candidates.Delete(ctx, candidateID); err != nil {
		return err
	}

	slog.Info("candidate deleted", "candidate_id", candidateID, "deleted_by", caller.ID)
	s.publish(ctx, domain.ChangeEvent{
		Type:     domain.EventCandidateDeleted,
		EntityID: candidateID,
		ActorID:  caller.ID,
	})

	return nil
}

// UploadResume stores a resume file and records its URL and extracted text on
// the candidate. Text extraction failures are logged and ignored.
func (s *CandidateService) UploadResume(ctx context.Context, caller domain.Caller, candidateID string, up ResumeUpload) (*domain.Candidate, error) {
	if err := requireHR(caller); err != nil {
		return nil, err
	}
	if s.files == nil {
		return nil, errors.New("resume storage is not configured")
	}
	contentType := storage.NormalizeContentType(up.ContentType)
	if err := storage.Validate(contentType, up.Size, s.maxResumeSize); err != nil {
		return nil, err
	}

	if _, err := s.candidates.GetByID(ctx, candidateID); err != nil {
		return nil, err
	}

	// Read one byte past the limit so a lying Size header is still caught.
	data, err := io.ReadAll(io.LimitReader(up.Body, s.maxResumeSize+1))
	if err != nil {
		return nil, fmt.Errorf("read resume upload: %w", err)
	}
	if int64(len(data)) > s.maxResumeSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", domain.ErrFileTooLarge, s.maxResumeSize)
	}

	name := storage.ObjectName(up.Filename, contentType)
	url, err := s.files.Store(ctx, name, contentType, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("store resume: %w", err)
	}

	var text *string
	if extracted, err := storage.ExtractText(bytes.NewReader(data), contentType); err != nil {
		slog.Warn("resume text extraction failed",
			"candidate_id", candidateID,
			"content_type", contentType,
			"error", err,
		)
	} else if extracted != "" {
		text = &extracted
	}

	c, err := s.candidates.SetResume(ctx, candidateID, url, text)
	if err != nil {
		if rmErr := s.files.Remove(ctx, name); rmErr != nil {
			slog.Warn("stored resume left without a candidate",
				"candidate_id", candidateID,
				"url", url,
				"error", rmErr,
			)
		}
		return nil, err
	}

	slog.Info("resume uploaded",
		"candidate_id", candidateID,
		"url", url,
		"bytes", len(data),
		"text_extracted", text != nil,
	)
	s.publish(ctx, domain.ChangeEvent{
		Type:     domain.EventCandidateUpdated,
		EntityID: candidateID,
		ActorID:  caller.ID,
	})

	return c, nil
}

// Dashboard summarizes the pipeline.
func (s *CandidateService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	now := s.now()
	d := &domain.Dashboard{GeneratedAt: now}

	err := s.tx.WithinReadOnly(ctx, func(ctx context.Context) error {
		var err error
		if d.ByStage, d.TotalCandidates, err = s.candidates.CountByStage(ctx); err != nil {
			return err
		}
		if d.RecentlyUpdated, err = s.candidates.RecentlyUpdated(ctx, dashboardRecentSize); err != nil {
			return err
		}
		if d.StuckCandidates, err = s.candidates.ListStuck(ctx, now.Add(-domain.StuckThreshold)); err != nil {
			return err
		}
		d.Transitions, err = s.history.CountTransitions(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// StuckCandidates lists candidates past the stuck threshold and updates the
// stuck gauge.
func (s *CandidateService) StuckCandidates(ctx context.Context) ([]*domain.Candidate, error) {
	stuck, err := s.candidates.ListStuck(ctx, s.now().Add(-domain.StuckThreshold))
	if err != nil {
		return nil, fmt.Errorf("list stuck candidates: %w", err)
	}
	s.metrics.SetStuckCandidates(len(stuck))
	return stuck, nil
}
