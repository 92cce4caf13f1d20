package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ysam020/task-management-assessment/internal/domain"
	"github.com/ysam020/task-management-assessment/internal/metrics"
	"github.com/ysam020/task-management-assessment/internal/search"
)

const (
	structuredSearchLimit = 100
	searchPreviewSize     = 3
)

// SearchInput is the body of a natural-language search.
type SearchInput struct {
	Query string `json:"query" validate:"required,notblank,max=500"`
}

// SearchResult is the answer to a natural-language search.
type SearchResult struct {
	Query    string
	Criteria search.Criteria
	Results  []*domain.CandidateDetail
	Fallback bool
}

// SearchService answers free-form candidate queries. A language model parses
// the query when configured; otherwise, or when the model fails, a keyword
// parser is used and results are capped at search.FallbackLimit.
type SearchService struct {
	candidates CandidateStore
	feedbacks  FeedbackStore
	notes      NoteStore
	parser     search.Parser
	fallback   search.Parser
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewSearchService creates a new SearchService. parser may be nil.
func NewSearchService(candidates CandidateStore, feedbacks FeedbackStore, notes NoteStore, parser search.Parser, m *metrics.Metrics) *SearchService {
	return &SearchService{
		candidates: candidates,
		feedbacks:  feedbacks,
		notes:      notes,
		parser:     parser,
		fallback:   search.KeywordParser{},
		metrics:    m,
		now:        time.Now,
	}
}

// Search parses the query and runs the resulting filter.
func (s *SearchService) Search(ctx context.Context, in SearchInput) (*SearchResult, error) {
	if err := Validate(in); err != nil {
		if strings.TrimSpace(in.Query) == "" {
			return nil, domain.ErrEmptySearchQuery
		}
		return nil, err
	}
	query := strings.TrimSpace(in.Query)

	criteria, fallback := s.parse(ctx, query)
	limit := structuredSearchLimit
	parserName := "llm"
	if fallback {
		limit = search.FallbackLimit
		parserName = "keyword"
	}

	candidates, _, err := s.candidates.List(ctx, criteria.Filter(limit))
	if err != nil {
		return nil, err
	}

	now := s.now()
	results := make([]*domain.CandidateDetail, 0, len(candidates))
	for _, c := range candidates {
		feedbacks, err := s.feedbacks.ListByCandidate(ctx, c.ID, searchPreviewSize)
		if err != nil {
			return nil, err
		}
		notes, err := s.notes.ListByCandidate(ctx, c.ID, searchPreviewSize)
		if err != nil {
			return nil, err
		}
		results = append(results, &domain.CandidateDetail{
			Candidate: c,
			IsStuck:   c.IsStuckAt(now),
			Feedbacks: feedbacks,
			Notes:     notes,
		})
	}

	s.metrics.SearchServed(parserName)
	slog.Info("candidate search served",
		"parser", parserName,
		"results", len(results),
	)

	return &SearchResult{
		Query:    query,
		Criteria: criteria,
		Results:  results,
		Fallback: fallback,
	}, nil
}

func (s *SearchService) parse(ctx context.Context, query string) (search.Criteria, bool) {
	if s.parser != nil {
		c, err := s.parser.Parse(ctx, query)
		if err == nil {
			return c, false
		}
		slog.Warn("language model query parse failed, using keyword parser", "error", err)
	}

	c, _ := s.fallback.Parse(ctx, query)
	return c, true
}
