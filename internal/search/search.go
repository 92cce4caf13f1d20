// Package search turns free-form recruiter queries into structured candidate filters.
package search

import (
	"context"
	"strings"

	"github.com/ysam020/task-management-assessment/internal/domain"
)

// FallbackLimit caps result sets produced from keyword-parsed queries.
const FallbackLimit = 50

// Criteria is the structured form of a natural-language query.
type Criteria struct {
	Stage    *domain.Stage `json:"stage,omitempty"`
	Skills   []string      `json:"skills,omitempty"`
	Position string        `json:"position,omitempty"`
	Search   string        `json:"search,omitempty"`
}

// Filter converts the criteria into a candidate store filter.
func (c Criteria) Filter(limit int) domain.CandidateFilter {
	return domain.CandidateFilter{
		Stage:    c.Stage,
		Search:   c.Search,
		Skills:   c.Skills,
		Position: c.Position,
		Page:     1,
		Limit:    limit,
	}
}

// Parser extracts criteria from a query.
type Parser interface {
	Parse(ctx context.Context, query string) (Criteria, error)
}

func cleanSkills(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
