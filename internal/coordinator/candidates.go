package coordinator

import (
	"context"
	"fmt"
	"slices"

	"github.com/ysam020/task-management-assessment/internal/client"
	"github.com/ysam020/task-management-assessment/internal/domain"
	"github.com/ysam020/task-management-assessment/internal/handler/dto"
)

// CandidateAPI is the part of the REST client the candidate store uses.
type CandidateAPI interface {
	ListCandidates(ctx context.Context, q client.CandidateQuery) (dto.CandidatesListResponse, error)
	Dashboard(ctx context.Context) (dto.DashboardResponse, error)
	MoveStage(ctx context.Context, id, toStage, reason string) (dto.MoveStageResponse, error)
}

// Candidates is the optimistic store for a candidate listing. Its counters
// are the dashboard's per-stage counts.
type Candidates struct {
	*Store[dto.CandidateResponse, client.CandidateQuery, dto.DashboardResponse]
	api CandidateAPI
}

// NewCandidates creates a candidate store backed by api.
func NewCandidates(api CandidateAPI) *Candidates {
	return &Candidates{
		api: api,
		Store: New(Options[dto.CandidateResponse, client.CandidateQuery, dto.DashboardResponse]{
			ID: func(c dto.CandidateResponse) string { return c.ID },
			List: func(ctx context.Context, q client.CandidateQuery) (Page[dto.CandidateResponse], error) {
				res, err := api.ListCandidates(ctx, q)
				if err != nil {
					return Page[dto.CandidateResponse]{}, err
				}
				return Page[dto.CandidateResponse]{Items: res.Candidates, Total: res.Pagination.Total}, nil
			},
			FilterKey: func(q client.CandidateQuery) string {
				return fmt.Sprintf("page=%d&limit=%d&stage=%s&search=%s", q.Page, q.Limit, q.Stage, q.Search)
			},
			Stats:      api.Dashboard,
			CloneStats: cloneDashboard,
		}),
	}
}

// Move moves a candidate to toStage. Backward moves are refused locally
// without a request.
func (c *Candidates) Move(ctx context.Context, id, toStage, reason string) (dto.CandidateResponse, error) {
	target, err := domain.ParseStage(toStage)
	if err != nil {
		return dto.CandidateResponse{}, err
	}

	var current string
	for _, cand := range c.View().Items {
		if cand.ID == id {
			current = cand.CurrentStage
			break
		}
	}
	if current != "" {
		ok, err := domain.IsForwardOrEqual(domain.Stage(current), target)
		if err != nil {
			return dto.CandidateResponse{}, err
		}
		if !ok {
			return dto.CandidateResponse{}, fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, current, target)
		}
	}

	return c.Store.Update(ctx, id,
		func(cand dto.CandidateResponse) dto.CandidateResponse {
			cand.CurrentStage = string(target)
			cand.IsStuck = false
			return cand
		},
		moveStageCount,
		func(ctx context.Context) (dto.CandidateResponse, error) {
			res, err := c.api.MoveStage(ctx, id, string(target), reason)
			if err != nil {
				return dto.CandidateResponse{}, err
			}
			return res.Candidate, nil
		},
	)
}

// Advance moves a candidate to the stage after its current one.
func (c *Candidates) Advance(ctx context.Context, id, reason string) (dto.CandidateResponse, error) {
	for _, cand := range c.View().Items {
		if cand.ID != id {
			continue
		}
		idx, err := domain.IndexOf(domain.Stage(cand.CurrentStage))
		if err != nil {
			return dto.CandidateResponse{}, err
		}
		next := domain.Stages[min(idx+1, len(domain.Stages)-1)]
		return c.Move(ctx, id, string(next), reason)
	}
	return dto.CandidateResponse{}, fmt.Errorf("%w: %s", ErrNotLoaded, id)
}

func moveStageCount(d *dto.DashboardResponse, before, after dto.CandidateResponse) {
	if before.CurrentStage == after.CurrentStage {
		return
	}
	counts := slices.Clone(d.CandidatesByStage)
	for i := range counts {
		switch counts[i].Stage {
		case before.CurrentStage:
			counts[i].Count--
		case after.CurrentStage:
			counts[i].Count++
		}
	}
	d.CandidatesByStage = counts
}

func cloneDashboard(d dto.DashboardResponse) dto.DashboardResponse {
	d.CandidatesByStage = slices.Clone(d.CandidatesByStage)
	d.RecentlyUpdated = slices.Clone(d.RecentlyUpdated)
	d.StuckCandidatesList = slices.Clone(d.StuckCandidatesList)
	d.Transitions = slices.Clone(d.Transitions)
	return d
}
