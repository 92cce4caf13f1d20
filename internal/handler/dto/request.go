package dto

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ysam020/task-management-assessment/internal/domain"
)

// ParseTaskFilter reads GET /api/tasks query parameters:
// ?page=1&limit=10&status=PENDING&search=report&sortBy=title&sortOrder=asc
func ParseTaskFilter(q url.Values) (domain.TaskFilter, error) {
	var f domain.TaskFilter

	page, err := intParam(q, "page")
	if err != nil {
		return f, err
	}
	limit, err := intParam(q, "limit")
	if err != nil {
		return f, err
	}
	f.Page, f.Limit = page, limit

	if raw := q.Get("status"); raw != "" {
		status, err := domain.ParseTaskStatus(strings.ToUpper(raw))
		if err != nil {
			return f, err
		}
		f.Status = &status
	}

	f.Search = strings.TrimSpace(q.Get("search"))

	switch sortBy := domain.TaskSortField(q.Get("sortBy")); sortBy {
	case "":
		f.SortBy = domain.TaskSortCreatedAt
	case domain.TaskSortCreatedAt, domain.TaskSortUpdatedAt, domain.TaskSortTitle:
		f.SortBy = sortBy
	default:
		return f, domain.NewValidationError("sortBy", "must be one of createdAt, updatedAt, title")
	}

	switch strings.ToLower(q.Get("sortOrder")) {
	case "", "desc":
		f.SortDesc = true
	case "asc":
		f.SortDesc = false
	default:
		return f, domain.NewValidationError("sortOrder", "must be asc or desc")
	}

	return f, nil
}

// ParseCandidateFilter reads GET /api/candidates query parameters:
// ?stage=L1&search=go&page=1&limit=10
func ParseCandidateFilter(q url.Values) (domain.CandidateFilter, error) {
	var f domain.CandidateFilter

	page, err := intParam(q, "page")
	if err != nil {
		return f, err
	}
	limit, err := intParam(q, "limit")
	if err != nil {
		return f, err
	}
	f.Page, f.Limit = page, limit

	if raw := q.Get("stage"); raw != "" {
		stage, err := domain.ParseStage(raw)
		if err != nil {
			return f, err
		}
		f.Stage = &stage
	}

	f.Search = strings.TrimSpace(q.Get("search"))
	return f, nil
}

// ParseLimit reads an optional positive ?limit= parameter.
func ParseLimit(q url.Values) (int, error) {
	return intParam(q, "limit")
}

func intParam(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, domain.NewValidationError(name, fmt.Sprintf("must be a positive integer, got %q", raw))
	}
	return n, nil
}
