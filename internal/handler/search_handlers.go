package handler

import (
	"net/http"

	"github.com/ysam020/task-management-assessment/internal/handler/dto"
	"github.com/ysam020/task-management-assessment/internal/service"
)

// handleSearch answers a natural-language candidate query.
// @Summary Natural-language candidate search
// @Description Parsed by a language model when configured, otherwise by keyword matching (max 50 results).
// @Tags search
// @Accept json
// @Produce json
// @Param request body service.SearchInput true "Query"
// @Success 200 {object} dto.SearchResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /ai-search [post]
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req service.SearchInput
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.searchService.Search(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}

	results := dto.ToCandidateDetailResponses(res.Results)
	respondSuccess(w, http.StatusOK, "", dto.SearchResponse{
		Query:    res.Query,
		Criteria: res.Criteria,
		Results:  results,
		Count:    len(results),
		Fallback: res.Fallback,
	})
}
