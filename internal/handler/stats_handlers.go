package handler

import (
	"net/http"

	"github.com/ysam020/task-management-assessment/internal/handler/dto"
)

// handleTaskStats returns per-status counts of the caller's tasks.
// @Summary Task statistics
// @Tags stats
// @Produce json
// @Success 200 {object} dto.TaskStatsResponse
// @Security BearerAuth
// @Router /tasks/stats [get]
func (h *Handler) handleTaskStats(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrFail(w, r)
	if !ok {
		return
	}

	stats, err := h.taskService.Stats(r.Context(), caller)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "", dto.ToTaskStatsResponse(stats))
}

// handleDashboard summarizes the hiring pipeline.
// @Summary Pipeline dashboard
// @Description Candidate counts per stage, recent activity, stuck candidates and transition counts.
// @Tags stats
// @Produce json
// @Success 200 {object} dto.DashboardResponse
// @Security BearerAuth
// @Router /candidates/dashboard [get]
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.candidateService.Dashboard(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "", dto.ToDashboardResponse(d))
}
