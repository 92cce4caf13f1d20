package handler

import (
	"errors"
	"net/http"

	"github.com/ysam020/task-management-assessment/internal/domain"
	"github.com/ysam020/task-management-assessment/internal/handler/dto"
	"github.com/ysam020/task-management-assessment/internal/service"
)

// resumeField is the multipart field carrying the resume file.
const resumeField = "resume"

// handleListCandidates returns one page of candidates.
// @Summary List candidates
// @Tags candidates
// @Produce json
// @Param stage query string false "Pipeline stage"
// @Param search query string false "Match on name, email, position or exact skill"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10)"
// @Success 200 {object} dto.CandidatesListResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /candidates [get]
func (h *Handler) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	filter, err := dto.ParseCandidateFilter(r.URL.Query())
	if err != nil {
		respondError(w, err)
		return
	}

	page, err := h.candidateService.ListCandidates(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "", dto.CandidatesListResponse{
		Candidates: dto.ToCandidateDetailResponses(page.Candidates),
		Pagination: dto.ToPaginationResponse(page.Pagination),
	})
}

// handleCreateCandidate adds a candidate at the first stage.
// @Summary Create a candidate
// @Tags candidates
// @Accept json
// @Produce json
// @Param request body service.CreateCandidateInput true "Candidate"
// @Success 201 {object} dto.CandidateResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /candidates [post]
func (h *Handler) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrFail(w, r)
	if !ok {
		return
	}

	var req service.CreateCandidateInput
	if !decodeJSON(w, r, &req) {
		return
	}

	detail, err := h.candidateService.CreateCandidate(r.Context(), caller, req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, "Candidate created successfully", dto.ToCandidateDetailResponse(detail))
}

// handleGetCandidate returns a candidate with feedback, notes and history.
// @Summary Get a candidate
// @Tags candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} dto.CandidateResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /candidates/{id} [get]
func (h *Handler) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := extractID(w, r, "candidate")
	if !ok {
		return
	}

	detail, err := h.candidateService.GetCandidate(r.Context(), candidateID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "", dto.ToCandidateDetailResponse(detail))
}

// handleUpdateCandidate edits contact fields.
// @Summary Update a candidate
// @Description Stage fields cannot be changed here; use move-stage.
// @Tags candidates
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param request body service.UpdateCandidateInput true "Fields to change"
// @Success 200 {object} dto.CandidateResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /candidates/{id} [patch]
func (h *Handler) handleUpdateCandidate(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrFail(w, r)
	if !ok {
		return
	}
	candidateID, ok := extractID(w, r, "candidate")
	if !ok {
		return
	}

	var req service.UpdateCandidateInput
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.candidateService.UpdateCandidate(r.Context(), caller, candidateID, req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Candidate updated successfully", dto.ToCandidateResponse(c, c.IsStuckAt(h.now())))
}

// handleDeleteCandidate removes a candidate and everything attached to it.
// @Summary Delete a candidate
// @Tags candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} dto.Envelope
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /candidates/{id} [delete]
func (h *Handler) handleDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrFail(w, r)
	if !ok {
		return
	}
	candidateID, ok := extractID(w, r, "candidate")
	if !ok {
		return
	}

	if err := h.candidateService.DeleteCandidate(r.Context(), caller, candidateID); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Candidate deleted successfully", nil)
}

// handleUploadResume stores a resume file for a candidate.
// @Summary Upload a resume
// @Description Multipart field "resume"; PDF, DOC, DOCX or TXT.
// @Tags candidates
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Candidate ID"
// @Param resume formData file true "Resume file"
// @Success 200 {object} dto.CandidateResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /candidates/{id}/resume [post]
func (h *Handler) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrFail(w, r)
	if !ok {
		return
	}
	candidateID, ok := extractID(w, r, "candidate")
	if !ok {
		return
	}

	// Leave room for multipart framing around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+maxJSONBody)
	file, header, err := r.FormFile(resumeField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, domain.ErrFileTooLarge)
			return
		}
		respondError(w, domain.NewValidationError(resumeField, "is required"))
		return
	}
	defer file.Close()

	c, err := h.candidateService.UploadResume(r.Context(), caller, candidateID, service.ResumeUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Resume uploaded successfully", dto.ToCandidateResponse(c, c.IsStuckAt(h.now())))
}

// handleMoveStage moves a candidate to a later (or the same) stage.
// @Summary Move a candidate to a stage
// @Description Backward moves are rejected with 400. Moving to the current stage restarts the stage clock.
// @Tags pipeline
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param request body service.MoveStageInput true "Target stage and optional reason"
// @Success 200 {object} dto.MoveStageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /candidates/{id}/move-stage [post]
func (h *Handler) handleMoveStage(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrFail(w, r)
	if !ok {
		return
	}
	candidateID, ok := extractID(w, r, "candidate")
	if !ok {
		return
	}

	var req service.MoveStageInput
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.candidateService.MoveToStage(r.Context(), caller, candidateID, req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Candidate moved to "+string(res.Candidate.Stage), dto.ToMoveStageResponse(res))
}

// nextStageRequest is the optional body of a next-stage request.
type nextStageRequest struct {
	Reason *string `json:"reason"`
}

// handleNextStage moves a candidate to the following stage.
// @Summary Advance a candidate one stage
// @Tags pipeline
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} dto.MoveStageResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /candidates/{id}/next-stage [post]
func (h *Handler) handleNextStage(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrFail(w, r)
	if !ok {
		return
	}
	candidateID, ok := extractID(w, r, "candidate")
	if !ok {
		return
	}

	var req nextStageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.candidateService.MoveToNextStage(r.Context(), caller, candidateID, req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Candidate moved to "+string(res.Candidate.Stage), dto.ToMoveStageResponse(res))
}

// handleStageHistory returns a candidate's audit trail, newest first.
// @Summary Stage history
// @Tags pipeline
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {array} dto.StageHistoryResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /candidates/{id}/history [get]
func (h *Handler) handleStageHistory(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := extractID(w, r, "candidate")
	if !ok {
		return
	}

	entries, err := h.candidateService.History(r.Context(), candidateID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "", dto.ToStageHistoryResponses(entries))
}
