package handler

import (
	"net/http"

	"github.com/ysam020/task-management-assessment/internal/handler/dto"
	"github.com/ysam020/task-management-assessment/internal/service"
)

// handleAddFeedback records feedback against the candidate's current stage.
// @Summary Add feedback
// @Tags feedback
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param request body service.FeedbackInput true "Feedback"
// @Success 201 {object} dto.FeedbackResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /candidates/{id}/feedbacks [post]
func (h *Handler) handleAddFeedback(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrFail(w, r)
	if !ok {
		return
	}
	candidateID, ok := extractID(w, r, "candidate")
	if !ok {
		return
	}

	var req service.FeedbackInput
	if !decodeJSON(w, r, &req) {
		return
	}

	fb, err := h.collaborationService.AddFeedback(r.Context(), caller, candidateID, req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, "Feedback added successfully", dto.ToFeedbackResponse(fb))
}

// handleListFeedback lists feedback for a candidate.
// @Summary List feedback
// @Tags feedback
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {array} dto.FeedbackResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /candidates/{id}/feedbacks [get]
func (h *Handler) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := extractID(w, r, "candidate")
	if !ok {
		return
	}

	list, err := h.collaborationService.ListFeedback(r.Context(), candidateID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "", dto.ToFeedbackResponses(list))
}

// handleGetFeedback returns one feedback entry.
// @Summary Get feedback
// @Tags feedback
// @Produce json
// @Param id path string true "Feedback ID"
// @Success 200 {object} dto.FeedbackResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /feedbacks/{id} [get]
func (h *Handler) handleGetFeedback(w http.ResponseWriter, r *http.Request) {
	feedbackID, ok := extractID(w, r, "feedback")
	if !ok {
		return
	}

	fb, err := h.collaborationService.GetFeedback(r.Context(), feedbackID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "", dto.ToFeedbackResponse(fb))
}

// handleDeleteFeedback removes feedback. Only the author or HR may do this.
// @Summary Delete feedback
// @Tags feedback
// @Produce json
// @Param id path string true "Feedback ID"
// @Success 200 {object} dto.Envelope
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /feedbacks/{id} [delete]
func (h *Handler) handleDeleteFeedback(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrFail(w, r)
	if !ok {
		return
	}
	feedbackID, ok := extractID(w, r, "feedback")
	if !ok {
		return
	}

	if err := h.collaborationService.DeleteFeedback(r.Context(), caller, feedbackID); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Feedback deleted successfully", nil)
}

// handleAddNote attaches a note to a candidate.
// @Summary Add a note
// @Tags notes
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param request body service.NoteInput true "Note"
// @Success 201 {object} dto.NoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /candidates/{id}/notes [post]
func (h *Handler) handleAddNote(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrFail(w, r)
	if !ok {
		return
	}
	candidateID, ok := extractID(w, r, "candidate")
	if !ok {
		return
	}

	var req service.NoteInput
	if !decodeJSON(w, r, &req) {
		return
	}

	n, err := h.collaborationService.AddNote(r.Context(), caller, candidateID, req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, "Note added successfully", dto.ToNoteResponse(n))
}

// handleListNotes lists notes for a candidate.
// @Summary List notes
// @Tags notes
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {array} dto.NoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /candidates/{id}/notes [get]
func (h *Handler) handleListNotes(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := extractID(w, r, "candidate")
	if !ok {
		return
	}

	list, err := h.collaborationService.ListNotes(r.Context(), candidateID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "", dto.ToNoteResponses(list))
}

// handleGetNote returns one note.
// @Summary Get a note
// @Tags notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} dto.NoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /notes/{id} [get]
func (h *Handler) handleGetNote(w http.ResponseWriter, r *http.Request) {
	noteID, ok := extractID(w, r, "note")
	if !ok {
		return
	}

	n, err := h.collaborationService.GetNote(r.Context(), noteID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "", dto.ToNoteResponse(n))
}

// handleUpdateNote replaces a note's content. Only the author or HR may do this.
// @Summary Update a note
// @Tags notes
// @Accept json
// @Produce json
// @Param id path string true "Note ID"
// @Param request body service.NoteInput true "Note"
// @Success 200 {object} dto.NoteResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /notes/{id} [patch]
func (h *Handler) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrFail(w, r)
	if !ok {
		return
	}
	noteID, ok := extractID(w, r, "note")
	if !ok {
		return
	}

	var req service.NoteInput
	if !decodeJSON(w, r, &req) {
		return
	}

	n, err := h.collaborationService.UpdateNote(r.Context(), caller, noteID, req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Note updated successfully", dto.ToNoteResponse(n))
}

// handleDeleteNote removes a note. Only the author or HR may do this.
// @Summary Delete a note
// @Tags notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} dto.Envelope
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /notes/{id} [delete]
func (h *Handler) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrFail(w, r)
	if !ok {
		return
	}
	noteID, ok := extractID(w, r, "note")
	if !ok {
		return
	}

	if err := h.collaborationService.DeleteNote(r.Context(), caller, noteID); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Note deleted successfully", nil)
}
