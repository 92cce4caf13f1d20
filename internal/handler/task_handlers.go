package handler

import (
	"net/http"

	"github.com/ysam020/task-management-assessment/internal/handler/dto"
	"github.com/ysam020/task-management-assessment/internal/service"
)

// handleListTasks returns one page of the caller's tasks.
// @Summary List tasks
// @Tags tasks
// @Produce json
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Param status query string false "PENDING, IN_PROGRESS or COMPLETED"
// @Param search query string false "Case-insensitive match on title and description"
// @Param sortBy query string false "createdAt (default), updatedAt or title"
// @Param sortOrder query string false "asc or desc (default)"
// @Success 200 {object} dto.TasksListResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks [get]
func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrFail(w, r)
	if !ok {
		return
	}

	filter, err := dto.ParseTaskFilter(r.URL.Query())
	if err != nil {
		respondError(w, err)
		return
	}

	page, err := h.taskService.ListTasks(r.Context(), caller, filter)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "", dto.TasksListResponse{
		Tasks:      dto.ToTaskResponses(page.Tasks),
		Pagination: dto.ToPaginationResponse(page.Pagination),
	})
}

// handleCreateTask creates a task owned by the caller.
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body service.CreateTaskInput true "Task creation request"
// @Success 201 {object} dto.TaskResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks [post]
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrFail(w, r)
	if !ok {
		return
	}

	var req service.CreateTaskInput
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), caller, req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, "Task created successfully", dto.ToTaskResponse(task))
}

// handleGetTask returns one of the caller's tasks.
// @Summary Get a task
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TaskResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [get]
func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrFail(w, r)
	if !ok {
		return
	}
	taskID, ok := extractID(w, r, "task")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), caller, taskID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "", dto.ToTaskResponse(task))
}

// handleUpdateTask applies a partial update.
// @Summary Update a task
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body service.UpdateTaskInput true "Fields to change"
// @Success 200 {object} dto.TaskResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [patch]
func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrFail(w, r)
	if !ok {
		return
	}
	taskID, ok := extractID(w, r, "task")
	if !ok {
		return
	}

	var req service.UpdateTaskInput
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), caller, taskID, req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Task updated successfully", dto.ToTaskResponse(task))
}

// handleDeleteTask removes a task.
// @Summary Delete a task
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.Envelope
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [delete]
func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrFail(w, r)
	if !ok {
		return
	}
	taskID, ok := extractID(w, r, "task")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), caller, taskID); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Task deleted successfully", nil)
}

// handleToggleTask advances the task status cycle.
// @Summary Toggle task status
// @Description PENDING -> IN_PROGRESS -> COMPLETED -> PENDING
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TaskResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/toggle [post]
func (h *Handler) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrFail(w, r)
	if !ok {
		return
	}
	taskID, ok := extractID(w, r, "task")
	if !ok {
		return
	}

	task, err := h.taskService.ToggleTask(r.Context(), caller, taskID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Task status toggled successfully", dto.ToTaskResponse(task))
}

// handleRecentTasks returns the caller's newest tasks.
// @Summary Recent tasks
// @Tags tasks
// @Produce json
// @Param limit query int false "Number of tasks (default 5)"
// @Success 200 {array} dto.TaskResponse
// @Security BearerAuth
// @Router /tasks/recent [get]
func (h *Handler) handleRecentTasks(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrFail(w, r)
	if !ok {
		return
	}

	limit, err := dto.ParseLimit(r.URL.Query())
	if err != nil {
		respondError(w, err)
		return
	}

	tasks, err := h.taskService.RecentTasks(r.Context(), caller, limit)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "", dto.ToTaskResponses(tasks))
}
