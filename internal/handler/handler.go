package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "github.com/ysam020/task-management-assessment/docs" // Register API docs
	"github.com/ysam020/task-management-assessment/internal/auth"
	"github.com/ysam020/task-management-assessment/internal/database"
	"github.com/ysam020/task-management-assessment/internal/domain"
	"github.com/ysam020/task-management-assessment/internal/events"
	"github.com/ysam020/task-management-assessment/internal/handler/dto"
	"github.com/ysam020/task-management-assessment/internal/metrics"
	"github.com/ysam020/task-management-assessment/internal/middleware"
	"github.com/ysam020/task-management-assessment/internal/repository"
	"github.com/ysam020/task-management-assessment/internal/search"
	"github.com/ysam020/task-management-assessment/internal/service"
	"github.com/ysam020/task-management-assessment/internal/static"
	"github.com/ysam020/task-management-assessment/internal/storage"
)

// maxJSONBody caps request bodies other than resume uploads.
const maxJSONBody = 1 << 20

// Pool is the part of *pgxpool.Pool the handlers depend on.
type Pool interface {
	database.Queryer
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// Options carries the optional collaborators of the HTTP layer.
type Options struct {
	Issuer        *auth.Issuer
	Files         storage.FileStore
	FilesHandler  http.Handler
	MaxUploadSize int64
	Publisher     events.Publisher
	Metrics       *metrics.Metrics
	Parser        search.Parser
	LoginLimiter  *middleware.RateLimiter
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	pool                 Pool
	authService          *service.AuthService
	taskService          *service.TaskService
	candidateService     *service.CandidateService
	collaborationService *service.CollaborationService
	searchService        *service.SearchService
	authMiddleware       *middleware.AuthMiddleware
	metrics              *metrics.Metrics
	filesHandler         http.Handler
	loginLimiter         *middleware.RateLimiter
	maxUploadSize        int64
	now                  func() time.Time
}

// New creates a new Handler instance with all dependencies.
func New(pool Pool, opts Options) *Handler {
	// Create repositories
	tx := database.NewTransactionManager(pool)
	userRepo := repository.NewUserRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)
	candidateRepo := repository.NewCandidateRepository(pool)
	historyRepo := repository.NewStageHistoryRepository(pool)
	feedbackRepo := repository.NewFeedbackRepository(pool)
	noteRepo := repository.NewNoteRepository(pool)

	maxUpload := opts.MaxUploadSize
	if maxUpload <= 0 {
		maxUpload = storage.DefaultMaxFileSize
	}

	// Create services
	candidateService := service.NewCandidateService(tx, candidateRepo, historyRepo, feedbackRepo, noteRepo, opts.Publisher).
		WithMetrics(opts.Metrics)
	if opts.Files != nil {
		candidateService.WithFileStore(opts.Files, maxUpload)
	}

	return &Handler{
		pool:                 pool,
		authService:          service.NewAuthService(tx, userRepo, opts.Issuer),
		taskService:          service.NewTaskService(taskRepo, opts.Publisher),
		candidateService:     candidateService,
		collaborationService: service.NewCollaborationService(tx, candidateRepo, feedbackRepo, noteRepo),
		searchService:        service.NewSearchService(candidateRepo, feedbackRepo, noteRepo, opts.Parser, opts.Metrics),
		authMiddleware:       middleware.NewAuthMiddleware(opts.Issuer),
		metrics:              opts.Metrics,
		filesHandler:         opts.FilesHandler,
		loginLimiter:         opts.LoginLimiter,
		maxUploadSize:        maxUpload,
		now:                  time.Now,
	}
}

// CandidateService exposes the pipeline service for background jobs.
func (h *Handler) CandidateService() *service.CandidateService {
	return h.candidateService
}

// AuthService exposes the account service for background jobs.
func (h *Handler) AuthService() *service.AuthService {
	return h.authService
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	authed := func(fn http.HandlerFunc) http.Handler {
		return h.authMiddleware.Authenticate(fn)
	}
	hrOnly := func(fn http.HandlerFunc) http.Handler {
		return h.authMiddleware.Authenticate(middleware.RequireRole(domain.RoleHR, fn))
	}

	// Health check and docs
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("GET /api.md", h.handleAPIMd)
	mux.HandleFunc("GET /swagger/", httpSwagger.Handler())
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics.Handler())
	}
	if h.filesHandler != nil {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", h.filesHandler))
	}

	// Auth
	login := http.Handler(http.HandlerFunc(h.handleLogin))
	register := http.Handler(http.HandlerFunc(h.handleRegister))
	if h.loginLimiter != nil {
		login = h.loginLimiter.Limit(login)
		register = h.loginLimiter.Limit(register)
	}
	mux.Handle("POST /api/auth/register", register)
	mux.Handle("POST /api/auth/login", login)
	mux.HandleFunc("POST /api/auth/refresh", h.handleRefresh)
	mux.HandleFunc("POST /api/auth/logout", h.handleLogout)
	mux.Handle("GET /api/auth/me", authed(h.handleMe))

	// Tasks
	mux.Handle("GET /api/tasks", authed(h.handleListTasks))
	mux.Handle("POST /api/tasks", authed(h.handleCreateTask))
	mux.Handle("GET /api/tasks/stats", authed(h.handleTaskStats))
	mux.Handle("GET /api/tasks/recent", authed(h.handleRecentTasks))
	mux.Handle("GET /api/tasks/{id}", authed(h.handleGetTask))
	mux.Handle("PATCH /api/tasks/{id}", authed(h.handleUpdateTask))
	mux.Handle("DELETE /api/tasks/{id}", authed(h.handleDeleteTask))
	mux.Handle("POST /api/tasks/{id}/toggle", authed(h.handleToggleTask))

	// Candidates
	mux.Handle("GET /api/candidates", authed(h.handleListCandidates))
	mux.Handle("POST /api/candidates", hrOnly(h.handleCreateCandidate))
	mux.Handle("GET /api/candidates/dashboard", authed(h.handleDashboard))
	mux.Handle("GET /api/candidates/{id}", authed(h.handleGetCandidate))
	mux.Handle("PATCH /api/candidates/{id}", hrOnly(h.handleUpdateCandidate))
	mux.Handle("DELETE /api/candidates/{id}", hrOnly(h.handleDeleteCandidate))
	mux.Handle("POST /api/candidates/{id}/resume", hrOnly(h.handleUploadResume))
	mux.Handle("POST /api/candidates/{id}/move-stage", hrOnly(h.handleMoveStage))
	mux.Handle("POST /api/candidates/{id}/next-stage", hrOnly(h.handleNextStage))
	mux.Handle("GET /api/candidates/{id}/history", authed(h.handleStageHistory))

	// Feedback and notes
	mux.Handle("POST /api/candidates/{id}/feedbacks", authed(h.handleAddFeedback))
	mux.Handle("GET /api/candidates/{id}/feedbacks", authed(h.handleListFeedback))
	mux.Handle("GET /api/feedbacks/{id}", authed(h.handleGetFeedback))
	mux.Handle("DELETE /api/feedbacks/{id}", authed(h.handleDeleteFeedback))
	mux.Handle("POST /api/candidates/{id}/notes", authed(h.handleAddNote))
	mux.Handle("GET /api/candidates/{id}/notes", authed(h.handleListNotes))
	mux.Handle("GET /api/notes/{id}", authed(h.handleGetNote))
	mux.Handle("PATCH /api/notes/{id}", authed(h.handleUpdateNote))
	mux.Handle("DELETE /api/notes/{id}", authed(h.handleDeleteNote))

	// Search
	mux.Handle("POST /api/ai-search", authed(h.handleSearch))
}

// handleHealth returns 200 OK if the database is reachable.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /health [get]
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.pool.Ping(ctx); err != nil {
		slog.Error("database health check failed", "error", err)
		respondJSON(w, http.StatusServiceUnavailable, dto.NewErrorResponse("Database unavailable", nil))
		return
	}

	respondJSON(w, http.StatusOK, dto.HealthResponse{
		Status:    dto.StatusSuccess,
		Message:   "Server is running",
		Timestamp: h.now().UTC(),
	})
}

// handleAPIMd serves the embedded API overview.
func (h *Handler) handleAPIMd(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(static.APIMd))
}

// Ping checks if the database is reachable (used for testing).
func (h *Handler) Ping(ctx context.Context) error {
	return h.pool.Ping(ctx)
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondSuccess wraps data in the success envelope.
func respondSuccess(w http.ResponseWriter, status int, message string, data any) {
	respondJSON(w, status, dto.NewSuccessResponse(message, data))
}

// respondError maps err to a status code and writes the error envelope.
func respondError(w http.ResponseWriter, err error) {
	status, message, fields := dto.MapDomainError(err)
	respondJSON(w, status, dto.NewErrorResponse(message, fields))
}

// respondBadRequest writes a 400 with a fixed message.
func respondBadRequest(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, dto.NewErrorResponse(message, nil))
}

// decodeJSON reads a JSON request body into v. Returns false if the body is
// malformed (error already sent to client).
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(w, "Invalid request body")
		return false
	}
	return true
}

// extractID extracts and validates a UUID path parameter.
// Returns (id, true) if valid, ("", false) if invalid (error already sent to client).
func extractID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		respondBadRequest(w, name+" id is required")
		return "", false
	}

	if _, err := uuid.Parse(id); err != nil {
		respondBadRequest(w, name+" id must be a valid UUID")
		return "", false
	}

	return id, true
}

// callerOrFail returns the authenticated caller. Returns false if missing
// (error already sent to client).
func callerOrFail(w http.ResponseWriter, r *http.Request) (domain.Caller, bool) {
	caller, err := middleware.CallerFromContext(r.Context())
	if err != nil {
		respondError(w, err)
		return domain.Caller{}, false
	}
	return caller, true
}
