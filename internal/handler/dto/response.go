package dto

import (
	"time"

	"github.com/ysam020/task-management-assessment/internal/auth"
	"github.com/ysam020/task-management-assessment/internal/domain"
	"github.com/ysam020/task-management-assessment/internal/search"
)

// UserResponse is a user without credentials.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// PaginationResponse describes one page of a listing.
type PaginationResponse struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// TaskResponse represents a task.
type TaskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TasksListResponse represents the response for GET /api/tasks.
type TasksListResponse struct {
	Tasks      []TaskResponse     `json:"tasks"`
	Pagination PaginationResponse `json:"pagination"`
}

// TaskStatsResponse holds per-status task counts.
type TaskStatsResponse struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

// FeedbackResponse represents a feedback entry.
type FeedbackResponse struct {
	ID          string    `json:"id"`
	CandidateID string    `json:"candidateId"`
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName"`
	Stage       string    `json:"stage"`
	Rating      *int      `json:"rating"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NoteResponse represents a note.
type NoteResponse struct {
	ID          string    `json:"id"`
	CandidateID string    `json:"candidateId"`
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// StageHistoryResponse represents one audit trail entry.
type StageHistoryResponse struct {
	ID        string    `json:"id"`
	FromStage *string   `json:"fromStage"`
	ToStage   string    `json:"toStage"`
	Reason    *string   `json:"reason"`
	MovedAt   time.Time `json:"movedAt"`
}

// CandidateResponse represents a candidate. Collections are omitted where the
// view does not load them.
type CandidateResponse struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Email          string                 `json:"email"`
	Phone          *string                `json:"phone"`
	Position       string                 `json:"position"`
	Experience     *int                   `json:"experience"`
	Skills         []string               `json:"skills"`
	ResumeURL      *string                `json:"resumeUrl"`
	CurrentStage   string                 `json:"currentStage"`
	StageEnteredAt time.Time              `json:"stageEnteredAt"`
	IsStuck        bool                   `json:"isStuck"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
	Feedbacks      []FeedbackResponse     `json:"feedbacks,omitempty"`
	Notes          []NoteResponse         `json:"notes,omitempty"`
	StageHistory   []StageHistoryResponse `json:"stageHistory,omitempty"`
}

// CandidatesListResponse represents the response for GET /api/candidates.
type CandidatesListResponse struct {
	Candidates []CandidateResponse `json:"candidates"`
	Pagination PaginationResponse  `json:"pagination"`
}

// MoveStageResponse is the outcome of a stage move.
type MoveStageResponse struct {
	Candidate    CandidateResponse    `json:"candidate"`
	HistoryEntry StageHistoryResponse `json:"historyEntry"`
}

// StageCountResponse is the number of candidates in one stage.
type StageCountResponse struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

// TransitionCountResponse is the number of moves between two stages.
type TransitionCountResponse struct {
	FromStage *string `json:"fromStage"`
	ToStage   string  `json:"toStage"`
	Count     int     `json:"count"`
}

// DashboardResponse summarizes the pipeline.
type DashboardResponse struct {
	TotalCandidates     int                       `json:"totalCandidates"`
	CandidatesByStage   []StageCountResponse      `json:"candidatesByStage"`
	RecentlyUpdated     []CandidateResponse       `json:"recentlyUpdated"`
	StuckCandidates     int                       `json:"stuckCandidates"`
	StuckCandidatesList []CandidateResponse       `json:"stuckCandidatesList"`
	Transitions         []TransitionCountResponse `json:"transitions"`
	GeneratedAt         time.Time                 `json:"generatedAt"`
}

// SearchResponse is the result of a natural-language search.
type SearchResponse struct {
	Query    string              `json:"query"`
	Criteria search.Criteria     `json:"criteria"`
	Results  []CandidateResponse `json:"results"`
	Count    int                 `json:"count"`
	Fallback bool                `json:"fallback"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ToUserResponse converts domain.User to UserResponse.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// ToAuthResponse converts a user and token pair to AuthResponse.
func ToAuthResponse(u *domain.User, tokens auth.TokenPair) AuthResponse {
	return AuthResponse{
		User:         ToUserResponse(u),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}
}

// ToPaginationResponse converts domain.Pagination to PaginationResponse.
func ToPaginationResponse(p domain.Pagination) PaginationResponse {
	return PaginationResponse{
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
		HasNext:    p.HasNext,
		HasPrev:    p.HasPrev,
	}
}

// ToTaskResponse converts domain.Task to TaskResponse.
func ToTaskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		UserID:      t.OwnerID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// ToTaskResponses converts a slice of tasks.
func ToTaskResponses(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskResponse(t)
	}
	return out
}

// ToTaskStatsResponse converts domain.TaskStats to TaskStatsResponse.
func ToTaskStatsResponse(s domain.TaskStats) TaskStatsResponse {
	return TaskStatsResponse{
		Total:      s.Total,
		Pending:    s.Pending,
		InProgress: s.InProgress,
		Completed:  s.Completed,
	}
}

// ToFeedbackResponse converts domain.Feedback to FeedbackResponse.
func ToFeedbackResponse(f *domain.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:          f.ID,
		CandidateID: f.CandidateID,
		UserID:      f.UserID,
		UserName:    f.UserName,
		Stage:       string(f.Stage),
		Rating:      f.Rating,
		Comment:     f.Comment,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// ToFeedbackResponses converts a slice of feedback entries.
func ToFeedbackResponses(fs []*domain.Feedback) []FeedbackResponse {
	out := make([]FeedbackResponse, len(fs))
	for i, f := range fs {
		out[i] = ToFeedbackResponse(f)
	}
	return out
}

// ToNoteResponse converts domain.Note to NoteResponse.
func ToNoteResponse(n *domain.Note) NoteResponse {
	return NoteResponse{
		ID:          n.ID,
		CandidateID: n.CandidateID,
		UserID:      n.UserID,
		UserName:    n.UserName,
		Content:     n.Content,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

// ToNoteResponses converts a slice of notes.
func ToNoteResponses(ns []*domain.Note) []NoteResponse {
	out := make([]NoteResponse, len(ns))
	for i, n := range ns {
		out[i] = ToNoteResponse(n)
	}
	return out
}

func stageString(s *domain.Stage) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

// ToStageHistoryResponse converts domain.StageHistoryEntry to StageHistoryResponse.
func ToStageHistoryResponse(e *domain.StageHistoryEntry) StageHistoryResponse {
	return StageHistoryResponse{
		ID:        e.ID,
		FromStage: stageString(e.FromStage),
		ToStage:   string(e.ToStage),
		Reason:    e.Reason,
		MovedAt:   e.MovedAt,
	}
}

// ToStageHistoryResponses converts a slice of history entries.
func ToStageHistoryResponses(entries []*domain.StageHistoryEntry) []StageHistoryResponse {
	out := make([]StageHistoryResponse, len(entries))
	for i, e := range entries {
		out[i] = ToStageHistoryResponse(e)
	}
	return out
}

// ToCandidateResponse converts a candidate and its computed stuck flag.
func ToCandidateResponse(c *domain.Candidate, isStuck bool) CandidateResponse {
	skills := c.Skills
	if skills == nil {
		skills = []string{}
	}
	return CandidateResponse{
		ID:             c.ID,
		Name:           c.Name,
		Email:          c.Email,
		Phone:          c.Phone,
		Position:       c.Position,
		Experience:     c.Experience,
		Skills:         skills,
		ResumeURL:      c.ResumeURL,
		CurrentStage:   string(c.Stage),
		StageEnteredAt: c.StageEnteredAt,
		IsStuck:        isStuck,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// ToCandidateDetailResponse converts domain.CandidateDetail, including the
// collections it carries.
func ToCandidateDetailResponse(d *domain.CandidateDetail) CandidateResponse {
	resp := ToCandidateResponse(d.Candidate, d.IsStuck)
	resp.Feedbacks = ToFeedbackResponses(d.Feedbacks)
	resp.Notes = ToNoteResponses(d.Notes)
	resp.StageHistory = ToStageHistoryResponses(d.History)
	return resp
}

// ToCandidateDetailResponses converts a slice of candidate details.
func ToCandidateDetailResponses(ds []*domain.CandidateDetail) []CandidateResponse {
	out := make([]CandidateResponse, len(ds))
	for i, d := range ds {
		out[i] = ToCandidateDetailResponse(d)
	}
	return out
}

// ToCandidateResponses converts candidates evaluated at the given instant.
func ToCandidateResponses(cs []*domain.Candidate, now time.Time) []CandidateResponse {
	out := make([]CandidateResponse, len(cs))
	for i, c := range cs {
		out[i] = ToCandidateResponse(c, c.IsStuckAt(now))
	}
	return out
}

// ToMoveStageResponse converts domain.TransitionResult to MoveStageResponse.
func ToMoveStageResponse(r *domain.TransitionResult) MoveStageResponse {
	return MoveStageResponse{
		Candidate:    ToCandidateResponse(r.Candidate, r.IsStuck),
		HistoryEntry: ToStageHistoryResponse(r.Entry),
	}
}

// ToDashboardResponse converts domain.Dashboard to DashboardResponse.
func ToDashboardResponse(d *domain.Dashboard) DashboardResponse {
	byStage := make([]StageCountResponse, len(d.ByStage))
	for i, sc := range d.ByStage {
		byStage[i] = StageCountResponse{Stage: string(sc.Stage), Count: sc.Count}
	}

	transitions := make([]TransitionCountResponse, len(d.Transitions))
	for i, tc := range d.Transitions {
		transitions[i] = TransitionCountResponse{
			FromStage: stageString(tc.From),
			ToStage:   string(tc.To),
			Count:     tc.Count,
		}
	}

	return DashboardResponse{
		TotalCandidates:     d.TotalCandidates,
		CandidatesByStage:   byStage,
		RecentlyUpdated:     ToCandidateResponses(d.RecentlyUpdated, d.GeneratedAt),
		StuckCandidates:     len(d.StuckCandidates),
		StuckCandidatesList: ToCandidateResponses(d.StuckCandidates, d.GeneratedAt),
		Transitions:         transitions,
		GeneratedAt:         d.GeneratedAt,
	}
}
