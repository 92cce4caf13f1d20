package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/suite"

	"github.com/ysam020/task-management-assessment/internal/auth"
	"github.com/ysam020/task-management-assessment/internal/domain"
	"github.com/ysam020/task-management-assessment/internal/handler"
	"github.com/ysam020/task-management-assessment/internal/handler/dto"
	"github.com/ysam020/task-management-assessment/internal/metrics"
)

type envelope struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type HandlerTestSuite struct {
	suite.Suite
	mock   pgxmock.PgxPoolIface
	issuer *auth.Issuer
	mux    *http.ServeMux

	hrID             string
	hrToken          string
	interviewerID    string
	interviewerToken string
}

func (s *HandlerTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	s.Require().NoError(err)
	s.mock = mock

	s.issuer = auth.NewIssuer("handler-test-secret", "", 15*time.Minute, 24*time.Hour)

	h := handler.New(mock, handler.Options{
		Issuer:  s.issuer,
		Metrics: metrics.New(),
	})
	s.mux = http.NewServeMux()
	h.RegisterRoutes(s.mux)

	s.hrID = uuid.NewString()
	s.hrToken = s.tokenFor(s.hrID, domain.RoleHR)
	s.interviewerID = uuid.NewString()
	s.interviewerToken = s.tokenFor(s.interviewerID, domain.RoleInterviewer)
}

func (s *HandlerTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.mock.Close()
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) tokenFor(id string, role domain.Role) string {
	pair, err := s.issuer.Issue(&domain.User{ID: id, Email: strings.ToLower(string(role)) + "@example.com", Role: role})
	s.Require().NoError(err)
	return pair.AccessToken
}

// Helper to make an optionally authenticated request
func (s *HandlerTestSuite) makeRequest(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		s.Require().NoError(json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)
	return w
}

func (s *HandlerTestSuite) decode(w *httptest.ResponseRecorder) envelope {
	var env envelope
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&env))
	return env
}

func (s *HandlerTestSuite) TestHealth() {
	s.mock.ExpectPing()

	w := s.makeRequest(http.MethodGet, "/api/health", "", nil)

	s.Equal(http.StatusOK, w.Code)
	var resp dto.HealthResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
	s.Equal(dto.StatusSuccess, resp.Status)
	s.Equal("Server is running", resp.Message)
	s.False(resp.Timestamp.IsZero())
}

func (s *HandlerTestSuite) TestHealth_DatabaseDown() {
	s.mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	w := s.makeRequest(http.MethodGet, "/api/health", "", nil)

	s.Equal(http.StatusServiceUnavailable, w.Code)
	env := s.decode(w)
	s.Equal(dto.StatusError, env.Status)
	s.Equal("Database unavailable", env.Message)
}

func (s *HandlerTestSuite) TestAPIMd() {
	w := s.makeRequest(http.MethodGet, "/api.md", "", nil)

	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Header().Get("Content-Type"), "text/markdown")
	s.Contains(w.Body.String(), "SCREENING")
}

func (s *HandlerTestSuite) TestProtectedRoutes_RequireToken() {
	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/tasks"},
		{http.MethodGet, "/api/candidates"},
		{http.MethodGet, "/api/candidates/dashboard"},
		{http.MethodPost, "/api/ai-search"},
		{http.MethodGet, "/api/auth/me"},
	}
	for _, p := range paths {
		w := s.makeRequest(p.method, p.path, "", nil)
		s.Equal(http.StatusUnauthorized, w.Code, "%s %s", p.method, p.path)
		env := s.decode(w)
		s.Equal("Authentication required", env.Message)
	}
}

func (s *HandlerTestSuite) TestInvalidToken() {
	w := s.makeRequest(http.MethodGet, "/api/tasks", "not-a-jwt", nil)

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Invalid or expired token", s.decode(w).Message)
}

func (s *HandlerTestSuite) TestCreateCandidate_InterviewerForbidden() {
	w := s.makeRequest(http.MethodPost, "/api/candidates", s.interviewerToken, map[string]any{
		"name": "Ada", "email": "ada@example.com", "position": "Engineer",
	})

	s.Equal(http.StatusForbidden, w.Code)
	s.Equal(dto.StatusError, s.decode(w).Status)
}

func (s *HandlerTestSuite) TestMoveStage_InterviewerForbidden() {
	path := "/api/candidates/" + uuid.NewString() + "/move-stage"
	w := s.makeRequest(http.MethodPost, path, s.interviewerToken, map[string]string{"toStage": "L1"})

	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlerTestSuite) TestMoveStage_InvalidID() {
	w := s.makeRequest(http.MethodPost, "/api/candidates/not-a-uuid/move-stage", s.hrToken, map[string]string{"toStage": "L1"})

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("candidate id must be a valid UUID", s.decode(w).Message)
}

func (s *HandlerTestSuite) TestMoveStage_MissingStage() {
	path := "/api/candidates/" + uuid.NewString() + "/move-stage"
	w := s.makeRequest(http.MethodPost, path, s.hrToken, map[string]string{})

	s.Equal(http.StatusUnprocessableEntity, w.Code)
	env := s.decode(w)
	s.Equal("Validation failed", env.Message)
	s.Contains(env.Errors, "toStage")
}

func (s *HandlerTestSuite) TestMoveStage_UnknownStage() {
	path := "/api/candidates/" + uuid.NewString() + "/move-stage"
	w := s.makeRequest(http.MethodPost, path, s.hrToken, map[string]string{"toStage": "CEO"})

	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *HandlerTestSuite) TestCreateTask_MalformedBody() {
	w := s.makeRequest(http.MethodPost, "/api/tasks", s.interviewerToken, `{"title":`)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Invalid request body", s.decode(w).Message)
}

func (s *HandlerTestSuite) TestCreateTask_ValidationError() {
	w := s.makeRequest(http.MethodPost, "/api/tasks", s.interviewerToken, map[string]string{
		"title":  "",
		"status": "DONE",
	})

	s.Equal(http.StatusUnprocessableEntity, w.Code)
	env := s.decode(w)
	s.Equal(dto.StatusError, env.Status)
	s.Equal("is required", env.Errors["title"])
	s.Contains(env.Errors, "status")
}

func (s *HandlerTestSuite) TestListTasks_BadPage() {
	w := s.makeRequest(http.MethodGet, "/api/tasks?page=zero", s.interviewerToken, nil)

	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Contains(s.decode(w).Errors, "page")
}

func (s *HandlerTestSuite) TestSearch_EmptyQuery() {
	w := s.makeRequest(http.MethodPost, "/api/ai-search", s.interviewerToken, map[string]string{"query": "   "})

	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal("search query is required", s.decode(w).Message)
}

func (s *HandlerTestSuite) TestGetTask_Owner() {
	taskID := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Second)
	desc := "quarterly numbers"

	s.mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1")).
		WithArgs(taskID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "description", "status", "owner_id", "created_at", "updated_at"}).
			AddRow(taskID, "Write report", &desc, domain.TaskStatusPending, s.interviewerID, now, now))

	w := s.makeRequest(http.MethodGet, "/api/tasks/"+taskID, s.interviewerToken, nil)

	s.Require().Equal(http.StatusOK, w.Code)
	env := s.decode(w)
	var task dto.TaskResponse
	s.Require().NoError(json.Unmarshal(env.Data, &task))
	s.Equal(taskID, task.ID)
	s.Equal("Write report", task.Title)
	s.Equal(s.interviewerID, task.UserID)
	s.Equal("PENDING", task.Status)
}

func (s *HandlerTestSuite) TestGetTask_OtherOwner() {
	taskID := uuid.NewString()
	now := time.Now().UTC()

	s.mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1")).
		WithArgs(taskID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "description", "status", "owner_id", "created_at", "updated_at"}).
			AddRow(taskID, "Private", (*string)(nil), domain.TaskStatusPending, s.hrID, now, now))

	w := s.makeRequest(http.MethodGet, "/api/tasks/"+taskID, s.interviewerToken, nil)

	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("Access denied to this task", s.decode(w).Message)
}

func (s *HandlerTestSuite) TestGetTask_NotFound() {
	taskID := uuid.NewString()

	s.mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1")).
		WithArgs(taskID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "description", "status", "owner_id", "created_at", "updated_at"}))

	w := s.makeRequest(http.MethodGet, "/api/tasks/"+taskID, s.interviewerToken, nil)

	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("Task not found", s.decode(w).Message)
}

func (s *HandlerTestSuite) TestUnknownRoute() {
	w := s.makeRequest(http.MethodGet, "/api/unknown", s.hrToken, nil)

	s.Equal(http.StatusNotFound, w.Code)
}
