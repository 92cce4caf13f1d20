// Package client is a typed HTTP client for the tracker REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ysam020/task-management-assessment/internal/handler/dto"
	"github.com/ysam020/task-management-assessment/internal/service"
)

// DefaultTimeout bounds each request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return fmt.Sprintf("api error %d: %s (%s)", e.Status, e.Message, strings.Join(parts, ", "))
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client talks to one tracker server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for the server at baseURL, e.g. "http://localhost:5000".
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithToken sets the bearer token sent with every request.
func (c *Client) WithToken(token string) *Client {
	c.token = token
	return c
}

// Login exchanges credentials for tokens and keeps the access token.
func (c *Client) Login(ctx context.Context, email, password string) (dto.AuthResponse, error) {
	res, err := do[dto.AuthResponse](ctx, c, http.MethodPost, "/api/auth/login",
		service.LoginInput{Email: email, Password: password})
	if err == nil {
		c.token = res.AccessToken
	}
	return res, err
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (dto.UserResponse, error) {
	return do[dto.UserResponse](ctx, c, http.MethodGet, "/api/auth/me", nil)
}

// TaskQuery narrows ListTasks.
type TaskQuery struct {
	Page   int
	Limit  int
	Status string
	Search string
}

func (q TaskQuery) values() url.Values {
	v := url.Values{}
	setInt(v, "page", q.Page)
	setInt(v, "limit", q.Limit)
	setString(v, "status", q.Status)
	setString(v, "search", q.Search)
	return v
}

// ListTasks returns one page of the caller's tasks.
func (c *Client) ListTasks(ctx context.Context, q TaskQuery) (dto.TasksListResponse, error) {
	return do[dto.TasksListResponse](ctx, c, http.MethodGet, withQuery("/api/tasks", q.values()), nil)
}

// GetTask fetches one task.
func (c *Client) GetTask(ctx context.Context, id string) (dto.TaskResponse, error) {
	return do[dto.TaskResponse](ctx, c, http.MethodGet, "/api/tasks/"+url.PathEscape(id), nil)
}

// CreateTask creates a task owned by the caller.
func (c *Client) CreateTask(ctx context.Context, in service.CreateTaskInput) (dto.TaskResponse, error) {
	return do[dto.TaskResponse](ctx, c, http.MethodPost, "/api/tasks", in)
}

// UpdateTask applies a partial update.
func (c *Client) UpdateTask(ctx context.Context, id string, in service.UpdateTaskInput) (dto.TaskResponse, error) {
	return do[dto.TaskResponse](ctx, c, http.MethodPatch, "/api/tasks/"+url.PathEscape(id), in)
}

// ToggleTask advances the task status one step.
func (c *Client) ToggleTask(ctx context.Context, id string) (dto.TaskResponse, error) {
	return do[dto.TaskResponse](ctx, c, http.MethodPost, "/api/tasks/"+url.PathEscape(id)+"/toggle", nil)
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	_, err := do[json.RawMessage](ctx, c, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil)
	return err
}

// TaskStats returns per-status counts for the caller.
func (c *Client) TaskStats(ctx context.Context) (dto.TaskStatsResponse, error) {
	return do[dto.TaskStatsResponse](ctx, c, http.MethodGet, "/api/tasks/stats", nil)
}

// CandidateQuery narrows ListCandidates.
type CandidateQuery struct {
	Page   int
	Limit  int
	Stage  string
	Search string
}

func (q CandidateQuery) values() url.Values {
	v := url.Values{}
	setInt(v, "page", q.Page)
	setInt(v, "limit", q.Limit)
	setString(v, "stage", q.Stage)
	setString(v, "search", q.Search)
	return v
}

// ListCandidates returns one page of candidates.
func (c *Client) ListCandidates(ctx context.Context, q CandidateQuery) (dto.CandidatesListResponse, error) {
	return do[dto.CandidatesListResponse](ctx, c, http.MethodGet, withQuery("/api/candidates", q.values()), nil)
}

// GetCandidate fetches a candidate with feedback, notes and history.
func (c *Client) GetCandidate(ctx context.Context, id string) (dto.CandidateResponse, error) {
	return do[dto.CandidateResponse](ctx, c, http.MethodGet, "/api/candidates/"+url.PathEscape(id), nil)
}

// MoveStage moves a candidate to toStage.
func (c *Client) MoveStage(ctx context.Context, id, toStage, reason string) (dto.MoveStageResponse, error) {
	in := service.MoveStageInput{ToStage: toStage}
	if reason != "" {
		in.Reason = &reason
	}
	return do[dto.MoveStageResponse](ctx, c, http.MethodPost, "/api/candidates/"+url.PathEscape(id)+"/move-stage", in)
}

// NextStage advances a candidate one stage.
func (c *Client) NextStage(ctx context.Context, id string) (dto.MoveStageResponse, error) {
	return do[dto.MoveStageResponse](ctx, c, http.MethodPost, "/api/candidates/"+url.PathEscape(id)+"/next-stage", nil)
}

// Dashboard returns the pipeline summary.
func (c *Client) Dashboard(ctx context.Context) (dto.DashboardResponse, error) {
	return do[dto.DashboardResponse](ctx, c, http.MethodGet, "/api/candidates/dashboard", nil)
}

// Search runs a natural-language candidate search.
func (c *Client) Search(ctx context.Context, query string) (dto.SearchResponse, error) {
	return do[dto.SearchResponse](ctx, c, http.MethodPost, "/api/ai-search", service.SearchInput{Query: query})
}

// do sends the request and decodes the data field of the response envelope.
func do[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var zero T

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return zero, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env struct {
		Status  string            `json:"status"`
		Message string            `json:"message"`
		Data    json.RawMessage   `json:"data"`
		Errors  map[string]string `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return zero, &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return zero, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest || env.Status == dto.StatusError {
		return zero, &APIError{Status: resp.StatusCode, Message: env.Message, Fields: env.Errors}
	}

	if len(env.Data) == 0 {
		return zero, nil
	}
	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return zero, fmt.Errorf("decode response data: %w", err)
	}
	return out, nil
}

func withQuery(path string, v url.Values) string {
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

func setInt(v url.Values, key string, n int) {
	if n > 0 {
		v.Set(key, strconv.Itoa(n))
	}
}

func setString(v url.Values, key, s string) {
	if s != "" {
		v.Set(key, s)
	}
}
