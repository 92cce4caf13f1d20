package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ysam020/task-management-assessment/internal/handler/dto"
	"github.com/ysam020/task-management-assessment/internal/service"
)

func writeEnvelope(t *testing.T, w http.ResponseWriter, status int, env dto.Envelope) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(env))
}

func TestLogin_StoresAccessToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var in service.LoginInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, "hr@example.com", in.Email)
			writeEnvelope(t, w, http.StatusOK, dto.NewSuccessResponse("Login successful", dto.AuthResponse{
				User:        dto.UserResponse{ID: "u-1", Email: in.Email, Role: "HR"},
				AccessToken: "access-1",
			}))
		case "/api/auth/me":
			gotAuth = r.Header.Get("Authorization")
			writeEnvelope(t, w, http.StatusOK, dto.NewSuccessResponse("", dto.UserResponse{ID: "u-1"}))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/", time.Second)
	res, err := c.Login(context.Background(), "hr@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", res.User.ID)

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u-1", me.ID)
	assert.Equal(t, "Bearer access-1", gotAuth)
}

func TestListTasks_EncodesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tasks", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "PENDING", r.URL.Query().Get("status"))
		assert.Empty(t, r.URL.Query().Get("limit"))
		writeEnvelope(t, w, http.StatusOK, dto.NewSuccessResponse("", dto.TasksListResponse{
			Tasks:      []dto.TaskResponse{{ID: "t-1", Title: "Write report", Status: "PENDING"}},
			Pagination: dto.PaginationResponse{Total: 11, Page: 2, Limit: 10, TotalPages: 2, HasPrev: true},
		}))
	}))
	defer srv.Close()

	res, err := New(srv.URL, 0).WithToken("tok").ListTasks(context.Background(), TaskQuery{Page: 2, Status: "PENDING"})
	require.NoError(t, err)
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, "t-1", res.Tasks[0].ID)
	assert.True(t, res.Pagination.HasPrev)
}

func TestMoveStage_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/candidates/c-1/move-stage", r.URL.Path)
		var in service.MoveStageInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "L1", in.ToStage)
		assert.Nil(t, in.Reason)
		writeEnvelope(t, w, http.StatusBadRequest, dto.NewErrorResponse("cannot move to a previous stage", nil))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).MoveStage(context.Background(), "c-1", "L1", "")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "cannot move to a previous stage", apiErr.Message)
	assert.True(t, IsStatus(err, http.StatusBadRequest))
	assert.False(t, IsStatus(err, http.StatusNotFound))
}

func TestValidationErrorFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusUnprocessableEntity, dto.NewErrorResponse("Validation failed", map[string]string{
			"title":  "is required",
			"status": "must be one of PENDING, IN_PROGRESS, COMPLETED",
		}))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).CreateTask(context.Background(), service.CreateTaskInput{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "is required", apiErr.Fields["title"])
	assert.Equal(t,
		"api error 422: Validation failed (status must be one of PENDING, IN_PROGRESS, COMPLETED, title is required)",
		apiErr.Error())
}

func TestDeleteTask_NoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		writeEnvelope(t, w, http.StatusOK, dto.NewSuccessResponse("Task deleted successfully", nil))
	}))
	defer srv.Close()

	assert.NoError(t, New(srv.URL, time.Second).DeleteTask(context.Background(), "t-1"))
}

func TestNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).TaskStats(context.Background())
	assert.True(t, IsStatus(err, http.StatusBadGateway))
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := New(srv.URL, 20*time.Millisecond).Dashboard(context.Background())
	require.Error(t, err)
	assert.False(t, IsStatus(err, http.StatusOK))
}
