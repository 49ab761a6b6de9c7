package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dori/taskdeck/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL + "/api")
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadScheme(t *testing.T) {
	_, err := New("ftp://example.com")
	assert.Error(t, err)
}

func TestListTasksEncodesQuery(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"tasks": [{"id": 1, "title": "Buy milk", "priority": "alta", "created_at": "2024-01-15T10:30:00"}],
			"pagination": {"current_page": 2, "total_pages": 3, "has_prev": true, "has_next": true}
		}`))
	})

	q := model.NewQueryState(6).WithFilter(model.FilterHigh).WithSearch("milk").NextPage()
	page, err := c.ListTasks(context.Background(), q)
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "/api/tasks", got.URL.Path)
	assert.Equal(t, "2", got.URL.Query().Get("page"))
	assert.Equal(t, "6", got.URL.Query().Get("per_page"))
	assert.Equal(t, "alta", got.URL.Query().Get("priority"))
	assert.Equal(t, "milk", got.URL.Query().Get("search"))
	assert.NotEmpty(t, got.Header.Get(RequestIDHeader))

	require.Len(t, page.Items, 1)
	assert.Equal(t, "Buy milk", page.Items[0].Title)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasPrev)
}

func TestListTasksEmptyListIsNotNil(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tasks": null, "pagination": {"current_page": 9, "total_pages": 2}}`))
	})

	page, err := c.ListTasks(context.Background(), model.NewQueryState(6))
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.True(t, page.Empty())
}

func TestCreateTaskSurfacesServerMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var in TaskInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Buy milk", in.Title)

		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error": "A task with this title already exists"}`))
	})

	_, err := c.CreateTask(context.Background(), TaskInput{Title: "Buy milk", Priority: model.PriorityLow})
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusConflict))
	assert.Equal(t, "A task with this title already exists", UserMessage(err, "fallback"))
}

func TestErrorWithoutBodyUsesFallback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>oops</html>"))
	})

	err := c.DeleteTask(context.Background(), 4)
	require.Error(t, err)
	assert.Equal(t, "Could not delete task", UserMessage(err, "Could not delete task"))
}

func TestUpdateTaskPath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/tasks/42", r.URL.Path)
		_, _ = w.Write([]byte(`{"id": 42, "title": "Renamed", "priority": "media", "created_at": "2024-01-15T10:30:00Z"}`))
	})

	task, err := c.UpdateTask(context.Background(), 42, TaskInput{Title: "Renamed", Priority: model.PriorityMedium})
	require.NoError(t, err)
	assert.Equal(t, int64(42), task.ID)
	assert.Equal(t, model.PriorityMedium, task.Priority)
}

func TestStatsRejectsPartialBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total": 3}`))
	})

	_, err := c.Stats(context.Background())
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestStatsDecodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tasks/stats", r.URL.Path)
		_, _ = w.Write([]byte(`{"total": 6, "alta": 1, "media": 2, "baja": 3}`))
	})

	stats, err := c.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.Stats{Total: 6, High: 1, Medium: 2, Low: 3}, stats)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)

	_, err = c.ListTasks(context.Background(), model.NewQueryState(6))
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.MethodGet, te.Method)
	assert.Equal(t, "Could not load tasks", UserMessage(err, "Could not load tasks"))
}
