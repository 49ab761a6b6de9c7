// Package api is the HTTP client for the task REST API.
package api

import (
	"context"

	"github.com/dori/taskdeck/internal/model"
)

// TaskInput is the body of POST /tasks and PUT /tasks/{id}
type TaskInput struct {
	Title    string         `json:"title"`
	Priority model.Priority `json:"priority"`
}

// Service defines the task operations the UI depends on.
// Client is the HTTP implementation; tests use testutil.FakeAPI.
type Service interface {
	// ListTasks returns one page for the given query
	ListTasks(ctx context.Context, q model.QueryState) (model.Page, error)

	// Stats returns counts over the unfiltered task set
	Stats(ctx context.Context) (model.Stats, error)

	// CreateTask creates a task and returns the stored version
	CreateTask(ctx context.Context, in TaskInput) (model.Task, error)

	// UpdateTask replaces title and priority of an existing task
	UpdateTask(ctx context.Context, id int64, in TaskInput) (model.Task, error)

	// DeleteTask removes a task
	DeleteTask(ctx context.Context, id int64) error
}
