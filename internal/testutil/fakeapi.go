// Package testutil provides an in-memory api.Service for tests.
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dori/taskdeck/internal/api"
	"github.com/dori/taskdeck/internal/model"
)

// FakeAPI implements api.Service in memory with the server's paging rules.
// Set the *Err fields to make the matching call fail.
type FakeAPI struct {
	mu     sync.Mutex
	tasks  []model.Task // newest first
	nextID int64
	clock  time.Time

	ListErr   error
	StatsErr  error
	CreateErr error
	UpdateErr error
	DeleteErr error

	listCalls   int
	statsCalls  int
	createCalls int
	updateCalls int
	deleteCalls int
	queries     []model.QueryState
}

var _ api.Service = (*FakeAPI)(nil)

// NewFakeAPI returns an empty fake
func NewFakeAPI() *FakeAPI {
	return &FakeAPI{
		nextID: 1,
		clock:  time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

// Add stores a task directly, bypassing validation and call counters
func (f *FakeAPI) Add(title string, priority model.Priority) model.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(title, priority)
}

// Seed adds n tasks titled "<prefix> 1".."<prefix> n"
func (f *FakeAPI) Seed(prefix string, n int, priority model.Priority) {
	for i := 1; i <= n; i++ {
		f.Add(fmt.Sprintf("%s %d", prefix, i), priority)
	}
}

func (f *FakeAPI) insert(title string, priority model.Priority) model.Task {
	f.clock = f.clock.Add(time.Minute)
	t := model.Task{
		ID:        f.nextID,
		Title:     title,
		Priority:  priority,
		CreatedAt: model.NewTimestamp(f.clock),
		UpdatedAt: model.NewTimestamp(f.clock),
	}
	f.nextID++
	f.tasks = append([]model.Task{t}, f.tasks...)
	return t
}

func (f *FakeAPI) ListTasks(ctx context.Context, q model.QueryState) (model.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++
	f.queries = append(f.queries, q)
	if f.ListErr != nil {
		return model.Page{}, f.ListErr
	}

	var matched []model.Task
	want, filtered := q.Filter.Priority()
	search := strings.ToLower(strings.TrimSpace(q.SearchText))
	for _, t := range f.tasks {
		if filtered && t.Priority != want {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Title), search) {
			continue
		}
		matched = append(matched, t)
	}

	page, size := q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = model.DefaultPageSize
	}
	totalPages := (len(matched) + size - 1) / size

	items := []model.Task{}
	start := (page - 1) * size
	if start < len(matched) {
		end := min(start+size, len(matched))
		items = append(items, matched[start:end]...)
	}

	return model.Page{
		Items: items,
		Pagination: model.Pagination{
			CurrentPage: page,
			PerPage:     size,
			TotalPages:  totalPages,
			TotalCount:  len(matched),
			HasPrev:     page > 1,
			HasNext:     page < totalPages,
		},
	}, nil
}

func (f *FakeAPI) Stats(ctx context.Context) (model.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.statsCalls++
	if f.StatsErr != nil {
		return model.Stats{}, f.StatsErr
	}

	var s model.Stats
	for _, t := range f.tasks {
		s.Total++
		switch t.Priority {
		case model.PriorityHigh:
			s.High++
		case model.PriorityMedium:
			s.Medium++
		case model.PriorityLow:
			s.Low++
		}
	}
	return s, nil
}

func (f *FakeAPI) CreateTask(ctx context.Context, in api.TaskInput) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls++
	if f.CreateErr != nil {
		return model.Task{}, f.CreateErr
	}
	for _, t := range f.tasks {
		if strings.EqualFold(t.Title, in.Title) {
			return model.Task{}, &api.Error{StatusCode: http.StatusConflict, Message: "a task with this title already exists"}
		}
	}
	priority := in.Priority
	if priority == "" {
		priority = model.PriorityLow
	}
	return f.insert(in.Title, priority), nil
}

func (f *FakeAPI) UpdateTask(ctx context.Context, id int64, in api.TaskInput) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updateCalls++
	if f.UpdateErr != nil {
		return model.Task{}, f.UpdateErr
	}
	for i, t := range f.tasks {
		if t.ID != id {
			continue
		}
		if in.Title != "" {
			t.Title = in.Title
		}
		if in.Priority != "" {
			t.Priority = in.Priority
		}
		f.tasks[i] = t
		return t, nil
	}
	return model.Task{}, &api.Error{StatusCode: http.StatusNotFound, Message: "resource not found"}
}

func (f *FakeAPI) DeleteTask(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleteCalls++
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return &api.Error{StatusCode: http.StatusNotFound, Message: "resource not found"}
}

// Calls returns how many times each operation was invoked
func (f *FakeAPI) Calls() CallCounts {
	f.mu.Lock()
	defer f.mu.Unlock()
	return CallCounts{
		List:   f.listCalls,
		Stats:  f.statsCalls,
		Create: f.createCalls,
		Update: f.updateCalls,
		Delete: f.deleteCalls,
	}
}

// Network returns the total number of calls of any kind
func (f *FakeAPI) Network() int {
	c := f.Calls()
	return c.List + c.Stats + c.Create + c.Update + c.Delete
}

// Queries returns every QueryState passed to ListTasks, in call order
func (f *FakeAPI) Queries() []model.QueryState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.QueryState(nil), f.queries...)
}

// CallCounts is a snapshot of FakeAPI call counters
type CallCounts struct {
	List   int
	Stats  int
	Create int
	Update int
	Delete int
}
