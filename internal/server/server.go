// Package server is the REST backend the taskdeck client talks to.
package server

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dori/taskdeck/internal/db"
	"github.com/dori/taskdeck/internal/model"
)

const (
	msgInternal      = "internal server error"
	msgNotFound      = "resource not found"
	msgBadPagination = "invalid pagination parameters"
	msgBadPriority   = "invalid priority"
	msgDuplicate     = "a task with this title already exists"
	msgNoData        = "no data provided"
)

// Store is the persistence the handlers need; *db.DB implements it
type Store interface {
	ListTasks(f db.ListFilter) (model.Page, error)
	GetTask(id int64) (*model.Task, error)
	TitleExists(title string, excludeID int64) (bool, error)
	CreateTask(title string, priority model.Priority) (*model.Task, error)
	UpdateTask(id int64, title *string, priority *model.Priority) (*model.Task, error)
	DeleteTask(id int64) (bool, error)
	Stats() (model.Stats, error)
	Healthy() error
}

type Handler struct {
	store  Store
	logger *log.Logger
	now    func() time.Time
}

func NewHandler(store Store, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Handler{store: store, logger: logger, now: time.Now}
}

// Routes returns the full API wrapped in the standard middleware
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tasks", h.listTasks)
	mux.HandleFunc("POST /api/tasks", h.createTask)
	mux.HandleFunc("GET /api/tasks/stats", h.stats)
	mux.HandleFunc("PUT /api/tasks/{id}", h.updateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", h.deleteTask)
	mux.HandleFunc("GET /api/health", h.health)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusNotFound, msgNotFound)
	})

	return Chain(mux,
		WithRequestID,
		WithAccessLog(h.logger),
		WithRecover(h.logger),
		WithCORS,
	)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func (h *Handler) internal(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Printf("request_id=%s %s: %v", RequestIDFromContext(r.Context()), op, err)
	writeErr(w, http.StatusInternalServerError, msgInternal)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	page, err := intParam(r, "page", 1)
	if err != nil {
		writeErr(w, http.StatusBadRequest, msgBadPagination)
		return
	}
	perPage, err := intParam(r, "per_page", model.DefaultPageSize)
	if err != nil {
		writeErr(w, http.StatusBadRequest, msgBadPagination)
		return
	}

	f := db.ListFilter{
		Search:  r.URL.Query().Get("search"),
		Page:    page,
		PerPage: perPage,
	}
	// Unknown values such as "all" mean no filter
	if p := model.Priority(r.URL.Query().Get("priority")); p.Valid() {
		f.Priority = p
	}

	result, err := h.store.ListTasks(f)
	if err != nil {
		h.internal(w, r, "list tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type createRequest struct {
	Title    *string `json:"title"`
	Priority *string `json:"priority"`
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == nil {
		writeErr(w, http.StatusBadRequest, model.ErrTitleRequired.Error())
		return
	}

	title := model.NormalizeTitle(*req.Title)
	if err := model.ValidateTitle(title); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	priority := model.PriorityLow
	if req.Priority != nil {
		priority = model.Priority(*req.Priority)
		if !priority.Valid() {
			writeErr(w, http.StatusBadRequest, msgBadPriority)
			return
		}
	}

	exists, err := h.store.TitleExists(title, 0)
	if err != nil {
		h.internal(w, r, "create task", err)
		return
	}
	if exists {
		writeErr(w, http.StatusConflict, msgDuplicate)
		return
	}

	task, err := h.store.CreateTask(title, priority)
	if err != nil {
		h.internal(w, r, "create task", err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeErr(w, http.StatusNotFound, msgNotFound)
		return
	}

	existing, err := h.store.GetTask(id)
	if err != nil {
		h.internal(w, r, "update task", err)
		return
	}
	if existing == nil {
		writeErr(w, http.StatusNotFound, msgNotFound)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, msgNoData)
		return
	}
	if req.Title == nil && req.Priority == nil {
		writeErr(w, http.StatusBadRequest, msgNoData)
		return
	}

	var title *string
	if req.Title != nil {
		t := model.NormalizeTitle(*req.Title)
		if err := model.ValidateTitle(t); err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		exists, err := h.store.TitleExists(t, id)
		if err != nil {
			h.internal(w, r, "update task", err)
			return
		}
		if exists {
			writeErr(w, http.StatusConflict, msgDuplicate)
			return
		}
		title = &t
	}

	var priority *model.Priority
	if req.Priority != nil {
		p := model.Priority(*req.Priority)
		if !p.Valid() {
			writeErr(w, http.StatusBadRequest, msgBadPriority)
			return
		}
		priority = &p
	}

	task, err := h.store.UpdateTask(id, title, priority)
	if err != nil {
		h.internal(w, r, "update task", err)
		return
	}
	if task == nil {
		writeErr(w, http.StatusNotFound, msgNotFound)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeErr(w, http.StatusNotFound, msgNotFound)
		return
	}

	found, err := h.store.DeleteTask(id)
	if err != nil {
		h.internal(w, r, "delete task", err)
		return
	}
	if !found {
		writeErr(w, http.StatusNotFound, msgNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "task deleted"})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Stats()
	if err != nil {
		h.internal(w, r, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ts := h.now().UTC().Format(time.RFC3339)
	if err := h.store.Healthy(); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     err.Error(),
			"timestamp": ts,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": ts,
	})
}
