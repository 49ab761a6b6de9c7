package db

import (
	"database/sql"
	"strings"
	"time"

	"github.com/dori/taskdeck/internal/model"
)

// MaxPerPage caps the page size a client may request
const MaxPerPage = 100

// ListFilter selects one page of tasks
type ListFilter struct {
	Priority model.Priority // empty means all priorities
	Search   string         // case-insensitive substring of title
	Page     int
	PerPage  int
}

func (f ListFilter) normalized() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = model.DefaultPageSize
	}
	if f.PerPage > MaxPerPage {
		f.PerPage = MaxPerPage
	}
	f.Search = strings.TrimSpace(f.Search)
	return f
}

func (f ListFilter) where() (string, []interface{}) {
	var clauses []string
	var args []interface{}
	if f.Priority != "" {
		clauses = append(clauses, "priority = ?")
		args = append(args, string(f.Priority))
	}
	if f.Search != "" {
		clauses = append(clauses, `title LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(f.Search)+"%")
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// ListTasks returns one page of tasks, newest first. Asking for a page
// past the end yields an empty page with the real total_pages.
func (db *DB) ListTasks(f ListFilter) (model.Page, error) {
	f = f.normalized()
	where, args := f.where()

	var total int
	if err := db.QueryRow("SELECT COUNT(*) FROM tasks"+where, args...).Scan(&total); err != nil {
		return model.Page{}, err
	}

	query := `
		SELECT id, title, priority, created_at, updated_at
		FROM tasks` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`
	rows, err := db.Query(query, append(args, f.PerPage, (f.Page-1)*f.PerPage)...)
	if err != nil {
		return model.Page{}, err
	}
	defer rows.Close()

	tasks, err := db.scanTasks(rows)
	if err != nil {
		return model.Page{}, err
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + f.PerPage - 1) / f.PerPage
	}

	return model.Page{
		Items: tasks,
		Pagination: model.Pagination{
			CurrentPage: f.Page,
			PerPage:     f.PerPage,
			TotalPages:  totalPages,
			TotalCount:  total,
			HasPrev:     f.Page > 1,
			HasNext:     f.Page < totalPages,
		},
	}, nil
}

// GetTask returns a single task by ID, or nil when it does not exist
func (db *DB) GetTask(id int64) (*model.Task, error) {
	row := db.QueryRow(`
		SELECT id, title, priority, created_at, updated_at
		FROM tasks WHERE id = ?
	`, id)

	t, err := db.scanTaskRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

// TitleExists reports whether another task already uses title,
// ignoring case. excludeID skips the task being renamed (0 for none).
func (db *DB) TitleExists(title string, excludeID int64) (bool, error) {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM tasks WHERE lower(title) = lower(?) AND id != ?
	`, title, excludeID).Scan(&count)
	return count > 0, err
}

// CreateTask creates a new task
func (db *DB) CreateTask(title string, priority model.Priority) (*model.Task, error) {
	now := time.Now().UTC()

	res, err := db.Exec(`
		INSERT INTO tasks (title, priority, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, title, string(priority), now, now)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &model.Task{
		ID:        id,
		Title:     title,
		Priority:  priority,
		CreatedAt: model.NewTimestamp(now),
		UpdatedAt: model.NewTimestamp(now),
	}, nil
}

// UpdateTask changes the fields that are non-nil and returns the stored task,
// or nil when the task does not exist
func (db *DB) UpdateTask(id int64, title *string, priority *model.Priority) (*model.Task, error) {
	now := time.Now().UTC()

	err := db.Transaction(func(tx *sql.Tx) error {
		if title != nil {
			if _, err := tx.Exec(`UPDATE tasks SET title = ? WHERE id = ?`, *title, id); err != nil {
				return err
			}
		}
		if priority != nil {
			if _, err := tx.Exec(`UPDATE tasks SET priority = ? WHERE id = ?`, string(*priority), id); err != nil {
				return err
			}
		}
		_, err := tx.Exec(`UPDATE tasks SET updated_at = ? WHERE id = ?`, now, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return db.GetTask(id)
}

// DeleteTask deletes a task. found is false when no row matched.
func (db *DB) DeleteTask(id int64) (found bool, err error) {
	res, err := db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Stats counts all tasks, ignoring any list filter
func (db *DB) Stats() (model.Stats, error) {
	rows, err := db.Query(`SELECT priority, COUNT(*) FROM tasks GROUP BY priority`)
	if err != nil {
		return model.Stats{}, err
	}
	defer rows.Close()

	var s model.Stats
	for rows.Next() {
		var p string
		var n int
		if err := rows.Scan(&p, &n); err != nil {
			return model.Stats{}, err
		}
		switch model.Priority(p) {
		case model.PriorityHigh:
			s.High = n
		case model.PriorityMedium:
			s.Medium = n
		case model.PriorityLow:
			s.Low = n
		}
		s.Total += n
	}
	return s, rows.Err()
}

// Helper functions

func (db *DB) scanTasks(rows *sql.Rows) ([]model.Task, error) {
	tasks := []model.Task{}
	for rows.Next() {
		t, err := db.scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func (db *DB) scanTaskRow(s scanner) (*model.Task, error) {
	var t model.Task
	var priority string
	var createdAt, updatedAt time.Time

	if err := s.Scan(&t.ID, &t.Title, &priority, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	t.Priority = model.Priority(priority)
	t.CreatedAt = model.NewTimestamp(createdAt.UTC())
	t.UpdatedAt = model.NewTimestamp(updatedAt.UTC())
	return &t, nil
}
