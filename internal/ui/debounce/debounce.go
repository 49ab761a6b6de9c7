// Package debounce delays a value until input has been quiet for a while.
// Each Trigger supersedes the previous one; only the latest fired message
// is accepted.
package debounce

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultDelay is used when New is given a negative delay
const DefaultDelay = 500 * time.Millisecond

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// Msg is delivered when a trigger's delay has elapsed
type Msg struct {
	Value string

	id  int
	tag int
}

// Model tracks the pending trigger. The zero value is not usable; call New.
type Model struct {
	Delay time.Duration

	id      int
	tag     int
	pending bool
	value   string
}

// New creates a debouncer with its own identity
func New(delay time.Duration) Model {
	if delay < 0 {
		delay = DefaultDelay
	}
	return Model{Delay: delay, id: nextID()}
}

// ID returns the debouncer's identity
func (m Model) ID() int {
	return m.id
}

// Pending reports whether a trigger is waiting to fire
func (m Model) Pending() bool {
	return m.pending
}

// Value returns the most recently triggered value
func (m Model) Value() string {
	return m.value
}

// Trigger replaces any pending trigger with value
func (m Model) Trigger(value string) (Model, tea.Cmd) {
	m.tag++
	m.pending = true
	m.value = value

	id, tag := m.id, m.tag
	return m, tea.Tick(m.Delay, func(time.Time) tea.Msg {
		return Msg{Value: value, id: id, tag: tag}
	})
}

// Cancel drops the pending trigger; its message will not be accepted
func (m Model) Cancel() Model {
	m.tag++
	m.pending = false
	return m
}

// Accept reports whether msg is the latest trigger of this debouncer.
// An accepted message clears the pending state.
func (m Model) Accept(msg Msg) (Model, bool) {
	if !m.pending || msg.id != m.id || msg.tag != m.tag {
		return m, false
	}
	m.pending = false
	return m, true
}
