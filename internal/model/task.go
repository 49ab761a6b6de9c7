package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Priority represents task priority level as it travels on the wire
type Priority string

const (
	PriorityLow    Priority = "baja"
	PriorityMedium Priority = "media"
	PriorityHigh   Priority = "alta"
)

// Priorities lists every priority from lowest to highest
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority accepts the wire value or its English name
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "baja", "low", "l":
		return PriorityLow, nil
	case "media", "medium", "med", "m":
		return PriorityMedium, nil
	case "alta", "high", "hi", "h":
		return PriorityHigh, nil
	}
	return "", fmt.Errorf("invalid priority %q", s)
}

// Valid reports whether p is one of the known priorities
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Label returns the human-readable name
func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	default:
		return "Unknown"
	}
}

// Marker returns the single-glyph indicator drawn next to a task
func (p Priority) Marker() string {
	switch p {
	case PriorityHigh:
		return "▲"
	case PriorityMedium:
		return "◆"
	case PriorityLow:
		return "▼"
	default:
		return "·"
	}
}

// Next cycles low -> medium -> high -> low
func (p Priority) Next() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityLow
	}
}

// Weight returns a numeric weight for sorting by priority
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Task represents a todo item owned by the server.
// The client only ever holds a snapshot taken from the last accepted list response.
type Task struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Priority  Priority  `json:"priority"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at,omitzero"`
}

// DateLayout is the fixed day/month/year hour:minute format used for display
const DateLayout = "02/01/2006 15:04"

// FormatCreated renders the creation time in local time using DateLayout
func (t Task) FormatCreated() string {
	if t.CreatedAt.IsZero() {
		return ""
	}
	return t.CreatedAt.Local().Format(DateLayout)
}

// Timestamp is a time.Time that also understands the naive ISO-8601
// form (no zone) emitted by Python backends. Naive values are UTC.
type Timestamp struct {
	time.Time
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// UnmarshalJSON implements json.Unmarshaler
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		ts.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		ts.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		ts.Time = t
		return nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			ts.Time = t
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", s)
}

// MarshalJSON always writes RFC 3339 in UTC
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.UTC().Format(time.RFC3339Nano))
}

// NewTimestamp wraps t
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}
