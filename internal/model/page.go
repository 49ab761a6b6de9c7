package model

// Pagination is the server's view of where a page sits. HasPrev and
// HasNext are authoritative; the client never recomputes them.
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	PerPage     int  `json:"per_page,omitempty"`
	TotalPages  int  `json:"total_pages"`
	TotalCount  int  `json:"total_count,omitempty"`
	HasPrev     bool `json:"has_prev"`
	HasNext     bool `json:"has_next"`
}

// Page is one list response
type Page struct {
	Items      []Task     `json:"tasks"`
	Pagination Pagination `json:"pagination"`
}

// Empty reports whether the page has no tasks
func (p Page) Empty() bool {
	return len(p.Items) == 0
}

// Stats is the unfiltered aggregate returned by GET /tasks/stats
type Stats struct {
	Total  int `json:"total"`
	High   int `json:"alta"`
	Medium int `json:"media"`
	Low    int `json:"baja"`
}

// Count returns the number of tasks with priority p
func (s Stats) Count(p Priority) int {
	switch p {
	case PriorityHigh:
		return s.High
	case PriorityMedium:
		return s.Medium
	case PriorityLow:
		return s.Low
	}
	return 0
}
