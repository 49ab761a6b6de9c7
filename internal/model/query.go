package model

import (
	"net/url"
	"strconv"
)

// PriorityFilter selects which priorities the list shows
type PriorityFilter int

const (
	FilterAll PriorityFilter = iota
	FilterLow
	FilterMedium
	FilterHigh
)

// Filters lists every filter in display order
var Filters = []PriorityFilter{FilterAll, FilterLow, FilterMedium, FilterHigh}

func (f PriorityFilter) String() string {
	switch f {
	case FilterLow:
		return "Low"
	case FilterMedium:
		return "Medium"
	case FilterHigh:
		return "High"
	default:
		return "All"
	}
}

// Priority returns the priority the filter restricts to, or false for FilterAll
func (f PriorityFilter) Priority() (Priority, bool) {
	switch f {
	case FilterLow:
		return PriorityLow, true
	case FilterMedium:
		return PriorityMedium, true
	case FilterHigh:
		return PriorityHigh, true
	}
	return "", false
}

// Next cycles through Filters
func (f PriorityFilter) Next() PriorityFilter {
	return Filters[(int(f)+1)%len(Filters)]
}

// ParseFilter accepts "all", a priority wire value or an English name
func ParseFilter(s string) (PriorityFilter, error) {
	if s == "" || s == "all" || s == "All" {
		return FilterAll, nil
	}
	p, err := ParsePriority(s)
	if err != nil {
		return FilterAll, err
	}
	return FilterFor(p), nil
}

// FilterFor returns the filter matching exactly p
func FilterFor(p Priority) PriorityFilter {
	switch p {
	case PriorityLow:
		return FilterLow
	case PriorityMedium:
		return FilterMedium
	case PriorityHigh:
		return FilterHigh
	}
	return FilterAll
}

// DefaultPageSize matches the server's default per_page
const DefaultPageSize = 6

// QueryState is the client's current filter, search and page selection.
// Page is always >= 1.
type QueryState struct {
	Filter     PriorityFilter
	Page       int
	PageSize   int
	SearchText string
}

// NewQueryState returns the first page of the unfiltered list
func NewQueryState(pageSize int) QueryState {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return QueryState{Filter: FilterAll, Page: 1, PageSize: pageSize}
}

// WithFilter sets the filter and resets to the first page
func (q QueryState) WithFilter(f PriorityFilter) QueryState {
	q.Filter = f
	q.Page = 1
	return q
}

// WithSearch sets the search text and resets to the first page
func (q QueryState) WithSearch(text string) QueryState {
	q.SearchText = text
	q.Page = 1
	return q
}

// PrevPage moves back one page. ok is false on the first page.
func (q QueryState) PrevPage() (QueryState, bool) {
	if q.Page <= 1 {
		return q, false
	}
	q.Page--
	return q, true
}

// NextPage moves forward one page without any upper bound
func (q QueryState) NextPage() QueryState {
	q.Page++
	return q
}

// Values encodes the query for GET /tasks. The priority parameter is
// omitted for FilterAll and search is omitted when empty.
func (q QueryState) Values() url.Values {
	v := url.Values{}
	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("per_page", strconv.Itoa(size))
	if p, ok := q.Filter.Priority(); ok {
		v.Set("priority", string(p))
	}
	if q.SearchText != "" {
		v.Set("search", q.SearchText)
	}
	return v
}
