// Package model holds the domain types shared by the client, store and server.
package model

import "strings"

// PlaceholderID marks a locally-synthesized record whose creation request is
// still in flight. Persisted records always carry a positive server id.
const PlaceholderID = 0

// Todo is the domain model for a single task record.
type Todo struct {
	ID        int    `json:"id"`
	UserID    int    `json:"userId"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Persisted reports whether the record carries a server-assigned id.
func (t Todo) Persisted() bool { return t.ID != PlaceholderID }

// StatusFilter selects which records are visible. It never touches
// persisted data.
type StatusFilter int

const (
	FilterAll StatusFilter = iota
	FilterActive
	FilterCompleted
)

func (f StatusFilter) String() string {
	switch f {
	case FilterActive:
		return "active"
	case FilterCompleted:
		return "completed"
	default:
		return "all"
	}
}

// Next cycles All -> Active -> Completed -> All.
func (f StatusFilter) Next() StatusFilter {
	if f == FilterCompleted {
		return FilterAll
	}
	return f + 1
}

// ParseFilter maps a filter name to its StatusFilter; unknown names fall
// back to FilterAll.
func ParseFilter(s string) StatusFilter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return FilterActive
	case "completed", "done":
		return FilterCompleted
	default:
		return FilterAll
	}
}

// Filter returns the subset of todos matching f, in the original order.
// The input slice is never mutated.
func Filter(todos []Todo, f StatusFilter) []Todo {
	if f == FilterAll {
		out := make([]Todo, len(todos))
		copy(out, todos)
		return out
	}
	want := f == FilterCompleted
	out := make([]Todo, 0, len(todos))
	for _, t := range todos {
		if t.Completed == want {
			out = append(out, t)
		}
	}
	return out
}

// Stats counts records by completion flag.
func Stats(todos []Todo) (active, completed int) {
	for _, t := range todos {
		if t.Completed {
			completed++
		} else {
			active++
		}
	}
	return
}
