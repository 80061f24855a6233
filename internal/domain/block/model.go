package block

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Priority controls how far a block stays visible as the calendar zooms out.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Minutes is a duration in minutes that decodes tolerantly: JSON numbers,
// numeric strings, and malformed values all decode, with garbage becoming
// zero. Validation is deliberately absent at the write boundary; consumers
// treat zero as the default.
type Minutes float64

func (m *Minutes) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*m = Minutes(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*m = Minutes(v)
			return nil
		}
	}
	*m = 0
	return nil
}

// Block represents a time-boxed focus session, optionally linked to an
// assignment. AssignmentTitle is a denormalized cache of the referenced
// assignment's title; the assignment store keeps it consistent on rename
// and delete.
type Block struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Date            string     `json:"date"`
	Time            string     `json:"time"`
	Duration        Minutes    `json:"duration"`
	Priority        Priority   `json:"priority"`
	Notes           string     `json:"notes"`
	AssignmentID    string     `json:"assignment_id"`
	AssignmentTitle string     `json:"assignment_title"`
	Completed       bool       `json:"completed"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}
