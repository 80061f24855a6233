package assignment

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Hours is an effort estimate that decodes tolerantly, the same way block
// durations do: numbers, numeric strings, or garbage, with garbage becoming
// zero. The progress calculator treats zero as "no estimate".
type Hours float64

func (h *Hours) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*h = Hours(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*h = Hours(v)
			return nil
		}
	}
	*h = 0
	return nil
}

// Assignment is a deliverable with a due date and an effort estimate.
type Assignment struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Due       string    `json:"due"`
	Hours     Hours     `json:"hours"`
	CreatedAt time.Time `json:"created_at"`
}
