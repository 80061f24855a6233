// Package calendar projects the flat block collection into view-specific
// buckets. Aggregation is a pure function over its inputs: it never mutates
// store state and never fails, so the presentation layer can always render.
package calendar

import (
	"errors"
	"strings"
	"time"

	"github.com/vertexhq/vertex/internal/domain/block"
)

// View selects a calendar zoom level.
type View string

const (
	ViewDay   View = "day"
	ViewWeek  View = "week"
	ViewMonth View = "month"
	ViewYear  View = "year"
)

// ErrUnknownView indicates a view name outside day/week/month/year.
var ErrUnknownView = errors.New("unknown calendar view")

// ParseView validates a view name.
func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewDay, ViewWeek, ViewMonth, ViewYear:
		return v, nil
	default:
		return "", ErrUnknownView
	}
}

var bucketLabels = map[View][]string{
	ViewDay:   {"Today"},
	ViewWeek:  {"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
	ViewMonth: {"Week 1", "Week 2", "Week 3", "Week 4", "Week 5", "Week 6", "Week 7"},
	ViewYear:  {"Q1", "Q2", "Q3", "Q4"},
}

// Visibility narrows as the view widens: zooming out hides lower priorities
// to avoid clutter.
var visiblePriorities = map[View]map[block.Priority]bool{
	ViewDay:   {block.PriorityHigh: true, block.PriorityMedium: true, block.PriorityLow: true},
	ViewWeek:  {block.PriorityHigh: true, block.PriorityMedium: true},
	ViewMonth: {block.PriorityHigh: true, block.PriorityMedium: true},
	ViewYear:  {block.PriorityHigh: true},
}

// Labels returns the fixed, ordered bucket labels of a view.
func Labels(view View) []string {
	labels := bucketLabels[view]
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}

// Visible reports whether a priority passes the view's visibility threshold.
func Visible(view View, p block.Priority) bool {
	return visiblePriorities[view][p]
}

// Bucket is one labeled slot of a calendar view. Blocks keep the input
// collection's order; a zero-length Blocks slice tells the presentation
// layer to render its "no items" placeholder.
type Bucket struct {
	Label  string        `json:"label"`
	Blocks []block.Block `json:"blocks"`
}

// Aggregate distributes blocks into the view's fixed bucket sequence.
// Blocks below the view's priority threshold are dropped; blocks with a
// missing or unparseable date land in the view's first bucket rather than
// being lost.
func Aggregate(blocks []block.Block, view View) []Bucket {
	labels := bucketLabels[view]
	buckets := make([]Bucket, len(labels))
	for i, label := range labels {
		buckets[i] = Bucket{Label: label, Blocks: []block.Block{}}
	}
	if len(buckets) == 0 {
		return buckets
	}

	for _, b := range blocks {
		if !Visible(view, b.Priority) {
			continue
		}
		idx := bucketIndex(view, b.Date)
		buckets[idx].Blocks = append(buckets[idx].Blocks, b)
	}
	return buckets
}

func bucketIndex(view View, date string) int {
	if view == ViewDay {
		return 0
	}
	t, ok := ParseDate(date)
	if !ok {
		return 0
	}

	switch view {
	case ViewWeek:
		// Monday is index 0; Sunday wraps to the last slot.
		wd := int(t.Weekday())
		if wd == 0 {
			return 6
		}
		return wd - 1
	case ViewMonth:
		idx := (t.Day() - 1) / 7
		if idx > 6 {
			idx = 6
		}
		return idx
	case ViewYear:
		return (int(t.Month()) - 1) / 3
	}
	return 0
}

// ParseDate parses a block date. Both the date-input form (2006-01-02) and
// RFC 3339 timestamps are accepted.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
