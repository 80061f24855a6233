// Package progress computes per-assignment completion from the block
// collection. Like calendar aggregation it is a pure read model and never
// fails: malformed numerics have already decoded to zero at the boundary.
package progress

import (
	"math"

	"github.com/vertexhq/vertex/internal/domain/assignment"
	"github.com/vertexhq/vertex/internal/domain/block"
)

// Report summarizes scheduled and completed effort for one assignment.
type Report struct {
	AssignmentID     string  `json:"assignment_id"`
	ScheduledMinutes float64 `json:"scheduled_minutes"`
	CompletedMinutes float64 `json:"completed_minutes"`
	EstimatedMinutes float64 `json:"estimated_minutes"`
	Percent          int     `json:"percent"`
	FullyRealized    bool    `json:"fully_realized"`
}

// Compute sums the durations of blocks linked to the assignment and derives
// a completion percentage against the estimate. A zero estimate yields zero
// percent, and the percentage is capped at 100 even when completed time
// exceeds the estimate. FullyRealized additionally requires scheduled time,
// so an empty assignment is never flagged complete.
func Compute(a assignment.Assignment, blocks []block.Block) Report {
	var scheduled, completed float64
	for _, b := range blocks {
		if b.AssignmentID != a.ID {
			continue
		}
		scheduled += float64(b.Duration)
		if b.Completed {
			completed += float64(b.Duration)
		}
	}

	estimated := float64(a.Hours) * 60

	percent := 0
	if estimated > 0 {
		percent = int(math.Round(completed / estimated * 100))
		if percent > 100 {
			percent = 100
		}
	}

	return Report{
		AssignmentID:     a.ID,
		ScheduledMinutes: scheduled,
		CompletedMinutes: completed,
		EstimatedMinutes: estimated,
		Percent:          percent,
		FullyRealized:    percent == 100 && scheduled > 0,
	}
}
