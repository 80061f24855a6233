package transport

import (
	"fmt"
	"net/http"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/vertexhq/vertex/internal/domain/block"
	"github.com/vertexhq/vertex/internal/domain/calendar"
)

// fallbackEventMinutes is used when a block carries no usable duration, so
// the exported event still has an extent.
const fallbackEventMinutes = 60

func (s *Server) handleCalendarExport(w http.ResponseWriter, r *http.Request) {
	payload := buildICS(s.blocks.List(r.Context()), time.Now())

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="vertex.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(payload))
}

// buildICS serializes the block collection as an iCalendar feed. Blocks
// whose date cannot be parsed are skipped; the feed is a convenience export,
// not the system of record.
func buildICS(blocks []block.Block, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Vertex//Planner//EN")

	for _, b := range blocks {
		day, ok := calendar.ParseDate(b.Date)
		if !ok {
			continue
		}

		start := day
		if t, err := time.Parse("15:04", b.Time); err == nil {
			start = time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
		}

		minutes := float64(b.Duration)
		if minutes <= 0 {
			minutes = fallbackEventMinutes
		}

		event := cal.AddEvent(b.ID)
		event.SetDtStampTime(now)
		event.SetCreatedTime(b.CreatedAt)
		event.SetStartAt(start)
		event.SetEndAt(start.Add(time.Duration(minutes) * time.Minute))
		event.SetSummary(b.Title)

		description := b.Notes
		if b.AssignmentTitle != "" {
			if description != "" {
				description += "\n"
			}
			description += fmt.Sprintf("Assignment: %s", b.AssignmentTitle)
		}
		if description != "" {
			event.SetDescription(description)
		}
	}

	return cal.Serialize()
}
