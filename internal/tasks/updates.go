package tasks

import (
	"fmt"
	"time"

	"github.com/desertthunder/chartx/internal/shared"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Rows    int    // Rows accumulated so far
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	PlanDates Phase = iota
	FetchChart
	FetchYear
	EnrichTracks
	Done
)

func (p Phase) String() string {
	switch p {
	case PlanDates:
		return "plan_dates"
	case FetchChart:
		return "fetch_chart"
	case FetchYear:
		return "fetch_year"
	case EnrichTracks:
		return "enrich_tracks"
	case Done:
		return "done"
	default:
		return ""
	}
}

func planDatesUpdate(total int, start time.Time) ProgressUpdate {
	message := fmt.Sprintf("Crawling %d chart dates from %s...", total, shared.FormatDate(start))
	if total == 0 {
		message = "No chart dates left to crawl"
	}
	return ProgressUpdate{
		Phase:   PlanDates,
		Total:   total,
		Message: message,
	}
}

func fetchChartUpdate(step, total, rows int, date time.Time, entries int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchChart,
		Step:    step,
		Total:   total,
		Rows:    rows,
		Message: fmt.Sprintf("[%d/%d] %s: %d entries", step, total, shared.FormatDate(date), entries),
		Data:    date,
	}
}

func fetchYearUpdate(step, total, rows, year, entries int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchYear,
		Step:    step,
		Total:   total,
		Rows:    rows,
		Message: fmt.Sprintf("[%d/%d] year-end %d: %d entries", step, total, year, entries),
		Data:    year,
	}
}

func enrichUpdate(step, total int, result EnrichResult) ProgressUpdate {
	mark := "✓"
	switch result.Status {
	case EnrichSkipped:
		mark = "-"
	case EnrichFailed:
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:   EnrichTracks,
		Step:    step,
		Total:   total,
		Rows:    step,
		Message: fmt.Sprintf("[%d/%d] %s %s", step, total, mark, result.Query),
		Data:    result,
	}
}

func doneUpdate(rows int, message string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Rows:    rows,
		Message: message,
	}
}
