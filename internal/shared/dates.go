package shared

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by chart URLs and checkpoint files.
const DateLayout = "2006-01-02"

// DefaultStepDays is the sampling interval between weekly chart dates.
const DefaultStepDays = 7

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q (want YYYY-MM-DD)", ErrInvalidDateFormat, s)
	}
	return d, nil
}

// ParseDateRange parses both ends of a date range. The first malformed value is reported.
func ParseDateRange(start, end string) (time.Time, time.Time, error) {
	s, err := ParseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start date: %w", err)
	}
	e, err := ParseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end date: %w", err)
	}
	return s, e, nil
}

// FormatDate renders t as YYYY-MM-DD, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// TruncateDay drops the clock portion of t, keeping the calendar date in UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the calendar date n days after t.
func AddDays(t time.Time, n int) time.Time {
	return TruncateDay(t).AddDate(0, 0, n)
}

// EnumerateDates returns start, start+step, start+2*step, ... for every date on or before end.
//
// A start after end yields an empty slice. Non-positive steps fall back to [DefaultStepDays].
func EnumerateDates(start, end time.Time, stepDays int) []time.Time {
	if stepDays <= 0 {
		stepDays = DefaultStepDays
	}

	start, end = TruncateDay(start), TruncateDay(end)
	if start.After(end) {
		return []time.Time{}
	}

	days := int(end.Sub(start).Hours() / 24)
	dates := make([]time.Time, 0, days/stepDays+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, stepDays) {
		dates = append(dates, d)
	}
	return dates
}
