package shared

import (
	"errors"
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func TestEnumerateDates(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		step  int
		want  []string
	}{
		{
			name:  "weekly step divides range",
			start: "2020-01-04",
			end:   "2020-01-25",
			step:  7,
			want:  []string{"2020-01-04", "2020-01-11", "2020-01-18", "2020-01-25"},
		},
		{
			name:  "last date falls short of end",
			start: "2020-01-04",
			end:   "2020-01-24",
			step:  7,
			want:  []string{"2020-01-04", "2020-01-11", "2020-01-18"},
		},
		{
			name:  "single day range",
			start: "2021-06-01",
			end:   "2021-06-01",
			step:  7,
			want:  []string{"2021-06-01"},
		},
		{
			name:  "start after end",
			start: "2021-06-02",
			end:   "2021-06-01",
			step:  7,
			want:  []string{},
		},
		{
			name:  "zero step uses default",
			start: "2021-01-01",
			end:   "2021-01-10",
			step:  0,
			want:  []string{"2021-01-01", "2021-01-08"},
		},
		{
			name:  "crosses leap day",
			start: "2020-02-22",
			end:   "2020-03-07",
			step:  7,
			want:  []string{"2020-02-22", "2020-02-29", "2020-03-07"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnumerateDates(mustDate(t, tt.start), mustDate(t, tt.end), tt.step)
			if got == nil {
				t.Fatal("expected non-nil slice")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d dates, want %d", len(got), len(tt.want))
			}
			for i, d := range got {
				if FormatDate(d) != tt.want[i] {
					t.Errorf("date[%d] = %s, want %s", i, FormatDate(d), tt.want[i])
				}
			}
		})
	}
}

func TestEnumerateDatesProperties(t *testing.T) {
	start := mustDate(t, "2019-01-05")
	for _, span := range []int{0, 1, 6, 7, 8, 13, 14, 30, 364, 365} {
		for _, step := range []int{1, 3, 7, 10} {
			end := AddDays(start, span)
			dates := EnumerateDates(start, end, step)

			if want := span/step + 1; len(dates) != want {
				t.Errorf("span=%d step=%d: got %d dates, want %d", span, step, len(dates), want)
			}
			if !dates[0].Equal(start) {
				t.Errorf("span=%d step=%d: first date %s, want start", span, step, FormatDate(dates[0]))
			}
			for _, d := range dates {
				if d.After(end) {
					t.Errorf("span=%d step=%d: date %s after end %s", span, step, FormatDate(d), FormatDate(end))
				}
			}
		}
	}
}

func TestParseDateRange(t *testing.T) {
	t.Run("valid input", func(t *testing.T) {
		start, end, err := ParseDateRange("2020-01-04", "2020-01-18")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dates := EnumerateDates(start, end, 7); len(dates) != 3 {
			t.Errorf("expected 3 dates, got %d", len(dates))
		}
	})

	t.Run("malformed start", func(t *testing.T) {
		if _, _, err := ParseDateRange("01/04/2020", "2020-01-18"); !errors.Is(err, ErrInvalidDateFormat) {
			t.Fatalf("expected ErrInvalidDateFormat, got %v", err)
		}
	})

	t.Run("malformed end", func(t *testing.T) {
		if _, _, err := ParseDateRange("2020-01-04", "soon"); !errors.Is(err, ErrInvalidDateFormat) {
			t.Fatalf("expected ErrInvalidDateFormat, got %v", err)
		}
	})

	t.Run("reversed range is empty, not an error", func(t *testing.T) {
		start, end, err := ParseDateRange("2020-02-01", "2020-01-01")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dates := EnumerateDates(start, end, 7); len(dates) != 0 {
			t.Errorf("expected no dates, got %d", len(dates))
		}
	})
}

func TestTruncateDay(t *testing.T) {
	ts := time.Date(2020, 5, 17, 23, 59, 0, 0, time.UTC)
	if got := FormatDate(AddDays(ts, 1)); got != "2020-05-18" {
		t.Errorf("AddDays = %s, want 2020-05-18", got)
	}
	if FormatDate(time.Time{}) != "" {
		t.Error("expected zero time to format as empty string")
	}
}
