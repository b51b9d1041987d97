package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/tasks"
)

func noopJob(ctx context.Context, progress chan<- tasks.ProgressUpdate) (int, error) {
	return 0, nil
}

func TestMonitor(t *testing.T) {
	t.Run("renders progress", func(t *testing.T) {
		m := NewMonitor(context.Background(), "Crawling hot-100", noopJob)

		m.Update(progressUpdateMsg(tasks.ProgressUpdate{
			Phase:   tasks.FetchChart,
			Step:    1,
			Total:   4,
			Rows:    100,
			Message: "[1/4] 2020-01-04: 100 entries",
		}))

		view := m.View()
		for _, want := range []string{"Crawling hot-100", "fetch_chart", "1/4", "25%", "100 rows", "2020-01-04: 100 entries"} {
			if !strings.Contains(view, want) {
				t.Errorf("view missing %q:\n%s", want, view)
			}
		}
	})

	t.Run("keeps a bounded log", func(t *testing.T) {
		m := NewMonitor(context.Background(), "Crawl", noopJob)
		for i := range recentLimit + 3 {
			m.Update(progressUpdateMsg(tasks.ProgressUpdate{Phase: tasks.FetchChart, Step: i + 1, Total: 20, Message: "line"}))
		}
		if len(m.recent) != recentLimit {
			t.Errorf("expected %d log lines, got %d", recentLimit, len(m.recent))
		}
	})

	t.Run("toggles log", func(t *testing.T) {
		m := NewMonitor(context.Background(), "Crawl", noopJob)
		m.Update(progressUpdateMsg(tasks.ProgressUpdate{Phase: tasks.FetchChart, Message: "visible line"}))

		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})
		if strings.Contains(m.View(), "visible line") {
			t.Error("expected log to be hidden")
		}
	})

	t.Run("quit cancels the job", func(t *testing.T) {
		m := NewMonitor(context.Background(), "Crawl", noopJob)

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
		if cmd != nil {
			t.Error("expected monitor to wait for the job before quitting")
		}
		if m.ctx.Err() == nil {
			t.Error("expected job context to be cancelled")
		}
		if !strings.Contains(m.View(), "stopping") {
			t.Errorf("expected stopping notice:\n%s", m.View())
		}
	})

	t.Run("done quits", func(t *testing.T) {
		m := NewMonitor(context.Background(), "Crawl", noopJob)

		_, cmd := m.Update(jobDoneMsg(150, nil))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
		if !strings.Contains(m.View(), "done: 150 rows") {
			t.Errorf("unexpected view:\n%s", m.View())
		}
	})

	t.Run("done with error", func(t *testing.T) {
		m := NewMonitor(context.Background(), "Crawl", noopJob)
		m.Update(jobDoneMsg(12, errors.New("chart source query failed")))

		rows, err := m.Result()
		if rows != 12 || err == nil {
			t.Errorf("unexpected result %d, %v", rows, err)
		}
		if !strings.Contains(m.View(), "stopped after 12 rows") {
			t.Errorf("unexpected view:\n%s", m.View())
		}
	})

	t.Run("drives a job to completion", func(t *testing.T) {
		job := func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (int, error) {
			progress <- tasks.ProgressUpdate{Phase: tasks.FetchChart, Step: 1, Total: 1, Rows: 3, Message: "one date"}
			return 3, nil
		}
		m := NewMonitor(context.Background(), "Crawl", job)

		msg := m.start()()
		if got, ok := msg.(Msg); !ok || got.kind != MsgProgressUpdate {
			t.Fatalf("expected progress message, got %#v", msg)
		}

		_, next := m.Update(msg)
		done := next()
		if got, ok := done.(Msg); !ok || got.kind != MsgJobDone {
			t.Fatalf("expected done message, got %#v", done)
		}

		m.Update(done)
		if rows, err := m.Result(); rows != 3 || err != nil {
			t.Errorf("unexpected result %d, %v", rows, err)
		}
	})
}

func TestPlotPeaks(t *testing.T) {
	summaries := []models.PeakSummary{
		{Title: "Blinding Lights", Artist: "The Weeknd", Weeks: 90, PeakRank: 1},
		{Title: "Circles", Artist: "Post Malone", Weeks: 45, PeakRank: 1},
		{Title: "Short Stay", Artist: "Someone", Weeks: 1, PeakRank: 99},
	}

	t.Run("scales bars", func(t *testing.T) {
		out := PlotPeaks(summaries, 20, 0)
		lines := strings.Split(out, "\n")

		var bars []int
		for _, l := range lines {
			if n := strings.Count(l, "█"); n > 0 {
				bars = append(bars, n)
			}
		}
		if len(bars) != 3 {
			t.Fatalf("expected 3 bars, got %d:\n%s", len(bars), out)
		}
		if bars[0] != 20 || bars[1] != 10 || bars[2] != 1 {
			t.Errorf("unexpected bar lengths %v", bars)
		}
		if !strings.Contains(out, "#99") {
			t.Errorf("expected peak label:\n%s", out)
		}
	})

	t.Run("limit", func(t *testing.T) {
		if out := PlotPeaks(summaries, 10, 1); strings.Contains(out, "Circles") {
			t.Errorf("expected only the first row:\n%s", out)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if out := PlotPeaks(nil, 10, 0); !strings.Contains(out, "no summaries") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("truncate", func(t *testing.T) {
		if got := truncate("Blinding Lights", 8); got != "Blindin…" {
			t.Errorf("truncate() = %q", got)
		}
		if got := truncate("Hi", 8); got != "Hi" {
			t.Errorf("truncate() = %q", got)
		}
	})
}
