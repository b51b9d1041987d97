package formatter

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/shared"
	th "github.com/desertthunder/chartx/internal/testing"
)

func TestFormatter(t *testing.T) {
	t.Run("ExportObservationsCSV", func(t *testing.T) {
		rows := []models.ChartObservation{
			th.Entry("Circles", "Post Malone", 1, 1, 2, 16).Observe(th.MustDate(t, "2020-01-04")),
			th.Entry("Say So", "Doja Cat, Nicki", 5, 5, -1, 1).Observe(th.MustDate(t, "2020-01-04")),
		}

		data, err := ExportObservationsCSV(rows)
		if err != nil {
			t.Fatalf("ExportObservationsCSV failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected 3 lines, got %d", len(lines))
		}
		if lines[0] != "date,title,artist,rank,peak_position,previous_rank,weeks_on_chart" {
			t.Errorf("unexpected header %q", lines[0])
		}
		if lines[1] != "2020-01-04,Circles,Post Malone,1,1,2,16" {
			t.Errorf("unexpected record %q", lines[1])
		}
		if lines[2] != `2020-01-04,Say So,"Doja Cat, Nicki",5,5,,1` {
			t.Errorf("expected quoted artist and empty previous rank, got %q", lines[2])
		}

		parsed, err := ParseObservationsCSV(strings.NewReader(string(data)))
		if err != nil {
			t.Fatalf("ParseObservationsCSV failed: %v", err)
		}
		if !reflect.DeepEqual(parsed, rows) {
			t.Errorf("parsed rows differ:\n got %+v\nwant %+v", parsed, rows)
		}
	})

	t.Run("ParseObservationsCSV", func(t *testing.T) {
		tests := []struct {
			name    string
			input   string
			want    int
			wantErr bool
		}{
			{name: "empty file", input: "", want: 0},
			{name: "header only", input: "date,title,artist,rank,peak_position,previous_rank,weeks_on_chart\n", want: 0},
			{name: "wrong header", input: "a,b,c,d,e,f,g\n", wantErr: true},
			{name: "bad date", input: "date,title,artist,rank,peak_position,previous_rank,weeks_on_chart\n01/04/2020,A,B,1,1,,1\n", wantErr: true},
			{name: "bad rank", input: "date,title,artist,rank,peak_position,previous_rank,weeks_on_chart\n2020-01-04,A,B,one,1,,1\n", wantErr: true},
			{name: "short record", input: "date,title,artist,rank,peak_position,previous_rank,weeks_on_chart\n2020-01-04,A\n", wantErr: true},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rows, err := ParseObservationsCSV(strings.NewReader(tt.input))
				if tt.wantErr {
					if !errors.Is(err, shared.ErrCheckpoint) {
						t.Errorf("expected ErrCheckpoint, got %v", err)
					}
					return
				}
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if len(rows) != tt.want {
					t.Errorf("expected %d rows, got %d", tt.want, len(rows))
				}
			})
		}
	})

	t.Run("ExportSummariesCSV", func(t *testing.T) {
		summaries := []models.PeakSummary{
			{Title: "Circles", Artist: "Post Malone", Weeks: 39, PeakRank: 1, PeakDate: th.MustDate(t, "2019-11-30")},
		}

		data, err := ExportSummariesCSV(summaries)
		if err != nil {
			t.Fatalf("ExportSummariesCSV failed: %v", err)
		}
		if !strings.Contains(string(data), "Circles,Post Malone,39,1,2019-11-30") {
			t.Errorf("unexpected CSV %q", data)
		}

		parsed, err := ParseSummariesCSV(strings.NewReader(string(data)))
		if err != nil {
			t.Fatalf("ParseSummariesCSV failed: %v", err)
		}
		if !reflect.DeepEqual(parsed, summaries) {
			t.Errorf("parsed summaries differ: %+v", parsed)
		}
	})

	t.Run("ExportYearRanksCSV", func(t *testing.T) {
		data, err := ExportYearRanksCSV([]models.YearRank{{Year: 2015, Title: "Uptown Funk!", Artist: "Mark Ronson", Rank: 1}})
		if err != nil {
			t.Fatalf("ExportYearRanksCSV failed: %v", err)
		}
		want := "rank_year,title,artist,rank\n2015,Uptown Funk!,Mark Ronson,1\n"
		if string(data) != want {
			t.Errorf("expected %q, got %q", want, data)
		}
	})

	t.Run("ExportTracksCSV", func(t *testing.T) {
		rows := []models.TrackRecord{
			{
				Title: "Old Town Road", Artist: "Lil Nas X", PeakRank: 1, Weeks: 45,
				PeakDate: th.MustDate(t, "2019-04-13"),
				ID:       "t1", Name: "Old Town Road - Remix", Album: "7", Popularity: 80,
				Collaboration: true, ReleaseDate: "2019-06-21",
				Features: &models.AudioFeatures{
					Danceability: 0.878, Energy: 0.619, Key: 6, Loudness: -5.56, Mode: 1,
					Speechiness: 0.102, Acousticness: 0.0533, Instrumentalness: 0, Liveness: 0.113,
					Valence: 0.639, Tempo: 136.041, TimeSignature: 4, DurationMS: 157067,
				},
			},
			{Title: "Unmatched", Artist: "Nobody", PeakRank: 90, Weeks: 1},
		}

		data, err := ExportTracksCSV(rows)
		if err != nil {
			t.Fatalf("ExportTracksCSV failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if got := strings.Count(lines[2], ","); got != len(TrackHeaders)-1 {
			t.Errorf("expected %d separators for unfilled row, got %d", len(TrackHeaders)-1, got)
		}

		parsed, err := ParseTracksCSV(strings.NewReader(string(data)))
		if err != nil {
			t.Fatalf("ParseTracksCSV failed: %v", err)
		}
		if !reflect.DeepEqual(parsed, rows) {
			t.Errorf("parsed tracks differ:\n got %+v\nwant %+v", parsed, rows)
		}
		if parsed[1].Features != nil || parsed[1].Complete() {
			t.Error("expected unfilled row to stay incomplete")
		}
	})
}

func TestRenderTables(t *testing.T) {
	t.Run("RenderPeaksTable", func(t *testing.T) {
		summaries := []models.PeakSummary{
			{Title: "Blinding Lights", Artist: "The Weeknd", Weeks: 90, PeakRank: 1, PeakDate: th.MustDate(t, "2020-04-04")},
			{Title: "Circles", Artist: "Post Malone", Weeks: 39, PeakRank: 1},
			{Title: "Memories", Artist: "Maroon 5", Weeks: 30, PeakRank: 2},
		}

		out := RenderPeaksTable(summaries, 2)
		if !strings.Contains(out, "Blinding Lights") || !strings.Contains(out, "2020-04-04") {
			t.Errorf("table missing first row:\n%s", out)
		}
		if strings.Contains(out, "Memories") {
			t.Errorf("expected limit to drop third row:\n%s", out)
		}
		if !strings.Contains(out, "╭") {
			t.Errorf("expected rounded style:\n%s", out)
		}
	})

	t.Run("RenderYearRanksTable", func(t *testing.T) {
		out := RenderYearRanksTable([]models.YearRank{{Year: 2015, Rank: 1, Title: "Uptown Funk!", Artist: "Mark Ronson"}}, 0)
		if !strings.Contains(out, "Uptown Funk!") || !strings.Contains(out, "2015") {
			t.Errorf("unexpected table:\n%s", out)
		}
	})

	t.Run("RenderRunsTable", func(t *testing.T) {
		run := models.CrawlRun{ID: "0123456789abcdef", Kind: "crawl", Chart: "hot-100", Status: models.RunSucceeded, Rows: 200}
		out := RenderRunsTable([]models.CrawlRun{run})
		if !strings.Contains(out, "01234567") || strings.Contains(out, "0123456789") {
			t.Errorf("expected short run id:\n%s", out)
		}
	})

	t.Run("empty headers", func(t *testing.T) {
		if out := renderTable(nil, nil, nil); out != "" {
			t.Errorf("expected empty output, got %q", out)
		}
	})
}
