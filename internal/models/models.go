// package models defines the data model for chart crawling and track enrichment
package models

import (
	"time"
)

// ChartEntry is one song's ranking record for one chart snapshot.
type ChartEntry struct {
	Title        string
	Artist       string
	Rank         int
	PeakPosition int
	PreviousRank *int // nil for new entries and re-entries
	WeeksOnChart int
}

// ChartObservation is a [ChartEntry] read from the chart dated Date.
type ChartObservation struct {
	ChartEntry
	Date time.Time
}

// Observe stamps e with the chart date d.
func (e ChartEntry) Observe(d time.Time) ChartObservation {
	return ChartObservation{ChartEntry: e, Date: d}
}

// PeakSummary collapses every observation of one song.
type PeakSummary struct {
	Title    string    `json:"title"`
	Artist   string    `json:"artist"`
	Weeks    int       `json:"weeks"`     // max weeks-on-chart seen
	PeakRank int       `json:"peak_rank"` // min rank seen
	PeakDate time.Time `json:"peak_date"` // date of the max peak-position value
}

// YearRank is one row of a year-end chart.
type YearRank struct {
	Year   int    `json:"year"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Rank   int    `json:"rank"`
}

// AudioFeatures are the provider's analysis attributes for a track.
type AudioFeatures struct {
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Key              int     `json:"key"` // pitch class 0-11, -1 when undetected
	Loudness         float64 `json:"loudness"`
	Mode             int     `json:"mode"` // 1 major, 0 minor
	Speechiness      float64 `json:"speechiness"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
	TimeSignature    int     `json:"time_signature"`
	DurationMS       int     `json:"duration_ms"`
}

// TrackMatch is the best search hit for a query string.
type TrackMatch struct {
	ID          string
	Name        string
	Artists     []string
	Album       string
	ReleaseDate string
	Popularity  int
}

// TrackRecord is a row of the enrichment table.
//
// Rows start with chart fields only; enrichment fills the rest. A row with a non-empty ID is complete.
type TrackRecord struct {
	Title    string    `json:"title"`
	Artist   string    `json:"artist"`
	PeakRank int       `json:"peak_rank"`
	Weeks    int       `json:"weeks"`
	PeakDate time.Time `json:"peak_date"`

	ID            string         `json:"id,omitempty"`
	Name          string         `json:"name,omitempty"`
	Album         string         `json:"album,omitempty"`
	Popularity    int            `json:"popularity,omitempty"`
	Collaboration bool           `json:"collaboration"`
	ReleaseDate   string         `json:"release_date,omitempty"`
	Features      *AudioFeatures `json:"features,omitempty"`
}

// Complete reports whether the row has already been enriched.
func (r TrackRecord) Complete() bool {
	return r.ID != ""
}

// Query is the search string used to look the row up.
func (r TrackRecord) Query() string {
	return r.Title + " " + r.Artist
}

// Apply fills r from a search match and its audio features. features may be nil.
func (r *TrackRecord) Apply(m *TrackMatch, features *AudioFeatures) {
	r.ID = m.ID
	r.Name = m.Name
	r.Album = m.Album
	r.Popularity = m.Popularity
	r.Collaboration = len(m.Artists) > 1
	r.ReleaseDate = m.ReleaseDate
	r.Features = features
}

// TrackRecordsFromSummaries seeds an enrichment table from peak summaries.
func TrackRecordsFromSummaries(summaries []PeakSummary) []TrackRecord {
	records := make([]TrackRecord, 0, len(summaries))
	for _, s := range summaries {
		records = append(records, TrackRecord{
			Title:    s.Title,
			Artist:   s.Artist,
			PeakRank: s.PeakRank,
			Weeks:    s.Weeks,
			PeakDate: s.PeakDate,
		})
	}
	return records
}

// RunStatus is the lifecycle state of a [CrawlRun].
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// CrawlRun records one invocation of a crawl, year or enrichment job.
type CrawlRun struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	Chart      string     `json:"chart,omitempty"`
	Target     string     `json:"target,omitempty"`
	Status     RunStatus  `json:"status"`
	Rows       int        `json:"rows"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
