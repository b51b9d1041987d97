// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/services"
	"github.com/desertthunder/chartx/internal/shared"
)

// MockChartSource is a test double for [services.ChartSource]
//
// Weekly charts are keyed by YYYY-MM-DD, year-end charts by year. Unknown keys return an empty chart.
type MockChartSource struct {
	Weekly  map[string][]models.ChartEntry
	YearEnd map[int][]models.ChartEntry
	FailOn  map[string]error // keyed by date or by year
	Calls   []services.ChartQuery
}

func (m *MockChartSource) Name() string { return "mock-charts" }

func (m *MockChartSource) Chart(ctx context.Context, chartID string, q services.ChartQuery) ([]models.ChartEntry, error) {
	m.Calls = append(m.Calls, q)

	key := shared.FormatDate(q.Date)
	if q.IsYear() {
		key = fmt.Sprintf("%d", q.Year)
	}
	if err, ok := m.FailOn[key]; ok {
		return nil, err
	}

	if q.IsYear() {
		return m.YearEnd[q.Year], nil
	}
	return m.Weekly[key], nil
}

// CalledDates returns the dates of every weekly query, in call order.
func (m *MockChartSource) CalledDates() []string {
	dates := make([]string, 0, len(m.Calls))
	for _, q := range m.Calls {
		if !q.IsYear() {
			dates = append(dates, shared.FormatDate(q.Date))
		}
	}
	return dates
}

// MockTrackSource is a test double for [services.TrackSource]
//
// Matches and Features are keyed by query string and track ID respectively. Missing keys are lookup misses.
type MockTrackSource struct {
	Matches     map[string]*models.TrackMatch
	Features    map[string]*models.AudioFeatures
	SearchErr   map[string]error
	FeatureErr  map[string]error
	Queries     []string
	FeatureCall []string
}

func (m *MockTrackSource) Name() string { return "mock-tracks" }

func (m *MockTrackSource) SearchTrack(ctx context.Context, query string) (*models.TrackMatch, error) {
	m.Queries = append(m.Queries, query)
	if err, ok := m.SearchErr[query]; ok {
		return nil, err
	}
	if match, ok := m.Matches[query]; ok {
		return match, nil
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrLookupMiss, query)
}

func (m *MockTrackSource) AudioFeatures(ctx context.Context, trackID string) (*models.AudioFeatures, error) {
	m.FeatureCall = append(m.FeatureCall, trackID)
	if err, ok := m.FeatureErr[trackID]; ok {
		return nil, err
	}
	if f, ok := m.Features[trackID]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("%w: features for %s", shared.ErrLookupMiss, trackID)
}

// RecordingSink captures every checkpoint write. It satisfies both tasks.ObservationSink and tasks.TrackSink.
//
// FailAfter > 0 makes the n-th and later saves fail.
type RecordingSink struct {
	Observations [][]models.ChartObservation
	Tracks       [][]models.TrackRecord
	FailAfter    int
	saves        int
}

func (s *RecordingSink) fail() error {
	s.saves++
	if s.FailAfter > 0 && s.saves >= s.FailAfter {
		return errors.New("sink write failed")
	}
	return nil
}

func (s *RecordingSink) SaveObservations(ctx context.Context, rows []models.ChartObservation) error {
	if err := s.fail(); err != nil {
		return err
	}
	snapshot := make([]models.ChartObservation, len(rows))
	copy(snapshot, rows)
	s.Observations = append(s.Observations, snapshot)
	return nil
}

func (s *RecordingSink) SaveTracks(ctx context.Context, rows []models.TrackRecord) error {
	if err := s.fail(); err != nil {
		return err
	}
	snapshot := make([]models.TrackRecord, len(rows))
	copy(snapshot, rows)
	s.Tracks = append(s.Tracks, snapshot)
	return nil
}

// LastObservations returns the most recent observation checkpoint, or nil.
func (s *RecordingSink) LastObservations() []models.ChartObservation {
	if len(s.Observations) == 0 {
		return nil
	}
	return s.Observations[len(s.Observations)-1]
}

// LastTracks returns the most recent track checkpoint, or nil.
func (s *RecordingSink) LastTracks() []models.TrackRecord {
	if len(s.Tracks) == 0 {
		return nil
	}
	return s.Tracks[len(s.Tracks)-1]
}

// Entry builds a weekly chart entry. prev < 0 means no previous rank.
func Entry(title, artist string, rank, peak, prev, weeks int) models.ChartEntry {
	e := models.ChartEntry{
		Title:        title,
		Artist:       artist,
		Rank:         rank,
		PeakPosition: peak,
		WeeksOnChart: weeks,
	}
	if prev >= 0 {
		e.PreviousRank = &prev
	}
	return e
}

func MustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := shared.ParseDate(s)
	if err != nil {
		t.Fatalf("Failed to parse date %s: %v", s, err)
	}
	return d
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
