// package services defines the chart and track source interfaces for the HTTP APIs chartx reads from
//
// Billboard (charts), Spotify (track metadata & audio features)
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/shared"
)

// ChartSource returns the entries of one chart snapshot in the provider's rank order.
type ChartSource interface {
	// Chart fetches chartID for the year or date selected by q.
	Chart(ctx context.Context, chartID string, q ChartQuery) ([]models.ChartEntry, error)

	// Name returns the name of the source (e.g., "Billboard")
	Name() string
}

// TrackSource looks up streaming metadata for songs.
type TrackSource interface {
	// SearchTrack returns the best match for a free-text query.
	// Returns an error wrapping [shared.ErrLookupMiss] when nothing matches.
	SearchTrack(ctx context.Context, query string) (*models.TrackMatch, error)

	// AudioFeatures returns the analysis attributes of a track.
	AudioFeatures(ctx context.Context, trackID string) (*models.AudioFeatures, error)

	// Name returns the name of the source (e.g., "Spotify")
	Name() string
}

// ChartQuery selects a chart snapshot: a year-end chart (Year) or a weekly chart (Date). Exactly one is set.
type ChartQuery struct {
	Year int
	Date time.Time
}

// ForYear selects the year-end chart of year.
func ForYear(year int) ChartQuery {
	return ChartQuery{Year: year}
}

// ForDate selects the weekly chart containing d.
func ForDate(d time.Time) ChartQuery {
	return ChartQuery{Date: shared.TruncateDay(d)}
}

// Validate checks that exactly one selector is set.
func (q ChartQuery) Validate() error {
	hasYear, hasDate := q.Year != 0, !q.Date.IsZero()
	switch {
	case hasYear && hasDate:
		return fmt.Errorf("%w: chart query sets both year and date", shared.ErrInvalidArgument)
	case !hasYear && !hasDate:
		return fmt.Errorf("%w: chart query needs a year or a date", shared.ErrInvalidArgument)
	case hasYear && q.Year < 1900:
		return fmt.Errorf("%w: year %d", shared.ErrInvalidArgument, q.Year)
	}
	return nil
}

// IsYear reports whether q selects a year-end chart.
func (q ChartQuery) IsYear() bool {
	return q.Year != 0
}

func (q ChartQuery) String() string {
	if q.IsYear() {
		return fmt.Sprintf("year %d", q.Year)
	}
	return shared.FormatDate(q.Date)
}
