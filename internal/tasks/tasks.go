// package tasks implements the chart crawl, year-end fetch and track enrichment loops.
//
// The core abstraction is [ChartEngine], which drives a [services.ChartSource] and a [services.TrackSource]
// and checkpoints its accumulating table through a sink after every appended or enriched row.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/services"
	"github.com/desertthunder/chartx/internal/shared"
	"golang.org/x/time/rate"
)

// DefaultYearChart is the year-end chart queried when none is given.
const DefaultYearChart = "hot-100-songs"

// ObservationSink persists the full observation table. Each call replaces the previous contents.
type ObservationSink interface {
	SaveObservations(ctx context.Context, rows []models.ChartObservation) error
}

// TrackSink persists the full enrichment table. Each call replaces the previous contents.
type TrackSink interface {
	SaveTracks(ctx context.Context, rows []models.TrackRecord) error
}

// CrawlOpts selects the chart and date range of a crawl.
//
// When Existing is non-empty the crawl resumes at the latest existing date plus one step and Start is ignored.
type CrawlOpts struct {
	Chart    string
	Start    time.Time
	End      time.Time
	StepDays int
	Existing []models.ChartObservation
}

// EngineOpts configures a [ChartEngine].
type EngineOpts struct {
	Interval time.Duration // minimum spacing between track source calls
	Logger   *log.Logger
}

// ChartEngine runs the checkpointed fetch loops.
type ChartEngine struct {
	charts  services.ChartSource
	tracks  services.TrackSource
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewChartEngine creates a new ChartEngine with the provided sources. Either source may be nil
// when the caller only needs the operations of the other.
func NewChartEngine(charts services.ChartSource, tracks services.TrackSource, opts EngineOpts) *ChartEngine {
	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	return &ChartEngine{
		charts:  charts,
		tracks:  tracks,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ChartEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full, skip this update
	}
}

// LatestDate returns the most recent observation date, or the zero time for an empty table.
func LatestDate(rows []models.ChartObservation) time.Time {
	var latest time.Time
	for _, r := range rows {
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	return latest
}

// ResumeStart returns the first date a crawl over rows should query.
func ResumeStart(rows []models.ChartObservation, start time.Time, stepDays int) time.Time {
	if stepDays <= 0 {
		stepDays = shared.DefaultStepDays
	}
	if latest := LatestDate(rows); !latest.IsZero() {
		return shared.AddDays(latest, stepDays)
	}
	return shared.TruncateDay(start)
}

// Crawl queries the chart for every sample date and appends one observation per entry.
//
// The whole table is handed to sink after every appended row. A query failure aborts the crawl with an
// error wrapping [shared.ErrSourceQuery]; the rows gathered so far are returned alongside it and match
// the last checkpoint. Cancellation is checked between chart dates.
func (e *ChartEngine) Crawl(ctx context.Context, progress chan<- ProgressUpdate, opts CrawlOpts, sink ObservationSink) ([]models.ChartObservation, error) {
	if e.charts == nil {
		return nil, fmt.Errorf("%w: chart source not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Chart == "" {
		return nil, fmt.Errorf("%w: chart id is required", shared.ErrMissingArgument)
	}

	rows := make([]models.ChartObservation, len(opts.Existing))
	copy(rows, opts.Existing)

	start := ResumeStart(rows, opts.Start, opts.StepDays)
	dates := shared.EnumerateDates(start, opts.End, opts.StepDays)

	e.logger.Info("crawl planned", "chart", opts.Chart, "start", shared.FormatDate(start),
		"end", shared.FormatDate(opts.End), "dates", len(dates), "existing", len(rows))
	e.sendProgress(progress, planDatesUpdate(len(dates), start))

	for i, d := range dates {
		if err := ctx.Err(); err != nil {
			return rows, err
		}

		entries, err := e.charts.Chart(ctx, opts.Chart, services.ForDate(d))
		if err != nil {
			return rows, fmt.Errorf("%w: %s on %s: %w", shared.ErrSourceQuery, opts.Chart, shared.FormatDate(d), err)
		}

		// A date's rows are written even if ctx is cancelled part way so resume never skips a partial date.
		saveCtx := context.WithoutCancel(ctx)
		for _, entry := range entries {
			rows = append(rows, entry.Observe(d))
			if err := save(saveCtx, sink, rows); err != nil {
				return rows, err
			}
		}

		e.logger.Debug("chart fetched", "chart", opts.Chart, "date", shared.FormatDate(d), "entries", len(entries))
		e.sendProgress(progress, fetchChartUpdate(i+1, len(dates), len(rows), d, len(entries)))
	}

	e.sendProgress(progress, doneUpdate(len(rows), fmt.Sprintf("Crawl complete: %d rows", len(rows))))
	return rows, nil
}

func save(ctx context.Context, sink ObservationSink, rows []models.ChartObservation) error {
	if sink == nil {
		return nil
	}
	if err := sink.SaveObservations(ctx, rows); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrCheckpoint, err)
	}
	return nil
}

// YearRanks fetches the year-end chart for every year in [from, to] inclusive.
//
// from > to yields an empty result. Any failure aborts with an error wrapping [shared.ErrSourceQuery].
func (e *ChartEngine) YearRanks(ctx context.Context, progress chan<- ProgressUpdate, chart string, from, to int) ([]models.YearRank, error) {
	if e.charts == nil {
		return nil, fmt.Errorf("%w: chart source not initialized", shared.ErrServiceUnavailable)
	}
	if chart == "" {
		chart = DefaultYearChart
	}

	ranks := []models.YearRank{}
	if from > to {
		return ranks, nil
	}

	total := to - from + 1
	for year := from; year <= to; year++ {
		if err := ctx.Err(); err != nil {
			return ranks, err
		}

		entries, err := e.charts.Chart(ctx, chart, services.ForYear(year))
		if err != nil {
			return ranks, fmt.Errorf("%w: %s for %d: %w", shared.ErrSourceQuery, chart, year, err)
		}

		for _, entry := range entries {
			ranks = append(ranks, models.YearRank{
				Year:   year,
				Title:  entry.Title,
				Artist: entry.Artist,
				Rank:   entry.Rank,
			})
		}

		e.sendProgress(progress, fetchYearUpdate(year-from+1, total, len(ranks), year, len(entries)))
	}

	e.sendProgress(progress, doneUpdate(len(ranks), fmt.Sprintf("Fetched %d year-end rows", len(ranks))))
	return ranks, nil
}

// EnrichStatus is the outcome of enriching one row.
type EnrichStatus int

const (
	EnrichSucceeded EnrichStatus = iota
	EnrichSkipped
	EnrichFailed
)

func (s EnrichStatus) String() string {
	switch s {
	case EnrichSucceeded:
		return "succeeded"
	case EnrichSkipped:
		return "skipped"
	case EnrichFailed:
		return "failed"
	default:
		return ""
	}
}

// EnrichResult reports what happened to a single row.
type EnrichResult struct {
	Index   int          // Row index in the table
	Query   string       // Search query used for the row
	Status  EnrichStatus // Outcome
	TrackID string       // Matched track ID on success
	Err     error        // Cause on failure
}

// EnrichSummary counts results by status.
type EnrichSummary struct {
	Succeeded int
	Skipped   int
	Failed    int
}

// Summarize counts results by status.
func Summarize(results []EnrichResult) EnrichSummary {
	var s EnrichSummary
	for _, r := range results {
		switch r.Status {
		case EnrichSucceeded:
			s.Succeeded++
		case EnrichSkipped:
			s.Skipped++
		case EnrichFailed:
			s.Failed++
		}
	}
	return s
}

// Enrich looks up every row without a track ID and fills its metadata and audio features.
//
// Rows that already have an ID are skipped. A lookup failure is logged and recorded in the row's
// [EnrichResult]; the loop moves on and the row stays unfilled. The whole table is handed to sink
// after every processed row. Only sink failures and cancellation abort the loop. rows is not modified.
func (e *ChartEngine) Enrich(ctx context.Context, progress chan<- ProgressUpdate, rows []models.TrackRecord, sink TrackSink) ([]models.TrackRecord, []EnrichResult, error) {
	if e.tracks == nil {
		return nil, nil, fmt.Errorf("%w: track source not initialized", shared.ErrServiceUnavailable)
	}

	table := make([]models.TrackRecord, len(rows))
	copy(table, rows)
	results := make([]EnrichResult, 0, len(table))
	total := len(table)

	for i := range table {
		row := &table[i]
		result := EnrichResult{Index: i, Query: row.Query()}

		if row.Complete() {
			result.Status = EnrichSkipped
			result.TrackID = row.ID
			results = append(results, result)
			e.sendProgress(progress, enrichUpdate(i+1, total, result))
			continue
		}

		if err := ctx.Err(); err != nil {
			return table, results, err
		}

		match, features, err := e.lookup(ctx, result.Query)
		if err != nil {
			if ctx.Err() != nil {
				return table, results, ctx.Err()
			}
			result.Status = EnrichFailed
			result.Err = err
			e.logger.Warn("track lookup failed", "query", result.Query, "error", err)
		} else {
			row.Apply(match, features)
			result.Status = EnrichSucceeded
			result.TrackID = match.ID
		}
		results = append(results, result)

		if sink != nil {
			if err := sink.SaveTracks(context.WithoutCancel(ctx), table); err != nil {
				return table, results, fmt.Errorf("%w: %w", shared.ErrCheckpoint, err)
			}
		}
		e.sendProgress(progress, enrichUpdate(i+1, total, result))
	}

	s := Summarize(results)
	e.logger.Info("enrichment finished", "succeeded", s.Succeeded, "skipped", s.Skipped, "failed", s.Failed)
	e.sendProgress(progress, doneUpdate(total, fmt.Sprintf("Enriched %d rows (%d skipped, %d failed)", s.Succeeded, s.Skipped, s.Failed)))
	return table, results, nil
}

// lookup runs the search then the audio features call, each spaced by the engine's limiter.
func (e *ChartEngine) lookup(ctx context.Context, query string) (*models.TrackMatch, *models.AudioFeatures, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, nil, err
	}
	match, err := e.tracks.SearchTrack(ctx, query)
	if err != nil {
		return nil, nil, err
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, nil, err
	}
	features, err := e.tracks.AudioFeatures(ctx, match.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("audio features for %s: %w", match.ID, err)
	}
	return match, features, nil
}
