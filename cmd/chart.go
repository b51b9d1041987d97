package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/chartx/internal/formatter"
	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/shared"
	"github.com/desertthunder/chartx/internal/tasks"
	"github.com/desertthunder/chartx/internal/ui"
	"github.com/urfave/cli/v3"
)

// ChartCrawl walks a weekly chart across a date range, checkpointing after every row.
//
// With --resume the existing checkpoint is loaded and the crawl continues one step after its latest date.
func (r *Runner) ChartCrawl(ctx context.Context, cmd *cli.Command) error {
	if r.charts == nil {
		return fmt.Errorf("%w: chart source not initialized", shared.ErrServiceUnavailable)
	}

	chart := cmd.String("chart")
	end := cmd.String("end")
	if end == "" {
		end = shared.FormatDate(time.Now())
	}

	start, stop, err := shared.ParseDateRange(cmd.String("start"), end)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidDateFormat) {
			r.logger.Error("could not parse date range", "start", cmd.String("start"), "end", end, "error", err)
			return r.writePlain("0 chart dates to crawl\n")
		}
		return err
	}

	name := cmd.String("checkpoint")
	if name == "" {
		name = chart + ".csv"
	}

	lock, err := shared.LockCheckpoint(r.checkpointPath(name))
	if err != nil {
		return err
	}
	defer lock.Unlock()

	cp, err := r.openCheckpoint(name)
	if err != nil {
		return err
	}

	opts := tasks.CrawlOpts{Chart: chart, Start: start, End: stop, StepDays: cmd.Int("step")}
	if cmd.Bool("resume") {
		if opts.Existing, err = cp.LoadObservations(ctx); err != nil {
			return err
		}
		if len(opts.Existing) > 0 {
			r.logger.Info("resuming crawl",
				"checkpoint", cp.Name(),
				"rows", len(opts.Existing),
				"latest", shared.FormatDate(tasks.LatestDate(opts.Existing)))
		}
	}

	finish := r.recordRun(ctx, "crawl", chart, cp.Name())
	rows, err := r.runJob(ctx, cmd.Bool("tui"), "Crawling "+chart, func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (int, error) {
		rows, err := r.engine.Crawl(ctx, progress, opts, cp)
		return len(rows), err
	})
	finish(rows, err)
	if err != nil {
		return fmt.Errorf("crawl stopped after %d rows: %w", rows, err)
	}

	return r.writePlain("✓ %d rows checkpointed to %s\n", rows, cp.Name())
}

// ChartYears fetches year-end chart rows for an inclusive range of years.
func (r *Runner) ChartYears(ctx context.Context, cmd *cli.Command) error {
	if r.charts == nil {
		return fmt.Errorf("%w: chart source not initialized", shared.ErrServiceUnavailable)
	}

	chart := cmd.String("chart")
	from, to := cmd.Int("from"), cmd.Int("to")
	if to == 0 {
		to = from
	}

	var ranks []models.YearRank
	finish := r.recordRun(ctx, "years", chart, fmt.Sprintf("%d-%d", from, to))
	_, err := r.runJob(ctx, false, "Year-end "+chart, func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (int, error) {
		var err error
		ranks, err = r.engine.YearRanks(ctx, progress, chart, from, to)
		return len(ranks), err
	})
	finish(len(ranks), err)
	if err != nil {
		return err
	}

	if output := cmd.String("output"); output != "" {
		data, err := formatter.ExportYearRanksCSV(ranks)
		if err != nil {
			return err
		}
		if err := formatter.WriteFileAtomic(output, data); err != nil {
			return err
		}
		return r.writePlain("✓ %d year-end rows written to %s\n", len(ranks), output)
	}

	if cmd.Bool("json") {
		return r.writeJSON(ranks, cmd.Bool("pretty"))
	}
	return r.writePlain("%s\n", formatter.RenderYearRanksTable(ranks, cmd.Int("limit")))
}

// ChartPeaks reduces a crawl checkpoint to one peak summary per song.
func (r *Runner) ChartPeaks(ctx context.Context, cmd *cli.Command) error {
	input := cmd.String("input")
	if input == "" {
		return fmt.Errorf("%w: --input is required", shared.ErrMissingArgument)
	}

	cp, err := r.openCheckpoint(input)
	if err != nil {
		return err
	}

	obs, err := cp.LoadObservations(ctx)
	if err != nil {
		return err
	}
	if obs == nil {
		return fmt.Errorf("%w: no observations in %s", shared.ErrCheckpoint, cp.Name())
	}

	summaries := tasks.Aggregate(obs, tasks.AggregateOpts{ByArtist: cmd.Bool("by-artist"), FoldCase: cmd.Bool("fold-case")})
	r.logger.Debug("aggregated observations", "observations", len(obs), "songs", len(summaries))

	if output := cmd.String("output"); output != "" {
		data, err := formatter.ExportSummariesCSV(summaries)
		if err != nil {
			return err
		}
		if err := formatter.WriteFileAtomic(output, data); err != nil {
			return err
		}
		return r.writePlain("✓ %d songs written to %s\n", len(summaries), output)
	}

	switch {
	case cmd.Bool("json"):
		return r.writeJSON(summaries, cmd.Bool("pretty"))
	case cmd.Bool("plot"):
		return r.writePlain("%s\n", ui.PlotPeaks(summaries, cmd.Int("width"), cmd.Int("limit")))
	default:
		return r.writePlain("%s\n", formatter.RenderPeaksTable(summaries, cmd.Int("limit")))
	}
}

// readSummaries loads a peak summary CSV written by "chart peaks --output".
func readSummaries(path string) ([]models.PeakSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open summaries: %w", err)
	}
	defer f.Close()

	return formatter.ParseSummariesCSV(f)
}
