package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/shared"
	"github.com/desertthunder/chartx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// TracksEnrich fills Spotify metadata and audio features into a track checkpoint.
//
// An existing checkpoint is continued; otherwise the table is seeded from the peak summaries in --input.
func (r *Runner) TracksEnrich(ctx context.Context, cmd *cli.Command) error {
	if r.tracks == nil {
		return fmt.Errorf("%w: set %s and %s or [credentials.spotify] in config.toml",
			shared.ErrMissingCredentials, shared.EnvSpotifyClientID, shared.EnvSpotifyClientSecret)
	}

	name := cmd.String("checkpoint")
	lock, err := shared.LockCheckpoint(r.checkpointPath(name))
	if err != nil {
		return err
	}
	defer lock.Unlock()

	cp, err := r.openCheckpoint(name)
	if err != nil {
		return err
	}

	rows, err := cp.LoadTracks(ctx)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		input := cmd.String("input")
		if input == "" {
			return fmt.Errorf("%w: --input is required when %s does not exist", shared.ErrMissingArgument, cp.Name())
		}
		summaries, err := readSummaries(input)
		if err != nil {
			return err
		}
		rows = models.TrackRecordsFromSummaries(summaries)
		r.logger.Info("seeded track table", "input", input, "rows", len(rows))
	} else {
		r.logger.Info("continuing enrichment", "checkpoint", cp.Name(), "rows", len(rows))
	}

	var results []tasks.EnrichResult
	finish := r.recordRun(ctx, "enrich", "", cp.Name())
	n, err := r.runJob(ctx, cmd.Bool("tui"), "Enriching tracks", func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (int, error) {
		var table []models.TrackRecord
		var err error
		table, results, err = r.engine.Enrich(ctx, progress, rows, cp)
		return len(table), err
	})
	finish(n, err)

	summary := tasks.Summarize(results)
	if werr := r.writePlain("✓ %d enriched, %d skipped, %d failed\n", summary.Succeeded, summary.Skipped, summary.Failed); werr != nil {
		return errors.Join(err, werr)
	}
	if err != nil {
		return fmt.Errorf("enrichment stopped: %w", err)
	}

	if cmd.Bool("verbose") {
		for _, res := range results {
			if res.Status != tasks.EnrichFailed {
				continue
			}
			if err := r.writePlain("  ✗ %s: %v\n", res.Query, res.Err); err != nil {
				return err
			}
		}
	}
	return nil
}
