package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/chartx/internal/formatter"
	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/repositories"
	"github.com/desertthunder/chartx/internal/shared"
	"github.com/urfave/cli/v3"
)

// runRecorder finishes a run history entry.
type runRecorder func(rows int, err error)

// recordRun starts a run history entry. History is best-effort: when the database cannot be
// opened the returned recorder does nothing.
func (r *Runner) recordRun(ctx context.Context, kind, chart, target string) runRecorder {
	db, err := r.database()
	if err != nil {
		r.logger.Warn("run history unavailable", "error", err)
		return func(int, error) {}
	}

	repo := repositories.NewRunRepository(db)
	run, err := repo.Start(ctx, kind, chart, target)
	if err != nil {
		r.logger.Warn("failed to record run", "kind", kind, "error", err)
		return func(int, error) {}
	}
	logger := shared.WithLogger(r.logger, "run", run.ID)
	logger.Debug("run started", "kind", kind)

	return func(rows int, runErr error) {
		if err := repo.Finish(context.WithoutCancel(ctx), run, rows, runErr); err != nil {
			logger.Warn("failed to finish run", "error", err)
			return
		}
		logger.Debug("run finished", "status", run.Status, "rows", rows)
	}
}

// RunsList prints the most recent crawl, year and enrichment runs.
func (r *Runner) RunsList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	runs, err := repositories.NewRunRepository(db).List(ctx, cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if cmd.Bool("json") {
		if runs == nil {
			runs = []models.CrawlRun{}
		}
		return r.writeJSON(runs, cmd.Bool("pretty"))
	}

	if len(runs) == 0 {
		return r.writePlain("No runs recorded\n")
	}
	return r.writePlain("%s\n", formatter.RenderRunsTable(runs))
}
