package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/shared"
)

// RunRepository records crawl runs.
type RunRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Start inserts a running [models.CrawlRun] with a generated ID.
func (r *RunRepository) Start(ctx context.Context, kind, chart, target string) (*models.CrawlRun, error) {
	run := &models.CrawlRun{
		ID:        shared.GenerateID(),
		Kind:      kind,
		Chart:     chart,
		Target:    target,
		Status:    models.RunRunning,
		StartedAt: r.now(),
	}

	query := `
		INSERT INTO crawl_runs (id, kind, chart, target, status, row_count, error, started_at)
		VALUES (?, ?, ?, ?, ?, 0, '', ?)
	`

	if _, err := r.db.ExecContext(ctx, query, run.ID, run.Kind, run.Chart, run.Target, run.Status, run.StartedAt); err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	return run, nil
}

// Finish marks run as succeeded, or failed when runErr is non-nil, and stores its row count.
func (r *RunRepository) Finish(ctx context.Context, run *models.CrawlRun, rows int, runErr error) error {
	finished := r.now()
	run.Rows = rows
	run.FinishedAt = &finished
	run.Status = models.RunSucceeded
	run.Error = ""
	if runErr != nil {
		run.Status = models.RunFailed
		run.Error = runErr.Error()
	}

	query := `
		UPDATE crawl_runs
		SET status = ?, row_count = ?, error = ?, finished_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, run.Status, run.Rows, run.Error, finished, run.ID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, run.ID)
	}
	return nil
}

// Get retrieves a run by ID
func (r *RunRepository) Get(ctx context.Context, id string) (*models.CrawlRun, error) {
	query := `
		SELECT id, kind, chart, target, status, row_count, error, started_at, finished_at
		FROM crawl_runs
		WHERE id = ?
	`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	return run, err
}

// List returns the most recent runs first, at most limit when limit > 0.
func (r *RunRepository) List(ctx context.Context, limit int) ([]models.CrawlRun, error) {
	query := `
		SELECT id, kind, chart, target, status, row_count, error, started_at, finished_at
		FROM crawl_runs
		ORDER BY started_at DESC, rowid DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []models.CrawlRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

// scanner is satisfied by both [sql.Row] and [sql.Rows]
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*models.CrawlRun, error) {
	var (
		run      models.CrawlRun
		status   string
		finished sql.NullTime
	)

	err := s.Scan(&run.ID, &run.Kind, &run.Chart, &run.Target, &status, &run.Rows, &run.Error, &run.StartedAt, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.Status = models.RunStatus(status)
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return &run, nil
}
