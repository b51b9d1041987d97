package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chartx/internal/formatter"
	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/repositories"
	"github.com/desertthunder/chartx/internal/services"
	"github.com/desertthunder/chartx/internal/shared"
	"github.com/desertthunder/chartx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	charts     services.ChartSource
	tracks     services.TrackSource
	db         *sql.DB
	logger     *log.Logger
	output     io.Writer
	engine     *tasks.ChartEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Charts     services.ChartSource
	Tracks     services.TrackSource
	DB         *sql.DB // opened lazily from Config.Database when nil
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		charts:     opts.Charts,
		tracks:     opts.Tracks,
		db:         opts.DB,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	r.engine = r.newEngine()
	return r
}

func (r *Runner) newEngine() *tasks.ChartEngine {
	return tasks.NewChartEngine(r.charts, r.tracks, tasks.EngineOpts{
		Interval: r.config.Enrich.Interval(),
		Logger:   r.logger,
	})
}

// SetLogger replaces the runner's logger, including the one used by the engine.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	r.engine = r.newEngine()
}

// Close releases the database handle, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, chartCommand, tracksCommand, runsCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// database returns the run-history database, opening and migrating it on first use.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, err
	}
	r.db = db
	return db, nil
}

// checkpoint is a table store that can both persist and reload crawl and enrichment tables.
type checkpoint interface {
	tasks.ObservationSink
	tasks.TrackSink
	Name() string
	LoadObservations(ctx context.Context) ([]models.ChartObservation, error)
	LoadTracks(ctx context.Context) ([]models.TrackRecord, error)
}

// checkpointPath resolves a bare checkpoint name against the configured checkpoint directory.
func (r *Runner) checkpointPath(name string) string {
	if filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) || r.config.Checkpoint.Dir == "" {
		return name
	}
	return filepath.Join(r.config.Checkpoint.Dir, name)
}

// openCheckpoint returns the configured checkpoint backend for name.
func (r *Runner) openCheckpoint(name string) (checkpoint, error) {
	switch backend := strings.ToLower(r.config.Checkpoint.Backend); backend {
	case "", "csv":
		return formatter.NewFileCheckpoint(r.checkpointPath(name)), nil
	case "sqlite":
		db, err := r.database()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrCheckpoint, err)
		}
		return repositories.NewSnapshotStore(db, name), nil
	default:
		return nil, fmt.Errorf("%w: unknown checkpoint backend %q", shared.ErrInvalidConfig, backend)
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
