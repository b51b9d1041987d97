package main

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/chartx/internal/shared"
	"github.com/desertthunder/chartx/internal/tasks"
	"github.com/desertthunder/chartx/internal/ui"
)

const tuiLogPath = "./tmp/chartx-tui.log"

// runJob runs job either under the interactive monitor or in the foreground with progress logged.
func (r *Runner) runJob(ctx context.Context, interactive bool, title string, job ui.Job) (int, error) {
	if interactive {
		return r.monitor(ctx, title, job)
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			if update.Message == "" {
				continue
			}
			r.logger.Info(update.Message, "phase", update.Phase, "rows", update.Rows)
		}
	}()

	rows, err := job(ctx, progress)
	close(progress)
	wg.Wait()
	return rows, err
}

// monitor launches the terminal monitor for job.
func (r *Runner) monitor(ctx context.Context, title string, job ui.Job) (int, error) {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(tuiLogPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	model := ui.NewMonitor(ctx, title, job)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return 0, fmt.Errorf("error running TUI: %w", err)
	}

	return model.Result()
}
