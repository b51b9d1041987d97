package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/chartx/internal/tasks"
)

// recentLimit is the number of log lines kept on screen.
const recentLimit = 8

// Job is a long-running task driven by the monitor. It returns the number of rows in its final table.
type Job func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (int, error)

// Monitor represents the crawl monitor state.
type Monitor struct {
	ctx          context.Context
	cancel       context.CancelFunc
	title        string
	job          Job
	progressChan chan tasks.ProgressUpdate
	resultChan   chan jobResult
	progress     tasks.ProgressUpdate
	recent       []string
	showLog      bool
	rows         int
	err          error
	done         bool
	stopping     bool
	spinner      spinner.Model
	help         help.Model
	keys         keyMap
}

// NewMonitor creates a monitor that runs job under a context derived from ctx.
func NewMonitor(ctx context.Context, title string, job Job) *Monitor {
	ctx, cancel := context.WithCancel(ctx)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.title.UnsetMarginBottom()

	return &Monitor{
		ctx:     ctx,
		cancel:  cancel,
		title:   title,
		job:     job,
		showLog: true,
		spinner: s,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the job and the spinner.
func (m *Monitor) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.start())
}

// Update handles incoming messages and updates the model state.
func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			if m.done {
				return m, tea.Quit
			}
			m.stopping = true
			m.cancel()
			return m, nil
		case key.Matches(msg, m.keys.log):
			m.showLog = !m.showLog
			return m, nil
		}

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		switch msg.kind {
		case MsgProgressUpdate:
			update := msg.data.(tasks.ProgressUpdate)
			m.progress = update
			m.rows = max(m.rows, update.Rows)
			m.remember(update.Message)
			return m, m.waitForProgress()

		case MsgJobDone:
			result := msg.data.(jobResult)
			m.done = true
			m.rows = result.rows
			m.err = result.err
			m.cancel()
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the current progress.
func (m *Monitor) View() string {
	var b strings.Builder

	b.WriteString(styles.title.Render(m.title))
	b.WriteString("\n")

	switch {
	case m.done && m.err != nil:
		b.WriteString(styles.err.Render(fmt.Sprintf("✗ stopped after %d rows: %v", m.rows, m.err)))
	case m.done:
		b.WriteString(styles.ok.Render(fmt.Sprintf("✓ done: %d rows", m.rows)))
	case m.stopping:
		b.WriteString(styles.warn.Render(fmt.Sprintf("%s stopping after the current chart date...", m.spinner.View())))
	default:
		line := fmt.Sprintf("%s %s", m.spinner.View(), m.progress.Phase)
		if m.progress.Total > 0 {
			line += fmt.Sprintf(" %d/%d (%.0f%%)", m.progress.Step, m.progress.Total, m.percent()*100)
		}
		line += fmt.Sprintf(" • %d rows", m.rows)
		b.WriteString(line)
	}
	b.WriteString("\n")

	if m.showLog && len(m.recent) > 0 {
		b.WriteString("\n")
		for _, r := range m.recent {
			b.WriteString(styles.help.Render(r))
			b.WriteString("\n")
		}
	}

	if !m.done {
		b.WriteString("\n")
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

// Result returns the final row count and error once the program has exited.
func (m *Monitor) Result() (int, error) {
	return m.rows, m.err
}

func (m *Monitor) percent() float64 {
	if m.progress.Total == 0 {
		return 0
	}
	return float64(m.progress.Step) / float64(m.progress.Total)
}

func (m *Monitor) remember(line string) {
	if line == "" {
		return
	}
	m.recent = append(m.recent, line)
	if len(m.recent) > recentLimit {
		m.recent = m.recent[len(m.recent)-recentLimit:]
	}
}

func (m *Monitor) start() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.resultChan = make(chan jobResult, 1)

	go func() {
		rows, err := m.job(m.ctx, m.progressChan)
		m.resultChan <- jobResult{rows: rows, err: err}
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Monitor) waitForProgress() tea.Cmd {
	progress, results := m.progressChan, m.resultChan
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			r := <-results
			return jobDoneMsg(r.rows, r.err)
		}
		return progressUpdateMsg(update)
	}
}
