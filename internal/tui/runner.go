// Package tui renders the interactive SDK picker: progress spinners, menus and the session loop.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"sdkpick/internal/logging"
	"sdkpick/internal/theme"
	"sdkpick/internal/workflow"
)

type progressMsg string

type taskFinishedMsg struct {
	err error
}

type runnerModel struct {
	spinner   spinner.Model
	title     string
	progress  string
	quitting  bool
	cancelled bool
}

func newRunnerModel(title string) runnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.SpinnerStyle

	return runnerModel{
		spinner: s,
		title:   title,
	}
}

func (m runnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m runnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case progressMsg:
		m.progress = string(msg)
		return m, nil

	case taskFinishedMsg:
		m.quitting = true
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m runnerModel) View() string {
	if m.quitting {
		return ""
	}
	if m.progress == "" {
		return fmt.Sprintf("\n %s %s\n\n", m.spinner.View(), m.title)
	}
	return fmt.Sprintf("\n %s %s\n   %s\n\n", m.spinner.View(), m.title, theme.Faint.Render(m.progress))
}

// SpinnerRunner shows a spinner with the latest progress line while a task runs.
// Ctrl+C or Esc cancels the task.
type SpinnerRunner struct {
	out     io.Writer
	options []tea.ProgramOption
}

// NewSpinnerRunner renders to out (usually stderr, so stdout stays clean for results)
func NewSpinnerRunner(out io.Writer, opts ...tea.ProgramOption) *SpinnerRunner {
	return &SpinnerRunner{out: out, options: opts}
}

// Run executes task in the background and blocks until it finishes or is cancelled
func (r *SpinnerRunner) Run(ctx context.Context, title string, task func(ctx context.Context, progress func(string)) error) error {
	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := append([]tea.ProgramOption{tea.WithOutput(r.out), tea.WithContext(ctx)}, r.options...)
	p := tea.NewProgram(newRunnerModel(title), opts...)

	done := make(chan error, 1)
	go func() {
		err := task(taskCtx, func(line string) { p.Send(progressMsg(line)) })
		done <- err
		p.Send(taskFinishedMsg{err: err})
	}()

	final, runErr := p.Run()
	if m, ok := final.(runnerModel); ok && m.cancelled {
		cancel()
		<-done
		return workflow.ErrCancelled
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		cancel()
		<-done
		return fmt.Errorf("progress display failed: %w", runErr)
	}

	err := <-done
	if errors.Is(err, context.Canceled) {
		return workflow.ErrCancelled
	}
	return err
}

// PlainRunner writes progress to the logger, for non-interactive use
type PlainRunner struct {
	logger *log.Logger
}

// NewPlainRunner creates a PlainRunner
func NewPlainRunner(logger *log.Logger) *PlainRunner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &PlainRunner{logger: logger}
}

// Run executes task inline
func (r *PlainRunner) Run(ctx context.Context, title string, task func(ctx context.Context, progress func(string)) error) error {
	r.logger.Info(title)
	err := task(ctx, func(line string) {
		r.logger.Info(line)
	})
	if errors.Is(err, context.Canceled) {
		return workflow.ErrCancelled
	}
	return err
}

// IsInteractive reports whether stdin and stderr are both terminals.
// Stdout is left out so results can be piped.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

// NewRunner picks a spinner rendered on out for terminals and plain log output otherwise
func NewRunner(interactive bool, out io.Writer, logger *log.Logger) workflow.Runner {
	if interactive {
		return NewSpinnerRunner(out)
	}
	return NewPlainRunner(logger)
}
