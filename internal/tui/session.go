package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"sdkpick/internal/logging"
	"sdkpick/internal/workflow"
)

// Session drives a workflow.Controller from user prompts until it is done
type Session struct {
	controller  *workflow.Controller
	prompter    Prompter
	title       string
	language    string
	canDownload bool
	logger      *log.Logger
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithTitle sets the menu title
func WithTitle(title string) SessionOption {
	return func(s *Session) {
		if title != "" {
			s.title = title
		}
	}
}

// WithLanguage sets the name shown in prompts
func WithLanguage(language string) SessionOption {
	return func(s *Session) {
		if language != "" {
			s.language = language
		}
	}
}

// WithoutDownload hides the download action
func WithoutDownload() SessionOption {
	return func(s *Session) {
		s.canDownload = false
	}
}

// WithSessionLogger sets the diagnostic logger
func WithSessionLogger(logger *log.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession creates a session over an existing controller
func NewSession(controller *workflow.Controller, prompter Prompter, opts ...SessionOption) *Session {
	s := &Session{
		controller:  controller,
		prompter:    prompter,
		language:    "Java",
		canDownload: true,
		logger:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.title == "" {
		s.title = fmt.Sprintf("Select %s SDK", s.language)
	}
	return s
}

// Run prompts until the workflow finishes and returns its result.
// Aborting a prompt cancels the workflow; aborting the version picker goes back to the menu.
func (s *Session) Run(ctx context.Context) (workflow.Result, error) {
	c := s.controller

	for !c.Done() {
		if err := ctx.Err(); err != nil {
			return workflow.Result{}, err
		}

		switch c.State() {
		case workflow.StateReady:
			if err := s.ready(ctx); err != nil {
				return workflow.Result{}, err
			}
		case workflow.StateVersionChosen:
			if err := s.chooseVersion(ctx); err != nil {
				return workflow.Result{}, err
			}
		default:
			return workflow.Result{}, fmt.Errorf("%w: session cannot prompt in state %s", workflow.ErrInvalidState, c.State())
		}
	}

	result, _ := c.Result()
	return result, nil
}

func (s *Session) ready(ctx context.Context) error {
	c := s.controller
	table := c.Table()

	action, err := s.prompter.ChooseAction(Menu{
		Title:          s.title,
		Rows:           table.Rows(),
		Selected:       table.Selected(),
		CanDownload:    s.canDownload,
		CanBrowse:      c.CanBrowse(),
		ConfirmEnabled: c.ConfirmEnabled(),
	})
	if errors.Is(err, ErrAborted) {
		return c.Cancel()
	}
	if err != nil {
		return err
	}

	s.logger.Debug("menu action", "kind", action.Kind, "row", action.Row)

	switch action.Kind {
	case ActionSelectRow:
		s.report(c.SelectRow(action.Row))
	case ActionDownload:
		s.report(c.RequestDownload(ctx))
	case ActionBrowse:
		s.report(c.RequestBrowse(ctx))
	case ActionConfirm:
		s.report(c.Confirm())
	case ActionCancel:
		return c.Cancel()
	}
	return nil
}

func (s *Session) chooseVersion(ctx context.Context) error {
	c := s.controller

	version, err := s.prompter.ChooseVersion(fmt.Sprintf("Download %s version", s.language), c.PendingVersions())
	if errors.Is(err, ErrAborted) {
		return c.DeclineVersion()
	}
	if err != nil {
		return err
	}

	s.report(c.VersionPicked(ctx, version))
	return nil
}

// report shows recoverable event errors; the menu is shown again afterwards
func (s *Session) report(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, workflow.ErrCancelled) {
		s.logger.Info("operation cancelled")
		return
	}
	s.logger.Debug("event failed", "error", err)
	s.prompter.ShowError(err)
}
