// Package browse lets the user point at an SDK home directory by hand.
package browse

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"

	"sdkpick/internal/logging"
	"sdkpick/internal/sdk"
)

// Describer validates a directory as an SDK home
type Describer interface {
	Describe(home string) (sdk.Descriptor, error)
}

// PromptFunc asks for a path. It returns huh.ErrUserAborted when dismissed.
type PromptFunc func(title string, value *string, validate func(string) error) error

// Resolver asks for an SDK home and describes it
type Resolver struct {
	describer Describer
	prompt    PromptFunc
	logger    *log.Logger
}

// New creates a Resolver that prompts on out
func New(describer Describer, out io.Writer, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = logging.Discard()
	}
	if out == nil {
		out = os.Stderr
	}
	return &Resolver{
		describer: describer,
		prompt:    huhPrompt(out),
		logger:    logger,
	}
}

// WithPrompt replaces the interactive prompt
func (r *Resolver) WithPrompt(prompt PromptFunc) *Resolver {
	r.prompt = prompt
	return r
}

func huhPrompt(out io.Writer) PromptFunc {
	return func(title string, value *string, validate func(string) error) error {
		return huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title(title).
				Description("Directory containing bin/java, or a macOS .jdk bundle").
				Placeholder("/usr/lib/jvm/java-21-openjdk").
				Value(value).
				Validate(validate),
		)).WithProgramOptions(tea.WithOutput(out)).Run()
	}
}

// ChooseManually prompts until a valid SDK home is entered. Empty input or an
// aborted prompt reports false.
func (r *Resolver) ChooseManually(ctx context.Context) (sdk.Descriptor, bool) {
	if ctx.Err() != nil {
		return sdk.Descriptor{}, false
	}

	var desc sdk.Descriptor
	validate := func(input string) error {
		input = strings.TrimSpace(input)
		if input == "" {
			return nil
		}
		d, err := r.describer.Describe(expand(input))
		if err != nil {
			return err
		}
		desc = d
		return nil
	}

	var input string
	err := r.prompt("SDK home directory", &input, validate)
	if errors.Is(err, huh.ErrUserAborted) {
		return sdk.Descriptor{}, false
	}
	if err != nil {
		r.logger.Warn("browse prompt failed", "error", err)
		return sdk.Descriptor{}, false
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return sdk.Descriptor{}, false
	}
	// desc may belong to an earlier keystroke; describe the submitted value
	if err := validate(input); err != nil {
		r.logger.Warn("not an SDK home", "path", input, "error", err)
		return sdk.Descriptor{}, false
	}

	r.logger.Debug("browsed SDK", "home", desc.Home, "version", desc.Version)
	return desc, true
}

func expand(path string) string {
	if expanded, err := homedir.Expand(path); err == nil {
		return expanded
	}
	return path
}
