package tui

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"sdkpick/internal/sdk"
	"sdkpick/internal/theme"
)

// ErrAborted is returned by a Prompter when the user dismissed the prompt
var ErrAborted = errors.New("prompt aborted")

// ActionKind identifies a menu entry
type ActionKind int

const (
	ActionSelectRow ActionKind = iota
	ActionDownload
	ActionBrowse
	ActionConfirm
	ActionCancel
)

// Action is what the user picked from the menu. Row is set for ActionSelectRow.
type Action struct {
	Kind ActionKind
	Row  int
}

// Menu is a snapshot of the controller for rendering the action menu
type Menu struct {
	Title          string
	Rows           []sdk.Choice
	Selected       int
	CanDownload    bool
	CanBrowse      bool
	ConfirmEnabled bool
}

// Prompter asks the user for decisions
type Prompter interface {
	ChooseAction(menu Menu) (Action, error)
	ChooseVersion(title string, versions []string) (string, error)
	ShowError(err error)
}

var runFormFunc = func(form *huh.Form) error { return form.Run() }

// HuhPrompter implements Prompter with charmbracelet/huh forms
type HuhPrompter struct {
	out io.Writer
}

// NewHuhPrompter renders forms to out; nil means stderr
func NewHuhPrompter(out io.Writer) *HuhPrompter {
	if out == nil {
		out = os.Stderr
	}
	return &HuhPrompter{out: out}
}

func keyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "cancel"))
	return km
}

func (p *HuhPrompter) runForm(form *huh.Form) error {
	form.WithKeyMap(keyMap())
	form.WithProgramOptions(tea.WithOutput(p.out))

	err := runFormFunc(form)
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}

// ChooseAction shows the candidate rows followed by the workflow actions.
// The selected row is marked and the cursor starts on Confirm when it is enabled.
func (p *HuhPrompter) ChooseAction(menu Menu) (Action, error) {
	options := make([]huh.Option[Action], 0, len(menu.Rows)+4)
	for i, row := range menu.Rows {
		options = append(options, huh.NewOption(rowLabel(row, i == menu.Selected), Action{Kind: ActionSelectRow, Row: i}))
	}
	if menu.ConfirmEnabled && menu.Selected >= 0 && menu.Selected < len(menu.Rows) {
		label := "Confirm " + menu.Rows[menu.Selected].String()
		options = append(options, huh.NewOption(theme.SuccessStyle.Render(label), Action{Kind: ActionConfirm}))
	}
	if menu.CanDownload {
		options = append(options, huh.NewOption("Download...", Action{Kind: ActionDownload}))
	}
	if menu.CanBrowse {
		options = append(options, huh.NewOption("Browse...", Action{Kind: ActionBrowse}))
	}
	options = append(options, huh.NewOption(theme.Faint.Render("Cancel"), Action{Kind: ActionCancel}))

	choice := Action{Kind: ActionCancel}
	switch {
	case menu.ConfirmEnabled:
		choice = Action{Kind: ActionConfirm}
	case len(menu.Rows) == 0 && menu.CanDownload:
		choice = Action{Kind: ActionDownload}
	}

	description := fmt.Sprintf("%d installation(s) found", len(menu.Rows))
	if len(menu.Rows) == 0 {
		description = "No installations found"
	}

	err := p.runForm(huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[Action]().
				Title(menu.Title).
				Description(description).
				Options(options...).
				Value(&choice),
		),
	))
	if err != nil {
		return Action{}, err
	}
	return choice, nil
}

// ChooseVersion asks which of the available versions to download
func (p *HuhPrompter) ChooseVersion(title string, versions []string) (string, error) {
	if len(versions) == 0 {
		return "", ErrAborted
	}

	options := make([]huh.Option[string], len(versions))
	for i, v := range versions {
		options[i] = huh.NewOption(v, v)
	}

	choice := versions[0]
	err := p.runForm(huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(options...).
				Height(min(len(versions)+2, 15)).
				Value(&choice),
		),
	))
	if err != nil {
		return "", err
	}
	return choice, nil
}

// ShowError prints err in the error style
func (p *HuhPrompter) ShowError(err error) {
	fmt.Fprintln(p.out, theme.ErrorMessage(err.Error()))
}

func rowLabel(row sdk.Choice, current bool) string {
	label := fmt.Sprintf("%-8s %-14s %s", row.Source, row.Version, theme.PathStyle.Render(row.Descriptor.Home))
	if current {
		return theme.CurrentStyle.Render("● ") + label
	}
	return "  " + label
}
