// Package workflow drives the SDK acquisition flow: list candidates, optionally
// download or browse for one, and settle on a single selection.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"sdkpick/internal/logging"
	"sdkpick/internal/sdk"
	"sdkpick/internal/selection"
)

// CandidateProvider supplies the currently known SDKs. Failures surface as an empty list.
type CandidateProvider interface {
	List(ctx context.Context) []sdk.Choice
}

// VersionCatalog lists versions available for download
type VersionCatalog interface {
	FetchVersions(ctx context.Context) ([]string, error)
}

// Installer downloads and installs one version, streaming progress lines
type Installer interface {
	Download(ctx context.Context, version string, onProgress func(string)) error
}

// BrowseResolver lets the user point at an SDK manually
type BrowseResolver interface {
	ChooseManually(ctx context.Context) (sdk.Descriptor, bool)
}

// Runner executes blocking work while rendering progress. It returns the task's
// error, or ErrCancelled when the user aborted it.
type Runner interface {
	Run(ctx context.Context, title string, task func(ctx context.Context, progress func(string)) error) error
}

// Deps are the collaborators of a Controller
type Deps struct {
	Provider  CandidateProvider
	Catalog   VersionCatalog
	Installer Installer
	Browser   BrowseResolver // nil disables browsing
	Runner    Runner
}

// Result is the outcome of one workflow
type Result struct {
	Descriptor sdk.Descriptor
	Selected   bool // false when the user cancelled
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the diagnostic logger
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLanguage sets the name used in progress titles ("Java" by default)
func WithLanguage(name string) Option {
	return func(c *Controller) {
		if name != "" {
			c.language = name
		}
	}
}

// WithConfirmObserver registers fn to receive every confirm-enablement change
func WithConfirmObserver(fn func(enabled bool)) Option {
	return func(c *Controller) {
		c.confirmObserver = fn
	}
}

// Controller owns the workflow state, the selection table and the final result.
// It is not safe for concurrent use; events must come from one goroutine.
type Controller struct {
	deps     Deps
	table    *selection.Table
	state    State
	pending  []string
	result   Result
	language string
	logger   *log.Logger

	confirmEnabled  bool
	confirmObserver func(bool)
}

// New lists the initial candidates and returns a controller in StateReady
func New(ctx context.Context, deps Deps, opts ...Option) *Controller {
	c := &Controller{
		deps:     deps,
		table:    selection.NewTable(),
		state:    StateListing,
		language: "Java",
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.deps.Runner == nil {
		c.deps.Runner = directRunner{}
	}

	c.table.OnChange(c.selectionChanged)
	c.reload(ctx)
	c.state = StateReady
	return c
}

// State returns the current workflow state
func (c *Controller) State() State {
	return c.state
}

// Table exposes the selection table for rendering
func (c *Controller) Table() *selection.Table {
	return c.table
}

// PendingVersions returns the versions offered while in StateVersionChosen
func (c *Controller) PendingVersions() []string {
	return append([]string(nil), c.pending...)
}

// ConfirmEnabled reports whether Confirm would be accepted
func (c *Controller) ConfirmEnabled() bool {
	return c.confirmEnabled
}

// CanBrowse reports whether manual browsing is available
func (c *Controller) CanBrowse() bool {
	return c.deps.Browser != nil
}

// Done reports whether the workflow has terminated
func (c *Controller) Done() bool {
	return c.state == StateDone
}

// Result returns the outcome once the workflow is done
func (c *Controller) Result() (Result, bool) {
	return c.result, c.state == StateDone
}

// SelectRow moves the table cursor
func (c *Controller) SelectRow(index int) error {
	if c.state != StateReady {
		return invalidState("select", c.state)
	}
	return c.table.Select(index)
}

// RequestDownload fetches the catalog. With one version it downloads it right away,
// with several it moves to StateVersionChosen and waits for VersionPicked or DeclineVersion.
func (c *Controller) RequestDownload(ctx context.Context) error {
	if c.state != StateReady {
		return invalidState("download", c.state)
	}
	if c.deps.Catalog == nil || c.deps.Installer == nil {
		return fmt.Errorf("%w: downloads are not configured", ErrInvalidState)
	}

	c.state = StateFetchingVersions

	var versions []string
	err := c.deps.Runner.Run(ctx, fmt.Sprintf("Fetching available %s versions", c.language),
		func(ctx context.Context, _ func(string)) error {
			var err error
			versions, err = c.deps.Catalog.FetchVersions(ctx)
			return err
		})
	if err != nil {
		c.state = StateReady
		c.logger.Warn("version fetch failed", "error", err)
		return &FetchError{Err: err}
	}

	c.logger.Debug("fetched versions", "count", len(versions))

	switch len(versions) {
	case 0:
		c.state = StateReady
		return ErrEmptyCatalog
	case 1:
		return c.download(ctx, versions[0])
	default:
		c.pending = versions
		c.state = StateVersionChosen
		return nil
	}
}

// VersionPicked downloads the chosen version
func (c *Controller) VersionPicked(ctx context.Context, version string) error {
	if c.state != StateVersionChosen {
		return invalidState("pick version", c.state)
	}
	if !contains(c.pending, version) {
		return fmt.Errorf("version %q was not offered", version)
	}
	return c.download(ctx, version)
}

// DeclineVersion returns to StateReady without downloading
func (c *Controller) DeclineVersion() error {
	if c.state != StateVersionChosen {
		return invalidState("decline version", c.state)
	}
	c.pending = nil
	c.state = StateReady
	return nil
}

func (c *Controller) download(ctx context.Context, version string) error {
	c.pending = nil
	c.state = StateDownloading
	c.logger.Info("downloading", "version", version)

	err := c.deps.Runner.Run(ctx, fmt.Sprintf("Downloading %s %s", c.language, version),
		func(ctx context.Context, progress func(string)) error {
			return c.deps.Installer.Download(ctx, version, progress)
		})
	if err != nil {
		c.state = StateReady
		c.logger.Warn("download failed", "version", version, "error", err)
		return &DownloadError{Version: version, Err: err}
	}

	c.reload(ctx)
	c.state = StateReady

	row, ok := c.table.FindRow(sdk.SourceIvy, version)
	if !ok {
		// Leave the reloaded table unselected rather than confirming an unrelated row
		c.table.ClearSelection()
		c.logger.Warn(ErrSelectionInconsistency.Error(), "version", version)
		return nil
	}

	if err := c.table.Select(row); err != nil {
		// FindRow only returns in-range rows
		panic(err)
	}
	return c.Confirm()
}

// RequestBrowse asks the BrowseResolver for an SDK. A descriptor finishes the workflow.
func (c *Controller) RequestBrowse(ctx context.Context) error {
	if c.state != StateReady {
		return invalidState("browse", c.state)
	}
	if c.deps.Browser == nil {
		return fmt.Errorf("%w: browsing is disabled", ErrInvalidState)
	}

	c.state = StateBrowsing
	desc, ok := c.deps.Browser.ChooseManually(ctx)
	if !ok {
		c.state = StateReady
		return nil
	}

	c.finish(Result{Descriptor: desc, Selected: true})
	return nil
}

// Confirm finishes the workflow with the selected row
func (c *Controller) Confirm() error {
	if c.state != StateReady {
		return invalidState("confirm", c.state)
	}
	current, ok := c.table.Current()
	if !ok {
		return ErrNoSelection
	}

	c.finish(Result{Descriptor: current.Descriptor, Selected: true})
	return nil
}

// Cancel finishes the workflow without a selection
func (c *Controller) Cancel() error {
	if c.state != StateReady {
		return invalidState("cancel", c.state)
	}
	c.finish(Result{})
	return nil
}

func (c *Controller) finish(result Result) {
	c.result = result
	c.state = StateDone
	c.logger.Debug("workflow finished", "selected", result.Selected, "home", result.Descriptor.Home)
}

func (c *Controller) reload(ctx context.Context) {
	c.table.Load(c.deps.Provider.List(ctx))
}

func (c *Controller) selectionChanged() {
	enabled := c.table.HasSelection()
	if enabled == c.confirmEnabled {
		return
	}
	c.confirmEnabled = enabled
	if c.confirmObserver != nil {
		c.confirmObserver(enabled)
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// directRunner runs the task inline with no progress rendering
type directRunner struct{}

func (directRunner) Run(ctx context.Context, _ string, task func(context.Context, func(string)) error) error {
	err := task(ctx, func(string) {})
	if errors.Is(err, context.Canceled) {
		return ErrCancelled
	}
	return err
}
