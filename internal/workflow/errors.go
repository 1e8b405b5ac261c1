package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCatalog means the catalog answered but offered nothing to download
	ErrEmptyCatalog = errors.New("no versions available for download")

	// ErrSelectionInconsistency means a finished download did not show up in the reloaded list.
	// It is logged, never returned to the caller.
	ErrSelectionInconsistency = errors.New("downloaded SDK not found after reload")

	// ErrCancelled is what a Runner returns when the user aborts a running task
	ErrCancelled = errors.New("operation cancelled")

	// ErrNoSelection is returned by Confirm when no row is selected
	ErrNoSelection = errors.New("no SDK selected")

	// ErrInvalidState is returned for events the current state does not accept
	ErrInvalidState = errors.New("event not allowed in current state")
)

// FetchError wraps a failure to list downloadable versions
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch available versions: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DownloadError wraps a failed download or installation
type DownloadError struct {
	Version string
	Err     error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("failed to download %s: %v", e.Version, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

func invalidState(event string, state State) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidState, event, state)
}
