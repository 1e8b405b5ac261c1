package tui

import (
	"context"
	"fmt"

	"sdkpick/internal/sdk"
	"sdkpick/internal/workflow"
)

// ScanningProvider lists candidates behind a progress display, since scanning
// the standard locations and probing `java -version` can take a moment.
type ScanningProvider struct {
	provider workflow.CandidateProvider
	runner   workflow.Runner
	title    string
}

// NewScanningProvider wraps provider so every List call runs through runner
func NewScanningProvider(provider workflow.CandidateProvider, runner workflow.Runner, language string) *ScanningProvider {
	return &ScanningProvider{
		provider: provider,
		runner:   runner,
		title:    fmt.Sprintf("Scanning for %s installations...", language),
	}
}

// List returns the wrapped provider's candidates. A cancelled scan yields an empty list.
func (s *ScanningProvider) List(ctx context.Context) []sdk.Choice {
	var choices []sdk.Choice
	err := s.runner.Run(ctx, s.title, func(ctx context.Context, progress func(string)) error {
		choices = s.provider.List(ctx)
		progress(fmt.Sprintf("Found %d installation(s)", len(choices)))
		return ctx.Err()
	})
	if err != nil {
		return nil
	}
	return choices
}
