package updater

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/dustin/go-humanize"

	"sdkpick/internal/theme"
)

// Update prompt answers
const (
	ActionUpdate = "update"
	ActionSkip   = "skip"
	ActionLater  = "later"
)

var runFormFunc = func(form *huh.Form) error { return form.Run() }

// PromptForUpdate asks whether to install release now, skip it or be reminded later
func (u *Updater) PromptForUpdate(out io.Writer, release *selfupdate.Release) (string, error) {
	description := fmt.Sprintf(
		"Download size: %s\n\n%s",
		humanize.Bytes(uint64(max(release.AssetByteSize, 0))),
		truncateChangelog(release.ReleaseNotes, 400),
	)

	action := ActionLater
	err := runFormFunc(huh.NewForm(huh.NewGroup(huh.NewSelect[string]().
		Title(theme.LabelStyle.Render(fmt.Sprintf("Update available: %s → %s", u.currentVersion, release.Version()))).
		Description(theme.Faint.Render(description)).
		Options(
			huh.NewOption(theme.SuccessStyle.Render("Update now"), ActionUpdate),
			huh.NewOption(theme.InfoStyle.Render("Skip this version"), ActionSkip),
			huh.NewOption(theme.WarningStyle.Render("Remind me later"), ActionLater),
		).
		Value(&action),
	)).WithProgramOptions(tea.WithOutput(out)))
	if err != nil {
		return "", err
	}

	if action == ActionSkip {
		if err := u.SkipVersion(release.Version()); err != nil {
			u.logger.Warn("failed to save skip preference", "error", err)
		}
	}
	return action, nil
}

// ShowUpdateNotification prints a one-line hint about an available update
func ShowUpdateNotification(out io.Writer, currentVersion, latestVersion string) {
	fmt.Fprintf(out, "\n%s Update available: %s → %s %s\n\n",
		theme.InfoStyle.Render("ℹ"),
		theme.Faint.Render(currentVersion),
		theme.CurrentStyle.Render(latestVersion),
		theme.Faint.Render("(run 'sdkpick update')"))
}

// ShowUpdateSuccess prints the post-update summary
func ShowUpdateSuccess(out io.Writer, version string) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, theme.SuccessMessage("Update complete"))
	fmt.Fprintf(out, "%s %s\n", theme.LabelStyle.Render("Version:"), theme.CurrentStyle.Render(version))
	fmt.Fprintln(out, theme.Faint.Render("Run sdkpick again to use the new version."))
}

// ShowAlreadyUpToDate prints the up-to-date message
func ShowAlreadyUpToDate(out io.Writer, version string) {
	fmt.Fprintln(out, theme.SuccessMessage(fmt.Sprintf("You're already running the latest version (%s)", version)))
}

// truncateChangelog shortens release notes, preferring a line or word break
func truncateChangelog(changelog string, maxLen int) string {
	changelog = strings.TrimSpace(changelog)
	if changelog == "" {
		return "See release notes on GitHub for details."
	}
	if len(changelog) <= maxLen {
		return changelog
	}

	truncated := changelog[:maxLen]
	if idx := strings.LastIndex(truncated, "\n"); idx > maxLen/2 {
		truncated = truncated[:idx]
	} else if idx := strings.LastIndex(truncated, " "); idx > maxLen/2 {
		truncated = truncated[:idx]
	}

	return truncated + "..."
}
