package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"sdkpick/internal/browse"
	"sdkpick/internal/catalog"
	"sdkpick/internal/env"
	"sdkpick/internal/installer"
	"sdkpick/internal/sdk"
	"sdkpick/internal/theme"
	"sdkpick/internal/tui"
	"sdkpick/internal/updater"
	"sdkpick/internal/workflow"
)

const language = "Java"

func (a *app) runner() workflow.Runner {
	return tui.NewRunner(a.interactive(), a.stderr, a.logger)
}

func newSelectCmd(a *app) *cobra.Command {
	var (
		noBrowse   bool
		noDownload bool
		shell      string
		apply      bool
		title      string
	)

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Choose an SDK interactively and print its home directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.interactive() {
				return errors.New("select needs an interactive terminal; use 'sdkpick list' or 'sdkpick install' in scripts")
			}
			ctx := cmd.Context()

			runner := a.runner()
			detector := sdk.NewDetector(a.cfg, a.logger)
			adoptium := catalog.NewAdoptium(a.cfg.Catalog, a.logger)

			deps := workflow.Deps{
				Provider:  tui.NewScanningProvider(detector, runner, language),
				Catalog:   adoptium,
				Installer: installer.New(a.cfg, adoptium, a.logger),
				Runner:    runner,
			}
			if !noBrowse {
				deps.Browser = browse.New(detector, a.stderr, a.logger)
			}

			controller := workflow.New(ctx, deps,
				workflow.WithLogger(a.logger),
				workflow.WithLanguage(language),
				workflow.WithConfirmObserver(func(enabled bool) {
					a.logger.Debug("confirm availability changed", "enabled", enabled)
				}),
			)

			opts := []tui.SessionOption{
				tui.WithTitle(title),
				tui.WithLanguage(language),
				tui.WithSessionLogger(a.logger),
			}
			if noDownload {
				opts = append(opts, tui.WithoutDownload())
			}

			result, err := tui.NewSession(controller, tui.NewHuhPrompter(a.stderr), opts...).Run(ctx)
			if err != nil {
				return err
			}
			if !result.Selected {
				return errNothingSelected
			}
			return a.emit(result.Descriptor, shell, apply)
		},
	}

	cmd.Flags().BoolVar(&noBrowse, "no-browse", false, "hide the option to enter an SDK path by hand")
	cmd.Flags().BoolVar(&noDownload, "no-download", false, "hide the option to download a new SDK")
	cmd.Flags().StringVar(&shell, "shell", "", "print commands that set JAVA_HOME for sh, fish, powershell or cmd")
	cmd.Flags().BoolVar(&apply, "apply", false, "persist JAVA_HOME for the user (Windows only)")
	cmd.Flags().StringVar(&title, "title", "", "title shown above the SDK list")
	return cmd
}

// emit writes the selected home (or shell commands) to stdout and optionally persists it
func (a *app) emit(desc sdk.Descriptor, shell string, apply bool) error {
	if shell != "" {
		out, err := env.ShellExport(desc.Home, shell)
		if err != nil {
			return err
		}
		fmt.Fprint(a.stdout, out)
	} else {
		fmt.Fprintln(a.stdout, desc.Home)
	}

	if apply {
		err := env.SetJavaHome(desc.Home)
		if errors.Is(err, env.ErrUnsupported) {
			fmt.Fprintln(a.stderr, theme.WarningMessage("JAVA_HOME cannot be persisted on this platform. Add this to your shell profile:"))
			export, _ := env.ShellExport(desc.Home, shell)
			fmt.Fprint(a.stderr, theme.Code.Render(export))
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to set JAVA_HOME: %w", err)
		}
		fmt.Fprintln(a.stderr, theme.SuccessMessage("JAVA_HOME set to "+desc.Home))
		fmt.Fprintln(a.stderr, theme.Faint.Render("Open a new terminal to pick up the change."))
	}
	return nil
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List SDKs found on this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			detector := sdk.NewDetector(a.cfg, a.logger)
			choices := tui.NewScanningProvider(detector, a.runner(), language).List(cmd.Context())

			if len(choices) == 0 {
				fmt.Fprintln(a.stderr, theme.WarningMessage("No Java installations found."))
				fmt.Fprintln(a.stderr, theme.InfoMessage("Run 'sdkpick available' and 'sdkpick install <version>' to download one."))
				return nil
			}

			current, _ := env.GetJavaHome()

			for _, c := range choices {
				marker := "  "
				version := c.Version
				if current != "" && strings.EqualFold(c.Descriptor.Home, current) {
					marker = "→ "
					version = theme.CurrentStyle.Render(c.Version)
				}
				fmt.Fprintf(a.stdout, "%s%s %s %s\n",
					marker,
					pad(theme.LabelStyle.Render(c.Source), 8),
					pad(version, 15),
					c.Descriptor.Home)
			}
			return nil
		},
	}
}

// pad right-pads s to width visible columns
func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func newAvailableCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "available",
		Short: "List versions available for download",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			adoptium := catalog.NewAdoptium(a.cfg.Catalog, a.logger)

			var releases []catalog.Release
			err := a.runner().Run(cmd.Context(), fmt.Sprintf("Fetching available %s versions", language),
				func(ctx context.Context, _ func(string)) error {
					var err error
					releases, err = adoptium.Releases(ctx)
					return err
				})
			if err != nil {
				return &workflow.FetchError{Err: err}
			}
			if len(releases) == 0 {
				return workflow.ErrEmptyCatalog
			}

			for _, r := range releases {
				if r.IsLTS {
					fmt.Fprintf(a.stdout, "%s %s\n", pad(r.Version, 4), theme.SuccessStyle.Render("LTS"))
				} else {
					fmt.Fprintln(a.stdout, r.Version)
				}
			}
			return nil
		},
	}
}

func newInstallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "install <version>",
		Short: "Download a version from the catalog without prompting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version := args[0]
			adoptium := catalog.NewAdoptium(a.cfg.Catalog, a.logger)
			inst := installer.New(a.cfg, adoptium, a.logger)

			err := a.runner().Run(cmd.Context(), fmt.Sprintf("Downloading %s %s", language, version),
				func(ctx context.Context, progress func(string)) error {
					return inst.Download(ctx, version, progress)
				})
			if err != nil {
				return &workflow.DownloadError{Version: version, Err: err}
			}

			record, ok := a.cfg.FindInstalled(version)
			if !ok {
				return fmt.Errorf("%s %s was downloaded but no install record was saved to %s", language, version, a.cfg.File())
			}
			fmt.Fprintln(a.stderr, theme.SuccessMessage(fmt.Sprintf("Installed %s %s", language, version)))
			fmt.Fprintln(a.stdout, record.Path)
			return nil
		},
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the sdkpick version",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(a.stdout, "%s %s %s\n",
				theme.LabelStyle.Render("sdkpick"),
				theme.Faint.Render("version"),
				theme.Code.Render(Version))
		},
	}
}

func newUpdateCmd(a *app) *cobra.Command {
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update sdkpick to the latest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.cfg.Update.Enabled {
				fmt.Fprintln(a.stderr, theme.WarningMessage("Updates are disabled in configuration."))
				fmt.Fprintln(a.stderr, theme.Faint.Render("Set update.enabled = true in "+a.cfg.File()))
				return nil
			}

			upd, err := updater.NewUpdater(a.cfg, Version, a.logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), updater.UpdateTimeout)
			defer cancel()

			fmt.Fprintln(a.stderr, theme.InfoStyle.Render("Checking for updates..."))
			release, err := upd.CheckForUpdate(ctx)
			if err != nil {
				return err
			}
			if release == nil {
				updater.ShowAlreadyUpToDate(a.stderr, upd.CurrentVersion())
				return nil
			}
			if checkOnly || !a.interactive() {
				updater.ShowUpdateNotification(a.stderr, upd.CurrentVersion(), release.Version())
				return nil
			}

			action, err := upd.PromptForUpdate(a.stderr, release)
			if err != nil {
				fmt.Fprintln(a.stderr, theme.WarningMessage("Update cancelled."))
				return nil
			}
			switch action {
			case updater.ActionSkip:
				fmt.Fprintln(a.stderr, theme.InfoMessage("Skipped version "+release.Version()))
				return nil
			case updater.ActionLater:
				fmt.Fprintln(a.stderr, theme.InfoMessage("Update postponed"))
				return nil
			}

			fmt.Fprintln(a.stderr, theme.InfoStyle.Render(fmt.Sprintf("Downloading sdkpick %s...", release.Version())))
			if err := upd.PerformUpdate(ctx, release); err != nil {
				return err
			}
			updater.ShowUpdateSuccess(a.stderr, release.Version())
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "only report whether an update is available")
	return cmd
}

// checkForUpdateBackground prints a hint when a newer release exists. It never fails the command.
func (a *app) checkForUpdateBackground(ctx context.Context) {
	if a.cfg == nil || !a.interactive() {
		return
	}

	upd, err := updater.NewUpdater(a.cfg, Version, a.logger)
	if err != nil || !upd.ShouldCheckForUpdate() {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	release, err := upd.CheckForUpdate(ctx)
	if err != nil {
		a.logger.Debug("background update check failed", "error", err)
		return
	}
	if release != nil {
		updater.ShowUpdateNotification(a.stderr, upd.CurrentVersion(), release.Version())
	}
}
