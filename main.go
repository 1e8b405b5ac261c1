package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"sdkpick/internal/config"
	"sdkpick/internal/logging"
	"sdkpick/internal/theme"
	"sdkpick/internal/tui"
)

// Version is set during build time via ldflags
var Version = "dev"

// errNothingSelected ends `select` with a non-zero status and no output on stdout
var errNothingSelected = errors.New("no SDK selected")

// app carries what every command needs once flags are parsed
type app struct {
	cfgFile  string
	logLevel string

	cfg    *config.Config
	logger *log.Logger

	stdout io.Writer
	stderr io.Writer

	// interactive reports whether prompts and spinners can be shown
	interactive func() bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := newApp(os.Stdout, os.Stderr)
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		if errors.Is(err, errNothingSelected) {
			fmt.Fprintln(os.Stderr, theme.WarningMessage(err.Error()))
		} else {
			fmt.Fprintln(os.Stderr, theme.ErrorMessage(err.Error()))
		}
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "sdkpick",
		Short: "Pick, download or browse for a Java SDK",
		Long: theme.Title.Render("sdkpick") + ` - pick a Java SDK from the ones installed on this machine,
download a new one from Eclipse Adoptium, or point at one by hand.

The chosen SDK home is printed on stdout so it can be captured:

  export JAVA_HOME="$(sdkpick select)"
  eval "$(sdkpick select --shell bash)"`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			switch cmd.Name() {
			case "update", "version":
				return
			}
			a.checkForUpdateBackground(cmd.Context())
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetVersionTemplate("sdkpick {{.Version}}\n")

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/sdkpick/config.toml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	root.AddCommand(
		newSelectCmd(a),
		newListCmd(a),
		newAvailableCmd(a),
		newInstallCmd(a),
		newAddCmd(a),
		newRemoveCmd(a),
		newAddPathCmd(a),
		newRemovePathCmd(a),
		newVersionCmd(a),
		newUpdateCmd(a),
	)
	return root
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:      stdout,
		stderr:      stderr,
		interactive: tui.IsInteractive,
	}
}

// setup loads the configuration and builds the logger before any command runs
func (a *app) setup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	logger, err := logging.New(a.stderr, level)
	if err != nil {
		return err
	}
	a.logger = logger

	a.logger.Debug("loaded config", "path", cfg.File(), "install_dir", cfg.InstallDir)
	return nil
}
