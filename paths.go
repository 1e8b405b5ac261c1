package main

import (
	"fmt"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"sdkpick/internal/sdk"
	"sdkpick/internal/theme"
)

// absPath expands ~ and makes path absolute so config entries do not depend on the working directory
func absPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}
	return filepath.Abs(expanded)
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <path>",
		Short: "Add an SDK home to the custom paths",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path, err := absPath(args[0])
			if err != nil {
				return err
			}
			desc, err := sdk.NewDetector(a.cfg, a.logger).Describe(path)
			if err != nil {
				return err
			}

			if !a.cfg.AddCustomPath(desc.Home) {
				fmt.Fprintln(a.stderr, theme.WarningMessage("This path is already in the custom paths list."))
				return nil
			}
			if err := a.cfg.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Fprintln(a.stderr, theme.SuccessMessage(fmt.Sprintf("Added %s %s to custom paths.", language, desc.Version)))
			fmt.Fprintln(a.stderr, "  "+theme.PathStyle.Render(desc.Home))
			return nil
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <path>",
		Short: "Forget a custom or downloaded SDK (files are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path, err := absPath(args[0])
			if err != nil {
				return err
			}

			custom := a.cfg.RemoveCustomPath(path)
			installed := a.cfg.RemoveInstalled(path)
			if !custom && !installed {
				fmt.Fprintln(a.stderr, theme.WarningMessage("This path is not in the custom paths list."))
				return nil
			}
			if err := a.cfg.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Fprintln(a.stderr, theme.SuccessMessage("Removed "+path))
			return nil
		},
	}
}

func newAddPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add-path <directory>",
		Short: "Add a directory to scan for SDK installations",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path, err := absPath(args[0])
			if err != nil {
				return err
			}
			if !sdk.NewDetector(a.cfg, a.logger).IsValidSearchPath(path) {
				return fmt.Errorf("invalid directory path: %s", path)
			}

			if !a.cfg.AddSearchPath(path) {
				fmt.Fprintln(a.stderr, theme.WarningMessage("This search path is already configured."))
				return nil
			}
			if err := a.cfg.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Fprintln(a.stderr, theme.SuccessMessage("Added search path:"))
			fmt.Fprintln(a.stderr, "  "+theme.PathStyle.Render(path))
			fmt.Fprintln(a.stderr, theme.Faint.Render("Run ")+theme.Code.Render("sdkpick list")+theme.Faint.Render(" to see detected versions"))
			return nil
		},
	}
}

func newRemovePathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-path <directory>",
		Short: "Stop scanning a directory for SDK installations",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path, err := absPath(args[0])
			if err != nil {
				return err
			}

			if !a.cfg.RemoveSearchPath(path) {
				fmt.Fprintln(a.stderr, theme.WarningMessage("This path is not in the search paths list."))
				return nil
			}
			if err := a.cfg.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Fprintln(a.stderr, theme.SuccessMessage("Removed search path "+path))
			return nil
		},
	}
}
