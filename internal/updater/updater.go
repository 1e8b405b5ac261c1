// Package updater checks GitHub releases and replaces the running binary.
package updater

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/creativeprojects/go-selfupdate"

	"sdkpick/internal/config"
	"sdkpick/internal/logging"
)

const (
	// CheckInterval is minimum time between automatic update checks
	CheckInterval = 24 * time.Hour

	// UpdateTimeout is maximum time for update operations
	UpdateTimeout = 5 * time.Minute
)

// Updater handles checking and applying updates
type Updater struct {
	config         *config.Config
	currentVersion string
	selfUpdater    *selfupdate.Updater
	logger         *log.Logger
	now            func() time.Time
}

// NewUpdater creates a new Updater instance
func NewUpdater(cfg *config.Config, version string, logger *log.Logger) (*Updater, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	// Release assets are validated against the published SHA256SUMS.txt
	su, err := selfupdate.NewUpdater(selfupdate.Config{
		Validator: &selfupdate.ChecksumValidator{
			UniqueFilename: "SHA256SUMS.txt",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create updater: %w", err)
	}

	return &Updater{
		config:         cfg,
		currentVersion: cleanVersion(version),
		selfUpdater:    su,
		logger:         logger,
		now:            time.Now,
	}, nil
}

// CurrentVersion returns the running version without its "v" prefix
func (u *Updater) CurrentVersion() string {
	return u.currentVersion
}

// ShouldCheckForUpdate determines if an automatic check is due.
// Development builds never check.
func (u *Updater) ShouldCheckForUpdate() bool {
	if !u.config.Update.Enabled || !u.config.Update.AutoCheck {
		return false
	}
	if u.currentVersion == "" || u.currentVersion == "dev" {
		return false
	}
	return u.now().Sub(u.config.Update.LastCheck) >= CheckInterval
}

func (u *Updater) repository() string {
	if u.config.Update.Repository != "" {
		return u.config.Update.Repository
	}
	return config.DefaultRepository
}

// CheckForUpdate queries GitHub for the latest release.
// It returns nil when already up to date or when the user skipped that version.
func (u *Updater) CheckForUpdate(ctx context.Context) (*selfupdate.Release, error) {
	latest, found, err := u.selfUpdater.DetectLatest(ctx, selfupdate.ParseSlug(u.repository()))
	if err != nil {
		return nil, fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("no releases found for %s", u.repository())
	}

	u.config.Update.LastCheck = u.now()
	if err := u.config.Save(); err != nil {
		u.logger.Warn("failed to save config", "error", err)
	}

	if latest.LessOrEqual(u.currentVersion) {
		return nil, nil
	}
	if u.config.Update.SkipVersion == latest.Version() {
		u.logger.Debug("skipping update", "version", latest.Version())
		return nil, nil
	}

	return latest, nil
}

// PerformUpdate downloads and installs the update.
// A backup of the current binary is restored on failure.
func (u *Updater) PerformUpdate(ctx context.Context, release *selfupdate.Release) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to determine executable path: %w", err)
	}

	backup := exe + ".backup"
	if err := copyFile(exe, backup); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	if err := selfupdate.UpdateTo(ctx, release.AssetURL, release.AssetName, exe); err != nil {
		if rollbackErr := os.Rename(backup, exe); rollbackErr != nil {
			return fmt.Errorf("update failed and rollback failed: update error: %w, rollback error: %v", err, rollbackErr)
		}
		return fmt.Errorf("update failed (rolled back): %w", err)
	}

	if err := os.Remove(backup); err != nil {
		u.logger.Debug("failed to remove backup", "path", backup, "error", err)
	}
	u.logger.Info("updated", "from", u.currentVersion, "to", release.Version())
	return nil
}

// SkipVersion marks a version as skipped by the user
func (u *Updater) SkipVersion(version string) error {
	u.config.Update.SkipVersion = version
	return u.config.Save()
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o755)
}

// cleanVersion removes 'v' prefix if present for consistent comparison
func cleanVersion(version string) string {
	return strings.TrimPrefix(version, "v")
}
