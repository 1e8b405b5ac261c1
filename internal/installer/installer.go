// Package installer downloads SDK archives from a catalog and unpacks them into the install directory.
package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-retryablehttp"

	"sdkpick/internal/catalog"
	"sdkpick/internal/config"
	"sdkpick/internal/logging"
)

// Resolver maps a version to a downloadable package
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, version string) (*catalog.Package, error)
}

// Installer handles download, verification and extraction of one SDK version
type Installer struct {
	cfg      *config.Config
	resolver Resolver
	client   *retryablehttp.Client
	logger   *log.Logger
	now      func() time.Time
}

// New creates an Installer that records installs in cfg
func New(cfg *config.Config, resolver Resolver, logger *log.Logger) *Installer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Installer{
		cfg:      cfg,
		resolver: resolver,
		// Downloads can be large; the catalog timeout would cut them off
		client: catalog.NewHTTPClient(cfg.Catalog.Retries, 0, logger),
		logger: logger,
		now:    time.Now,
	}
}

// Download installs version into <install_dir>/<version> and records it so the
// candidate list reports it as a downloaded SDK.
func (i *Installer) Download(ctx context.Context, version string, onProgress func(string)) error {
	report := func(format string, args ...any) {
		if onProgress != nil {
			onProgress(fmt.Sprintf(format, args...))
		}
	}

	report("Resolving %s from %s...", version, i.resolver.Name())
	pkg, err := i.resolver.Resolve(ctx, version)
	if err != nil {
		return err
	}
	if pkg.Checksum != "" && pkg.ChecksumAlgo != "" && !strings.EqualFold(pkg.ChecksumAlgo, "sha256") {
		return fmt.Errorf("unsupported checksum algorithm %q for %s", pkg.ChecksumAlgo, pkg.FileName)
	}
	report("Package: %s (%s)", pkg.FileName, humanize.Bytes(uint64(max(pkg.Size, 0))))

	if err := os.MkdirAll(i.cfg.InstallDir, 0o755); err != nil {
		return fmt.Errorf("failed to create installation directory: %w", err)
	}

	tempDir, err := os.MkdirTemp(i.cfg.InstallDir, ".download-")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	archivePath := filepath.Join(tempDir, filepath.Base(pkg.FileName))
	if err := downloadFile(ctx, i.client, pkg.URL, archivePath, onProgress); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	if pkg.Checksum != "" {
		report("Verifying checksum...")
		if err := VerifyChecksum(archivePath, pkg.Checksum); err != nil {
			return fmt.Errorf("checksum verification failed: %w", err)
		}
		report("✓ Checksum verified")
	} else {
		i.logger.Warn("package has no checksum, skipping verification", "file", pkg.FileName)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	report("Extracting %s...", pkg.FileName)
	extractDir := filepath.Join(tempDir, "extract")
	if err := Extract(archivePath, extractDir); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	home, err := i.place(extractDir, version)
	if err != nil {
		return err
	}

	i.cfg.AddInstalled(config.InstalledSDK{
		Version:     version,
		Path:        home,
		Vendor:      pkg.Vendor,
		InstalledAt: i.now().Format(time.RFC3339),
	})
	if err := i.cfg.Save(); err != nil {
		return fmt.Errorf("installed to %s but failed to save config: %w", home, err)
	}

	i.logger.Info("installed SDK", "version", version, "home", home)
	report("✓ Installed to %s", home)
	return nil
}

// place moves the extracted tree to <install_dir>/<version> and returns the SDK home inside it
func (i *Installer) place(extractDir, version string) (string, error) {
	home, err := FindHome(extractDir)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(extractDir, home)
	if err != nil {
		return "", fmt.Errorf("failed to locate SDK home: %w", err)
	}

	// Move the archive's top-level directory when there is one
	source, inner := extractDir, rel
	if rel != "." {
		parts := strings.SplitN(rel, string(filepath.Separator), 2)
		source = filepath.Join(extractDir, parts[0])
		inner = "."
		if len(parts) == 2 {
			inner = parts[1]
		}
	}

	finalPath := filepath.Join(i.cfg.InstallDir, sanitize(version))
	if _, err := os.Stat(finalPath); err == nil {
		i.logger.Info("replacing existing installation", "path", finalPath)
		if err := os.RemoveAll(finalPath); err != nil {
			return "", fmt.Errorf("failed to remove old installation: %w", err)
		}
	}

	if err := os.Rename(source, finalPath); err != nil {
		return "", fmt.Errorf("failed to move SDK to final location: %w", err)
	}

	return filepath.Clean(filepath.Join(finalPath, inner)), nil
}

// sanitize keeps version strings usable as directory names
func sanitize(version string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, version)
}
