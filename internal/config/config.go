package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix for environment overrides (SDKPICK_LOG_LEVEL, ...)
	EnvPrefix = "SDKPICK"

	// DefaultCatalogURL is the Adoptium API base used to list and resolve JDK versions
	DefaultCatalogURL = "https://api.adoptium.net/v3"

	// DefaultRepository is where self-updates are published
	DefaultRepository = "sdkpick/sdkpick"
)

// Config holds the application configuration
type Config struct {
	LogLevel      string         `mapstructure:"log_level" toml:"log_level"`
	InstallDir    string         `mapstructure:"install_dir" toml:"install_dir"`   // Where downloaded SDKs are unpacked
	SearchPaths   []string       `mapstructure:"search_paths" toml:"search_paths"` // Base directories to scan for SDK installations
	CustomPaths   []string       `mapstructure:"custom_paths" toml:"custom_paths"` // Specific SDK home directories
	Catalog       CatalogConfig  `mapstructure:"catalog" toml:"catalog"`
	Update        UpdateConfig   `mapstructure:"update" toml:"update"`
	InstalledSDKs []InstalledSDK `mapstructure:"installed" toml:"installed"` // SDKs downloaded through sdkpick
	configPath    string
}

// CatalogConfig controls where available versions are fetched from
type CatalogConfig struct {
	BaseURL        string `mapstructure:"base_url" toml:"base_url"`
	LTSOnly        bool   `mapstructure:"lts_only" toml:"lts_only"`
	ImageType      string `mapstructure:"image_type" toml:"image_type"` // "jdk" or "jre"
	TimeoutSeconds int    `mapstructure:"timeout_seconds" toml:"timeout_seconds"`
	Retries        int    `mapstructure:"retries" toml:"retries"`
}

// Timeout returns the per-request timeout
func (c CatalogConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// UpdateConfig holds settings for auto-update feature
type UpdateConfig struct {
	Enabled     bool      `mapstructure:"enabled" toml:"enabled"`
	AutoCheck   bool      `mapstructure:"auto_check" toml:"auto_check"`
	LastCheck   time.Time `mapstructure:"last_check" toml:"last_check"`
	SkipVersion string    `mapstructure:"skip_version" toml:"skip_version"`
	Repository  string    `mapstructure:"repository" toml:"repository"` // GitHub owner/name that publishes releases
}

// InstalledSDK represents an SDK downloaded through sdkpick
type InstalledSDK struct {
	Version     string `mapstructure:"version" toml:"version"` // Version string as requested from the catalog
	Path        string `mapstructure:"path" toml:"path"`       // SDK home directory
	Vendor      string `mapstructure:"vendor" toml:"vendor"`
	InstalledAt string `mapstructure:"installed_at" toml:"installed_at"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		LogLevel:      "info",
		InstallDir:    defaultInstallDir(),
		SearchPaths:   make([]string, 0),
		CustomPaths:   make([]string, 0),
		InstalledSDKs: make([]InstalledSDK, 0),
		Catalog: CatalogConfig{
			BaseURL:        DefaultCatalogURL,
			ImageType:      "jdk",
			TimeoutSeconds: 30,
			Retries:        3,
		},
		Update: UpdateConfig{
			Enabled:    true,
			AutoCheck:  true,
			Repository: DefaultRepository,
		},
	}
}

// Load reads the configuration file at path, or the default location when path is empty.
// A missing file is not an error: defaults are returned and Save will create it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}

	defaults := Default()

	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("install_dir", defaults.InstallDir)
	v.SetDefault("search_paths", defaults.SearchPaths)
	v.SetDefault("custom_paths", defaults.CustomPaths)
	v.SetDefault("catalog.base_url", defaults.Catalog.BaseURL)
	v.SetDefault("catalog.lts_only", defaults.Catalog.LTSOnly)
	v.SetDefault("catalog.image_type", defaults.Catalog.ImageType)
	v.SetDefault("catalog.timeout_seconds", defaults.Catalog.TimeoutSeconds)
	v.SetDefault("catalog.retries", defaults.Catalog.Retries)
	v.SetDefault("update.enabled", defaults.Update.Enabled)
	v.SetDefault("update.auto_check", defaults.Update.AutoCheck)
	v.SetDefault("update.repository", defaults.Update.Repository)

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// fall through with defaults
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		// Remove BOM if present (UTF-8 BOM is EF BB BF)
		data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.configPath = path

	if cfg.InstallDir, err = homedir.Expand(cfg.InstallDir); err != nil {
		return nil, fmt.Errorf("invalid install_dir: %w", err)
	}
	cfg.SearchPaths = cleanPaths(cfg.SearchPaths)
	cfg.CustomPaths = cleanPaths(cfg.CustomPaths)
	if cfg.InstalledSDKs == nil {
		cfg.InstalledSDKs = make([]InstalledSDK, 0)
	}

	return cfg, nil
}

// Save writes the configuration back to the file it was loaded from
func (c *Config) Save() error {
	if c.configPath == "" {
		c.configPath = Path()
	}

	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return os.WriteFile(c.configPath, data, 0o644)
}

// File returns the path the configuration is bound to
func (c *Config) File() string {
	return c.configPath
}

// AddCustomPath adds a custom SDK home directory. It reports false if the path was already listed.
func (c *Config) AddCustomPath(path string) bool {
	var added bool
	c.CustomPaths, added = addFold(c.CustomPaths, path)
	return added
}

// RemoveCustomPath removes a custom SDK home directory
func (c *Config) RemoveCustomPath(path string) bool {
	var removed bool
	c.CustomPaths, removed = removeFold(c.CustomPaths, filepath.Clean(path))
	return removed
}

// AddSearchPath adds a directory to scan for SDK installations
func (c *Config) AddSearchPath(path string) bool {
	var added bool
	c.SearchPaths, added = addFold(c.SearchPaths, path)
	return added
}

// RemoveSearchPath removes a search directory
func (c *Config) RemoveSearchPath(path string) bool {
	var removed bool
	c.SearchPaths, removed = removeFold(c.SearchPaths, filepath.Clean(path))
	return removed
}

// AddInstalled records a downloaded SDK, replacing any record for the same version or path
func (c *Config) AddInstalled(sdk InstalledSDK) {
	sdk.Path = filepath.Clean(sdk.Path)

	for i, existing := range c.InstalledSDKs {
		if existing.Version == sdk.Version || strings.EqualFold(existing.Path, sdk.Path) {
			c.InstalledSDKs[i] = sdk
			return
		}
	}

	c.InstalledSDKs = append(c.InstalledSDKs, sdk)
}

// RemoveInstalled drops the record for the given SDK home. Files on disk are left alone.
func (c *Config) RemoveInstalled(path string) bool {
	path = filepath.Clean(path)

	for i, sdk := range c.InstalledSDKs {
		if strings.EqualFold(sdk.Path, path) {
			c.InstalledSDKs = append(c.InstalledSDKs[:i], c.InstalledSDKs[i+1:]...)
			return true
		}
	}
	return false
}

// FindInstalled returns the record for a downloaded version
func (c *Config) FindInstalled(version string) (InstalledSDK, bool) {
	for _, sdk := range c.InstalledSDKs {
		if sdk.Version == version {
			return sdk, true
		}
	}
	return InstalledSDK{}, false
}

// Path returns the default configuration file location.
// Precedence: SDKPICK_CONFIG, then XDG_CONFIG_HOME, then $HOME/.config
func Path() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}

	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "sdkpick", "config.toml")
	}

	home, err := homedir.Dir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", "sdkpick", "config.toml")
}

func defaultInstallDir() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "sdkpick", "sdks")
	}

	home, err := homedir.Dir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".sdkpick", "sdks")
}

func cleanPaths(paths []string) []string {
	cleaned := make([]string, 0, len(paths))
	seen := make(map[string]bool)
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if expanded, err := homedir.Expand(p); err == nil {
			p = expanded
		}
		p = filepath.Clean(p)
		if p == "" || p == "." {
			continue
		}
		key := strings.ToLower(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		cleaned = append(cleaned, p)
	}
	return cleaned
}

func containsFold(list []string, path string) bool {
	for _, p := range list {
		if strings.EqualFold(p, path) {
			return true
		}
	}
	return false
}

func addFold(list []string, path string) ([]string, bool) {
	path = filepath.Clean(strings.TrimSpace(path))
	if path == "" || path == "." || containsFold(list, path) {
		return list, false
	}
	return append(list, path), true
}

func removeFold(list []string, path string) ([]string, bool) {
	for i, p := range list {
		if strings.EqualFold(p, path) {
			return append(list[:i], list[i+1:]...), true
		}
	}
	return list, false
}
