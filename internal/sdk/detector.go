package sdk

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"

	"sdkpick/internal/config"
	"sdkpick/internal/logging"
)

var (
	versionOutputRe = regexp.MustCompile(`version\s+"([^"]+)"`)
	dirVersionRes   = []*regexp.Regexp{
		regexp.MustCompile(`jdk-?(\d+(?:\.\d+)*(?:_\d+)?)`), // jdk-17, jdk-17.0.1
		regexp.MustCompile(`jdk(1\.\d+\.\d+_\d+)`),         // jdk1.8.0_322
		regexp.MustCompile(`(?:java|openjdk)-?(\d+(?:\.\d+)*)`),
		regexp.MustCompile(`^(\d+(?:\.\d+)*)$`), // bare version directories under the install dir
	}
)

// Detector finds SDK installations on the system and lists them as candidates
type Detector struct {
	cfg           *config.Config
	standardPaths []string
	logger        *log.Logger
	probeTimeout  time.Duration
}

// NewDetector creates a detector bound to the given configuration
func NewDetector(cfg *config.Config, logger *log.Logger) *Detector {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Detector{
		cfg:           cfg,
		standardPaths: standardPaths(),
		logger:        logger,
		probeTimeout:  5 * time.Second,
	}
}

// WithStandardPaths overrides the OS default locations
func (d *Detector) WithStandardPaths(paths ...string) *Detector {
	d.standardPaths = paths
	return d
}

func standardPaths() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\Program Files\Java`,
			`C:\Program Files (x86)\Java`,
			`C:\Program Files\Eclipse Adoptium`,
			`C:\Program Files\Eclipse Foundation`,
			`C:\Program Files\Zulu`,
			`C:\Program Files\Amazon Corretto`,
			`C:\Program Files\Microsoft`,
		}
	case "darwin":
		return []string{
			"/Library/Java/JavaVirtualMachines",
			"/opt/homebrew/opt",
		}
	default:
		return []string{
			"/usr/lib/jvm",
			"/usr/java",
			"/opt/java",
		}
	}
}

// List returns every known SDK as a candidate: downloaded SDKs first (newest first),
// then auto-detected ones, then custom paths. Unreadable locations are skipped.
func (d *Detector) List(ctx context.Context) []Choice {
	choices := make([]Choice, 0)
	index := make(map[string]int)

	add := func(c Choice) {
		key := strings.ToLower(filepath.Clean(c.Descriptor.Home))
		if i, ok := index[key]; ok {
			// A custom registration upgrades an auto-detected row
			if c.Source == SourceCustom && choices[i].Source == SourceSystem {
				choices[i].Source = SourceCustom
			}
			return
		}
		index[key] = len(choices)
		choices = append(choices, c)
	}

	for _, c := range d.downloaded() {
		add(c)
	}

	searchPaths := append([]string{}, d.standardPaths...)
	if d.cfg != nil {
		searchPaths = append(searchPaths, d.cfg.SearchPaths...)
	}
	for _, base := range searchPaths {
		if ctx.Err() != nil {
			d.logger.Debug("listing interrupted", "error", ctx.Err())
			return choices
		}
		for _, home := range d.scan(base) {
			desc, err := d.Describe(home)
			if err != nil {
				continue
			}
			add(Choice{Source: SourceSystem, Version: desc.Version, Descriptor: desc})
		}
	}

	if d.cfg != nil {
		for _, p := range d.cfg.CustomPaths {
			desc, err := d.Describe(p)
			if err != nil {
				d.logger.Warn("ignoring invalid custom path", "path", p, "error", err)
				continue
			}
			add(Choice{Source: SourceCustom, Version: desc.Version, Descriptor: desc})
		}
	}

	d.logger.Debug("listed candidates", "count", len(choices))
	return choices
}

// downloaded lists SDKs recorded by the installer, newest first
func (d *Detector) downloaded() []Choice {
	if d.cfg == nil {
		return nil
	}

	choices := make([]Choice, 0, len(d.cfg.InstalledSDKs))
	for _, rec := range d.cfg.InstalledSDKs {
		desc, err := d.Describe(rec.Path)
		if err != nil {
			d.logger.Warn("downloaded SDK is missing", "version", rec.Version, "path", rec.Path)
			continue
		}
		if desc.Vendor == "" {
			desc.Vendor = rec.Vendor
		}
		choices = append(choices, Choice{Source: SourceIvy, Version: rec.Version, Descriptor: desc})
	}

	sort.SliceStable(choices, func(i, j int) bool {
		return NewerVersion(choices[i].Version, choices[j].Version)
	})
	return choices
}

// scan returns SDK homes directly below base
func (d *Detector) scan(base string) []string {
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil
	}

	homes := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(base, entry.Name())
		if d.IsValidPath(candidate) {
			homes = append(homes, candidate)
			continue
		}
		// macOS bundles keep the home under Contents/Home
		bundleHome := filepath.Join(candidate, "Contents", "Home")
		if d.IsValidPath(bundleHome) {
			homes = append(homes, bundleHome)
		}
	}
	return homes
}

// Describe validates an SDK home and builds its descriptor
func (d *Detector) Describe(home string) (Descriptor, error) {
	home = filepath.Clean(strings.TrimSpace(home))
	if !d.IsValidPath(home) {
		bundleHome := filepath.Join(home, "Contents", "Home")
		if !d.IsValidPath(bundleHome) {
			return Descriptor{}, fmt.Errorf("not an SDK home (missing %s): %s", filepath.Join("bin", launcher("java")), home)
		}
		home = bundleHome
	}

	desc := Descriptor{Home: home}
	release := readReleaseFile(filepath.Join(home, "release"))
	desc.Version = release["JAVA_VERSION"]
	desc.Vendor = release["IMPLEMENTOR"]

	if desc.Version == "" {
		desc.Version = d.probeVersion(home)
	}
	if desc.Version == "" {
		desc.Version = parseVersionFromDirName(filepath.Base(home))
	}

	for _, name := range []string{"java", "javac", "jar", "jshell"} {
		bin := filepath.Join(home, "bin", launcher(name))
		if _, err := os.Stat(bin); err == nil {
			desc.Binaries = append(desc.Binaries, bin)
		}
	}

	return desc, nil
}

// IsValidPath checks if a path is an SDK home
func (d *Detector) IsValidPath(path string) bool {
	info, err := os.Stat(filepath.Join(path, "bin", launcher("java")))
	return err == nil && !info.IsDir()
}

// IsValidSearchPath checks if a path is a directory that can be scanned
func (d *Detector) IsValidSearchPath(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// probeVersion runs `java -version` as a last resort before directory-name parsing
func (d *Detector) probeVersion(home string) string {
	ctx, cancel := context.WithTimeout(context.Background(), d.probeTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, filepath.Join(home, "bin", launcher("java")), "-version").CombinedOutput()
	if err != nil {
		return ""
	}
	return parseVersionOutput(string(output))
}

// readReleaseFile parses the KEY="value" lines of a JDK release file
func readReleaseFile(path string) map[string]string {
	values := make(map[string]string)

	f, err := os.Open(path)
	if err != nil {
		return values
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		values[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
	}
	return values
}

// parseVersionOutput parses the output of 'java -version'
func parseVersionOutput(output string) string {
	if m := versionOutputRe.FindStringSubmatch(output); len(m) > 1 {
		return m[1]
	}
	return ""
}

// parseVersionFromDirName extracts version from directory names like "jdk-17" or "jdk1.8.0_322"
func parseVersionFromDirName(dirName string) string {
	dirName = strings.ToLower(dirName)
	for _, re := range dirVersionRes {
		if m := re.FindStringSubmatch(dirName); len(m) > 1 {
			return m[1]
		}
	}
	return dirName
}

// NewerVersion reports whether a sorts before b in newest-first order.
// Unparseable versions sort after parseable ones, then lexically.
func NewerVersion(a, b string) bool {
	va, errA := semver.NewVersion(normalizeVersion(a))
	vb, errB := semver.NewVersion(normalizeVersion(b))
	switch {
	case errA == nil && errB == nil:
		return va.GreaterThan(vb)
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a > b
	}
}

// normalizeVersion turns Java-style versions (1.8.0_322, 17.0.2+8) into something semver accepts
func normalizeVersion(v string) string {
	v = strings.TrimPrefix(strings.TrimSpace(v), "jdk-")
	if i := strings.IndexAny(v, "+_"); i >= 0 {
		v = v[:i]
	}
	return v
}

func launcher(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}
