// Package catalog lists SDK versions available for download and resolves them to packages.
package catalog

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-retryablehttp"
)

// Release represents an available version
type Release struct {
	Version string
	IsLTS   bool
}

// Package contains what is needed to download one SDK archive
type Package struct {
	URL          string
	Checksum     string
	ChecksumAlgo string
	Size         int64
	FileName     string
	Vendor       string
	FullVersion  string
}

// NewHTTPClient builds the retrying HTTP client shared by catalog and installer requests.
// logger must not be nil.
func NewHTTPClient(retries int, timeout time.Duration, logger *log.Logger) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.HTTPClient = &http.Client{Timeout: timeout}
	client.Logger = leveledLogger{logger}
	return client
}

// sortReleases orders releases newest first
func sortReleases(releases []Release) {
	sort.SliceStable(releases, func(i, j int) bool {
		vi, errI := semver.NewVersion(releases[i].Version)
		vj, errJ := semver.NewVersion(releases[j].Version)
		if errI != nil || errJ != nil {
			return releases[i].Version > releases[j].Version
		}
		return vi.GreaterThan(vj)
	})
}

func versionsOf(releases []Release) []string {
	versions := make([]string, 0, len(releases))
	for _, r := range releases {
		versions = append(versions, r.Version)
	}
	return versions
}

// leveledLogger adapts charmbracelet/log to retryablehttp.LeveledLogger
type leveledLogger struct {
	l *log.Logger
}

func (a leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	a.l.Error(msg, keysAndValues...)
}

func (a leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	a.l.Debug(msg, keysAndValues...)
}

func (a leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	a.l.Debug(msg, keysAndValues...)
}

func (a leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	a.l.Warn(msg, keysAndValues...)
}

// statusError reports an unexpected HTTP status
func statusError(resp *http.Response, what string) error {
	return fmt.Errorf("%s: API returned status %d", what, resp.StatusCode)
}
