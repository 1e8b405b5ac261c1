package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-retryablehttp"

	"sdkpick/internal/config"
	"sdkpick/internal/logging"
)

// Adoptium lists and resolves Eclipse Temurin builds through the Adoptium API
type Adoptium struct {
	baseURL   string
	ltsOnly   bool
	imageType string
	os        string
	arch      string
	client    *retryablehttp.Client
	logger    *log.Logger
}

// NewAdoptium creates an Adoptium catalog from the catalog configuration
func NewAdoptium(cfg config.CatalogConfig, logger *log.Logger) *Adoptium {
	if logger == nil {
		logger = logging.Discard()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = config.DefaultCatalogURL
	}
	imageType := cfg.ImageType
	if imageType == "" {
		imageType = "jdk"
	}

	return &Adoptium{
		baseURL:   baseURL,
		ltsOnly:   cfg.LTSOnly,
		imageType: imageType,
		os:        adoptiumOS(runtime.GOOS),
		arch:      adoptiumArch(runtime.GOARCH),
		client:    NewHTTPClient(cfg.Retries, cfg.Timeout(), logger),
		logger:    logger,
	}
}

// WithPlatform overrides the detected OS and architecture (Go naming)
func (a *Adoptium) WithPlatform(goos, goarch string) *Adoptium {
	a.os = adoptiumOS(goos)
	a.arch = adoptiumArch(goarch)
	return a
}

// Name returns the catalog name
func (a *Adoptium) Name() string {
	return "Eclipse Adoptium"
}

// adoptiumReleasesResponse represents the API response for available releases
type adoptiumReleasesResponse struct {
	AvailableLTSReleases     []int `json:"available_lts_releases"`
	AvailableReleases        []int `json:"available_releases"`
	MostRecentLTS            int   `json:"most_recent_lts"`
	MostRecentFeatureRelease int   `json:"most_recent_feature_release"`
}

// adoptiumAssetResponse represents the API response for asset details
type adoptiumAssetResponse struct {
	Binary struct {
		Package struct {
			Link     string `json:"link"`
			Checksum string `json:"checksum"`
			Size     int64  `json:"size"`
			Name     string `json:"name"`
		} `json:"package"`
	} `json:"binary"`
	Vendor  string `json:"vendor"`
	Version struct {
		OpenJDKVersion string `json:"openjdk_version"`
		Major          int    `json:"major"`
	} `json:"version"`
}

// Releases fetches the available feature releases, newest first
func (a *Adoptium) Releases(ctx context.Context) ([]Release, error) {
	var body adoptiumReleasesResponse
	if err := a.getJSON(ctx, a.baseURL+"/info/available_releases", &body); err != nil {
		return nil, err
	}

	lts := make(map[int]bool, len(body.AvailableLTSReleases))
	for _, v := range body.AvailableLTSReleases {
		lts[v] = true
	}

	releases := make([]Release, 0, len(body.AvailableReleases))
	for _, v := range body.AvailableReleases {
		if a.ltsOnly && !lts[v] {
			continue
		}
		releases = append(releases, Release{Version: strconv.Itoa(v), IsLTS: lts[v]})
	}

	sortReleases(releases)
	a.logger.Debug("fetched releases", "catalog", a.Name(), "count", len(releases), "lts_only", a.ltsOnly)
	return releases, nil
}

// FetchVersions returns the downloadable version identifiers, newest first
func (a *Adoptium) FetchVersions(ctx context.Context) ([]string, error) {
	releases, err := a.Releases(ctx)
	if err != nil {
		return nil, err
	}
	return versionsOf(releases), nil
}

// Resolve finds the latest package for a feature version on the current platform
func (a *Adoptium) Resolve(ctx context.Context, version string) (*Package, error) {
	query := url.Values{}
	query.Set("architecture", a.arch)
	query.Set("image_type", a.imageType)
	query.Set("os", a.os)
	query.Set("vendor", "eclipse")

	endpoint := fmt.Sprintf("%s/assets/latest/%s/hotspot?%s", a.baseURL, url.PathEscape(version), query.Encode())

	var assets []adoptiumAssetResponse
	if err := a.getJSON(ctx, endpoint, &assets); err != nil {
		return nil, fmt.Errorf("failed to resolve version %s: %w", version, err)
	}
	if len(assets) == 0 {
		return nil, fmt.Errorf("no %s found for version %s on %s/%s", a.imageType, version, a.os, a.arch)
	}

	asset := assets[0]
	return &Package{
		URL:          asset.Binary.Package.Link,
		Checksum:     asset.Binary.Package.Checksum,
		ChecksumAlgo: "SHA256",
		Size:         asset.Binary.Package.Size,
		FileName:     asset.Binary.Package.Name,
		Vendor:       vendorName(asset.Vendor),
		FullVersion:  asset.Version.OpenJDKVersion,
	}, nil
}

func (a *Adoptium) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp, endpoint)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func adoptiumOS(goos string) string {
	if goos == "darwin" {
		return "mac"
	}
	return goos
}

func adoptiumArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x64"
	case "arm64":
		return "aarch64"
	case "386":
		return "x32"
	default:
		return goarch
	}
}

func vendorName(vendor string) string {
	if vendor == "" || vendor == "eclipse" {
		return "Eclipse Adoptium"
	}
	return vendor
}
