package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdkpick/internal/config"
)

func newTestCatalog(t *testing.T, handler http.HandlerFunc, ltsOnly bool) *Adoptium {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewAdoptium(config.CatalogConfig{
		BaseURL:        server.URL,
		LTSOnly:        ltsOnly,
		TimeoutSeconds: 5,
		Retries:        0,
	}, nil).WithPlatform("linux", "amd64")
}

func releasesHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/info/available_releases", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(adoptiumReleasesResponse{
			AvailableLTSReleases: []int{8, 11, 17, 21},
			AvailableReleases:    []int{8, 11, 17, 21, 22, 9},
			MostRecentLTS:        21,
		})
	}
}

func TestFetchVersionsSortedNewestFirst(t *testing.T) {
	c := newTestCatalog(t, releasesHandler(t), false)

	versions, err := c.FetchVersions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"22", "21", "17", "11", "9", "8"}, versions)
}

func TestReleasesLTSOnly(t *testing.T) {
	c := newTestCatalog(t, releasesHandler(t), true)

	releases, err := c.Releases(context.Background())
	require.NoError(t, err)
	require.Len(t, releases, 4)
	for _, r := range releases {
		assert.True(t, r.IsLTS, r.Version)
	}
	assert.Equal(t, "21", releases[0].Version)
}

func TestFetchVersionsEmpty(t *testing.T) {
	c := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"available_releases": [], "available_lts_releases": []}`))
	}, false)

	versions, err := c.FetchVersions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestFetchVersionsHTTPError(t *testing.T) {
	c := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}, false)

	_, err := c.FetchVersions(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestFetchVersionsParseError(t *testing.T) {
	c := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}, false)

	_, err := c.FetchVersions(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse response")
}

func TestFetchVersionsCancelled(t *testing.T) {
	c := newTestCatalog(t, releasesHandler(t), false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchVersions(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolve(t *testing.T) {
	c := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/assets/latest/21/hotspot", r.URL.Path)
		assert.Equal(t, "x64", r.URL.Query().Get("architecture"))
		assert.Equal(t, "linux", r.URL.Query().Get("os"))
		assert.Equal(t, "jdk", r.URL.Query().Get("image_type"))
		_, _ = w.Write([]byte(`[{
			"binary": {"package": {
				"link": "https://example.test/OpenJDK21U-jdk_x64_linux_hotspot_21.0.4_7.tar.gz",
				"checksum": "abc123",
				"size": 2048,
				"name": "OpenJDK21U-jdk_x64_linux_hotspot_21.0.4_7.tar.gz"
			}},
			"vendor": "eclipse",
			"version": {"openjdk_version": "21.0.4+7", "major": 21}
		}]`))
	}, false)

	pkg, err := c.Resolve(context.Background(), "21")
	require.NoError(t, err)
	assert.Equal(t, "OpenJDK21U-jdk_x64_linux_hotspot_21.0.4_7.tar.gz", pkg.FileName)
	assert.Equal(t, "abc123", pkg.Checksum)
	assert.Equal(t, int64(2048), pkg.Size)
	assert.Equal(t, "Eclipse Adoptium", pkg.Vendor)
	assert.Equal(t, "21.0.4+7", pkg.FullVersion)
}

func TestResolveNoAssets(t *testing.T) {
	c := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}, false)

	_, err := c.Resolve(context.Background(), "5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no jdk found for version 5")
}

func TestPlatformMapping(t *testing.T) {
	assert.Equal(t, "mac", adoptiumOS("darwin"))
	assert.Equal(t, "windows", adoptiumOS("windows"))
	assert.Equal(t, "aarch64", adoptiumArch("arm64"))
	assert.Equal(t, "x64", adoptiumArch("amd64"))
}
