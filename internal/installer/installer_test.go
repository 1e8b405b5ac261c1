package installer

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdkpick/internal/catalog"
	"sdkpick/internal/config"
)

func javaBinary() string {
	if runtime.GOOS == "windows" {
		return "java.exe"
	}
	return "java"
}

func buildTarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0o755,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func sha(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

type fakeResolver struct {
	pkg *catalog.Package
	err error
}

func (f *fakeResolver) Name() string { return "Test Catalog" }

func (f *fakeResolver) Resolve(ctx context.Context, version string) (*catalog.Package, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pkg, nil
}

type progressLog struct {
	mu    sync.Mutex
	lines []string
}

func (p *progressLog) add(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines = append(p.lines, line)
}

func (p *progressLog) joined() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return strings.Join(p.lines, "\n")
}

func setup(t *testing.T, fileName string, archive []byte, checksum string) (*Installer, *config.Config) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(archive)
	}))
	t.Cleanup(server.Close)

	dir := t.TempDir()
	cfg, err := config.Load(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	cfg.InstallDir = filepath.Join(dir, "sdks")
	cfg.Catalog.Retries = 0

	resolver := &fakeResolver{pkg: &catalog.Package{
		URL:      server.URL + "/" + fileName,
		Checksum: checksum,
		Size:     int64(len(archive)),
		FileName: fileName,
		Vendor:   "Eclipse Adoptium",
	}}

	inst := New(cfg, resolver, nil)
	inst.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return inst, cfg
}

func TestDownloadTarGz(t *testing.T) {
	archive := buildTarGz(t, map[string]string{
		"jdk-21.0.4+7/bin/" + javaBinary(): "#!/bin/sh\n",
		"jdk-21.0.4+7/release":             "JAVA_VERSION=\"21.0.4\"\n",
	})
	inst, cfg := setup(t, "OpenJDK21U-jdk.tar.gz", archive, sha(archive))

	progress := &progressLog{}
	require.NoError(t, inst.Download(context.Background(), "21", progress.add))

	home := filepath.Join(cfg.InstallDir, "21")
	assert.FileExists(t, filepath.Join(home, "bin", javaBinary()))
	assert.FileExists(t, filepath.Join(home, "release"))

	record, ok := cfg.FindInstalled("21")
	require.True(t, ok)
	assert.Equal(t, home, record.Path)
	assert.Equal(t, "Eclipse Adoptium", record.Vendor)
	assert.Equal(t, "2026-01-02T03:04:05Z", record.InstalledAt)

	// Recorded install survives a reload
	reloaded, err := config.Load(cfg.File())
	require.NoError(t, err)
	_, ok = reloaded.FindInstalled("21")
	assert.True(t, ok)

	out := progress.joined()
	assert.Contains(t, out, "Resolving 21 from Test Catalog")
	assert.Contains(t, out, "Checksum verified")
	assert.Contains(t, out, "Installed to")

	// Temp download dirs are cleaned up
	entries, err := os.ReadDir(cfg.InstallDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "21", entries[0].Name())
}

func TestDownloadZipReplacesExisting(t *testing.T) {
	archive := buildZip(t, map[string]string{
		"jdk-17/bin/" + javaBinary(): "new",
	})
	inst, cfg := setup(t, "jdk-17.zip", archive, sha(archive))

	stale := filepath.Join(cfg.InstallDir, "17", "stale.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	require.NoError(t, inst.Download(context.Background(), "17", nil))

	assert.NoFileExists(t, stale)
	data, err := os.ReadFile(filepath.Join(cfg.InstallDir, "17", "bin", javaBinary()))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
	assert.Len(t, cfg.InstalledSDKs, 1)
}

func TestDownloadChecksumMismatch(t *testing.T) {
	archive := buildTarGz(t, map[string]string{"jdk/bin/" + javaBinary(): "x"})
	inst, cfg := setup(t, "jdk.tar.gz", archive, strings.Repeat("0", 64))

	err := inst.Download(context.Background(), "21", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")
	assert.Empty(t, cfg.InstalledSDKs)
	assert.NoDirExists(t, filepath.Join(cfg.InstallDir, "21"))
}

func TestDownloadUnsupportedChecksumAlgorithm(t *testing.T) {
	archive := buildTarGz(t, map[string]string{"jdk/bin/" + javaBinary(): "x"})
	inst, cfg := setup(t, "jdk.tar.gz", archive, sha(archive))
	inst.resolver.(*fakeResolver).pkg.ChecksumAlgo = "MD5"

	err := inst.Download(context.Background(), "21", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported checksum algorithm "MD5"`)
	assert.Empty(t, cfg.InstalledSDKs)

	inst.resolver.(*fakeResolver).pkg.ChecksumAlgo = "SHA256"
	require.NoError(t, inst.Download(context.Background(), "21", nil))
}

func TestDownloadMissingJavaBinary(t *testing.T) {
	archive := buildTarGz(t, map[string]string{"jdk/README": "nothing here"})
	inst, cfg := setup(t, "jdk.tar.gz", archive, "")

	err := inst.Download(context.Background(), "21", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid SDK structure")
	assert.Empty(t, cfg.InstalledSDKs)
}

func TestDownloadResolveError(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	cfg.InstallDir = filepath.Join(dir, "sdks")

	inst := New(cfg, &fakeResolver{err: errors.New("no jdk found")}, nil)
	err = inst.Download(context.Background(), "5", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no jdk found")
}

func TestDownloadCancelled(t *testing.T) {
	archive := buildTarGz(t, map[string]string{"jdk/bin/" + javaBinary(): "x"})
	inst, cfg := setup(t, "jdk.tar.gz", archive, sha(archive))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := inst.Download(ctx, "21", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, cfg.InstalledSDKs)
}

func TestExtractRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "evil.zip")
	require.NoError(t, os.WriteFile(archivePath, buildZip(t, map[string]string{"../escape.txt": "x"}), 0o644))

	err := Extract(archivePath, filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "escape.txt"))
}

func TestExtractUnsupportedFormat(t *testing.T) {
	err := Extract("jdk.rar", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported archive format")
}

func TestProgressLine(t *testing.T) {
	pw := newProgressWriter(2000, nil)
	_, _ = pw.Write(make([]byte, 1000))
	assert.Contains(t, pw.Line(), "1.0 kB / 2.0 kB (50%)")

	unknown := newProgressWriter(0, nil)
	_, _ = unknown.Write(make([]byte, 1000))
	assert.True(t, strings.HasPrefix(unknown.Line(), "1.0 kB - "))
}
