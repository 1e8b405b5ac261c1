package sdk

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdkpick/internal/config"
)

func makeHome(t *testing.T, dir, version, vendor string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bin", launcher("java")), []byte{}, 0o755))
	release := "JAVA_VERSION=\"" + version + "\"\n"
	if vendor != "" {
		release += "IMPLEMENTOR=\"" + vendor + "\"\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "release"), []byte(release), 0o644))
	return dir
}

func newTestDetector(cfg *config.Config, standard ...string) *Detector {
	return NewDetector(cfg, nil).WithStandardPaths(standard...)
}

func TestListOrdering(t *testing.T) {
	root := t.TempDir()
	system := filepath.Join(root, "jvm")
	makeHome(t, filepath.Join(system, "jdk-17"), "17.0.2", "")
	custom := makeHome(t, filepath.Join(root, "custom", "jdk-11"), "11.0.20", "Azul")
	ivy17 := makeHome(t, filepath.Join(root, "sdks", "17"), "17.0.9", "")
	ivy21 := makeHome(t, filepath.Join(root, "sdks", "21"), "21.0.4", "")

	cfg := config.Default()
	cfg.CustomPaths = []string{custom}
	cfg.InstalledSDKs = []config.InstalledSDK{
		{Version: "17", Path: ivy17, Vendor: "Eclipse Adoptium"},
		{Version: "21", Path: ivy21},
	}

	choices := newTestDetector(cfg, system).List(context.Background())
	require.Len(t, choices, 4)

	assert.Equal(t, Key{SourceIvy, "21"}, choices[0].Key())
	assert.Equal(t, Key{SourceIvy, "17"}, choices[1].Key())
	assert.Equal(t, "Eclipse Adoptium", choices[1].Descriptor.Vendor)
	assert.Equal(t, Key{SourceSystem, "17.0.2"}, choices[2].Key())
	assert.Equal(t, Key{SourceCustom, "11.0.20"}, choices[3].Key())
	assert.Equal(t, "Azul", choices[3].Descriptor.Vendor)
}

func TestListDeduplicatesCustomOverSystem(t *testing.T) {
	system := t.TempDir()
	home := makeHome(t, filepath.Join(system, "jdk-21"), "21.0.1", "")

	cfg := config.Default()
	cfg.CustomPaths = []string{home}

	choices := newTestDetector(cfg, system).List(context.Background())
	require.Len(t, choices, 1)
	assert.Equal(t, SourceCustom, choices[0].Source)
}

func TestListSkipsMissingDownloads(t *testing.T) {
	cfg := config.Default()
	cfg.InstalledSDKs = []config.InstalledSDK{{Version: "21", Path: filepath.Join(t.TempDir(), "gone")}}
	cfg.CustomPaths = []string{filepath.Join(t.TempDir(), "not-a-jdk")}

	assert.Empty(t, newTestDetector(cfg).List(context.Background()))
}

func TestListSearchPathsAndCancel(t *testing.T) {
	search := t.TempDir()
	makeHome(t, filepath.Join(search, "openjdk-22"), "22", "")

	cfg := config.Default()
	cfg.SearchPaths = []string{search}

	choices := newTestDetector(cfg).List(context.Background())
	require.Len(t, choices, 1)
	assert.Equal(t, SourceSystem, choices[0].Source)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Empty(t, newTestDetector(cfg).List(ctx))
}

func TestDescribeMacBundle(t *testing.T) {
	bundle := filepath.Join(t.TempDir(), "temurin-21.jdk")
	makeHome(t, filepath.Join(bundle, "Contents", "Home"), "21.0.4", "")

	desc, err := newTestDetector(nil).Describe(bundle)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(bundle, "Contents", "Home"), desc.Home)
	assert.Equal(t, "21.0.4", desc.Version)
	assert.Len(t, desc.Binaries, 1)
}

func TestDescribeInvalid(t *testing.T) {
	_, err := newTestDetector(nil).Describe(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an SDK home")
}

func TestParseVersionOutput(t *testing.T) {
	assert.Equal(t, "17.0.2", parseVersionOutput(`openjdk version "17.0.2" 2022-01-18`))
	assert.Equal(t, "1.8.0_322", parseVersionOutput(`java version "1.8.0_322"`))
	assert.Empty(t, parseVersionOutput("garbage"))
}

func TestParseVersionFromDirName(t *testing.T) {
	assert.Equal(t, "17", parseVersionFromDirName("jdk-17"))
	assert.Equal(t, "1.8.0_322", parseVersionFromDirName("jdk1.8.0_322"))
	assert.Equal(t, "21", parseVersionFromDirName("21"))
	assert.Equal(t, "11", parseVersionFromDirName("java-11-openjdk-amd64"))
}

func TestNewerVersion(t *testing.T) {
	assert.True(t, NewerVersion("21", "17"))
	assert.True(t, NewerVersion("17.0.10", "17.0.9"))
	assert.True(t, NewerVersion("11.0.2+9", "1.8.0_322"))
	assert.False(t, NewerVersion("17", "21"))
	assert.True(t, NewerVersion("17", "weird"))
	assert.False(t, NewerVersion("weird", "17"))
}

func TestChoiceString(t *testing.T) {
	c := Choice{Source: SourceIvy, Version: "21", Descriptor: Descriptor{Home: "/sdks/21"}}
	assert.Equal(t, "Ivy 21 (/sdks/21)", c.String())
}
