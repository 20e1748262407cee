package sntpconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultHasSaneValues(t *testing.T) {
	cfg := Default()
	require.Equal(t, "pool.ntp.org", cfg.Server.Address)
	require.Equal(t, 123, cfg.Server.Port)
	require.Equal(t, uint8(4), cfg.Server.ClientVersion)
	require.True(t, cfg.Server.DataMinimization)
}

func TestLoadOverridesOnlySpecifiedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  address: time.example.com\n  port: 9123\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "time.example.com", cfg.Server.Address)
	require.Equal(t, 9123, cfg.Server.Port)
	require.Equal(t, uint8(4), cfg.Server.ClientVersion, "unspecified fields keep their default")
}

func TestLoadOrDefaultFallsBackWhenFileMissing(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadOrDefaultEmptyPath(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [this is not a mapping"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}
