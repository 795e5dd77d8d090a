package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCLIConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	require.NoError(t, os.WriteFile(path, []byte("site-url: https://x.example.com\n"), 0o644))
	cfg, err := loadCLIConfig(path)
	require.NoError(t, err)
	require.Equal(t, "table", cfg.InitialTab)
	require.True(t, cfg.AltScreen)

	require.NoError(t, os.WriteFile(path, []byte("site-url: https://x.example.com\ninitial-tab: pie\n"), 0o644))
	_, err = loadCLIConfig(path)
	require.ErrorContains(t, err, "invalid initial-tab")
}
