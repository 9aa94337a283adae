package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWire(t *testing.T) {
	dir := t.TempDir()
	textfile := filepath.Join(dir, "adpush.prom")
	config := "work_dir = \"" + filepath.Join(dir, "work") + "\"\n\n" +
		"[metrics]\ntextfile = \"" + textfile + "\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(config), 0o600))

	s, err := wire(dir)
	require.NoError(t, err)

	settings, err := s.Settings.Get()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "work"), settings.WorkDir)

	runs, err := s.Runs.Runs(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)

	require.NoError(t, s.Close())
	assert.FileExists(t, filepath.Join(dir, "data", "runs.db"))
	assert.FileExists(t, textfile)
}

func TestWire_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("push = [unterminated"), 0o600))

	_, err := wire(dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
}
