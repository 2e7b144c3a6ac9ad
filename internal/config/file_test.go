package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	c := Default()
	c.Matrix.Width = 16
	c.Driver = "term"
	c.Defaults.Brightness = 0.7
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 16, got.Matrix.Width)
	require.Equal(t, "term", got.Driver)
	require.Equal(t, 0.7, got.Defaults.Brightness)
	// Untouched fields keep their defaults.
	require.Equal(t, 30, got.Defaults.FPS)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadPartialYAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("driver: spi\nmatrix:\n  width: 20\n  height: 5\n"), 0644))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "spi", got.Driver)
	require.Equal(t, 20, got.Matrix.Width)
	require.Equal(t, 5, got.Matrix.Height)
	require.Equal(t, "rainbow", got.Defaults.ActivePalette)
	require.Equal(t, ":8080", got.Web.Addr)
}
