package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)

	assert.Equal(t, ":9123", cfg.Listen)
	assert.False(t, cfg.Debug)
	assert.EqualValues(t, 32<<20, cfg.MaxUploadBytes())
	assert.Equal(t, 64<<20, cfg.MaxPixels)
}

func TestLoadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "bmpd.yaml", []byte("listen: 127.0.0.1:8000\ndebug: true\nmax_upload: 2MB\nmax_pixels: 1000\n"), 0644))

	cfg, err := Load(fs, "bmpd.yaml")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8000", cfg.Listen)
	assert.True(t, cfg.Debug)
	assert.EqualValues(t, 2<<20, cfg.MaxUploadBytes())
	assert.Equal(t, 1000, cfg.MaxPixels)
}

func TestLoadUnlimited(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "bmpd.yaml", []byte("max_upload: \"\"\n"), 0644))

	cfg, err := Load(fs, "bmpd.yaml")
	require.NoError(t, err)
	assert.Zero(t, cfg.MaxUploadBytes())
}

func TestLoadErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "unknown.yaml", []byte("port: 1\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "size.yaml", []byte("max_upload: lots\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "pixels.yaml", []byte("max_pixels: -1\n"), 0644))

	for _, path := range []string{"missing.yaml", "unknown.yaml", "size.yaml", "pixels.yaml"} {
		_, err := Load(fs, path)
		assert.Error(t, err, path)
	}
}
