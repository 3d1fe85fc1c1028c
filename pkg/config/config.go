package config

import (
	"fmt"

	"github.com/inhies/go-bytesize"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

// Config holds the bmpd daemon settings.
type Config struct {
	Listen    string `yaml:"listen"`
	Debug     bool   `yaml:"debug"`
	MaxUpload string `yaml:"max_upload"` // e.g. "32MB", empty for no limit
	MaxPixels int    `yaml:"max_pixels"` // width*height of decoded input, 0 for no limit

	maxUpload bytesize.ByteSize
}

func Default() *Config {
	return &Config{
		Listen:    ":9123",
		MaxUpload: "32MB",
		MaxPixels: 64 << 20,
		maxUpload: 32 * bytesize.MB,
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults.
func Load(fs afero.Fs, path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	bs, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	if err := yaml.UnmarshalStrict(bs, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", path, err)
	}

	if err := cfg.parse(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) parse() error {
	if c.MaxPixels < 0 {
		return fmt.Errorf("invalid max_pixels %d", c.MaxPixels)
	}

	if c.MaxUpload == "" {
		c.maxUpload = 0
		return nil
	}

	size, err := bytesize.Parse(c.MaxUpload)
	if err != nil {
		return fmt.Errorf("invalid max_upload '%s': %w", c.MaxUpload, err)
	}
	c.maxUpload = size
	return nil
}

// MaxUploadBytes is the upload limit in bytes, 0 when unlimited.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.maxUpload)
}
