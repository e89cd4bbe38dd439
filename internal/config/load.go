package config

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// DefaultPath is where the daemon looks when no config flag is given.
const DefaultPath = "/etc/splitkbd/config.toml"

// Load reads the configuration. An empty path means DefaultPath, and a
// missing file there falls back to the defaults; an explicitly chosen
// path must exist.
func Load(path string) (*Config, error) {
	if path == "" {
		if _, err := os.Stat(DefaultPath); err != nil {
			return Default(), nil
		}
		path = DefaultPath
	}
	return LoadFromFile(path)
}

// LoadFromFile reads one TOML file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes TOML over the defaults. Keys absent from the
// input keep their default values.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
