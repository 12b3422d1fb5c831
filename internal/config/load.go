// internal/config/load.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Load reads a profile. The extension picks the format: .toml is TOML,
// anything else is YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return &cfg, nil
}

// LoadOrDefault loads path. When path is empty the default profile is used
// if it exists; a missing default profile yields an empty config.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}

	def := DefaultPath()
	if def == "" {
		return &Config{}, nil
	}
	cfg, err := Load(def)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	return cfg, err
}

// DefaultPath is $XDG_CONFIG_HOME/basedctl/config.yaml, or the same under
// ~/.config. Empty when neither can be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "basedctl", "config.yaml")
}
