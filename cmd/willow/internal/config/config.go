// Package config loads willow.yaml, the demo server's configuration file.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level shape of willow.yaml.
type Config struct {
	Serve *ServeConfig `yaml:"serve,omitempty"`
}

// ServeConfig configures `willow serve`.
type ServeConfig struct {
	Addr      string `yaml:"addr,omitempty"`
	Dashboard bool   `yaml:"dashboard,omitempty"`
}

// DefaultConfig returns the configuration used when willow.yaml is absent.
func DefaultConfig() *Config {
	return &Config{
		Serve: &ServeConfig{
			Addr:      ":8080",
			Dashboard: false,
		},
	}
}

// Load reads willow.yaml from projectPath, falling back to DefaultConfig
// when the file does not exist.
func Load(projectPath string) (*Config, error) {
	configPath := filepath.Join(projectPath, "willow.yaml")

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()
	if cfg.Serve == nil {
		cfg.Serve = defaults.Serve
		return
	}
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = defaults.Serve.Addr
	}
}
