package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Config is the demo server's YAML-loaded configuration.
type Config struct {
	// Addr is the listen address for the dev server.
	Addr string `yaml:"addr"`
	// StaticDir holds the built WASM bundle (app.wasm, wasm_exec.js,
	// index.html) the server hands to the browser.
	StaticDir string `yaml:"static_dir"`
	// SentryDSN enables error reporting for the server process when set.
	SentryDSN string `yaml:"sentry_dsn"`
	Metrics   struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
}

func defaultConfig() *Config {
	cfg := &Config{
		Addr:      ":8420",
		StaticDir: "./dist",
	}
	cfg.Metrics.Enabled = true
	cfg.Metrics.Path = "/metrics"
	return cfg
}

// loadConfig reads path if non-empty, layering it over the defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	return cfg, nil
}
