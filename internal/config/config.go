// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT

// Package config provides configuration loading and management for
// ollamalab.
//
// Configuration is TOML, with sensible defaults, environment variable
// overrides, and validation. Default file location: ~/.ollamalab/config.toml.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ollamalab/ollamalab/internal/ollama"
)

// Environment variables recognized as overrides.
const (
	EnvURL   = "OLLAMALAB_URL"
	EnvModel = "OLLAMALAB_MODEL"
	EnvPort  = "OLLAMALAB_PORT"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete ollamalab configuration.
type Config struct {
	// OllamaURL is the base URL of the Ollama server.
	OllamaURL string `toml:"ollama_url"`

	// DefaultModel is used when a command names no model.
	DefaultModel string `toml:"default_model"`

	// TimeoutSecs bounds non-streaming requests, in seconds.
	TimeoutSecs int `toml:"timeout_secs"`

	// WebPort is the listen port for the web front end.
	WebPort int `toml:"web_port"`

	// Options are the default sampling parameters.
	Options OptionsConfig `toml:"options"`
}

// OptionsConfig holds the default sampling parameters applied to
// generation requests that specify none.
type OptionsConfig struct {
	Temperature float64 `toml:"temperature"` // 0.0-2.0
	TopP        float64 `toml:"top_p"`       // 0.0-1.0
	TopK        int     `toml:"top_k"`
}

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		OllamaURL:    "http://localhost:11434",
		DefaultModel: "neural-chat",
		TimeoutSecs:  60,
		WebPort:      5001,
		Options: OptionsConfig{
			Temperature: 0.7,
			TopP:        0.9,
			TopK:        40,
		},
	}
}

// =============================================================================
// LOADING
// =============================================================================

// DefaultPath returns the default configuration file path.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".ollamalab", "config.toml"), nil
}

// Load reads the configuration from path, falling back to defaults if
// the file does not exist, then applies environment overrides and
// validates.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDefault loads the configuration from the default path.
func LoadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// applyEnv applies environment variable overrides.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvURL); v != "" {
		c.OllamaURL = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		c.DefaultModel = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.WebPort = port
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	u, err := url.Parse(c.OllamaURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid ollama_url %q", c.OllamaURL)
	}

	if c.DefaultModel == "" {
		return errors.New("default_model must not be empty")
	}

	if c.TimeoutSecs <= 0 {
		return fmt.Errorf("timeout_secs must be positive, got %d", c.TimeoutSecs)
	}

	if c.WebPort < 1 || c.WebPort > 65535 {
		return fmt.Errorf("web_port must be in 1-65535, got %d", c.WebPort)
	}

	if c.Options.Temperature < 0 || c.Options.Temperature > 2 {
		return fmt.Errorf("options.temperature must be in 0.0-2.0, got %g", c.Options.Temperature)
	}

	if c.Options.TopP < 0 || c.Options.TopP > 1 {
		return fmt.Errorf("options.top_p must be in 0.0-1.0, got %g", c.Options.TopP)
	}

	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to path in TOML, creating the parent
// directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	return nil
}

// =============================================================================
// BRIDGES
// =============================================================================

// ClientConfig converts the configuration into an Ollama client
// configuration.
func (c *Config) ClientConfig() *ollama.ClientConfig {
	return &ollama.ClientConfig{
		BaseURL:      c.OllamaURL,
		Timeout:      time.Duration(c.TimeoutSecs) * time.Second,
		DefaultModel: c.DefaultModel,
	}
}

// DefaultOptions converts the configured sampling defaults into request
// options.
func (c *Config) DefaultOptions() *ollama.Options {
	return &ollama.Options{
		Temperature: c.Options.Temperature,
		TopP:        c.Options.TopP,
		TopK:        c.Options.TopK,
	}
}
