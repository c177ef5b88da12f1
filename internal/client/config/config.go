// Package config loads the CLI's settings from ~/.tripagent/config.yaml.
// A missing file yields defaults; a malformed one is an error so the user
// notices the typo instead of silently talking to the wrong server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the CLI configuration.
type Config struct {
	ServerURL      string `yaml:"server_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Stream         bool   `yaml:"stream"`
}

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		ServerURL:      "http://localhost:8080",
		TimeoutSeconds: 60,
		Stream:         true,
	}
}

// Timeout converts the configured timeout to a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Dir returns the client's state directory, ~/.tripagent.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".tripagent"), nil
}

// Load reads the config file from the state directory, falling back to
// defaults when it does not exist.
func Load() (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(filepath.Join(dir, "config.yaml"))
}

// LoadFile reads a config file from an explicit path.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = Defaults().ServerURL
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = Defaults().TimeoutSeconds
	}
	return cfg, nil
}
