package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v4"

	orb "github.com/modelrelay/orb-go"
)

// fileConfig is the on-disk orbctl configuration.
type fileConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Strict     bool   `yaml:"strict"`
	LogLevel   string `yaml:"log_level"`
	Timeout    string `yaml:"timeout"`
	MaxRetries *int   `yaml:"max_retries"`
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "orbctl", "config.yaml")
}

// loadConfig reads path. A missing file yields an empty config.
func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// applyEnv overrides file values with ORB_* environment variables.
func (c *fileConfig) applyEnv(getenv func(string) string) {
	if v := getenv(orb.EnvAPIKey); v != "" {
		c.APIKey = v
	}
	if v := getenv(orb.EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := getenv("ORBCTL_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

func (c fileConfig) clientOptions() ([]orb.Option, error) {
	var opts []orb.Option
	if c.APIKey != "" {
		opts = append(opts, orb.WithAPIKey(c.APIKey))
	}
	if c.BaseURL != "" {
		opts = append(opts, orb.WithBaseURL(c.BaseURL))
	}
	if c.Strict {
		opts = append(opts, orb.WithStrictResponseValidation(true))
	}
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return nil, fmt.Errorf("timeout: %w", err)
		}
		opts = append(opts, orb.WithTimeout(d))
	}
	if c.MaxRetries != nil {
		opts = append(opts, orb.WithMaxRetries(*c.MaxRetries))
	}
	return opts, nil
}
