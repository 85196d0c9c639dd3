// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads daemon configuration from YAML and the environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tombee/daemonkit/internal/daemon"
	"github.com/tombee/daemonkit/internal/log"
)

// Config is the top-level configuration of a daemon.
type Config struct {
	Daemon  DaemonConfig  `yaml:"daemon"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// DaemonConfig describes the daemon process.
type DaemonConfig struct {
	// Name is the product name, used for syslog, the pid file and the
	// default identity and directories.
	// Environment: DAEMONKIT_NAME
	Name string `yaml:"name"`

	// User is the user to run as after setup. Defaults to Name.
	// Environment: DAEMONKIT_USER
	User string `yaml:"user"`

	// Group is the group to run as after setup. Defaults to User.
	// Environment: DAEMONKIT_GROUP
	Group string `yaml:"group"`

	// LogDir holds error.log and its rotations.
	// Environment: DAEMONKIT_LOG_DIR
	// Default: /var/log/<name>
	LogDir string `yaml:"log_dir"`

	// RunDir holds the pid file.
	// Environment: DAEMONKIT_RUN_DIR
	// Default: /var/run/<name>
	RunDir string `yaml:"run_dir"`

	// Extra holds any other keys of the daemon section.
	Extra map[string]any `yaml:",inline"`
}

// LogConfig configures console logging and the level of the daemon tiers.
type LogConfig struct {
	// Level sets the minimum log level (debug, info, warn, error).
	// Environment: DAEMONKIT_LOG_LEVEL, LOG_LEVEL
	// Default: debug
	Level string `yaml:"level"`

	// Format sets the console format (json, text, auto).
	// Environment: LOG_FORMAT
	// Default: auto
	Format string `yaml:"format"`

	// AddSource adds source file and line information to logs.
	// Environment: LOG_SOURCE
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address for /metrics. Empty disables it.
	// Environment: DAEMONKIT_METRICS_ADDR
	Addr string `yaml:"addr"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "debug",
			Format: string(log.FormatAuto),
		},
	}
}

// Load loads configuration from an optional YAML file, then applies
// environment overrides and defaults. An empty path skips the file.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			return nil, &ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", configPath),
				Cause:  err,
			}
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{
			Key:    "validation",
			Reason: "configuration validation failed",
			Cause:  err,
		}
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func (c *Config) loadFromFile(path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return nil
}

// loadFromEnv loads configuration from environment variables.
func (c *Config) loadFromEnv() {
	if val := os.Getenv("DAEMONKIT_NAME"); val != "" {
		c.Daemon.Name = val
	}
	if val := os.Getenv("DAEMONKIT_USER"); val != "" {
		c.Daemon.User = val
	}
	if val := os.Getenv("DAEMONKIT_GROUP"); val != "" {
		c.Daemon.Group = val
	}
	if val := os.Getenv("DAEMONKIT_LOG_DIR"); val != "" {
		c.Daemon.LogDir = val
	}
	if val := os.Getenv("DAEMONKIT_RUN_DIR"); val != "" {
		c.Daemon.RunDir = val
	}
	if val := os.Getenv("DAEMONKIT_METRICS_ADDR"); val != "" {
		c.Metrics.Addr = val
	}

	// Log configuration
	if val := os.Getenv("DAEMONKIT_LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	} else if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = strings.ToLower(val)
	}
	if os.Getenv("LOG_SOURCE") == "1" {
		c.Log.AddSource = true
	}
	if val := os.Getenv("DAEMONKIT_DEBUG"); val == "1" || val == "true" {
		c.Log.Level = "debug"
		c.Log.AddSource = true
	}
}

// ApplyDefaults sets the product name when none is configured and derives
// missing directories from it.
func (c *Config) ApplyDefaults(name string) {
	if c.Daemon.Name == "" {
		c.Daemon.Name = name
	}
	if c.Daemon.Name == "" {
		return
	}
	if c.Daemon.LogDir == "" {
		c.Daemon.LogDir = filepath.Join("/var/log", c.Daemon.Name)
	}
	if c.Daemon.RunDir == "" {
		c.Daemon.RunDir = filepath.Join("/var/run", c.Daemon.Name)
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	if strings.ContainsRune(c.Daemon.Name, '/') {
		errs = append(errs, fmt.Sprintf("daemon.name must not contain '/', got %q", c.Daemon.Name))
	}

	validLevels := map[string]bool{"debug": true, "log": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level must be one of [debug, info, warn, warning, error], got %q", c.Log.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true, "auto": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("log.format must be one of [json, text, auto], got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// ProcessInfo converts the daemon section to a daemon.ProcessInfo.
func (c *Config) ProcessInfo() daemon.ProcessInfo {
	var extra map[string]any
	if len(c.Daemon.Extra) > 0 {
		extra = make(map[string]any, len(c.Daemon.Extra))
		for k, v := range c.Daemon.Extra {
			extra[k] = v
		}
	}
	return daemon.ProcessInfo{
		Name:   c.Daemon.Name,
		User:   c.Daemon.User,
		Group:  c.Daemon.Group,
		LogDir: c.Daemon.LogDir,
		RunDir: c.Daemon.RunDir,
		Extra:  extra,
	}
}

// LoggerConfig returns the console logging configuration writing to out.
func (c *Config) LoggerConfig(out io.Writer) *log.Config {
	return &log.Config{
		Level:     c.Log.Level,
		Format:    log.Format(c.Log.Format),
		Output:    out,
		AddSource: c.Log.AddSource,
	}
}

// Level returns the parsed log level.
func (c *Config) Level() slog.Level {
	return log.ParseLevel(c.Log.Level)
}
