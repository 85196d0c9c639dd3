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

package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var envKeys = []string{
	"DAEMONKIT_NAME", "DAEMONKIT_USER", "DAEMONKIT_GROUP", "DAEMONKIT_LOG_DIR",
	"DAEMONKIT_RUN_DIR", "DAEMONKIT_METRICS_ADDR", "DAEMONKIT_LOG_LEVEL",
	"DAEMONKIT_DEBUG", "LOG_LEVEL", "LOG_FORMAT", "LOG_SOURCE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level 'debug', got %q", cfg.Log.Level)
	}
	if cfg.Log.Format != "auto" {
		t.Errorf("expected log format 'auto', got %q", cfg.Log.Format)
	}
	if cfg.Metrics.Addr != "" {
		t.Errorf("expected metrics disabled, got %q", cfg.Metrics.Addr)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Daemon.Name != "" {
		t.Errorf("expected no name, got %q", cfg.Daemon.Name)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
daemon:
  name: echod
  user: nobody
  group: nogroup
  log_dir: /tmp/echod/log
  run_dir: /tmp/echod/run
  port: 7007
  greeting: hello
log:
  level: warn
  format: text
  add_source: true
metrics:
  addr: 127.0.0.1:9100
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Daemon.Name != "echod" || cfg.Daemon.User != "nobody" || cfg.Daemon.Group != "nogroup" {
		t.Errorf("unexpected identity: %+v", cfg.Daemon)
	}
	if cfg.Daemon.LogDir != "/tmp/echod/log" || cfg.Daemon.RunDir != "/tmp/echod/run" {
		t.Errorf("unexpected dirs: %+v", cfg.Daemon)
	}
	if cfg.Daemon.Extra["port"] != 7007 {
		t.Errorf("expected extra port 7007, got %v", cfg.Daemon.Extra["port"])
	}
	if cfg.Daemon.Extra["greeting"] != "hello" {
		t.Errorf("expected extra greeting, got %v", cfg.Daemon.Extra["greeting"])
	}
	if _, ok := cfg.Daemon.Extra["name"]; ok {
		t.Error("known keys must not appear in Extra")
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "text" || !cfg.Log.AddSource {
		t.Errorf("unexpected log config: %+v", cfg.Log)
	}
	if cfg.Metrics.Addr != "127.0.0.1:9100" {
		t.Errorf("unexpected metrics addr %q", cfg.Metrics.Addr)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
daemon:
  name: echod
  log_dir: /from/file
log:
  level: info
`)

	t.Setenv("DAEMONKIT_NAME", "echod2")
	t.Setenv("DAEMONKIT_LOG_DIR", "/from/env")
	t.Setenv("DAEMONKIT_RUN_DIR", "/run/env")
	t.Setenv("DAEMONKIT_USER", "svc")
	t.Setenv("DAEMONKIT_GROUP", "svcgrp")
	t.Setenv("DAEMONKIT_METRICS_ADDR", ":9200")
	t.Setenv("LOG_LEVEL", "ERROR")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Daemon.Name != "echod2" {
		t.Errorf("expected env name, got %q", cfg.Daemon.Name)
	}
	if cfg.Daemon.LogDir != "/from/env" || cfg.Daemon.RunDir != "/run/env" {
		t.Errorf("expected env dirs, got %+v", cfg.Daemon)
	}
	if cfg.Daemon.User != "svc" || cfg.Daemon.Group != "svcgrp" {
		t.Errorf("expected env identity, got %+v", cfg.Daemon)
	}
	if cfg.Metrics.Addr != ":9200" {
		t.Errorf("expected env metrics addr, got %q", cfg.Metrics.Addr)
	}
	if cfg.Log.Level != "error" || cfg.Log.Format != "json" {
		t.Errorf("expected env log config, got %+v", cfg.Log)
	}
}

func TestLoad_LogLevelPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("DAEMONKIT_LOG_LEVEL", "info")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected DAEMONKIT_LOG_LEVEL to win, got %q", cfg.Log.Level)
	}

	t.Setenv("DAEMONKIT_DEBUG", "true")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.AddSource {
		t.Errorf("expected DAEMONKIT_DEBUG to force debug, got %+v", cfg.Log)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Key != "config_file" {
		t.Errorf("expected config_file ConfigError, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected wrapped not-exist error, got %v", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)

	_, err := Load(writeConfig(t, "daemon: [unterminated"))
	if err == nil || !strings.Contains(err.Error(), "failed to parse YAML") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"log alias", func(c *Config) { c.Log.Level = "log" }, ""},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"slash in name", func(c *Config) { c.Daemon.Name = "a/b" }, "daemon.name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Default()
	cfg.ApplyDefaults("echod")

	if cfg.Daemon.Name != "echod" {
		t.Errorf("expected name 'echod', got %q", cfg.Daemon.Name)
	}
	if cfg.Daemon.LogDir != "/var/log/echod" || cfg.Daemon.RunDir != "/var/run/echod" {
		t.Errorf("unexpected default dirs: %+v", cfg.Daemon)
	}

	cfg = Default()
	cfg.Daemon.Name = "configured"
	cfg.Daemon.LogDir = "/custom"
	cfg.ApplyDefaults("echod")
	if cfg.Daemon.Name != "configured" || cfg.Daemon.LogDir != "/custom" || cfg.Daemon.RunDir != "/var/run/configured" {
		t.Errorf("defaults must not override configured values: %+v", cfg.Daemon)
	}
}

func TestProcessInfo(t *testing.T) {
	cfg := Default()
	cfg.Daemon = DaemonConfig{
		Name:   "echod",
		User:   "u",
		Group:  "g",
		LogDir: "/l",
		RunDir: "/r",
		Extra:  map[string]any{"k": "v"},
	}

	info := cfg.ProcessInfo()
	if info.Name != "echod" || info.User != "u" || info.Group != "g" || info.LogDir != "/l" || info.RunDir != "/r" {
		t.Errorf("unexpected info: %+v", info)
	}
	if info.Extra["k"] != "v" {
		t.Errorf("expected extra to carry over, got %v", info.Extra)
	}

	info.Extra["k"] = "changed"
	if cfg.Daemon.Extra["k"] != "v" {
		t.Error("ProcessInfo must copy Extra")
	}
}

func TestLoggerConfig(t *testing.T) {
	cfg := Default()
	cfg.Log = LogConfig{Level: "warn", Format: "text", AddSource: true}

	lc := cfg.LoggerConfig(os.Stdout)
	if lc.Level != "warn" || lc.Format != "text" || !lc.AddSource || lc.Output != os.Stdout {
		t.Errorf("unexpected logger config: %+v", lc)
	}
	if cfg.Level() != slog.LevelWarn {
		t.Errorf("expected warn level, got %v", cfg.Level())
	}
}
