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

package shared

import (
	"github.com/spf13/pflag"

	"github.com/tombee/daemonkit/internal/config"
	"github.com/tombee/daemonkit/internal/daemon"
)

// Global flag values - set by root command
var (
	configFlag      string
	nameFlag        string
	logDirFlag      string
	runDirFlag      string
	userFlag        string
	groupFlag       string
	metricsAddrFlag string
	daemonFlag      string

	// Build-time version information
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// DaemonFlagName is the persistent flag selecting the daemon mode.
const DaemonFlagName = "daemon"

// RegisterFlags adds the global flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&configFlag, "config", "", "Path to config file")
	fs.StringVar(&nameFlag, "name", "", "Product name (default: derived from the program name)")
	fs.StringVar(&logDirFlag, "log-dir", "", "Log directory (default: /var/log/<name>)")
	fs.StringVar(&runDirFlag, "run-dir", "", "Run directory holding the pid file (default: /var/run/<name>)")
	fs.StringVar(&userFlag, "user", "", "User to run as (default: <name>)")
	fs.StringVar(&groupFlag, "group", "", "Group to run as (default: <user>)")
	fs.StringVar(&metricsAddrFlag, "metrics-addr", "", "Listen address for /metrics")
	fs.StringVar(&daemonFlag, DaemonFlagName, daemon.ModeForeground.String(), "Daemon mode: parent, child or foreground")
}

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	version = v
	commit = c
	buildDate = b
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return version, commit, buildDate
}

// GetConfigPath returns the config file path
func GetConfigPath() string {
	return configFlag
}

// GetDaemonMode returns the --daemon flag value
func GetDaemonMode() string {
	return daemonFlag
}

// ResetFlagsForTest clears every global flag value.
func ResetFlagsForTest() {
	configFlag, nameFlag, logDirFlag, runDirFlag = "", "", "", ""
	userFlag, groupFlag, metricsAddrFlag = "", "", ""
	daemonFlag = daemon.ModeForeground.String()
}

// LoadConfig loads the configuration file and environment, then applies the
// command-line overrides. script names the program for the default product
// name, normally os.Args[0].
func LoadConfig(script string) (*config.Config, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		flag  string
		field *string
	}{
		{nameFlag, &cfg.Daemon.Name},
		{logDirFlag, &cfg.Daemon.LogDir},
		{runDirFlag, &cfg.Daemon.RunDir},
		{userFlag, &cfg.Daemon.User},
		{groupFlag, &cfg.Daemon.Group},
		{metricsAddrFlag, &cfg.Metrics.Addr},
	}
	for _, o := range overrides {
		if o.flag != "" {
			*o.field = o.flag
		}
	}

	cfg.ApplyDefaults(daemon.ProductNameFromScript(script))
	if err := cfg.Validate(); err != nil {
		return nil, &config.ConfigError{
			Key:    "validation",
			Reason: "configuration validation failed",
			Cause:  err,
		}
	}
	return cfg, nil
}
