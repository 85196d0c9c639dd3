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

/*
Package cli provides the root command for echod.

This package creates the root Cobra command and registers the persistent
flags. Individual commands are implemented in the internal/commands
subpackages.

# Command Tree

	echod
	├── run       Run the echo service
	├── stop      Stop a running daemon
	├── status    Report whether the daemon is running
	└── version   Show version

# Usage

From main.go:

	cli.SetVersion(version, commit, date)
	rootCmd := cli.NewRootCommand()
	// ... add commands ...
	if err := rootCmd.Execute(); err != nil {
	    daemon.HandleExit(err)
	}

# Global Flags

All commands inherit these flags:

	--config         Path to config file
	--name           Product name
	--log-dir        Log directory
	--run-dir        Run directory holding the pid file
	--user, --group  Identity to run as after setup
	--metrics-addr   Listen address for /metrics
	--daemon         Daemon mode: parent, child or foreground
*/
package cli
