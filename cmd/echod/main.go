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

// Command echod is a TCP echo service that runs as a Unix daemon.
package main

import (
	"github.com/tombee/daemonkit/internal/cli"
	"github.com/tombee/daemonkit/internal/commands/control"
	"github.com/tombee/daemonkit/internal/commands/run"
	versioncmd "github.com/tombee/daemonkit/internal/commands/version"
	"github.com/tombee/daemonkit/internal/daemon"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildDate)

	rootCmd := cli.NewRootCommand()

	rootCmd.AddCommand(run.NewCommand())
	rootCmd.AddCommand(control.NewStopCommand())
	rootCmd.AddCommand(control.NewStatusCommand())
	rootCmd.AddCommand(versioncmd.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		daemon.HandleExit(err)
	}
}
