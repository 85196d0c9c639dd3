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

package cli

import (
	"github.com/spf13/cobra"

	"github.com/tombee/daemonkit/internal/commands/shared"
)

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command for echod
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "echod",
		Short: "echod - a TCP echo daemon",
		Long: `echod is a small TCP echo service that runs as a classic Unix daemon.

Start it in the background with 'echod --daemon=parent run'. The parent
starts a detached child and exits; the child writes its pid file to the run
directory, logs to syslog and to error.log in the log directory, and keeps
running until it receives SIGTERM.

Without --daemon the service runs in the foreground and logs to the console.`,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
	}

	shared.RegisterFlags(cmd.PersistentFlags())

	return cmd
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return shared.GetVersion()
}
