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

package control

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/daemonkit/internal/commands/shared"
	"github.com/tombee/daemonkit/internal/config"
	"github.com/tombee/daemonkit/internal/daemon"
	"github.com/tombee/daemonkit/internal/lifecycle"
)

// NewStopCommand creates the stop command.
func NewStopCommand() *cobra.Command {
	var opts stopOptions

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		Long: `Stop the running daemon gracefully.

Sends SIGTERM to the pid recorded in the pid file and waits for the daemon
to exit. With --force, SIGKILL follows if the timeout is exceeded.

The stop command is idempotent: if the daemon is not running, it exits
successfully after cleaning up a stale pid file.`,
		Example: `  # Stop the daemon gracefully
  echod stop

  # Kill it if it has not exited after 10 seconds
  echod stop --timeout 10s --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := shared.LoadConfig(os.Args[0])
			if err != nil {
				return err
			}
			opts.program = daemon.ProductNameFromScript(os.Args[0])
			return runStop(cmd.OutOrStdout(), cfg, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Graceful shutdown timeout")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Send SIGKILL if the timeout is exceeded")

	return cmd
}

type stopOptions struct {
	timeout time.Duration
	force   bool
	// program is the expected base name of the daemon's argv[0].
	program string
}

func runStop(out io.Writer, cfg *config.Config, opts stopOptions) error {
	name := cfg.Daemon.Name
	st, err := Check(daemon.PIDFile(cfg.Daemon.RunDir, name))
	if err != nil {
		return fmt.Errorf("failed to read pid file: %w", err)
	}

	switch st.State {
	case StateStopped:
		fmt.Fprintf(out, "%s is not running (no pid file)\n", name)
		return nil
	case StateStale:
		fmt.Fprintf(out, "%s is not running (removing stale pid file)\n", name)
		if err := os.Remove(st.Path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove stale pid file: %w", err)
		}
		return nil
	}

	if st.PID == 0 {
		return fmt.Errorf("%w: %s", lifecycle.ErrInvalidPID, st.Path)
	}
	if !lifecycle.IsNamedProcess(st.PID, opts.program) {
		return fmt.Errorf("%w: PID %d is not %s (refusing to stop)", lifecycle.ErrNotNamedProcess, st.PID, opts.program)
	}

	start := time.Now()
	fmt.Fprintf(out, "Stopping %s (PID %d)...\n", name, st.PID)

	if err := lifecycle.GracefulShutdown(st.PID, opts.timeout, opts.force); err != nil {
		return fmt.Errorf("failed to stop %s: %w", name, err)
	}

	if err := os.Remove(st.Path); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(out, "Warning: failed to remove pid file: %v\n", err)
	}

	fmt.Fprintf(out, "%s stopped (%s)\n", name, time.Since(start).Round(time.Millisecond))
	return nil
}
