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
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tombee/daemonkit/internal/commands/shared"
	"github.com/tombee/daemonkit/internal/config"
	"github.com/tombee/daemonkit/internal/daemon"
	"github.com/tombee/daemonkit/internal/lifecycle"
)

// State describes what the pid file says about the daemon.
type State int

const (
	// StateStopped means there is no pid file.
	StateStopped State = iota
	// StateStale means a pid file exists but nobody holds its lock.
	StateStale
	// StateRunning means a process holds the pid file lock.
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStale:
		return "stale"
	case StateRunning:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Status is the result of inspecting a pid file.
type Status struct {
	State State
	// PID is the recorded pid, or 0 when none could be read.
	PID  int
	Path string
}

// Check inspects the pid file at path. The lock, not the pid, decides
// whether the daemon is running.
func Check(path string) (Status, error) {
	st := Status{Path: path}

	locked, err := lifecycle.IsLocked(path)
	if err != nil {
		return st, err
	}

	pid, err := lifecycle.ReadPIDFile(path)
	switch {
	case err == nil:
		st.PID = pid
	case errors.Is(err, os.ErrNotExist):
		st.State = StateStopped
		return st, nil
	case !errors.Is(err, lifecycle.ErrInvalidPID):
		return st, err
	}

	if locked {
		st.State = StateRunning
	} else {
		st.State = StateStale
	}
	return st, nil
}

// NewStatusCommand creates the status command.
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether the daemon is running",
		Long: `Report whether the daemon is running.

The exit code follows the LSB init script conventions:
  0  running
  1  not running, but a pid file exists
  3  not running
  4  status unknown`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := shared.LoadConfig(os.Args[0])
			if err != nil {
				return shared.NewStatusError(shared.ExitUnknown, err.Error())
			}
			return runStatus(cmd.OutOrStdout(), cfg)
		},
	}
}

func runStatus(out io.Writer, cfg *config.Config) error {
	name := cfg.Daemon.Name
	st, err := Check(daemon.PIDFile(cfg.Daemon.RunDir, name))
	if err != nil {
		return shared.NewStatusError(shared.ExitUnknown, err.Error())
	}

	switch st.State {
	case StateRunning:
		fmt.Fprintf(out, "%s is running (PID %d)\n", name, st.PID)
		return nil
	case StateStale:
		fmt.Fprintf(out, "%s is not running (stale pid file %s)\n", name, st.Path)
		return shared.NewStatusError(shared.ExitDeadPID, "")
	default:
		fmt.Fprintf(out, "%s is not running\n", name)
		return shared.NewStatusError(shared.ExitNotRunning, "")
	}
}
