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

package run

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/daemonkit/internal/commands/shared"
	"github.com/tombee/daemonkit/internal/config"
	"github.com/tombee/daemonkit/internal/daemon"
)

// NewCommand creates the run command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the echo service",
		Long: `Run starts the echo service.

Daemon Modes:
  --daemon=parent       Start a detached child and exit immediately
  --daemon=child        Run as the detached child (set by the parent)
  --daemon=foreground   Run attached to the terminal (default)

The echo listener is bound before privileges are dropped. Set its address
with the 'listen' key of the daemon section in the config file.`,
		Example: `  # Run in the foreground with local directories
  echod run --log-dir ./log --run-dir ./run

  # Start as a background daemon
  echod --daemon=parent run --config /etc/echod.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runService(cmd.Context(), os.Args)
		},
	}

	return cmd
}

func runService(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing program name")
	}

	cfg, err := shared.LoadConfig(args[0])
	if err != nil {
		return err
	}

	mode, err := daemon.ParseMode(shared.GetDaemonMode())
	if err != nil {
		return err
	}

	if mode == daemon.ModeParent {
		if args, err = absolutePaths(args, cfg, shared.GetConfigPath()); err != nil {
			return err
		}
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to resolve executable: %w", err)
	}

	d := daemon.New(
		daemon.WithLogConfig(cfg.LoggerConfig(os.Stderr)),
		daemon.WithLevel(cfg.Level()),
		daemon.WithLogDir(cfg.Daemon.LogDir),
	)

	outcome, err := d.BasicSetup(DaemonArgv(exe, args, mode))
	if err != nil {
		return err
	}
	daemon.Exit(outcome)

	return NewService(cfg, os.Stdout, os.Stderr).Run(ctx, d)
}

// absolutePaths makes the config path and the log and run directories
// absolute and passes them to the child explicitly, since the child starts
// in "/". cfg is updated to match.
func absolutePaths(args []string, cfg *config.Config, configPath string) ([]string, error) {
	var flags []Flag

	if configPath != "" && !strings.HasPrefix(configPath, "~/") {
		abs, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
		flags = append(flags, Flag{Name: "config", Value: abs})
	}

	dirs := []struct {
		flag string
		dir  *string
	}{
		{"log-dir", &cfg.Daemon.LogDir},
		{"run-dir", &cfg.Daemon.RunDir},
	}
	for _, d := range dirs {
		if *d.dir == "" {
			continue
		}
		abs, err := filepath.Abs(*d.dir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve --%s: %w", d.flag, err)
		}
		*d.dir = abs
		flags = append(flags, Flag{Name: d.flag, Value: abs})
	}

	return ReplaceFlags(args, flags), nil
}
