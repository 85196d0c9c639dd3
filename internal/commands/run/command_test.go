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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/daemonkit/internal/config"
	"github.com/tombee/daemonkit/internal/daemon"
)

func TestAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	prevWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prevWD) })
	wd, err := os.Getwd()
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Daemon.Name = "echod"
	cfg.Daemon.LogDir = "log"
	cfg.Daemon.RunDir = "/var/run/echod"

	args := []string{"echod", "--daemon=parent", "--config", "echod.yaml", "run", "--log-dir", "./log"}
	got, err := absolutePaths(args, cfg, "echod.yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"echod", "--daemon=parent", "run",
		"--config=" + filepath.Join(wd, "echod.yaml"),
		"--log-dir=" + filepath.Join(wd, "log"),
		"--run-dir=/var/run/echod",
	}, got)
	assert.Equal(t, filepath.Join(wd, "log"), cfg.Daemon.LogDir)
	assert.Equal(t, "/var/run/echod", cfg.Daemon.RunDir)

	// The child sees only absolute paths after the mode flag is moved.
	argv := DaemonArgv("/usr/bin/echod", got, daemon.ModeChild)
	for _, arg := range argv[3:] {
		if value, ok := cutValue(arg); ok {
			assert.True(t, filepath.IsAbs(value), "%s is not absolute", arg)
		}
	}
}

func TestAbsolutePathsKeepsHomeConfig(t *testing.T) {
	cfg := config.Default()

	got, err := absolutePaths([]string{"echod", "run", "--config", "~/echod.yaml"}, cfg, "~/echod.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"echod", "run", "--config", "~/echod.yaml"}, got)
}

func cutValue(arg string) (string, bool) {
	for _, prefix := range []string{"--config=", "--log-dir=", "--run-dir="} {
		if value, ok := strings.CutPrefix(arg, prefix); ok {
			return value, true
		}
	}
	return "", false
}
