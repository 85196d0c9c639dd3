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

//go:build unix

package control

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/daemonkit/internal/commands/shared"
	"github.com/tombee/daemonkit/internal/config"
	"github.com/tombee/daemonkit/internal/daemon"
	"github.com/tombee/daemonkit/internal/lifecycle"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Daemon.Name = "echod"
	cfg.Daemon.RunDir = t.TempDir()
	return cfg
}

func pidPath(cfg *config.Config) string {
	return daemon.PIDFile(cfg.Daemon.RunDir, cfg.Daemon.Name)
}

// holdLock takes the instance lock in this process and records pid in it.
func holdLock(t *testing.T, path string, pid int) {
	t.Helper()
	l := lifecycle.NewInstanceLock(path)
	held, err := l.Acquire()
	require.NoError(t, err)
	require.True(t, held)
	t.Cleanup(func() { l.Release() })

	if pid != os.Getpid() {
		require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(pid)), 0600))
	}
}

func TestCheck(t *testing.T) {
	cfg := testConfig(t)
	path := pidPath(cfg)

	st, err := Check(path)
	require.NoError(t, err)
	assert.Equal(t, StateStopped, st.State)

	require.NoError(t, os.WriteFile(path, []byte("99999999"), 0600))
	st, err = Check(path)
	require.NoError(t, err)
	assert.Equal(t, StateStale, st.State)
	assert.Equal(t, 99999999, st.PID)

	holdLock(t, path, os.Getpid())
	st, err = Check(path)
	require.NoError(t, err)
	assert.Equal(t, StateRunning, st.State)
	assert.Equal(t, os.Getpid(), st.PID)
}

func TestStatus(t *testing.T) {
	t.Run("not running", func(t *testing.T) {
		cfg := testConfig(t)
		var out bytes.Buffer

		err := runStatus(&out, cfg)
		require.Error(t, err)
		assert.Equal(t, shared.ExitNotRunning, daemon.ExitCode(err))
		assert.Contains(t, out.String(), "echod is not running")
	})

	t.Run("stale pid file", func(t *testing.T) {
		cfg := testConfig(t)
		require.NoError(t, os.WriteFile(pidPath(cfg), []byte("99999999"), 0600))
		var out bytes.Buffer

		err := runStatus(&out, cfg)
		require.Error(t, err)
		assert.Equal(t, shared.ExitDeadPID, daemon.ExitCode(err))
		assert.Contains(t, out.String(), "stale pid file")
	})

	t.Run("running", func(t *testing.T) {
		cfg := testConfig(t)
		holdLock(t, pidPath(cfg), os.Getpid())
		var out bytes.Buffer

		require.NoError(t, runStatus(&out, cfg))
		assert.Contains(t, out.String(), "echod is running (PID "+strconv.Itoa(os.Getpid())+")")
	})
}

func TestStopNotRunning(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer

	require.NoError(t, runStop(&out, cfg, stopOptions{timeout: time.Second, program: "echod"}))
	assert.Contains(t, out.String(), "no pid file")
}

func TestStopRemovesStalePIDFile(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(pidPath(cfg), []byte("99999999"), 0600))
	var out bytes.Buffer

	require.NoError(t, runStop(&out, cfg, stopOptions{timeout: time.Second, program: "echod"}))
	assert.Contains(t, out.String(), "removing stale pid file")
	assert.NoFileExists(t, pidPath(cfg))
}

func TestStopRefusesOtherProgram(t *testing.T) {
	cfg := testConfig(t)
	holdLock(t, pidPath(cfg), os.Getpid())
	var out bytes.Buffer

	err := runStop(&out, cfg, stopOptions{timeout: time.Second, program: "echod"})
	require.Error(t, err)
	assert.ErrorIs(t, err, lifecycle.ErrNotNamedProcess)
	assert.True(t, lifecycle.IsProcessRunning(os.Getpid()))
}

func TestStopRunningProcess(t *testing.T) {
	sleepPath, err := exec.LookPath("sleep")
	if err != nil {
		t.Skip("sleep not available")
	}

	cmd := exec.Command(sleepPath, "60")
	require.NoError(t, cmd.Start())
	exited := make(chan struct{})
	go func() {
		cmd.Wait()
		close(exited)
	}()
	t.Cleanup(func() {
		cmd.Process.Kill()
		<-exited
	})

	cfg := testConfig(t)
	holdLock(t, pidPath(cfg), cmd.Process.Pid)
	var out bytes.Buffer

	err = runStop(&out, cfg, stopOptions{
		timeout: 5 * time.Second,
		force:   true,
		program: filepath.Base(sleepPath),
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "echod stopped")
	assert.NoFileExists(t, pidPath(cfg))

	select {
	case <-exited:
	case <-time.After(5 * time.Second):
		t.Fatal("sleep process did not exit")
	}
}

func TestCommands(t *testing.T) {
	assert.Equal(t, "stop", NewStopCommand().Use)
	assert.NotNil(t, NewStopCommand().Flags().Lookup("timeout"))
	assert.NotNil(t, NewStopCommand().Flags().Lookup("force"))
	assert.Equal(t, "status", NewStatusCommand().Use)
}
