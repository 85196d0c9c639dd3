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

package lifecycle

import (
	"fmt"
	"os/exec"
	"syscall"
)

// SpawnDetached starts binary with the full argv (argv[0] included) as the
// leader of a new session. Standard descriptors are connected to /dev/null.
// It does not wait for the child.
func (s *Spawner) SpawnDetached(binary string, argv []string) (int, error) {
	if len(argv) == 0 {
		argv = []string{binary}
	}

	cmd := &exec.Cmd{
		Path: binary,
		Args: argv,
		Env:  s.Env,
		Dir:  s.Dir,
	}

	// nil stdio means /dev/null for exec.Cmd.
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	// Setsid alone: a session leader cannot also call setpgid.
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start process: %w", err)
	}

	pid := cmd.Process.Pid

	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("process started but failed to release: %w", err)
	}

	return pid, nil
}
