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
Package lifecycle provides the operating-system primitives a daemon needs.

The daemon package drives the lifecycle state machine; everything here is a
thin, testable wrapper around a single OS facility.

# Instance Lock

The instance lock enforces single-instance execution. It takes a non-blocking
exclusive flock on a pid file and records the holder's pid in it. The lock
lives as long as the open descriptor, so a crashed daemon never leaves a
stale lock behind:

	lock := lifecycle.NewInstanceLock("/var/run/echod/echod.pid")
	held, err := lock.Acquire()
	if err != nil {
	    // Handle error
	}
	if !held {
	    // Another instance is running
	}

# Standard Descriptors

CloseStdin, CloseStdout and CloseStderr point the standard descriptors at
/dev/null. ReopenStdout and ReopenStderr point them at a file opened in
append mode. These operate on the raw descriptors (dup2), so output written by
the runtime itself, such as an unrecovered panic, follows the redirection.

# Process Spawning

Detached spawning starts a new session leader running in "/":

	spawner := lifecycle.NewSpawner()
	pid, err := spawner.SpawnDetached("/usr/bin/echod", []string{"echod", "--daemon=child"})

# Process Operations

	if lifecycle.IsNamedProcess(pid, "echod") {
	    err := lifecycle.GracefulShutdown(pid, 10*time.Second, true)
	}
*/
package lifecycle
