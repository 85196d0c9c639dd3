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
	"os"

	"golang.org/x/sys/unix"
)

// CloseStdin points stdin at /dev/null.
func (SystemStdio) CloseStdin() error {
	return redirect(os.DevNull, os.O_RDONLY, int(os.Stdin.Fd()))
}

// CloseStdout points stdout at /dev/null.
func (SystemStdio) CloseStdout() error {
	return redirect(os.DevNull, os.O_WRONLY, int(os.Stdout.Fd()))
}

// CloseStderr points stderr at /dev/null.
func (SystemStdio) CloseStderr() error {
	return redirect(os.DevNull, os.O_WRONLY, int(os.Stderr.Fd()))
}

// ReopenStdout points stdout at path, opened for appending.
func (SystemStdio) ReopenStdout(path string) error {
	return redirect(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, int(os.Stdout.Fd()))
}

// ReopenStderr points stderr at path, opened for appending.
func (SystemStdio) ReopenStderr(path string) error {
	return redirect(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, int(os.Stderr.Fd()))
}

// redirect opens path and duplicates it over target. dup2 replaces target
// atomically, so there is no window in which the descriptor number is free.
func redirect(path string, flag int, target int) error {
	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if err := unix.Dup2(int(f.Fd()), target); err != nil {
		return fmt.Errorf("failed to redirect fd %d to %s: %w", target, path, err)
	}
	return nil
}
