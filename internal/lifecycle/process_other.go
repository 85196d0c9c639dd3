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

//go:build !unix

package lifecycle

import (
	"errors"
	"fmt"
	"syscall"
	"time"
)

var (
	// ErrProcessNotRunning is returned when the process does not exist.
	ErrProcessNotRunning = errors.New("process not running")

	// ErrNotNamedProcess is returned when a pid belongs to some other program.
	ErrNotNamedProcess = errors.New("process does not match the expected name")

	// ErrShutdownTimeout is returned when the process doesn't exit within the timeout.
	ErrShutdownTimeout = errors.New("shutdown timeout exceeded")
)

// IsProcessRunning always reports false: liveness needs kill(pid, 0).
func IsProcessRunning(pid int) bool { return false }

// IsNamedProcess always reports false.
func IsNamedProcess(pid int, name string) bool { return false }

// SendSignal is not supported on this platform.
func SendSignal(pid int, sig syscall.Signal) error {
	return fmt.Errorf("failed to send signal %v to process %d: %w", sig, pid, errors.ErrUnsupported)
}

// WaitForExit returns immediately.
func WaitForExit(pid int, timeout time.Duration) error { return nil }

// GracefulShutdown is not supported on this platform.
func GracefulShutdown(pid int, timeout time.Duration, force bool) error {
	return fmt.Errorf("failed to stop process %d: %w", pid, errors.ErrUnsupported)
}
