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

package lifecycle

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/gofrs/flock"
)

var (
	// ErrInvalidPID is returned when the pid file contains invalid data.
	ErrInvalidPID = errors.New("invalid PID in file")

	// ErrLockNotHeld is returned when releasing a lock this process does not hold.
	ErrLockNotHeld = errors.New("instance lock not held")
)

// InstanceLock is an exclusive, advisory lock on a pid file.
//
// The lock is a flock(2) on the file's open descriptor. It is released when
// the descriptor is closed, which includes process exit, so the file itself
// may outlive its holder without blocking the next instance.
type InstanceLock struct {
	path string

	mu   sync.Mutex
	fl   *flock.Flock
	held bool
}

// NewInstanceLock creates a lock for the given pid file path.
func NewInstanceLock(path string) *InstanceLock {
	return &InstanceLock{
		path: path,
		fl:   flock.New(path),
	}
}

// Path returns the pid file path.
func (l *InstanceLock) Path() string {
	return l.path
}

// Held reports whether this process currently holds the lock.
func (l *InstanceLock) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held
}

// Acquire attempts to take the lock without blocking. It returns false with a
// nil error when another holder has it. On success the current pid is written
// to the file, replacing any previous contents.
//
// Acquire is idempotent: calling it again while held returns true.
func (l *InstanceLock) Acquire() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held {
		return true, nil
	}

	locked, err := l.fl.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to lock %s: %w", l.path, err)
	}
	if !locked {
		return false, nil
	}

	if err := writePID(l.path, os.Getpid()); err != nil {
		l.fl.Unlock()
		return false, err
	}

	l.held = true
	return true, nil
}

// Release unlocks the pid file. The file is left in place.
func (l *InstanceLock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.held {
		return ErrLockNotHeld
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("failed to unlock %s: %w", l.path, err)
	}
	l.held = false
	return nil
}

// Read returns the pid recorded in the lock file.
func (l *InstanceLock) Read() (int, error) {
	return ReadPIDFile(l.path)
}

// IsLocked reports whether a holder, in this process or another, has the
// lock on path. A missing file is not locked. The pid file is not modified.
func IsLocked(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	fl := flock.New(path)
	free, err := fl.TryRLock()
	if err != nil {
		return false, fmt.Errorf("failed to check lock %s: %w", path, err)
	}
	if !free {
		return true, nil
	}
	if err := fl.Unlock(); err != nil {
		return false, fmt.Errorf("failed to unlock %s: %w", path, err)
	}
	return false, nil
}

// writePID truncates the pid file and writes pid through a second descriptor.
// flock locks belong to the open file description, so closing this
// descriptor leaves the lock in place.
func writePID(path string, pid int) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return fmt.Errorf("failed to open pid file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(strconv.Itoa(pid)); err != nil {
		return fmt.Errorf("failed to write pid: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync pid file: %w", err)
	}
	return nil
}

// ReadPIDFile parses the pid stored at path.
func ReadPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	pidStr := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidPID, pidStr)
	}

	if pid <= 0 {
		return 0, fmt.Errorf("%w: PID must be positive, got %d", ErrInvalidPID, pid)
	}

	return pid, nil
}
