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

package errlog

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/tombee/daemonkit/internal/lifecycle"
)

const (
	// PrimaryName is the file name of the primary error log.
	PrimaryName = "error.log"

	// DireName is the file name of the last-ditch descriptor log.
	DireName = "dire-error.log"

	// RotatedPrefix starts the name of every rotated log.
	RotatedPrefix = "error"

	timestampLayout = "2006-01-02 15:04:05"
	dateLayout      = "2006-01-02"
)

// Redirector re-points the process's standard output descriptors.
// lifecycle.SystemStdio implements it.
type Redirector interface {
	ReopenStdout(path string) error
	ReopenStderr(path string) error
}

// File is the primary error log of a daemon. It is safe for concurrent use.
type File struct {
	dir      string
	stdio    Redirector
	now      func() time.Time
	instance string
	fallback io.Writer

	mu sync.Mutex
	fh *os.File
}

// Option configures a File.
type Option func(*File)

// WithStdio makes every open re-point stdout and stderr at the primary log.
func WithStdio(r Redirector) Option {
	return func(f *File) { f.stdio = r }
}

// WithClock replaces the clock used for markers and rotated file names.
func WithClock(now func() time.Time) Option {
	return func(f *File) { f.now = now }
}

// WithInstanceID tags every restart marker with id.
func WithInstanceID(id string) Option {
	return func(f *File) { f.instance = id }
}

// WithFallback sets where writes go while no file is open. Default: stderr.
func WithFallback(w io.Writer) Option {
	return func(f *File) { f.fallback = w }
}

// New creates a File for dir. Nothing is opened until Open.
func New(dir string, opts ...Option) *File {
	f := &File{
		dir:      filepath.Clean(dir),
		now:      time.Now,
		fallback: os.Stderr,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Dir returns the log directory.
func (f *File) Dir() string { return f.dir }

// Path returns the primary log path.
func (f *File) Path() string { return filepath.Join(f.dir, PrimaryName) }

// DirePath returns the dire log path.
func (f *File) DirePath() string { return DirePath(f.dir) }

// DirePath returns the dire log path inside dir.
func DirePath(dir string) string { return filepath.Join(dir, DireName) }

// IsOpen reports whether the primary log is open.
func (f *File) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fh != nil
}

// Open opens, or reopens, the primary log.
func (f *File) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open()
}

// open closes any previous handle, appends a restart marker, re-points the
// standard descriptors and splices in the dire log. Callers hold f.mu.
func (f *File) open() error {
	if f.fh != nil {
		f.fh.Close()
		f.fh = nil
	}

	if _, err := lifecycle.EnsureDir(f.dir, 0755); err != nil {
		recordError("mkdir")
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	path := f.Path()
	fh, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		recordError("open")
		return fmt.Errorf("failed to open error log: %w", err)
	}
	f.fh = fh
	recordOpen()

	if _, err := fh.WriteString("\n\n"); err != nil {
		recordError("write")
		return fmt.Errorf("failed to write error log: %w", err)
	}
	marker := "Restarting log."
	if f.instance != "" {
		marker += " instance=" + f.instance
	}
	if err := f.logf("%s", marker); err != nil {
		return err
	}

	if f.stdio != nil {
		if err := f.stdio.ReopenStdout(path); err != nil {
			recordError("redirect")
			return fmt.Errorf("failed to redirect stdout: %w", err)
		}
		if err := f.stdio.ReopenStderr(path); err != nil {
			recordError("redirect")
			return fmt.Errorf("failed to redirect stderr: %w", err)
		}
	}

	return f.recoverDire()
}

// recoverDire copies a non-empty dire log into the primary log between
// recovery markers, then removes it. Callers hold f.mu.
func (f *File) recoverDire() error {
	dire := f.DirePath()
	data, err := os.ReadFile(dire)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		recordError("recover")
		return fmt.Errorf("failed to read dire log: %w", err)
	}

	if len(data) > 0 {
		if err := f.logf("Recovered dire log:"); err != nil {
			return err
		}
		if data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
		if _, err := f.fh.Write(data); err != nil {
			recordError("write")
			return fmt.Errorf("failed to write recovered dire log: %w", err)
		}
		if err := f.logf("End of recovered dire log."); err != nil {
			return err
		}
		recordRecovered(len(data))
	}

	if err := os.Remove(dire); err != nil && !errors.Is(err, fs.ErrNotExist) {
		recordError("recover")
		return fmt.Errorf("failed to remove dire log: %w", err)
	}
	return nil
}

// Write appends p to the primary log, or to the fallback writer when the log
// is not open.
func (f *File) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fh == nil {
		return f.fallback.Write(p)
	}
	return f.fh.Write(p)
}

// Logf writes a timestamped line: "[YYYY-MM-DD HH:MM:SS] message".
func (f *File) Logf(format string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logf(format, args...)
}

func (f *File) logf(format string, args ...any) error {
	line := Timestamp(f.now()) + " " + fmt.Sprintf(format, args...)
	if line[len(line)-1] != '\n' {
		line += "\n"
	}

	var w io.Writer = f.fallback
	if f.fh != nil {
		w = f.fh
	}
	if _, err := io.WriteString(w, line); err != nil {
		recordError("write")
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return nil
}

// Timestamp formats t in UTC as "[YYYY-MM-DD HH:MM:SS]".
func Timestamp(t time.Time) string {
	return "[" + t.UTC().Format(timestampLayout) + "]"
}

// Rotate renames the primary log to a dated name for the day before now and
// opens a fresh primary log. It returns the new name of the old log, or ""
// when there was no primary log to rename.
func (f *File) Rotate() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var rotated string
	if _, err := os.Stat(f.Path()); err == nil {
		if err := f.logf("Rotating log."); err != nil {
			return "", err
		}
		target, err := RotatedName(f.dir, f.now().Add(-24*time.Hour))
		if err != nil {
			recordError("rotate")
			return "", err
		}
		if err := os.Rename(f.Path(), target); err != nil {
			recordError("rotate")
			return "", fmt.Errorf("failed to rename error log: %w", err)
		}
		rotated = target
	}

	if err := f.open(); err != nil {
		return rotated, err
	}
	return rotated, nil
}

// RotatedName returns the first unused name of the form
// error-<YYYY-MM-DD>.log, error-<YYYY-MM-DD>-1.log, ... in dir for day.
func RotatedName(dir string, day time.Time) (string, error) {
	base := RotatedPrefix + "-" + day.UTC().Format(dateLayout)
	for i := 0; ; i++ {
		name := base
		if i != 0 {
			name += "-" + strconv.Itoa(i)
		}
		path := filepath.Join(dir, name+".log")

		_, err := os.Lstat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}
}

// ReopenIfMissing reopens the primary log when it is open but its path no
// longer exists. It reports whether a reopen happened.
func (f *File) ReopenIfMissing() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fh == nil {
		return false, nil
	}
	if _, err := os.Stat(f.Path()); !errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err := f.open(); err != nil {
		return false, err
	}
	return true, nil
}

// Close closes the primary log. Later writes go to the fallback writer.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fh == nil {
		return nil
	}
	err := f.fh.Close()
	f.fh = nil
	return err
}
