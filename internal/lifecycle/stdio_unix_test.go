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
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"
)

// spareFD returns a descriptor the test owns, standing in for stdout.
func spareFD(t *testing.T) int {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "fd")
	if err != nil {
		t.Fatalf("CreateTemp() error = %v", err)
	}
	fd, err := unix.Dup(int(f.Fd()))
	f.Close()
	if err != nil {
		t.Fatalf("Dup() error = %v", err)
	}
	t.Cleanup(func() { unix.Close(fd) })
	return fd
}

func TestRedirect(t *testing.T) {
	t.Run("appends to the target file", func(t *testing.T) {
		target := spareFD(t)
		path := filepath.Join(t.TempDir(), "dire-error.log")
		if err := os.WriteFile(path, []byte("before\n"), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		if err := redirect(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, target); err != nil {
			t.Fatalf("redirect() error = %v", err)
		}
		if _, err := unix.Write(target, []byte("after\n")); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if string(data) != "before\nafter\n" {
			t.Errorf("file = %q, want %q", data, "before\nafter\n")
		}
	})

	t.Run("can be repointed", func(t *testing.T) {
		target := spareFD(t)
		dir := t.TempDir()
		first := filepath.Join(dir, "first.log")
		second := filepath.Join(dir, "second.log")
		flag := os.O_WRONLY | os.O_CREATE | os.O_APPEND

		if err := redirect(first, flag, target); err != nil {
			t.Fatalf("redirect(first) error = %v", err)
		}
		unix.Write(target, []byte("one\n"))
		if err := redirect(second, flag, target); err != nil {
			t.Fatalf("redirect(second) error = %v", err)
		}
		unix.Write(target, []byte("two\n"))

		a, _ := os.ReadFile(first)
		b, _ := os.ReadFile(second)
		if string(a) != "one\n" || string(b) != "two\n" {
			t.Errorf("first = %q, second = %q", a, b)
		}
	})

	t.Run("fails for unwritable path", func(t *testing.T) {
		target := spareFD(t)
		err := redirect(filepath.Join(t.TempDir(), "missing", "x.log"), os.O_WRONLY|os.O_APPEND, target)
		if err == nil {
			t.Error("redirect() to missing directory succeeded, want error")
		}
	})
}
