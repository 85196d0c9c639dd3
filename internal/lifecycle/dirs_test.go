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
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestEnsureDir(t *testing.T) {
	t.Run("creates missing ancestors", func(t *testing.T) {
		base := t.TempDir()
		dir := filepath.Join(base, "a", "b", "c")

		created, err := EnsureDir(dir, 0755)
		if err != nil {
			t.Fatalf("EnsureDir() error = %v", err)
		}

		want := []string{
			filepath.Join(base, "a"),
			filepath.Join(base, "a", "b"),
			dir,
		}
		if !reflect.DeepEqual(created, want) {
			t.Errorf("EnsureDir() created = %v, want %v", created, want)
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("directory not created: %v", err)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		dir := t.TempDir()
		created, err := EnsureDir(dir, 0755)
		if err != nil {
			t.Fatalf("EnsureDir() error = %v", err)
		}
		if len(created) != 0 {
			t.Errorf("EnsureDir() on existing dir created %v", created)
		}
	})

	t.Run("rejects a file in the way", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		if _, err := EnsureDir(filepath.Join(path, "sub"), 0755); err == nil {
			t.Error("EnsureDir() through a file succeeded, want error")
		}
	})
}
