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
)

// Spawner starts detached background processes.
type Spawner struct {
	// Env is the environment passed to the child process.
	Env []string

	// Dir is the child's working directory.
	Dir string
}

// NewSpawner creates a spawner that passes the current environment and
// starts children in the root directory.
func NewSpawner() *Spawner {
	return &Spawner{
		Env: os.Environ(),
		Dir: "/",
	}
}

// WithEnv overrides the child environment.
func (s *Spawner) WithEnv(env []string) *Spawner {
	s.Env = env
	return s
}

// WithDir overrides the child working directory.
func (s *Spawner) WithDir(dir string) *Spawner {
	s.Dir = dir
	return s
}
