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

package daemon

import (
	"os"

	"golang.org/x/sys/unix"
)

type systemIdentity struct{}

func (systemIdentity) Chown(path string, uid, gid int) error { return os.Lchown(path, uid, gid) }
func (systemIdentity) Setgroups(gids []int) error            { return unix.Setgroups(gids) }
func (systemIdentity) Setgid(gid int) error                  { return unix.Setgid(gid) }
func (systemIdentity) Setuid(uid int) error                  { return unix.Setuid(uid) }
