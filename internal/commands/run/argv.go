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

package run

import (
	"strings"

	"github.com/tombee/daemonkit/internal/daemon"
)

// DaemonArgv builds the daemon argument list from the process arguments.
// Cobra accepts --daemon anywhere on the command line, but the daemon only
// reads it directly after the program name, so every --daemon=<v> and
// "--daemon <v>" pair is removed and a single canonical flag is placed at
// index 2:
//
//	{exe, args[0], --daemon=<mode>, args[1:]...}
func DaemonArgv(exe string, args []string, mode daemon.Mode) []string {
	script := exe
	var rest []string
	if len(args) > 0 {
		script = args[0]
		rest = args[1:]
	}

	argv := make([]string, 0, len(rest)+3)
	argv = append(argv, exe, script, daemon.ModeFlag+mode.String())
	return append(argv, stripFlag(rest, "daemon")...)
}

// Flag is a long flag and its value.
type Flag struct {
	Name  string
	Value string
}

// ReplaceFlags removes every --name=<v> and "--name <v>" for the given flags
// from args, keeping args[0], and adds a single --name=value for each. The
// new flags go before a "--" terminator when there is one.
func ReplaceFlags(args []string, flags []Flag) []string {
	if len(args) == 0 {
		return nil
	}

	rest := args[1:]
	for _, f := range flags {
		rest = stripFlag(rest, f.Name)
	}

	end := len(rest)
	for i, arg := range rest {
		if arg == "--" {
			end = i
			break
		}
	}

	out := make([]string, 0, len(args)+len(flags))
	out = append(out, args[0])
	out = append(out, rest[:end]...)
	for _, f := range flags {
		out = append(out, "--"+f.Name+"="+f.Value)
	}
	return append(out, rest[end:]...)
}

// stripFlag drops --name=<v> and "--name <v>" up to a "--" terminator.
func stripFlag(args []string, name string) []string {
	long := "--" + name
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if strings.HasPrefix(arg, long+"=") {
			continue
		}
		if arg == long {
			i++
			continue
		}
		out = append(out, arg)
	}
	return out
}
