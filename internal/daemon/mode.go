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

package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ModeFlag is the prefix of the argument that selects the daemon mode.
const ModeFlag = "--daemon="

// Mode is the role of the current process.
type Mode int

const (
	// ModeForeground runs in place without detaching.
	ModeForeground Mode = iota
	// ModeParent spawns the child and exits.
	ModeParent
	// ModeChild is the detached worker.
	ModeChild
)

func (m Mode) String() string {
	switch m {
	case ModeParent:
		return "parent"
	case ModeChild:
		return "child"
	case ModeForeground:
		return "foreground"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "parent":
		return ModeParent, nil
	case "child":
		return ModeChild, nil
	case "foreground":
		return ModeForeground, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// InvocationArgs is a parsed daemon argument list.
type InvocationArgs struct {
	Executable string
	Script     string
	Mode       Mode
	// Args holds the remaining arguments without the mode flag.
	Args []string
}

// Argv rebuilds {Executable, Script, Args...}.
func (a InvocationArgs) Argv() []string {
	argv := make([]string, 0, len(a.Args)+2)
	argv = append(argv, a.Executable, a.Script)
	return append(argv, a.Args...)
}

// DefaultArgv returns the current process's arguments in the
// {executable, script, args...} shape: the resolved binary path, the name
// the program was invoked as, then the remaining arguments.
func DefaultArgv() ([]string, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable: %w", err)
	}
	argv := make([]string, 0, len(os.Args)+1)
	argv = append(argv, exe)
	return append(argv, os.Args...), nil
}

// ParseArgs determines the mode from argv, which must be of the form
// {executable, script, args...}. Only the leading run of flags after the
// script is scanned: the scan stops at "--", an empty argument or the first
// non-flag. The first --daemon=<mode> found is removed from Args. Without
// one the mode is ModeForeground.
func ParseArgs(argv []string) (InvocationArgs, error) {
	if len(argv) < 2 {
		return InvocationArgs{}, fmt.Errorf("%w: got %d", ErrTooFewArguments, len(argv))
	}

	rest := argv[2:]
	mode := ModeForeground
	modeIndex := -1

	for i, arg := range rest {
		if arg == "--" || arg == "" || arg[0] != '-' {
			break
		}
		if value, ok := strings.CutPrefix(arg, ModeFlag); ok {
			m, err := ParseMode(value)
			if err != nil {
				return InvocationArgs{}, err
			}
			mode = m
			modeIndex = i
			break
		}
	}

	args := make([]string, 0, len(rest))
	for i, arg := range rest {
		if i != modeIndex {
			args = append(args, arg)
		}
	}

	return InvocationArgs{
		Executable: argv[0],
		Script:     argv[1],
		Mode:       mode,
		Args:       args,
	}, nil
}

// ProductNameFromScript derives a product name from a script path: the base
// name up to its first dot. When that is empty the path is returned as is.
func ProductNameFromScript(script string) string {
	base := filepath.Base(script)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	if base == "" || base == "/" {
		return script
	}
	return base
}
