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
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrInvalidMode is returned when --daemon= carries an unknown mode.
	ErrInvalidMode = errors.New("invalid daemon mode")

	// ErrTooFewArguments is returned when the argument list lacks the
	// executable or the script.
	ErrTooFewArguments = errors.New("too few arguments for daemon invocation")

	// ErrMissingSetupInfo is returned when ProcessInfo lacks a required field.
	ErrMissingSetupInfo = errors.New("missing setup info")

	// ErrAlreadySetup is returned when the mode is set a second time.
	ErrAlreadySetup = errors.New("daemon mode already set")

	// ErrLockHeld is returned when another process holds the instance lock.
	ErrLockHeld = errors.New("instance lock held by another process")

	// ErrRootMain wraps failures of ProcessInfo.RootMain.
	ErrRootMain = errors.New("root main failed")

	// ErrLogSetup wraps failures to bring up the primary log.
	ErrLogSetup = errors.New("log setup failed")
)

// Exit codes used by setup failures.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// ExitError is an error that carries a process exit code.
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

func newExitError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitFailure,
		Message: msg,
		Cause:   cause,
	}
}

// ExitCode returns the exit code carried by err: 0 for nil, the ExitError
// code when one is in the chain, and ExitFailure otherwise.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// osExit is replaced in tests.
var osExit = os.Exit

// HandleExit prints err to stderr and exits with its code. It returns
// without doing anything when err is nil.
func HandleExit(err error) {
	handleExit(os.Stderr, err)
}

func handleExit(w io.Writer, err error) {
	if err == nil {
		return
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintln(w, "Error:", msg)
	}
	osExit(ExitCode(err))
}
