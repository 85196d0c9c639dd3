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

package shared

import (
	"github.com/tombee/daemonkit/internal/daemon"
)

// Exit codes for the status command, following the LSB init script
// conventions.
const (
	ExitRunning    = 0
	ExitDeadPID    = 1
	ExitNotRunning = 3
	ExitUnknown    = 4
)

// NewStatusError creates an error carrying a status exit code.
func NewStatusError(code int, msg string) *daemon.ExitError {
	return &daemon.ExitError{
		Code:    code,
		Message: msg,
	}
}
