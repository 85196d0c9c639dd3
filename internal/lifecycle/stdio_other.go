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

//go:build !unix

package lifecycle

import "errors"

// SystemStdio cannot redirect descriptors without dup2.

func (SystemStdio) CloseStdin() error         { return errors.ErrUnsupported }
func (SystemStdio) CloseStdout() error        { return errors.ErrUnsupported }
func (SystemStdio) CloseStderr() error        { return errors.ErrUnsupported }
func (SystemStdio) ReopenStdout(string) error { return errors.ErrUnsupported }
func (SystemStdio) ReopenStderr(string) error { return errors.ErrUnsupported }
