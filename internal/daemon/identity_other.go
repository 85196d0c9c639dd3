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

package daemon

import "errors"

// systemIdentity cannot switch identity here. SetUserAndGroup swallows the
// errors, so setup carries on as the current user.
type systemIdentity struct{}

func (systemIdentity) Chown(string, int, int) error { return errors.ErrUnsupported }
func (systemIdentity) Setgroups([]int) error        { return errors.ErrUnsupported }
func (systemIdentity) Setgid(int) error             { return errors.ErrUnsupported }
func (systemIdentity) Setuid(int) error             { return errors.ErrUnsupported }
