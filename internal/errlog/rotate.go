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

package errlog

import (
	"log/slog"
	"sync"
	"time"
)

// RotationSlop is how long after UTC midnight a rotation fires.
const RotationSlop = 30 * time.Second

// NextRotation returns RotationSlop past the start of the UTC day after now.
func NextRotation(now time.Time) time.Time {
	t := now.UTC().Add(24 * time.Hour)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Add(RotationSlop)
}

// Rotator rotates a File once a day. Each firing computes the next deadline
// from the current time, so rotations do not drift.
type Rotator struct {
	file   *File
	logger *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	next    time.Time
	stopped bool
}

// NewRotator creates a rotator for file. Nothing is scheduled until Start.
func NewRotator(file *File, logger *slog.Logger) *Rotator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rotator{
		file:   file,
		logger: logger.With(slog.String("component", "errlog")),
	}
}

// Start schedules the first rotation.
func (r *Rotator) Start() {
	r.schedule()
}

// Next returns the time of the scheduled rotation, or the zero time.
func (r *Rotator) Next() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.next
}

func (r *Rotator) schedule() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return
	}
	now := r.file.now()
	r.next = NextRotation(now)
	r.timer = time.AfterFunc(r.next.Sub(now), r.fire)
	errlogNextRotation.Set(float64(r.next.Unix()))
}

func (r *Rotator) fire() {
	if _, err := r.Rotate(); err != nil {
		r.logger.Error("log rotation failed", "error", err)
	}
	r.schedule()
}

// Rotate rotates the file immediately. It does not change the schedule.
func (r *Rotator) Rotate() (string, error) {
	rotated, err := r.file.Rotate()
	if err != nil {
		return rotated, err
	}
	recordRotation()
	if rotated != "" {
		r.logger.Debug("rotated error log", "path", rotated)
	}
	return rotated, nil
}

// Stop cancels the schedule. A rotation already running completes.
func (r *Rotator) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
	}
}
