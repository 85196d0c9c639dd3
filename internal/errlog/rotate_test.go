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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRotation(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "midday",
			now:  time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
			want: time.Date(2024, 3, 16, 0, 0, 30, 0, time.UTC),
		},
		{
			name: "just before midnight",
			now:  time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC),
			want: time.Date(2024, 3, 16, 0, 0, 30, 0, time.UTC),
		},
		{
			name: "just after a rotation",
			now:  time.Date(2024, 3, 16, 0, 0, 31, 0, time.UTC),
			want: time.Date(2024, 3, 17, 0, 0, 30, 0, time.UTC),
		},
		{
			name: "end of year",
			now:  time.Date(2024, 12, 31, 8, 0, 0, 0, time.UTC),
			want: time.Date(2025, 1, 1, 0, 0, 30, 0, time.UTC),
		},
		{
			name: "non-UTC input",
			now:  time.Date(2024, 3, 16, 1, 0, 0, 0, time.FixedZone("UTC+2", 2*60*60)),
			want: time.Date(2024, 3, 16, 0, 0, 30, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(NextRotation(tt.now)), "got %v", NextRotation(tt.now))
		})
	}
}

func TestRotator_ScheduleAndStop(t *testing.T) {
	f := New(t.TempDir(), WithClock(fixedClock))
	r := NewRotator(f, nil)

	assert.True(t, r.Next().IsZero())
	r.Start()
	assert.Equal(t, time.Date(2024, 3, 16, 0, 0, 30, 0, time.UTC), r.Next())

	r.Stop()
	r.schedule()
	assert.Equal(t, time.Date(2024, 3, 16, 0, 0, 30, 0, time.UTC), r.Next(), "stopped rotator does not reschedule")
}

func TestRotator_Rotate(t *testing.T) {
	dir := t.TempDir()
	f := New(dir, WithClock(fixedClock))
	require.NoError(t, f.Open())
	defer f.Close()

	r := NewRotator(f, nil)
	rotated, err := r.Rotate()
	require.NoError(t, err)
	assert.FileExists(t, rotated)
	assert.FileExists(t, f.Path())
}
