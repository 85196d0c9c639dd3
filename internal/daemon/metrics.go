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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// setupSteps tracks setup steps by outcome
	setupSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daemonkit_setup_steps_total",
			Help: "Total daemon setup steps by step and result",
		},
		[]string{"step", "result"},
	)

	// privilegeFailures tracks ignored privilege drop failures
	privilegeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daemonkit_privilege_drop_failures_total",
			Help: "Total ignored privilege drop failures by operation",
		},
		[]string{"op"},
	)

	// lockHeld is 1 while this process holds its instance lock
	lockHeld = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "daemonkit_lock_held",
			Help: "Whether this process holds its instance lock",
		},
	)

	// modeInfo reports the daemon mode
	modeInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "daemonkit_mode_info",
			Help: "Daemon mode of this process",
		},
		[]string{"mode"},
	)
)

func recordStep(step, result string) {
	setupSteps.WithLabelValues(step, result).Inc()
}

func recordPrivilegeFailure(op string) {
	privilegeFailures.WithLabelValues(op).Inc()
}
