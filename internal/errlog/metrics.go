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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// errlogOpens tracks opens of the primary log
	errlogOpens = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "daemonkit_errlog_opens_total",
			Help: "Total opens and reopens of the primary error log",
		},
	)

	// errlogRotations tracks completed rotations
	errlogRotations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "daemonkit_errlog_rotations_total",
			Help: "Total rotations of the primary error log",
		},
	)

	// errlogRecoveredBytes tracks dire log bytes spliced into the primary log
	errlogRecoveredBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "daemonkit_errlog_recovered_bytes_total",
			Help: "Total bytes recovered from the dire log",
		},
	)

	// errlogExternalReopens tracks reopens after outside removal or rename
	errlogExternalReopens = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "daemonkit_errlog_external_reopens_total",
			Help: "Total reopens triggered by external removal or rename of the error log",
		},
	)

	// errlogErrors tracks failures by operation
	errlogErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daemonkit_errlog_errors_total",
			Help: "Total error log failures by operation",
		},
		[]string{"op"},
	)

	// errlogNextRotation is the unix time of the next scheduled rotation
	errlogNextRotation = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "daemonkit_errlog_next_rotation_timestamp_seconds",
			Help: "Unix time of the next scheduled error log rotation",
		},
	)
)

func recordOpen() {
	errlogOpens.Inc()
}

func recordRotation() {
	errlogRotations.Inc()
}

func recordRecovered(n int) {
	errlogRecoveredBytes.Add(float64(n))
}

func recordExternalReopen() {
	errlogExternalReopens.Inc()
}

func recordError(op string) {
	errlogErrors.WithLabelValues(op).Inc()
}
