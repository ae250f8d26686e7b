// metrics.go
//
// Matching data service for founders and investors
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of napkins.
// napkins is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// napkins is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with napkins.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package observability

import (
	"errors"
	"time"

	"github.com/localnerve/napkins/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// transitions counts connection lifecycle actions.
	// Labels: action, result (ok, validation, forbidden, not_found, conflict, unavailable, partial, error)
	transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "napkins",
		Subsystem: "connection",
		Name:      "transitions_total",
		Help:      "Total connection lifecycle actions by outcome",
	}, []string{"action", "result"})

	// messages counts appended messages.
	// Labels: type (message type), result
	messages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "napkins",
		Subsystem: "message",
		Name:      "appended_total",
		Help:      "Total messages appended to connections",
	}, []string{"type", "result"})

	// projectionLatency measures read-side view assembly.
	// Labels: view
	projectionLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "napkins",
		Subsystem: "projection",
		Name:      "latency_seconds",
		Help:      "Time to assemble a read-side view",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"view"})
)

// Result maps an operation error onto a metric label
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, types.ErrPartialFailure):
		return "partial"
	case errors.Is(err, types.ErrValidation):
		return "validation"
	case errors.Is(err, types.ErrForbidden):
		return "forbidden"
	case errors.Is(err, types.ErrNotFound):
		return "not_found"
	case errors.Is(err, types.ErrConflict):
		return "conflict"
	case errors.Is(err, types.ErrRemoteUnavailable):
		return "unavailable"
	}
	return "error"
}

// RecordTransition counts one connection action
func RecordTransition(action string, err error) {
	transitions.WithLabelValues(action, Result(err)).Inc()
}

// RecordMessage counts one message append
func RecordMessage(messageType string, err error) {
	messages.WithLabelValues(messageType, Result(err)).Inc()
}

// ObserveProjection records how long a view took since start
func ObserveProjection(view string, start time.Time) {
	projectionLatency.WithLabelValues(view).Observe(time.Since(start).Seconds())
}
