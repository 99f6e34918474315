// Copyright 2025 UMH Systems GmbH
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

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	// Component labels.
	ComponentRepeatingTask = "repeating_task"
	ComponentHostMetrics   = "host_metrics"
	ComponentMetricsServer = "metrics_server"
)

const (
	// Namespace is shared by every sysmon metric.
	Namespace = "sysmon"
	subsystem = "core"
)

var (
	errorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: subsystem,
			Name:      "errors_total",
			Help:      "Total number of errors encountered by component",
		},
		[]string{"component", "instance"},
	)

	tickDuration = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: Namespace,
			Subsystem: subsystem,
			Name:      "tick_duration_milliseconds",
			Help:      "Time taken by one tick of a repeating task (in milliseconds)",
			Objectives: map[float64]float64{
				0.5:  0.01,
				0.9:  0.01,
				0.99: 0.01,
			},
		},
		[]string{"task"},
	)

	tickOverruns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: subsystem,
			Name:      "tick_overruns_total",
			Help:      "Number of ticks that took longer than the task interval",
		},
		[]string{"task"},
	)

	taskState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: subsystem,
			Name:      "task_state",
			Help:      "Current state of a repeating task (0=Idle, 1=Running, 2=StopRequested, 3=Stopped, -1=Unknown)",
		},
		[]string{"task"},
	)
)

// IncErrorCountAndLog increments the error counter and logs at debug level if a logger is given.
func IncErrorCountAndLog(component, instance string, err error, log *zap.SugaredLogger) {
	IncErrorCount(component, instance)

	if log != nil {
		log.Debugf("Component %s instance %s failed: %v", component, instance, err)
	}
}

// IncErrorCount increments the error counter for a component.
func IncErrorCount(component, instance string) {
	errorCounter.WithLabelValues(component, instance).Inc()
}

// InitErrorCounter exposes a zero-valued series so dashboards see the component before its first error.
func InitErrorCounter(component, instance string) {
	errorCounter.WithLabelValues(component, instance).Add(0)
}

// ObserveTickTime records the duration of one tick.
func ObserveTickTime(task string, duration time.Duration) {
	tickDuration.WithLabelValues(task).Observe(float64(duration.Milliseconds()))
}

// IncTickOverrun counts a tick that did not finish within its interval.
func IncTickOverrun(task string) {
	tickOverruns.WithLabelValues(task).Inc()
}

// UpdateTaskState sets the task_state gauge from a state name.
func UpdateTaskState(task, state string) {
	taskState.WithLabelValues(task).Set(getStateValue(state))
}

func getStateValue(state string) float64 {
	switch state {
	case "idle":
		return 0
	case "running":
		return 1
	case "stop_requested":
		return 2
	case "stopped":
		return 3
	default:
		return -1
	}
}
