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

package constants

import "time"

const (
	// DefaultTaskName is the name of the repeating task that drives the monitor.
	// It is used as the instance label for metrics and as the log component suffix.
	DefaultTaskName = "monitor"

	// TickOverrunCriticalFactor defines when a tick that ran longer than the
	// interval is logged as an error instead of a warning.
	// Ticks never overlap, so an overrun only delays the next tick.
	TickOverrunCriticalFactor = 2

	// ShutdownTimeout bounds how long the HTTP endpoint may take to shut down.
	// The task itself is never force-stopped, see task.RepeatingTask.Stop.
	ShutdownTimeout = 3 * time.Second
)
