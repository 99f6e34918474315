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

package monitor

import (
	"errors"
	"fmt"
)

// ErrNoProvider is returned by Tick when the monitor has no provider.
var ErrNoProvider = errors.New("monitor has no metrics provider")

// MetricFetchError wraps a failed reading. It is logged and counted, never returned from Tick.
type MetricFetchError struct {
	Err    error
	Metric string
}

func (e *MetricFetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s metrics: %v", e.Metric, e.Err)
}

func (e *MetricFetchError) Unwrap() error {
	return e.Err
}

// Thresholds are the warning levels in percent. A reading strictly above its
// threshold raises a warning.
type Thresholds struct {
	CPUPercent    float64 `yaml:"cpu_usage"`
	MemoryPercent float64 `yaml:"memory_usage"`
	DiskPercent   float64 `yaml:"disk_usage"`
}
