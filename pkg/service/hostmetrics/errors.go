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

package hostmetrics

import "errors"

var (
	// ErrTemperatureUnsupported means the platform exposes no temperature sensors API.
	ErrTemperatureUnsupported = errors.New("temperature monitoring not supported on this system")

	// ErrNoCPUReading is returned when the CPU sampler yields no value.
	ErrNoCPUReading = errors.New("no CPU utilization reading")

	// ErrNoNetworkCounters is returned when no interface counters are available.
	ErrNoNetworkCounters = errors.New("no network counters")

	// ErrBootTimeUnknown is returned when the platform reports no boot time.
	ErrBootTimeUnknown = errors.New("boot time unknown")
)
