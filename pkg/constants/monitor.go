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
	// DefaultTopProcesses is how many processes are listed per tick, ranked by memory.
	DefaultTopProcesses = 5

	// DefaultCPUSampleWindow is the window over which CPU utilization is measured.
	// The tick blocks for this long while sampling.
	DefaultCPUSampleWindow = time.Second

	// MaxPercent is the upper bound for any percentage threshold.
	MaxPercent = 100.0

	// BootTimeLayout renders the boot time in log lines.
	BootTimeLayout = "2006-01-02 15:04:05 MST"

	// BytesPerGiB is used when rendering byte counts in log lines.
	BytesPerGiB = 1024 * 1024 * 1024
)

const (
	// Metric names as they appear in log lines and metric labels
	MetricCPU         = "CPU"
	MetricMemory      = "Memory"
	MetricDisk        = "Disk"
	MetricNetwork     = "Network"
	MetricLoad        = "Load"
	MetricProcesses   = "Processes"
	MetricTemperature = "Temperature"
	MetricBootTime    = "BootTime"
)

const (
	// DockerDesktopSignature is present in /proc/version when running inside the
	// LinuxKit VM used by Docker Desktop on macOS.
	DockerDesktopSignature = "linuxkit"

	// ProcVersionPath is read once to detect the platform.
	ProcVersionPath = "/proc/version"
)
