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

// Package hostmetrics reads point-in-time host readings: CPU, memory, disks,
// network counters, load, per-process memory and hardware temperatures.
package hostmetrics

import (
	"context"
	"time"
)

// Provider supplies host readings. Every call blocks and may fail on its own;
// a failure of one reading says nothing about the others.
type Provider interface {
	// CPUPercent returns system-wide CPU utilization in percent over the sampling window.
	CPUPercent(ctx context.Context) (float64, error)
	Memory(ctx context.Context) (*MemoryUsage, error)
	// Disks may return partial results together with a non-nil error.
	Disks(ctx context.Context) ([]DiskUsage, error)
	Network(ctx context.Context) (*NetworkCounters, error)
	Load(ctx context.Context) (*LoadAverage, error)
	// TopProcesses returns at most n processes ranked by RankByMemory.
	TopProcesses(ctx context.Context, n int) ([]ProcessMemory, error)
	// Temperatures returns ErrTemperatureUnsupported where the platform has no sensor API.
	// An empty map means the API works but no sensor was found.
	Temperatures(ctx context.Context) (map[string]float64, error)
	BootTime(ctx context.Context) (time.Time, error)
}

// MemoryUsage is virtual memory utilization.
type MemoryUsage struct {
	Percent        float64 `json:"percent"`
	UsedBytes      uint64  `json:"used_bytes"`
	TotalBytes     uint64  `json:"total_bytes"`
	AvailableBytes uint64  `json:"available_bytes"`
}

// DiskUsage is the utilization of one mounted filesystem.
type DiskUsage struct {
	Path       string  `json:"path"`
	Percent    float64 `json:"percent"`
	UsedBytes  uint64  `json:"used_bytes"`
	TotalBytes uint64  `json:"total_bytes"`
	FreeBytes  uint64  `json:"free_bytes"`
}

// NetworkCounters are cumulative counters summed over all interfaces since boot.
type NetworkCounters struct {
	BytesSent   uint64 `json:"bytes_sent"`
	BytesRecv   uint64 `json:"bytes_recv"`
	PacketsSent uint64 `json:"packets_sent"`
	PacketsRecv uint64 `json:"packets_recv"`
	ErrIn       uint64 `json:"err_in"`
	ErrOut      uint64 `json:"err_out"`
	DropIn      uint64 `json:"drop_in"`
	DropOut     uint64 `json:"drop_out"`
}

// LoadAverage holds the 1, 5 and 15 minute load averages.
type LoadAverage struct {
	Load1        float64 `json:"load1"`
	Load5        float64 `json:"load5"`
	Load15       float64 `json:"load15"`
	LogicalCores int     `json:"logical_cores"`
}

// Percent expresses a load value relative to the number of logical cores.
func (l *LoadAverage) Percent(load float64) float64 {
	if l == nil || l.LogicalCores <= 0 {
		return 0
	}

	return load / float64(l.LogicalCores) * 100
}

// ProcessMemory is one process with its share of physical memory.
type ProcessMemory struct {
	Name          string  `json:"name"`
	MemoryPercent float64 `json:"memory_percent"`
	PID           int32   `json:"pid"`
}

// Sample is everything read during one tick. Readings that failed are nil or empty.
type Sample struct {
	Timestamp    time.Time          `json:"timestamp"`
	BootTime     *time.Time         `json:"boot_time,omitempty"`
	CPUPercent   *float64           `json:"cpu_percent,omitempty"`
	Memory       *MemoryUsage       `json:"memory,omitempty"`
	Network      *NetworkCounters   `json:"network,omitempty"`
	Load         *LoadAverage       `json:"load,omitempty"`
	Temperatures map[string]float64 `json:"temperatures,omitempty"`
	Disks        []DiskUsage        `json:"disks,omitempty"`
	Processes    []ProcessMemory    `json:"processes,omitempty"`
}
