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

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/united-manufacturing-hub/sysmon/pkg/constants"
	"github.com/united-manufacturing-hub/sysmon/pkg/logger"
)

// Options configures a GopsutilProvider.
type Options struct {
	// DiskPaths are the mount points to report. Empty means every mounted partition.
	DiskPaths []string
	// CPUSampleWindow is how long CPUPercent blocks while measuring.
	CPUSampleWindow time.Duration
}

// GopsutilProvider reads the host through gopsutil.
type GopsutilProvider struct {
	logger *zap.SugaredLogger

	// mounts and usage are swapped in tests.
	mounts func(ctx context.Context) ([]string, error)
	usage  func(ctx context.Context, path string) (DiskUsage, error)

	diskPaths []string
	cpuWindow time.Duration
}

var _ Provider = (*GopsutilProvider)(nil)

// NewGopsutilProvider creates a provider for the local host.
func NewGopsutilProvider(opts Options) *GopsutilProvider {
	window := opts.CPUSampleWindow
	if window <= 0 {
		window = constants.DefaultCPUSampleWindow
	}

	p := &GopsutilProvider{
		logger:    logger.For(logger.ComponentHostMetrics),
		diskPaths: opts.DiskPaths,
		cpuWindow: window,
	}
	p.mounts = p.partitionMounts
	p.usage = p.diskUsage

	return p
}

func (p *GopsutilProvider) CPUPercent(ctx context.Context) (float64, error) {
	percents, err := cpu.PercentWithContext(ctx, p.cpuWindow, false)
	if err != nil {
		return 0, fmt.Errorf("failed to sample CPU utilization: %w", err)
	}

	if len(percents) == 0 {
		return 0, ErrNoCPUReading
	}

	return percents[0], nil
}

func (p *GopsutilProvider) Memory(ctx context.Context) (*MemoryUsage, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read virtual memory: %w", err)
	}

	return &MemoryUsage{
		Percent:        vm.UsedPercent,
		UsedBytes:      vm.Used,
		TotalBytes:     vm.Total,
		AvailableBytes: vm.Available,
	}, nil
}

// Disks reports every configured path, or every mounted partition when none
// are configured. Mounts that cannot be read are skipped and their errors are
// returned next to the readable ones.
func (p *GopsutilProvider) Disks(ctx context.Context) ([]DiskUsage, error) {
	paths := p.diskPaths

	if len(paths) == 0 {
		discovered, err := p.mounts(ctx)
		if err != nil {
			return nil, err
		}

		paths = discovered
	}

	usages := make([]DiskUsage, 0, len(paths))

	var errs []error

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)

			break
		}

		usage, err := p.usage(ctx, path)
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				errs = append(errs, fmt.Errorf("permission denied for %s: %w", path, err))
			} else {
				errs = append(errs, fmt.Errorf("%s: %w", path, err))
			}

			continue
		}

		usages = append(usages, usage)
	}

	return usages, errors.Join(errs...)
}

func (p *GopsutilProvider) partitionMounts(ctx context.Context) ([]string, error) {
	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil && len(partitions) == 0 {
		return nil, fmt.Errorf("failed to list disk partitions: %w", err)
	}

	seen := make(map[string]struct{}, len(partitions))
	mounts := make([]string, 0, len(partitions))

	for _, part := range partitions {
		if _, ok := seen[part.Mountpoint]; ok {
			continue
		}

		seen[part.Mountpoint] = struct{}{}
		mounts = append(mounts, part.Mountpoint)
	}

	return mounts, nil
}

func (p *GopsutilProvider) diskUsage(ctx context.Context, path string) (DiskUsage, error) {
	if IsDockerDesktopMac() {
		return statfsUsage(path)
	}

	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return DiskUsage{}, err
	}

	return fromUsageStat(path, usage), nil
}

func fromUsageStat(path string, usage *disk.UsageStat) DiskUsage {
	return DiskUsage{
		Path:       path,
		Percent:    usage.UsedPercent,
		UsedBytes:  usage.Used,
		TotalBytes: usage.Total,
		FreeBytes:  usage.Free,
	}
}

// usageFromBlocks matches df: percent is used / (used + available to unprivileged users).
func usageFromBlocks(path string, blocks, bfree, bavail, blockSize uint64) DiskUsage {
	used := (blocks - bfree) * blockSize
	free := bavail * blockSize

	usage := DiskUsage{
		Path:       path,
		UsedBytes:  used,
		TotalBytes: blocks * blockSize,
		FreeBytes:  free,
	}

	if used+free > 0 {
		usage.Percent = float64(used) / float64(used+free) * 100
	}

	return usage
}

func (p *GopsutilProvider) Network(ctx context.Context) (*NetworkCounters, error) {
	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to read network counters: %w", err)
	}

	if len(counters) == 0 {
		return nil, ErrNoNetworkCounters
	}

	all := counters[0]

	return &NetworkCounters{
		BytesSent:   all.BytesSent,
		BytesRecv:   all.BytesRecv,
		PacketsSent: all.PacketsSent,
		PacketsRecv: all.PacketsRecv,
		ErrIn:       all.Errin,
		ErrOut:      all.Errout,
		DropIn:      all.Dropin,
		DropOut:     all.Dropout,
	}, nil
}

func (p *GopsutilProvider) Load(ctx context.Context) (*LoadAverage, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read load average: %w", err)
	}

	cores, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to count logical cores: %w", err)
	}

	return &LoadAverage{
		Load1:        avg.Load1,
		Load5:        avg.Load5,
		Load15:       avg.Load15,
		LogicalCores: cores,
	}, nil
}

// TopProcesses skips processes that exit or deny access while being read.
func (p *GopsutilProvider) TopProcesses(ctx context.Context, n int) ([]ProcessMemory, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	readings := make([]ProcessMemory, 0, len(procs))

	for _, proc := range procs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name, err := proc.NameWithContext(ctx)
		if err != nil {
			continue
		}

		percent, err := proc.MemoryPercentWithContext(ctx)
		if err != nil {
			continue
		}

		readings = append(readings, ProcessMemory{
			PID:           proc.Pid,
			Name:          name,
			MemoryPercent: float64(percent),
		})
	}

	return RankByMemory(readings, n), nil
}

// Temperatures keeps partial readings: gopsutil reports unreadable sensors as
// warnings next to the ones it could read.
func (p *GopsutilProvider) Temperatures(ctx context.Context) (map[string]float64, error) {
	stats, err := host.SensorsTemperaturesWithContext(ctx)
	if err != nil {
		if isNotImplemented(err) {
			return nil, ErrTemperatureUnsupported
		}

		if len(stats) == 0 {
			return nil, fmt.Errorf("failed to read temperature sensors: %w", err)
		}

		p.logger.Debugf("Some temperature sensors could not be read: %v", err)
	}

	readings := make(map[string]float64, len(stats))

	for _, stat := range stats {
		key := stat.SensorKey
		for i := 2; ; i++ {
			if _, taken := readings[key]; !taken {
				break
			}

			key = stat.SensorKey + "_" + strconv.Itoa(i)
		}

		readings[key] = stat.Temperature
	}

	return readings, nil
}

func (p *GopsutilProvider) BootTime(ctx context.Context) (time.Time, error) {
	secs, err := host.BootTimeWithContext(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read boot time: %w", err)
	}

	if secs == 0 {
		return time.Time{}, ErrBootTimeUnknown
	}

	return time.Unix(int64(secs), 0), nil
}

func isNotImplemented(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "not implemented")
}
