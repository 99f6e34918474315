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
	"time"

	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of Provider.
type MockProvider struct {
	mock.Mock
}

var _ Provider = (*MockProvider)(nil)

// NewMockProvider creates a new mock provider instance.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) CPUPercent(ctx context.Context) (float64, error) {
	args := m.Called(ctx)

	return args.Get(0).(float64), args.Error(1)
}

func (m *MockProvider) Memory(ctx context.Context) (*MemoryUsage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*MemoryUsage), args.Error(1)
}

func (m *MockProvider) Disks(ctx context.Context) ([]DiskUsage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]DiskUsage), args.Error(1)
}

func (m *MockProvider) Network(ctx context.Context) (*NetworkCounters, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*NetworkCounters), args.Error(1)
}

func (m *MockProvider) Load(ctx context.Context) (*LoadAverage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*LoadAverage), args.Error(1)
}

func (m *MockProvider) TopProcesses(ctx context.Context, n int) ([]ProcessMemory, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]ProcessMemory), args.Error(1)
}

func (m *MockProvider) Temperatures(ctx context.Context) (map[string]float64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(map[string]float64), args.Error(1)
}

func (m *MockProvider) BootTime(ctx context.Context) (time.Time, error) {
	args := m.Called(ctx)

	return args.Get(0).(time.Time), args.Error(1)
}

// CreateHealthySample returns readings well below the default thresholds.
func CreateHealthySample() Sample {
	cpu := 35.0
	boot := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	return Sample{
		BootTime:   &boot,
		CPUPercent: &cpu,
		Memory: &MemoryUsage{
			Percent:        25,
			UsedBytes:      1073741824, // 1 GB
			TotalBytes:     4294967296, // 4 GB
			AvailableBytes: 3221225472,
		},
		Disks: []DiskUsage{{
			Path:       "/",
			Percent:    5,
			UsedBytes:  536870912,   // 512 MB
			TotalBytes: 10737418240, // 10 GB
			FreeBytes:  10200547328,
		}},
		Network: &NetworkCounters{BytesSent: 1024, BytesRecv: 4096, PacketsSent: 10, PacketsRecv: 40, ErrIn: 1, DropIn: 2},
		Load:    &LoadAverage{Load1: 0.5, Load5: 0.4, Load15: 0.3, LogicalCores: 4},
		Processes: []ProcessMemory{
			{PID: 1, Name: "init", MemoryPercent: 0.5},
		},
		Temperatures: map[string]float64{"coretemp_package_id_0": 45},
	}
}

// CreateDegradedSample returns readings above the default thresholds.
func CreateDegradedSample() Sample {
	sample := CreateHealthySample()
	cpu := 97.0
	sample.CPUPercent = &cpu
	sample.Memory = &MemoryUsage{
		Percent:        93,
		UsedBytes:      4000000000,
		TotalBytes:     4294967296,
		AvailableBytes: 294967296,
	}
	sample.Disks = []DiskUsage{{
		Path:       "/",
		Percent:    91.3,
		UsedBytes:  9800000000,
		TotalBytes: 10737418240,
		FreeBytes:  937418240,
	}}

	return sample
}

// SetupMockForSample configures every call to return the readings in sample.
// Nil temperatures are reported as ErrTemperatureUnsupported.
func (m *MockProvider) SetupMockForSample(sample Sample) {
	cpu := 0.0
	if sample.CPUPercent != nil {
		cpu = *sample.CPUPercent
	}

	m.On("CPUPercent", mock.Anything).Return(cpu, nil)
	m.On("Memory", mock.Anything).Return(sample.Memory, nil)
	m.On("Disks", mock.Anything).Return(sample.Disks, nil)
	m.On("Network", mock.Anything).Return(sample.Network, nil)
	m.On("Load", mock.Anything).Return(sample.Load, nil)
	m.On("TopProcesses", mock.Anything, mock.Anything).Return(sample.Processes, nil)

	if sample.BootTime == nil {
		m.On("BootTime", mock.Anything).Return(time.Time{}, ErrBootTimeUnknown)
	} else {
		m.On("BootTime", mock.Anything).Return(*sample.BootTime, nil)
	}

	if sample.Temperatures == nil {
		m.On("Temperatures", mock.Anything).Return(nil, ErrTemperatureUnsupported)
	} else {
		m.On("Temperatures", mock.Anything).Return(sample.Temperatures, nil)
	}
}

// SetupMockForHealthyState configures the mock to return a healthy host.
func (m *MockProvider) SetupMockForHealthyState() {
	m.SetupMockForSample(CreateHealthySample())
}

// SetupMockForDegradedState configures the mock to return an overloaded host.
func (m *MockProvider) SetupMockForDegradedState() {
	m.SetupMockForSample(CreateDegradedSample())
}

// SetupMockForError makes every reading fail with err.
func (m *MockProvider) SetupMockForError(err error) {
	m.On("CPUPercent", mock.Anything).Return(0.0, err)
	m.On("Memory", mock.Anything).Return(nil, err)
	m.On("Disks", mock.Anything).Return(nil, err)
	m.On("Network", mock.Anything).Return(nil, err)
	m.On("Load", mock.Anything).Return(nil, err)
	m.On("TopProcesses", mock.Anything, mock.Anything).Return(nil, err)
	m.On("Temperatures", mock.Anything).Return(nil, err)
	m.On("BootTime", mock.Anything).Return(time.Time{}, err)
}
