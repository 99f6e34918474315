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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/united-manufacturing-hub/sysmon/pkg/metrics"
	"github.com/united-manufacturing-hub/sysmon/pkg/service/hostmetrics"
)

const subsystem = "host"

var (
	cpuUsagePercent = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metrics.Namespace,
		Subsystem: subsystem,
		Name:      "cpu_usage_percent",
		Help:      "CPU utilization over the last sampling window (0-100)",
	})

	memoryUsagePercent = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metrics.Namespace,
		Subsystem: subsystem,
		Name:      "memory_usage_percent",
		Help:      "Virtual memory utilization (0-100)",
	})

	memoryUsedBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metrics.Namespace,
		Subsystem: subsystem,
		Name:      "memory_used_bytes",
		Help:      "Used memory in bytes",
	})

	memoryTotalBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metrics.Namespace,
		Subsystem: subsystem,
		Name:      "memory_total_bytes",
		Help:      "Total memory in bytes",
	})

	diskUsagePercent = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metrics.Namespace,
		Subsystem: subsystem,
		Name:      "disk_usage_percent",
		Help:      "Filesystem utilization per mount point (0-100)",
	}, []string{"path"})

	networkBytesSent = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metrics.Namespace,
		Subsystem: subsystem,
		Name:      "network_bytes_sent",
		Help:      "Bytes sent over all interfaces since boot",
	})

	networkBytesRecv = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metrics.Namespace,
		Subsystem: subsystem,
		Name:      "network_bytes_recv",
		Help:      "Bytes received over all interfaces since boot",
	})

	loadPercent = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metrics.Namespace,
		Subsystem: subsystem,
		Name:      "load_percent",
		Help:      "Load average as percent of logical cores",
	}, []string{"window"})

	temperatureCelsius = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metrics.Namespace,
		Subsystem: subsystem,
		Name:      "temperature_celsius",
		Help:      "Hardware sensor temperature",
	}, []string{"sensor"})

	bootTimeSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metrics.Namespace,
		Subsystem: subsystem,
		Name:      "boot_time_seconds",
		Help:      "Host boot time as a unix timestamp",
	})

	thresholdExceeded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: subsystem,
		Name:      "threshold_exceeded_total",
		Help:      "Number of ticks in which a metric was above its threshold",
	}, []string{"metric"})
)

// recordSample exports the readings that were taken. Failed readings keep their last value.
// Disk and sensor series are replaced as a whole so that vanished mounts and sensors are dropped.
func recordSample(sample hostmetrics.Sample) {
	if sample.BootTime != nil {
		bootTimeSeconds.Set(float64(sample.BootTime.Unix()))
	}

	if sample.CPUPercent != nil {
		cpuUsagePercent.Set(*sample.CPUPercent)
	}

	if sample.Memory != nil {
		memoryUsagePercent.Set(sample.Memory.Percent)
		memoryUsedBytes.Set(float64(sample.Memory.UsedBytes))
		memoryTotalBytes.Set(float64(sample.Memory.TotalBytes))
	}

	if sample.Disks != nil {
		diskUsagePercent.Reset()
	}

	for _, d := range sample.Disks {
		diskUsagePercent.WithLabelValues(d.Path).Set(d.Percent)
	}

	if sample.Network != nil {
		networkBytesSent.Set(float64(sample.Network.BytesSent))
		networkBytesRecv.Set(float64(sample.Network.BytesRecv))
	}

	if sample.Load != nil {
		loadPercent.WithLabelValues("1m").Set(sample.Load.Percent(sample.Load.Load1))
		loadPercent.WithLabelValues("5m").Set(sample.Load.Percent(sample.Load.Load5))
		loadPercent.WithLabelValues("15m").Set(sample.Load.Percent(sample.Load.Load15))
	}

	if sample.Temperatures != nil {
		temperatureCelsius.Reset()
	}

	for sensor, celsius := range sample.Temperatures {
		temperatureCelsius.WithLabelValues(sensor).Set(celsius)
	}
}
