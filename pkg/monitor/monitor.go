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

// Package monitor turns one set of host readings into log lines: an INFO line
// per reading and a WARNING for every value strictly above its threshold.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/united-manufacturing-hub/sysmon/pkg/constants"
	"github.com/united-manufacturing-hub/sysmon/pkg/logger"
	"github.com/united-manufacturing-hub/sysmon/pkg/metrics"
	"github.com/united-manufacturing-hub/sysmon/pkg/service/hostmetrics"
)

const tracerName = "github.com/united-manufacturing-hub/sysmon/pkg/monitor"

// Monitor samples the host once per Tick.
type Monitor struct {
	provider   hostmetrics.Provider
	log        *zap.SugaredLogger
	tracer     trace.Tracer
	clock      clock.Clock
	thresholds Thresholds
	topN       int
}

// Option customizes a Monitor.
type Option func(*Monitor)

// WithLogger replaces the Monitor component logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(m *Monitor) { m.log = log }
}

// WithTopProcesses sets how many processes are listed per tick.
func WithTopProcesses(n int) Option {
	return func(m *Monitor) {
		if n > 0 {
			m.topN = n
		}
	}
}

// WithTracer replaces the global OpenTelemetry tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(m *Monitor) { m.tracer = tracer }
}

// WithClock sets the clock used for sample timestamps.
func WithClock(c clock.Clock) Option {
	return func(m *Monitor) { m.clock = c }
}

// New creates a Monitor. The thresholds are copied and never change afterwards.
func New(provider hostmetrics.Provider, thresholds Thresholds, opts ...Option) *Monitor {
	m := &Monitor{
		provider:   provider,
		thresholds: thresholds,
		topN:       constants.DefaultTopProcesses,
		clock:      clock.New(),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.log == nil {
		m.log = logger.For(logger.ComponentMonitor)
	}

	if m.tracer == nil {
		m.tracer = otel.Tracer(tracerName)
	}

	return m
}

// Thresholds returns the thresholds the monitor compares against.
func (m *Monitor) Thresholds() Thresholds {
	return m.thresholds
}

// tickState collects what one tick observed.
type tickState struct {
	span     trace.Span
	sample   hostmetrics.Sample
	warnings int
	failures int
}

// Tick reads every metric once and logs the results. Failed readings are
// logged and counted but do not fail the tick. Tick only returns an error when
// it cannot run at all.
func (m *Monitor) Tick(ctx context.Context) error {
	if m.provider == nil {
		return ErrNoProvider
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("tick not started: %w", err)
	}

	ctx, span := m.tracer.Start(ctx, "monitor.tick")
	defer span.End()

	st := &tickState{
		span:   span,
		sample: hostmetrics.Sample{Timestamp: m.clock.Now()},
	}

	m.logBootTime(ctx, st)
	m.checkCPU(ctx, st)
	m.checkMemory(ctx, st)
	m.checkDisks(ctx, st)
	m.logNetwork(ctx, st)
	m.logLoad(ctx, st)
	m.logProcesses(ctx, st)
	m.logTemperatures(ctx, st)

	recordSample(st.sample)
	m.dumpSample(st.sample)

	span.SetAttributes(
		attribute.Int("monitor.warnings", st.warnings),
		attribute.Int("monitor.fetch_failures", st.failures),
	)

	if st.failures > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d metric fetches failed", st.failures))
	}

	return nil
}

func (m *Monitor) fetchFailed(st *tickState, metric string, err error) {
	st.failures++

	fetchErr := &MetricFetchError{Metric: metric, Err: err}
	st.span.RecordError(fetchErr)
	metrics.IncErrorCount(metrics.ComponentHostMetrics, metric)
	m.log.Errorw(fetchErr.Error(), "metric", metric)
}

// compare logs a WARNING when value is strictly above threshold and an INFO line otherwise.
func (m *Monitor) compare(st *tickState, metric, subject string, value, threshold float64, detail string) {
	if value > threshold {
		st.warnings++
		thresholdExceeded.WithLabelValues(metric).Inc()
		m.log.Warnw(fmt.Sprintf("%s %.1f%% exceeds threshold %.1f%%%s", subject, value, threshold, detail), "metric", metric)

		return
	}

	m.log.Infof("%s: %.1f%%%s", subject, value, detail)
}

func (m *Monitor) logBootTime(ctx context.Context, st *tickState) {
	boot, err := m.provider.BootTime(ctx)
	if err != nil {
		m.fetchFailed(st, constants.MetricBootTime, err)

		return
	}

	st.sample.BootTime = &boot

	uptime := st.sample.Timestamp.Sub(boot)
	if uptime < 0 {
		m.log.Infof("Boot time: %s", boot.Format(constants.BootTimeLayout))

		return
	}

	m.log.Infof("Boot time: %s (up %s)", boot.Format(constants.BootTimeLayout), uptime.Truncate(time.Second))
}

func (m *Monitor) checkCPU(ctx context.Context, st *tickState) {
	cpu, err := m.provider.CPUPercent(ctx)
	if err != nil {
		m.fetchFailed(st, constants.MetricCPU, err)

		return
	}

	st.sample.CPUPercent = &cpu
	m.compare(st, constants.MetricCPU, "CPU usage", cpu, m.thresholds.CPUPercent, "")
}

func (m *Monitor) checkMemory(ctx context.Context, st *tickState) {
	memory, err := m.provider.Memory(ctx)
	if err == nil && memory == nil {
		err = errors.New("no reading")
	}

	if err != nil {
		m.fetchFailed(st, constants.MetricMemory, err)

		return
	}

	st.sample.Memory = memory
	detail := fmt.Sprintf(" (%s used of %s)", formatGiB(memory.UsedBytes), formatGiB(memory.TotalBytes))
	m.compare(st, constants.MetricMemory, "Memory usage", memory.Percent, m.thresholds.MemoryPercent, detail)
}

// checkDisks compares every disk that could be read, even when others failed.
func (m *Monitor) checkDisks(ctx context.Context, st *tickState) {
	disks, err := m.provider.Disks(ctx)

	for _, d := range disks {
		detail := fmt.Sprintf(" (%s used of %s)", formatGiB(d.UsedBytes), formatGiB(d.TotalBytes))
		m.compare(st, constants.MetricDisk, "Disk usage on "+d.Path, d.Percent, m.thresholds.DiskPercent, detail)
	}

	st.sample.Disks = disks

	if err != nil {
		m.fetchFailed(st, constants.MetricDisk, err)
	}
}

func (m *Monitor) logNetwork(ctx context.Context, st *tickState) {
	network, err := m.provider.Network(ctx)
	if err == nil && network == nil {
		err = errors.New("no reading")
	}

	if err != nil {
		m.fetchFailed(st, constants.MetricNetwork, err)

		return
	}

	st.sample.Network = network
	m.log.Infof("Network I/O: bytes sent=%d, bytes received=%d, packets sent=%d, packets received=%d, errors in=%d, errors out=%d, drops in=%d, drops out=%d",
		network.BytesSent, network.BytesRecv, network.PacketsSent, network.PacketsRecv,
		network.ErrIn, network.ErrOut, network.DropIn, network.DropOut)
}

func (m *Monitor) logLoad(ctx context.Context, st *tickState) {
	avg, err := m.provider.Load(ctx)
	if err == nil && avg == nil {
		err = errors.New("no reading")
	}

	if err != nil {
		m.fetchFailed(st, constants.MetricLoad, err)

		return
	}

	st.sample.Load = avg
	m.log.Infof("Load average over %d cores: 1m %.1f%%, 5m %.1f%%, 15m %.1f%%",
		avg.LogicalCores, avg.Percent(avg.Load1), avg.Percent(avg.Load5), avg.Percent(avg.Load15))
}

// logProcesses ranks again so that ordering holds for any provider.
func (m *Monitor) logProcesses(ctx context.Context, st *tickState) {
	procs, err := m.provider.TopProcesses(ctx, m.topN)
	if err != nil {
		m.fetchFailed(st, constants.MetricProcesses, err)

		return
	}

	ranked := hostmetrics.RankByMemory(procs, m.topN)
	st.sample.Processes = ranked

	entries := make([]string, 0, len(ranked))
	for _, p := range ranked {
		entries = append(entries, fmt.Sprintf("pid=%d name=%s memory=%.1f%%", p.PID, p.Name, p.MemoryPercent))
	}

	m.log.Infof("Top %d processes by memory: %s", len(ranked), strings.Join(entries, "; "))
}

func (m *Monitor) logTemperatures(ctx context.Context, st *tickState) {
	temps, err := m.provider.Temperatures(ctx)

	switch {
	case errors.Is(err, hostmetrics.ErrTemperatureUnsupported):
		m.log.Info("Temperature monitoring not supported on this system")

		return
	case err != nil:
		m.fetchFailed(st, constants.MetricTemperature, err)

		return
	}

	if temps == nil {
		temps = map[string]float64{}
	}

	st.sample.Temperatures = temps

	if len(temps) == 0 {
		m.log.Info("Temperature sensors not found")

		return
	}

	sensors := make([]string, 0, len(temps))
	for sensor := range temps {
		sensors = append(sensors, sensor)
	}

	sort.Strings(sensors)

	readings := make([]string, 0, len(sensors))
	for _, sensor := range sensors {
		readings = append(readings, fmt.Sprintf("%s=%.1f°C", sensor, temps[sensor]))
	}

	m.log.Infof("Temperatures: %s", strings.Join(readings, ", "))
}

// dumpSample writes the whole sample as one JSON debug line.
func (m *Monitor) dumpSample(sample hostmetrics.Sample) {
	if !m.log.Desugar().Core().Enabled(zapcore.DebugLevel) {
		return
	}

	data, err := json.Marshal(sample)
	if err != nil {
		m.log.Debugf("Failed to encode sample: %v", err)

		return
	}

	m.log.Debugw("Sample", "json", string(data))
}

func formatGiB(bytes uint64) string {
	return fmt.Sprintf("%.1f GiB", float64(bytes)/constants.BytesPerGiB)
}
