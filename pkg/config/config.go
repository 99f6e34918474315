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

// Package config loads the sysmon configuration file. Values are parsed and
// validated here so the rest of the program only sees typed values.
package config

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/united-manufacturing-hub/sysmon/pkg/constants"
	"github.com/united-manufacturing-hub/sysmon/pkg/env"
	"github.com/united-manufacturing-hub/sysmon/pkg/logger"
	"github.com/united-manufacturing-hub/sysmon/pkg/monitor"
	"github.com/united-manufacturing-hub/sysmon/pkg/service/hostmetrics"
)

// Option keys as they appear in the file, "section.key".
const (
	KeyLoopInterval    = "monitor.loop_interval"
	KeyDiskPaths       = "monitor.disk_paths"
	KeyTopProcesses    = "monitor.top_processes"
	KeyCPUSampleWindow = "monitor.cpu_sample_window"
	KeyCPUThreshold    = "thresholds.cpu_usage"
	KeyMemoryThreshold = "thresholds.memory_usage"
	KeyDiskThreshold   = "thresholds.disk_usage"
	KeyLogLevel        = "logging.level"
	KeyLogFormat       = "logging.format"
	KeyLogFile         = "logging.file"
	KeyMetricsPort     = "metrics.port"
	KeySentryDSN       = "sentry.dsn"
	KeySentryEnv       = "sentry.environment"
)

// Config is the validated configuration. It is built once at startup and
// passed to constructors; nothing reads it globally.
type Config struct {
	Path       string
	Monitor    MonitorConfig
	Logging    LoggingConfig
	Sentry     SentryConfig
	thresholds monitor.Thresholds
	Metrics    MetricsConfig
}

type MonitorConfig struct {
	DiskPaths       []string
	LoopInterval    time.Duration
	CPUSampleWindow time.Duration
	TopProcesses    int
}

type LoggingConfig struct {
	Level  string
	Format logger.LogFormat
	// File is empty when the file sink is disabled.
	File string
}

type MetricsConfig struct {
	// Port 0 disables the endpoint.
	Port int
}

type SentryConfig struct {
	DSN         string
	Environment string
}

// Thresholds returns the warning thresholds. The value is a copy.
func (c *Config) Thresholds() monitor.Thresholds {
	return c.thresholds
}

// LoggerOptions maps the logging section onto logger.Options.
func (c *Config) LoggerOptions() logger.Options {
	return logger.Options{
		Level:    c.Logging.Level,
		Format:   c.Logging.Format,
		FilePath: c.Logging.File,
	}
}

// ProviderOptions maps the monitor section onto hostmetrics.Options.
func (c *Config) ProviderOptions() hostmetrics.Options {
	return hostmetrics.Options{
		DiskPaths:       c.Monitor.DiskPaths,
		CPUSampleWindow: c.Monitor.CPUSampleWindow,
	}
}

// MetricsAddr is the listen address of the metrics endpoint, empty when disabled.
func (c *Config) MetricsAddr() string {
	if c.Metrics.Port == 0 {
		return ""
	}

	return fmt.Sprintf(":%d", c.Metrics.Port)
}

// Load reads path and applies SYSMON_<SECTION>_<KEY> environment overrides.
// The format follows the extension; files without one are read as INI.
// Every invalid option is reported, joined, as a *ConfigError.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if filepath.Ext(path) == "" {
		v.SetConfigType("ini")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, &ConfigError{Key: "file", Reason: fmt.Sprintf("cannot read %s: %v", path, err)}
	}

	return parse(&source{v: v}, path)
}

func parse(src *source, path string) (*Config, error) {
	p := &parser{src: src}

	cfg := &Config{
		Path: path,
		Monitor: MonitorConfig{
			LoopInterval:    p.seconds(KeyLoopInterval, true, 0),
			DiskPaths:       p.list(KeyDiskPaths),
			TopProcesses:    p.positiveInt(KeyTopProcesses, constants.DefaultTopProcesses),
			CPUSampleWindow: p.seconds(KeyCPUSampleWindow, false, constants.DefaultCPUSampleWindow),
		},
		thresholds: monitor.Thresholds{
			CPUPercent:    p.percent(KeyCPUThreshold),
			MemoryPercent: p.percent(KeyMemoryThreshold),
			DiskPercent:   p.percent(KeyDiskThreshold),
		},
		Logging: LoggingConfig{
			Level:  p.logLevel(KeyLogLevel),
			Format: p.logFormat(KeyLogFormat),
			File:   p.stringOr(KeyLogFile, constants.DefaultLogFilePath),
		},
		Metrics: MetricsConfig{
			Port: p.port(KeyMetricsPort),
		},
		Sentry: SentryConfig{
			DSN:         p.stringOr(KeySentryDSN, ""),
			Environment: p.stringOr(KeySentryEnv, ""),
		},
	}

	if cfg.Monitor.LoopInterval > 0 && cfg.Monitor.CPUSampleWindow > cfg.Monitor.LoopInterval {
		p.fail(&ConfigError{
			Key:    KeyCPUSampleWindow,
			Reason: fmt.Sprintf("%s is longer than %s %s", cfg.Monitor.CPUSampleWindow, KeyLoopInterval, cfg.Monitor.LoopInterval),
		})
	}

	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}

	return cfg, nil
}

// source resolves a key from the environment first, then from the file.
type source struct {
	v *viper.Viper
}

// lookup returns the raw value and whether the key was present at all.
// A key present with an empty value is reported as set.
func (s *source) lookup(key string) (string, bool) {
	if value, ok := env.Lookup(env.Key(key)); ok {
		return value, true
	}

	if !s.v.IsSet(key) {
		return "", false
	}

	switch raw := s.v.Get(key).(type) {
	case []interface{}:
		parts := make([]string, 0, len(raw))
		for _, item := range raw {
			parts = append(parts, fmt.Sprint(item))
		}

		return strings.Join(parts, ","), true
	default:
		return strings.TrimSpace(s.v.GetString(key)), true
	}
}

// parser collects every error instead of stopping at the first.
type parser struct {
	src  *source
	errs []error
}

func (p *parser) fail(err *ConfigError) {
	p.errs = append(p.errs, err)
}

func (p *parser) float(key string, required bool) (float64, bool) {
	raw, ok := p.src.lookup(key)
	if !ok || raw == "" {
		if required {
			p.fail(missing(key))
		}

		return 0, false
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		p.fail(malformed(key, raw, "a number"))

		return 0, false
	}

	return value, true
}

func (p *parser) seconds(key string, required bool, fallback time.Duration) time.Duration {
	value, ok := p.float(key, required)
	if !ok {
		return fallback
	}

	if value <= 0 {
		p.fail(&ConfigError{Key: key, Reason: fmt.Sprintf("%v must be a positive number of seconds", value)})

		return fallback
	}

	nanos := value * float64(time.Second)
	if nanos >= math.MaxInt64 {
		p.fail(&ConfigError{Key: key, Reason: fmt.Sprintf("%v seconds is too large", value)})

		return fallback
	}

	if nanos < 1 {
		p.fail(&ConfigError{Key: key, Reason: fmt.Sprintf("%v seconds is shorter than one nanosecond", value)})

		return fallback
	}

	return time.Duration(nanos)
}

func (p *parser) percent(key string) float64 {
	value, ok := p.float(key, true)
	if !ok {
		return 0
	}

	if value < 0 || value > constants.MaxPercent {
		p.fail(&ConfigError{Key: key, Reason: fmt.Sprintf("%v is outside 0-100", value)})
	}

	return value
}

func (p *parser) integer(key string, fallback int) (int, bool) {
	raw, ok := p.src.lookup(key)
	if !ok || raw == "" {
		return fallback, false
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(malformed(key, raw, "an integer"))

		return fallback, false
	}

	return value, true
}

func (p *parser) positiveInt(key string, fallback int) int {
	value, ok := p.integer(key, fallback)
	if ok && value <= 0 {
		p.fail(&ConfigError{Key: key, Reason: fmt.Sprintf("%d must be positive", value)})

		return fallback
	}

	return value
}

func (p *parser) port(key string) int {
	value, ok := p.integer(key, constants.DefaultMetricsPort)
	if ok && (value < 0 || value > math.MaxUint16) {
		p.fail(&ConfigError{Key: key, Reason: fmt.Sprintf("%d is not a valid port", value)})

		return constants.DefaultMetricsPort
	}

	return value
}

// stringOr returns fallback only when the key is absent; an explicit empty value is kept.
func (p *parser) stringOr(key, fallback string) string {
	raw, ok := p.src.lookup(key)
	if !ok {
		return fallback
	}

	return raw
}

func (p *parser) list(key string) []string {
	raw, ok := p.src.lookup(key)
	if !ok {
		return nil
	}

	var items []string

	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}

func (p *parser) logLevel(key string) string {
	raw, ok := p.src.lookup(key)
	if !ok || raw == "" {
		return constants.DefaultLogLevel
	}

	if !logger.ValidLevel(raw) {
		p.fail(malformed(key, raw, "one of DEBUG, INFO, WARNING, ERROR"))

		return constants.DefaultLogLevel
	}

	return strings.ToUpper(raw)
}

func (p *parser) logFormat(key string) logger.LogFormat {
	raw, ok := p.src.lookup(key)
	if !ok || raw == "" {
		raw = constants.DefaultLogFormat
	}

	format, err := logger.ParseFormat(raw)
	if err != nil {
		p.fail(malformed(key, raw, "one of PRETTY, CONSOLE, JSON"))

		return logger.FormatPretty
	}

	return format
}
