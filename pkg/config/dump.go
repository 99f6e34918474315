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

package config

import (
	"gopkg.in/yaml.v3"

	"github.com/united-manufacturing-hub/sysmon/pkg/monitor"
)

const redacted = "<redacted>"

type document struct {
	Monitor struct {
		LoopInterval    float64  `yaml:"loop_interval"`
		CPUSampleWindow float64  `yaml:"cpu_sample_window"`
		TopProcesses    int      `yaml:"top_processes"`
		DiskPaths       []string `yaml:"disk_paths,omitempty"`
	} `yaml:"monitor"`
	Thresholds monitor.Thresholds `yaml:"thresholds"`
	Logging    struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		File   string `yaml:"file"`
	} `yaml:"logging"`
	Metrics struct {
		Port int `yaml:"port"`
	} `yaml:"metrics"`
	Sentry struct {
		DSN         string `yaml:"dsn"`
		Environment string `yaml:"environment"`
	} `yaml:"sentry"`
}

// YAML renders the effective configuration, durations in seconds and the
// Sentry DSN redacted.
func (c *Config) YAML() ([]byte, error) {
	var doc document

	doc.Monitor.LoopInterval = c.Monitor.LoopInterval.Seconds()
	doc.Monitor.CPUSampleWindow = c.Monitor.CPUSampleWindow.Seconds()
	doc.Monitor.TopProcesses = c.Monitor.TopProcesses
	doc.Monitor.DiskPaths = c.Monitor.DiskPaths
	doc.Thresholds = c.thresholds
	doc.Logging.Level = c.Logging.Level
	doc.Logging.Format = string(c.Logging.Format)
	doc.Logging.File = c.Logging.File
	doc.Metrics.Port = c.Metrics.Port
	doc.Sentry.Environment = c.Sentry.Environment

	if c.Sentry.DSN != "" {
		doc.Sentry.DSN = redacted
	}

	return yaml.Marshal(&doc)
}
