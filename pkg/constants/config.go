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

const (
	// DefaultConfigPath is where the config file is looked up when --config is not given.
	DefaultConfigPath = "/etc/sysmon/sysmon.ini"

	// DefaultLogFilePath is the durable, append-only log destination.
	// An empty logging.file value disables the file sink.
	DefaultLogFilePath = "/var/log/sysmon/system_monitoring.log"

	// DefaultLogLevel is used when logging.level is not set.
	DefaultLogLevel = "INFO"

	// DefaultLogFormat is used when logging.format is not set.
	DefaultLogFormat = "PRETTY"

	// DefaultMetricsPort disables the metrics endpoint.
	DefaultMetricsPort = 0

	// EnvPrefix is prepended to every environment override, e.g. SYSMON_THRESHOLDS_CPU_USAGE.
	EnvPrefix = "SYSMON"
)

const (
	// DefaultAppVersion is the version reported by local builds without ldflags.
	DefaultAppVersion = "0.0.0-dev"

	// DefaultDevelopmentEnvironment is used for prerelease versions.
	DefaultDevelopmentEnvironment = "development"

	// DefaultProductionEnvironment is used for tagged releases.
	DefaultProductionEnvironment = "production"
)
