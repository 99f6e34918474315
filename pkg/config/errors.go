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

import "fmt"

// ConfigError reports a missing or malformed configuration value.
// It is fatal at startup.
type ConfigError struct {
	// Key is the dotted option name, e.g. "thresholds.cpu_usage".
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Key, e.Reason)
}

func missing(key string) *ConfigError {
	return &ConfigError{Key: key, Reason: "required value is missing"}
}

func malformed(key, value, expected string) *ConfigError {
	return &ConfigError{Key: key, Reason: fmt.Sprintf("%q is not %s", value, expected)}
}
