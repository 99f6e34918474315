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

// Package env reads typed overrides from the process environment.
package env

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/united-manufacturing-hub/sysmon/pkg/constants"
)

// Key builds the environment variable name for a config key,
// e.g. Key("thresholds", "cpu_usage") == "SYSMON_THRESHOLDS_CPU_USAGE".
func Key(parts ...string) string {
	upper := make([]string, 0, len(parts)+1)
	upper = append(upper, constants.EnvPrefix)
	for _, p := range parts {
		upper = append(upper, strings.ToUpper(strings.ReplaceAll(p, ".", "_")))
	}
	return strings.Join(upper, "_")
}

// Lookup returns the trimmed value of key and whether it is set to something non-empty.
func Lookup(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

// GetAsString retrieves an environment variable as a string.
// If required is true and the variable is not set, an error is returned.
// If not required and not set, defaultValue is returned.
func GetAsString(key string, required bool, defaultValue string) (string, error) {
	value, ok := Lookup(key)
	if !ok {
		if required {
			return "", fmt.Errorf("required environment variable %s is not set", key)
		}
		return defaultValue, nil
	}
	return value, nil
}

// GetAsInt retrieves an environment variable as an integer.
// A value that is set but not an integer is always an error: an override that
// silently falls back to the default would hide a typo.
func GetAsInt(key string, required bool, defaultValue int) (int, error) {
	value, ok := Lookup(key)
	if !ok {
		if required {
			return 0, fmt.Errorf("required environment variable %s is not set", key)
		}
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s must be an integer: %w", key, err)
	}
	return intValue, nil
}

// GetAsFloat retrieves an environment variable as a float64.
// Same rules as GetAsInt.
func GetAsFloat(key string, required bool, defaultValue float64) (float64, error) {
	value, ok := Lookup(key)
	if !ok {
		if required {
			return 0, fmt.Errorf("required environment variable %s is not set", key)
		}
		return defaultValue, nil
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s must be a number: %w", key, err)
	}
	return floatValue, nil
}

// GetAsBool retrieves an environment variable as a boolean.
func GetAsBool(key string, required bool, defaultValue bool) (bool, error) {
	value, ok := Lookup(key)
	if !ok {
		if required {
			return false, fmt.Errorf("required environment variable %s is not set", key)
		}
		return defaultValue, nil
	}

	switch strings.ToLower(value) {
	case "true", "1", "yes", "y", "on":
		return true, nil
	case "false", "0", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("environment variable %s must be a boolean value", key)
	}
}
