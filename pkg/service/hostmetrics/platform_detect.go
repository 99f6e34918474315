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
	"os"
	"strings"
	"sync"

	"github.com/united-manufacturing-hub/sysmon/pkg/constants"
	"github.com/united-manufacturing-hub/sysmon/pkg/logger"
)

var (
	isDockerDesktopMacOnce sync.Once
	isDockerDesktopMacVal  bool
)

// IsDockerDesktopMac reports whether we run inside the LinuxKit VM of Docker
// Desktop on macOS, where statfs reports a block size 1024x too large.
// The result is cached after the first call.
func IsDockerDesktopMac() bool {
	isDockerDesktopMacOnce.Do(func() {
		data, err := os.ReadFile(constants.ProcVersionPath)
		if err != nil {
			return
		}

		isDockerDesktopMacVal = isLinuxKit(string(data))
		if isDockerDesktopMacVal {
			logger.For(logger.ComponentHostMetrics).Info("Detected Docker Desktop on macOS, using statfs fragment size for disk usage")
		}
	})

	return isDockerDesktopMacVal
}

func isLinuxKit(procVersion string) bool {
	return strings.Contains(procVersion, constants.DockerDesktopSignature)
}
