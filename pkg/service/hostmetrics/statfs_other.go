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

//go:build !linux

package hostmetrics

import (
	"context"

	"github.com/shirou/gopsutil/v3/disk"
)

// statfsUsage falls back to gopsutil where the LinuxKit block size quirk cannot occur.
func statfsUsage(path string) (DiskUsage, error) {
	usage, err := disk.UsageWithContext(context.Background(), path)
	if err != nil {
		return DiskUsage{}, err
	}

	return fromUsageStat(path, usage), nil
}
