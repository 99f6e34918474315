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

//go:build linux

package hostmetrics

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// statfsUsage computes disk usage from statfs using Frsize when set, which is
// the correct block size on Docker Desktop for macOS where Bsize is inflated.
func statfsUsage(path string) (DiskUsage, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return DiskUsage{}, fmt.Errorf("failed to stat filesystem at %s: %w", path, err)
	}

	blockSize := uint64(stat.Bsize)
	if stat.Frsize > 0 {
		blockSize = uint64(stat.Frsize)
	}

	return usageFromBlocks(path, stat.Blocks, stat.Bfree, stat.Bavail, blockSize), nil
}
