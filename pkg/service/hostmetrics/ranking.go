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

import "sort"

// RankByMemory orders processes by memory percent, highest first, breaking
// ties by ascending pid, and keeps the first n. The input is not modified.
func RankByMemory(procs []ProcessMemory, n int) []ProcessMemory {
	if n <= 0 || len(procs) == 0 {
		return []ProcessMemory{}
	}

	ranked := make([]ProcessMemory, len(procs))
	copy(ranked, procs)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].MemoryPercent != ranked[j].MemoryPercent {
			return ranked[i].MemoryPercent > ranked[j].MemoryPercent
		}

		return ranked[i].PID < ranked[j].PID
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}

	return ranked
}
