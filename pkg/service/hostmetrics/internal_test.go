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
	"context"
	"io/fs"
	"syscall"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

// Internal helpers that cannot be reached through the exported API.
var _ = Describe("internal helpers", func() {
	It("detects the LinuxKit kernel of Docker Desktop", func() {
		Expect(isLinuxKit("Linux version 6.10.14-linuxkit (root@buildkitsandbox)")).To(BeTrue())
		Expect(isLinuxKit("Linux version 6.8.0-45-generic (buildd@lcy02-amd64-075)")).To(BeFalse())
	})

	It("computes usage from statfs blocks like df", func() {
		// 1000 blocks of 4 KiB, 400 free of which 300 available to users
		usage := usageFromBlocks("/data", 1000, 400, 300, 4096)
		Expect(usage.Path).To(Equal("/data"))
		Expect(usage.TotalBytes).To(Equal(uint64(1000 * 4096)))
		Expect(usage.UsedBytes).To(Equal(uint64(600 * 4096)))
		Expect(usage.FreeBytes).To(Equal(uint64(300 * 4096)))
		Expect(usage.Percent).To(BeNumerically("~", 66.666, 0.01))
	})

	It("reports zero percent for an empty filesystem", func() {
		Expect(usageFromBlocks("/empty", 0, 0, 0, 4096).Percent).To(BeZero())
	})

	It("recognises gopsutil's not implemented error", func() {
		Expect(isNotImplemented(errorString("not implemented yet"))).To(BeTrue())
		Expect(isNotImplemented(errorString("permission denied"))).To(BeFalse())
	})
})

var _ = Describe("Disks", func() {
	var provider *GopsutilProvider

	BeforeEach(func() {
		provider = &GopsutilProvider{logger: zap.NewNop().Sugar()}
		provider.mounts = func(context.Context) ([]string, error) {
			return []string{"/", "/run/user/1000/doc", "/data"}, nil
		}
		provider.usage = func(_ context.Context, path string) (DiskUsage, error) {
			if path == "/run/user/1000/doc" {
				return DiskUsage{}, &fs.PathError{Op: "statfs", Path: path, Err: syscall.EACCES}
			}
			return DiskUsage{Path: path, Percent: 10}, nil
		}
	})

	It("reports a permission denied partition next to the readable ones", func() {
		disks, err := provider.Disks(context.Background())
		Expect(disks).To(HaveLen(2))
		Expect(disks[0].Path).To(Equal("/"))
		Expect(disks[1].Path).To(Equal("/data"))
		Expect(err).To(MatchError(fs.ErrPermission))
		Expect(err.Error()).To(ContainSubstring("permission denied for /run/user/1000/doc"))
	})

	It("reports configured paths the same way", func() {
		provider.diskPaths = []string{"/run/user/1000/doc"}
		disks, err := provider.Disks(context.Background())
		Expect(disks).To(BeEmpty())
		Expect(err).To(MatchError(fs.ErrPermission))
	})

	It("returns no error when every partition is readable", func() {
		provider.diskPaths = []string{"/", "/data"}
		disks, err := provider.Disks(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(disks).To(HaveLen(2))
	})
})

type errorString string

func (e errorString) Error() string { return string(e) }
