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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/united-manufacturing-hub/sysmon/pkg/config"
	"github.com/united-manufacturing-hub/sysmon/pkg/logger"
	"github.com/united-manufacturing-hub/sysmon/pkg/service/hostmetrics"
)

func execute(args ...string) (string, error) {
	out := &bytes.Buffer{}
	root := newRootCommand()
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeConfig(content string) string {
	path := filepath.Join(GinkgoT().TempDir(), "sysmon.ini")
	Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
	return path
}

var _ = Describe("sysmon command", func() {
	Describe("check-config", func() {
		It("prints the effective configuration", func() {
			path := writeConfig(`
[monitor]
loop_interval = 5

[thresholds]
cpu_usage = 85
memory_usage = 80
disk_usage = 90

[logging]
file =
`)
			out, err := execute("check-config", "--config", path, "--log-level", "debug")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("loop_interval: 5"))
			Expect(out).To(ContainSubstring("level: DEBUG"))
			Expect(out).To(ContainSubstring("disk_usage: 90"))
		})

		It("fails on an invalid file", func() {
			path := writeConfig(`
[monitor]
loop_interval = soon
`)
			_, err := execute("check-config", "--config", path)
			Expect(err).To(MatchError(errInvalidConfig))
		})

		It("rejects an invalid log level override", func() {
			path := writeConfig(`
[monitor]
loop_interval = 5

[thresholds]
cpu_usage = 85
memory_usage = 80
disk_usage = 90
`)
			_, err := execute("check-config", "--config", path, "--log-level", "verbose")
			Expect(err).To(MatchError(errInvalidConfig))
		})
	})

	It("fails to run without a config file", func() {
		_, err := execute("run", "--config", filepath.Join(GinkgoT().TempDir(), "missing.ini"))
		Expect(err).To(MatchError(errInvalidConfig))
	})
})

var _ = Describe("sample", func() {
	It("takes one sample and logs it", func() {
		provider := hostmetrics.NewMockProvider()
		provider.SetupMockForHealthyState()

		original := newProvider
		newProvider = func(*config.Config) hostmetrics.Provider { return provider }
		DeferCleanup(func() { newProvider = original })

		logFile := filepath.Join(GinkgoT().TempDir(), "sysmon.log")
		path := writeConfig(`
[monitor]
loop_interval = 5

[thresholds]
cpu_usage = 30
memory_usage = 80
disk_usage = 90

[logging]
file = ` + logFile + `
`)
		_, err := execute("sample", "--config", path)
		Expect(err).NotTo(HaveOccurred())
		_ = logger.Sync()

		content, err := os.ReadFile(logFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(content)).To(ContainSubstring("CPU usage 35.0% exceeds threshold 30.0%"))
		Expect(string(content)).To(ContainSubstring("Memory usage: 25.0%"))
		provider.AssertNumberOfCalls(GinkgoT(), "CPUPercent", 1)
	})
})
