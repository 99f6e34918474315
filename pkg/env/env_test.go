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

package env_test

import (
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/united-manufacturing-hub/sysmon/pkg/env"
)

func setEnv(key, value string) {
	Expect(os.Setenv(key, value)).To(Succeed())
	DeferCleanup(os.Unsetenv, key)
}

var _ = Describe("Env", func() {
	Describe("Key", func() {
		It("prefixes and upper-cases the parts", func() {
			Expect(env.Key("thresholds", "cpu_usage")).To(Equal("SYSMON_THRESHOLDS_CPU_USAGE"))
			Expect(env.Key("logging.level")).To(Equal("SYSMON_LOGGING_LEVEL"))
		})
	})

	Describe("GetAsFloat", func() {
		const key = "SYSMON_TEST_FLOAT"

		It("returns the default when unset and not required", func() {
			v, err := env.GetAsFloat(key, false, 42.5)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(42.5))
		})

		It("fails when unset and required", func() {
			_, err := env.GetAsFloat(key, true, 0)
			Expect(err).To(HaveOccurred())
		})

		It("parses a set value", func() {
			setEnv(key, " 91.5 ")
			v, err := env.GetAsFloat(key, false, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(91.5))
		})

		It("rejects a malformed value instead of falling back", func() {
			setEnv(key, "ninety")
			_, err := env.GetAsFloat(key, false, 10)
			Expect(err).To(MatchError(ContainSubstring("must be a number")))
		})
	})

	Describe("GetAsInt", func() {
		const key = "SYSMON_TEST_INT"

		It("parses a set value", func() {
			setEnv(key, "9102")
			v, err := env.GetAsInt(key, false, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(9102))
		})

		It("treats whitespace as unset", func() {
			setEnv(key, "   ")
			v, err := env.GetAsInt(key, false, 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(7))
		})
	})

	Describe("GetAsBool", func() {
		const key = "SYSMON_TEST_BOOL"

		DescribeTable("accepted spellings",
			func(raw string, expected bool) {
				setEnv(key, raw)
				v, err := env.GetAsBool(key, true, !expected)
				Expect(err).NotTo(HaveOccurred())
				Expect(v).To(Equal(expected))
			},
			Entry("true", "true", true),
			Entry("yes", "YES", true),
			Entry("on", "on", true),
			Entry("false", "false", false),
			Entry("zero", "0", false),
		)

		It("rejects unknown spellings", func() {
			setEnv(key, "maybe")
			_, err := env.GetAsBool(key, false, true)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetAsString", func() {
		It("returns the value when set", func() {
			setEnv("SYSMON_TEST_STRING", "debug")
			v, err := env.GetAsString("SYSMON_TEST_STRING", true, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("debug"))
		})
	})
})
