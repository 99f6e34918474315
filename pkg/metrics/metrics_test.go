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

package metrics

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(c interface{ Write(*dto.Metric) error }) float64 {
	m := &dto.Metric{}
	Expect(c.Write(m)).To(Succeed())
	return m.GetCounter().GetValue()
}

func gaugeValue(g interface{ Write(*dto.Metric) error }) float64 {
	m := &dto.Metric{}
	Expect(g.Write(m)).To(Succeed())
	return m.GetGauge().GetValue()
}

var _ = Describe("Metrics", func() {
	It("counts errors per component and instance", func() {
		InitErrorCounter(ComponentHostMetrics, "errors-test")
		before := counterValue(errorCounter.WithLabelValues(ComponentHostMetrics, "errors-test"))
		Expect(before).To(BeZero())

		IncErrorCount(ComponentHostMetrics, "errors-test")
		IncErrorCountAndLog(ComponentHostMetrics, "errors-test", nil, nil)
		Expect(counterValue(errorCounter.WithLabelValues(ComponentHostMetrics, "errors-test"))).To(Equal(2.0))
	})

	DescribeTable("UpdateTaskState",
		func(state string, expected float64) {
			UpdateTaskState("state-test", state)
			Expect(gaugeValue(taskState.WithLabelValues("state-test"))).To(Equal(expected))
		},
		Entry("idle", "idle", 0.0),
		Entry("running", "running", 1.0),
		Entry("stop requested", "stop_requested", 2.0),
		Entry("stopped", "stopped", 3.0),
		Entry("unknown", "exploded", -1.0),
	)

	It("records tick durations", func() {
		ObserveTickTime("duration-test", 250*time.Millisecond)
		m := &dto.Metric{}
		Expect(tickDuration.WithLabelValues("duration-test").(interface{ Write(*dto.Metric) error }).Write(m)).To(Succeed())
		Expect(m.GetSummary().GetSampleCount()).To(Equal(uint64(1)))
		Expect(m.GetSummary().GetSampleSum()).To(Equal(250.0))
	})

	Describe("router", func() {
		BeforeEach(func() {
			gin.SetMode(gin.TestMode)
		})

		serve := func(health HealthFunc, path string) *httptest.ResponseRecorder {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, path, nil)
			NewRouter(health).ServeHTTP(rec, req)
			return rec
		}

		It("exposes prometheus metrics", func() {
			IncErrorCount(ComponentMetricsServer, "router-test")
			rec := serve(nil, "/metrics")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("sysmon_core_errors_total"))
		})

		It("reports health from the task state", func() {
			Expect(serve(func() bool { return true }, "/healthz").Code).To(Equal(http.StatusOK))
			rec := serve(func() bool { return false }, "/healthz")
			Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
			Expect(rec.Body.String()).To(ContainSubstring("not running"))
		})
	})

	It("tolerates shutting down a nil server", func() {
		Expect(Shutdown(nil, time.Second)).To(Succeed())
	})
})
