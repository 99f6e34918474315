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

package sentry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/united-manufacturing-hub/sysmon/pkg/constants"
)

// eventStore provides thread-safe storage for captured Sentry events.
type eventStore struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (s *eventStore) Add(event *sentry.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *eventStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func (s *eventStore) GetAll() []*sentry.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*sentry.Event, len(s.events))
	copy(out, s.events)
	return out
}

// mockTransport captures Sentry events for testing.
type mockTransport struct {
	store *eventStore
}

func (t *mockTransport) Configure(options sentry.ClientOptions)    {}
func (t *mockTransport) Flush(timeout time.Duration) bool          { return true }
func (t *mockTransport) FlushWithContext(ctx context.Context) bool { return true }
func (t *mockTransport) Close()                                    {}
func (t *mockTransport) SendEvent(event *sentry.Event)             { t.store.Add(event) }

func initWithStore(debounce bool) *eventStore {
	store := &eventStore{}
	Expect(Init(Options{
		DSN:        "https://test@sentry.io/123",
		AppVersion: "1.4.0",
		RunID:      "run-1",
		Debounce:   debounce,
		Transport:  &mockTransport{store: store},
	})).To(Succeed())
	DeferCleanup(func() {
		Expect(Init(Options{})).To(Succeed())
	})
	return store
}

var _ = Describe("Sentry", func() {
	Describe("Init", func() {
		It("stays disabled without a DSN", func() {
			Expect(Init(Options{AppVersion: "1.0.0"})).To(Succeed())
			Expect(Enabled()).To(BeFalse())
			Expect(Flush(time.Millisecond)).To(BeTrue())
		})

		It("enables reporting with a DSN", func() {
			initWithStore(false)
			Expect(Enabled()).To(BeTrue())
		})
	})

	DescribeTable("environmentFor",
		func(version, expected string) {
			Expect(environmentFor(version)).To(Equal(expected))
		},
		Entry("tagged release", "1.2.3", constants.DefaultProductionEnvironment),
		Entry("prerelease", "1.2.3-rc.1", constants.DefaultDevelopmentEnvironment),
		Entry("local build", constants.DefaultAppVersion, constants.DefaultDevelopmentEnvironment),
		Entry("unparsable", "not-a-version", constants.DefaultDevelopmentEnvironment),
	)

	Describe("getMeaningfulErrorTitle", func() {
		It("cuts at the first separator", func() {
			Expect(getMeaningfulErrorTitle(errors.New("tick 3 failed: disk: permission denied"))).To(Equal("tick 3 failed"))
		})
	})

	Describe("ReportIssue", func() {
		It("logs even when reporting is disabled", func() {
			core, logs := observer.New(zapcore.DebugLevel)
			ReportIssue(errors.New("boom"), IssueTypeError, zap.New(core).Sugar())
			Expect(logs.FilterMessage("boom").Len()).To(Equal(1))
		})

		It("sends errors with context tags", func() {
			store := initWithStore(false)
			ReportTickError(zap.NewNop().Sugar(), "monitor", 7, errors.New("tick failed"))

			Eventually(store.Len).Should(Equal(1))
			event := store.GetAll()[0]
			Expect(event.Level).To(Equal(sentry.LevelError))
			Expect(event.Tags).To(HaveKeyWithValue("task", "monitor"))
			Expect(event.Tags).To(HaveKeyWithValue("tick", "7"))
			Expect(event.Tags).To(HaveKeyWithValue("run_id", "run-1"))
			Expect(event.Fingerprint).To(ContainElement("operation: tick"))
		})

		It("debounces repeated errors", func() {
			store := initWithStore(true)
			ReportIssue(errors.New("first"), IssueTypeError, nil)
			ReportIssue(errors.New("second"), IssueTypeError, nil)
			ReportIssue(errors.New("warned"), IssueTypeWarning, nil)

			Eventually(store.Len).Should(Equal(2))
			Consistently(store.Len, 100*time.Millisecond).Should(Equal(2))
		})

		It("never debounces fatal reports", func() {
			store := initWithStore(true)
			ReportIssue(errors.New("first"), IssueTypeFatal, nil)
			ReportIssue(errors.New("second"), IssueTypeFatal, nil)

			Eventually(store.Len).Should(Equal(2))
		})
	})

	Describe("SentryHook", func() {
		var (
			store *eventStore
			log   *zap.Logger
		)

		BeforeEach(func() {
			store = initWithStore(false)
			core, _ := observer.New(zapcore.DebugLevel)
			log = zap.New(NewSentryHook(core))
		})

		It("captures error logs", func() {
			log.Error("metric fetch failed", zap.String("metric", "Disk"))

			Eventually(store.Len).Should(Equal(1))
			event := store.GetAll()[0]
			Expect(event.Message).To(Equal("metric fetch failed"))
			Expect(event.Tags).To(HaveKeyWithValue("metric", "Disk"))
			Expect(event.Fingerprint).To(ContainElement("metric: Disk"))
		})

		It("keeps threshold warnings local", func() {
			log.Warn("CPU usage exceeds threshold")
			log.Info("CPU usage")

			Consistently(store.Len, 100*time.Millisecond).Should(BeZero())
		})

		It("carries fields added with With", func() {
			log.With(zap.String("task", "monitor")).Error("tick panicked")

			Eventually(store.Len).Should(Equal(1))
			Expect(store.GetAll()[0].Tags).To(HaveKeyWithValue("task", "monitor"))
		})
	})
})
