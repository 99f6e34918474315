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

package task_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/united-manufacturing-hub/sysmon/pkg/constants"
	"github.com/united-manufacturing-hub/sysmon/pkg/task"
)

const interval = 10 * time.Second

// errorRecorder collects errors handed to the task's error handler.
type errorRecorder struct {
	mu   sync.Mutex
	errs []error
}

func (r *errorRecorder) handle(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *errorRecorder) all() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]error, len(r.errs))
	copy(out, r.errs)
	return out
}

var _ = Describe("RepeatingTask", func() {
	var (
		mock     *clock.Mock
		recorder *errorRecorder
		rt       *task.RepeatingTask
		calls    atomic.Int32
		counting task.Action
	)

	// advanceUntil keeps moving the mock clock until cond holds, since the
	// task goroutine may register its timer after a single Add.
	advanceUntil := func(cond func() bool) {
		Eventually(func() bool {
			if cond() {
				return true
			}
			mock.Add(interval)
			return cond()
		}).Should(BeTrue())
	}

	BeforeEach(func() {
		mock = clock.NewMock()
		recorder = &errorRecorder{}
		calls.Store(0)
		counting = func(context.Context) error {
			calls.Add(1)
			return nil
		}
		rt = task.New(task.Config{
			Name:         "test",
			Clock:        mock,
			Logger:       zap.NewNop().Sugar(),
			ErrorHandler: recorder.handle,
		})
		DeferCleanup(func() { rt.Stop(true) })
	})

	Describe("Start", func() {
		It("starts idle", func() {
			Expect(rt.State()).To(Equal(task.StateIdle))
			Expect(rt.IsRunning()).To(BeFalse())
			Expect(rt.Name()).To(Equal("test"))
		})

		It("falls back to the default name", func() {
			Expect(task.New(task.Config{Logger: zap.NewNop().Sugar()}).Name()).To(Equal(constants.DefaultTaskName))
		})

		It("runs the action once immediately", func() {
			Expect(rt.Start(context.Background(), counting, interval)).To(Succeed())
			Expect(rt.IsRunning()).To(BeTrue())
			Eventually(calls.Load).Should(Equal(int32(1)))
			Consistently(calls.Load, 50*time.Millisecond).Should(Equal(int32(1)))
		})

		It("repeats the action every interval", func() {
			Expect(rt.Start(context.Background(), counting, interval)).To(Succeed())
			advanceUntil(func() bool { return calls.Load() >= 3 })
			Expect(rt.Ticks()).To(BeNumerically(">=", 3))
		})

		It("rejects a second start while running", func() {
			Expect(rt.Start(context.Background(), counting, interval)).To(Succeed())
			err := rt.Start(context.Background(), counting, interval)
			Expect(err).To(MatchError(task.ErrAlreadyRunning))
			Expect(rt.State()).To(Equal(task.StateRunning))
		})

		It("rejects a non-positive interval", func() {
			Expect(rt.Start(context.Background(), counting, 0)).To(MatchError(task.ErrInvalidInterval))
			Expect(rt.Start(context.Background(), counting, -time.Second)).To(MatchError(task.ErrInvalidInterval))
			Expect(rt.State()).To(Equal(task.StateIdle))
		})

		It("rejects a nil action", func() {
			Expect(rt.Start(context.Background(), nil, interval)).To(MatchError(task.ErrNilAction))
			Expect(rt.State()).To(Equal(task.StateIdle))
		})

		It("cannot be restarted once stopped", func() {
			Expect(rt.Start(context.Background(), counting, interval)).To(Succeed())
			rt.Stop(true)
			Expect(rt.Start(context.Background(), counting, interval)).To(MatchError(task.ErrTaskStopped))
			Expect(rt.State()).To(Equal(task.StateStopped))
		})
	})

	Describe("Stop", func() {
		It("does nothing on an idle task", func() {
			Expect(func() { rt.Stop(true) }).NotTo(Panic())
			Expect(func() { rt.Stop(false) }).NotTo(Panic())
			Expect(rt.State()).To(Equal(task.StateIdle))
		})

		It("does nothing on a stopped task", func() {
			Expect(rt.Start(context.Background(), counting, interval)).To(Succeed())
			rt.Stop(true)
			Expect(func() { rt.Stop(true) }).NotTo(Panic())
			Expect(rt.State()).To(Equal(task.StateStopped))
		})

		It("runs exactly one tick when stopped right after the first", func() {
			Expect(rt.Start(context.Background(), counting, interval)).To(Succeed())
			Eventually(calls.Load).Should(Equal(int32(1)))

			rt.Stop(true)

			Expect(rt.IsRunning()).To(BeFalse())
			Expect(rt.State()).To(Equal(task.StateStopped))
			Expect(rt.Done()).To(BeClosed())

			mock.Add(5 * interval)
			Consistently(calls.Load, 50*time.Millisecond).Should(Equal(int32(1)))
		})

		It("waits for the tick in flight without cancelling it", func() {
			release := make(chan struct{})
			entered := make(chan struct{})
			var ctxErr atomic.Value

			blocking := func(ctx context.Context) error {
				close(entered)
				<-release
				ctxErr.Store(fmt.Sprint(ctx.Err()))
				return nil
			}

			Expect(rt.Start(context.Background(), blocking, interval)).To(Succeed())
			Eventually(entered).Should(BeClosed())

			stopped := make(chan struct{})
			go func() {
				defer GinkgoRecover()
				rt.Stop(true)
				close(stopped)
			}()

			Eventually(rt.State).Should(Equal(task.StateStopRequested))
			Expect(rt.IsRunning()).To(BeFalse())
			Consistently(stopped, 50*time.Millisecond).ShouldNot(BeClosed())

			close(release)
			Eventually(stopped).Should(BeClosed())
			Expect(rt.State()).To(Equal(task.StateStopped))
			Expect(ctxErr.Load()).To(Equal("<nil>"))
		})

		It("returns immediately without wait and stops asynchronously", func() {
			release := make(chan struct{})
			entered := make(chan struct{})
			blocking := func(context.Context) error {
				close(entered)
				<-release
				return nil
			}

			Expect(rt.Start(context.Background(), blocking, interval)).To(Succeed())
			Eventually(entered).Should(BeClosed())

			rt.Stop(false)
			Expect(rt.State()).To(Equal(task.StateStopRequested))
			Expect(rt.Start(context.Background(), counting, interval)).To(MatchError(task.ErrAlreadyRunning))

			close(release)
			Eventually(rt.Done()).Should(BeClosed())
			Expect(rt.State()).To(Equal(task.StateStopped))
		})

		It("interrupts the wait between ticks", func() {
			Expect(rt.Start(context.Background(), counting, time.Hour)).To(Succeed())
			Eventually(calls.Load).Should(Equal(int32(1)))

			done := make(chan struct{})
			go func() {
				rt.Stop(true)
				close(done)
			}()
			Eventually(done).Should(BeClosed())
		})
	})

	Describe("context cancellation", func() {
		It("behaves like a stop request", func() {
			ctx, cancel := context.WithCancel(context.Background())
			Expect(rt.Start(ctx, counting, interval)).To(Succeed())
			Eventually(calls.Load).Should(Equal(int32(1)))

			cancel()

			Eventually(rt.Done()).Should(BeClosed())
			Expect(rt.State()).To(Equal(task.StateStopped))
			Expect(calls.Load()).To(Equal(int32(1)))
		})
	})

	Describe("failing ticks", func() {
		It("keeps the schedule after an error", func() {
			failing := func(context.Context) error {
				if calls.Add(1) == 2 {
					return errors.New("sensor read failed")
				}
				return nil
			}

			Expect(rt.Start(context.Background(), failing, interval)).To(Succeed())
			advanceUntil(func() bool { return calls.Load() >= 3 })

			errs := recorder.all()
			Expect(errs).To(HaveLen(1))

			var tickErr *task.TickError
			Expect(errors.As(errs[0], &tickErr)).To(BeTrue())
			Expect(tickErr.Tick).To(Equal(uint64(2)))
			Expect(tickErr.Panicked).To(BeFalse())
			Expect(errs[0]).To(MatchError(ContainSubstring("sensor read failed")))
		})

		It("recovers from a panic and keeps ticking", func() {
			panicking := func(context.Context) error {
				if calls.Add(1) == 1 {
					panic("collector exploded")
				}
				return nil
			}

			Expect(rt.Start(context.Background(), panicking, interval)).To(Succeed())
			advanceUntil(func() bool { return calls.Load() >= 2 })

			Eventually(recorder.all).Should(HaveLen(1))
			var tickErr *task.TickError
			Expect(errors.As(recorder.all()[0], &tickErr)).To(BeTrue())
			Expect(tickErr.Panicked).To(BeTrue())
			Expect(tickErr.Error()).To(ContainSubstring("collector exploded"))
			Expect(rt.IsRunning()).To(BeTrue())
		})
	})
})
