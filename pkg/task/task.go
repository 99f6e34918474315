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

// Package task runs an action repeatedly on a fixed interval in one background
// goroutine until it is stopped.
//
// The lifecycle is Idle -> Running -> StopRequested -> Stopped. Stopped is
// terminal. Ticks never overlap and a tick in flight is never interrupted:
// Stop only prevents the next tick and cuts the wait between ticks short.
package task

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/united-manufacturing-hub/sysmon/pkg/constants"
	"github.com/united-manufacturing-hub/sysmon/pkg/logger"
	"github.com/united-manufacturing-hub/sysmon/pkg/metrics"
	"github.com/united-manufacturing-hub/sysmon/pkg/sentry"
)

// Action is one unit of work. It receives the context passed to Start.
// A returned error or a panic is reported and the schedule continues.
type Action func(ctx context.Context) error

// ErrorHandler receives every *TickError, on the task goroutine.
type ErrorHandler func(err error)

// Config holds the optional collaborators of a RepeatingTask.
type Config struct {
	// Name labels logs and metrics. Defaults to constants.DefaultTaskName.
	Name string
	// Clock defaults to the wall clock.
	Clock clock.Clock
	// Logger defaults to the RepeatingTask component logger.
	Logger *zap.SugaredLogger
	// ErrorHandler defaults to a no-op.
	ErrorHandler ErrorHandler
}

// RepeatingTask runs an Action on a fixed interval.
// Start, Stop and IsRunning must not be called from inside the action.
type RepeatingTask struct {
	clock   clock.Clock
	log     *zap.SugaredLogger
	onError ErrorHandler
	machine *fsm.FSM

	// stopCh is closed exactly once, on Running -> StopRequested.
	stopCh chan struct{}
	// done is closed when the goroutine has exited and the state is Stopped.
	done chan struct{}

	name string

	// mu serializes lifecycle transitions together with stopCh and done.
	mu sync.Mutex

	ticks atomic.Uint64
}

// New creates an idle task.
func New(cfg Config) *RepeatingTask {
	if cfg.Name == "" {
		cfg.Name = constants.DefaultTaskName
	}

	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.For(logger.ComponentRepeatingTask)
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(error) {}
	}

	t := &RepeatingTask{
		name:    cfg.Name,
		clock:   cfg.Clock,
		log:     cfg.Logger.With("task", cfg.Name),
		onError: cfg.ErrorHandler,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}

	t.machine = newStateMachine(func(from, to State) {
		t.log.Debugf("Task state %s -> %s", from, to)
		metrics.UpdateTaskState(t.name, string(to))
	})

	metrics.UpdateTaskState(t.name, string(StateIdle))
	metrics.InitErrorCounter(metrics.ComponentRepeatingTask, t.name)

	return t
}

// Start runs action once immediately and then every interval until Stop is
// called or ctx is cancelled. Cancelling ctx behaves like Stop(false).
func (t *RepeatingTask) Start(ctx context.Context, action Action, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidInterval, interval)
	}

	if action == nil {
		return ErrNilAction
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.current() {
	case StateRunning, StateStopRequested:
		return ErrAlreadyRunning
	case StateStopped:
		return ErrTaskStopped
	case StateIdle:
	}

	if err := t.transition(eventStart); err != nil {
		return err
	}

	t.log.Infof("Starting task with interval %s", interval)

	go t.run(ctx, action, interval)

	return nil
}

// Stop requests the task to stop after the tick in flight, if any.
// With wait it blocks until the goroutine has exited and the state is Stopped.
// Stop on an idle or stopped task does nothing. Stop must not be called from
// inside the action with wait set.
func (t *RepeatingTask) Stop(wait bool) {
	t.mu.Lock()

	switch t.current() {
	case StateIdle, StateStopped:
		t.mu.Unlock()

		return
	case StateRunning:
		if err := t.transition(eventRequestStop); err != nil {
			t.log.Errorf("Failed to request stop: %v", err)
		}

		close(t.stopCh)
		t.log.Info("Stop requested")
	case StateStopRequested:
	}

	done := t.done
	t.mu.Unlock()

	if wait {
		<-done
	}
}

// IsRunning reports whether the task is Running. It is false as soon as a stop was requested.
func (t *RepeatingTask) IsRunning() bool {
	return t.State() == StateRunning
}

// State returns the current lifecycle state.
func (t *RepeatingTask) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.current()
}

// Done is closed once a started task has fully stopped. It never closes for a task that was never started.
func (t *RepeatingTask) Done() <-chan struct{} {
	return t.done
}

// Ticks returns how many ticks have been started.
func (t *RepeatingTask) Ticks() uint64 {
	return t.ticks.Load()
}

// Name returns the task name used in logs and metrics.
func (t *RepeatingTask) Name() string {
	return t.name
}

func (t *RepeatingTask) current() State {
	return State(t.machine.Current())
}

// transition must be called with mu held. The fsm gets a background context
// because a cancelled start context must not block the final transition.
func (t *RepeatingTask) transition(event string) error {
	if err := t.machine.Event(context.Background(), event); err != nil {
		return fmt.Errorf("task %s: transition %q from %s: %w", t.name, event, t.current(), err)
	}

	return nil
}

func (t *RepeatingTask) run(ctx context.Context, action Action, interval time.Duration) {
	defer t.finish()

	for {
		select {
		case <-t.stopCh:
			return
		case <-ctx.Done():
			t.log.Infof("Context cancelled, stopping: %v", ctx.Err())

			return
		default:
		}

		t.tick(ctx, action, interval)

		timer := t.clock.Timer(interval)
		select {
		case <-timer.C:
		case <-t.stopCh:
			timer.Stop()

			return
		case <-ctx.Done():
			timer.Stop()
			t.log.Infof("Context cancelled, stopping: %v", ctx.Err())

			return
		}
	}
}

func (t *RepeatingTask) finish() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.transition(eventFinish); err != nil {
		t.log.Errorf("Failed to finish: %v", err)
	}

	close(t.done)
	t.log.Infof("Task stopped after %d ticks", t.ticks.Load())
}

func (t *RepeatingTask) tick(ctx context.Context, action Action, interval time.Duration) {
	tick := t.ticks.Add(1)
	start := t.clock.Now()

	panicked, err := t.invoke(ctx, action)

	elapsed := t.clock.Since(start)
	metrics.ObserveTickTime(t.name, elapsed)

	if elapsed > interval {
		metrics.IncTickOverrun(t.name)

		if elapsed > constants.TickOverrunCriticalFactor*interval {
			t.log.Errorf("Tick %d took %s, more than %dx the interval %s", tick, elapsed, constants.TickOverrunCriticalFactor, interval)
		} else {
			t.log.Warnf("Tick %d took %s, longer than the interval %s", tick, elapsed, interval)
		}
	}

	if err == nil {
		return
	}

	tickErr := &TickError{Tick: tick, Err: err, Panicked: panicked}
	metrics.IncErrorCountAndLog(metrics.ComponentRepeatingTask, t.name, tickErr, t.log)
	sentry.ReportTickError(t.log, t.name, tick, tickErr)
	t.onError(tickErr)
}

func (t *RepeatingTask) invoke(ctx context.Context, action Action) (panicked bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			err = fmt.Errorf("%v", r)
		}
	}()

	return false, action(ctx)
}
