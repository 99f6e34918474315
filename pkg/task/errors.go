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

package task

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning is returned by Start while the task is Running or StopRequested.
	ErrAlreadyRunning = errors.New("task is already running")
	// ErrTaskStopped is returned by Start once the task reached Stopped. A stopped task cannot be restarted.
	ErrTaskStopped = errors.New("task has been stopped")
	// ErrInvalidInterval is returned by Start for a non-positive interval.
	ErrInvalidInterval = errors.New("interval must be positive")
	// ErrNilAction is returned by Start without an action.
	ErrNilAction = errors.New("action must not be nil")
)

// TickError wraps a failure of a single tick. The schedule continues after it.
type TickError struct {
	Err      error
	Tick     uint64
	Panicked bool
}

func (e *TickError) Error() string {
	if e.Panicked {
		return fmt.Sprintf("tick %d panicked: %v", e.Tick, e.Err)
	}

	return fmt.Sprintf("tick %d failed: %v", e.Tick, e.Err)
}

func (e *TickError) Unwrap() error {
	return e.Err
}
