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
	"context"

	"github.com/looplab/fsm"
)

// State is the lifecycle state of a RepeatingTask.
// Transitions only move forward: Idle, Running, StopRequested, Stopped.
type State string

const (
	StateIdle          State = "idle"
	StateRunning       State = "running"
	StateStopRequested State = "stop_requested"
	StateStopped       State = "stopped"
)

const (
	eventStart       = "start"
	eventRequestStop = "request_stop"
	// eventFinish also leaves Running directly when the start context is cancelled.
	eventFinish = "finish"
)

func newStateMachine(onEnter func(from, to State)) *fsm.FSM {
	return fsm.NewFSM(
		string(StateIdle),
		fsm.Events{
			{Name: eventStart, Src: []string{string(StateIdle)}, Dst: string(StateRunning)},
			{Name: eventRequestStop, Src: []string{string(StateRunning)}, Dst: string(StateStopRequested)},
			{Name: eventFinish, Src: []string{string(StateRunning), string(StateStopRequested)}, Dst: string(StateStopped)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				onEnter(State(e.Src), State(e.Dst))
			},
		},
	)
}
