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

// Package sentry forwards unexpected failures to Sentry. Without a DSN every
// function here only logs.
package sentry

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/united-manufacturing-hub/sysmon/pkg/constants"
)

// Options configures the Sentry client.
type Options struct {
	DSN         string
	Environment string
	AppVersion  string
	// RunID is attached to every event as the run_id tag.
	RunID string
	// Debounce limits reports to one per level every DebounceWindow.
	Debounce bool
	// Transport overrides the HTTP transport, used by tests.
	Transport sentry.Transport
}

// DebounceWindow is the minimum time between two reports of the same level.
const DebounceWindow = 2 * time.Hour

var (
	enabled atomic.Bool

	debounceMu     sync.Mutex
	shouldDebounce = true
	lastSent       = map[sentry.Level]time.Time{}
)

// Enabled reports whether Init configured a client.
func Enabled() bool {
	return enabled.Load()
}

// Init configures the global Sentry client. An empty DSN leaves reporting
// disabled and is not an error.
func Init(opts Options) error {
	debounceMu.Lock()
	shouldDebounce = opts.Debounce
	lastSent = map[sentry.Level]time.Time{}
	debounceMu.Unlock()

	if opts.DSN == "" {
		zap.S().Debug("Sentry disabled: no DSN configured")
		enabled.Store(false)

		return nil
	}

	appVersion := opts.AppVersion
	if appVersion == "" {
		appVersion = constants.DefaultAppVersion
	}

	environment := opts.Environment
	if environment == "" {
		environment = environmentFor(appVersion)
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         opts.DSN,
		Environment: environment,
		Release:     "sysmon@" + appVersion,
		Transport:   opts.Transport,
	})
	if err != nil {
		enabled.Store(false)

		return fmt.Errorf("failed to initialize Sentry: %w", err)
	}

	if opts.RunID != "" {
		sentry.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetTag("run_id", opts.RunID)
		})
	}

	enabled.Store(true)

	return nil
}

// environmentFor maps tagged releases to production and everything else,
// including unparsable versions, to development.
func environmentFor(appVersion string) string {
	version, err := semver.NewVersion(appVersion)
	if err != nil || version.Prerelease() != "" || appVersion == constants.DefaultAppVersion {
		return constants.DefaultDevelopmentEnvironment
	}

	return constants.DefaultProductionEnvironment
}

// Flush waits for buffered events. It is a no-op when reporting is disabled.
func Flush(timeout time.Duration) bool {
	if !Enabled() {
		return true
	}

	return sentry.Flush(timeout)
}

// allowSend applies the per-level debounce window.
func allowSend(level sentry.Level) bool {
	debounceMu.Lock()
	defer debounceMu.Unlock()

	if !shouldDebounce {
		return true
	}

	if last, ok := lastSent[level]; ok && time.Since(last) < DebounceWindow {
		return false
	}

	lastSent[level] = time.Now()

	return true
}

func getMeaningfulErrorTitle(err error) string {
	message := err.Error()

	// first phrase, up to a period, comma or colon
	idx := strings.IndexAny(message, ".,:")
	if idx > 0 {
		message = message[:idx]
	}

	if len(message) > 100 {
		message = message[:97] + "..."
	}

	return message
}

func createSentryEvent(level sentry.Level, err error, context map[string]interface{}) *sentry.Event {
	event := sentry.NewEvent()
	event.Level = level
	event.Message = err.Error()
	event.Exception = []sentry.Exception{{
		Type:       getMeaningfulErrorTitle(err),
		Value:      err.Error(),
		Stacktrace: sentry.ExtractStacktrace(err),
	}}

	if level == sentry.LevelFatal || level == sentry.LevelError {
		threads, stacktrace := captureGoroutinesAsThreads()
		event.Threads = threads
		event.Attachments = append(event.Attachments, &sentry.Attachment{
			Filename:    "stacktrace.txt",
			ContentType: "text/plain",
			Payload:     stacktrace,
		})
	}

	event.Fingerprint = []string{
		"{{ default }}",
		"level: " + getLevelString(level),
	}

	for key, value := range context {
		switch v := value.(type) {
		case string:
			event.Tags[key] = v
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, bool:
			event.Tags[key] = fmt.Sprintf("%v", v)
		default:
			event.Extra[key] = v
		}

		if isFingerprintKey(key) {
			event.Fingerprint = append(event.Fingerprint, fmt.Sprintf("%s: %v", key, value))
		}
	}

	return event
}

func getLevelString(level sentry.Level) string {
	switch level {
	case sentry.LevelDebug:
		return "debug"
	case sentry.LevelInfo:
		return "info"
	case sentry.LevelWarning:
		return "warning"
	case sentry.LevelError:
		return "error"
	case sentry.LevelFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

func sendSentryEvent(event *sentry.Event) {
	sentry.CurrentHub().Clone().CaptureEvent(event)
}
