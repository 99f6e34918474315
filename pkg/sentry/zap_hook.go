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
	"fmt"
	"math"
	"strconv"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap/zapcore"
)

// FingerprintKeys are the field keys that affect Sentry grouping.
var FingerprintKeys = []string{"operation", "metric", "task", "component"}

// SentryHook wraps a zapcore.Core and forwards ERROR and above to Sentry.
// Threshold warnings are ordinary monitoring output and stay local.
type SentryHook struct {
	zapcore.Core
	fields []zapcore.Field
}

// NewSentryHook creates a new SentryHook wrapping the given zapcore.Core.
func NewSentryHook(core zapcore.Core) *SentryHook {
	return &SentryHook{Core: core}
}

// WrapCore matches logger.Options.WrapCore.
func WrapCore(core zapcore.Core) zapcore.Core {
	return NewSentryHook(core)
}

// With returns a new SentryHook with the given fields added to the context.
func (h *SentryHook) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(h.fields)+len(fields))
	merged = append(merged, h.fields...)
	merged = append(merged, fields...)

	return &SentryHook{Core: h.Core.With(fields), fields: merged}
}

// Check determines whether the entry should be logged.
func (h *SentryHook) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if h.Enabled(entry.Level) {
		return ce.AddCore(entry, h)
	}

	return ce
}

// Write logs the entry to the underlying core and captures ERROR and above.
func (h *SentryHook) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if entry.Level >= zapcore.ErrorLevel && Enabled() {
		all := make([]zapcore.Field, 0, len(h.fields)+len(fields))
		all = append(all, h.fields...)
		all = append(all, fields...)

		go captureToSentry(entry, all)
	}

	return h.Core.Write(entry, fields)
}

func captureToSentry(entry zapcore.Entry, fields []zapcore.Field) {
	context := extractFieldsAsContext(fields)
	level := zapLevelToSentry(entry.Level)

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(level)
		scope.SetFingerprint(append([]string{
			"{{ default }}",
			"level: " + getLevelString(level),
		}, extractFingerprintKeys(fields)...))

		if entry.LoggerName != "" {
			scope.SetTag("logger", entry.LoggerName)
		}

		for k, v := range context {
			scope.SetTag(k, v)
		}

		sentry.CaptureMessage(entry.Message)
	})
}

// extractFieldsAsContext converts zap fields to a map of string values for Sentry tags.
func extractFieldsAsContext(fields []zapcore.Field) map[string]string {
	context := make(map[string]string, len(fields))

	for _, field := range fields {
		if value, ok := fieldString(field); ok {
			context[field.Key] = value
		}
	}

	return context
}

func fieldString(field zapcore.Field) (string, bool) {
	switch field.Type {
	case zapcore.StringType:
		return field.String, true
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type, zapcore.DurationType:
		return strconv.FormatInt(field.Integer, 10), true
	case zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		return strconv.FormatUint(uint64(field.Integer), 10), true
	case zapcore.BoolType:
		return strconv.FormatBool(field.Integer == 1), true
	case zapcore.Float64Type:
		return strconv.FormatFloat(math.Float64frombits(uint64(field.Integer)), 'g', -1, 64), true
	case zapcore.Float32Type:
		return strconv.FormatFloat(float64(math.Float32frombits(uint32(field.Integer))), 'g', -1, 32), true
	case zapcore.ErrorType:
		if err, ok := field.Interface.(error); ok && err != nil {
			return err.Error(), true
		}
	default:
		if field.Interface != nil {
			return fmt.Sprintf("%v", field.Interface), true
		}
	}

	return "", false
}

func isFingerprintKey(key string) bool {
	for _, k := range FingerprintKeys {
		if k == key {
			return true
		}
	}

	return false
}

func extractFingerprintKeys(fields []zapcore.Field) []string {
	var fingerprint []string

	for _, field := range fields {
		if !isFingerprintKey(field.Key) {
			continue
		}

		if value, ok := fieldString(field); ok {
			fingerprint = append(fingerprint, fmt.Sprintf("%s: %s", field.Key, value))
		}
	}

	return fingerprint
}

func zapLevelToSentry(level zapcore.Level) sentry.Level {
	switch level {
	case zapcore.DebugLevel:
		return sentry.LevelDebug
	case zapcore.InfoLevel:
		return sentry.LevelInfo
	case zapcore.WarnLevel:
		return sentry.LevelWarning
	case zapcore.ErrorLevel:
		return sentry.LevelError
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return sentry.LevelFatal
	default:
		return sentry.LevelInfo
	}
}
