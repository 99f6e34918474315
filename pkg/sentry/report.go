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
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

type IssueType string

const (
	IssueTypeWarning IssueType = "warning"
	IssueTypeError   IssueType = "error"
	// IssueTypeFatal is flushed synchronously; the caller is expected to exit afterwards.
	IssueTypeFatal IssueType = "fatal"
)

// FlushTimeout bounds how long a fatal report may delay process exit.
const FlushTimeout = 5 * time.Second

func ReportIssue(err error, issueType IssueType, log *zap.SugaredLogger) {
	ReportIssueWithContext(err, issueType, log, nil)
}

func ReportIssuef(issueType IssueType, log *zap.SugaredLogger, template string, args ...interface{}) {
	ReportIssue(fmt.Errorf(template, args...), issueType, log)
}

// ReportIssueWithContext logs err and, if reporting is enabled and the
// debounce window allows it, sends it to Sentry with context as tags.
func ReportIssueWithContext(err error, issueType IssueType, log *zap.SugaredLogger, context map[string]interface{}) {
	if err == nil {
		return
	}

	if log == nil {
		log = zap.NewNop().Sugar()
	}

	var level sentry.Level

	switch issueType {
	case IssueTypeFatal:
		log.Errorf("sysmon has encountered a fatal error and will now terminate: %s", err)
		level = sentry.LevelFatal
	case IssueTypeError:
		log.Error(err)
		level = sentry.LevelError
	case IssueTypeWarning:
		log.Warn(err)
		level = sentry.LevelWarning
	default:
		return
	}

	if !Enabled() {
		return
	}

	// fatal reports bypass the debounce: there is no later chance to send them
	if level != sentry.LevelFatal && !allowSend(level) {
		return
	}

	sendSentryEvent(createSentryEvent(level, err, context))

	if level == sentry.LevelFatal {
		sentry.Flush(FlushTimeout)
	}
}

// ReportTickError reports a failed or panicking tick of a repeating task.
func ReportTickError(log *zap.SugaredLogger, task string, tick uint64, err error) {
	ReportIssueWithContext(err, IssueTypeError, log, map[string]interface{}{
		"task":      task,
		"tick":      tick,
		"operation": "tick",
	})
}
