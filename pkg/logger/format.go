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

package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// LevelName returns the printed name of a level. WARN is spelled out as WARNING.
func LevelName(l zapcore.Level) string {
	if l == zapcore.WarnLevel {
		return "WARNING"
	}
	return l.CapitalString()
}

// LevelEncoder serializes a level using LevelName.
func LevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(LevelName(l))
}

var levelColors = map[zapcore.Level]string{
	zapcore.DebugLevel:  "\x1b[35m",
	zapcore.InfoLevel:   "\x1b[34m",
	zapcore.WarnLevel:   "\x1b[33m",
	zapcore.ErrorLevel:  "\x1b[31m",
	zapcore.DPanicLevel: "\x1b[31m",
	zapcore.PanicLevel:  "\x1b[31m",
	zapcore.FatalLevel:  "\x1b[31m",
}

// ColorLevelEncoder is LevelEncoder with ANSI colors, for terminals.
func ColorLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	color, ok := levelColors[l]
	if !ok {
		enc.AppendString(LevelName(l))
		return
	}
	enc.AppendString(color + LevelName(l) + "\x1b[0m")
}

// PrettyConsoleEncoder produces human-readable lines like:
// [2006-01-02 15:04:05 MST] [INFO]	[Monitor]	CPU usage 12.5% - threshold=90
//
// Fields attached with With are kept in the embedded map encoder and printed
// after the per-entry fields.
type PrettyConsoleEncoder struct {
	*zapcore.MapObjectEncoder
	cfg  zapcore.EncoderConfig
	pool buffer.Pool
}

// NewPrettyConsoleEncoder creates a new PrettyConsoleEncoder instance.
func NewPrettyConsoleEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return &PrettyConsoleEncoder{
		MapObjectEncoder: zapcore.NewMapObjectEncoder(),
		cfg:              cfg,
		pool:             buffer.NewPool(),
	}
}

// Clone implements zapcore.Encoder.
func (e *PrettyConsoleEncoder) Clone() zapcore.Encoder {
	ctx := zapcore.NewMapObjectEncoder()
	for k, v := range e.Fields {
		ctx.Fields[k] = v
	}
	return &PrettyConsoleEncoder{
		MapObjectEncoder: ctx,
		cfg:              e.cfg,
		pool:             e.pool,
	}
}

// EncodeEntry formats a log entry in a human-readable format.
func (e *PrettyConsoleEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	line := e.pool.Get()

	line.AppendByte('[')
	if entry.Time.IsZero() {
		line.AppendString("no timestamp")
	} else {
		line.AppendString(entry.Time.Format("2006-01-02 15:04:05 MST"))
	}
	line.AppendString("] [")
	line.AppendString(LevelName(entry.Level))
	line.AppendString("]\t")

	if entry.LoggerName != "" {
		line.AppendByte('[')
		line.AppendString(entry.LoggerName)
		line.AppendString("]\t")
	}

	line.AppendString(entry.Message)

	rendered := renderFields(fields)
	rendered = append(rendered, renderContext(e.Fields)...)
	if len(rendered) > 0 {
		line.AppendString(" - ")
		line.AppendString(strings.Join(rendered, ", "))
	}

	if entry.Stack != "" && e.cfg.StacktraceKey != "" {
		line.AppendByte('\n')
		line.AppendString(entry.Stack)
	}

	if e.cfg.LineEnding != "" {
		line.AppendString(e.cfg.LineEnding)
	} else {
		line.AppendString(zapcore.DefaultLineEnding)
	}

	return line, nil
}

// renderFields keeps the call-site order of fields.
func renderFields(fields []zapcore.Field) []string {
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		enc := zapcore.NewMapObjectEncoder()
		field.AddTo(enc)
		out = append(out, fmt.Sprintf("%s=%v", field.Key, enc.Fields[field.Key]))
	}
	return out
}

// renderContext sorts by key since the map loses insertion order.
func renderContext(ctx map[string]interface{}) []string {
	if len(ctx) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%v", k, ctx[k]))
	}
	return out
}
