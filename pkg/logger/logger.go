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
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/united-manufacturing-hub/sysmon/pkg/env"
)

// LogLevel represents the logging level.
type LogLevel string

// LogFormat represents the logging format.
type LogFormat string

const (
	// DebugLevel logs debug level messages.
	DebugLevel LogLevel = "DEBUG"
	// InfoLevel logs informational messages.
	InfoLevel LogLevel = "INFO"
	// WarnLevel logs warning messages.
	WarnLevel LogLevel = "WARN"
	// WarningLevel is an alias for WarnLevel matching the printed level name.
	WarningLevel LogLevel = "WARNING"
	// ErrorLevel logs error messages.
	ErrorLevel LogLevel = "ERROR"
	// ProductionLevel is an alias for InfoLevel, used for easier configuration.
	ProductionLevel LogLevel = "PRODUCTION"

	// FormatConsole indicates human-readable console format.
	FormatConsole LogFormat = "CONSOLE"
	// FormatJSON indicates structured JSON format.
	FormatJSON LogFormat = "JSON"
	// FormatPretty indicates highly human-readable format.
	FormatPretty LogFormat = "PRETTY"
)

// Options configures the global logger once the config file has been read.
type Options struct {
	// Level is one of DEBUG, INFO, WARN(ING), ERROR.
	Level string
	// Format applies to the console sink. The file sink always uses the console encoder without colors.
	Format LogFormat
	// FilePath enables the append-only file sink when non-empty.
	FilePath string
	// WrapCore lets the caller decorate the final core, e.g. with the sentry hook.
	WrapCore func(zapcore.Core) zapcore.Core
}

var (
	initOnce    sync.Once
	mu          sync.Mutex
	initialized bool
	// logFile is the currently open file sink, closed on reconfiguration.
	logFile *os.File
)

// getLogLevel converts a string log level to zapcore.Level.
func getLogLevel(level LogLevel) zapcore.Level {
	switch strings.ToUpper(string(level)) {
	case string(DebugLevel):
		return zapcore.DebugLevel
	case string(InfoLevel), string(ProductionLevel):
		return zapcore.InfoLevel
	case string(WarnLevel), string(WarningLevel):
		return zapcore.WarnLevel
	case string(ErrorLevel):
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseFormat returns the matching LogFormat or an error for unknown values.
func ParseFormat(raw string) (LogFormat, error) {
	format := LogFormat(strings.ToUpper(strings.TrimSpace(raw)))
	switch format {
	case FormatConsole, FormatJSON, FormatPretty:
		return format, nil
	default:
		return "", fmt.Errorf("unknown log format %q (expected PRETTY, CONSOLE or JSON)", raw)
	}
}

// ValidLevel reports whether raw names a supported level.
func ValidLevel(raw string) bool {
	switch LogLevel(strings.ToUpper(strings.TrimSpace(raw))) {
	case DebugLevel, InfoLevel, WarnLevel, WarningLevel, ErrorLevel, ProductionLevel:
		return true
	}
	return false
}

// timeEncoder encodes the time as a human-readable timestamp.
func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05 MST"))
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "component",
		CallerKey:        "caller",
		FunctionKey:      zapcore.OmitKey,
		MessageKey:       "msg",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		EncodeLevel:      LevelEncoder,
		EncodeTime:       timeEncoder,
		ConsoleSeparator: " | ",
	}
}

// newEncoder picks the encoder for a console sink.
func newEncoder(logFormat LogFormat) zapcore.Encoder {
	cfg := encoderConfig()

	switch logFormat {
	case FormatPretty:
		return NewPrettyConsoleEncoder(cfg)
	case FormatConsole:
		cfg.EncodeLevel = ColorLevelEncoder
		return zapcore.NewConsoleEncoder(cfg)
	default:
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(cfg)
	}
}

// New creates a new zap logger writing to stdout with the specified log level and format.
func New(logLevel string, logFormat LogFormat) *zap.Logger {
	core := zapcore.NewCore(
		newEncoder(logFormat),
		zapcore.AddSync(os.Stdout),
		zap.NewAtomicLevelAt(getLogLevel(LogLevel(logLevel))),
	)

	return zap.New(core, zap.AddCaller())
}

// openLogFile opens path for appending, creating parent directories as needed.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory for %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}

// NewWithOptions builds a logger that tees stdout and, if configured, an append-only file.
// The returned file (nil without a file sink) must be closed by the caller.
func NewWithOptions(opts Options) (*zap.Logger, *os.File, error) {
	level := zap.NewAtomicLevelAt(getLogLevel(LogLevel(opts.Level)))

	format := opts.Format
	if format == "" {
		format = FormatPretty
	}

	cores := []zapcore.Core{
		zapcore.NewCore(newEncoder(format), zapcore.Lock(os.Stdout), level),
	}

	var file *os.File
	if opts.FilePath != "" {
		f, err := openLogFile(opts.FilePath)
		if err != nil {
			return nil, nil, err
		}
		file = f
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.Lock(f), level))
	}

	core := zapcore.NewTee(cores...)
	if opts.WrapCore != nil {
		core = opts.WrapCore(core)
	}

	return zap.New(core, zap.AddCaller()), file, nil
}

// Initialize sets up the global stdout logger from LOGGING_LEVEL and LOGGING_FORMAT.
// It only runs once and is a no-op after Configure.
func Initialize() {
	initOnce.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		if initialized {
			return
		}

		logLevel, _ := env.GetAsString("LOGGING_LEVEL", false, string(ProductionLevel))
		rawFormat, _ := env.GetAsString("LOGGING_FORMAT", false, string(FormatPretty))
		logFormat, err := ParseFormat(rawFormat)
		if err != nil {
			logFormat = FormatPretty
		}

		zap.ReplaceGlobals(New(logLevel, logFormat))
		initialized = true
	})
}

// Configure replaces the global logger with one built from opts.
// A previously opened log file is closed after the swap.
func Configure(opts Options) error {
	log, file, err := NewWithOptions(opts)
	if err != nil {
		return err
	}

	mu.Lock()
	previous := logFile
	logFile = file
	zap.ReplaceGlobals(log)
	initialized = true
	mu.Unlock()

	if previous != nil {
		_ = previous.Close()
	}

	log.Info("Logger initialized",
		zap.String("level", opts.Level),
		zap.String("format", string(opts.Format)),
		zap.String("file", opts.FilePath))

	return nil
}

func isInitialized() bool {
	mu.Lock()
	defer mu.Unlock()
	return initialized
}

// GetLogger returns the global logger, initializing it if needed.
func GetLogger() *zap.Logger {
	if !isInitialized() {
		Initialize()
	}

	return zap.L()
}

// Sync flushes any buffered log entries.
func Sync() error {
	return zap.L().Sync()
}

// Close flushes the global logger and closes the file sink, if any.
func Close() error {
	_ = Sync()

	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// For creates a named logger for a specific component.
func For(component string) *zap.SugaredLogger {
	if !isInitialized() {
		Initialize()
	}

	return zap.S().Named(component)
}
