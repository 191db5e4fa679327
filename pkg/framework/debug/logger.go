// Package debug provides logging, buffer analysis and profiling helpers for
// plugin hosting and development.
package debug

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the severity of a log message.
type LogLevel int

const (
	// LogLevelDebug is for detailed debugging information.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is for general informational messages.
	LogLevelInfo
	// LogLevelWarn is for warning messages.
	LogLevelWarn
	// LogLevelError is for error messages.
	LogLevelError
	// LogLevelOff disables all logging.
	LogLevelOff
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "debug"
	case LogLevelInfo:
		return "info"
	case LogLevelWarn:
		return "warn"
	case LogLevelError:
		return "error"
	case LogLevelOff:
		return "off"
	default:
		return "unknown"
	}
}

func (l LogLevel) zerolog() zerolog.Level {
	switch l {
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelInfo:
		return zerolog.InfoLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}

// ParseLevel converts a level name such as "debug" or "WARN" to a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return LogLevelDebug, nil
	case "info", "":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error", "fatal", "panic":
		return LogLevelError, nil
	case "off", "disabled", "none":
		return LogLevelOff, nil
	}
	return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger is a printf-style logger on top of zerolog. The prefix is emitted
// as the "component" field.
type Logger struct {
	mu     sync.Mutex
	output io.Writer
	prefix string
	level  LogLevel
	zl     zerolog.Logger
}

var (
	// defaultLogger is the global logger instance.
	defaultLogger = New(os.Stderr, "")
)

// NewConsoleWriter returns the human-readable zerolog writer used by all loggers.
func NewConsoleWriter(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    color.NoColor,
		TimeFormat: time.RFC3339,
	}
}

// New creates a logger writing console-formatted lines to output at info level.
func New(output io.Writer, prefix string) *Logger {
	l := &Logger{
		output: output,
		prefix: prefix,
		level:  LogLevelInfo,
	}
	l.rebuild()
	return l
}

func (l *Logger) rebuild() {
	ctx := zerolog.New(NewConsoleWriter(l.output)).With().Timestamp()
	if l.prefix != "" {
		ctx = ctx.Str("component", l.prefix)
	}
	if l.level <= LogLevelDebug {
		ctx = ctx.Caller()
	}
	l.zl = ctx.Logger().Level(l.level.zerolog())
}

// SetOutput sets the output destination for the logger.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
	l.rebuild()
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.rebuild()
}

// Level returns the minimum log level.
func (l *Logger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetPrefix sets the logger prefix.
func (l *Logger) SetPrefix(prefix string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prefix = prefix
	l.rebuild()
}

// With returns a child logger sharing output and level with a new prefix.
func (l *Logger) With(prefix string) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	child := &Logger{output: l.output, prefix: prefix, level: l.level}
	child.rebuild()
	return child
}

// Zerolog returns the underlying structured logger.
func (l *Logger) Zerolog() *zerolog.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	zl := l.zl
	return &zl
}

func (l *Logger) event(level LogLevel) *zerolog.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch level {
	case LogLevelDebug:
		return l.zl.Debug()
	case LogLevelInfo:
		return l.zl.Info()
	case LogLevelWarn:
		return l.zl.Warn()
	default:
		return l.zl.Error()
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	l.event(LogLevelDebug).Msgf(format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...any) {
	l.event(LogLevelInfo).Msgf(format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.event(LogLevelWarn).Msgf(format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.event(LogLevelError).Msgf(format, args...)
}

// ConfigureGlobalLogging sets the level and output of the default logger and
// of zerolog's global logger. Components created afterwards with Component
// inherit both.
func ConfigureGlobalLogging(levelStr string, w io.Writer) error {
	level, err := ParseLevel(levelStr)
	if err != nil {
		return err
	}
	if w == nil {
		w = os.Stderr
	}

	defaultLogger.mu.Lock()
	defaultLogger.output = w
	defaultLogger.level = level
	defaultLogger.rebuild()
	log.Logger = defaultLogger.zl
	defaultLogger.mu.Unlock()

	zerolog.DefaultContextLogger = &log.Logger
	return nil
}

// Default returns the default logger instance.
func Default() *Logger {
	return defaultLogger
}

// Component returns a child of the default logger tagged with name.
func Component(name string) *Logger {
	return defaultLogger.With(name)
}

// SetOutput sets the output destination for the default logger.
func SetOutput(w io.Writer) {
	defaultLogger.SetOutput(w)
}

// SetLevel sets the minimum log level for the default logger.
func SetLevel(level LogLevel) {
	defaultLogger.SetLevel(level)
}

// Debug logs a debug message using the default logger.
func Debug(format string, args ...any) {
	defaultLogger.Debug(format, args...)
}

// Info logs an informational message using the default logger.
func Info(format string, args ...any) {
	defaultLogger.Info(format, args...)
}

// Warn logs a warning message using the default logger.
func Warn(format string, args ...any) {
	defaultLogger.Warn(format, args...)
}

// Error logs an error message using the default logger.
func Error(format string, args ...any) {
	defaultLogger.Error(format, args...)
}
