package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// LogLevel is a thin enum for user friendly level configuration decoupled from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a configuration string ("debug", "info", ...) into a
// LogLevel. Unknown values fall back to LogLevelInfo.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Logger defines the minimal logging interface used throughout the module.
// Arguments after msg are slog style key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// LoggerConfig configures construction of a FloorLogger.
type LoggerConfig struct {
	Level     LogLevel
	Format    string // json or text
	Output    io.Writer
	AddSource bool
	Component string
}

// DefaultLoggerConfig returns a baseline text info level configuration on stderr.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{Level: LogLevelInfo, Format: "text", Output: os.Stderr}
}

// FloorLogger wraps slog.Logger adding contextual cloning helpers and domain
// convenience methods. With* methods return copies; the receiver is never mutated.
type FloorLogger struct {
	logger    *slog.Logger
	component string
	attrs     []any
}

var _ Logger = (*FloorLogger)(nil)

// NewLogger builds a FloorLogger from a config (or defaults if nil).
func NewLogger(cfg *LoggerConfig) *FloorLogger {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Level), AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return &FloorLogger{logger: slog.New(handler), component: cfg.Component}
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *FloorLogger) clone() *FloorLogger {
	nl := *l
	nl.attrs = append([]any(nil), l.attrs...)
	return &nl
}

// WithComponent sets the logical component (floor, trader, researcher, ...).
func (l *FloorLogger) WithComponent(c string) *FloorLogger {
	nl := l.clone()
	nl.component = c
	return nl
}

// WithContext adds a key/value attribute that will be attached to every log entry.
func (l *FloorLogger) WithContext(key string, value any) *FloorLogger {
	nl := l.clone()
	nl.attrs = append(nl.attrs, key, value)
	return nl
}

func (l *FloorLogger) log(level slog.Level, msg string, args ...any) {
	all := make([]any, 0, len(l.attrs)+len(args)+2)
	if l.component != "" {
		all = append(all, "component", l.component)
	}
	all = append(all, l.attrs...)
	all = append(all, args...)
	l.logger.Log(context.Background(), level, msg, all...)
}

// Debug logs at debug level.
func (l *FloorLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args...) }

// Info logs at info level.
func (l *FloorLogger) Info(msg string, args ...any) { l.log(slog.LevelInfo, msg, args...) }

// Warn logs at warn level.
func (l *FloorLogger) Warn(msg string, args ...any) { l.log(slog.LevelWarn, msg, args...) }

// Error logs at error level.
func (l *FloorLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args...) }

// LogToolCall records execution details for a tool invocation.
func LogToolCall(l Logger, agent, tool string, dur time.Duration, err error) {
	if err != nil {
		l.Error("tool.call.failed", "agent", agent, "tool", tool, "duration", dur, "error", err.Error())
		return
	}
	l.Info("tool.call.completed", "agent", agent, "tool", tool, "duration", dur)
}

// LogLLMCall records model call latency and outcome.
func LogLLMCall(l Logger, agent, model string, dur time.Duration, err error) {
	if err != nil {
		l.Error("llm.call.failed", "agent", agent, "model", model, "duration", dur, "error", err.Error())
		return
	}
	l.Debug("llm.call.completed", "agent", agent, "model", model, "duration", dur)
}

// LogCycle records the aggregate result of one trading cycle.
func LogCycle(l Logger, succeeded, total int, dur time.Duration) {
	level := l.Info
	if succeeded < total {
		level = l.Warn
	}
	level("floor.cycle.completed", "succeeded", succeeded, "total", total, "duration", dur)
}

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}
