package internal

import (
	"io"
	"log"
	"os"
	"strings"
)

// LogLevel represents different logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

var levelTags = [...]string{"[ERROR] ", "[WARN] ", "[INFO] ", "[DEBUG] ", "[TRACE] "}

// String returns the upper-case level name
func (l LogLevel) String() string {
	if l < LogLevelError || l > LogLevelTrace {
		return "UNKNOWN"
	}
	return strings.Trim(levelTags[l], "[] ")
}

// Logger provides leveled printf-style logging. Loggers derived with With
// share the parent's output and level.
type Logger struct {
	level     LogLevel
	component string
	out       *log.Logger
}

// NewLogger creates a new logger with the specified level writing to stderr
func NewLogger(level LogLevel) *Logger {
	return NewLoggerTo(os.Stderr, level)
}

// NewLoggerTo creates a logger writing to w
func NewLoggerTo(w io.Writer, level LogLevel) *Logger {
	return &Logger{level: level, out: log.New(w, "", log.LstdFlags)}
}

// NewDiscardLogger creates a logger that drops everything
func NewDiscardLogger() *Logger {
	return NewLoggerTo(io.Discard, LogLevelError)
}

// NewDefaultLogger creates a logger based on LOG_LEVEL environment variable
func NewDefaultLogger() *Logger {
	return NewLogger(ParseLevel(os.Getenv("LOG_LEVEL")))
}

// ParseLevel maps a level name to a LogLevel, defaulting to INFO
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LogLevelError
	case "WARN", "WARNING":
		return LogLevelWarn
	case "DEBUG":
		return LogLevelDebug
	case "TRACE":
		return LogLevelTrace
	default:
		return LogLevelInfo
	}
}

// With returns a logger that tags every line with component,
// e.g. "[DEBUG] search: attempt #3".
func (l *Logger) With(component string) *Logger {
	if l.component != "" {
		component = l.component + "/" + component
	}
	return &Logger{level: l.level, component: component, out: l.out}
}

// Enabled reports whether messages at level are written. Use it to skip
// building expensive arguments for the per-attempt trace.
func (l *Logger) Enabled(level LogLevel) bool {
	return l.level >= level
}

// Level returns the current log level
func (l *Logger) Level() LogLevel {
	return l.level
}

func (l *Logger) logf(level LogLevel, format string, args []interface{}) {
	if l.level < level {
		return
	}
	prefix := levelTags[level]
	if l.component != "" {
		prefix += l.component + ": "
	}
	l.out.Printf(prefix+format, args...)
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) { l.logf(LogLevelError, format, args) }

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) { l.logf(LogLevelWarn, format, args) }

// Info logs info messages
func (l *Logger) Info(format string, args ...interface{}) { l.logf(LogLevelInfo, format, args) }

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) { l.logf(LogLevelDebug, format, args) }

// Trace logs trace messages
func (l *Logger) Trace(format string, args ...interface{}) { l.logf(LogLevelTrace, format, args) }

// Global logger instance
var DefaultLogger = NewDefaultLogger()
