// Package rag contains the internal building blocks of the raggy framework:
// document loading, text splitting, metadata filtering, embedding, vector
// storage and the retrieval chain. The public API in the root package wraps
// the types defined here.
package rag

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// LogLevel represents the severity level of a log message.
// Higher values indicate more verbose logging.
type LogLevel int

const (
	// LogLevelOff disables all logging
	LogLevelOff LogLevel = iota
	// LogLevelError enables only error messages
	LogLevelError
	// LogLevelWarn enables error and warning messages
	LogLevelWarn
	// LogLevelInfo enables error, warning, and info messages
	LogLevelInfo
	// LogLevelDebug enables all messages including debug
	LogLevelDebug
)

// Logger defines the interface for logging operations. Loggers are passed
// into component constructors explicitly; there is no process-wide verbosity
// toggle. Implementations must support multiple severity levels and
// structured logging with key-value pairs.
type Logger interface {
	// Debug logs a message at debug level with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})
	// Info logs a message at info level with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})
	// Warn logs a message at warning level with optional key-value pairs
	Warn(msg string, keysAndValues ...interface{})
	// Error logs a message at error level with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
	// SetLevel changes the current logging level
	SetLevel(level LogLevel)
}

// DefaultLogger provides a basic implementation of the Logger interface
// using the standard library's log package, writing to os.Stderr.
type DefaultLogger struct {
	logger *log.Logger
	level  LogLevel
}

// NewLogger creates a new DefaultLogger instance with the specified log level.
func NewLogger(level LogLevel) Logger {
	return &DefaultLogger{
		logger: log.New(os.Stderr, "", log.LstdFlags),
		level:  level,
	}
}

// SetLevel updates the logging level. Messages below this level are dropped.
func (l *DefaultLogger) SetLevel(level LogLevel) {
	l.level = level
}

func (l *DefaultLogger) log(level LogLevel, msg string, keysAndValues ...interface{}) {
	if level <= l.level {
		l.logger.Printf("%s: %s %v", level, msg, keysAndValues)
	}
}

// Debug logs a message at debug level.
func (l *DefaultLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log(LogLevelDebug, msg, keysAndValues...)
}

// Info logs a message at info level.
func (l *DefaultLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log(LogLevelInfo, msg, keysAndValues...)
}

// Warn logs a message at warning level.
func (l *DefaultLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log(LogLevelWarn, msg, keysAndValues...)
}

// Error logs a message at error level.
func (l *DefaultLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log(LogLevelError, msg, keysAndValues...)
}

// String returns the string representation of a LogLevel.
func (l LogLevel) String() string {
	return [...]string{"OFF", "ERROR", "WARN", "INFO", "DEBUG"}[l]
}

// UnmarshalText implements the encoding.TextUnmarshaler interface so a
// LogLevel can be configured from string values in configuration files or
// environment variables.
func (l *LogLevel) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "OFF":
		*l = LogLevelOff
	case "ERROR":
		*l = LogLevelError
	case "WARN":
		*l = LogLevelWarn
	case "INFO":
		*l = LogLevelInfo
	case "DEBUG":
		*l = LogLevelDebug
	default:
		return fmt.Errorf("invalid log level: %s", string(text))
	}
	return nil
}

// NopLogger discards every message. It is the default for components that
// were not handed a logger, so library users opt into output per instance
// instead of flipping a package-wide switch.
type NopLogger struct{}

// NewNopLogger returns a Logger that discards all messages.
func NewNopLogger() Logger { return NopLogger{} }

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) SetLevel(LogLevel)            {}
