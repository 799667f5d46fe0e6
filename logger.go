package raggy

import (
	"github.com/danruto/raggy/rag"
)

// LogLevel represents the severity of a log message.
type LogLevel = rag.LogLevel

// Log levels.
const (
	LogLevelOff   = rag.LogLevelOff
	LogLevelError = rag.LogLevelError
	LogLevelWarn  = rag.LogLevelWarn
	LogLevelInfo  = rag.LogLevelInfo
	LogLevelDebug = rag.LogLevelDebug
)

// Logger receives diagnostics from the assistant's components. Each
// Assistant carries its own logger; there is no package-level logging state.
type Logger = rag.Logger

// NewLogger creates a leveled logger writing to standard error.
func NewLogger(level LogLevel) Logger {
	return rag.NewLogger(level)
}

// NewNopLogger creates a logger that discards everything.
func NewNopLogger() Logger {
	return rag.NewNopLogger()
}
