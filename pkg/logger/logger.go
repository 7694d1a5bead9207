// Package logger provides the logging interface used by every ptimer
// component, with console, file and test backends.
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// DebugEnv enables Debug output on loggers created by New.
const DebugEnv = "PTIMER_DEBUG"

// Logger defines the interface for logging across all ptimer components.
type Logger interface {
	// Debug logs diagnostic detail (e.g., per-cycle reconciliation counts).
	// Backends may drop it unless debug output is enabled.
	Debug(format string, args ...interface{})

	// Info logs an informational message (e.g., "Daemon started").
	Info(format string, args ...interface{})

	// Warning logs a recoverable problem (e.g., "persist failed, retrying next cycle").
	Warning(format string, args ...interface{})

	// Error logs an error message.
	Error(format string, args ...interface{})

	// Close releases resources held by the logger. Safe to call multiple times.
	Close() error
}

// StandardLogger wraps a stdlib *log.Logger. Every line carries the level
// and, when set, the component name: "[INFO] tick: ...".
type StandardLogger struct {
	logger    *log.Logger
	component string
	debug     bool
}

// NewStandardLogger creates a logger that writes through l.
func NewStandardLogger(l *log.Logger) *StandardLogger {
	return &StandardLogger{logger: l}
}

// New creates a console logger on stderr with debug output controlled by
// the PTIMER_DEBUG environment variable.
func New() *StandardLogger {
	s := NewStandardLogger(log.New(os.Stderr, "", log.LstdFlags))
	s.debug = envEnabled(os.Getenv(DebugEnv))
	return s
}

func envEnabled(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// SetDebug toggles Debug output.
func (s *StandardLogger) SetDebug(on bool) { s.debug = on }

// Named returns a logger sharing the same output with the component prefix set.
func (s *StandardLogger) Named(component string) *StandardLogger {
	return &StandardLogger{logger: s.logger, component: component, debug: s.debug}
}

func (s *StandardLogger) printf(level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if s.component != "" {
		s.logger.Printf("[%s] %s: %s", level, s.component, msg)
		return
	}
	s.logger.Printf("[%s] %s", level, msg)
}

// Debug logs with [DEBUG] prefix when debug output is enabled.
func (s *StandardLogger) Debug(format string, args ...interface{}) {
	if s.debug {
		s.printf("DEBUG", format, args...)
	}
}

// Info logs an informational message with [INFO] prefix.
func (s *StandardLogger) Info(format string, args ...interface{}) {
	s.printf("INFO", format, args...)
}

// Warning logs a warning message with [WARNING] prefix.
func (s *StandardLogger) Warning(format string, args ...interface{}) {
	s.printf("WARNING", format, args...)
}

// Error logs an error message with [ERROR] prefix.
func (s *StandardLogger) Error(format string, args ...interface{}) {
	s.printf("ERROR", format, args...)
}

// Close is a no-op for StandardLogger.
func (s *StandardLogger) Close() error {
	return nil
}

// NopLogger discards all messages.
type NopLogger struct{}

// NewNopLogger creates a logger that discards all messages.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

func (n *NopLogger) Debug(format string, args ...interface{})   {}
func (n *NopLogger) Info(format string, args ...interface{})    {}
func (n *NopLogger) Warning(format string, args ...interface{}) {}
func (n *NopLogger) Error(format string, args ...interface{})   {}
func (n *NopLogger) Close() error                               { return nil }

var (
	_ Logger = (*StandardLogger)(nil)
	_ Logger = (*NopLogger)(nil)
)
