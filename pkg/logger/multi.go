package logger

import (
	"errors"
	"fmt"
)

// MultiLogger writes every message to each backend in order. The daemon
// uses it to log to the console and to daemon.log at once.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a fan-out logger. Nil backends are skipped, so an
// optional file logger can be passed through unconditionally.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
	return m
}

// each formats the message once and hands the result to every backend.
func (m *MultiLogger) each(log func(Logger, string), format string, args []interface{}) {
	msg := fmt.Sprintf(format, args...)
	for _, l := range m.loggers {
		log(l, msg)
	}
}

func (m *MultiLogger) Debug(format string, args ...interface{}) {
	m.each(func(l Logger, msg string) { l.Debug("%s", msg) }, format, args)
}

func (m *MultiLogger) Info(format string, args ...interface{}) {
	m.each(func(l Logger, msg string) { l.Info("%s", msg) }, format, args)
}

func (m *MultiLogger) Warning(format string, args ...interface{}) {
	m.each(func(l Logger, msg string) { l.Warning("%s", msg) }, format, args)
}

func (m *MultiLogger) Error(format string, args ...interface{}) {
	m.each(func(l Logger, msg string) { l.Error("%s", msg) }, format, args)
}

// Close closes every backend and joins their errors.
func (m *MultiLogger) Close() error {
	var errs []error
	for _, l := range m.loggers {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Logger = (*MultiLogger)(nil)
