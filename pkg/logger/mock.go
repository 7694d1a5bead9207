package logger

import (
	"fmt"
	"strings"
	"sync"
)

// MockLogger records all log calls for verification in tests. It is safe
// for concurrent use since the daemon logs from several goroutines.
type MockLogger struct {
	mu           sync.Mutex
	DebugCalls   []string
	InfoCalls    []string
	WarningCalls []string
	ErrorCalls   []string
	CloseCalled  bool
}

// NewMockLogger creates a new MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) record(dst *[]string, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*dst = append(*dst, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Debug(format string, args ...interface{}) {
	m.record(&m.DebugCalls, format, args...)
}

func (m *MockLogger) Info(format string, args ...interface{}) {
	m.record(&m.InfoCalls, format, args...)
}

func (m *MockLogger) Warning(format string, args ...interface{}) {
	m.record(&m.WarningCalls, format, args...)
}

func (m *MockLogger) Error(format string, args ...interface{}) {
	m.record(&m.ErrorCalls, format, args...)
}

// Close records that Close was called.
func (m *MockLogger) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
	return nil
}

// Warnings returns a copy of the recorded warnings.
func (m *MockLogger) Warnings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.WarningCalls...)
}

// Errors returns a copy of the recorded errors.
func (m *MockLogger) Errors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ErrorCalls...)
}

// HasWarning reports whether any warning contains substr.
func (m *MockLogger) HasWarning(substr string) bool {
	for _, w := range m.Warnings() {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

// HasInfo reports whether any info message contains substr.
func (m *MockLogger) HasInfo(substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.InfoCalls {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

var _ Logger = (*MockLogger)(nil)
