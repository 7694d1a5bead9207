package logger

import (
	"log"
	"os"
	"sync"
)

// FileLogger appends log lines to a file.
type FileLogger struct {
	*StandardLogger
	f    *os.File
	once sync.Once
}

// NewFileLogger opens (or creates) path for appending.
func NewFileLogger(path string, debug bool) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	s := NewStandardLogger(log.New(f, "", log.LstdFlags|log.Lmicroseconds))
	s.SetDebug(debug)
	return &FileLogger{StandardLogger: s, f: f}, nil
}

// Close closes the underlying file once.
func (l *FileLogger) Close() error {
	var err error
	l.once.Do(func() { err = l.f.Close() })
	return err
}

var _ Logger = (*FileLogger)(nil)
