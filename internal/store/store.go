package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Collection names.
const (
	CollectionTimers  = "timers"
	CollectionPresets = "presets"
	CollectionGroups  = "groups"
	CollectionHistory = "history"
)

// ErrPersistence matches every error produced by a failing backend.
var ErrPersistence = errors.New("persistence failure")

// PersistenceError describes a failed backend operation. It is transient from
// the caller's point of view: the same operation may succeed on retry.
type PersistenceError struct {
	Op         string
	Collection string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrPersistence) match any PersistenceError.
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func persistErr(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Collection: collection, Err: err}
}

// Document is one encoded record.
type Document struct {
	ID   string
	Body json.RawMessage
}

// Backend stores ordered documents per collection with replace-all writes.
type Backend interface {
	Load(ctx context.Context, collection string) ([]Document, error)
	Save(ctx context.Context, collection string, docs []Document) error
	Close() error
}

// Record is implemented by every type kept in a collection.
type Record interface {
	RecordID() string
}
