package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/ptimer/ptimer/pkg/logger"
)

// FileBackend stores each collection as a JSON array in <dir>/<collection>.json.
type FileBackend struct {
	fs  afero.Fs
	dir string
	log logger.Logger
	mu  sync.Mutex
}

// NewFileBackend creates dir on fs if needed and returns a backend rooted there.
func NewFileBackend(fs afero.Fs, dir string, l logger.Logger) (*FileBackend, error) {
	if l == nil {
		l = logger.NewNopLogger()
	}
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, persistErr("mkdir", dir, err)
	}
	return &FileBackend{fs: fs, dir: dir, log: l}, nil
}

func (b *FileBackend) path(collection string) string {
	return filepath.Join(b.dir, collection+".json")
}

type docID struct {
	ID string `json:"id"`
}

// Load reads the collection file. A missing file is an empty collection;
// a file that is not a JSON array is moved aside to <name>.corrupt and also
// treated as empty.
func (b *FileBackend) Load(_ context.Context, collection string) ([]Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.path(collection)
	data, err := afero.ReadFile(b.fs, p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		b.log.Warning("store: %s is corrupt, starting fresh: %v", p, err)
		if rerr := b.fs.Rename(p, p+".corrupt"); rerr != nil {
			b.log.Error("store: failed to move aside %s: %v", p, rerr)
		}
		return nil, nil
	}
	docs := make([]Document, 0, len(raw))
	for _, r := range raw {
		var id docID
		_ = json.Unmarshal(r, &id)
		docs = append(docs, Document{ID: id.ID, Body: r})
	}
	return docs, nil
}

// Save writes the collection to a temporary file and renames it over the
// previous one, so a crash leaves either the old or the new contents.
func (b *FileBackend) Save(_ context.Context, collection string, docs []Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	raw := make([]json.RawMessage, len(docs))
	for i, d := range docs {
		raw[i] = d.Body
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	p := b.path(collection)
	tmp := filepath.Join(b.dir, "."+collection+".json.tmp")
	if err := afero.WriteFile(b.fs, tmp, data, 0644); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := b.fs.Rename(tmp, p); err != nil {
		_ = b.fs.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Close is a no-op; files are not held open between operations.
func (b *FileBackend) Close() error { return nil }

var _ Backend = (*FileBackend)(nil)
