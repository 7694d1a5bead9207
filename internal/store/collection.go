package store

import (
	"context"
	"encoding/json"

	"github.com/ptimer/ptimer/pkg/logger"
)

// Collection is a typed view of one backend collection.
type Collection[T Record] struct {
	name    string
	backend Backend
	log     logger.Logger
}

// NewCollection returns the collection name stored in b.
func NewCollection[T Record](b Backend, name string, l logger.Logger) *Collection[T] {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &Collection[T]{name: name, backend: b, log: l}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string { return c.name }

// LoadAll returns every record in stored order. A document that no longer
// decodes is skipped and logged so one bad record cannot hide the rest.
func (c *Collection[T]) LoadAll(ctx context.Context) ([]T, error) {
	docs, err := c.backend.Load(ctx, c.name)
	if err != nil {
		return nil, persistErr("load", c.name, err)
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := json.Unmarshal(d.Body, &v); err != nil {
			c.log.Warning("store: skipping undecodable %s record %q: %v", c.name, d.ID, err)
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// SaveAll replaces the collection with records. Stored documents that do
// not decode are written back unchanged unless records carries the same id,
// so a record written by a newer build survives edits to its neighbours.
func (c *Collection[T]) SaveAll(ctx context.Context, records []T) error {
	kept, err := c.undecodable(ctx)
	if err != nil {
		return persistErr("load", c.name, err)
	}
	docs := make([]Document, 0, len(records)+len(kept))
	ids := make(map[string]struct{}, len(records))
	for _, r := range records {
		body, err := json.Marshal(r)
		if err != nil {
			return persistErr("encode", c.name, err)
		}
		docs = append(docs, Document{ID: r.RecordID(), Body: body})
		ids[r.RecordID()] = struct{}{}
	}
	for _, d := range kept {
		if _, ok := ids[d.ID]; !ok {
			docs = append(docs, d)
		}
	}
	return persistErr("save", c.name, c.backend.Save(ctx, c.name, docs))
}

func (c *Collection[T]) undecodable(ctx context.Context) ([]Document, error) {
	docs, err := c.backend.Load(ctx, c.name)
	if err != nil {
		return nil, err
	}
	var out []Document
	for _, d := range docs {
		var v T
		if json.Unmarshal(d.Body, &v) != nil {
			out = append(out, d)
		}
	}
	return out, nil
}
