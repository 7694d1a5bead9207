package store

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptimer/ptimer/pkg/logger"
	"github.com/ptimer/ptimer/pkg/timerlib"
)

func newMemBackend(t *testing.T) (*FileBackend, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	b, err := NewFileBackend(fs, "/data/records", logger.NewNopLogger())
	require.NoError(t, err)
	return b, fs
}

func TestFileBackend_MissingFileIsEmpty(t *testing.T) {
	b, _ := newMemBackend(t)
	docs, err := b.Load(context.Background(), CollectionTimers)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestFileBackend_SaveLoadOrder(t *testing.T) {
	b, fs := newMemBackend(t)
	ctx := context.Background()
	docs := []Document{
		{ID: "b", Body: []byte(`{"id":"b"}`)},
		{ID: "a", Body: []byte(`{"id":"a"}`)},
	}
	require.NoError(t, b.Save(ctx, CollectionPresets, docs))

	got, err := b.Load(ctx, CollectionPresets)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "a", got[1].ID)

	exists, err := afero.Exists(fs, "/data/records/.presets.json.tmp")
	require.NoError(t, err)
	assert.False(t, exists, "temp file must be renamed away")
}

func TestFileBackend_CorruptFileMovedAside(t *testing.T) {
	b, fs := newMemBackend(t)
	require.NoError(t, afero.WriteFile(fs, "/data/records/timers.json", []byte("{not json"), 0644))

	docs, err := b.Load(context.Background(), CollectionTimers)
	require.NoError(t, err)
	assert.Empty(t, docs)

	exists, _ := afero.Exists(fs, "/data/records/timers.json.corrupt")
	assert.True(t, exists)
}

func TestFileBackend_WriteFailureIsPersistenceError(t *testing.T) {
	b := readOnlyBackend(t)

	c := NewCollection[timerlib.Preset](b, CollectionPresets, nil)
	err := c.SaveAll(context.Background(), timerlib.DefaultPresets())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPersistence))

	var pe *PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "save", pe.Op)
	assert.Equal(t, CollectionPresets, pe.Collection)
}

func TestCollection_UnknownFieldsAndBadRecords(t *testing.T) {
	b, fs := newMemBackend(t)
	l := logger.NewMockLogger()
	raw := `[
	  {"id":"t1","label":"tea","colorIndex":1,"durationMs":1000,"state":"Idle","remainingMs":1000,"createdAtEpochMs":5,"futureField":{"x":1}},
	  {"id":"t2","durationMs":"not a number"}
	]`
	require.NoError(t, afero.WriteFile(fs, "/data/records/timers.json", []byte(raw), 0644))

	c := NewCollection[timerlib.Timer](b, CollectionTimers, l)
	timers, err := c.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, timers, 1)
	assert.Equal(t, "tea", timers[0].Label)
	assert.Equal(t, timerlib.StateIdle, timers[0].State)
	assert.True(t, l.HasWarning("t2"))
}

func TestRepository_EditKeepsUndecodableNeighbour(t *testing.T) {
	b, fs := newMemBackend(t)
	raw := `[
	  {"id":"t1","label":"tea","colorIndex":1,"durationMs":1000,"state":"Idle","remainingMs":1000,"createdAtEpochMs":5},
	  {"id":"t2","label":"later","durationMs":"600000"}
	]`
	require.NoError(t, afero.WriteFile(fs, "/data/records/timers.json", []byte(raw), 0644))
	repo := NewRepository(b, nil)
	ctx := context.Background()

	_, err := repo.UpdateTimer(ctx, "t1", func(t *timerlib.Timer) (bool, error) {
		t.Label = "coffee"
		return true, nil
	})
	require.NoError(t, err)

	docs, err := b.Load(ctx, CollectionTimers)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "t1", docs[0].ID)
	assert.Contains(t, string(docs[0].Body), "coffee")
	assert.Equal(t, "t2", docs[1].ID)
	assert.JSONEq(t, `{"id":"t2","label":"later","durationMs":"600000"}`, string(docs[1].Body))

	// A decodable record with the same id replaces the unreadable one.
	fixed := timerlib.Timer{ID: "t2", Label: "fixed", DurationMs: 1000, State: timerlib.StateIdle, RemainingMs: 1000}
	require.NoError(t, repo.InsertTimer(ctx, fixed))
	docs, err = b.Load(ctx, CollectionTimers)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Contains(t, string(docs[1].Body), "fixed")
}

// readOnlyBackend rejects every write, standing in for a full or read-only disk.
func readOnlyBackend(t *testing.T) *FileBackend {
	t.Helper()
	base := afero.NewMemMapFs()
	require.NoError(t, base.MkdirAll("/ro", 0755))
	return &FileBackend{fs: afero.NewReadOnlyFs(base), dir: "/ro", log: logger.NewNopLogger()}
}
