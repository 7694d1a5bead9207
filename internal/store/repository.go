package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ptimer/ptimer/pkg/logger"
	"github.com/ptimer/ptimer/pkg/timerlib"
)

// Repository is the single writer for all record collections. Every
// read-modify-write runs under one mutex, so the tick loop and user commands
// never interleave on the same records. Nothing is cached between calls;
// each operation re-reads the backend.
type Repository struct {
	mu      sync.Mutex
	backend Backend
	timers  *Collection[timerlib.Timer]
	history *Collection[timerlib.HistoryEntry]
	presets *Collection[timerlib.Preset]
	groups  *Collection[timerlib.Group]
}

// NewRepository wraps b.
func NewRepository(b Backend, l logger.Logger) *Repository {
	return &Repository{
		backend: b,
		timers:  NewCollection[timerlib.Timer](b, CollectionTimers, l),
		history: NewCollection[timerlib.HistoryEntry](b, CollectionHistory, l),
		presets: NewCollection[timerlib.Preset](b, CollectionPresets, l),
		groups:  NewCollection[timerlib.Group](b, CollectionGroups, l),
	}
}

// Tx exposes the collections while the repository lock is held. It must
// not escape the Do callback.
type Tx struct {
	ctx context.Context
	r   *Repository
}

// Do runs fn with exclusive access to the collections.
func (r *Repository) Do(ctx context.Context, fn func(tx *Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(&Tx{ctx: ctx, r: r})
}

// Timers loads all timers.
func (tx *Tx) Timers() ([]timerlib.Timer, error) {
	return tx.r.timers.LoadAll(tx.ctx)
}

// SaveTimers replaces all timers.
func (tx *Tx) SaveTimers(timers []timerlib.Timer) error {
	return tx.r.timers.SaveAll(tx.ctx, timers)
}

// History loads all history entries.
func (tx *Tx) History() ([]timerlib.HistoryEntry, error) {
	return tx.r.history.LoadAll(tx.ctx)
}

// AppendHistory appends the entries whose ids are not already recorded and
// returns how many were added. Appending the same completion twice is a no-op.
func (tx *Tx) AppendHistory(entries ...timerlib.HistoryEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	current, err := tx.History()
	if err != nil {
		return 0, err
	}
	seen := make(map[string]struct{}, len(current))
	for _, h := range current {
		seen[h.ID] = struct{}{}
	}
	added := 0
	for _, e := range entries {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		current = append(current, e)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	return added, tx.r.history.SaveAll(tx.ctx, current)
}

// Timers loads all timers.
func (r *Repository) Timers(ctx context.Context) (timers []timerlib.Timer, err error) {
	err = r.Do(ctx, func(tx *Tx) error {
		timers, err = tx.Timers()
		return err
	})
	return
}

// CheckTimers validates every stored timer and returns one error per
// record that breaks an invariant, naming its id. Records are left as
// they are; reconciliation finishes a Running timer without a deadline.
func (r *Repository) CheckTimers(ctx context.Context) ([]error, error) {
	timers, err := r.Timers(ctx)
	if err != nil {
		return nil, err
	}
	var bad []error
	for _, t := range timers {
		if err := timerlib.Validate(t); err != nil {
			bad = append(bad, fmt.Errorf("timer %q: %w", t.ID, err))
		}
	}
	return bad, nil
}

// Timer returns the timer with id or timerlib.ErrNotFound.
func (r *Repository) Timer(ctx context.Context, id string) (timer timerlib.Timer, err error) {
	err = r.Do(ctx, func(tx *Tx) error {
		timers, err := tx.Timers()
		if err != nil {
			return err
		}
		i := indexOf(timers, id)
		if i < 0 {
			return timerlib.ErrNotFound
		}
		timer = timers[i]
		return nil
	})
	return
}

// UpdateTimer applies fn to the timer with id and saves the collection when
// fn reports a change. It returns the timer as stored afterwards.
func (r *Repository) UpdateTimer(ctx context.Context, id string, fn func(t *timerlib.Timer) (bool, error)) (timer timerlib.Timer, err error) {
	err = r.Do(ctx, func(tx *Tx) error {
		timer, _, err = tx.UpdateTimer(id, fn)
		return err
	})
	return
}

// UpdateTimer is Repository.UpdateTimer inside a transaction. changed
// reports whether a write happened.
func (tx *Tx) UpdateTimer(id string, fn func(t *timerlib.Timer) (bool, error)) (timer timerlib.Timer, changed bool, err error) {
	timers, err := tx.Timers()
	if err != nil {
		return timerlib.Timer{}, false, err
	}
	i := indexOf(timers, id)
	if i < 0 {
		return timerlib.Timer{}, false, timerlib.ErrNotFound
	}
	t := timers[i]
	changed, err = fn(&t)
	if err != nil {
		return timerlib.Timer{}, false, err
	}
	if !changed {
		return timers[i], false, nil
	}
	timers[i] = t
	if err := tx.SaveTimers(timers); err != nil {
		return timerlib.Timer{}, false, err
	}
	return t, true, nil
}

// InsertTimer appends t. An existing timer with the same id is replaced in place.
func (r *Repository) InsertTimer(ctx context.Context, t timerlib.Timer) error {
	return r.Do(ctx, func(tx *Tx) error {
		timers, err := tx.Timers()
		if err != nil {
			return err
		}
		if i := indexOf(timers, t.ID); i >= 0 {
			timers[i] = t
		} else {
			timers = append(timers, t)
		}
		return tx.SaveTimers(timers)
	})
}

// DeleteTimer removes the timer with id and returns it.
func (r *Repository) DeleteTimer(ctx context.Context, id string, now func() int64) (removed timerlib.Timer, err error) {
	err = r.Do(ctx, func(tx *Tx) error {
		timers, err := tx.Timers()
		if err != nil {
			return err
		}
		i := indexOf(timers, id)
		if i < 0 {
			return timerlib.ErrNotFound
		}
		removed = timers[i]
		if now != nil {
			// snapshot the live remaining time, not the last persisted tick
			removed.RemainingMs = timerlib.RemainingAt(removed, now())
		}
		timers = append(timers[:i], timers[i+1:]...)
		return tx.SaveTimers(timers)
	})
	return
}

// History loads all history entries.
func (r *Repository) History(ctx context.Context) (history []timerlib.HistoryEntry, err error) {
	err = r.Do(ctx, func(tx *Tx) error {
		history, err = tx.History()
		return err
	})
	return
}

// AppendHistory appends entries not already present.
func (r *Repository) AppendHistory(ctx context.Context, entries ...timerlib.HistoryEntry) (added int, err error) {
	err = r.Do(ctx, func(tx *Tx) error {
		added, err = tx.AppendHistory(entries...)
		return err
	})
	return
}

// ClearHistory deletes every history entry.
func (r *Repository) ClearHistory(ctx context.Context) error {
	return r.Do(ctx, func(tx *Tx) error {
		return tx.r.history.SaveAll(tx.ctx, nil)
	})
}

// Presets loads all presets.
func (r *Repository) Presets(ctx context.Context) (presets []timerlib.Preset, err error) {
	err = r.Do(ctx, func(tx *Tx) error {
		presets, err = tx.r.presets.LoadAll(tx.ctx)
		return err
	})
	return
}

// Groups loads all groups.
func (r *Repository) Groups(ctx context.Context) (groups []timerlib.Group, err error) {
	err = r.Do(ctx, func(tx *Tx) error {
		groups, err = tx.r.groups.LoadAll(tx.ctx)
		return err
	})
	return
}

// SeedDefaults fills empty preset and group collections with the built-in
// defaults and creates the first-run timer when there are no timers at all.
// It returns true when the first-run timer was created.
func (r *Repository) SeedDefaults(ctx context.Context, now time.Time) (created bool, err error) {
	err = r.Do(ctx, func(tx *Tx) error {
		presets, err := tx.r.presets.LoadAll(tx.ctx)
		if err != nil {
			return err
		}
		if len(presets) == 0 {
			if err := tx.r.presets.SaveAll(tx.ctx, timerlib.DefaultPresets()); err != nil {
				return err
			}
		}
		groups, err := tx.r.groups.LoadAll(tx.ctx)
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			if err := tx.r.groups.SaveAll(tx.ctx, timerlib.DefaultGroups(now)); err != nil {
				return err
			}
		}
		timers, err := tx.Timers()
		if err != nil {
			return err
		}
		if len(timers) > 0 {
			return nil
		}
		created = true
		return tx.SaveTimers([]timerlib.Timer{timerlib.FirstRunTimer(now)})
	})
	return
}

// Close closes the backend.
func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.Close()
}

func indexOf(timers []timerlib.Timer, id string) int {
	for i, t := range timers {
		if t.ID == id {
			return i
		}
	}
	return -1
}
