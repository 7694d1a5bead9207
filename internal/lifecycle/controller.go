// Package lifecycle owns the timer state machine: every user command that
// changes a timer goes through Controller.Handle.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/ptimer/ptimer/internal/notify"
	"github.com/ptimer/ptimer/internal/scheduler"
	"github.com/ptimer/ptimer/internal/store"
	"github.com/ptimer/ptimer/pkg/logger"
	"github.com/ptimer/ptimer/pkg/timerlib"
)

// ErrUnknownCommand is returned for a Command type Handle does not know.
var ErrUnknownCommand = errors.New("lifecycle: unknown command")

// WakeScheduler is the durable-wake facility used for Running timers.
type WakeScheduler interface {
	Schedule(id string, fireAt time.Time, payload scheduler.Payload) error
	Cancel(id string)
	CanScheduleExact() bool
}

// Result describes what a command did.
type Result struct {
	// Timer is the timer after the command. It is nil when UndoDelete had
	// nothing to restore.
	Timer *timerlib.Timer
	// Changed is false when the command was a no-op for the timer's state.
	Changed bool
	// Label is the removed timer's label, set by Delete.
	Label string
}

// Options configures a Controller.
type Options struct {
	// Now is the wall clock; defaults to time.Now.
	Now func() time.Time
	// Intn picks preset colors; defaults to math/rand.
	Intn func(n int) int
}

// Controller applies commands to the repository and keeps the wake
// scheduler and notifications in step with the result.
type Controller struct {
	repo     *store.Repository
	wakes    WakeScheduler
	notifier notify.Notifier
	log      logger.Logger
	now      func() time.Time
	intn     func(int) int

	mu      sync.Mutex
	deleted *timerlib.Timer
}

// New returns a Controller. wakes and notifier may be nil.
func New(repo *store.Repository, wakes WakeScheduler, notifier notify.Notifier, l logger.Logger, opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Intn == nil {
		opts.Intn = rand.Intn
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &Controller{
		repo:     repo,
		wakes:    wakes,
		notifier: notifier,
		log:      l,
		now:      opts.Now,
		intn:     opts.Intn,
	}
}

// Handle executes cmd. A command naming an id that no longer exists returns
// timerlib.ErrNotFound and changes nothing.
func (c *Controller) Handle(ctx context.Context, cmd Command) (Result, error) {
	switch cmd := cmd.(type) {
	case Start:
		return c.start(ctx, cmd.ID)
	case Pause:
		return c.pause(ctx, cmd.ID)
	case Reset:
		return c.reset(ctx, cmd.ID)
	case Delete:
		return c.delete(ctx, cmd.ID)
	case UndoDelete:
		return c.undoDelete(ctx)
	case Edit:
		return c.edit(ctx, cmd)
	case CreateFromPreset:
		label := cmd.Label
		if label == "" {
			label = timerlib.FormatDuration(cmd.DurationMs)
		}
		return c.create(ctx, label, c.intn(len(timerlib.Palette)), cmd.DurationMs, cmd.GroupID)
	case CreateCustom:
		return c.create(ctx, cmd.Label, cmd.ColorIndex, cmd.DurationMs, cmd.GroupID)
	default:
		return Result{}, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
}

// update applies fn to the timer with id. after runs before the repository
// lock is released, so the wake calls it makes reach the scheduler in the
// same order as the writes they follow.
func (c *Controller) update(ctx context.Context, id string, fn func(t *timerlib.Timer) (bool, error), after func(t timerlib.Timer, changed bool)) (t timerlib.Timer, changed bool, err error) {
	err = c.repo.Do(ctx, func(tx *store.Tx) error {
		t, changed, err = tx.UpdateTimer(id, fn)
		if err != nil {
			return err
		}
		after(t, changed)
		return nil
	})
	return
}

func (c *Controller) start(ctx context.Context, id string) (Result, error) {
	nowMs := c.now().UnixMilli()
	t, changed, err := c.update(ctx, id, func(t *timerlib.Timer) (bool, error) {
		if t.State != timerlib.StateIdle && t.State != timerlib.StatePaused {
			return false, nil
		}
		t.State = timerlib.StateRunning
		t.EndAtEpochMs = timerlib.Ms(nowMs + t.RemainingMs)
		return true, nil
	}, func(t timerlib.Timer, changed bool) {
		if changed {
			c.scheduleWake(t)
		}
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Timer: &t, Changed: changed}, nil
}

func (c *Controller) pause(ctx context.Context, id string) (Result, error) {
	nowMs := c.now().UnixMilli()
	t, changed, err := c.update(ctx, id, func(t *timerlib.Timer) (bool, error) {
		if !t.IsRunning() {
			return false, nil
		}
		t.RemainingMs = timerlib.RemainingAt(*t, nowMs)
		t.State = timerlib.StatePaused
		t.EndAtEpochMs = nil
		return true, nil
	}, func(_ timerlib.Timer, changed bool) {
		if changed {
			c.cancelWake(id)
		}
	})
	if err != nil {
		return Result{}, err
	}
	if changed {
		c.notifier.CancelNotification(id)
	}
	return Result{Timer: &t, Changed: changed}, nil
}

func (c *Controller) reset(ctx context.Context, id string) (Result, error) {
	t, changed, err := c.update(ctx, id, func(t *timerlib.Timer) (bool, error) {
		before := *t
		t.State = timerlib.StateIdle
		t.RemainingMs = t.DurationMs
		t.EndAtEpochMs = nil
		return !before.Equal(*t), nil
	}, func(timerlib.Timer, bool) {
		c.cancelWake(id)
	})
	if err != nil {
		return Result{}, err
	}
	c.notifier.CancelNotification(id)
	return Result{Timer: &t, Changed: changed}, nil
}

func (c *Controller) delete(ctx context.Context, id string) (Result, error) {
	removed, err := c.repo.DeleteTimer(ctx, id, func() int64 { return c.now().UnixMilli() })
	if err != nil {
		return Result{}, err
	}
	c.mu.Lock()
	snapshot := removed
	c.deleted = &snapshot
	c.mu.Unlock()

	c.cancelWake(id)
	c.notifier.CancelNotification(id)
	c.log.Debug("lifecycle: deleted %s (%q)", id, removed.Label)
	return Result{Timer: &removed, Changed: true, Label: removed.Label}, nil
}

func (c *Controller) undoDelete(ctx context.Context) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleted == nil {
		return Result{}, nil
	}
	t := *c.deleted
	if t.IsRunning() {
		// never resume a deadline that may have elapsed while deleted
		t.State = timerlib.StatePaused
		t.EndAtEpochMs = nil
	}
	if err := c.repo.InsertTimer(ctx, t); err != nil {
		return Result{}, err
	}
	c.deleted = nil
	return Result{Timer: &t, Changed: true}, nil
}

func (c *Controller) edit(ctx context.Context, cmd Edit) (Result, error) {
	t, changed, err := c.update(ctx, cmd.ID, func(t *timerlib.Timer) (bool, error) {
		before := *t
		t.Label = timerlib.TruncateLabel(cmd.Label)
		t.ColorIndex = timerlib.ClampColor(cmd.ColorIndex)
		t.GroupID = timerlib.NormalizeGroupID(cmd.GroupID)
		return !before.Equal(*t), nil
	}, func(t timerlib.Timer, changed bool) {
		if changed && t.IsRunning() {
			// keep the wake payload label current
			c.scheduleWake(t)
		}
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Timer: &t, Changed: changed}, nil
}

func (c *Controller) create(ctx context.Context, label string, color int, durationMs int64, groupID *string) (Result, error) {
	t, err := timerlib.NewTimer(label, color, durationMs, groupID, c.now())
	if err != nil {
		return Result{}, err
	}
	if err := c.repo.InsertTimer(ctx, t); err != nil {
		return Result{}, err
	}
	return Result{Timer: &t, Changed: true}, nil
}

func (c *Controller) scheduleWake(t timerlib.Timer) {
	if c.wakes == nil || t.EndAtEpochMs == nil {
		return
	}
	err := c.wakes.Schedule(t.ID, time.UnixMilli(*t.EndAtEpochMs), scheduler.Payload{Label: t.Label})
	if err != nil {
		// the tick loop still detects the completion while the daemon runs
		c.log.Warning("lifecycle: wake for %s not scheduled: %v", t.ID, err)
	}
}

func (c *Controller) cancelWake(id string) {
	if c.wakes != nil {
		c.wakes.Cancel(id)
	}
}
