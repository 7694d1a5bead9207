package tick

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ptimer/ptimer/internal/notify"
	"github.com/ptimer/ptimer/internal/scheduler"
	"github.com/ptimer/ptimer/internal/store"
	"github.com/ptimer/ptimer/pkg/logger"
	"github.com/ptimer/ptimer/pkg/timerlib"
)

const (
	// DefaultInterval is the cadence of the reconciliation loop.
	DefaultInterval = 100 * time.Millisecond
	// DefaultClockTolerance is how far the clock may step back between
	// cycles before it is reported as an anomaly.
	DefaultClockTolerance = time.Second
)

// WakeCanceller drops pending wake entries for completed timers.
type WakeCanceller interface {
	Cancel(id string)
}

// Config tunes a Driver.
type Config struct {
	Interval       time.Duration
	ClockTolerance time.Duration
	// Now is the wall clock; defaults to time.Now.
	Now func() time.Time
}

// Stats counts what the driver has done since it was created.
type Stats struct {
	Cycles          uint64
	Completions     uint64
	PersistFailures uint64
	ClockAnomalies  uint64
}

// Driver is the reconciliation loop.
type Driver struct {
	repo     *store.Repository
	wakes    WakeCanceller
	notifier notify.Notifier
	log      logger.Logger
	cfg      Config
	bc       *Broadcaster

	mu      sync.Mutex
	lastNow time.Time
	stats   Stats
}

// NewDriver returns a driver over repo. wakes and notifier may be nil.
func NewDriver(repo *store.Repository, wakes WakeCanceller, notifier notify.Notifier, cfg Config, l logger.Logger) *Driver {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.ClockTolerance <= 0 {
		cfg.ClockTolerance = DefaultClockTolerance
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &Driver{
		repo:     repo,
		wakes:    wakes,
		notifier: notifier,
		log:      l,
		cfg:      cfg,
		bc:       NewBroadcaster(),
	}
}

// SetWakeCanceller sets the wake canceller after construction, for when the
// scheduler itself needs the driver as its callback.
func (d *Driver) SetWakeCanceller(w WakeCanceller) {
	d.mu.Lock()
	d.wakes = w
	d.mu.Unlock()
}

// Broadcaster returns the broadcaster that receives every cycle's timestamp.
func (d *Driver) Broadcaster() *Broadcaster { return d.bc }

// Stats returns a snapshot of the counters.
func (d *Driver) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Run executes a cycle at every interval boundary until ctx is cancelled.
func (d *Driver) Run(ctx context.Context) error {
	d.log.Info("tick: running every %s", d.cfg.Interval)
	timer := time.NewTimer(d.untilNext())
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		now := d.cfg.Now()
		if _, err := d.Cycle(ctx, now); err != nil && ctx.Err() == nil {
			d.log.Error("tick: cycle failed, retrying next cycle: %v", err)
		}
		d.bc.Publish(now)
		timer.Reset(d.untilNext())
	}
}

func (d *Driver) untilNext() time.Duration {
	now := d.cfg.Now()
	return NextBoundary(now, d.cfg.Interval).Sub(now)
}

// Cycle reconciles every timer at now and returns the timers it completed,
// in their Done form. On a persistence failure nothing is notified and the
// same completions are produced again by the next cycle.
//
// Timers are stored with one replace-all write, so a failure cannot be
// confined to the timer that caused it: every timer keeps its stored state
// and the whole batch is retried on the next cycle.
func (d *Driver) Cycle(ctx context.Context, now time.Time) ([]timerlib.Timer, error) {
	d.observeClock(now)
	nowMs := now.UnixMilli()

	var completed []timerlib.Timer
	err := d.repo.Do(ctx, func(tx *store.Tx) error {
		timers, err := tx.Timers()
		if err != nil {
			return err
		}
		res := timerlib.ReconcileAll(timers, nowMs)
		if !res.Changed {
			return nil
		}
		if len(res.Completed) > 0 {
			entries := make([]timerlib.HistoryEntry, 0, len(res.Completed))
			for _, t := range res.Completed {
				entries = append(entries, timerlib.NewHistoryEntry(t, nowMs))
			}
			if _, err := tx.AppendHistory(entries...); err != nil {
				return err
			}
		}
		if err := tx.SaveTimers(res.Timers); err != nil {
			return err
		}
		d.mu.Lock()
		wakes := d.wakes
		d.mu.Unlock()
		for _, t := range res.Completed {
			done, _ := timerlib.Reconcile(t, nowMs)
			completed = append(completed, done)
			// cancelled under the repository lock so a restart of the same
			// timer cannot have its new wake removed
			if wakes != nil {
				wakes.Cancel(t.ID)
			}
		}
		return nil
	})

	d.mu.Lock()
	d.stats.Cycles++
	if err != nil && errors.Is(err, store.ErrPersistence) {
		d.stats.PersistFailures++
	}
	d.stats.Completions += uint64(len(completed))
	d.mu.Unlock()

	if err != nil {
		return nil, err
	}
	for _, t := range completed {
		d.log.Info("tick: timer %s (%q) completed", t.ID, t.Label)
		d.notifier.NotifyCompleted(t.ID, t.Label)
	}
	return completed, nil
}

// HandleWake is the wake scheduler callback. The fire time is only a hint:
// it runs a cycle now and the persisted state decides whether anything
// completes. A timer the loop already completed is left alone.
func (d *Driver) HandleWake(id string, payload scheduler.Payload) {
	d.log.Debug("tick: wake for %s (%q)", id, payload.Label)
	if _, err := d.Cycle(context.Background(), d.cfg.Now()); err != nil {
		d.log.Error("tick: wake cycle for %s failed: %v", id, err)
	}
}

func (d *Driver) observeClock(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.lastNow.IsZero() && now.Before(d.lastNow.Add(-d.cfg.ClockTolerance)) {
		d.stats.ClockAnomalies++
		d.log.Warning("tick: clock moved back by %s", d.lastNow.Sub(now))
	}
	d.lastNow = now
}
