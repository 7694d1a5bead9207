package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/adhocore/gronx"

	"github.com/ptimer/ptimer/pkg/logger"
	"github.com/ptimer/ptimer/pkg/timerlib"
)

const (
	// DefaultMaxSleepCap bounds a single sleep of the scheduler loop.
	DefaultMaxSleepCap = 60 * time.Second
	// DefaultBatchCron is the batching expression used in inexact mode.
	DefaultBatchCron = "* * * * *"
)

// ErrUnavailable is returned when the scheduler loop is no longer running.
var ErrUnavailable = errors.New("scheduler: unavailable")

// WakeFunc receives fired entries.
type WakeFunc func(id string, payload Payload)

// Options tunes a Scheduler.
type Options struct {
	// Exact fires entries at their requested time. When false, fire times
	// are rounded up to the next tick of BatchCron.
	Exact       bool
	BatchCron   string
	MaxSleepCap time.Duration
}

func (o *Options) setDefaults() {
	if o.BatchCron == "" {
		o.BatchCron = DefaultBatchCron
	}
	if o.MaxSleepCap <= 0 {
		o.MaxSleepCap = DefaultMaxSleepCap
	}
}

// op is a queued schedule or cancel. Both travel on one channel so the loop
// applies them in call order.
type op struct {
	cancel bool
	event  ScheduleEvent
}

// Scheduler manages wake entries in a queue owned by one goroutine.
type Scheduler struct {
	ops    chan op
	ctx    context.Context
	done   chan struct{}
	opts   Options
	onWake WakeFunc
	log    logger.Logger
	wg     sync.WaitGroup
}

// New validates opts and starts the scheduler loop. onWake is invoked on its
// own goroutine for every fired entry, so it may call back into the
// scheduler. The loop exits when ctx is cancelled.
func New(ctx context.Context, onWake WakeFunc, opts Options, l logger.Logger) (*Scheduler, error) {
	opts.setDefaults()
	if !opts.Exact && !gronx.IsValid(opts.BatchCron) {
		return nil, fmt.Errorf("scheduler: invalid batch cron %q", opts.BatchCron)
	}
	if l == nil {
		l = logger.NewNopLogger()
	}
	s := &Scheduler{
		ops:    make(chan op, 128),
		ctx:    ctx,
		done:   make(chan struct{}),
		opts:   opts,
		onWake: onWake,
		log:    l,
	}
	go s.run()
	return s, nil
}

// CanScheduleExact reports whether entries fire at their exact time.
func (s *Scheduler) CanScheduleExact() bool { return s.opts.Exact }

// Schedule registers a wake for id at fireAt, replacing any existing entry
// for the same id.
func (s *Scheduler) Schedule(id string, fireAt time.Time, payload Payload) error {
	if !s.opts.Exact {
		batched, err := batchTime(s.opts.BatchCron, fireAt)
		if err != nil {
			return fmt.Errorf("scheduler: batch %s: %w", id, err)
		}
		fireAt = batched
	}
	select {
	case <-s.done:
		return ErrUnavailable
	default:
	}
	select {
	case s.ops <- op{event: ScheduleEvent{ID: id, FireAt: fireAt, Payload: payload}}:
		s.log.Debug("scheduler: wake for %s at %s", id, fireAt.Format(time.RFC3339Nano))
		return nil
	case <-s.done:
		return ErrUnavailable
	}
}

// Cancel removes the entry for id. Unknown ids are ignored. A Cancel
// always applies after any Schedule call that returned before it.
func (s *Scheduler) Cancel(id string) {
	select {
	case s.ops <- op{cancel: true, event: ScheduleEvent{ID: id}}:
	case <-s.done:
	}
}

// Done is closed once the loop has exited.
func (s *Scheduler) Done() <-chan struct{} { return s.done }

// Wait blocks until the loop has exited and every running wake callback
// has returned.
func (s *Scheduler) Wait() {
	<-s.done
	s.wg.Wait()
}

// run is the scheduler goroutine. It sleeps until the earliest entry is due
// but never longer than MaxSleepCap, then re-reads the wall clock.
func (s *Scheduler) run() {
	defer close(s.done)

	q := newWakeQueue()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	resetTimer := func() <-chan time.Time {
		if timer != nil {
			timer.Stop()
		}
		fireAt, ok := q.next()
		if !ok {
			return nil
		}
		dur := time.Until(fireAt)
		if dur > s.opts.MaxSleepCap {
			dur = s.opts.MaxSleepCap
		}
		if dur < 0 {
			dur = 0
		}
		timer = time.NewTimer(dur)
		return timer.C
	}

	timerCh := resetTimer()

	for {
		select {
		case <-s.ctx.Done():
			return

		case o := <-s.ops:
			if !o.cancel {
				q.set(o.event)
			} else if q.remove(o.event.ID) {
				s.log.Debug("scheduler: cancelled wake for %s", o.event.ID)
			}
			timerCh = resetTimer()

		case <-timerCh:
			for _, event := range q.popDue(time.Now()) {
				s.fire(event)
			}
			timerCh = resetTimer()
		}
	}
}

func (s *Scheduler) fire(event ScheduleEvent) {
	if s.onWake == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.onWake(event.ID, event.Payload)
	}()
}

// batchTime returns the first tick of expr strictly after t.
func batchTime(expr string, t time.Time) (time.Time, error) {
	return gronx.NextTickAfter(expr, t, false)
}

// LoadSchedules returns the wake entries to register at daemon start: one per
// Running timer, firing at its deadline. Overdue deadlines fire at now.
func LoadSchedules(timers []timerlib.Timer, now time.Time) []ScheduleEvent {
	var out []ScheduleEvent
	for _, t := range timers {
		if !t.IsRunning() || t.EndAtEpochMs == nil {
			continue
		}
		fireAt := time.UnixMilli(*t.EndAtEpochMs)
		if fireAt.Before(now) {
			fireAt = now
		}
		out = append(out, ScheduleEvent{ID: t.ID, FireAt: fireAt, Payload: Payload{Label: t.Label}})
	}
	return out
}
