package tick

import (
	"context"
	"time"
)

// NextBoundary returns the first multiple of interval (counted from the Unix
// epoch) strictly after now. A now that sits exactly on a boundary yields
// the following one, so a loop never runs twice for the same boundary.
func NextBoundary(now time.Time, interval time.Duration) time.Time {
	iv := interval.Nanoseconds()
	if iv <= 0 {
		return now
	}
	n := now.UnixNano()
	next := (n/iv + 1) * iv
	return time.Unix(0, next)
}

// Ticker delivers the wall-clock time at every interval boundary. Each wait
// is computed from the absolute boundary, so a slow receiver or a late wake
// does not push later ticks back.
type Ticker struct {
	C      <-chan time.Time
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTicker starts a boundary-aligned ticker. Ticks are dropped when the
// receiver is not keeping up.
func NewTicker(ctx context.Context, interval time.Duration) *Ticker {
	ctx, cancel := context.WithCancel(ctx)
	c := make(chan time.Time, 1)
	t := &Ticker{C: c, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		timer := time.NewTimer(time.Until(NextBoundary(time.Now(), interval)))
		defer timer.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			now := time.Now()
			select {
			case c <- now:
			default:
			}
			timer.Reset(time.Until(NextBoundary(now, interval)))
		}
	}()
	return t
}

// Stop halts the ticker and waits for its goroutine to exit.
func (t *Ticker) Stop() {
	t.cancel()
	<-t.done
}
