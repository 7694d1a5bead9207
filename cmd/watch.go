package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"

	"github.com/ptimer/ptimer/cmd/common"
	pcommon "github.com/ptimer/ptimer/common"
	"github.com/ptimer/ptimer/internal/tick"
	"github.com/ptimer/ptimer/pkg/timercli"
	"github.com/ptimer/ptimer/pkg/timerlib"
)

const (
	watchInterval = 100 * time.Millisecond
	// refreshEvery re-reads the timer list every n ticks to pick up
	// changes made by other clients.
	refreshEvery = 10
)

func watch(ctx *cli.Context) error {
	client, err := newClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "watch", "new_client", err)
		return nil
	}
	defer client.Close()
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := newWatcher(client, ctx.App.Writer, listGroup)
	if err := w.run(sigCtx); err != nil {
		common.PrintRuntimeErr(ctx, "watch", "run", err)
	}
	return nil
}

type watchBar struct {
	bar *mpb.Bar
	// t is the last state read from the daemon; the remaining time is
	// derived locally from it on every tick.
	t timerlib.Timer
	// text is read by the render goroutine.
	text atomic.Pointer[string]
}

func (b *watchBar) status() string {
	if s := b.text.Load(); s != nil {
		return *s
	}
	return ""
}

func statusText(state timerlib.State, remaining int64) string {
	switch state {
	case timerlib.StateDone:
		return "done"
	case timerlib.StatePaused:
		return timerlib.FormatRemaining(remaining) + " ||"
	default:
		return timerlib.FormatRemaining(remaining)
	}
}

// watcher renders one bar per timer and keeps them moving between list
// refreshes using the daemon's clock offset.
type watcher struct {
	c     *timercli.Client
	out   io.Writer
	group string
	now   func() time.Time

	mu        sync.Mutex
	p         *mpb.Progress
	bars      map[string]*watchBar
	offsetMs  int64
	completed []string
}

func newWatcher(c *timercli.Client, out io.Writer, group string) *watcher {
	return &watcher{c: c, out: out, group: group, now: time.Now, bars: make(map[string]*watchBar)}
}

func (w *watcher) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	w.p = mpb.NewWithContext(ctx, mpb.WithOutput(w.out), mpb.WithWidth(40), mpb.WithRefreshRate(watchInterval))

	if err := w.refresh(ctx); err != nil {
		cancel()
		w.p.Wait()
		return err
	}

	pushed := make(chan struct{}, 1)
	go w.c.Subscribe(ctx, timercli.Events{
		OnCompleted: func(n pcommon.CompletedNotification) {
			w.mu.Lock()
			w.completed = append(w.completed, n.Label)
			w.mu.Unlock()
			select {
			case pushed <- struct{}{}:
			default:
			}
		},
	})

	ticker := tick.NewTicker(ctx, watchInterval)
	defer ticker.Stop()
	var n int
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-pushed:
			if err := w.refresh(ctx); err != nil && ctx.Err() == nil {
				cancel()
				w.p.Wait()
				return err
			}
		case now := <-ticker.C:
			n++
			if n%refreshEvery == 0 {
				if err := w.refresh(ctx); err != nil && ctx.Err() == nil {
					cancel()
					w.p.Wait()
					return err
				}
			}
			w.advance(now)
		}
	}
	w.p.Wait()
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, label := range w.completed {
		fmt.Fprintf(w.out, "completed: %s\n", label)
	}
	return nil
}

// refresh reads the timer list and reconciles the bars with it.
func (w *watcher) refresh(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	l, err := w.c.List(cctx, w.group)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.offsetMs = l.NowEpochMs - w.now().UnixMilli()
	seen := make(map[string]bool, len(l.Timers))
	for _, t := range l.Timers {
		seen[t.ID] = true
		b, ok := w.bars[t.ID]
		// a finished bar cannot be reopened, replace it
		if ok && (b.bar.Completed() || b.t.DurationMs != t.DurationMs) && t.State != timerlib.StateDone {
			b.bar.Abort(true)
			ok = false
		}
		if !ok {
			b = &watchBar{}
			b.bar = common.NewCountdownBar(w.p, t.Label, t.DurationMs, b.status)
			w.bars[t.ID] = b
		}
		b.t = t
		w.update(b, l.NowEpochMs)
	}
	for id, b := range w.bars {
		if !seen[id] {
			b.bar.Abort(true)
			delete(w.bars, id)
		}
	}
	return nil
}

// advance moves every bar to now on the daemon's clock.
func (w *watcher) advance(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	nowMs := now.UnixMilli() + w.offsetMs
	for _, b := range w.bars {
		w.update(b, nowMs)
	}
}

func (w *watcher) update(b *watchBar, nowMs int64) {
	remaining := timerlib.RemainingAt(b.t, nowMs)
	if b.t.State == timerlib.StateDone || (b.t.IsRunning() && remaining == 0) {
		b.t.State = timerlib.StateDone
		remaining = 0
	}
	text := statusText(b.t.State, remaining)
	b.text.Store(&text)
	b.bar.SetCurrent(b.t.DurationMs - remaining)
}
