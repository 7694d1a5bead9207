package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbauerster/mpb/v8"

	pcommon "github.com/ptimer/ptimer/common"
	"github.com/ptimer/ptimer/pkg/timerlib"
)

func TestStatusText(t *testing.T) {
	assert.Equal(t, "done", statusText(timerlib.StateDone, 0))
	assert.Equal(t, "01:30 ||", statusText(timerlib.StatePaused, 90000))
	assert.Equal(t, "00:01", statusText(timerlib.StateRunning, 1))
	assert.Equal(t, "05:00", statusText(timerlib.StateIdle, 300000))
}

func TestWatcher_RefreshTracksTimers(t *testing.T) {
	c := startDaemon(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res, err := c.Create(ctx, pcommon.CreateParams{Label: "egg", DurationMs: 60000})
	require.NoError(t, err)
	id := res.Timer.ID
	_, err = c.Start(ctx, id)
	require.NoError(t, err)

	var buf bytes.Buffer
	w := newWatcher(c, &buf, "")
	w.p = mpb.NewWithContext(ctx, mpb.WithOutput(&buf), mpb.WithWidth(40))
	require.NoError(t, w.refresh(ctx))

	w.mu.Lock()
	b, ok := w.bars[id]
	count := len(w.bars)
	w.mu.Unlock()
	require.True(t, ok)
	l, err := c.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, len(l.Timers), count)

	// ten seconds later on the local clock the bar shows less time left
	w.advance(time.Now().Add(10 * time.Second))
	assert.Contains(t, []string{"00:49", "00:50"}, b.status())

	// a deleted timer loses its bar on the next refresh
	_, err = c.Delete(ctx, id)
	require.NoError(t, err)
	require.NoError(t, w.refresh(ctx))
	w.mu.Lock()
	_, ok = w.bars[id]
	w.mu.Unlock()
	assert.False(t, ok)

	cancel()
	w.p.Wait()
}
