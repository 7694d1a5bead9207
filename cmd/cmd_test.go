package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptimer/ptimer/internal/config"
	pdaemon "github.com/ptimer/ptimer/internal/daemon"
	"github.com/ptimer/ptimer/internal/store"
	"github.com/ptimer/ptimer/pkg/logger"
	"github.com/ptimer/ptimer/pkg/timercli"
)

const testSecret = "cmd-test-secret"

// startDaemon runs an in-process daemon and points newClient at it.
func startDaemon(t *testing.T) *timercli.Client {
	t.Helper()
	s := config.Default(t.TempDir())
	s.ListenAddr = "127.0.0.1:0"
	s.RPCSecret = testSecret
	s.TickInterval = 20 * time.Millisecond
	s.ShutdownTimeout = 2 * time.Second

	b, err := store.NewFileBackend(afero.NewMemMapFs(), "/data", nil)
	require.NoError(t, err)
	r := pdaemon.New(&pdaemon.Config{Settings: s, Version: "test"}, &pdaemon.Dependencies{
		Logger:  logger.NewNopLogger(),
		Backend: b,
	})
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Start(ctx) }()
	select {
	case <-r.Ready():
	case err := <-errCh:
		cancel()
		t.Fatalf("daemon stopped early: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("daemon did not become ready")
	}
	t.Cleanup(func() {
		cancel()
		<-errCh
	})

	addr := r.Addr().String()
	prev := newClient
	newClient = func() (*timercli.Client, error) {
		return timercli.NewClient(addr, testSecret), nil
	}
	t.Cleanup(func() { newClient = prev })

	c := timercli.NewClient(addr, testSecret)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	app := newApp(BuildArgs{Version: "test", BuildType: "debug"})
	app.Writer = &buf
	require.NoError(t, app.Run(append([]string{"ptimer"}, args...)))
	return buf.String()
}

func TestCommands_TimerLifecycle(t *testing.T) {
	c := startDaemon(t)
	ctx := context.Background()

	out := run(t, "add", "--group", "cooking", "tea", "5m")
	assert.Contains(t, out, "tea")
	assert.Contains(t, out, "Idle")
	assert.Contains(t, out, "[cooking]")

	l, err := c.List(ctx, "cooking")
	require.NoError(t, err)
	require.Len(t, l.Timers, 1)
	id := l.Timers[0].ID

	assert.Contains(t, run(t, "list"), "tea")
	assert.Contains(t, run(t, "list", "--group", "work"), "no timers found")

	out = run(t, "start", id[:8])
	assert.Contains(t, out, "started")
	assert.Contains(t, out, "Running")

	assert.Contains(t, run(t, "pause", id), "paused")
	assert.Contains(t, run(t, "pause", id), "nothing to do, timer is Paused")

	out = run(t, "reset", id)
	assert.Contains(t, out, "Idle")
	assert.Contains(t, out, "05:00")

	out = run(t, "edit", "--label", "green tea", id)
	assert.Contains(t, out, "green tea")
	assert.Contains(t, out, "[cooking]")

	assert.Contains(t, run(t, "delete", id), `deleted "green tea"`)
	l, err = c.List(ctx, "cooking")
	require.NoError(t, err)
	assert.Empty(t, l.Timers)

	assert.Contains(t, run(t, "undo"), "restored")
	assert.Contains(t, run(t, "undo"), "nothing to restore")
}

func TestCommands_Preset(t *testing.T) {
	startDaemon(t)

	out := run(t, "preset", "25min")
	assert.Contains(t, out, "25 min")

	out = run(t, "preset", "--duration", "90s")
	assert.Contains(t, out, "1m 30s")
}

func TestCommands_Catalog(t *testing.T) {
	startDaemon(t)

	out := run(t, "presets")
	assert.Contains(t, out, "5min")
	assert.Contains(t, out, "25min")

	out = run(t, "groups")
	for _, g := range []string{"cooking", "exercise", "study", "work", "break"} {
		assert.Contains(t, out, g)
	}
}

func TestCommands_HistoryAndStats(t *testing.T) {
	c := startDaemon(t)
	ctx := context.Background()

	assert.Contains(t, run(t, "history"), "no completed timers yet")

	out := run(t, "add", "egg", "100ms")
	require.Contains(t, out, "egg")
	l, err := c.List(ctx, "")
	require.NoError(t, err)
	var id string
	for _, tm := range l.Timers {
		if tm.Label == "egg" {
			id = tm.ID
		}
	}
	require.NotEmpty(t, id)
	run(t, "start", id)

	require.Eventually(t, func() bool {
		h, err := c.History(ctx)
		return err == nil && len(h.Entries) == 1
	}, 3*time.Second, 20*time.Millisecond)

	assert.Contains(t, run(t, "history"), "egg")

	out = run(t, "stats")
	assert.Contains(t, out, "All time")
	assert.Contains(t, out, "Streak: 1 days")

	assert.Contains(t, run(t, "history", "--clear"), "history cleared")
	assert.Contains(t, run(t, "history"), "no completed timers yet")
}

func TestResolveID(t *testing.T) {
	c := startDaemon(t)
	ctx := context.Background()

	l, err := c.List(ctx, "")
	require.NoError(t, err)
	require.NotEmpty(t, l.Timers)
	id := l.Timers[0].ID

	got, err := resolveID(ctx, c, id)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = resolveID(ctx, c, "")
	assert.Error(t, err)

	_, err = resolveID(ctx, c, "not-an-id")
	assert.ErrorContains(t, err, "no timer matches")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", shortID("abc"))
	assert.Equal(t, "01234567", shortID("0123456789"))
}
