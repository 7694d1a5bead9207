// Package daemon runs the ptimer daemon: it wires the record store, tick
// driver, wake scheduler, lifecycle controller and API server together and
// tears them down gracefully.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ptimer/ptimer/internal/config"
	"github.com/ptimer/ptimer/internal/lifecycle"
	"github.com/ptimer/ptimer/internal/notify"
	"github.com/ptimer/ptimer/internal/scheduler"
	"github.com/ptimer/ptimer/internal/server"
	"github.com/ptimer/ptimer/internal/store"
	"github.com/ptimer/ptimer/internal/tick"
	"github.com/ptimer/ptimer/pkg/credman"
	"github.com/ptimer/ptimer/pkg/logger"
)

// Sentinel errors for the daemon runner.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running daemon.
	ErrAlreadyRunning = errors.New("daemon is already running")

	// ErrNotRunning is returned when Shutdown() is called on a stopped daemon.
	ErrNotRunning = errors.New("daemon is not running")

	// ErrLocked is returned when another daemon holds the data directory.
	ErrLocked = errors.New("data directory is locked by another daemon")

	// ErrShutdownTimeout is returned when shutdown exceeds the configured timeout.
	ErrShutdownTimeout = errors.New("shutdown timed out")
)

const (
	lockFileName = "ptimer.lock"
	logFileName  = "daemon.log"
)

// Config holds the configuration for the daemon runner.
type Config struct {
	// Settings are the loaded daemon settings.
	Settings *config.Config

	Version   string
	Commit    string
	BuildType string
}

// Dependencies holds the external dependencies for the daemon runner.
// This enables dependency injection for testing.
type Dependencies struct {
	// ListenerFactory creates network listeners.
	// If nil, net.Listen is used.
	ListenerFactory func(network, address string) (net.Listener, error)

	// Logger receives daemon logs. If nil, logs go to stderr and to
	// daemon.log in the data directory.
	Logger logger.Logger

	// Backend overrides the record store selected by Settings.Store.
	Backend store.Backend

	// Token returns the RPC bearer token when Settings.RPCSecret is empty.
	// If nil, the token is read from the keyring or generated.
	Token func() (string, error)

	// Now is the wall clock. If nil, time.Now is used.
	Now func() time.Time
}

// Runner manages the daemon lifecycle.
type Runner struct {
	config *Config
	deps   *Dependencies

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	stopped chan struct{}
	addr    net.Addr
	ready   chan struct{}
}

// New creates a new daemon runner with the given configuration and dependencies.
// If deps is nil, default dependencies are used.
func New(cfg *Config, deps *Dependencies) *Runner {
	if cfg.Settings == nil {
		cfg.Settings = config.Default(".")
	}
	if deps == nil {
		deps = &Dependencies{}
	}
	if deps.ListenerFactory == nil {
		deps.ListenerFactory = net.Listen
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Runner{
		config: cfg,
		deps:   deps,
		ready:  make(chan struct{}),
	}
}

// Config returns the runner's configuration.
func (r *Runner) Config() *Config {
	return r.config
}

// Ready is closed once the API is listening.
func (r *Runner) Ready() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}

// Addr returns the listen address once Ready is closed.
func (r *Runner) Addr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addr
}

// IsRunning returns true if the daemon is currently running.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// components are the wired parts of a running daemon.
type components struct {
	log     logger.Logger
	release func() error
	repo    *store.Repository
	driver  *tick.Driver
	sched   *scheduler.Scheduler
	rpc     *server.RPCServer
	web     *server.WebServer
}

// Start wires every component, serves the API and blocks until ctx is
// cancelled or Shutdown is called. A clean stop returns nil.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.running = true
	ctx, r.cancel = context.WithCancel(ctx)
	r.stopped = make(chan struct{})
	select {
	case <-r.ready:
		r.ready = make(chan struct{})
	default:
	}
	stopped, cancel := r.stopped, r.cancel
	r.mu.Unlock()

	defer func() {
		cancel()
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
		close(stopped)
	}()

	c, err := r.build(ctx)
	if err != nil {
		return err
	}
	return r.serve(ctx, c)
}

func (r *Runner) logger(s *config.Config) logger.Logger {
	if r.deps.Logger != nil {
		return r.deps.Logger
	}
	console := logger.New()
	console.SetDebug(s.Debug)
	fl, err := logger.NewFileLogger(filepath.Join(s.DataDir, logFileName), s.Debug)
	if err != nil {
		console.Warning("daemon: file logging disabled: %v", err)
		return console
	}
	return logger.NewMultiLogger(console, fl)
}

func (r *Runner) token(s *config.Config, l logger.Logger) (string, error) {
	if s.RPCSecret != "" {
		return s.RPCSecret, nil
	}
	if r.deps.Token != nil {
		return r.deps.Token()
	}
	return credman.NewTokenManager(s.ConfigDir, l).Ensure()
}

// build wires the components in dependency order. On error everything
// acquired so far is released.
func (r *Runner) build(ctx context.Context) (_ *components, err error) {
	s := r.config.Settings
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("daemon: create data dir: %w", err)
	}

	c := &components{log: r.logger(s)}
	defer func() {
		if err != nil {
			c.close()
		}
	}()

	if c.release, err = lockDataDir(s.DataDir); err != nil {
		return nil, err
	}

	backend := r.deps.Backend
	if backend == nil {
		if backend, err = store.Open(s.Store, s.DataDir, c.log); err != nil {
			return nil, err
		}
	}
	c.repo = store.NewRepository(backend, c.log)
	if created, err := c.repo.SeedDefaults(ctx, r.deps.Now()); err != nil {
		return nil, err
	} else if created {
		c.log.Info("daemon: seeded default records in %s", s.DataDir)
	}
	bad, err := c.repo.CheckTimers(ctx)
	if err != nil {
		return nil, err
	}
	for _, err := range bad {
		c.log.Warning("daemon: stored %v", err)
	}

	secret, err := r.token(s, c.log)
	if err != nil {
		return nil, err
	}

	pushes := server.NewRPCNotifier(c.log)
	notifier := notify.Multi{notify.NewLog(c.log), pushes}

	c.driver = tick.NewDriver(c.repo, nil, notifier, tick.Config{
		Interval:       s.TickInterval,
		ClockTolerance: s.ClockTolerance,
		Now:            r.deps.Now,
	}, c.log)
	c.sched, err = scheduler.New(ctx, c.driver.HandleWake, scheduler.Options{
		Exact:       s.ExactAlarms,
		BatchCron:   s.BatchCron,
		MaxSleepCap: s.MaxSleepCap,
	}, c.log)
	if err != nil {
		return nil, err
	}
	c.driver.SetWakeCanceller(c.sched)
	ctl := lifecycle.New(c.repo, c.sched, notifier, c.log, lifecycle.Options{Now: r.deps.Now})

	// complete whatever ran out while the daemon was down, then re-arm the
	// wakes of the timers still running
	now := r.deps.Now()
	if _, err := c.driver.Cycle(ctx, now); err != nil {
		c.log.Warning("daemon: startup reconciliation failed, the tick loop will retry: %v", err)
	}
	timers, err := c.repo.Timers(ctx)
	if err != nil {
		return nil, err
	}
	for _, ev := range scheduler.LoadSchedules(timers, now) {
		if err := c.sched.Schedule(ev.ID, ev.FireAt, ev.Payload); err != nil {
			c.log.Warning("daemon: restore wake for %s: %v", ev.ID, err)
		}
	}

	c.rpc = server.NewRPCServer(&server.RPCConfig{
		Secret:    secret,
		Version:   r.config.Version,
		Commit:    r.config.Commit,
		BuildType: r.config.BuildType,
		Now:       r.deps.Now,
	}, c.repo, ctl, c.log)
	c.web = server.NewWebServer(s.ListenAddr, c.rpc, pushes, c.driver.Broadcaster(), c.log)
	return c, nil
}

func (r *Runner) serve(ctx context.Context, c *components) error {
	s := r.config.Settings
	ln, err := r.deps.ListenerFactory("tcp", s.ListenAddr)
	if err != nil {
		c.close()
		return fmt.Errorf("daemon: listen on %s: %w", s.ListenAddr, err)
	}
	r.mu.Lock()
	r.addr = ln.Addr()
	close(r.ready)
	r.mu.Unlock()

	serveErr := make(chan error, 1)
	go func() { serveErr <- c.web.Serve(ctx, ln) }()
	driverDone := make(chan struct{})
	go func() {
		c.driver.Run(ctx)
		close(driverDone)
	}()
	c.log.Info("daemon: listening on %s", ln.Addr())

	var result error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		result = err
		r.cancel()
	}

	sctx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
	defer cancel()
	if err := c.web.Shutdown(sctx); err != nil {
		c.log.Warning("daemon: web shutdown: %v", err)
		if errors.Is(err, context.DeadlineExceeded) {
			result = errors.Join(result, ErrShutdownTimeout)
		}
	}
	r.cancel()
	<-driverDone
	c.sched.Wait()
	c.log.Info("daemon: stopped")
	c.close()
	return result
}

func (c *components) close() {
	if c.rpc != nil {
		c.rpc.Close()
	}
	if c.repo != nil {
		if err := c.repo.Close(); err != nil {
			c.log.Warning("daemon: close store: %v", err)
		}
	}
	if c.release != nil {
		if err := c.release(); err != nil {
			c.log.Warning("daemon: release lock: %v", err)
		}
	}
	c.log.Close()
}

// Shutdown stops a running daemon and waits for Start to return, bounded by
// twice the shutdown timeout.
func (r *Runner) Shutdown() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return ErrNotRunning
	}
	r.cancel()
	stopped := r.stopped
	r.mu.Unlock()

	select {
	case <-stopped:
		return nil
	case <-time.After(2 * r.config.Settings.ShutdownTimeout):
		return ErrShutdownTimeout
	}
}
