// Package daemon runs a warpscreen screen: it wires the schedule store,
// the viewer session, the controller sync channel and the display host
// together and manages their start and graceful shutdown.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/warpdl/warpscreen/internal/display"
	"github.com/warpdl/warpscreen/internal/syncchan"
	"github.com/warpdl/warpscreen/internal/viewer"
	"github.com/warpdl/warpscreen/pkg/logger"
	"github.com/warpdl/warpscreen/pkg/schedule"
	"github.com/warpdl/warpscreen/pkg/store"
)

// Sentinel errors for the daemon runner.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running daemon.
	ErrAlreadyRunning = errors.New("daemon is already running")

	// ErrNotRunning is returned when Shutdown() is called on a stopped daemon.
	ErrNotRunning = errors.New("daemon is not running")

	// ErrShutdownTimeout is returned when shutdown exceeds the configured timeout.
	ErrShutdownTimeout = errors.New("shutdown timed out")
)

// Config holds the configuration for the daemon runner.
type Config struct {
	// Host serves the fallback pages, e.g. "https://screens.example.com".
	Host string

	// Controller is the controller address. Empty runs the screen offline
	// from its cached schedule.
	Controller string

	// DisplayAddr is the listen address of the display host. Empty
	// disables the display host.
	DisplayAddr string

	// TickInterval is how often the schedule is evaluated.
	TickInterval time.Duration

	// HeartbeatDelay is how long controller heartbeats are held before the
	// echo.
	HeartbeatDelay time.Duration

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// A zero value means no timeout.
	ShutdownTimeout time.Duration
}

// Dependencies holds the external dependencies for the daemon runner.
type Dependencies struct {
	// Store holds the cached schedule. Required.
	Store *store.Store

	// Logger receives runtime messages. If nil, messages are discarded.
	Logger logger.Logger

	// Handlers observe session events in addition to the display host.
	Handlers viewer.Handlers

	// ListenerFactory creates the display host listener.
	// If nil, net.Listen is used.
	ListenerFactory func(network, address string) (net.Listener, error)

	// Clock replaces time.Now for the session.
	Clock func() time.Time
}

// Runner manages the daemon lifecycle.
type Runner struct {
	config *Config
	deps   *Dependencies
	log    logger.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	stopped chan struct{}
	session *viewer.Session
}

// New creates a new daemon runner with the given configuration and dependencies.
func New(config *Config, deps *Dependencies) (*Runner, error) {
	if deps == nil || deps.Store == nil {
		return nil, errors.New("daemon: a store is required")
	}
	if config == nil {
		config = &Config{}
	}
	if deps.ListenerFactory == nil {
		deps.ListenerFactory = net.Listen
	}
	l := deps.Logger
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &Runner{config: config, deps: deps, log: l}, nil
}

// Config returns the runner's configuration.
func (r *Runner) Config() *Config {
	return r.config
}

// Start runs the screen and blocks until the context is canceled or
// Shutdown is called. Returns ErrAlreadyRunning if the daemon is already
// started.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}

	doc, err := r.deps.Store.Load(ctx)
	if err != nil {
		r.mu.Unlock()
		return err
	}

	// Listen before setting running=true so a bind failure leaves the
	// runner stopped.
	var listener net.Listener
	if r.config.DisplayAddr != "" {
		listener, err = r.deps.ListenerFactory("tcp", r.config.DisplayAddr)
		if err != nil {
			r.mu.Unlock()
			return fmt.Errorf("display listener: %w", err)
		}
	}

	persister := store.NewPersister(r.deps.Store, r.log)
	broadcaster := display.NewBroadcaster()
	opts := []viewer.Option{
		viewer.WithDocument(doc),
		viewer.WithSaver(persister),
		viewer.WithHandlers(viewer.Chain(broadcaster.Handlers(), r.deps.Handlers)),
		viewer.WithLogger(r.log),
		viewer.WithTickInterval(r.config.TickInterval),
	}
	if r.deps.Clock != nil {
		opts = append(opts, viewer.WithClock(r.deps.Clock))
	}
	session := viewer.New(r.config.Host, opts...)

	var client *syncchan.Client
	if r.config.Controller != "" {
		copts := []syncchan.Option{syncchan.WithLogger(r.log)}
		if r.config.HeartbeatDelay > 0 {
			copts = append(copts, syncchan.WithHeartbeatDelay(r.config.HeartbeatDelay))
		}
		client, err = syncchan.New(r.config.Controller, session, copts...)
		if err != nil {
			r.mu.Unlock()
			if listener != nil {
				_ = listener.Close()
			}
			_ = persister.Close(context.Background())
			return err
		}
		session.Attach(client)
	}

	ctx, r.cancel = context.WithCancel(ctx)
	r.session = session
	r.stopped = make(chan struct{})
	r.running = true
	stopped := r.stopped
	r.mu.Unlock()

	defer close(stopped)
	r.log.Info("Screen started with %d cached items", len(doc.Items))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			r.log.Error("Session stopped: %v", err)
		}
	}()
	if client != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := client.Run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, syncchan.ErrClosed) {
				r.log.Error("Sync channel stopped: %v", err)
			}
		}()
	}
	var disp *display.Server
	if listener != nil {
		disp = display.NewServer(r.config.DisplayAddr, broadcaster, r.log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := disp.Serve(listener); err != nil {
				r.log.Error("Display host stopped: %v", err)
			}
		}()
	}

	<-ctx.Done()
	r.stopServices(session, disp, client, persister)
	wg.Wait()

	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
	return ctx.Err()
}

// stopServices stops the outer surfaces and flushes the pending document
// once the session loop has made its last save.
func (r *Runner) stopServices(session *viewer.Session, disp *display.Server, client *syncchan.Client, persister *store.Persister) {
	sctx, cancel := r.shutdownContext()
	defer cancel()
	if disp != nil {
		if err := disp.Shutdown(sctx); err != nil {
			r.log.Warning("Display host shutdown: %v", err)
		}
	}
	if client != nil {
		_ = client.Close()
	}
	select {
	case <-session.Done():
	case <-sctx.Done():
	}
	if err := persister.Close(sctx); err != nil {
		r.log.Warning("Pending document not written before shutdown: %v", err)
	}
	r.log.Info("Screen stopped")
}

func (r *Runner) shutdownContext() (context.Context, context.CancelFunc) {
	if r.config.ShutdownTimeout > 0 {
		return context.WithTimeout(context.Background(), r.config.ShutdownTimeout)
	}
	return context.WithCancel(context.Background())
}

// Shutdown gracefully stops the daemon and waits for Start to finish.
// Returns ErrNotRunning if the daemon is not running.
// Returns ErrShutdownTimeout if shutdown exceeds the configured timeout.
func (r *Runner) Shutdown() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return ErrNotRunning
	}
	cancel, stopped := r.cancel, r.stopped
	r.mu.Unlock()

	cancel()
	if r.config.ShutdownTimeout <= 0 {
		<-stopped
		return nil
	}
	select {
	case <-stopped:
		return nil
	case <-time.After(r.config.ShutdownTimeout):
		return ErrShutdownTimeout
	}
}

// IsRunning returns true if the daemon is currently running.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Document returns a copy of the running screen's document. Returns
// ErrNotRunning if the daemon is not running.
func (r *Runner) Document(ctx context.Context) (*schedule.Document, error) {
	r.mu.Lock()
	session, running := r.session, r.running
	r.mu.Unlock()
	if !running {
		return nil, ErrNotRunning
	}
	out := make(chan *schedule.Document, 1)
	if err := session.Submit(ctx, func(s *viewer.Session) { out <- s.Document() }); err != nil {
		return nil, err
	}
	select {
	case doc := <-out:
		return doc, nil
	case <-session.Done():
		return nil, viewer.ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
