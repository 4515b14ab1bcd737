package viewer

import (
	"context"
	"errors"
	"time"

	"github.com/warpdl/warpscreen/pkg/schedule"
)

var (
	// ErrAlreadyRunning is returned when Run is called on a running or
	// finished session.
	ErrAlreadyRunning = errors.New("viewer: session already running")
	// ErrStopped is returned by Submit once the session has stopped.
	ErrStopped = errors.New("viewer: session stopped")
)

// Run evaluates the schedule immediately and then on every tick, and
// executes submitted commands, until ctx is done. All session state is
// touched only from this goroutine while it runs. A session runs once.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Tick(s.now())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-s.cmds:
			fn(s)
		case <-ticker.C:
			s.Tick(s.now())
		}
	}
}

// Done is closed once Run has returned.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Submit queues fn to run on the session goroutine. It blocks until the
// command is queued, ctx is done or the session stops.
func (s *Session) Submit(ctx context.Context, fn func(*Session)) error {
	select {
	case <-s.done:
		return ErrStopped
	default:
	}
	select {
	case s.cmds <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrStopped
	}
}

// Update queues ApplyUpdate(doc).
func (s *Session) Update(ctx context.Context, doc *schedule.Document) error {
	return s.Submit(ctx, func(s *Session) { s.ApplyUpdate(doc) })
}

// Reassignment queues Reassign(r).
func (s *Session) Reassignment(ctx context.Context, r Reassignment) error {
	return s.Submit(ctx, func(s *Session) { s.Reassign(r) })
}

// Connected queues SetConnected(connected).
func (s *Session) Connected(ctx context.Context, connected bool) error {
	return s.Submit(ctx, func(s *Session) { s.SetConnected(connected) })
}

// RequestSync queues SyncUp.
func (s *Session) RequestSync(ctx context.Context) error {
	return s.Submit(ctx, func(s *Session) { s.SyncUp() })
}

// RequestReload queues Reload.
func (s *Session) RequestReload(ctx context.Context) error {
	return s.Submit(ctx, func(s *Session) { s.Reload() })
}
