package viewer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/warpdl/warpscreen/pkg/schedule"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestRun_AppliesSubmittedCommands(t *testing.T) {
	rec := &recorder{}
	up := &docSink{}
	s := New(testHost, WithHandlers(rec.handlers()), WithUpstream(up), WithTickInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	if err := s.Update(ctx, &schedule.Document{ID: "5", Items: []schedule.Item{{URL: "https://ada.is"}}}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := s.Connected(ctx, true); err != nil {
		t.Fatalf("Connected: %v", err)
	}
	waitFor(t, "change event", func() bool { return rec.count("change:https://ada.is") == 1 })

	if err := s.RequestSync(ctx); err != nil {
		t.Fatalf("RequestSync: %v", err)
	}
	if err := s.RequestReload(ctx); err != nil {
		t.Fatalf("RequestReload: %v", err)
	}
	waitFor(t, "reload event", func() bool { return rec.count("reload") == 1 })

	stamp := make(chan schedule.Millis, 1)
	_ = s.Submit(ctx, func(s *Session) { stamp <- s.Document().IDUpdated })
	if err := s.Reassignment(ctx, Reassignment{ID: "5", IDUpdated: <-stamp, NewID: "6"}); err != nil {
		t.Fatalf("Reassignment: %v", err)
	}
	waitFor(t, "identity change", func() bool { return rec.count("identity:6") == 1 })

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	<-s.Done()

	if err := s.Submit(context.Background(), func(*Session) {}); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped after Run returned, got %v", err)
	}
	if err := s.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestRun_EvaluatesImmediately(t *testing.T) {
	rec := &recorder{}
	s := New(testHost,
		WithDocument(&schedule.Document{Items: []schedule.Item{{URL: "https://ada.is"}}}),
		WithHandlers(rec.handlers()),
		WithTickInterval(time.Hour),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)
	waitFor(t, "first evaluation", func() bool { return rec.count("change:https://ada.is") == 1 })
}

func TestRun_StaysUninitializedWithoutDocument(t *testing.T) {
	s := New(testHost, WithTickInterval(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	state := func() State {
		ch := make(chan State, 1)
		if err := s.Submit(ctx, func(s *Session) { ch <- s.State() }); err != nil {
			t.Fatalf("Submit: %v", err)
		}
		return <-ch
	}
	if got := state(); got != StateUninitialized {
		t.Fatalf("state before any document = %v, want %v", got, StateUninitialized)
	}
	if err := s.Update(ctx, &schedule.Document{Items: []schedule.Item{}}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := state(); got == StateUninitialized {
		t.Fatal("state still uninitialized after an update")
	}
}
