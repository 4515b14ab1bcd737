package controller

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"

	"github.com/warpdl/warpscreen/pkg/logger"
)

// newPipeServer creates a push-capable jrpc2 server on an io.Pipe channel.
// The returned client channel must be drained or closed so pushes do not
// block.
func newPipeServer(t *testing.T) (channel.Channel, *jrpc2.Server, func()) {
	t.Helper()
	cr, sw := io.Pipe()
	sr, cw := io.Pipe()
	cli := channel.Line(cr, cw)
	srvCh := channel.Line(sr, sw)

	srv := jrpc2.NewServer(handler.Map{}, &jrpc2.ServerOptions{AllowPush: true})
	srv.Start(srvCh)

	cleanup := func() {
		cli.Close()
		_ = srv.Wait()
	}
	return cli, srv, cleanup
}

func TestNotifier_RegisterUnregister(t *testing.T) {
	n := NewNotifier(nil)
	_, srv, cleanup := newPipeServer(t)
	defer cleanup()

	n.Register(srv)
	n.Register(srv)
	if n.Count() != 1 {
		t.Fatalf("expected 1 server, got %d", n.Count())
	}
	n.Unregister(srv)
	n.Unregister(srv)
	if n.Count() != 0 {
		t.Fatalf("expected 0 servers, got %d", n.Count())
	}
}

func TestNotifier_BroadcastNoServers(t *testing.T) {
	n := NewNotifier(nil)
	if got := n.Broadcast(context.Background(), "reload", nil); got != 0 {
		t.Fatalf("expected 0 deliveries, got %d", got)
	}
}

func TestNotifier_Broadcast(t *testing.T) {
	n := NewNotifier(nil)
	cli1, srv1, cleanup1 := newPipeServer(t)
	defer cleanup1()
	cli2, srv2, cleanup2 := newPipeServer(t)
	defer cleanup2()
	n.Register(srv1)
	n.Register(srv2)

	got := make(chan string, 2)
	for _, cli := range []channel.Channel{cli1, cli2} {
		go func(cli channel.Channel) {
			data, _ := cli.Recv()
			got <- string(data)
		}(cli)
	}

	if d := n.Broadcast(context.Background(), "update", map[string]any{"id": 1}); d != 2 {
		t.Fatalf("expected 2 deliveries, got %d", d)
	}
	for i := 0; i < 2; i++ {
		if msg := <-got; !strings.Contains(msg, `"method":"update"`) {
			t.Fatalf("unexpected notification %s", msg)
		}
	}
}

func TestNotifier_DropsDisconnectedServers(t *testing.T) {
	mock := logger.NewMockLogger()
	n := NewNotifier(mock)

	cli1, srv1, cleanup1 := newPipeServer(t)
	defer cleanup1()
	cli2, srv2, _ := newPipeServer(t)
	n.Register(srv1)
	n.Register(srv2)

	cli2.Close()
	_ = srv2.Wait()

	done := make(chan struct{})
	go func() { _, _ = cli1.Recv(); close(done) }()

	if d := n.Broadcast(context.Background(), "reload", nil); d != 1 {
		t.Fatalf("expected 1 delivery, got %d", d)
	}
	<-done
	if n.Count() != 1 {
		t.Fatalf("expected the failed server to be dropped, got %d", n.Count())
	}
	if len(mock.Warnings()) == 0 {
		t.Fatal("expected a warning for the failed push")
	}
}
