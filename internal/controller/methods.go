package controller

import (
	"context"
	"encoding/json"
	"time"

	"github.com/creachadair/jrpc2"

	"github.com/warpdl/warpscreen/internal/syncchan"
	"github.com/warpdl/warpscreen/pkg/schedule"
)

const codeInvalidParams = jrpc2.Code(-32602)

// pushable lists the notifications a controller may send to screens.
var pushable = map[string]bool{
	syncchan.MethodUpdate:        true,
	syncchan.MethodReassign:      true,
	syncchan.MethodRequestUpdate: true,
	syncchan.MethodReload:        true,
	syncchan.MethodHeartbeat:     true,
}

// EchoParams asks the controller to push a notification back to the
// calling screen.
type EchoParams struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// BroadcastParams is the request for the broadcast control method.
type BroadcastParams struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// BroadcastResult is the response for the broadcast control method.
type BroadcastResult struct {
	Delivered int `json:"delivered"`
}

func (s *Server) screenUpdate(ctx context.Context, doc *schedule.Document) error {
	sc := s.screenFor(ctx)
	if sc == nil {
		return nil
	}
	schedule.Normalize(doc)
	sc.mu.Lock()
	sc.doc = doc
	sc.mu.Unlock()
	s.log.Info("Screen %s reported id %q with %d items", sc.session, doc.ID, len(doc.Items))
	if s.opts.OnUpdate != nil {
		s.opts.OnUpdate(sc.session, doc.Clone())
	}
	return nil
}

func (s *Server) screenHeartbeat(ctx context.Context) error {
	if sc := s.screenFor(ctx); sc != nil {
		sc.mu.Lock()
		sc.lastHeartbeat = time.Now()
		sc.mu.Unlock()
	}
	return nil
}

func (s *Server) echo(ctx context.Context, p *EchoParams) error {
	if p.Method == "" {
		return &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: method"}
	}
	return jrpc2.ServerFromContext(ctx).Notify(ctx, p.Method, rawParams(p.Params))
}

func (s *Server) broadcast(ctx context.Context, p *BroadcastParams) (*BroadcastResult, error) {
	if !pushable[p.Method] {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "unsupported method: " + p.Method}
	}
	n := s.notifier.Broadcast(ctx, p.Method, rawParams(p.Params))
	s.log.Info("Broadcast %s to %d screens", p.Method, n)
	return &BroadcastResult{Delivered: n}, nil
}

func (s *Server) listScreens(context.Context) ([]ScreenInfo, error) {
	return s.Screens(), nil
}

// rawParams keeps absent params absent on the wire.
func rawParams(raw json.RawMessage) any {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}
