package controller

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/google/uuid"

	"github.com/warpdl/warpscreen/internal/syncchan"
	"github.com/warpdl/warpscreen/pkg/logger"
	"github.com/warpdl/warpscreen/pkg/schedule"
)

// ControlPath is the JSON-RPC over HTTP endpoint for operators.
const ControlPath = "/control"

// Options configures a Server.
type Options struct {
	// Addr is the listen address used by Start, e.g. ":8090".
	Addr string
	// HeartbeatInterval is how often connected screens are sent a
	// heartbeat. Zero disables heartbeats.
	HeartbeatInterval time.Duration
	Logger            logger.Logger
	// OnUpdate, when set, observes every document a screen reports.
	OnUpdate func(session string, doc *schedule.Document)
}

// screen is one connected screen.
type screen struct {
	session     string
	remoteAddr  string
	connectedAt time.Time

	mu            sync.Mutex
	doc           *schedule.Document
	lastHeartbeat time.Time
}

// ScreenInfo describes a connected screen.
type ScreenInfo struct {
	Session       string             `json:"session"`
	RemoteAddr    string             `json:"remoteAddr"`
	ConnectedAt   time.Time          `json:"connectedAt"`
	LastHeartbeat *time.Time         `json:"lastHeartbeat,omitempty"`
	Document      *schedule.Document `json:"document,omitempty"`
}

// Server accepts screen connections and serves the control endpoint.
type Server struct {
	opts     Options
	log      logger.Logger
	notifier *Notifier
	bridge   jhttp.Bridge

	mu      sync.RWMutex
	screens map[*jrpc2.Server]*screen
	server  *http.Server
}

// New creates a controller server.
func New(opts Options) *Server {
	l := opts.Logger
	if l == nil {
		l = logger.NewNopLogger()
	}
	s := &Server{
		opts:     opts,
		log:      l,
		notifier: NewNotifier(l),
		screens:  make(map[*jrpc2.Server]*screen),
	}
	s.bridge = jhttp.NewBridge(handler.Map{
		"broadcast": handler.New(s.broadcast),
		"screens":   handler.New(s.listScreens),
	}, nil)
	return s
}

// Handler returns the HTTP handler serving /screens and /control.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(syncchan.EndpointPath, s.handleScreen)
	mux.Handle(ControlPath, s.bridge)
	return mux
}

// Start listens on Options.Addr until Shutdown.
func (s *Server) Start() error {
	s.mu.Lock()
	s.server = &http.Server{
		Addr:    s.opts.Addr,
		Handler: s.Handler(),
	}
	srv := s.server
	s.mu.Unlock()

	s.log.Info("Controller listening on %s", s.opts.Addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and disconnects every screen.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	servers := make([]*jrpc2.Server, 0, len(s.screens))
	for rpc := range s.screens {
		servers = append(servers, rpc)
	}
	s.mu.Unlock()

	for _, rpc := range servers {
		rpc.Stop()
	}
	s.bridge.Close()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Broadcast pushes a notification to every connected screen and returns
// how many received it.
func (s *Server) Broadcast(ctx context.Context, method string, params any) int {
	return s.notifier.Broadcast(ctx, method, params)
}

// Screens lists the connected screens ordered by connection time.
func (s *Server) Screens() []ScreenInfo {
	s.mu.RLock()
	infos := make([]ScreenInfo, 0, len(s.screens))
	for _, sc := range s.screens {
		infos = append(infos, sc.info())
	}
	s.mu.RUnlock()
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ConnectedAt.Before(infos[j].ConnectedAt)
	})
	return infos
}

func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.log.Warning("WebSocket upgrade failed: %v", err)
		return
	}
	ws.SetReadLimit(syncchan.DefaultReadLimit)

	session := r.Header.Get(syncchan.SessionHeader)
	if session == "" {
		session = uuid.NewString()
	}
	sc := &screen{session: session, remoteAddr: r.RemoteAddr, connectedAt: time.Now()}

	rpc := jrpc2.NewServer(handler.Map{
		syncchan.MethodUpdate:    handler.New(s.screenUpdate),
		syncchan.MethodHeartbeat: handler.New(s.screenHeartbeat),
		"echo":                   handler.New(s.echo),
	}, &jrpc2.ServerOptions{AllowPush: true})

	// Registered before Start so handlers can always find their screen.
	s.mu.Lock()
	s.screens[rpc] = sc
	s.mu.Unlock()

	ctx := r.Context()
	rpc.Start(syncchan.NewWSChannel(ctx, ws))
	s.notifier.Register(rpc)
	s.log.Info("Screen %s connected from %s", session, r.RemoteAddr)

	// A reconnecting screen may have changed while away.
	if err := rpc.Notify(ctx, syncchan.MethodRequestUpdate, nil); err != nil {
		s.log.Warning("Failed to request update from %s: %v", session, err)
	}

	stopHeartbeat := make(chan struct{})
	if s.opts.HeartbeatInterval > 0 {
		go s.heartbeat(ctx, rpc, stopHeartbeat)
	}

	if err := rpc.Wait(); err != nil {
		s.log.Info("Screen %s disconnected: %v", session, err)
	} else {
		s.log.Info("Screen %s disconnected", session)
	}
	close(stopHeartbeat)
	s.notifier.Unregister(rpc)
	s.mu.Lock()
	delete(s.screens, rpc)
	s.mu.Unlock()
}

func (s *Server) heartbeat(ctx context.Context, rpc *jrpc2.Server, stop <-chan struct{}) {
	t := time.NewTicker(s.opts.HeartbeatInterval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-t.C:
			if err := rpc.Notify(ctx, syncchan.MethodHeartbeat, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) screenFor(ctx context.Context) *screen {
	rpc := jrpc2.ServerFromContext(ctx)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.screens[rpc]
}

func (sc *screen) info() ScreenInfo {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	info := ScreenInfo{
		Session:     sc.session,
		RemoteAddr:  sc.remoteAddr,
		ConnectedAt: sc.connectedAt,
		Document:    sc.doc.Clone(),
	}
	if !sc.lastHeartbeat.IsZero() {
		hb := sc.lastHeartbeat
		info.LastHeartbeat = &hb
	}
	return info
}
