package display

import (
	"context"
	_ "embed"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"

	"github.com/warpdl/warpscreen/pkg/logger"
)

//go:embed index.html
var indexHTML []byte

// Server serves the display page and its event stream.
type Server struct {
	addr   string
	b      *Broadcaster
	log    logger.Logger
	engine *gin.Engine

	mu     sync.Mutex
	server *http.Server
}

// NewServer creates a display host listening on addr.
func NewServer(addr string, b *Broadcaster, l logger.Logger) *Server {
	if l == nil {
		l = logger.NewNopLogger()
	}
	s := &Server{addr: addr, b: b, log: l}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithWriter(logger.ToStdLogger(l).Writer()))
	r.GET("/", s.handleIndex)
	r.GET("/state", s.handleState)
	r.GET("/events", s.handleEvents)
	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start listens until Shutdown.
func (s *Server) Start() error {
	s.mu.Lock()
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.engine,
	}
	srv := s.server
	s.mu.Unlock()

	s.log.Info("Display host listening on %s", s.addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Serve accepts connections on l until Shutdown.
func (s *Server) Serve(l net.Listener) error {
	s.mu.Lock()
	s.server = &http.Server{Handler: s.engine}
	srv := s.server
	s.mu.Unlock()

	s.log.Info("Display host listening on %s", l.Addr())
	err := srv.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the display host.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (s *Server) handleState(c *gin.Context) {
	ev, ok := s.b.Current()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"type": EventNotConnected})
		return
	}
	c.JSON(http.StatusOK, ev)
}

func (s *Server) handleEvents(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.log.Warning("Display WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	events, unsubscribe := s.b.Subscribe()
	defer unsubscribe()

	// The page never sends; CloseRead notices when it goes away.
	ctx := conn.CloseRead(c.Request.Context())

	if ev, ok := s.b.Current(); ok {
		if err := wsjson.Write(ctx, conn, ev); err != nil {
			return
		}
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := wsjson.Write(ctx, conn, ev); err != nil {
				s.log.Info("Display page disconnected: %v", err)
				return
			}
		}
	}
}
