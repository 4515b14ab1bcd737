package syncchan

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
	"github.com/google/uuid"

	"github.com/warpdl/warpscreen/internal/viewer"
	"github.com/warpdl/warpscreen/pkg/logger"
	"github.com/warpdl/warpscreen/pkg/schedule"
)

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("syncchan: client closed")

const (
	outboxSize = 32
	// bound on delivering a disconnect to a target that may be stopping
	disconnectTimeout = time.Second
)

// Target receives inbound controller traffic. *viewer.Session satisfies it.
type Target interface {
	Update(ctx context.Context, doc *schedule.Document) error
	Reassignment(ctx context.Context, r viewer.Reassignment) error
	Connected(ctx context.Context, connected bool) error
	RequestSync(ctx context.Context) error
	RequestReload(ctx context.Context) error
}

type message struct {
	method string
	params any
}

// Client is the screen end of the sync channel. It implements
// viewer.Upstream: PushUpdate never blocks and drops the document while
// the controller is unreachable.
type Client struct {
	endpoint       string
	sessionID      string
	target         Target
	log            logger.Logger
	backoff        Backoff
	heartbeatDelay time.Duration

	out chan message

	mu        sync.Mutex
	cli       *jrpc2.Client
	closed    bool
	stop      chan struct{}
	closeOnce sync.Once
}

var _ viewer.Upstream = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithBackoff replaces the reconnect policy.
func WithBackoff(b Backoff) Option {
	return func(c *Client) { c.backoff = b }
}

// WithHeartbeatDelay sets how long heartbeats are held before the echo.
func WithHeartbeatDelay(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.heartbeatDelay = d
		}
	}
}

// WithSessionID overrides the generated connection session id.
func WithSessionID(id string) Option {
	return func(c *Client) { c.sessionID = id }
}

// Endpoint turns a controller address into its screens WebSocket URL.
// http and https are mapped to ws and wss.
func Endpoint(controller string) (string, error) {
	u, err := url.Parse(controller)
	if err != nil {
		return "", fmt.Errorf("parse controller address: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported controller scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("controller address %q has no host", controller)
	}
	u.Path = strings.TrimRight(u.Path, "/") + EndpointPath
	return u.String(), nil
}

// New creates a client for the controller at address, delivering inbound
// messages to target.
func New(address string, target Target, opts ...Option) (*Client, error) {
	endpoint, err := Endpoint(address)
	if err != nil {
		return nil, err
	}
	c := &Client{
		endpoint:       endpoint,
		sessionID:      uuid.NewString(),
		target:         target,
		backoff:        DefaultBackoff(),
		heartbeatDelay: DefaultHeartbeatDelay,
		out:            make(chan message, outboxSize),
		stop:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.NewNopLogger()
	}
	return c, nil
}

// SessionID returns the id sent with every dial.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Connected reports whether a controller connection is established.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cli != nil
}

// PushUpdate queues doc for the controller. It is dropped when the
// controller is not connected or the outbox is full.
func (c *Client) PushUpdate(doc *schedule.Document) {
	if !c.Connected() {
		c.log.Info("Controller not connected, dropping update")
		return
	}
	c.enqueue(message{method: MethodUpdate, params: doc})
}

// Close stops Run. It is safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.stop)
	})
	return nil
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Run connects to the controller and keeps reconnecting until ctx is done
// or Close is called.
func (c *Client) Run(ctx context.Context) error {
	if c.isClosed() {
		return ErrClosed
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-c.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	attempt := 0
	for {
		connected, err := c.connect(ctx)
		if c.isClosed() {
			return ErrClosed
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			attempt = 0
		}
		attempt++
		if err != nil {
			c.log.Warning("Controller connection failed (attempt %d): %v", attempt, err)
		}
		if err := c.backoff.Wait(ctx, attempt); err != nil {
			if c.isClosed() {
				return ErrClosed
			}
			return err
		}
	}
}

// connect runs one connection to completion. It reports whether the dial
// succeeded and why the connection ended.
func (c *Client) connect(ctx context.Context) (bool, error) {
	ws, _, err := websocket.Dial(ctx, c.endpoint, &websocket.DialOptions{
		HTTPHeader: http.Header{SessionHeader: []string{c.sessionID}},
	})
	if err != nil {
		return false, fmt.Errorf("dial %s: %w", c.endpoint, err)
	}
	ws.SetReadLimit(DefaultReadLimit)

	cctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stopped := make(chan error, 1)
	cli := jrpc2.NewClient(NewWSChannel(cctx, ws), &jrpc2.ClientOptions{
		OnNotify: func(req *jrpc2.Request) { c.dispatch(cctx, req) },
		OnStop: func(_ *jrpc2.Client, err error) {
			select {
			case stopped <- err:
			default:
			}
		},
	})

	c.drain()
	c.setClient(cli)
	c.log.Info("Connected to controller %s", c.endpoint)
	if err := c.target.Connected(cctx, true); err != nil {
		c.log.Warning("Failed to report connection: %v", err)
	}

	var end error
loop:
	for {
		select {
		case m := <-c.out:
			if err := cli.Notify(cctx, m.method, m.params); err != nil {
				c.log.Warning("Failed to send %s notification: %v", m.method, err)
			}
		case end = <-stopped:
			break loop
		case <-cctx.Done():
			break loop
		}
	}

	c.setClient(nil)
	cli.Close()
	c.log.Info("Disconnected from controller %s", c.endpoint)

	dctx, dcancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer dcancel()
	if err := c.target.Connected(dctx, false); err != nil && !errors.Is(err, viewer.ErrStopped) {
		c.log.Warning("Failed to report disconnection: %v", err)
	}
	if end != nil && ctx.Err() == nil {
		return true, fmt.Errorf("connection lost: %w", end)
	}
	return true, nil
}

func (c *Client) dispatch(ctx context.Context, req *jrpc2.Request) {
	var err error
	switch req.Method() {
	case MethodUpdate:
		var doc schedule.Document
		if err = req.UnmarshalParams(&doc); err == nil {
			err = c.target.Update(ctx, &doc)
		}
	case MethodReassign:
		var r viewer.Reassignment
		if err = req.UnmarshalParams(&r); err == nil {
			err = c.target.Reassignment(ctx, r)
		}
	case MethodRequestUpdate:
		err = c.target.RequestSync(ctx)
	case MethodReload:
		err = c.target.RequestReload(ctx)
	case MethodHeartbeat:
		c.echoHeartbeat(ctx)
	default:
		c.log.Warning("Ignoring unknown controller notification %q", req.Method())
		return
	}
	if err != nil {
		c.log.Warning("Failed to handle %s notification: %v", req.Method(), err)
	}
}

// echoHeartbeat answers a controller heartbeat after the configured delay,
// unless the connection ends first.
func (c *Client) echoHeartbeat(ctx context.Context) {
	time.AfterFunc(c.heartbeatDelay, func() {
		if ctx.Err() == nil {
			c.enqueue(message{method: MethodHeartbeat})
		}
	})
}

func (c *Client) enqueue(m message) {
	select {
	case c.out <- m:
	default:
		c.log.Warning("Outbox full, dropping %s notification", m.method)
	}
}

// drain discards messages queued for a connection that no longer exists.
func (c *Client) drain() {
	for {
		select {
		case <-c.out:
		default:
			return
		}
	}
}

func (c *Client) setClient(cli *jrpc2.Client) {
	c.mu.Lock()
	c.cli = cli
	c.mu.Unlock()
}
