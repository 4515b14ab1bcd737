package viewer

import (
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/warpdl/warpscreen/pkg/logger"
	"github.com/warpdl/warpscreen/pkg/schedule"
)

// DefaultTickInterval is how often a running session re-evaluates its
// schedule. Activation is minute grained, but expiry and connectivity
// changes are picked up within a tick.
const DefaultTickInterval = time.Second

// Saver persists documents. Save must not block; the Session calls it from
// its own goroutine after every document change.
type Saver interface {
	Save(doc *schedule.Document)
}

// Upstream receives the session's document whenever it must be pushed to
// the controller. PushUpdate must not block.
type Upstream interface {
	PushUpdate(doc *schedule.Document)
}

// Reassignment is a controller command moving the screen to a new id. It
// only applies while the screen still has exactly the id and idUpdated
// stamp the controller saw.
type Reassignment struct {
	ID        schedule.ScreenID `json:"id"`
	IDUpdated schedule.Millis   `json:"idUpdated"`
	NewID     schedule.ScreenID `json:"newID"`
}

// State is the coarse display state of a session.
type State int

const (
	// StateUninitialized means no document has been loaded or received.
	StateUninitialized State = iota
	// StateLoaded means a document is present but has not been evaluated.
	StateLoaded
	// StateSelected means a scheduled item is being shown.
	StateSelected
	// StateFallback means nothing is scheduled and the fallback page is shown.
	StateFallback
	// StateDisconnected means nothing is scheduled and the screen is not ready.
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoaded:
		return "loaded"
	case StateSelected:
		return "selected"
	case StateFallback:
		return "fallback"
	case StateDisconnected:
		return "disconnected"
	}
	return "unknown"
}

// Session is the state of one screen. The exported methods that mutate
// state (ApplyUpdate, Reassign, Tick, SetConnected, SyncUp, Reload) are not
// safe for concurrent use: call them before Run starts, or through Submit
// once it has.
type Session struct {
	host string

	doc       *schedule.Document
	loaded    bool
	evaluated bool
	url       schedule.OptionalURL
	connected bool
	wasReady  bool

	saver    Saver
	up       Upstream
	h        Handlers
	log      logger.Logger
	now      func() time.Time
	interval time.Duration

	cmds    chan func(*Session)
	done    chan struct{}
	running atomic.Bool
}

// Option configures a Session.
type Option func(*Session)

// WithDocument starts the session from a previously stored document.
func WithDocument(doc *schedule.Document) Option {
	return func(s *Session) {
		if doc == nil {
			return
		}
		d := doc.Clone()
		schedule.Normalize(d)
		s.doc = d
		s.loaded = true
	}
}

// WithSaver sets where documents are persisted.
func WithSaver(saver Saver) Option {
	return func(s *Session) { s.saver = saver }
}

// WithUpstream sets where documents are pushed.
func WithUpstream(up Upstream) Option {
	return func(s *Session) { s.up = up }
}

// WithHandlers sets the event handlers.
func WithHandlers(h Handlers) Option {
	return func(s *Session) { s.h = h }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithTickInterval sets how often Run evaluates the schedule.
func WithTickInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.interval = d
		}
	}
}

// New creates a session for a screen whose fallback pages are served by
// host (for example "https://screens.example.com").
func New(host string, opts ...Option) *Session {
	s := &Session{
		host:     strings.TrimRight(host, "/"),
		doc:      &schedule.Document{Items: []schedule.Item{}},
		now:      time.Now,
		interval: DefaultTickInterval,
		cmds:     make(chan func(*Session), 64),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.NewNopLogger()
	}
	s.h.setDefault()
	return s
}

// Attach sets the upstream after construction, for upstreams that need the
// session themselves. It must be called before Run.
func (s *Session) Attach(up Upstream) {
	s.up = up
}

// DefaultURL is the fallback page for this screen, shown whenever nothing is
// scheduled and the screen is ready.
func (s *Session) DefaultURL() string {
	return s.host + "/generators/empty-screen?id=" + url.QueryEscape(string(s.doc.ID))
}

// Ready reports whether the screen has an id and is connected.
func (s *Session) Ready() bool {
	return s.doc.ID != "" && s.connected
}

// URL returns the URL being shown, if any. A selected item with an empty
// URL shows nothing.
func (s *Session) URL() (string, bool) {
	return s.showing()
}

func (s *Session) showing() (string, bool) {
	u, ok := s.url.Get()
	return u, ok && u != ""
}

func (s *Session) showingURL() bool {
	_, ok := s.showing()
	return ok
}

// Document returns a copy of the current document.
func (s *Session) Document() *schedule.Document {
	return s.doc.Clone()
}

// State reports the session's display state.
func (s *Session) State() State {
	switch {
	case !s.loaded:
		return StateUninitialized
	case !s.evaluated:
		return StateLoaded
	case s.showingURL():
		return StateSelected
	case s.Ready():
		return StateFallback
	default:
		return StateDisconnected
	}
}

// ApplyUpdate replaces the document with doc.
//
// A document that has never been stamped (neither the current nor the
// incoming one carries idUpdated) is stamped now and pushed back, giving
// the controller a baseline for later reassignments. A new non-empty id
// stamps idUpdated, emits IdentityChanged and, when no item is selected,
// emits Change with the fallback URL for the new id. The document is
// normalized and persisted; the schedule is re-evaluated on the next tick.
func (s *Session) ApplyUpdate(doc *schedule.Document) {
	if doc == nil {
		doc = &schedule.Document{}
	}
	next := doc.Clone()
	prev := s.doc
	stamp := schedule.FromTime(s.now())

	firstSync := prev.IDUpdated.IsZero() && next.IDUpdated.IsZero()
	if firstSync {
		next.IDUpdated = stamp
	}
	idChanged := next.ID != "" && next.ID != prev.ID
	if idChanged {
		next.IDUpdated = stamp
	}

	for i := range next.Items {
		if it := &next.Items[i]; len(it.Invalid) > 0 {
			s.log.Warning("Dropped unreadable %s of item %q", strings.Join(it.Invalid, ", "), it.URL)
			it.Invalid = nil
		}
	}
	schedule.Normalize(next)
	s.doc = next
	s.loaded = true
	s.log.Info("Applied update for screen %q with %d items", next.ID, len(next.Items))

	if idChanged {
		s.log.Info("Screen id changed from %q to %q", prev.ID, next.ID)
		s.h.IdentityChangedHandler(next.ID)
		if !s.showingURL() {
			s.h.ChangeHandler(s.DefaultURL())
		}
	}

	s.persist()
	if firstSync {
		s.push()
	}
	s.checkReady()
}

// Reassign moves the screen to r.NewID if the current id and idUpdated
// match r exactly. The result is pushed upstream. It returns false, leaving
// the document untouched, when the command targets a state the screen has
// already left.
func (s *Session) Reassign(r Reassignment) bool {
	if r.ID != s.doc.ID || r.IDUpdated != s.doc.IDUpdated {
		s.log.Info("Ignoring stale reassignment of %q (stamp %d), screen is %q (stamp %d)",
			r.ID, r.IDUpdated, s.doc.ID, s.doc.IDUpdated)
		return false
	}
	next := s.doc.Clone()
	next.ID = r.NewID
	s.ApplyUpdate(next)
	s.push()
	return true
}

// Tick evaluates the schedule at now. On the first evaluation, and whenever
// the selection changes afterwards, it emits Change with the selected URL,
// or with the fallback URL when nothing (or an item without a URL) is
// selected and the screen is ready, or NotConnected otherwise. Any change,
// including expired items being dropped, is persisted and pushed upstream.
func (s *Session) Tick(now time.Time) {
	res := schedule.Select(s.doc.Items, now)
	s.doc.Items = res.Items
	dirty := res.ExpiredRemoved

	// The first evaluation always announces what to show.
	next := res.URL()
	changed := !next.Equal(s.url)
	if changed || !s.evaluated {
		s.log.Info("Selection changed from %s to %s", s.url, next)
		s.url = next
		s.evaluated = true
		dirty = dirty || changed
		switch u, ok := next.Get(); {
		case ok && u != "":
			s.h.ChangeHandler(u)
		case s.Ready():
			s.h.ChangeHandler(s.DefaultURL())
		default:
			s.h.NotConnectedHandler()
		}
	}

	if dirty {
		s.persist()
		s.push()
	}
}

// SetConnected records the controller connectivity. Reconnecting is treated
// exactly like connecting for the first time.
func (s *Session) SetConnected(connected bool) {
	if connected != s.connected {
		s.log.Info("Controller connection state: connected=%v", connected)
	}
	s.connected = connected
	s.checkReady()
}

// SyncUp pushes the current document upstream unconditionally.
func (s *Session) SyncUp() {
	s.push()
}

// Reload asks the display to reload.
func (s *Session) Reload() {
	s.h.ReloadHandler()
}

func (s *Session) checkReady() {
	ready := s.Ready()
	if ready && !s.wasReady {
		s.h.ReadyHandler(s.DefaultURL())
	}
	s.wasReady = ready
}

func (s *Session) persist() {
	if s.saver != nil {
		s.saver.Save(s.doc)
	}
}

func (s *Session) push() {
	if s.up != nil {
		s.up.PushUpdate(s.doc.Clone())
	}
}
