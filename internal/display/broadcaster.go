package display

import (
	"sync"

	"github.com/warpdl/warpscreen/internal/viewer"
	"github.com/warpdl/warpscreen/pkg/schedule"
)

// Event types sent to display pages.
const (
	EventChange          = "change"
	EventNotConnected    = "not-connected"
	EventIdentityChanged = "identity-changed"
	EventReload          = "reload"
)

const subscriberBuffer = 16

// Event is one message on the /events stream.
type Event struct {
	Type string            `json:"type"`
	URL  string            `json:"url,omitempty"`
	ID   schedule.ScreenID `json:"id,omitempty"`
}

// Broadcaster fans session events out to display pages and remembers what
// is currently shown, so late subscribers start from the right page.
type Broadcaster struct {
	mu      sync.Mutex
	subs    map[chan Event]struct{}
	current Event
	shown   bool
}

// NewBroadcaster creates a broadcaster with no subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan Event]struct{})}
}

// Handlers returns session handlers that publish to b.
func (b *Broadcaster) Handlers() viewer.Handlers {
	return viewer.Handlers{
		ChangeHandler: func(url string) {
			b.publish(Event{Type: EventChange, URL: url}, true)
		},
		NotConnectedHandler: func() {
			b.publish(Event{Type: EventNotConnected}, true)
		},
		IdentityChangedHandler: func(id schedule.ScreenID) {
			b.publish(Event{Type: EventIdentityChanged, ID: id}, false)
		},
		ReloadHandler: func() {
			b.publish(Event{Type: EventReload}, false)
		},
		ReadyHandler: func(defaultURL string) {
			b.mu.Lock()
			leave := !b.shown || b.current.Type == EventNotConnected
			b.mu.Unlock()
			if leave {
				b.publish(Event{Type: EventChange, URL: defaultURL}, true)
			}
		},
	}
}

// Current returns the event describing what pages should show.
func (b *Broadcaster) Current() (Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current, b.shown
}

// Subscribe registers a new listener. The returned function unsubscribes
// and closes the channel.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of registered listeners.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// publish delivers ev to every subscriber. Slow subscribers miss events
// rather than stall the session.
func (b *Broadcaster) publish(ev Event, remember bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if remember {
		b.current = ev
		b.shown = true
	}
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
