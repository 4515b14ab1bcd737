package viewer

import "github.com/warpdl/warpscreen/pkg/schedule"

type (
	// ChangeHandlerFunc is called with the URL the display should show.
	ChangeHandlerFunc func(url string)
	// NotConnectedHandlerFunc is called when nothing is scheduled and the
	// screen cannot show its fallback page because it is not ready.
	NotConnectedHandlerFunc func()
	// IdentityChangedHandlerFunc is called with the new id after the
	// controller renamed or reassigned the screen.
	IdentityChangedHandlerFunc func(id schedule.ScreenID)
	// ReloadHandlerFunc is called when the controller asks the display to
	// reload itself.
	ReloadHandlerFunc func()
	// ReadyHandlerFunc is called with the fallback URL each time the screen
	// becomes ready (it has an id and is connected).
	ReadyHandlerFunc func(defaultURL string)
)

// Handlers receives the events emitted by a Session. Handlers run on the
// session goroutine and must not block.
type Handlers struct {
	ChangeHandler          ChangeHandlerFunc
	NotConnectedHandler    NotConnectedHandlerFunc
	IdentityChangedHandler IdentityChangedHandlerFunc
	ReloadHandler          ReloadHandlerFunc
	ReadyHandler           ReadyHandlerFunc
}

func (h *Handlers) setDefault() {
	if h.ChangeHandler == nil {
		h.ChangeHandler = func(string) {}
	}
	if h.NotConnectedHandler == nil {
		h.NotConnectedHandler = func() {}
	}
	if h.IdentityChangedHandler == nil {
		h.IdentityChangedHandler = func(schedule.ScreenID) {}
	}
	if h.ReloadHandler == nil {
		h.ReloadHandler = func() {}
	}
	if h.ReadyHandler == nil {
		h.ReadyHandler = func(string) {}
	}
}

// Chain returns Handlers that invoke every non-nil handler of hs in order.
func Chain(hs ...Handlers) Handlers {
	return Handlers{
		ChangeHandler: func(url string) {
			for _, h := range hs {
				if h.ChangeHandler != nil {
					h.ChangeHandler(url)
				}
			}
		},
		NotConnectedHandler: func() {
			for _, h := range hs {
				if h.NotConnectedHandler != nil {
					h.NotConnectedHandler()
				}
			}
		},
		IdentityChangedHandler: func(id schedule.ScreenID) {
			for _, h := range hs {
				if h.IdentityChangedHandler != nil {
					h.IdentityChangedHandler(id)
				}
			}
		},
		ReloadHandler: func() {
			for _, h := range hs {
				if h.ReloadHandler != nil {
					h.ReloadHandler()
				}
			}
		},
		ReadyHandler: func(defaultURL string) {
			for _, h := range hs {
				if h.ReadyHandler != nil {
					h.ReadyHandler(defaultURL)
				}
			}
		},
	}
}
