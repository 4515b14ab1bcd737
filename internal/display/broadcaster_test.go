package display

import (
	"testing"
)

func TestBroadcaster_RemembersShownEvent(t *testing.T) {
	b := NewBroadcaster()
	if _, ok := b.Current(); ok {
		t.Fatal("expected nothing shown initially")
	}
	h := b.Handlers()

	h.ChangeHandler("https://ada.is")
	h.IdentityChangedHandler("7")
	h.ReloadHandler()

	ev, ok := b.Current()
	if !ok || ev.Type != EventChange || ev.URL != "https://ada.is" {
		t.Fatalf("unexpected current event %+v", ev)
	}
}

func TestBroadcaster_ReadyLeavesNotConnected(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h func(string), nc func())
		want  Event
	}{
		{
			name:  "nothing shown",
			setup: func(func(string), func()) {},
			want:  Event{Type: EventChange, URL: "http://h/default"},
		},
		{
			name:  "not connected",
			setup: func(_ func(string), nc func()) { nc() },
			want:  Event{Type: EventChange, URL: "http://h/default"},
		},
		{
			name:  "already showing",
			setup: func(ch func(string), _ func()) { ch("https://ada.is") },
			want:  Event{Type: EventChange, URL: "https://ada.is"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBroadcaster()
			h := b.Handlers()
			tt.setup(h.ChangeHandler, h.NotConnectedHandler)
			h.ReadyHandler("http://h/default")
			if ev, _ := b.Current(); ev != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, ev)
			}
		})
	}
}

func TestBroadcaster_Subscribe(t *testing.T) {
	b := NewBroadcaster()
	ch, unsubscribe := b.Subscribe()
	if b.Subscribers() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", b.Subscribers())
	}

	b.Handlers().ReloadHandler()
	if ev := <-ch; ev.Type != EventReload {
		t.Fatalf("expected reload, got %+v", ev)
	}

	unsubscribe()
	unsubscribe()
	if b.Subscribers() != 0 {
		t.Fatalf("expected 0 subscribers, got %d", b.Subscribers())
	}
	if _, ok := <-ch; ok {
		t.Fatal("expected the channel to be closed")
	}
}

func TestBroadcaster_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroadcaster()
	_, unsubscribe := b.Subscribe()
	defer unsubscribe()
	h := b.Handlers()
	for i := 0; i < subscriberBuffer*4; i++ {
		h.NotConnectedHandler()
	}
}
