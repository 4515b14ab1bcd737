package schedule

import (
	"math/rand"
	"testing"
	"time"
)

var evalNow = time.Date(2024, 5, 1, 10, 30, 45, 500*int(time.Millisecond), time.UTC)

func ms(t time.Time) Millis { return FromTime(t) }

func TestTruncateMinute(t *testing.T) {
	got := TruncateMinute(evalNow)
	want := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSelect_Empty(t *testing.T) {
	res := Select(nil, evalNow)
	if res.Selected != nil || res.Index != -1 {
		t.Fatalf("expected no selection, got %+v", res)
	}
	if res.ExpiredRemoved {
		t.Fatal("expected no expired removal")
	}
	if res.URL().IsSet() {
		t.Fatal("expected absent url")
	}
}

func TestSelect_AlwaysActive(t *testing.T) {
	res := Select([]Item{{URL: "https://ada.is"}}, evalNow)
	if res.Selected == nil || res.Selected.URL != "https://ada.is" {
		t.Fatalf("expected https://ada.is to be selected, got %+v", res.Selected)
	}
	if !res.Items[0].Active {
		t.Fatal("expected selected item to be marked active")
	}
}

func TestSelect_ActivationResolution(t *testing.T) {
	minute := TruncateMinute(evalNow)
	tests := []struct {
		name       string
		activateAt time.Time
		selected   bool
	}{
		{"past", minute.Add(-time.Hour), true},
		{"start of current minute", minute, true},
		// authored later in the current minute: still eligible only once the
		// next minute starts
		{"later in current minute", minute.Add(10 * time.Second), false},
		{"next minute", minute.Add(time.Minute), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Select([]Item{{URL: "u", ActivateAt: ms(tt.activateAt)}}, evalNow)
			if (res.Selected != nil) != tt.selected {
				t.Fatalf("expected selected=%v, got %+v", tt.selected, res.Selected)
			}
		})
	}
}

func TestSelect_ExpiryIsMillisecondPrecise(t *testing.T) {
	items := []Item{
		{URL: "expired", ExpiresAt: ms(evalNow.Add(-time.Millisecond))},
		{URL: "boundary", ExpiresAt: ms(evalNow)},
		{URL: "later", ExpiresAt: ms(evalNow.Add(time.Second))},
	}
	res := Select(items, evalNow)
	if !res.ExpiredRemoved {
		t.Fatal("expected expired item to be removed")
	}
	if len(res.Items) != 2 {
		t.Fatalf("expected 2 remaining items, got %d", len(res.Items))
	}
	if res.Selected == nil || res.Selected.URL != "boundary" {
		t.Fatalf("expected boundary item selected, got %+v", res.Selected)
	}
	if len(items) != 3 {
		t.Fatal("input slice must not be modified")
	}
}

func TestSelect_FirstMatchWinsOnTies(t *testing.T) {
	at := ms(TruncateMinute(evalNow).Add(-time.Minute))
	items := []Item{
		{URL: "first", ActivateAt: at},
		{URL: "second", ActivateAt: at},
	}
	for i := 0; i < 10; i++ {
		res := Select(items, evalNow)
		if res.Selected.URL != "first" || res.Index != 0 {
			t.Fatalf("expected first listed item, got %+v", res.Selected)
		}
		if res.Items[1].Active {
			t.Fatal("expected only the selected item to be active")
		}
	}
}

func TestSelect_ClearsStaleActiveFlags(t *testing.T) {
	items := []Item{
		{URL: "future", ActivateAt: ms(evalNow.Add(time.Hour)), Active: true},
	}
	res := Select(items, evalNow)
	if res.Selected != nil {
		t.Fatalf("expected no selection, got %+v", res.Selected)
	}
	if res.Items[0].Active {
		t.Fatal("expected active flag to be cleared")
	}
}

func TestSelect_EmptyURLShadowsLaterItems(t *testing.T) {
	res := Select([]Item{{URL: ""}, {URL: "next"}}, evalNow)
	if res.Index != 0 || res.Selected == nil || res.Selected.URL != "" {
		t.Fatalf("expected the empty item to be selected, got index %d %+v", res.Index, res.Selected)
	}
	if res.Items[1].Active {
		t.Fatal("later item must not be active")
	}
	if u, ok := res.URL().Get(); !ok || u != "" {
		t.Fatalf("URL() = %q, %v; want present empty url", u, ok)
	}
}

func TestSelect_FutureActivationFlipsAtBoundary(t *testing.T) {
	boundary := TruncateMinute(evalNow).Add(2 * time.Minute)
	items := []Item{{URL: "https://ft.com", ActivateAt: ms(boundary)}}

	if res := Select(items, boundary.Add(-time.Millisecond)); res.Selected != nil {
		t.Fatalf("expected no selection before the boundary, got %+v", res.Selected)
	}
	if res := Select(items, boundary); res.Selected == nil {
		t.Fatal("expected selection at the boundary")
	}
	if res := Select(items, boundary.Add(30*time.Second)); res.Selected == nil {
		t.Fatal("expected selection after the boundary")
	}
}

// Randomized check of the two selection properties: nothing expired is ever
// returned, and on a sorted list the result is the first eligible item.
func TestSelect_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	base := TruncateMinute(evalNow)
	for round := 0; round < 500; round++ {
		n := r.Intn(8)
		doc := &Document{}
		for i := 0; i < n; i++ {
			it := Item{URL: string(rune('a' + i))}
			if r.Intn(3) > 0 {
				it.ActivateAt = ms(base.Add(time.Duration(r.Intn(7)-3) * time.Minute))
			}
			if r.Intn(2) == 0 {
				it.ExpiresAt = ms(evalNow.Add(time.Duration(r.Intn(2001)-1000) * time.Millisecond))
			}
			doc.Items = append(doc.Items, it)
		}
		Normalize(doc)

		res := Select(doc.Items, evalNow)
		if res.Selected != nil && !res.Selected.ExpiresAt.IsZero() && res.Selected.ExpiresAt < ms(evalNow) {
			t.Fatalf("round %d: selected an expired item %+v", round, res.Selected)
		}

		var want *Item
		for i := range doc.Items {
			it := doc.Items[i]
			if !it.ExpiresAt.IsZero() && it.ExpiresAt < ms(evalNow) {
				continue
			}
			if it.ActivateAt <= ms(base) {
				want = &it
				break
			}
		}
		switch {
		case want == nil && res.Selected != nil:
			t.Fatalf("round %d: expected no selection, got %+v", round, res.Selected)
		case want != nil && (res.Selected == nil || res.Selected.URL != want.URL):
			t.Fatalf("round %d: expected %q, got %+v", round, want.URL, res.Selected)
		}
	}
}
