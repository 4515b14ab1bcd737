package schedule

import "testing"

func TestOptionalURL_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b OptionalURL
		want bool
	}{
		{"absent/absent", NoURL, NoURL, true},
		{"absent/present", NoURL, SomeURL("https://ada.is"), false},
		{"present/absent", SomeURL("https://ada.is"), NoURL, false},
		{"absent/empty", NoURL, SomeURL(""), false},
		{"same", SomeURL("https://ada.is"), SomeURL("https://ada.is"), true},
		{"different", SomeURL("https://ada.is"), SomeURL("https://ft.com"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Fatalf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestOptionalURL_Get(t *testing.T) {
	if _, ok := NoURL.Get(); ok {
		t.Fatal("expected NoURL to be absent")
	}
	u, ok := SomeURL("x").Get()
	if !ok || u != "x" {
		t.Fatalf("expected x, got %q (%v)", u, ok)
	}
}
