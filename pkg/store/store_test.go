package store

import (
	"context"
	"testing"

	"github.com/warpdl/warpscreen/pkg/logger"
	"github.com/warpdl/warpscreen/pkg/schedule"
)

func TestStore_LoadMissingYieldsEmptyDocument(t *testing.T) {
	s := New(NewMemory(), "", nil)
	if s.Key() != DefaultKey {
		t.Fatalf("expected default key, got %q", s.Key())
	}
	doc, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Items == nil || len(doc.Items) != 0 || doc.ID != "" {
		t.Fatalf("expected empty normalized document, got %+v", doc)
	}
}

func TestStore_LoadNormalizes(t *testing.T) {
	m := NewMemory()
	_ = m.Set(context.Background(), "screen", []byte(`{"id":7,"items":[{"url":"b","dateTimeSchedule":2},{"url":"a"}]}`))
	doc, err := New(m, "screen", nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.ID != "7" || doc.Items[0].URL != "a" {
		t.Fatalf("expected sorted document for screen 7, got %+v", doc)
	}
}

func TestStore_LoadCorruptIsRecovered(t *testing.T) {
	m := NewMemory()
	_ = m.Set(context.Background(), DefaultKey, []byte(`{not json`))
	ml := logger.NewMockLogger()
	doc, err := New(m, "", ml).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Items) != 0 {
		t.Fatalf("expected empty document, got %+v", doc)
	}
	if len(ml.Warnings()) != 1 {
		t.Fatalf("expected a warning, got %v", ml.Warnings())
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := New(NewMemory(), "", nil)
	in := &schedule.Document{ID: "12345", IDUpdated: 99, Items: []schedule.Item{{URL: "https://ada.is"}}}
	if err := s.Save(context.Background(), in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.ID != "12345" || out.IDUpdated != 99 || len(out.Items) != 1 || out.Items[0].URL != "https://ada.is" {
		t.Fatalf("unexpected document %+v", out)
	}
}
