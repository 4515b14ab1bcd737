package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	dir := t.TempDir()
	dv, err := NewDiskv(filepath.Join(dir, "diskv"))
	if err != nil {
		t.Fatalf("NewDiskv: %v", err)
	}
	sq, err := NewSQLite(filepath.Join(dir, "db", "screen.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	fb, err := NewFile(afero.NewMemMapFs(), "/var/lib/warpscreen")
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	m := map[string]Backend{
		"diskv":  dv,
		"sqlite": sq,
		"file":   fb,
		"memory": NewMemory(),
	}
	t.Cleanup(func() {
		for _, b := range m {
			b.Close()
		}
	})
	return m
}

func TestBackends_GetSet(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := b.Get(ctx, DefaultKey); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound for a missing key, got %v", err)
			}
			if err := b.Set(ctx, DefaultKey, []byte(`{"items":[]}`)); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := b.Set(ctx, DefaultKey, []byte(`{"id":1,"items":[]}`)); err != nil {
				t.Fatalf("Set overwrite: %v", err)
			}
			got, err := b.Get(ctx, DefaultKey)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != `{"id":1,"items":[]}` {
				t.Fatalf("expected overwritten value, got %s", got)
			}
			if _, err := b.Get(ctx, "other"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected keys to be independent, got %v", err)
			}
		})
	}
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), "screen.db")
	db, err := NewSQLite(p)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	if err := db.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	db.Close()

	db, err = NewSQLite(p)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	got, err := db.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("expected v after reopen, got %q (%v)", got, err)
	}
}

func TestFile_RejectsPathKeys(t *testing.T) {
	fb, err := NewFile(afero.NewMemMapFs(), "/data")
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	for _, key := range []string{"", "../escape", "a/b", ".."} {
		if err := fb.Set(context.Background(), key, []byte("x")); err == nil {
			t.Fatalf("expected key %q to be rejected", key)
		}
	}
}

func TestFile_LeavesNoTempFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	fb, err := NewFile(fsys, "/data")
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if err := fb.Set(context.Background(), "doc", []byte("{}")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ok, _ := afero.Exists(fsys, "/data/doc.json.tmp"); ok {
		t.Fatal("temporary file left behind")
	}
	if ok, _ := afero.Exists(fsys, "/data/doc.json"); !ok {
		t.Fatal("expected /data/doc.json to exist")
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	for _, driver := range []string{DriverDiskv, DriverSQLite, DriverFile, DriverMemory} {
		loc := filepath.Join(dir, driver)
		if driver == DriverSQLite {
			loc = filepath.Join(dir, "screen.db")
		}
		b, err := Open(driver, loc)
		if err != nil {
			t.Fatalf("Open(%s): %v", driver, err)
		}
		b.Close()
	}
	if _, err := Open("redis", "x"); !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("expected ErrUnknownDriver, got %v", err)
	}
}
