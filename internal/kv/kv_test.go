package kv

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	s := NewFileStore(path)

	if _, ok, err := s.Get("unit"); err != nil || ok {
		t.Fatalf("expected absent key on empty store, got ok=%v err=%v", ok, err)
	}

	if err := s.Set("unit", []byte(`"ml"`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := s.Get("unit")
	if err != nil || !ok {
		t.Fatalf("get after set: ok=%v err=%v", ok, err)
	}
	if string(got) != `"ml"` {
		t.Fatalf("unexpected value: %s", got)
	}

	// A fresh store over the same file sees the written value.
	again := NewFileStore(path)
	got, ok, err = again.Get("unit")
	if err != nil || !ok {
		t.Fatalf("get on reopened store: ok=%v err=%v", ok, err)
	}
	if string(got) != `"ml"` {
		t.Fatalf("unexpected reloaded value: %s", got)
	}
}

func TestFileStore_DeleteAbsentDoesNotCreateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	s := NewFileStore(path)

	if err := s.Delete("nothing"); err != nil {
		t.Fatalf("delete absent: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("no-op delete wrote the file, stat err = %v", err)
	}
}

func TestFileStore_DeleteRemovesKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	s := NewFileStore(path)
	if err := s.Set("sip_size", []byte("300")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Delete("sip_size"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	again := NewFileStore(path)
	if _, ok, _ := again.Get("sip_size"); ok {
		t.Fatal("expected key gone after delete")
	}
}

func TestFileStore_CorruptFileDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	s := NewFileStore(path)
	if _, ok, err := s.Get("unit"); err != nil || ok {
		t.Fatalf("expected empty store over corrupt file, got ok=%v err=%v", ok, err)
	}

	// Writes still work and replace the corrupt file.
	if err := s.Set("unit", []byte(`"fl_oz"`)); err != nil {
		t.Fatalf("set over corrupt file: %v", err)
	}
	again := NewFileStore(path)
	got, ok, _ := again.Get("unit")
	if !ok || string(got) != `"fl_oz"` {
		t.Fatalf("unexpected recovered value: ok=%v value=%s", ok, got)
	}
}

func TestMemStore_ValueIsolation(t *testing.T) {
	s := NewMemStore()
	buf := []byte("abc")
	if err := s.Set("k", buf); err != nil {
		t.Fatalf("set: %v", err)
	}
	buf[0] = 'x'

	got, _, _ := s.Get("k")
	if string(got) != "abc" {
		t.Fatalf("stored value aliases caller buffer: %s", got)
	}
	got[0] = 'y'
	got2, _, _ := s.Get("k")
	if string(got2) != "abc" {
		t.Fatalf("returned value aliases stored buffer: %s", got2)
	}
}
