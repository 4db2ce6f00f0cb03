package store

import (
	"os"
	"path/filepath"
	"testing"
)

func tempStore(t *testing.T) (*File, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presets.json")
	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	return f, path
}

func TestFileRoundTrip(t *testing.T) {
	f, path := tempStore(t)

	if err := f.Put("k", []byte{1, 2, 3}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// A fresh handle must see the persisted value.
	f2, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	v, ok, err := f2.Get("k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || len(v) != 3 || v[0] != 1 {
		t.Fatalf("round trip lost value: ok=%t v=%v", ok, v)
	}
}

func TestFileAbsentKey(t *testing.T) {
	f, _ := tempStore(t)

	_, ok, err := f.Get("missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatalf("expected absent key")
	}
}

func TestFileDelete(t *testing.T) {
	f, _ := tempStore(t)

	if err := f.Put("k", []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := f.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := f.Get("k"); ok {
		t.Fatalf("key survived delete")
	}
	// Deleting again is a no-op.
	if err := f.Delete("k"); err != nil {
		t.Fatalf("Delete absent: %v", err)
	}
}

func TestFileCorruptStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile on corrupt store: %v", err)
	}
	if _, ok, _ := f.Get("anything"); ok {
		t.Fatalf("corrupt store produced a value")
	}
}

func TestPresetsRoundTrip(t *testing.T) {
	f, _ := tempStore(t)
	p := NewPresets(f)

	if err := p.SaveFrequency(90.5); err != nil {
		t.Fatalf("SaveFrequency: %v", err)
	}

	got, ok := p.LoadFrequency()
	if !ok {
		t.Fatalf("frequency absent after save")
	}
	if got != 90.5 {
		t.Fatalf("loaded %.2f, want 90.5", got)
	}
}

func TestPresetsAbsent(t *testing.T) {
	f, _ := tempStore(t)
	p := NewPresets(f)

	if _, ok := p.LoadFrequency(); ok {
		t.Fatalf("expected absent frequency on empty store")
	}
}

func TestPresetsCorruptValueTreatedAsAbsent(t *testing.T) {
	f, _ := tempStore(t)
	if err := f.Put("lastStation", []byte{1, 2}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	p := NewPresets(f)
	if _, ok := p.LoadFrequency(); ok {
		t.Fatalf("truncated value must read as absent")
	}
}

func TestPresetsStationID(t *testing.T) {
	f, _ := tempStore(t)
	p := NewPresets(f)

	if got := p.LoadStationID(); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}

	if err := p.SaveStationID("france_info"); err != nil {
		t.Fatalf("SaveStationID: %v", err)
	}
	if got := p.LoadStationID(); got != "france_info" {
		t.Fatalf("got %q, want france_info", got)
	}

	if err := p.SaveStationID(""); err != nil {
		t.Fatalf("clear station id: %v", err)
	}
	if got := p.LoadStationID(); got != "" {
		t.Fatalf("id survived clear: %q", got)
	}
}
