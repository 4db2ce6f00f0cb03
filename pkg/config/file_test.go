package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fm-tuner/tunerd/pkg/utils/ptr"
)

func TestDefaultsWhenFileMissing(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}

	if f.Band() != "us-europe" {
		t.Errorf("band default = %q", f.Band())
	}
	if f.DefaultFrequencyMHz() != 87.5 {
		t.Errorf("default frequency = %.1f", f.DefaultFrequencyMHz())
	}
	if !f.WrapOnBandEdge() {
		t.Errorf("wrap on band edge should default on")
	}
	if f.EventPolicy() != EventPolicyDrop {
		t.Errorf("event policy default = %q", f.EventPolicy())
	}
	if err := f.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	f := NewFileFromConfig(&RawFileConfig{
		Band:                ptr.To("japan"),
		DefaultFrequencyMHz: ptr.To(80.0),
		SeekMaxPolls:        ptr.To(50),
	}, path)
	if err := f.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	g, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if g.Band() != "japan" {
		t.Errorf("band = %q, want japan", g.Band())
	}
	if g.DefaultFrequencyMHz() != 80.0 {
		t.Errorf("default frequency = %.1f, want 80.0", g.DefaultFrequencyMHz())
	}
	if g.SeekMaxPolls() != 50 {
		t.Errorf("seek max polls = %d, want 50", g.SeekMaxPolls())
	}
	// Unset fields fall back to defaults.
	if g.SeekPollIntervalMS() != 30 {
		t.Errorf("poll interval = %d, want default 30", g.SeekPollIntervalMS())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []*RawFileConfig{
		{Band: ptr.To("mars")},
		{DefaultFrequencyMHz: ptr.To(150.0)},
		{Band: ptr.To("japan"), DefaultFrequencyMHz: ptr.To(105.5)}, // outside the Japan band
		{SeekStopLevel: ptr.To(7)},
		{SeekMaxPolls: ptr.To(0)},
		{EventPolicy: ptr.To("stack")},
		{DeviceAddr: ptr.To(0x100)},
	}

	for i, raw := range cases {
		f := NewFileFromConfig(raw, "")
		if err := f.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("  \n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if f.DefaultFrequencyMHz() != 87.5 {
		t.Errorf("empty file should yield defaults")
	}
}

func TestSettersPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}

	f.SetDefaultFrequencyMHz(101.1)
	f.SetWrapOnBandEdge(false)
	if err := f.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	g, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if g.DefaultFrequencyMHz() != 101.1 {
		t.Errorf("default frequency = %.1f, want 101.1", g.DefaultFrequencyMHz())
	}
	if g.WrapOnBandEdge() {
		t.Errorf("wrap should persist as disabled")
	}
}

func TestReloadRollbackKeepsGoodValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	f := NewFileFromConfig(&RawFileConfig{
		Band:                ptr.To("japan"),
		DefaultFrequencyMHz: ptr.To(80.0),
	}, path)
	if err := f.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	prev, err := NewRawFileConfigFromConfig(f)
	if err != nil {
		t.Fatalf("NewRawFileConfigFromConfig: %v", err)
	}

	// The file on disk turns invalid, a reload swaps the bad values in.
	if err := os.WriteFile(path, []byte(`{"band":"mars"}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := f.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := f.Validate(); err == nil {
		t.Fatalf("expected validation to fail after reload")
	}

	f.Replace(prev)
	if err := f.Validate(); err != nil {
		t.Fatalf("rolled-back config must validate: %v", err)
	}
	if f.Band() != "japan" || f.DefaultFrequencyMHz() != 80.0 {
		t.Errorf("rollback lost values: band=%q freq=%.1f", f.Band(), f.DefaultFrequencyMHz())
	}
}
