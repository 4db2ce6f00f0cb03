package daemon

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/fm-tuner/tunerd/pkg/config"
	"github.com/fm-tuner/tunerd/pkg/events"
	"github.com/fm-tuner/tunerd/pkg/store"
	"github.com/fm-tuner/tunerd/pkg/tea5767"
)

func newTestRig(t *testing.T, bus *tea5767.MockBus, policy string, storePath string) *Dispatcher {
	t.Helper()

	st, err := store.NewFile(storePath)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}

	tn := tea5767.New(bus, tea5767.Config{
		Band:       tea5767.BandUSEurope,
		WrapOnEdge: true,
		MaxPolls:   10,
		Sleep:      func(time.Duration) {},
	})

	d := NewDispatcher(tn, store.NewPresets(st), events.NewHub(), policy)
	t.Cleanup(d.Stop)
	return d
}

func TestRestoreEmptyStoreUsesDefault(t *testing.T) {
	bus := tea5767.NewMockBus(0)
	d := newTestRig(t, bus, config.EventPolicyDrop, filepath.Join(t.TempDir(), "p.json"))

	if err := d.Restore(87.5); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	st := d.Snapshot()
	if st.State != "tuned" || st.FrequencyMHz != 87.5 {
		t.Fatalf("expected tuned at 87.5, got %s %.1f", st.State, st.FrequencyMHz)
	}
}

func TestStepSaveRestartScenario(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "p.json")

	bus := tea5767.NewMockBus(0)
	d := newTestRig(t, bus, config.EventPolicyQueue, storePath)
	if err := d.Restore(87.5); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	go d.Run()

	for i := 0; i < 3; i++ {
		if _, err := d.Submit(CommandEvent{Kind: StepUpCoarse}); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	res, err := d.Submit(CommandEvent{Kind: SavePreset})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if math.Abs(res.FrequencyMHz-90.5) > 1e-9 {
		t.Fatalf("saved %.2f, want 90.5", res.FrequencyMHz)
	}
	d.Stop()

	// Simulated restart: a fresh dispatcher on the same store must come back
	// on 90.5 without user input.
	bus2 := tea5767.NewMockBus(0)
	d2 := newTestRig(t, bus2, config.EventPolicyQueue, storePath)
	if err := d2.Restore(87.5); err != nil {
		t.Fatalf("Restore after restart: %v", err)
	}
	if got := d2.Snapshot().FrequencyMHz; math.Abs(got-90.5) > 1e-9 {
		t.Fatalf("restored %.2f, want 90.5", got)
	}
}

func TestSaveBeforeTuneFails(t *testing.T) {
	bus := tea5767.NewMockBus(0)
	d := newTestRig(t, bus, config.EventPolicyQueue, filepath.Join(t.TempDir(), "p.json"))
	go d.Run()

	if _, err := d.Submit(CommandEvent{Kind: SavePreset}); !errors.Is(err, ErrNothingTuned) {
		t.Fatalf("expected ErrNothingTuned, got %v", err)
	}
}

func TestTuneStationRemembersID(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "p.json")
	bus := tea5767.NewMockBus(0)
	d := newTestRig(t, bus, config.EventPolicyQueue, storePath)
	if err := d.Restore(87.5); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	go d.Run()

	res, err := d.Submit(CommandEvent{Kind: TuneStation, StationID: "france_info"})
	if err != nil {
		t.Fatalf("tune station: %v", err)
	}
	if res.StationID != "france_info" || math.Abs(res.FrequencyMHz-105.5) > 1e-9 {
		t.Fatalf("got %+v", res)
	}

	if _, err := d.Submit(CommandEvent{Kind: SavePreset}); err != nil {
		t.Fatalf("save: %v", err)
	}
	d.Stop()

	bus2 := tea5767.NewMockBus(0)
	d2 := newTestRig(t, bus2, config.EventPolicyQueue, storePath)
	if err := d2.Restore(87.5); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	st := d2.Snapshot()
	if st.StationID != "france_info" {
		t.Fatalf("restored station id %q, want france_info", st.StationID)
	}
}

func TestTuneUnknownStation(t *testing.T) {
	bus := tea5767.NewMockBus(0)
	d := newTestRig(t, bus, config.EventPolicyQueue, filepath.Join(t.TempDir(), "p.json"))
	go d.Run()

	if _, err := d.Submit(CommandEvent{Kind: TuneStation, StationID: "nope"}); err == nil {
		t.Fatalf("expected error for unknown station")
	}
}

func TestDropPolicyRejectsWhileSeeking(t *testing.T) {
	bus := tea5767.NewMockBus(0, 100.3)
	bus.ReadGate = make(chan struct{})
	d := newTestRig(t, bus, config.EventPolicyDrop, filepath.Join(t.TempDir(), "p.json"))
	if err := d.Restore(90.0); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	go d.Run()

	seekDone := make(chan error, 1)
	go func() {
		_, err := d.Submit(CommandEvent{Kind: SeekUp})
		seekDone <- err
	}()

	// Wait until the seek is actually holding the run loop (blocked on the
	// gated status read).
	deadline := time.After(2 * time.Second)
	for d.Snapshot().State != "seeking" {
		select {
		case <-deadline:
			t.Fatalf("seek never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if _, err := d.Submit(CommandEvent{Kind: StepUpFine}); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy while seeking, got %v", err)
	}

	// Release the search and let it finish.
	close(bus.ReadGate)
	if err := <-seekDone; err != nil {
		t.Fatalf("seek: %v", err)
	}
	if got := d.Snapshot().FrequencyMHz; math.Abs(got-100.3) > 0.05 {
		t.Fatalf("seek landed on %.2f, want 100.3", got)
	}
}

func TestSeekTimeoutSurfacesAndRestoresIdle(t *testing.T) {
	bus := tea5767.NewMockBus(0, 100.3)
	bus.ReadyAfter = 100
	d := newTestRig(t, bus, config.EventPolicyQueue, filepath.Join(t.TempDir(), "p.json"))
	if err := d.Restore(90.0); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	go d.Run()

	if _, err := d.Submit(CommandEvent{Kind: SeekUp}); !errors.Is(err, tea5767.ErrSearchTimeout) {
		t.Fatalf("expected ErrSearchTimeout, got %v", err)
	}

	st := d.Snapshot()
	if st.State != "idle" {
		t.Fatalf("expected idle after timeout, got %s", st.State)
	}
	if st.FrequencyMHz != 90.0 {
		t.Fatalf("frequency changed on timeout: %.1f", st.FrequencyMHz)
	}
}

func TestMuteCommands(t *testing.T) {
	bus := tea5767.NewMockBus(0)
	d := newTestRig(t, bus, config.EventPolicyQueue, filepath.Join(t.TempDir(), "p.json"))
	if err := d.Restore(96.4); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	go d.Run()

	if _, err := d.Submit(CommandEvent{Kind: MuteOn}); err != nil {
		t.Fatalf("mute on: %v", err)
	}
	if !d.Snapshot().Muted {
		t.Fatalf("expected muted")
	}
	if _, err := d.Submit(CommandEvent{Kind: MuteOff}); err != nil {
		t.Fatalf("mute off: %v", err)
	}
	if d.Snapshot().Muted {
		t.Fatalf("expected unmuted")
	}
}
