package tea5767

import (
	"errors"
	"math"
	"testing"
	"time"
)

func noSleep(time.Duration) {}

func newTestTuner(bus Bus, cfg Config) *Tuner {
	cfg.Sleep = noSleep
	return New(bus, cfg)
}

func TestTuneToClampsToBand(t *testing.T) {
	bus := NewMockBus(0)
	tn := newTestTuner(bus, Config{Band: BandUSEurope})

	if err := tn.TuneTo(120.0); err != nil {
		t.Fatalf("TuneTo: %v", err)
	}
	if tn.Frequency() != 108.0 {
		t.Fatalf("expected clamp to 108.0, got %.1f", tn.Frequency())
	}

	if err := tn.TuneTo(10.0); err != nil {
		t.Fatalf("TuneTo: %v", err)
	}
	if tn.Frequency() != 87.5 {
		t.Fatalf("expected clamp to 87.5, got %.1f", tn.Frequency())
	}
	if tn.State() != StateTuned {
		t.Fatalf("expected tuned state, got %s", tn.State())
	}
}

func TestTuneToBusErrorKeepsState(t *testing.T) {
	bus := NewMockBus(0)
	tn := newTestTuner(bus, Config{Band: BandUSEurope})

	if err := tn.TuneTo(96.4); err != nil {
		t.Fatalf("TuneTo: %v", err)
	}

	bus.WriteErr = errors.New("nack")
	if err := tn.TuneTo(100.0); err == nil {
		t.Fatalf("expected bus error")
	}

	if tn.State() != StateTuned || tn.Frequency() != 96.4 {
		t.Fatalf("state changed on bus error: %s %.1f", tn.State(), tn.Frequency())
	}
}

func TestStepClampsAndIsIdempotentAtEdge(t *testing.T) {
	bus := NewMockBus(0)
	tn := newTestTuner(bus, Config{Band: BandUSEurope})

	if err := tn.TuneTo(107.5); err != nil {
		t.Fatalf("TuneTo: %v", err)
	}

	f, err := tn.Step(DirectionUp, StepCoarse)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if f != 108.0 {
		t.Fatalf("expected clamp to 108.0, got %.1f", f)
	}

	// Further steps at the edge must not move.
	for i := 0; i < 3; i++ {
		f, err = tn.Step(DirectionUp, StepCoarse)
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
		if f != 108.0 {
			t.Fatalf("edge stepping moved to %.1f", f)
		}
	}

	f, err = tn.Step(DirectionDown, StepFine)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if math.Abs(f-107.9) > 1e-9 {
		t.Fatalf("expected 107.9, got %.2f", f)
	}
}

func TestStepScenario(t *testing.T) {
	// Three coarse steps up from the band default.
	bus := NewMockBus(0)
	tn := newTestTuner(bus, Config{Band: BandUSEurope})

	if err := tn.TuneTo(87.5); err != nil {
		t.Fatalf("TuneTo: %v", err)
	}
	var (
		f   float64
		err error
	)
	for i := 0; i < 3; i++ {
		f, err = tn.Step(DirectionUp, StepCoarse)
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if math.Abs(f-90.5) > 1e-9 {
		t.Fatalf("expected 90.5 after three coarse steps, got %.1f", f)
	}
}

func TestSeekFindsNextStation(t *testing.T) {
	bus := NewMockBus(0, 90.4, 96.4, 104.7)
	tn := newTestTuner(bus, Config{Band: BandUSEurope})

	if err := tn.TuneTo(96.4); err != nil {
		t.Fatalf("TuneTo: %v", err)
	}

	f, err := tn.Seek(DirectionUp)
	if err != nil {
		t.Fatalf("Seek up: %v", err)
	}
	if math.Abs(f-104.7) > 0.05 {
		t.Fatalf("seek up landed on %.2f, want 104.7", f)
	}
	if tn.State() != StateTuned {
		t.Fatalf("expected tuned after seek, got %s", tn.State())
	}

	f, err = tn.Seek(DirectionDown)
	if err != nil {
		t.Fatalf("Seek down: %v", err)
	}
	if math.Abs(f-96.4) > 0.05 {
		t.Fatalf("seek down landed on %.2f, want 96.4", f)
	}
}

func TestSeekPollsUntilReady(t *testing.T) {
	bus := NewMockBus(0, 100.3)
	bus.ReadyAfter = 5
	tn := newTestTuner(bus, Config{Band: BandUSEurope, MaxPolls: 10})

	if err := tn.TuneTo(90.0); err != nil {
		t.Fatalf("TuneTo: %v", err)
	}

	f, err := tn.Seek(DirectionUp)
	if err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if math.Abs(f-100.3) > 0.05 {
		t.Fatalf("landed on %.2f, want 100.3", f)
	}
}

func TestSeekTimeout(t *testing.T) {
	bus := NewMockBus(0, 100.3)
	bus.ReadyAfter = 100 // never ready within budget
	tn := newTestTuner(bus, Config{Band: BandUSEurope, MaxPolls: 3})

	if err := tn.TuneTo(90.0); err != nil {
		t.Fatalf("TuneTo: %v", err)
	}

	_, err := tn.Seek(DirectionUp)
	if !errors.Is(err, ErrSearchTimeout) {
		t.Fatalf("expected ErrSearchTimeout, got %v", err)
	}
	if tn.State() != StateIdle {
		t.Fatalf("expected idle after timeout, got %s", tn.State())
	}
	if tn.Frequency() != 90.0 {
		t.Fatalf("stored frequency changed on timeout: %.1f", tn.Frequency())
	}
}

func TestSeekSyntheticWrapAtUpperEdge(t *testing.T) {
	// Device that never wraps by itself; two stations low in the band.
	bus := NewMockBus(0, 90.4, 96.4)
	tn := newTestTuner(bus, Config{Band: BandUSEurope, WrapOnEdge: true})

	if err := tn.TuneTo(107.9); err != nil {
		t.Fatalf("TuneTo: %v", err)
	}

	f, err := tn.Seek(DirectionUp)
	if err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if math.Abs(f-90.4) > 0.05 {
		t.Fatalf("expected first station after wrap (90.4), got %.2f", f)
	}
}

func TestSeekWrapsAtMostOnce(t *testing.T) {
	// No stations at all: the wrapped search stops on the edge again and the
	// controller must accept that instead of looping.
	bus := NewMockBus(0)
	tn := newTestTuner(bus, Config{Band: BandUSEurope, WrapOnEdge: true})

	if err := tn.TuneTo(107.9); err != nil {
		t.Fatalf("TuneTo: %v", err)
	}

	f, err := tn.Seek(DirectionUp)
	if err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if math.Abs(f-108.0) > 0.05 {
		t.Fatalf("expected to end on the upper edge after one wrap, got %.2f", f)
	}
}

func TestSeekNoWrapWhenDisabled(t *testing.T) {
	bus := NewMockBus(0, 90.4)
	tn := newTestTuner(bus, Config{Band: BandUSEurope, WrapOnEdge: false})

	if err := tn.TuneTo(107.9); err != nil {
		t.Fatalf("TuneTo: %v", err)
	}

	f, err := tn.Seek(DirectionUp)
	if err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if math.Abs(f-108.0) > 0.05 {
		t.Fatalf("expected search to stop on the edge, got %.2f", f)
	}
}

func TestSetMutePreservesFrequency(t *testing.T) {
	bus := NewMockBus(0)
	tn := newTestTuner(bus, Config{Band: BandUSEurope})

	if err := tn.TuneTo(103.5); err != nil {
		t.Fatalf("TuneTo: %v", err)
	}

	if err := tn.SetMute(true); err != nil {
		t.Fatalf("SetMute: %v", err)
	}
	if !tn.Muted() {
		t.Fatalf("expected muted")
	}
	if tn.Frequency() != 103.5 {
		t.Fatalf("mute changed frequency to %.1f", tn.Frequency())
	}

	if err := tn.SetMute(false); err != nil {
		t.Fatalf("SetMute: %v", err)
	}
	if tn.Muted() {
		t.Fatalf("expected unmuted")
	}
}
