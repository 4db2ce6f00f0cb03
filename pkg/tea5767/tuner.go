package tea5767

import (
	"time"

	"github.com/sirupsen/logrus"
)

// TuningState is the controller's view of what the chip is doing.
type TuningState int

const (
	// StateIdle means no tune or restore has happened yet, or the last search
	// failed.
	StateIdle TuningState = iota
	// StateSeeking means a station search is in flight.
	StateSeeking
	// StateTuned means the chip is locked on a frequency.
	StateTuned
)

func (s TuningState) String() string {
	switch s {
	case StateSeeking:
		return "seeking"
	case StateTuned:
		return "tuned"
	}
	return "idle"
}

// Direction of a search or a manual step.
type Direction int

const (
	DirectionDown Direction = iota
	DirectionUp
)

func (d Direction) String() string {
	if d == DirectionUp {
		return "up"
	}
	return "down"
}

// Step granularities in MHz.
const (
	StepCoarse = 1.0
	StepFine   = 0.1
)

// Config carries the tuning parameters the daemon reads from its config
// file.
type Config struct {
	Band      Band
	StopLevel StopLevel

	// Search polling bounds. A search blocks for at most
	// MaxPolls*PollInterval.
	PollInterval time.Duration
	MaxPolls     int

	// WrapOnEdge makes Seek jump to the opposite band edge and reissue the
	// search (once per call) when the chip stops at a band edge without
	// wrapping by itself.
	WrapOnEdge bool

	// Sleep is the inter-poll delay function. Leave nil for time.Sleep;
	// tests inject a no-op.
	Sleep func(time.Duration)
}

// Tuner owns the tuning state and drives the chip through the codec and the
// bus. It is not safe for concurrent use: by contract it has exactly one
// caller, the command dispatcher's run loop.
type Tuner struct {
	bus Bus
	cfg Config

	state   TuningState
	dir     Direction
	freqMHz float64
	muted   bool
	stereo  bool
	signal  byte
}

// New returns a controller in the Idle state. Nothing is written to the chip
// until the first operation.
func New(bus Bus, cfg Config) *Tuner {
	if cfg.StopLevel == 0 {
		cfg.StopLevel = StopLevelMid
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 30 * time.Millisecond
	}
	if cfg.MaxPolls == 0 {
		cfg.MaxPolls = 20
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}

	return &Tuner{bus: bus, cfg: cfg}
}

func (t *Tuner) State() TuningState { return t.state }
func (t *Tuner) Band() Band         { return t.cfg.Band }
func (t *Tuner) Muted() bool        { return t.muted }

// Frequency returns the last tuned frequency in MHz. Only meaningful in the
// Tuned state.
func (t *Tuner) Frequency() float64 { return t.freqMHz }

// Stereo and SignalLevel report the status bits from the last completed
// search.
func (t *Tuner) Stereo() bool      { return t.stereo }
func (t *Tuner) SignalLevel() byte { return t.signal }

func (t *Tuner) frame(freqMHz float64, search bool, dir Direction) Frame {
	return Frame{
		Mute:         t.muted,
		SearchMode:   search,
		FrequencyMHz: freqMHz,
		StopLevel:    t.cfg.StopLevel,
		SearchUp:     dir == DirectionUp,
		Band:         t.cfg.Band,
	}
}

func (t *Tuner) writeFrame(f Frame) error {
	raw, err := f.Encode()
	if err != nil {
		return err
	}
	return t.bus.WriteFrame(raw)
}

// TuneTo tunes directly to freqMHz, clamped to the band. One bus write; on
// failure the controller state is unchanged.
func (t *Tuner) TuneTo(freqMHz float64) error {
	freqMHz = t.cfg.Band.Clamp(freqMHz)

	if err := t.writeFrame(t.frame(freqMHz, false, t.dir)); err != nil {
		return err
	}

	t.state = StateTuned
	t.freqMHz = freqMHz

	logrus.WithFields(logrus.Fields{
		"frequencyMHz": freqMHz,
	}).Debug("Tuned")

	return nil
}

// Step moves the tuned frequency by deltaMHz in the given direction,
// clamping at the band edges. Stepping at an edge is idempotent: the result
// stays on the edge.
func (t *Tuner) Step(dir Direction, deltaMHz float64) (float64, error) {
	cur := t.cfg.Band.Clamp(t.freqMHz)

	if dir == DirectionUp {
		cur += deltaMHz
	} else {
		cur -= deltaMHz
	}
	cur = t.cfg.Band.Clamp(cur)

	if err := t.TuneTo(cur); err != nil {
		return 0, err
	}

	return cur, nil
}

// SetMute toggles the mute bit, retuning the current frequency in the same
// write.
func (t *Tuner) SetMute(on bool) error {
	freq := t.cfg.Band.Clamp(t.freqMHz)

	f := t.frame(freq, false, t.dir)
	f.Mute = on
	if err := t.writeFrame(f); err != nil {
		return err
	}

	t.muted = on
	return nil
}

// Seek starts a hardware search in the given direction and blocks until a
// station is found or the poll budget runs out. On success the controller is
// Tuned on the returned frequency. On ErrSearchTimeout it reverts to Idle
// with the stored frequency unchanged; on a bus fault the previous state is
// restored.
//
// If the search stops on the band edge in the seek direction and WrapOnEdge
// is set, the controller jumps to the opposite edge and reissues the search,
// at most once per call.
func (t *Tuner) Seek(dir Direction) (float64, error) {
	prevState, prevFreq := t.state, t.freqMHz
	low, high := t.cfg.Band.Limits()

	start := t.cfg.Band.Clamp(t.freqMHz)
	wrapped := false

	for {
		found, err := t.seekOnce(start, dir)
		if err == ErrSearchTimeout {
			t.state = StateIdle
			t.freqMHz = prevFreq
			return 0, err
		}
		if err != nil {
			t.state, t.freqMHz = prevState, prevFreq
			return 0, err
		}

		atEdge := (dir == DirectionUp && found >= high-edgeTolerance) ||
			(dir == DirectionDown && found <= low+edgeTolerance)
		if atEdge && t.cfg.WrapOnEdge && !wrapped {
			wrapped = true
			if dir == DirectionUp {
				start = low
			} else {
				start = high
			}
			logrus.WithFields(logrus.Fields{
				"direction": dir.String(),
				"restartAt": start,
			}).Debug("Search hit band edge, wrapping")
			continue
		}

		t.state = StateTuned
		t.freqMHz = found

		logrus.WithFields(logrus.Fields{
			"frequencyMHz": found,
			"direction":    dir.String(),
			"wrapped":      wrapped,
		}).Debug("Search complete")

		return found, nil
	}
}

// edgeTolerance absorbs the PLL word quantization (one LSB is about 8 kHz)
// when deciding whether a search stopped on a band edge.
const edgeTolerance = 0.05

func (t *Tuner) seekOnce(fromMHz float64, dir Direction) (float64, error) {
	// Nudge the start one fine step into the search direction so the search
	// does not stop on the station it started from.
	start := fromMHz
	if dir == DirectionUp {
		start += StepFine
	} else {
		start -= StepFine
	}
	start = t.cfg.Band.Clamp(start)

	if err := t.writeFrame(t.frame(start, true, dir)); err != nil {
		return 0, err
	}
	t.state = StateSeeking
	t.dir = dir

	for i := 0; i < t.cfg.MaxPolls; i++ {
		t.cfg.Sleep(t.cfg.PollInterval)

		raw, err := t.bus.ReadFrame()
		if err != nil {
			return 0, err
		}

		status := DecodeFrame(raw)
		if !status.Ready {
			continue
		}

		t.stereo = status.Stereo
		t.signal = status.SignalLevel
		return t.cfg.Band.Clamp(status.FrequencyMHz), nil
	}

	return 0, ErrSearchTimeout
}
