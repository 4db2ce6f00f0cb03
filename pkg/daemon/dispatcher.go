package daemon

import (
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fm-tuner/tunerd/pkg/config"
	"github.com/fm-tuner/tunerd/pkg/events"
	"github.com/fm-tuner/tunerd/pkg/stations"
	"github.com/fm-tuner/tunerd/pkg/store"
	"github.com/fm-tuner/tunerd/pkg/tea5767"
)

// EventKind enumerates the discrete user commands. The mapping from physical
// inputs (HTTP routes, key codes) to these kinds happens outside the
// dispatcher.
type EventKind int

const (
	SeekUp EventKind = iota
	SeekDown
	SavePreset
	StepUpCoarse
	StepUpFine
	StepDownCoarse
	StepDownFine
	TuneFrequency
	TuneStation
	MuteOn
	MuteOff
)

func (k EventKind) String() string {
	switch k {
	case SeekUp:
		return "seek-up"
	case SeekDown:
		return "seek-down"
	case SavePreset:
		return "save-preset"
	case StepUpCoarse:
		return "step-up-coarse"
	case StepUpFine:
		return "step-up-fine"
	case StepDownCoarse:
		return "step-down-coarse"
	case StepDownFine:
		return "step-down-fine"
	case TuneFrequency:
		return "tune-frequency"
	case TuneStation:
		return "tune-station"
	case MuteOn:
		return "mute-on"
	case MuteOff:
		return "mute-off"
	}
	return "unknown"
}

// CommandEvent is one consumed-immediately command. StationID and
// FrequencyMHz carry the argument for the tune kinds and are ignored
// otherwise.
type CommandEvent struct {
	Kind         EventKind
	StationID    string
	FrequencyMHz float64
}

// Result is what an executed command reports back to its submitter.
type Result struct {
	FrequencyMHz float64 `json:"frequencyMHz"`
	StationID    string  `json:"stationId,omitempty"`
}

// Status is a read-only snapshot of the controller, maintained by the run
// loop so HTTP handlers never touch the tuner directly.
type Status struct {
	State        string  `json:"state"`
	FrequencyMHz float64 `json:"frequencyMHz"`
	StationID    string  `json:"stationId,omitempty"`
	Muted        bool    `json:"muted"`
	Stereo       bool    `json:"stereo"`
	SignalLevel  byte    `json:"signalLevel"`
	Band         string  `json:"band"`
}

type submission struct {
	ev  CommandEvent
	res chan submissionResult
}

type submissionResult struct {
	res Result
	err error
}

// Dispatcher owns the tuner. Its run loop is the single goroutine that ever
// invokes controller operations; everything else marshals CommandEvents into
// the serial queue. Events arriving while a command (typically a search) is
// in flight are dropped or queued per the configured policy.
type Dispatcher struct {
	tuner   *tea5767.Tuner
	presets *store.Presets
	hub     *events.Hub
	policy  string

	queue  chan submission
	stopCh chan struct{}

	statusMu sync.RWMutex
	status   Status
}

// NewDispatcher wires the controller, the persistence adapter and the event
// hub. policy is config.EventPolicyDrop or config.EventPolicyQueue.
func NewDispatcher(t *tea5767.Tuner, p *store.Presets, hub *events.Hub, policy string) *Dispatcher {
	// Under the drop policy the queue is unbuffered: a submit succeeds only
	// when the run loop is actually ready, so anything arriving mid-search
	// is rejected instead of piling up.
	size := 0
	if policy == config.EventPolicyQueue {
		size = 16
	}

	d := &Dispatcher{
		tuner:   t,
		presets: p,
		hub:     hub,
		policy:  policy,
		queue:   make(chan submission, size),
		stopCh:  make(chan struct{}),
	}
	d.refreshStatus("")
	return d
}

// Restore runs the startup sequence: tune to the persisted frequency, or to
// defaultMHz when the store has nothing usable. Must be called before Run.
func (d *Dispatcher) Restore(defaultMHz float64) error {
	freq, ok := d.presets.LoadFrequency()
	id := ""
	if ok {
		id = d.presets.LoadStationID()
		logrus.WithFields(logrus.Fields{
			"frequencyMHz": freq,
			"stationId":    id,
		}).Info("Restoring last station")
	} else {
		freq = defaultMHz
		logrus.WithFields(logrus.Fields{
			"frequencyMHz": freq,
		}).Info("No saved station, tuning to default")
	}

	if err := d.tuner.TuneTo(freq); err != nil {
		return err
	}
	d.refreshStatus(id)
	return nil
}

// Run consumes the queue until Stop. It is the sole owner of the tuner.
func (d *Dispatcher) Run() {
	for {
		select {
		case <-d.stopCh:
			return
		case sub := <-d.queue:
			res, err := d.execute(sub.ev)
			sub.res <- submissionResult{res: res, err: err}
			close(sub.res)
		}
	}
}

func (d *Dispatcher) Stop() {
	select {
	case <-d.stopCh: // already closed
	default:
		close(d.stopCh)
	}
}

// Submit hands a command to the run loop and returns immediately with a
// channel carrying the eventual outcome. Under the drop policy, ErrBusy is
// returned when the loop cannot take the event right now (e.g. a search is
// in flight); under the queue policy the event waits its turn.
func (d *Dispatcher) Submit(ev CommandEvent) (*Result, error) {
	sub := submission{ev: ev, res: make(chan submissionResult, 1)}

	if d.policy == config.EventPolicyDrop {
		select {
		case d.queue <- sub:
		default:
			logrus.WithFields(logrus.Fields{
				"event": ev.Kind.String(),
			}).Debug("Dropping command, tuner busy")
			return nil, ErrBusy
		}
	} else {
		select {
		case d.queue <- sub:
		case <-d.stopCh:
			return nil, ErrStopped
		}
	}

	select {
	case out := <-sub.res:
		if out.err != nil {
			return nil, out.err
		}
		return &out.res, nil
	case <-d.stopCh:
		return nil, ErrStopped
	}
}

// Snapshot returns the current controller status.
func (d *Dispatcher) Snapshot() Status {
	d.statusMu.RLock()
	defer d.statusMu.RUnlock()
	return d.status
}

func (d *Dispatcher) refreshStatus(stationID string) {
	d.statusMu.Lock()
	defer d.statusMu.Unlock()

	d.status = Status{
		State:        d.tuner.State().String(),
		FrequencyMHz: d.tuner.Frequency(),
		StationID:    stationID,
		Muted:        d.tuner.Muted(),
		Stereo:       d.tuner.Stereo(),
		SignalLevel:  d.tuner.SignalLevel(),
		Band:         d.tuner.Band().String(),
	}
}

func (d *Dispatcher) markSeeking() {
	d.statusMu.Lock()
	defer d.statusMu.Unlock()
	d.status.State = tea5767.StateSeeking.String()
	d.status.StationID = ""
}

func (d *Dispatcher) execute(ev CommandEvent) (Result, error) {
	logrus.WithFields(logrus.Fields{
		"event": ev.Kind.String(),
	}).Debug("Executing command")

	stationID := d.Snapshot().StationID

	switch ev.Kind {
	case SeekUp, SeekDown:
		dir := tea5767.DirectionUp
		if ev.Kind == SeekDown {
			dir = tea5767.DirectionDown
		}
		d.markSeeking()
		f, err := d.tuner.Seek(dir)
		d.refreshStatus("")
		if err != nil {
			return Result{}, err
		}
		d.hub.Publish(events.TunerSeek, events.SeekEvent{
			Direction:    dir.String(),
			FrequencyMHz: f,
			Stereo:       d.tuner.Stereo(),
			Ts:           time.Now().Unix(),
		})
		return Result{FrequencyMHz: f}, nil

	case StepUpCoarse, StepUpFine, StepDownCoarse, StepDownFine:
		dir := tea5767.DirectionUp
		if ev.Kind == StepDownCoarse || ev.Kind == StepDownFine {
			dir = tea5767.DirectionDown
		}
		delta := tea5767.StepCoarse
		if ev.Kind == StepUpFine || ev.Kind == StepDownFine {
			delta = tea5767.StepFine
		}
		f, err := d.tuner.Step(dir, delta)
		if err != nil {
			return Result{}, err
		}
		d.refreshStatus("")
		d.publishTuned(f, "")
		return Result{FrequencyMHz: f}, nil

	case TuneFrequency:
		if err := d.tuner.TuneTo(ev.FrequencyMHz); err != nil {
			return Result{}, err
		}
		f := d.tuner.Frequency()
		d.refreshStatus("")
		d.publishTuned(f, "")
		return Result{FrequencyMHz: f}, nil

	case TuneStation:
		st, ok := stations.ByID(ev.StationID)
		if !ok {
			return Result{}, stations.ErrUnknown(ev.StationID)
		}
		if err := d.tuner.TuneTo(st.FrequencyMHz); err != nil {
			return Result{}, err
		}
		f := d.tuner.Frequency()
		d.refreshStatus(st.ID)
		d.publishTuned(f, st.ID)
		return Result{FrequencyMHz: f, StationID: st.ID}, nil

	case SavePreset:
		if d.tuner.State() != tea5767.StateTuned {
			return Result{}, ErrNothingTuned
		}
		f := d.tuner.Frequency()
		if err := d.presets.SaveFrequency(f); err != nil {
			return Result{}, err
		}
		if err := d.presets.SaveStationID(stationID); err != nil {
			// The frequency is saved; a lost station id only costs the label.
			logrus.WithError(err).Warn("Failed to persist station id")
		}
		d.hub.Publish(events.TunerSaved, events.SavedEvent{
			FrequencyMHz: f,
			StationID:    stationID,
			Ts:           time.Now().Unix(),
		})
		logrus.WithFields(logrus.Fields{
			"frequencyMHz": f,
		}).Info("Saved preset")
		return Result{FrequencyMHz: f, StationID: stationID}, nil

	case MuteOn, MuteOff:
		if err := d.tuner.SetMute(ev.Kind == MuteOn); err != nil {
			return Result{}, err
		}
		d.refreshStatus(stationID)
		return Result{FrequencyMHz: d.tuner.Frequency()}, nil
	}

	return Result{}, pkgerrors.Errorf("unhandled command event %d", ev.Kind)
}

func (d *Dispatcher) publishTuned(f float64, stationID string) {
	d.hub.Publish(events.TunerTuned, events.TunedEvent{
		FrequencyMHz: f,
		StationID:    stationID,
		Ts:           time.Now().Unix(),
	})
}
