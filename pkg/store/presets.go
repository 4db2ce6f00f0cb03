package store

import (
	"encoding/binary"
	"math"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Store keys for the last tuned station.
const (
	lastFrequencyKey = "lastStation"
	lastStationIDKey = "lastStationID"
)

// Presets reads and writes the last tuned station. The frequency travels as
// a big-endian 32-bit fixed-point value in centi-MHz, so the round trip is
// exact at the 0.01 MHz resolution the tuner steps in.
type Presets struct {
	s Store
}

func NewPresets(s Store) *Presets {
	return &Presets{s: s}
}

// SaveFrequency persists freqMHz under the fixed preset key.
func (p *Presets) SaveFrequency(freqMHz float64) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(math.Round(freqMHz*100)))

	if err := p.s.Put(lastFrequencyKey, buf[:]); err != nil {
		return pkgerrors.Wrap(err, "failed to persist frequency")
	}
	return nil
}

// LoadFrequency returns the persisted frequency. ok is false when the key is
// absent or its value unreadable; callers fall back to the configured
// default, so neither case is an error.
func (p *Presets) LoadFrequency() (freqMHz float64, ok bool) {
	b, ok, err := p.s.Get(lastFrequencyKey)
	if err != nil {
		logrus.WithError(err).Warn("failed to read persisted frequency")
		return 0, false
	}
	if !ok {
		return 0, false
	}
	if len(b) != 4 {
		logrus.Warnf("persisted frequency has %d bytes, want 4; ignoring", len(b))
		return 0, false
	}

	return float64(binary.BigEndian.Uint32(b)) / 100, true
}

// SaveStationID remembers which table entry the frequency came from. An
// empty id clears the association (the frequency was tuned manually).
func (p *Presets) SaveStationID(id string) error {
	if id == "" {
		if err := p.s.Delete(lastStationIDKey); err != nil {
			return pkgerrors.Wrap(err, "failed to clear station id")
		}
		return nil
	}
	if err := p.s.Put(lastStationIDKey, []byte(id)); err != nil {
		return pkgerrors.Wrap(err, "failed to persist station id")
	}
	return nil
}

// LoadStationID returns the persisted station id, or "" when none is stored.
func (p *Presets) LoadStationID() string {
	b, ok, err := p.s.Get(lastStationIDKey)
	if err != nil || !ok {
		return ""
	}
	return string(b)
}
