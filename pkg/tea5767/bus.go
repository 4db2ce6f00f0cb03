package tea5767

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
)

// Bus moves whole register frames to and from the tuner. The chip does not
// support partial register access, so both directions always carry the full
// 5-byte frame.
type Bus interface {
	WriteFrame([FrameSize]byte) error
	ReadFrame() ([FrameSize]byte, error)
	Close() error
}

type i2cBus struct {
	bus i2c.BusCloser
	dev i2c.Dev
}

// OpenBus connects to the tuner on the named I2C bus. An empty name selects
// the first available bus.
func OpenBus(name string, addr uint16) (Bus, error) {
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open i2c bus %q", name)
	}

	return &i2cBus{
		bus: b,
		dev: i2c.Dev{Bus: b, Addr: addr},
	}, nil
}

func (b *i2cBus) WriteFrame(frame [FrameSize]byte) error {
	logrus.WithFields(logrus.Fields{
		"frame": fmt.Sprintf("% x", frame),
	}).Trace("Writing register frame")

	if err := b.dev.Tx(frame[:], nil); err != nil {
		return pkgerrors.Wrap(err, "i2c write transaction")
	}

	return nil
}

func (b *i2cBus) ReadFrame() ([FrameSize]byte, error) {
	var frame [FrameSize]byte

	if err := b.dev.Tx(nil, frame[:]); err != nil {
		return frame, pkgerrors.Wrap(err, "i2c read transaction")
	}

	logrus.WithFields(logrus.Fields{
		"frame": fmt.Sprintf("% x", frame),
	}).Trace("Read register frame")

	return frame, nil
}

func (b *i2cBus) Close() error {
	return b.bus.Close()
}
