package tea5767

import "math"

const (
	// DeviceAddr is the fixed 7-bit I2C address of the tuner.
	DeviceAddr uint16 = 0x60

	// FrameSize is the width of every bus transaction. The chip has no
	// register addressing: reads and writes always move the whole frame.
	FrameSize = 5
)

// PLL word derivation. The frequency word counts reference-clock quarters of
// the RF frequency plus the intermediate frequency, so one LSB is 8192 Hz.
const (
	intermediateFreqHz = 225_000
	referenceClockHz   = 32_768

	pllWordMax = 1<<14 - 1
)

// StopLevel is the minimum signal level at which a search stops.
type StopLevel byte

const (
	StopLevelLow  StopLevel = 1
	StopLevelMid  StopLevel = 2
	StopLevelHigh StopLevel = 3
)

// Frame is the logical view of the 5-byte register frame.
//
// Write layout (MSB first):
//
//	byte0: bit7 mute, bit6 search enable, bits5-0 PLL word high bits
//	byte1: PLL word low byte
//	byte2: bits7-6 search stop level, bit5 search direction (1=up),
//	       bit4 band select (1=Japan), rest reserved
//	byte3: bit7 soft mute, rest reserved
//	byte4: reserved, always written as zero
//
// On reads, byte4 carries status: bit7 ready, bit6 stereo, bits3-0 signal
// level. Those fields are decode-only; Encode always zeroes them.
type Frame struct {
	Mute         bool
	SearchMode   bool
	FrequencyMHz float64
	StopLevel    StopLevel
	SearchUp     bool
	Band         Band
	SoftMute     bool

	// Status fields, populated by DecodeFrame only.
	Ready       bool
	Stereo      bool
	SignalLevel byte
}

func pllWord(freqMHz float64) (uint16, error) {
	w := math.Round(4 * (freqMHz*1e6 + intermediateFreqHz) / referenceClockHz)
	if w < 0 || w > pllWordMax {
		return 0, ErrEncodeOutOfRange
	}
	return uint16(w), nil
}

func freqFromWord(w uint16) float64 {
	return (float64(w)*referenceClockHz/4 - intermediateFreqHz) / 1e6
}

// Encode packs the frame into its wire representation.
func (f Frame) Encode() ([FrameSize]byte, error) {
	var b [FrameSize]byte

	w, err := pllWord(f.FrequencyMHz)
	if err != nil {
		return b, err
	}

	b[0] = byte(w>>8) & 0x3f
	if f.Mute {
		b[0] |= 1 << 7
	}
	if f.SearchMode {
		b[0] |= 1 << 6
	}
	b[1] = byte(w)
	b[2] = byte(f.StopLevel) << 6
	if f.SearchUp {
		b[2] |= 1 << 5
	}
	if f.Band == BandJapan {
		b[2] |= 1 << 4
	}
	if f.SoftMute {
		b[3] |= 1 << 7
	}

	return b, nil
}

// DecodeFrame unpacks a wire frame, including the read-only status byte.
func DecodeFrame(b [FrameSize]byte) Frame {
	w := uint16(b[0]&0x3f)<<8 | uint16(b[1])

	f := Frame{
		Mute:         b[0]&(1<<7) != 0,
		SearchMode:   b[0]&(1<<6) != 0,
		FrequencyMHz: freqFromWord(w),
		StopLevel:    StopLevel(b[2] >> 6),
		SearchUp:     b[2]&(1<<5) != 0,
		SoftMute:     b[3]&(1<<7) != 0,
		Ready:        b[4]&(1<<7) != 0,
		Stereo:       b[4]&(1<<6) != 0,
		SignalLevel:  b[4] & 0x0f,
	}
	if b[2]&(1<<4) != 0 {
		f.Band = BandJapan
	}

	return f
}
