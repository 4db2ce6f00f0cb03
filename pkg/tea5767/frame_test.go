package tea5767

import (
	"math"
	"testing"
)

func TestFrequencyRoundTrip(t *testing.T) {
	for _, band := range []Band{BandUSEurope, BandJapan} {
		low, high := band.Limits()
		for f := low; f <= high+1e-9; f += 0.1 {
			frame := Frame{FrequencyMHz: f, Band: band, StopLevel: StopLevelMid}

			raw, err := frame.Encode()
			if err != nil {
				t.Fatalf("encode %.1f MHz: %v", f, err)
			}

			got := DecodeFrame(raw).FrequencyMHz
			if math.Abs(got-f) > 0.05 {
				t.Fatalf("round trip %.1f MHz: got %.4f MHz", f, got)
			}
		}
	}
}

func TestEncodeBitPositions(t *testing.T) {
	frame := Frame{
		Mute:         true,
		SearchMode:   true,
		FrequencyMHz: 100.0,
		StopLevel:    StopLevelHigh,
		SearchUp:     true,
		Band:         BandJapan,
		SoftMute:     true,
	}

	raw, err := frame.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if raw[0]&(1<<7) == 0 {
		t.Errorf("mute bit not set in byte0 bit7")
	}
	if raw[0]&(1<<6) == 0 {
		t.Errorf("search-enable bit not set in byte0 bit6")
	}
	if raw[2]>>6 != byte(StopLevelHigh) {
		t.Errorf("stop level bits = %d, want %d", raw[2]>>6, StopLevelHigh)
	}
	if raw[2]&(1<<5) == 0 {
		t.Errorf("search-direction bit not set in byte2 bit5")
	}
	if raw[2]&(1<<4) == 0 {
		t.Errorf("band-select bit not set in byte2 bit4")
	}
	if raw[3]&(1<<7) == 0 {
		t.Errorf("soft-mute bit not set in byte3 bit7")
	}
	if raw[4] != 0 {
		t.Errorf("status byte must encode as zero, got %#x", raw[4])
	}
}

func TestEncodeDecodeLossless(t *testing.T) {
	frames := []Frame{
		{FrequencyMHz: 87.5, StopLevel: StopLevelLow},
		{FrequencyMHz: 105.5, StopLevel: StopLevelMid, Mute: true},
		{FrequencyMHz: 91.0, StopLevel: StopLevelHigh, Band: BandJapan, SearchMode: true, SearchUp: true},
	}

	for _, f := range frames {
		raw, err := f.Encode()
		if err != nil {
			t.Fatalf("encode %+v: %v", f, err)
		}

		again, err := DecodeFrame(raw).Encode()
		if err != nil {
			t.Fatalf("re-encode %+v: %v", f, err)
		}
		if raw != again {
			t.Errorf("encode/decode not lossless: % x vs % x", raw, again)
		}
	}
}

func TestDecodeStatusByte(t *testing.T) {
	frame := Frame{FrequencyMHz: 96.4, StopLevel: StopLevelMid}
	raw, err := frame.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	raw[4] = 1<<7 | 1<<6 | 0x07

	got := DecodeFrame(raw)
	if !got.Ready {
		t.Errorf("ready flag not decoded from byte4 bit7")
	}
	if !got.Stereo {
		t.Errorf("stereo flag not decoded from byte4 bit6")
	}
	if got.SignalLevel != 0x07 {
		t.Errorf("signal level = %#x, want 0x07", got.SignalLevel)
	}
}

func TestEncodeOutOfRange(t *testing.T) {
	// Way above what 14 bits can hold.
	_, err := Frame{FrequencyMHz: 4000.0}.Encode()
	if err != ErrEncodeOutOfRange {
		t.Fatalf("expected ErrEncodeOutOfRange, got %v", err)
	}

	_, err = Frame{FrequencyMHz: -10.0}.Encode()
	if err != ErrEncodeOutOfRange {
		t.Fatalf("expected ErrEncodeOutOfRange for negative frequency, got %v", err)
	}
}
