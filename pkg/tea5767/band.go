package tea5767

import "fmt"

// Band selects the frequency range the tuner is allowed to operate in. The
// chip supports two band limits, selected by a single register bit.
type Band int

const (
	// BandUSEurope covers 87.5-108.0 MHz.
	BandUSEurope Band = iota
	// BandJapan covers 76.0-91.0 MHz.
	BandJapan
)

// Limits returns the lower and upper band edges in MHz.
func (b Band) Limits() (low, high float64) {
	if b == BandJapan {
		return 76.0, 91.0
	}
	return 87.5, 108.0
}

// Clamp constrains freq to the band edges.
func (b Band) Clamp(freq float64) float64 {
	low, high := b.Limits()
	if freq < low {
		return low
	}
	if freq > high {
		return high
	}
	return freq
}

func (b Band) String() string {
	if b == BandJapan {
		return "japan"
	}
	return "us-europe"
}

// ParseBand parses the band names used in the config file.
func ParseBand(s string) (Band, error) {
	switch s {
	case "us-europe":
		return BandUSEurope, nil
	case "japan":
		return BandJapan, nil
	}
	return BandUSEurope, fmt.Errorf("unknown band %q (want us-europe or japan)", s)
}
