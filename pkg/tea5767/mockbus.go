package tea5767

import "sync"

// MockBus simulates the tuner chip. It backs the test suite and lets the
// daemon run on machines without the hardware attached.
type MockBus struct {
	// Stations lists the receivable frequencies in MHz. A search stops on the
	// next entry in the search direction, or at the band edge if there is
	// none.
	Stations []float64

	// ReadyAfter is how many status reads an in-flight search takes before
	// the ready flag comes up. Zero means the first read completes it.
	ReadyAfter int

	// NaturalWrap makes the simulated chip wrap around the band edge by
	// itself instead of stopping there.
	NaturalWrap bool

	// WriteErr and ReadErr, when set, fail the corresponding transaction.
	WriteErr error
	ReadErr  error

	// ReadGate, when non-nil, blocks every ReadFrame until a value arrives.
	// Tests use it to hold a search in flight.
	ReadGate chan struct{}

	mu        sync.Mutex
	current   float64
	band      Band
	muted     bool
	searching bool
	searchUp  bool
	reads     int
	closed    bool
}

var _ Bus = (*MockBus)(nil)

// NewMockBus returns a simulated chip tuned to freqMHz.
func NewMockBus(freqMHz float64, stations ...float64) *MockBus {
	return &MockBus{
		Stations: stations,
		current:  freqMHz,
	}
}

func (m *MockBus) WriteFrame(frame [FrameSize]byte) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}

	f := DecodeFrame(frame)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.band = f.Band
	m.muted = f.Mute
	m.current = f.FrequencyMHz
	if f.SearchMode {
		m.searching = true
		m.searchUp = f.SearchUp
		m.reads = 0
	} else {
		m.searching = false
	}

	return nil
}

func (m *MockBus) ReadFrame() ([FrameSize]byte, error) {
	if m.ReadGate != nil {
		<-m.ReadGate
	}
	if m.ReadErr != nil {
		return [FrameSize]byte{}, m.ReadErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ready := true
	station := false

	if m.searching {
		m.reads++
		if m.reads <= m.ReadyAfter {
			ready = false
		} else {
			m.current, station = m.settleSearch()
			m.searching = false
		}
	}

	frame, err := Frame{
		Mute:         m.muted,
		SearchMode:   m.searching,
		FrequencyMHz: m.current,
		SearchUp:     m.searchUp,
		Band:         m.band,
	}.Encode()
	if err != nil {
		return frame, err
	}

	if ready {
		frame[4] |= 1 << 7
	}
	if station {
		frame[4] |= 1 << 6 // stereo
		frame[4] |= 0x09   // signal level
	} else {
		frame[4] |= 0x02
	}

	return frame, nil
}

// settleSearch resolves an in-flight search to the frequency the chip would
// stop at.
func (m *MockBus) settleSearch() (freq float64, station bool) {
	if f, ok := m.nextStation(m.current, m.searchUp); ok {
		return f, true
	}

	low, high := m.band.Limits()
	if !m.NaturalWrap {
		// Stop at the band edge, ready flag set, no station found.
		if m.searchUp {
			return high, false
		}
		return low, false
	}

	// Wrap once and scan the rest of the band.
	from := high
	if m.searchUp {
		from = low
	}
	if f, ok := m.nextStation(from, m.searchUp); ok {
		return f, true
	}
	if m.searchUp {
		return high, false
	}
	return low, false
}

func (m *MockBus) nextStation(from float64, up bool) (float64, bool) {
	const step = 0.05 // half a channel, so the starting station is excluded

	best := 0.0
	found := false
	low, high := m.band.Limits()

	for _, s := range m.Stations {
		if s < low || s > high {
			continue
		}
		if up {
			if s > from+step && (!found || s < best) {
				best, found = s, true
			}
		} else {
			if s < from-step && (!found || s > best) {
				best, found = s, true
			}
		}
	}

	return best, found
}

func (m *MockBus) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
