package tea5767

import "errors"

var (
	// ErrEncodeOutOfRange is returned when a frequency word would not fit the
	// 14-bit PLL field. Upstream band clamping makes this unreachable in
	// practice, but the codec still refuses to truncate silently.
	ErrEncodeOutOfRange = errors.New("frequency word out of range")

	// ErrSearchTimeout is returned when a station search did not complete
	// within the configured poll budget.
	ErrSearchTimeout = errors.New("station search timed out")
)
