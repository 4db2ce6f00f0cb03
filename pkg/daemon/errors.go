package daemon

import "errors"

var (
	// ErrBusy is returned under the drop policy when a command arrives while
	// the tuner is occupied (normally mid-search).
	ErrBusy = errors.New("tuner busy, command dropped")

	// ErrStopped is returned for commands submitted after shutdown began.
	ErrStopped = errors.New("dispatcher stopped")

	// ErrNothingTuned is returned for a save command before any successful
	// tune.
	ErrNothingTuned = errors.New("nothing tuned yet")
)
