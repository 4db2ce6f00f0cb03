package events

import "encoding/json"

// Event name constants
const (
	TunerTuned = "tuner.tuned"
	TunerSeek  = "tuner.seek"
	TunerSaved = "tuner.saved"
)

// Event is a generic SSE event from the daemon.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// TunedEvent is the typed payload for tuner.tuned.
type TunedEvent struct {
	FrequencyMHz float64 `json:"frequencyMHz"`
	StationID    string  `json:"stationId,omitempty"`
	Ts           int64   `json:"ts"`
}

// SeekEvent is the typed payload for tuner.seek.
type SeekEvent struct {
	Direction    string  `json:"direction"`
	FrequencyMHz float64 `json:"frequencyMHz"`
	Stereo       bool    `json:"stereo"`
	Ts           int64   `json:"ts"`
}

// SavedEvent is the typed payload for tuner.saved.
type SavedEvent struct {
	FrequencyMHz float64 `json:"frequencyMHz"`
	StationID    string  `json:"stationId,omitempty"`
	Ts           int64   `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type
// T. It ignores the event name and simply unmarshals Data into T. If Data is
// empty, it returns the zero value of T with a nil error.
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
