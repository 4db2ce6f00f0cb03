package config

import "github.com/sirupsen/logrus"

// Event policies for commands arriving while a search is in flight. Drop is
// the default: stacking bus operations behind a blocked queue is rarely what
// a key-mashing user wants.
const (
	EventPolicyDrop  = "drop"
	EventPolicyQueue = "queue"
)

// Config is what the daemon consumes. The band, default frequency and search
// bounds feed the tuner controller; the bus fields pass through to the
// transport untouched.
type Config interface {
	Band() string
	DefaultFrequencyMHz() float64
	SeekStopLevel() int
	SeekPollIntervalMS() int
	SeekMaxPolls() int
	WrapOnBandEdge() bool
	EventPolicy() string
	I2CBus() string
	DeviceAddr() int
	AllowNonRootAccess() bool

	SetDefaultFrequencyMHz(float64)
	SetWrapOnBandEdge(bool)

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error

	LogrusFields() logrus.Fields
}
