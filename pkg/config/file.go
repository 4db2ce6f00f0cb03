package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fm-tuner/tunerd/pkg/tea5767"
	"github.com/fm-tuner/tunerd/pkg/utils/ptr"
)

var defaultFileConfig = &RawFileConfig{
	Band:                ptr.To("us-europe"),
	DefaultFrequencyMHz: ptr.To(87.5),
	SeekStopLevel:       ptr.To(int(tea5767.StopLevelMid)),
	SeekPollIntervalMS:  ptr.To(30),
	SeekMaxPolls:        ptr.To(20),
	// The chip's own wrap near the band edges is unreliable; default to the
	// synthetic wrap until the datasheet says otherwise.
	WrapOnBandEdge:     ptr.To(true),
	EventPolicy:        ptr.To(EventPolicyDrop),
	I2CBus:             ptr.To(""),
	DeviceAddr:         ptr.To(int(tea5767.DeviceAddr)),
	AllowNonRootAccess: ptr.To(false),
}

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	if err := f.Load(); err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = defaultFileConfig
	}

	return &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}
}

// RawFileConfig is the on-disk shape. Absent fields fall back to defaults.
type RawFileConfig struct {
	Band                *string  `json:"band,omitempty"`
	DefaultFrequencyMHz *float64 `json:"defaultFrequencyMHz,omitempty"`
	SeekStopLevel       *int     `json:"seekStopLevel,omitempty"`
	SeekPollIntervalMS  *int     `json:"seekPollIntervalMS,omitempty"`
	SeekMaxPolls        *int     `json:"seekMaxPolls,omitempty"`
	WrapOnBandEdge      *bool    `json:"wrapOnBandEdge,omitempty"`
	EventPolicy         *string  `json:"eventPolicy,omitempty"`
	I2CBus              *string  `json:"i2cBus,omitempty"`
	DeviceAddr          *int     `json:"deviceAddr,omitempty"`
	AllowNonRootAccess  *bool    `json:"allowNonRootAccess,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	return &RawFileConfig{
		Band:                ptr.To(c.Band()),
		DefaultFrequencyMHz: ptr.To(c.DefaultFrequencyMHz()),
		SeekStopLevel:       ptr.To(c.SeekStopLevel()),
		SeekPollIntervalMS:  ptr.To(c.SeekPollIntervalMS()),
		SeekMaxPolls:        ptr.To(c.SeekMaxPolls()),
		WrapOnBandEdge:      ptr.To(c.WrapOnBandEdge()),
		EventPolicy:         ptr.To(c.EventPolicy()),
		I2CBus:              ptr.To(c.I2CBus()),
		DeviceAddr:          ptr.To(c.DeviceAddr()),
		AllowNonRootAccess:  ptr.To(c.AllowNonRootAccess()),
	}, nil
}

// Replace swaps the effective values wholesale. The daemon uses it to roll
// back to the last good values when a reloaded file fails validation.
func (f *File) Replace(c *RawFileConfig) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c == nil {
		c = defaultFileConfig
	}
	f.c = c
}

func (f *File) Band() string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.Band != nil {
		return *f.c.Band
	}
	return *defaultFileConfig.Band
}

func (f *File) DefaultFrequencyMHz() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.DefaultFrequencyMHz != nil {
		return *f.c.DefaultFrequencyMHz
	}
	return *defaultFileConfig.DefaultFrequencyMHz
}

func (f *File) SeekStopLevel() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.SeekStopLevel != nil {
		return *f.c.SeekStopLevel
	}
	return *defaultFileConfig.SeekStopLevel
}

func (f *File) SeekPollIntervalMS() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.SeekPollIntervalMS != nil {
		return *f.c.SeekPollIntervalMS
	}
	return *defaultFileConfig.SeekPollIntervalMS
}

func (f *File) SeekMaxPolls() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.SeekMaxPolls != nil {
		return *f.c.SeekMaxPolls
	}
	return *defaultFileConfig.SeekMaxPolls
}

func (f *File) WrapOnBandEdge() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.WrapOnBandEdge != nil {
		return *f.c.WrapOnBandEdge
	}
	return *defaultFileConfig.WrapOnBandEdge
}

func (f *File) EventPolicy() string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.EventPolicy != nil {
		return *f.c.EventPolicy
	}
	return *defaultFileConfig.EventPolicy
}

func (f *File) I2CBus() string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.I2CBus != nil {
		return *f.c.I2CBus
	}
	return *defaultFileConfig.I2CBus
}

func (f *File) DeviceAddr() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.DeviceAddr != nil {
		return *f.c.DeviceAddr
	}
	return *defaultFileConfig.DeviceAddr
}

func (f *File) AllowNonRootAccess() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.AllowNonRootAccess != nil {
		return *f.c.AllowNonRootAccess
	}
	return *defaultFileConfig.AllowNonRootAccess
}

func (f *File) SetDefaultFrequencyMHz(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.DefaultFrequencyMHz = &v
}

func (f *File) SetWrapOnBandEdge(b bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.WrapOnBandEdge = &b
}

// Validate rejects values the tuner cannot work with. Called once at daemon
// startup and after every reload.
func (f *File) Validate() error {
	band, err := tea5767.ParseBand(f.Band())
	if err != nil {
		return err
	}

	low, high := band.Limits()
	if d := f.DefaultFrequencyMHz(); d < low || d > high {
		return pkgerrors.Errorf("default frequency %.1f MHz outside band %s (%.1f-%.1f)", d, band, low, high)
	}
	if sl := f.SeekStopLevel(); sl < int(tea5767.StopLevelLow) || sl > int(tea5767.StopLevelHigh) {
		return pkgerrors.Errorf("seek stop level must be 1-3, got %d", sl)
	}
	if f.SeekPollIntervalMS() <= 0 {
		return pkgerrors.New("seek poll interval must be positive")
	}
	if f.SeekMaxPolls() <= 0 {
		return pkgerrors.New("seek max polls must be positive")
	}
	if p := f.EventPolicy(); p != EventPolicyDrop && p != EventPolicyQueue {
		return pkgerrors.Errorf("event policy must be %q or %q, got %q", EventPolicyDrop, EventPolicyQueue, p)
	}
	if a := f.DeviceAddr(); a <= 0 || a > 0x7f {
		return pkgerrors.Errorf("device address must be a 7-bit address, got %#x", a)
	}

	return nil
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		if err := fp.Close(); err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	if err := json.Unmarshal(b, &conf); err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		if err := fp.Close(); err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f.c); err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	return logrus.Fields{
		"band":                f.Band(),
		"defaultFrequencyMHz": f.DefaultFrequencyMHz(),
		"seekStopLevel":       f.SeekStopLevel(),
		"seekPollIntervalMS":  f.SeekPollIntervalMS(),
		"seekMaxPolls":        f.SeekMaxPolls(),
		"wrapOnBandEdge":      f.WrapOnBandEdge(),
		"eventPolicy":         f.EventPolicy(),
		"i2cBus":              f.I2CBus(),
		"deviceAddr":          f.DeviceAddr(),
		"allowNonRootAccess":  f.AllowNonRootAccess(),
	}
}
