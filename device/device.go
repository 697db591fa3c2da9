/*
DESCRIPTION
  device.go provides FrameSource, an interface that describes a configurable
  depth camera that can be started and stopped and from which synchronized
  depth and colour frame pairs may be obtained.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package device provides an interface and implementations for depth camera
// inputs that can be started and stopped and from which frame pairs can be
// obtained.
package device

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/ausocean/hsvtrack/tracker/config"
)

// Sensor names as reported by RealSense devices. The tracker requires a
// sensor named SensorColor.
const (
	SensorDepth = "Stereo Module"
	SensorColor = "RGB Camera"
)

// Pair holds a depth frame and a colour frame captured at the same instant.
// Depth samples are raw sensor units (millimetres on most devices).
type Pair struct {
	Depth *image.Gray16
	Color *image.RGBA
	Time  time.Time
}

// Complete returns true if both frames of the pair are present.
func (p Pair) Complete() bool { return p.Depth != nil && p.Color != nil }

// FrameSource describes a configurable depth camera from which frame pairs can
// be obtained.
type FrameSource interface {
	// Name returns the name of the FrameSource.
	Name() string

	// Set allows for configuration of the FrameSource using a Config struct. All,
	// some or none of the fields of the Config struct may be used for configuration
	// by an implementation. An implementation should specify what fields are
	// considered.
	Set(c config.Config) error

	// Sensors returns the names of the sensors on the attached device. It may be
	// called before Start. An empty slice means no device is attached.
	Sensors() ([]string, error)

	// ProductLine returns the product line of the attached device, e.g. "D400".
	ProductLine() (string, error)

	// Start will start the FrameSource streaming; after which Next may be called.
	Start() error

	// Next blocks until a frame pair is available. If a coherent pair could not
	// be obtained this time around, ok is false and the caller should simply
	// try again. A non-nil error means the source can not continue.
	Next() (p Pair, ok bool, err error)

	// Stop will stop the FrameSource and release its resources. Calls after
	// the first have no effect.
	Stop() error

	// IsRunning is used to determine if the source is streaming.
	IsRunning() bool
}

// HasSensor reports whether name is among sensors.
func HasSensor(sensors []string, name string) bool {
	for _, s := range sensors {
		if s == name {
			return true
		}
	}
	return false
}

// MultiError implements the built in error interface. MultiError is used here
// to collect multiple errors during validation of configuration parameters for
// FrameSources.
type MultiError []error

func (me MultiError) Error() string {
	if len(me) == 0 {
		panic("device: invalid use of MultiError")
	}
	return fmt.Sprintf("%v", []error(me))
}

// Default ManualInput parameters.
const (
	defaultManualTimeout  = 100 * time.Millisecond
	defaultManualCapacity = 8
)

// ErrNotRunning is returned when a source is used before Start or after Stop.
var ErrNotRunning = errors.New("frame source is not running")

// ManualInput is an implementation of the FrameSource interface that represents
// a manual input mechanism, i.e. frame pairs are written to this input manually
// through software (ManualInput also provides Write, unlike other
// implementations). Pairs are buffered; if no pair arrives within the frame
// timeout, Next reports the pair as unavailable.
type ManualInput struct {
	mu          sync.Mutex
	isRunning   bool
	sensors     []string
	productLine string
	timeout     time.Duration
	pairs       chan Pair
}

// NewManualInput provides a new ManualInput reporting the given sensors. If no
// sensors are given it reports both a depth and a colour sensor.
func NewManualInput(sensors ...string) *ManualInput {
	if sensors == nil {
		sensors = []string{SensorDepth, SensorColor}
	}
	return &ManualInput{
		sensors:     sensors,
		productLine: "Manual",
		timeout:     defaultManualTimeout,
		pairs:       make(chan Pair, defaultManualCapacity),
	}
}

// Name returns the name of ManualInput i.e. "ManualInput".
func (m *ManualInput) Name() string { return "ManualInput" }

// Set uses the FrameTimeout field of the config as the read timeout.
func (m *ManualInput) Set(c config.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.FrameTimeout != 0 {
		m.timeout = time.Duration(c.FrameTimeout) * time.Millisecond
	}
	return nil
}

// Sensors returns the sensors given to NewManualInput.
func (m *ManualInput) Sensors() ([]string, error) { return m.sensors, nil }

// ProductLine returns "Manual".
func (m *ManualInput) ProductLine() (string, error) { return m.productLine, nil }

// Start sets the ManualInput isRunning flag to true.
func (m *ManualInput) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isRunning = true
	return nil
}

// Next returns the oldest written pair. A pair missing either frame, or no
// pair within the timeout, is reported as unavailable.
func (m *ManualInput) Next() (Pair, bool, error) {
	if !m.IsRunning() {
		return Pair{}, false, ErrNotRunning
	}
	select {
	case p := <-m.pairs:
		return p, p.Complete(), nil
	case <-time.After(m.timeout):
		return Pair{}, false, nil
	}
}

// Stop sets the isRunning flag to false; subsequent reads and writes fail.
func (m *ManualInput) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isRunning = false
	return nil
}

// IsRunning returns the value of the isRunning flag to indicate if Start has
// been called (and Stop has not been called after).
func (m *ManualInput) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isRunning
}

// Write queues p for a later Next. Write blocks while the buffer is full.
func (m *ManualInput) Write(p Pair) error {
	if !m.IsRunning() {
		return errors.New("manual input has not been started, can't write")
	}
	m.pairs <- p
	return nil
}
