/*
NAME
  tracker.go

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package tracker provides a session that streams depth and colour frames
// through the HSV range filter, shows the results and ends on a quit key.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"

	"github.com/ausocean/hsvtrack/device"
	"github.com/ausocean/hsvtrack/display"
	"github.com/ausocean/hsvtrack/filter"
	"github.com/ausocean/hsvtrack/tracker/config"
	"github.com/ausocean/utils/logging"
)

const pkg = "tracker: "

// Diagnostics printed when a session cannot start with the connected camera.
const (
	MsgNoDevice      = "No depth camera device connected"
	MsgNoColorSensor = "The demo requires Depth camera with Color sensor"
)

var (
	// ErrNoDevice is returned by Run if the source reports no sensors.
	ErrNoDevice = errors.New("no depth camera device connected")

	// ErrNoColorSensor is returned by Run if the source has no colour sensor.
	ErrNoColorSensor = errors.New("depth camera has no color sensor")
)

// Diagnostic returns the message to give the user for a capability error,
// and false for any other error.
func Diagnostic(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrNoDevice):
		return MsgNoDevice, true
	case errors.Is(err, ErrNoColorSensor):
		return MsgNoColorSensor, true
	}
	return "", false
}

// State is the lifecycle state of a Session.
type State int32

// Session states.
const (
	Idle State = iota
	Running
	Terminating
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Terminating:
		return "terminating"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// SinkFunc opens the display sink for a session.
type SinkFunc func(config.Config) (display.Sink, error)

// Session runs the acquire, filter and display loop for one frame source.
// A Session is run once.
type Session struct {
	cfg     config.Config
	log     logging.Logger
	src     device.FrameSource
	newSink SinkFunc
	sink    display.Sink
	masker  filter.Masker
	pipe    *filter.Pipeline
	quit    byte
	delay   time.Duration
	state   atomic.Int32
	frames  atomic.Uint64
}

// New returns a Session reading from src, showing results on the sink made by
// newSink and building masks with m. The config is validated and applied to
// src; errors that src could recover from by defaulting are logged.
func New(c config.Config, src device.FrameSource, newSink SinkFunc, m filter.Masker) (*Session, error) {
	if c.Logger == nil {
		return nil, errors.New("no logger")
	}
	err := c.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c.Logger.Debug(pkg+"configuring input device", "device", src.Name())
	err = src.Set(c)
	switch err := err.(type) {
	case nil:
		// Do nothing.
	case device.MultiError:
		c.Logger.Warning(pkg+"errors from configuring input device", "errors", err)
	default:
		return nil, fmt.Errorf("could not configure %s: %w", src.Name(), err)
	}
	c.Logger.Info(pkg+"input device configured", "device", src.Name())

	if m == nil {
		m = filter.NewMasker()
	}
	s := &Session{
		cfg:     c,
		log:     c.Logger,
		src:     src,
		newSink: newSink,
		masker:  m,
		pipe:    filter.NewPipeline(m, c),
		quit:    c.QuitKey[0],
		delay:   time.Duration(c.KeyDelay) * time.Millisecond,
	}
	return s, nil
}

// State returns the current state of the session.
func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) setState(st State) {
	s.log.Debug(pkg+"state change", "from", s.State().String(), "to", st.String())
	s.state.Store(int32(st))
}

// Frames returns the number of frame pairs processed and shown.
func (s *Session) Frames() uint64 { return s.frames.Load() }

// Run checks the source's capabilities, opens the sink and loops until the
// quit key is pressed, ctx is done, the source ends or an error occurs. The
// source, sink and masker are released exactly once before Run returns,
// including when a panic unwinds through Run. A release error is combined
// with the loop error. Capability errors are ErrNoDevice and
// ErrNoColorSensor, returned before a sink is opened.
func (s *Session) Run(ctx context.Context) (err error) {
	if !s.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return fmt.Errorf("session is %s, can only run once", s.State())
	}
	s.log.Info(pkg+"session running", "device", s.src.Name())

	defer func() {
		p := recover()
		s.setState(Terminating)
		err = multierr.Append(err, s.release())
		s.setState(Stopped)
		if p != nil {
			panic(p)
		}
	}()

	err = s.checkSensors()
	if err != nil {
		return err
	}

	err = s.src.Start()
	if err != nil {
		return fmt.Errorf("could not start %s: %w", s.src.Name(), err)
	}
	s.log.Info(pkg+"input device started")

	s.sink, err = s.newSink(s.cfg)
	if err != nil {
		return fmt.Errorf("could not open display: %w", err)
	}

	return s.loop(ctx)
}

// checkSensors returns ErrNoDevice or ErrNoColorSensor if the source cannot
// provide colour frames.
func (s *Session) checkSensors() error {
	sensors, err := s.src.Sensors()
	if err != nil {
		return fmt.Errorf("could not query sensors: %w", err)
	}
	s.log.Info(pkg+"sensors found", "sensors", sensors)
	if len(sensors) == 0 {
		return ErrNoDevice
	}
	if !device.HasSensor(sensors, device.SensorColor) {
		return ErrNoColorSensor
	}

	pl, err := s.src.ProductLine()
	if err != nil {
		s.log.Warning(pkg+"could not get product line", "error", err.Error())
		return nil
	}
	s.log.Info(pkg+"product line", "productLine", pl)
	return nil
}

func (s *Session) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.log.Info(pkg+"context done, stopping", "reason", ctx.Err().Error())
			return nil
		default:
		}

		pair, ok, err := s.src.Next()
		switch {
		case errors.Is(err, io.EOF):
			s.log.Info(pkg + "end of input")
			return nil
		case err != nil:
			return fmt.Errorf("could not acquire frames: %w", err)
		case !ok:
			s.log.Debug(pkg + "frame pair unavailable, skipping")
			continue
		}

		res, err := s.pipe.Process(pair.Depth, pair.Color, s.sink.Range())
		if err != nil {
			return fmt.Errorf("could not process frames: %w", err)
		}
		err = s.sink.Show(res)
		if err != nil {
			return fmt.Errorf("could not show frames: %w", err)
		}
		s.frames.Add(1)

		k := s.sink.WaitKey(s.delay)
		if k != display.NoKey && byte(k&0xff) == s.quit {
			s.log.Info(pkg + "quit key pressed")
			return nil
		}
	}
}

// release stops the source and closes the sink and masker.
func (s *Session) release() error {
	s.log.Debug(pkg + "releasing resources")
	var err error
	if e := s.src.Stop(); e != nil {
		err = multierr.Append(err, fmt.Errorf("could not stop %s: %w", s.src.Name(), e))
	}
	if s.sink != nil {
		if e := s.sink.Close(); e != nil {
			err = multierr.Append(err, fmt.Errorf("could not close display: %w", e))
		}
	}
	if e := s.masker.Close(); e != nil {
		err = multierr.Append(err, fmt.Errorf("could not close masker: %w", e))
	}
	if err == nil {
		s.log.Info(pkg + "resources released")
	}
	return err
}
