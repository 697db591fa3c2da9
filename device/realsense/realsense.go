/*
DESCRIPTION
  realsense.go provides an implementation of FrameSource for Intel RealSense
  depth cameras.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package realsense provides an implementation of FrameSource for Intel
// RealSense depth cameras. The librealsense2 binding is only built with the
// withrealsense build tag.
package realsense

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ausocean/hsvtrack/device"
	"github.com/ausocean/hsvtrack/tracker/config"
	"github.com/ausocean/utils/logging"
)

// Used to indicate package in logging.
const pkg = "realsense: "

// Configuration defaults.
const (
	defaultFrameRate    = 30
	defaultDepthWidth   = 640
	defaultDepthHeight  = 480
	defaultColorWidth   = 640
	defaultColorHeight  = 480
	defaultFrameTimeout = 5 * time.Second
)

// The L500 product line supports a larger colour stream.
const (
	productLineL500 = "L500"
	l500ColorWidth  = 960
	l500ColorHeight = 540
)

// Configuration field errors.
var (
	errBadFrameRate   = errors.New("frame rate bad or unset, defaulting")
	errBadDepthWidth  = errors.New("depth width bad or unset, defaulting")
	errBadDepthHeight = errors.New("depth height bad or unset, defaulting")
	errBadTimeout     = errors.New("frame timeout bad or unset, defaulting")
)

// frameKind is the type of a frame extracted from a frameset.
type frameKind int

const (
	kindOther frameKind = iota
	kindDepth
	kindColor
)

// classify returns the kind of a frame using tests for whether it extends a
// depth frame or a video frame. Depth frames are also video frames, so depth
// is tested first.
func classify(isDepth, isVideo func() (bool, error)) (frameKind, error) {
	ok, err := isDepth()
	if err != nil {
		return kindOther, fmt.Errorf("could not test for depth frame: %w", err)
	}
	if ok {
		return kindDepth, nil
	}
	ok, err = isVideo()
	if err != nil {
		return kindOther, fmt.Errorf("could not test for video frame: %w", err)
	}
	if ok {
		return kindColor, nil
	}
	return kindOther, nil
}

// streams describes the depth and colour streams to enable.
type streams struct {
	depthWidth, depthHeight int
	colorWidth, colorHeight int
	fps                     int
}

// ColorResolution returns the colour stream size for a device of the given
// product line. A size set in the config takes precedence.
func ColorResolution(productLine string, c config.Config) (w, h uint) {
	if c.ColorWidth != 0 && c.ColorHeight != 0 {
		return c.ColorWidth, c.ColorHeight
	}
	if productLine == productLineL500 {
		return l500ColorWidth, l500ColorHeight
	}
	return defaultColorWidth, defaultColorHeight
}

// RealSense is an implementation of the FrameSource interface for the first
// RealSense device attached to the host.
type RealSense struct {
	log       logging.Logger
	cfg       config.Config
	timeout   time.Duration
	mu        sync.Mutex
	h         *handle
	isRunning bool
	released  bool
}

// New returns a new RealSense.
func New(l logging.Logger) *RealSense {
	return &RealSense{log: l, timeout: defaultFrameTimeout}
}

// Name returns the name of the device.
func (r *RealSense) Name() string {
	return "RealSense"
}

// Set will validate the relevant fields of the given Config struct and assign
// the struct to the RealSense's Config. If fields are not valid, an error is
// added to the multiError and a default value is used.
func (r *RealSense) Set(c config.Config) error {
	var errs device.MultiError
	if c.FrameRate == 0 {
		errs = append(errs, errBadFrameRate)
		c.FrameRate = defaultFrameRate
	}

	if c.DepthWidth == 0 {
		errs = append(errs, errBadDepthWidth)
		c.DepthWidth = defaultDepthWidth
	}

	if c.DepthHeight == 0 {
		errs = append(errs, errBadDepthHeight)
		c.DepthHeight = defaultDepthHeight
	}

	r.timeout = defaultFrameTimeout
	if c.FrameTimeout == 0 {
		errs = append(errs, errBadTimeout)
	} else {
		r.timeout = time.Duration(c.FrameTimeout) * time.Millisecond
	}

	r.cfg = c
	if len(errs) != 0 {
		return errs
	}
	return nil
}

// open connects to the first attached device if not already connected.
func (r *RealSense) open() error {
	if r.released {
		return errors.New("device has been released")
	}
	if r.h != nil {
		return nil
	}
	h, err := openHandle()
	if err != nil {
		return fmt.Errorf("could not open device: %w", err)
	}
	r.h = h
	return nil
}

// Sensors returns the names of the sensors of the first attached device, or
// an empty slice if no device is attached.
func (r *RealSense) Sensors() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.open()
	if err != nil {
		return nil, err
	}
	return r.h.sensors()
}

// ProductLine returns the product line of the first attached device.
func (r *RealSense) ProductLine() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.open()
	if err != nil {
		return "", err
	}
	return r.h.productLine()
}

// Start enables the depth and colour streams and starts the pipeline. The
// colour resolution depends on the device product line unless configured.
func (r *RealSense) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.isRunning {
		r.log.Warning(pkg + "start called, but device already running")
		return nil
	}
	err := r.open()
	if err != nil {
		return err
	}

	pl, err := r.h.productLine()
	if err != nil {
		return fmt.Errorf("could not get product line: %w", err)
	}
	cw, ch := ColorResolution(pl, r.cfg)

	s := streams{
		depthWidth:  int(r.cfg.DepthWidth),
		depthHeight: int(r.cfg.DepthHeight),
		colorWidth:  int(cw),
		colorHeight: int(ch),
		fps:         int(r.cfg.FrameRate),
	}
	r.log.Info(pkg+"starting streams", "productLine", pl, "depth", fmt.Sprintf("%dx%d", s.depthWidth, s.depthHeight), "color", fmt.Sprintf("%dx%d", s.colorWidth, s.colorHeight), "fps", s.fps)
	err = r.h.start(s)
	if err != nil {
		return fmt.Errorf("could not start streams: %w", err)
	}
	r.isRunning = true
	r.log.Info(pkg + "streams started")
	return nil
}

// Next waits for a coherent depth and colour pair. A timeout, or a frame set
// missing either stream, is reported as an unavailable pair.
func (r *RealSense) Next() (device.Pair, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.isRunning {
		return device.Pair{}, false, device.ErrNotRunning
	}
	return r.h.waitForPair(r.timeout)
}

// Stop stops the pipeline and releases every librealsense2 resource. Only the
// first call has any effect; its error is returned to the caller.
func (r *RealSense) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return nil
	}
	r.released = true
	r.isRunning = false
	if r.h == nil {
		return nil
	}
	err := r.h.close()
	r.h = nil
	if err != nil {
		return fmt.Errorf("could not release device: %w", err)
	}
	r.log.Info(pkg + "device released")
	return nil
}

// IsRunning is used to determine if the device is streaming.
func (r *RealSense) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isRunning
}
