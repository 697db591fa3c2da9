/*
DESCRIPTION
  display.go provides the Sink interface for presenting filter results, a
  headless Sink and selection between it and the on screen windows.

AUTHORS
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package display presents the views produced by the filter package and
// provides the threshold controls and key polling used by a tracking session.
package display

import (
	"errors"
	"time"

	"github.com/ausocean/hsvtrack/filter"
	"github.com/ausocean/hsvtrack/tracker/config"
	"github.com/ausocean/utils/logging"
)

// Window names.
const (
	WindowControls = "HSV"
	WindowOriginal = "Original"
	WindowMask     = "Mask"
	WindowMasked   = "Masked Image"
	WindowCombined = "RealSense"
)

const pkg = "display: "

// NoKey is returned by WaitKey when no key was pressed.
const NoKey = -1

// ErrNoDisplay is returned by NewWindows when built without OpenCV.
var ErrNoDisplay = errors.New("no display support, build with the withcv tag")

// Sink presents filter results and provides the current threshold range.
type Sink interface {
	// Show renders the views of one iteration.
	Show(res *filter.Result) error

	// WaitKey waits up to d for a key press and returns its code, or NoKey.
	WaitKey(d time.Duration) int

	// Range returns the threshold range currently selected by the user.
	Range() filter.Range

	// Close releases any display resources.
	Close() error
}

// New returns the Sink selected by c. Windows are used unless c.Headless is
// set or there is no display support, in which case a Headless sink is used.
func New(c config.Config) (Sink, error) {
	r := filter.RangeFrom(c)
	if c.Headless {
		return NewHeadless(c.Logger, r), nil
	}
	w, err := NewWindows(r)
	if errors.Is(err, ErrNoDisplay) {
		c.Logger.Warning(pkg+"falling back to headless display", "error", err.Error())
		return NewHeadless(c.Logger, r), nil
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Headless is a Sink that logs results instead of displaying them. Its range
// is fixed and it never reports a key press.
type Headless struct {
	log    logging.Logger
	r      filter.Range
	frames uint64
	found  bool
}

// NewHeadless returns a Headless sink with the fixed range r.
func NewHeadless(l logging.Logger, r filter.Range) *Headless {
	return &Headless{log: l, r: r}
}

// Show logs res. Changes in whether a centroid is found are logged at info
// level, every frame at debug level.
func (h *Headless) Show(res *filter.Result) error {
	h.frames++
	args := []interface{}{"frame", h.frames, "found", res.HasCentroid}
	if res.HasCentroid {
		args = append(args, "x", res.Centroid.X, "y", res.Centroid.Y)
	}
	if res.HasDepth {
		args = append(args, "meanDepth", res.Depth.Mean, "medianDepth", res.Depth.Median, "samples", res.Depth.Samples)
	}

	if res.HasCentroid != h.found {
		h.found = res.HasCentroid
		h.log.Info(pkg+"target changed", args...)
		return nil
	}
	h.log.Debug(pkg+"frame processed", args...)
	return nil
}

// WaitKey sleeps for d and returns NoKey.
func (h *Headless) WaitKey(d time.Duration) int {
	time.Sleep(d)
	return NoKey
}

// Range returns the fixed range.
func (h *Headless) Range() filter.Range { return h.r }

// Close implements Sink.
func (h *Headless) Close() error { return nil }

// Frames returns the number of results shown.
func (h *Headless) Frames() uint64 { return h.frames }
