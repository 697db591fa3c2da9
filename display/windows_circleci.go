//go:build !withcv
// +build !withcv

/*
DESCRIPTION
  Replaces the OpenCV windows when OpenCV is not installed, such as on
  Circle-CI.

AUTHORS
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package display

import (
	"time"

	"github.com/ausocean/hsvtrack/filter"
)

// Windows is unavailable without OpenCV.
type Windows struct{}

// NewWindows returns ErrNoDisplay.
func NewWindows(r filter.Range) (*Windows, error) { return nil, ErrNoDisplay }

func (w *Windows) Show(res *filter.Result) error { return ErrNoDisplay }
func (w *Windows) WaitKey(d time.Duration) int    { return NoKey }
func (w *Windows) Range() filter.Range            { return filter.Range{} }
func (w *Windows) Close() error                   { return nil }
