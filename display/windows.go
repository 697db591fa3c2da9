//go:build withcv
// +build withcv

/*
DESCRIPTION
  windows.go provides an OpenCV window Sink with trackbar threshold controls.

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
	"fmt"
	"image"
	"time"

	"go.uber.org/multierr"
	"gocv.io/x/gocv"

	"github.com/ausocean/hsvtrack/filter"
)

// Windows is a Sink showing each view in its own window, with one trackbar
// per threshold parameter in the control window.
type Windows struct {
	controls *gocv.Window
	bars     []*gocv.Trackbar // Parallel to filter.Params.
	original *gocv.Window
	mask     *gocv.Window
	masked   *gocv.Window
	combined *gocv.Window
}

// NewWindows opens the windows and sets the trackbars to r.
func NewWindows(r filter.Range) (*Windows, error) {
	w := &Windows{
		controls: gocv.NewWindow(WindowControls),
		original: gocv.NewWindow(WindowOriginal),
		mask:     gocv.NewWindow(WindowMask),
		masked:   gocv.NewWindow(WindowMasked),
		combined: gocv.NewWindow(WindowCombined),
	}
	for _, p := range filter.Params {
		tb := w.controls.CreateTrackbar(p.Name, p.Max)
		tb.SetPos(*p.Field(&r))
		w.bars = append(w.bars, tb)
	}
	return w, nil
}

// Show implements Sink.
func (w *Windows) Show(res *filter.Result) error {
	views := []struct {
		name string
		win  *gocv.Window
		img  image.Image
	}{
		{WindowOriginal, w.original, res.Original},
		{WindowMask, w.mask, res.Mask},
		{WindowMasked, w.masked, res.Masked},
		{WindowCombined, w.combined, res.Combined},
	}
	for _, v := range views {
		err := show(v.win, v.img)
		if err != nil {
			return fmt.Errorf("cannot show %s: %w", v.name, err)
		}
	}
	return nil
}

func show(win *gocv.Window, img image.Image) error {
	var (
		m   gocv.Mat
		err error
	)
	switch im := img.(type) {
	case *image.Gray:
		m, err = gocv.ImageGrayToMatGray(im)
	default:
		m, err = gocv.ImageToMatRGB(img)
	}
	if err != nil {
		return err
	}
	defer m.Close()
	win.IMShow(m)
	return nil
}

// WaitKey implements Sink.
func (w *Windows) WaitKey(d time.Duration) int {
	ms := int(d / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	return w.controls.WaitKey(ms)
}

// Range returns the range selected by the trackbars.
func (w *Windows) Range() filter.Range {
	var r filter.Range
	for i, p := range filter.Params {
		*p.Field(&r) = w.bars[i].GetPos()
	}
	return r
}

// Close closes every window.
func (w *Windows) Close() error {
	var err error
	for _, win := range []*gocv.Window{w.original, w.mask, w.masked, w.combined, w.controls} {
		err = multierr.Append(err, win.Close())
	}
	return err
}
