/*
DESCRIPTION
  depth.go provides colourisation of raw depth frames.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package filter

import (
	"image"
	"image/color"
	"math"
)

// DefaultDepthScale maps millimetre depth onto 8 bits so that 8.5 m saturates.
const DefaultDepthScale = 0.03

// jet is the JET palette indexed by 8-bit intensity.
var jet = func() (lut [256]color.RGBA) {
	for i := range lut {
		lut[i] = color.RGBA{
			R: jetChannel(uint8(i), 3),
			G: jetChannel(uint8(i), 2),
			B: jetChannel(uint8(i), 1),
			A: 0xff,
		}
	}
	return
}()

// jetChannel evaluates 255*clamp(1.5-|4v/255-k|, 0, 1), rounding half up. It
// is computed as (765-|8v-510k|)/2 to stay in integers.
func jetChannel(v uint8, k int) uint8 {
	d := 8*int(v) - 510*k
	if d < 0 {
		d = -d
	}
	n := 765 - d
	switch {
	case n <= 0:
		return 0
	case n >= 510:
		return 0xff
	}
	return uint8((n + 1) / 2)
}

// Jet returns the JET palette colour for v: dark blue at 0 through cyan,
// yellow and red to dark red at 255.
func Jet(v uint8) color.RGBA { return jet[v] }

// ScaleDepth scales a raw depth sample by alpha and saturates it to 8 bits,
// rounding half to even.
func ScaleDepth(raw uint16, alpha float64) uint8 {
	v := math.RoundToEven(math.Abs(float64(raw) * alpha))
	if v > 0xff {
		return 0xff
	}
	return uint8(v)
}

// Colorize scales each depth sample by alpha and maps it through the JET
// palette.
func Colorize(depth *image.Gray16, alpha float64) *image.RGBA {
	b := depth.Bounds()
	dst := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := jet[ScaleDepth(depth.Gray16At(x, y).Y, alpha)]
			i := dst.PixOffset(x, y)
			dst.Pix[i] = c.R
			dst.Pix[i+1] = c.G
			dst.Pix[i+2] = c.B
			dst.Pix[i+3] = c.A
		}
	}
	return dst
}
