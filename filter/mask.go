/*
DESCRIPTION
  mask.go provides HSV conversion, range thresholding and mask application.

AUTHORS
  Ella Pietraroia <ella@ausocean.org>

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

	"github.com/lucasb-eyer/go-colorful"
)

// Mask cell values.
const (
	maskOut = 0x00
	maskIn  = 0xff
)

// HSV converts c to 8-bit hue, saturation and value using the OpenCV scaling:
// hue is halved to fit [0, 180) and wraps to 0, saturation and value span
// [0, 255].
func HSV(c color.RGBA) (h, s, v uint8) {
	hf, sf, vf := colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hsv()
	hr := math.Round(hf / 2)
	if hr >= 180 {
		hr -= 180
	}
	return uint8(hr), uint8(math.Round(sf * 255)), uint8(math.Round(vf * 255))
}

// BuildMask returns a mask the size of img with 255 where the HSV value of the
// pixel lies in r on every channel and 0 elsewhere.
func BuildMask(img *image.RGBA, r Range) *image.Gray {
	b := img.Bounds()
	mask := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y)
			h, s, v := HSV(color.RGBA{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2]})
			if r.Contains(h, s, v) {
				mask.Pix[mask.PixOffset(x, y)] = maskIn
			}
		}
	}
	return mask
}

// ApplyMask returns a copy of img keeping pixels where mask is non-zero and
// setting the rest to opaque black. Pixels outside the mask bounds are
// treated as out of range. Applying the same mask again changes nothing.
func ApplyMask(img *image.RGBA, mask *image.Gray) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y)
			if mask.GrayAt(x, y).Y != maskOut {
				copy(dst.Pix[i:i+4], img.Pix[i:i+4])
				continue
			}
			dst.Pix[i+3] = 0xff
		}
	}
	return dst
}

// Count returns the number of in range cells of mask.
func Count(mask *image.Gray) int {
	var n int
	b := mask.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := mask.Pix[mask.PixOffset(b.Min.X, y):mask.PixOffset(b.Max.X, y)]
		for _, v := range row {
			if v != maskOut {
				n++
			}
		}
	}
	return n
}
