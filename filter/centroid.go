/*
DESCRIPTION
  centroid.go locates the centroid of a mask from its spatial moments and
  marks it on an image.

AUTHORS
  Scott Barnard <scott@ausocean.org>

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

	"github.com/fogleman/gg"
)

// Centroid marker geometry.
const (
	markerRadius  = 5
	markerLabel   = "centroid"
	labelOffset   = 25
	markerOpacity = 1.0
)

// Moments holds the zeroth and first order spatial moments of a mask:
// M00 = Σ m(x,y), M10 = Σ x·m(x,y), M01 = Σ y·m(x,y).
type Moments struct {
	M00, M10, M01 float64
}

// ComputeMoments returns the spatial moments of mask, weighting each cell by
// its value.
func ComputeMoments(mask *image.Gray) Moments {
	var m Moments
	b := mask.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := float64(mask.Pix[mask.PixOffset(x, y)])
			if v == 0 {
				continue
			}
			m.M00 += v
			m.M10 += float64(x) * v
			m.M01 += float64(y) * v
		}
	}
	return m
}

// Centroid returns (M10/M00, M01/M00) truncated to integers. ok is false when
// the mask has no in range cells.
func Centroid(mask *image.Gray) (c image.Point, ok bool) {
	m := ComputeMoments(mask)
	if m.M00 == 0 {
		return image.Point{}, false
	}
	return image.Pt(int(m.M10/m.M00), int(m.M01/m.M00)), true
}

// DrawCentroid draws a filled white circle at c with a "centroid" label above
// and to the left of it.
func DrawCentroid(img *image.RGBA, c image.Point) {
	dc := gg.NewContextForRGBA(img)
	dc.SetRGBA(1, 1, 1, markerOpacity)
	dc.DrawCircle(float64(c.X), float64(c.Y), markerRadius)
	dc.Fill()
	dc.DrawString(markerLabel, float64(c.X-labelOffset), float64(c.Y-labelOffset))
}
