/*
DESCRIPTION
  stats.go summarises the depth of the region selected by a mask.

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
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DepthStats describes the raw depth samples under a mask. Zero samples are
// invalid depth readings and are not counted.
type DepthStats struct {
	Samples int
	Mean    float64
	Median  float64
}

// TargetDepth returns statistics of the non-zero depth samples at in range
// mask cells. ok is false if there are none.
func TargetDepth(depth *image.Gray16, mask *image.Gray) (s DepthStats, ok bool) {
	b := depth.Bounds().Intersect(mask.Bounds())
	var vals []float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if mask.GrayAt(x, y).Y == maskOut {
				continue
			}
			d := depth.Gray16At(x, y).Y
			if d == 0 {
				continue
			}
			vals = append(vals, float64(d))
		}
	}
	if len(vals) == 0 {
		return DepthStats{}, false
	}

	sort.Float64s(vals)
	return DepthStats{
		Samples: len(vals),
		Mean:    stat.Mean(vals, nil),
		Median:  stat.Quantile(0.5, stat.Empirical, vals, nil),
	}, true
}
