/*
NAME
  filter.go

AUTHORS
  Ella Pietraroia <ella@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package filter provides the HSV range filter applied to depth camera frames:
// building a mask from a threshold range, applying it to colour and colourised
// depth frames, and locating the centroid of the mask.
package filter

import (
	"image"

	"github.com/ausocean/hsvtrack/tracker/config"
)

// Range holds inclusive lower and upper bounds for each HSV channel. Hue is in
// [0, 180] and saturation and value are in [0, 255]. A low bound above its
// high bound is valid and matches nothing.
type Range struct {
	HueLow, HueHigh int
	SatLow, SatHigh int
	ValLow, ValHigh int
}

// Contains returns true if each channel lies within its bounds.
func (r Range) Contains(h, s, v uint8) bool {
	return int(h) >= r.HueLow && int(h) <= r.HueHigh &&
		int(s) >= r.SatLow && int(s) <= r.SatHigh &&
		int(v) >= r.ValLow && int(v) <= r.ValHigh
}

// Param describes one adjustable threshold parameter.
type Param struct {
	Name  string            // Trackbar and config key.
	Max   int               // Inclusive upper bound; the lower bound is 0.
	Field func(*Range) *int // Field of Range the parameter adjusts.
}

// Params are the six threshold parameters in trackbar order.
var Params = []Param{
	{Name: config.KeyHueLow, Max: 180, Field: func(r *Range) *int { return &r.HueLow }},
	{Name: config.KeyHueHigh, Max: 180, Field: func(r *Range) *int { return &r.HueHigh }},
	{Name: config.KeySatLow, Max: 255, Field: func(r *Range) *int { return &r.SatLow }},
	{Name: config.KeySatHigh, Max: 255, Field: func(r *Range) *int { return &r.SatHigh }},
	{Name: config.KeyValLow, Max: 255, Field: func(r *Range) *int { return &r.ValLow }},
	{Name: config.KeyValHigh, Max: 255, Field: func(r *Range) *int { return &r.ValHigh }},
}

// Threshold presets.
var presets = map[string]Range{
	config.PresetPants: {HueLow: 0, HueHigh: 180, SatLow: 121, SatHigh: 255, ValLow: 184, ValHigh: 255},
	config.PresetLid:   {HueLow: 0, HueHigh: 4, SatLow: 160, SatHigh: 255, ValLow: 29, ValHigh: 128},
}

// DefaultRange is the range the trackbars start at when nothing is configured.
var DefaultRange = presets[config.PresetPants]

// Preset returns the named preset range.
func Preset(name string) (Range, bool) {
	r, ok := presets[name]
	return r, ok
}

// RangeFrom returns the initial range for a config: the config's preset with
// any explicitly configured thresholds applied on top.
func RangeFrom(c config.Config) Range {
	r, ok := presets[c.Preset]
	if !ok {
		r = DefaultRange
	}
	for _, p := range Params {
		if v, ok := c.Thresholds[p.Name]; ok {
			*p.Field(&r) = clamp(v, 0, p.Max)
		}
	}
	return r
}

func clamp(v, lo, hi int) int {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}

// Masker builds masks and locates their centroids. Implementations are the
// pure Go Native masker and, when built with the withcv tag, an OpenCV masker.
type Masker interface {
	// BuildMask returns a mask the size of img holding 255 where the pixel's
	// HSV value is in r and 0 elsewhere.
	BuildMask(img *image.RGBA, r Range) (*image.Gray, error)

	// Centroid returns the centroid of mask, ok is false if mask is empty.
	Centroid(mask *image.Gray) (c image.Point, ok bool, err error)

	// Close frees any resources held by the masker.
	Close() error
}

// Native is the pure Go Masker.
type Native struct{}

// BuildMask implements Masker using BuildMask.
func (Native) BuildMask(img *image.RGBA, r Range) (*image.Gray, error) { return BuildMask(img, r), nil }

// Centroid implements Masker using Centroid.
func (Native) Centroid(mask *image.Gray) (image.Point, bool, error) {
	c, ok := Centroid(mask)
	return c, ok, nil
}

// Close implements Masker.
func (Native) Close() error { return nil }
