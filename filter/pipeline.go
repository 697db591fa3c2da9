/*
DESCRIPTION
  pipeline.go provides Pipeline, which runs a frame pair through the HSV range
  filter and produces the views shown to the user.

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
	"fmt"
	"image"

	"github.com/ausocean/hsvtrack/tracker/config"
)

// Result holds the output of one pass through a Pipeline.
type Result struct {
	Original    *image.RGBA // Colour frame at working size.
	Mask        *image.Gray // In range cells of Original.
	Masked      *image.RGBA // Original with out of range pixels blacked out, and the centroid marker.
	Combined    *image.RGBA // Colour and depth side by side.
	Centroid    image.Point
	HasCentroid bool
	Depth       DepthStats
	HasDepth    bool
}

// Pipeline processes depth and colour frame pairs for a given threshold range.
type Pipeline struct {
	masker Masker
	work   image.Point
	alpha  float64
}

// NewPipeline returns a Pipeline using m to build masks. Frames are resized
// to the configured working size unless KeepSize is set.
func NewPipeline(m Masker, c config.Config) *Pipeline {
	p := &Pipeline{masker: m, alpha: c.DepthScale}
	if !c.KeepSize {
		p.work = image.Pt(int(c.WorkWidth), int(c.WorkHeight))
	}
	if p.alpha == 0 {
		p.alpha = DefaultDepthScale
	}
	return p
}

// Process filters the colour frame by r and composes the views. The depth
// frame only contributes to the combined view and depth statistics.
func (p *Pipeline) Process(depth *image.Gray16, color *image.RGBA, r Range) (*Result, error) {
	depth = ResizeDepth(depth, p.work)
	color = Resize(color, p.work)

	mask, err := p.masker.BuildMask(color, r)
	if err != nil {
		return nil, fmt.Errorf("could not build mask: %w", err)
	}
	c, ok, err := p.masker.Centroid(mask)
	if err != nil {
		return nil, fmt.Errorf("could not find centroid: %w", err)
	}

	res := &Result{
		Original:    color,
		Mask:        mask,
		Masked:      ApplyMask(color, mask),
		Centroid:    c,
		HasCentroid: ok,
	}
	if ok {
		DrawCentroid(res.Masked, c)
	}

	depthColor := Colorize(depth, p.alpha)
	dsize := depth.Bounds().Size()
	if dsize != color.Bounds().Size() {
		res.Combined = HStack(ResizeArea(color, dsize), depthColor)
		return res, nil
	}

	res.Depth, res.HasDepth = TargetDepth(depth, mask)
	res.Combined = HStack(res.Masked, ApplyMask(depthColor, mask))
	return res, nil
}
