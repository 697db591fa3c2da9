//go:build withcv
// +build withcv

/*
DESCRIPTION
  masker_cv.go provides an OpenCV implementation of Masker.

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
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// NewMasker returns the OpenCV Masker.
func NewMasker() Masker { return &CV{} }

// CV is a Masker that uses gocv for colour conversion, thresholding and
// moments.
type CV struct{}

// BuildMask implements Masker.
func (m *CV) BuildMask(img *image.RGBA, r Range) (*image.Gray, error) {
	// ImageToMatRGB stores channels in BGR order.
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("could not convert image: %w", err)
	}
	defer src.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(src, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.NewMat()
	defer mask.Close()
	lb := gocv.NewScalar(float64(r.HueLow), float64(r.SatLow), float64(r.ValLow), 0)
	ub := gocv.NewScalar(float64(r.HueHigh), float64(r.SatHigh), float64(r.ValHigh), 0)
	gocv.InRangeWithScalar(hsv, lb, ub, &mask)

	out, err := mask.ToImage()
	if err != nil {
		return nil, fmt.Errorf("could not convert mask: %w", err)
	}
	g, ok := out.(*image.Gray)
	if !ok {
		return nil, errors.New("mask is not single channel")
	}
	return g, nil
}

// Centroid implements Masker.
func (m *CV) Centroid(mask *image.Gray) (image.Point, bool, error) {
	mat, err := gocv.ImageGrayToMatGray(mask)
	if err != nil {
		return image.Point{}, false, fmt.Errorf("could not convert mask: %w", err)
	}
	defer mat.Close()

	mo := gocv.Moments(mat, false)
	if mo["m00"] == 0 {
		return image.Point{}, false, nil
	}
	return image.Pt(int(mo["m10"]/mo["m00"]), int(mo["m01"]/mo["m00"])), true, nil
}

// Close implements Masker.
func (m *CV) Close() error { return nil }
