/*
DESCRIPTION
  compose.go provides resizing and side by side composition of frames.

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

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Resize returns img scaled to size with bilinear interpolation. img is
// returned unchanged if it already has that size or size is empty.
func Resize(img *image.RGBA, size image.Point) *image.RGBA {
	if size.X <= 0 || size.Y <= 0 || img.Bounds().Size() == size {
		return img
	}
	dst := image.NewRGBA(image.Rectangle{Max: size})
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// ResizeDepth is Resize for 16-bit depth frames.
func ResizeDepth(img *image.Gray16, size image.Point) *image.Gray16 {
	if size.X <= 0 || size.Y <= 0 || img.Bounds().Size() == size {
		return img
	}
	dst := image.NewGray16(image.Rectangle{Max: size})
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// ResizeArea returns img scaled to size by averaging source pixels under each
// destination pixel.
func ResizeArea(img image.Image, size image.Point) *image.RGBA {
	n := imaging.Resize(img, size.X, size.Y, imaging.Box)
	dst := image.NewRGBA(n.Bounds())
	draw.Draw(dst, dst.Bounds(), n, n.Bounds().Min, draw.Src)
	return dst
}

// HStack places left and right side by side. The result is as tall as the
// taller image; uncovered pixels are left transparent.
func HStack(left, right image.Image) *image.RGBA {
	lb, rb := left.Bounds(), right.Bounds()
	h := lb.Dy()
	if rb.Dy() > h {
		h = rb.Dy()
	}
	dst := image.NewRGBA(image.Rect(0, 0, lb.Dx()+rb.Dx(), h))
	draw.Draw(dst, image.Rect(0, 0, lb.Dx(), lb.Dy()), left, lb.Min, draw.Src)
	draw.Draw(dst, image.Rect(lb.Dx(), 0, lb.Dx()+rb.Dx(), rb.Dy()), right, rb.Min, draw.Src)
	return dst
}

// Clone returns a copy of img with its origin at (0, 0).
func Clone(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
