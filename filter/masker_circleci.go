//go:build !withcv
// +build !withcv

/*
DESCRIPTION
  Replaces the OpenCV masker when OpenCV is not installed, such as on
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

package filter

// NewMasker returns the pure Go Masker.
func NewMasker() Masker { return Native{} }
