//go:build !withrealsense
// +build !withrealsense

/*
DESCRIPTION
  Replaces the librealsense2 binding when the SDK is not installed, so that
  the rest of the module builds and tests without it.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package realsense

import (
	"errors"
	"time"

	"github.com/ausocean/hsvtrack/device"
)

// ErrNoSDK is returned by every RealSense operation in builds without the
// withrealsense tag.
var ErrNoSDK = errors.New("built without librealsense2 support, rebuild with -tags withrealsense")

type handle struct{}

func openHandle() (*handle, error) { return nil, ErrNoSDK }

func (h *handle) sensors() ([]string, error) { return nil, ErrNoSDK }

func (h *handle) productLine() (string, error) { return "", ErrNoSDK }

func (h *handle) start(s streams) error { return ErrNoSDK }

func (h *handle) waitForPair(timeout time.Duration) (device.Pair, bool, error) {
	return device.Pair{}, false, ErrNoSDK
}

func (h *handle) close() error { return nil }
