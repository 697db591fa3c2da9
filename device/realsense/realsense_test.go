/*
DESCRIPTION
  realsense_test.go tests configuration of the RealSense FrameSource.

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
	"testing"
	"time"

	"github.com/ausocean/hsvtrack/device"
	"github.com/ausocean/hsvtrack/tracker/config"
	"github.com/ausocean/utils/logging"
)

func TestColorResolution(t *testing.T) {
	tests := []struct {
		productLine string
		cfg         config.Config
		wantW       uint
		wantH       uint
	}{
		{productLine: "D400", wantW: 640, wantH: 480},
		{productLine: "L500", wantW: 960, wantH: 540},
		{productLine: "", wantW: 640, wantH: 480},
		{productLine: "L500", cfg: config.Config{ColorWidth: 1280, ColorHeight: 720}, wantW: 1280, wantH: 720},
		{productLine: "D400", cfg: config.Config{ColorWidth: 1280}, wantW: 640, wantH: 480},
	}

	for i, test := range tests {
		w, h := ColorResolution(test.productLine, test.cfg)
		if w != test.wantW || h != test.wantH {
			t.Errorf("unexpected resolution for test %d, got: %dx%d, want: %dx%d", i, w, h, test.wantW, test.wantH)
		}
	}
}

func TestSet(t *testing.T) {
	r := New((*logging.TestLogger)(t))

	err := r.Set(config.Config{})
	var me device.MultiError
	if !errors.As(err, &me) {
		t.Fatalf("expected MultiError for empty config, got: %v", err)
	}
	if len(me) != 4 {
		t.Errorf("unexpected number of errors, got: %d, want: 4", len(me))
	}
	if r.cfg.DepthWidth != defaultDepthWidth || r.cfg.DepthHeight != defaultDepthHeight || r.cfg.FrameRate != defaultFrameRate {
		t.Errorf("defaults not applied: %+v", r.cfg)
	}

	err = r.Set(config.Config{DepthWidth: 848, DepthHeight: 480, FrameRate: 15, FrameTimeout: 250})
	if err != nil {
		t.Errorf("did not expect error for full config: %v", err)
	}
	if r.timeout != 250*time.Millisecond {
		t.Errorf("unexpected timeout: %v", r.timeout)
	}
}

func TestStopOnce(t *testing.T) {
	r := New((*logging.TestLogger)(t))
	for i := 0; i < 2; i++ {
		if err := r.Stop(); err != nil {
			t.Errorf("unexpected error from stop %d: %v", i, err)
		}
	}
	if r.IsRunning() {
		t.Error("device running after stop")
	}
	if _, err := r.Sensors(); err == nil {
		t.Error("expected error using a released device")
	}
	if _, _, err := r.Next(); !errors.Is(err, device.ErrNotRunning) {
		t.Errorf("expected ErrNotRunning, got: %v", err)
	}
}

func TestClassify(t *testing.T) {
	errTest := errors.New("test error")
	yes := func() (bool, error) { return true, nil }
	no := func() (bool, error) { return false, nil }
	fail := func() (bool, error) { return false, errTest }
	unreached := func() (bool, error) {
		t.Error("video test called after depth result")
		return false, nil
	}

	tests := []struct {
		isDepth, isVideo func() (bool, error)
		want             frameKind
		wantErr          bool
	}{
		{isDepth: yes, isVideo: unreached, want: kindDepth},
		{isDepth: no, isVideo: yes, want: kindColor},
		{isDepth: no, isVideo: no, want: kindOther},
		{isDepth: fail, isVideo: unreached, want: kindOther, wantErr: true},
		{isDepth: no, isVideo: fail, want: kindOther, wantErr: true},
	}

	for i, test := range tests {
		got, err := classify(test.isDepth, test.isVideo)
		if test.wantErr != (err != nil) {
			t.Errorf("unexpected error for test %d: %v", i, err)
		}
		if test.wantErr && !errors.Is(err, errTest) {
			t.Errorf("error for test %d does not wrap cause: %v", i, err)
		}
		if got != test.want {
			t.Errorf("unexpected kind for test %d, got: %d, want: %d", i, got, test.want)
		}
	}
}
