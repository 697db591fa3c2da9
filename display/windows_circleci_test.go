//go:build !withcv
// +build !withcv

/*
DESCRIPTION
  windows_circleci_test.go tests the fallback to a headless display when
  built without OpenCV.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package display

import (
	"errors"
	"testing"

	"github.com/ausocean/hsvtrack/filter"
	"github.com/ausocean/hsvtrack/tracker/config"
	"github.com/ausocean/utils/logging"
)

func TestNewFallback(t *testing.T) {
	if _, err := NewWindows(filter.DefaultRange); !errors.Is(err, ErrNoDisplay) {
		t.Fatalf("expected ErrNoDisplay, got: %v", err)
	}

	s, err := New(config.Config{Logger: (*logging.TestLogger)(t)})
	if err != nil {
		t.Fatalf("could not create sink: %v", err)
	}
	if _, ok := s.(*Headless); !ok {
		t.Errorf("expected headless fallback, got: %T", s)
	}
}
