/*
DESCRIPTION
  file_test.go tests the recording FrameSource.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package file

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ausocean/hsvtrack/device"
	"github.com/ausocean/hsvtrack/tracker/config"
	"github.com/ausocean/utils/logging"
)

// writeRecording writes n depth frames to dir, and colour frames for the
// indices in withColor.
func writeRecording(t *testing.T, dir string, n int, withColor map[int]bool) {
	t.Helper()
	for i := 0; i < n; i++ {
		d := image.NewGray16(image.Rect(0, 0, 4, 3))
		d.SetGray16(1, 1, color.Gray16{Y: uint16(1000 * (i + 1))})
		writePNG(t, filepath.Join(dir, frameName(i, depthSuffix)), d)

		if !withColor[i] {
			continue
		}
		c := image.NewRGBA(image.Rect(0, 0, 4, 3))
		c.SetRGBA(2, 1, color.RGBA{R: 255, A: 255})
		writePNG(t, filepath.Join(dir, frameName(i, colorSuffix)), c)
	}
}

func frameName(i int, suffix string) string {
	return fmt.Sprintf("%06d", i) + suffix
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("could not create %s: %v", path, err)
	}
	defer f.Close()
	err = png.Encode(f, img)
	if err != nil {
		t.Fatalf("could not encode %s: %v", path, err)
	}
}

func TestIsRunning(t *testing.T) {
	dir := t.TempDir()
	writeRecording(t, dir, 1, map[int]bool{0: true})

	d := New((*logging.TestLogger)(t))

	err := d.Set(config.Config{InputPath: dir})
	if err != nil {
		t.Fatalf("could not set device: %v", err)
	}

	err = d.Start()
	if err != nil {
		t.Fatalf("could not start device %v", err)
	}

	if !d.IsRunning() {
		t.Error("device isn't running, when it should be")
	}

	err = d.Stop()
	if err != nil {
		t.Error(err.Error())
	}

	if d.IsRunning() {
		t.Error("device is running, when it should not be")
	}
}

func TestSetNoPath(t *testing.T) {
	d := New((*logging.TestLogger)(t))
	if err := d.Set(config.Config{}); err == nil {
		t.Error("expected error for unset input path")
	}
}

func TestSensors(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		withColor map[int]bool
		want      []string
	}{
		{name: "empty", n: 0, want: []string{}},
		{name: "depth only", n: 2, want: []string{device.SensorDepth}},
		{name: "depth and colour", n: 2, withColor: map[int]bool{1: true}, want: []string{device.SensorDepth, device.SensorColor}},
	}

	for _, test := range tests {
		dir := t.TempDir()
		writeRecording(t, dir, test.n, test.withColor)
		d := NewWith((*logging.TestLogger)(t), dir, false)
		got, err := d.Sensors()
		if err != nil {
			t.Fatalf("did not expect error for %s: %v", test.name, err)
		}
		if !cmp.Equal(got, test.want) {
			t.Errorf("unexpected sensors for %s\ngot: %v\nwant: %v", test.name, got, test.want)
		}
	}
}

func TestNext(t *testing.T) {
	dir := t.TempDir()
	writeRecording(t, dir, 3, map[int]bool{0: true, 2: true})

	d := NewWith((*logging.TestLogger)(t), dir, false)
	err := d.Start()
	if err != nil {
		t.Fatalf("could not start recording: %v", err)
	}
	defer d.Stop()

	wantOK := []bool{true, false, true}
	for i, want := range wantOK {
		p, ok, err := d.Next()
		if err != nil {
			t.Fatalf("did not expect error for pair %d: %v", i, err)
		}
		if ok != want {
			t.Errorf("unexpected ok for pair %d, got: %v, want: %v", i, ok, want)
		}
		if got := p.Depth.Gray16At(1, 1).Y; got != uint16(1000*(i+1)) {
			t.Errorf("unexpected depth for pair %d, got: %d", i, got)
		}
		if ok && p.Color.RGBAAt(2, 1) != (color.RGBA{R: 255, A: 255}) {
			t.Errorf("unexpected colour for pair %d: %v", i, p.Color.RGBAAt(2, 1))
		}
	}

	_, _, err = d.Next()
	if err != io.EOF {
		t.Errorf("expected io.EOF at end of recording, got: %v", err)
	}
}

func TestNextLoop(t *testing.T) {
	dir := t.TempDir()
	writeRecording(t, dir, 2, map[int]bool{0: true, 1: true})

	d := NewWith((*logging.TestLogger)(t), dir, true)
	err := d.Start()
	if err != nil {
		t.Fatalf("could not start recording: %v", err)
	}
	defer d.Stop()

	for i := 0; i < 5; i++ {
		p, ok, err := d.Next()
		if err != nil || !ok {
			t.Fatalf("unexpected result for read %d, ok: %v, err: %v", i, ok, err)
		}
		if got, want := p.Depth.Gray16At(1, 1).Y, uint16(1000*(i%2+1)); got != want {
			t.Errorf("unexpected depth for read %d, got: %d, want: %d", i, got, want)
		}
	}
}
