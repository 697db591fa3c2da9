/*
DESCRIPTION
  file.go provides an implementation of the FrameSource interface for
  recordings of frame pairs.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package file provides an implementation of FrameSource for recordings.
//
// A recording is a directory of PNG files named NNNNNN_depth.png (16-bit
// grayscale depth) and NNNNNN_color.png (colour), where NNNNNN is the index of
// the pair. Pairs are replayed in index order.
package file

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/image/draw"

	"github.com/ausocean/hsvtrack/device"
	"github.com/ausocean/hsvtrack/tracker/config"
	"github.com/ausocean/utils/logging"
)

// Used to indicate package in logging.
const pkg = "file: "

// Recording file name suffixes.
const (
	depthSuffix = "_depth.png"
	colorSuffix = "_color.png"
)

var errNoPath = errors.New("input path unset")

// Recording is an implementation of the FrameSource interface for a directory
// of recorded frame pairs.
type Recording struct {
	path      string
	loop      bool
	delay     time.Duration
	indices   []string
	next      int
	last      time.Time
	isRunning bool
	log       logging.Logger
	set       bool
	mu        sync.Mutex
}

// New returns a new Recording.
func New(l logging.Logger) *Recording { return &Recording{log: l} }

// NewWith returns a new Recording with required params provided i.e. the Set
// method does not need to be called.
func NewWith(l logging.Logger, path string, loop bool) *Recording {
	return &Recording{log: l, path: path, loop: loop, set: true}
}

// Name returns the name of the device.
func (r *Recording) Name() string {
	return "File"
}

// Set uses the InputPath, Loop and FileFPS fields of the config.
func (r *Recording) Set(c config.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.InputPath == "" {
		return errNoPath
	}
	r.path = c.InputPath
	r.loop = c.Loop
	r.delay = 0
	if c.FileFPS != 0 {
		r.delay = time.Second / time.Duration(c.FileFPS)
	}
	r.set = true
	return nil
}

// Sensors reports a depth sensor if the recording holds depth frames and a
// colour sensor if it holds colour frames.
func (r *Recording) Sensors() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.set {
		return nil, errors.New("recording has not been set with config")
	}
	depth, err := filepath.Glob(filepath.Join(r.path, "*"+depthSuffix))
	if err != nil {
		return nil, fmt.Errorf("could not list depth frames: %w", err)
	}
	color, err := filepath.Glob(filepath.Join(r.path, "*"+colorSuffix))
	if err != nil {
		return nil, fmt.Errorf("could not list colour frames: %w", err)
	}

	sensors := []string{}
	if len(depth) != 0 {
		sensors = append(sensors, device.SensorDepth)
	}
	if len(color) != 0 {
		sensors = append(sensors, device.SensorColor)
	}
	return sensors, nil
}

// ProductLine returns "File".
func (r *Recording) ProductLine() (string, error) { return "File", nil }

// Start indexes the recording. Pairs are keyed by their depth frames.
func (r *Recording) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.set {
		return errors.New("recording has not been set with config")
	}
	depth, err := filepath.Glob(filepath.Join(r.path, "*"+depthSuffix))
	if err != nil {
		return fmt.Errorf("could not list depth frames: %w", err)
	}
	if len(depth) == 0 {
		return fmt.Errorf("no depth frames in %s", r.path)
	}

	r.indices = r.indices[:0]
	for _, d := range depth {
		r.indices = append(r.indices, strings.TrimSuffix(filepath.Base(d), depthSuffix))
	}
	sort.Strings(r.indices)
	r.next = 0
	r.isRunning = true
	r.log.Info(pkg+"recording started", "path", r.path, "pairs", len(r.indices))
	return nil
}

// Next returns the next recorded pair. A missing colour frame is reported as
// an unavailable pair. At the end of the recording io.EOF is returned, unless
// the recording loops.
func (r *Recording) Next() (device.Pair, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.isRunning {
		return device.Pair{}, false, device.ErrNotRunning
	}

	if r.next >= len(r.indices) {
		if !r.loop {
			return device.Pair{}, false, io.EOF
		}
		r.log.Info(pkg + "looping recording")
		r.next = 0
	}
	idx := r.indices[r.next]
	r.next++

	r.pace()

	depth, err := readDepth(filepath.Join(r.path, idx+depthSuffix))
	if err != nil {
		return device.Pair{}, false, err
	}

	color, err := readColor(filepath.Join(r.path, idx+colorSuffix))
	if errors.Is(err, os.ErrNotExist) {
		r.log.Debug(pkg+"no colour frame for pair", "index", idx)
		return device.Pair{Depth: depth, Time: time.Now()}, false, nil
	}
	if err != nil {
		return device.Pair{}, false, err
	}

	return device.Pair{Depth: depth, Color: color, Time: time.Now()}, true, nil
}

// pace sleeps so that pairs are delivered at the configured FileFPS.
func (r *Recording) pace() {
	if r.delay == 0 {
		return
	}
	if !r.last.IsZero() {
		if d := r.delay - time.Since(r.last); d > 0 {
			time.Sleep(d)
		}
	}
	r.last = time.Now()
}

// Stop ends replay; further calls to Next fail.
func (r *Recording) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.isRunning = false
	return nil
}

// IsRunning is used to determine if the recording is being replayed.
func (r *Recording) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isRunning
}

func readDepth(path string) (*image.Gray16, error) {
	img, err := decode(path)
	if err != nil {
		return nil, err
	}
	if g, ok := img.(*image.Gray16); ok {
		return g, nil
	}
	g := image.NewGray16(img.Bounds())
	draw.Draw(g, g.Bounds(), img, img.Bounds().Min, draw.Src)
	return g, nil
}

func readColor(path string) (*image.RGBA, error) {
	img, err := decode(path)
	if err != nil {
		return nil, err
	}
	if c, ok := img.(*image.RGBA); ok {
		return c, nil
	}
	c := image.NewRGBA(img.Bounds())
	draw.Draw(c, c.Bounds(), img, img.Bounds().Min, draw.Src)
	return c, nil
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open frame: %w", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode frame %s: %w", path, err)
	}
	return img, nil
}
