/*
NAME
  tracker_test.go

DESCRIPTION
  tracker_test.go tests the lifecycle of a tracking session.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package tracker

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"testing"
	"time"

	"go.uber.org/multierr"

	"github.com/ausocean/hsvtrack/device"
	"github.com/ausocean/hsvtrack/display"
	"github.com/ausocean/hsvtrack/filter"
	"github.com/ausocean/hsvtrack/tracker/config"
	"github.com/ausocean/utils/logging"
)

var (
	errAcquire = errors.New("acquisition failed")
	errStop    = errors.New("stop failed")
)

// step is one scripted result of Next.
type step struct {
	pair device.Pair
	ok   bool
	err  error
}

// scriptedSource is a FrameSource returning a fixed sequence of results
// followed by io.EOF.
type scriptedSource struct {
	sensors []string
	steps   []step
	i       int
	running bool
	starts  int
	stops   int
	setErr  error
	stopErr error
}

func (s *scriptedSource) Name() string                 { return "Scripted" }
func (s *scriptedSource) Set(c config.Config) error    { return s.setErr }
func (s *scriptedSource) Sensors() ([]string, error)   { return s.sensors, nil }
func (s *scriptedSource) ProductLine() (string, error) { return "D400", nil }
func (s *scriptedSource) IsRunning() bool              { return s.running }

func (s *scriptedSource) Start() error {
	s.starts++
	s.running = true
	return nil
}

func (s *scriptedSource) Next() (device.Pair, bool, error) {
	if s.i >= len(s.steps) {
		return device.Pair{}, false, io.EOF
	}
	st := s.steps[s.i]
	s.i++
	return st.pair, st.ok, st.err
}

func (s *scriptedSource) Stop() error {
	s.stops++
	s.running = false
	return s.stopErr
}

// fakeSink records results and returns scripted key presses.
type fakeSink struct {
	r       filter.Range
	keys    []int
	results []*filter.Result
	closes  int
	panics  bool
}

func (f *fakeSink) Show(res *filter.Result) error {
	if f.panics {
		panic("display failure")
	}
	f.results = append(f.results, res)
	return nil
}

func (f *fakeSink) WaitKey(d time.Duration) int {
	if len(f.keys) == 0 {
		return display.NoKey
	}
	k := f.keys[0]
	f.keys = f.keys[1:]
	return k
}

func (f *fakeSink) Range() filter.Range { return f.r }

func (f *fakeSink) Close() error {
	f.closes++
	return nil
}

// sinkFunc returns a SinkFunc that returns f and counts calls in n.
func sinkFunc(f *fakeSink, n *int) SinkFunc {
	return func(config.Config) (display.Sink, error) {
		*n++
		return f, nil
	}
}

// redPair returns a complete pair of solid red colour with 1000 mm depth.
func redPair() device.Pair {
	r := image.Rect(0, 0, 16, 12)
	c := image.NewRGBA(r)
	d := image.NewGray16(r)
	for y := 0; y < 12; y++ {
		for x := 0; x < 16; x++ {
			c.SetRGBA(x, y, color.RGBA{R: 0xff, A: 0xff})
			d.SetGray16(x, y, color.Gray16{Y: 1000})
		}
	}
	return device.Pair{Depth: d, Color: c, Time: time.Now()}
}

func good() step { return step{pair: redPair(), ok: true} }

func testConfig(t *testing.T) config.Config {
	return config.Config{Logger: (*logging.TestLogger)(t), KeepSize: true, KeyDelay: 1}
}

func newSession(t *testing.T, src device.FrameSource, f *fakeSink, n *int) *Session {
	s, err := New(testConfig(t), src, sinkFunc(f, n), filter.Native{})
	if err != nil {
		t.Fatalf("could not create session: %v", err)
	}
	return s
}

func TestRunQuit(t *testing.T) {
	src := &scriptedSource{
		sensors: []string{device.SensorDepth, device.SensorColor},
		steps:   []step{good(), good(), good(), good()},
	}
	f := &fakeSink{r: filter.DefaultRange, keys: []int{display.NoKey, 'a', 'q'}}
	var opened int
	s := newSession(t, src, f, &opened)

	if s.State() != Idle {
		t.Errorf("unexpected initial state: %v", s.State())
	}
	err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error from run: %v", err)
	}

	if s.Frames() != 3 || len(f.results) != 3 {
		t.Errorf("unexpected number of frames, got: %d (%d shown), want: 3", s.Frames(), len(f.results))
	}
	if !f.results[0].HasCentroid || f.results[0].Centroid != image.Pt(7, 5) {
		t.Errorf("unexpected centroid: %v (%v)", f.results[0].Centroid, f.results[0].HasCentroid)
	}
	if opened != 1 || f.closes != 1 || src.stops != 1 {
		t.Errorf("resources not opened and released once, sinks opened: %d, closed: %d, source stops: %d", opened, f.closes, src.stops)
	}
	if s.State() != Stopped {
		t.Errorf("unexpected final state: %v", s.State())
	}
}

func TestRunQuitKeyLowByte(t *testing.T) {
	src := &scriptedSource{
		sensors: []string{device.SensorDepth, device.SensorColor},
		steps:   []step{good(), good()},
	}
	f := &fakeSink{r: filter.DefaultRange, keys: []int{0x100000 | 'q'}}
	var opened int
	s := newSession(t, src, f, &opened)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error from run: %v", err)
	}
	if s.Frames() != 1 {
		t.Errorf("quit key with modifier bits did not end session, frames: %d", s.Frames())
	}
}

func TestRunCapability(t *testing.T) {
	tests := []struct {
		sensors []string
		want    error
		msg     string
	}{
		{sensors: []string{device.SensorDepth}, want: ErrNoColorSensor, msg: MsgNoColorSensor},
		{sensors: []string{}, want: ErrNoDevice, msg: MsgNoDevice},
	}

	for i, test := range tests {
		src := &scriptedSource{sensors: test.sensors, steps: []step{good()}}
		f := &fakeSink{}
		var opened int
		s := newSession(t, src, f, &opened)

		err := s.Run(context.Background())
		if !errors.Is(err, test.want) {
			t.Errorf("unexpected error for test %d, got: %v, want: %v", i, err, test.want)
		}
		msg, ok := Diagnostic(err)
		if !ok || msg != test.msg {
			t.Errorf("unexpected diagnostic for test %d, got: %q, want: %q", i, msg, test.msg)
		}
		if opened != 0 {
			t.Errorf("sink opened for test %d", i)
		}
		if src.starts != 0 || src.stops != 1 {
			t.Errorf("unexpected source use for test %d, starts: %d, stops: %d", i, src.starts, src.stops)
		}
	}
}

func TestRunEndOfInput(t *testing.T) {
	src := &scriptedSource{
		sensors: []string{device.SensorDepth, device.SensorColor},
		steps:   []step{good(), {ok: false}, good(), {pair: device.Pair{Depth: redPair().Depth}, ok: false}},
	}
	f := &fakeSink{r: filter.DefaultRange}
	var opened int
	s := newSession(t, src, f, &opened)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("end of input should not be an error, got: %v", err)
	}
	if len(f.results) != 2 {
		t.Errorf("unavailable pairs not skipped, shown: %d, want: 2", len(f.results))
	}
	if src.stops != 1 || f.closes != 1 {
		t.Errorf("resources not released once, source stops: %d, sink closes: %d", src.stops, f.closes)
	}
}

func TestRunAcquisitionError(t *testing.T) {
	src := &scriptedSource{
		sensors: []string{device.SensorDepth, device.SensorColor},
		steps:   []step{good(), {err: errAcquire}},
		stopErr: errStop,
	}
	f := &fakeSink{r: filter.DefaultRange}
	var opened int
	s := newSession(t, src, f, &opened)

	err := s.Run(context.Background())
	if !errors.Is(err, errAcquire) || !errors.Is(err, errStop) {
		t.Fatalf("expected acquisition and stop errors, got: %v", err)
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Errorf("unexpected number of errors, got: %d, want: 2", n)
	}
	if src.stops != 1 {
		t.Errorf("source stopped %d times", src.stops)
	}
	if s.State() != Stopped {
		t.Errorf("unexpected final state: %v", s.State())
	}
}

func TestRunPanic(t *testing.T) {
	src := &scriptedSource{
		sensors: []string{device.SensorDepth, device.SensorColor},
		steps:   []step{good()},
	}
	f := &fakeSink{r: filter.DefaultRange, panics: true}
	var opened int
	s := newSession(t, src, f, &opened)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic to propagate")
			}
		}()
		s.Run(context.Background())
	}()

	if src.stops != 1 || f.closes != 1 {
		t.Errorf("resources not released once after panic, source stops: %d, sink closes: %d", src.stops, f.closes)
	}
	if s.State() != Stopped {
		t.Errorf("unexpected final state: %v", s.State())
	}
}

func TestRunCancelled(t *testing.T) {
	src := &scriptedSource{
		sensors: []string{device.SensorDepth, device.SensorColor},
		steps:   []step{good()},
	}
	f := &fakeSink{r: filter.DefaultRange}
	var opened int
	s := newSession(t, src, f, &opened)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("cancellation should not be an error, got: %v", err)
	}
	if s.Frames() != 0 || src.stops != 1 {
		t.Errorf("unexpected frames: %d, source stops: %d", s.Frames(), src.stops)
	}

	if err := s.Run(context.Background()); err == nil {
		t.Error("expected error running session twice")
	}
	if src.stops != 1 {
		t.Errorf("second run released resources again")
	}
}

func TestRunInvertedRange(t *testing.T) {
	src := &scriptedSource{
		sensors: []string{device.SensorDepth, device.SensorColor},
		steps:   []step{good()},
	}
	cfg := testConfig(t)
	cfg.Thresholds = map[string]int{config.KeyHueLow: 180, config.KeyHueHigh: 0}
	f := &fakeSink{r: filter.RangeFrom(cfg)}
	var opened int
	s, err := New(cfg, src, sinkFunc(f, &opened), nil)
	if err != nil {
		t.Fatalf("could not create session: %v", err)
	}

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error from run: %v", err)
	}
	if len(f.results) != 1 {
		t.Fatalf("unexpected number of results: %d", len(f.results))
	}
	res := f.results[0]
	if res.HasCentroid || filter.Count(res.Mask) != 0 {
		t.Errorf("expected empty mask and no centroid, got %d cells, centroid: %v", filter.Count(res.Mask), res.HasCentroid)
	}
}

func TestRunManualInput(t *testing.T) {
	src := device.NewManualInput()
	src.Start()
	incomplete := redPair()
	incomplete.Color = nil
	for _, p := range []device.Pair{redPair(), incomplete, redPair(), redPair()} {
		if err := src.Write(p); err != nil {
			t.Fatalf("could not write pair: %v", err)
		}
	}

	f := &fakeSink{r: filter.DefaultRange, keys: []int{display.NoKey, 'q'}}
	var opened int
	s := newSession(t, src, f, &opened)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error from run: %v", err)
	}
	if s.Frames() != 2 {
		t.Errorf("unexpected frames, got: %d, want: 2", s.Frames())
	}
	if src.IsRunning() {
		t.Error("manual input still running after session")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		setErr  error
		wantErr bool
	}{
		{setErr: nil},
		{setErr: device.MultiError{errors.New("invalid frame rate")}},
		{setErr: errors.New("no input path"), wantErr: true},
	}

	for i, test := range tests {
		src := &scriptedSource{setErr: test.setErr}
		_, err := New(testConfig(t), src, sinkFunc(&fakeSink{}, new(int)), nil)
		if (err != nil) != test.wantErr {
			t.Errorf("unexpected error for test %d: %v", i, err)
		}
	}

	if _, err := New(config.Config{}, &scriptedSource{}, nil, nil); err == nil {
		t.Error("expected error for config without logger")
	}
}

func TestSinkError(t *testing.T) {
	src := &scriptedSource{sensors: []string{device.SensorDepth, device.SensorColor}}
	errDisplay := errors.New("no display")
	s, err := New(testConfig(t), src, func(config.Config) (display.Sink, error) { return nil, errDisplay }, nil)
	if err != nil {
		t.Fatalf("could not create session: %v", err)
	}
	if err := s.Run(context.Background()); !errors.Is(err, errDisplay) {
		t.Errorf("expected display error, got: %v", err)
	}
	if src.stops != 1 {
		t.Errorf("source stopped %d times", src.stops)
	}
}

func TestStateString(t *testing.T) {
	for st, want := range map[State]string{Idle: "idle", Running: "running", Terminating: "terminating", Stopped: "stopped", State(9): "State(9)"} {
		if got := st.String(); got != want {
			t.Errorf("unexpected string for state %d, got: %q, want: %q", int32(st), got, want)
		}
	}
}
