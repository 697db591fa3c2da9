/*
DESCRIPTION
  hsvtrack streams depth and colour frames from a depth camera or recording,
  filters them by an HSV range tuned with on screen trackbars and shows the
  centroid of the selected region.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package hsvtrack is a command line interface for the tracker package.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/hsvtrack/device"
	"github.com/ausocean/hsvtrack/device/file"
	"github.com/ausocean/hsvtrack/device/realsense"
	"github.com/ausocean/hsvtrack/display"
	"github.com/ausocean/hsvtrack/filter"
	"github.com/ausocean/hsvtrack/tracker"
	"github.com/ausocean/hsvtrack/tracker/config"
	"github.com/ausocean/utils/logging"
)

// Current software version.
const version = "v0.1.0"

// Logging configuration.
const (
	logFile      = "hsvtrack.log"
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = true
)

// Misc constants.
const (
	pkg         = "hsvtrack: "
	profilePath = "hsvtrack.prof"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// This is set to true if the 'profile' build tag is provided on build.
var canProfile = false

// defaultLogPath returns the log file location in the user's cache
// directory, or an empty path if there is none.
func defaultLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "hsvtrack", logFile)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses args, runs a tracking session and returns the exit code. A
// camera without the required sensors is not a failure; the diagnostic is
// written to stdout and the exit code is zero.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("hsvtrack", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		showVersion = fs.Bool("version", false, "show version")
		configPtr   = fs.String("config", "", "configuration as a JSON object of variable names to values")
		configFile  = fs.String("config-file", "", "location of a JSON configuration file")
		inputPtr    = fs.String("input", "", "input device: realsense or file")
		pathPtr     = fs.String("path", "", "directory of recorded frame pairs for file input")
		headlessPtr = fs.Bool("headless", false, "log results instead of opening windows")
		presetPtr   = fs.String("preset", "", "threshold preset: pants or lid")
		logPathPtr  = fs.String("log-path", defaultLogPath(), "log file location, empty to log to stderr only")
	)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *showVersion {
		fmt.Fprintln(stdout, version)
		return exitOK
	}

	w := stderr
	if *logPathPtr != "" {
		// Create lumberjack logger to handle logging to file.
		fileLog := &lumberjack.Logger{
			Filename:   *logPathPtr,
			MaxSize:    logMaxSize,
			MaxBackups: logMaxBackup,
			MaxAge:     logMaxAge,
		}
		defer fileLog.Close()
		// Stderr first, so a log file we cannot write to does not silence it.
		w = io.MultiWriter(stderr, fileLog)
	}
	log := logging.New(logVerbosity, w, logSuppress)
	log.Info(pkg+"starting hsvtrack", "version", version)

	// If built with the profile tag, then we'll start a CPU profile.
	if canProfile {
		err := profile()
		if err != nil {
			log.Error(pkg+"could not start profiling", "error", err.Error())
			return exitError
		}
		defer pprof.StopCPUProfile()
		log.Info(pkg + "profiling started")
	}

	vars, err := readVars(*configPtr, *configFile)
	if err != nil {
		log.Error(pkg+"could not read config", "error", err.Error())
		return exitError
	}
	for k, v := range map[string]string{
		config.KeyInput:     *inputPtr,
		config.KeyInputPath: *pathPtr,
		config.KeyPreset:    *presetPtr,
	} {
		if v != "" {
			vars[k] = v
		}
	}
	if *headlessPtr {
		vars[config.KeyHeadless] = "true"
	}
	log.Info(pkg+"got config", "config", vars)

	cfg := config.Config{Logger: log}
	cfg.Update(vars)
	err = cfg.Validate()
	if err != nil {
		log.Error(pkg+"invalid config", "error", err.Error())
		return exitError
	}
	log.SetLevel(cfg.LogLevel)

	src, err := newSource(cfg)
	if err != nil {
		log.Error(pkg+"could not create input device", "error", err.Error())
		return exitError
	}

	s, err := tracker.New(cfg, src, display.New, filter.NewMasker())
	if err != nil {
		log.Error(pkg+"could not create session", "error", err.Error())
		return exitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = s.Run(ctx)
	if msg, ok := tracker.Diagnostic(err); ok {
		log.Info(pkg+"camera cannot be used", "reason", err.Error())
		fmt.Fprintln(stdout, msg)
		return exitOK
	}
	if err != nil {
		log.Error(pkg+"session ended with error", "error", err.Error())
		return exitError
	}
	log.Info(pkg+"session ended", "frames", s.Frames())
	return exitOK
}

// readVars returns the config variables given as a JSON string or in a JSON
// file. Giving both is an error; giving neither returns an empty map.
func readVars(js, path string) (map[string]string, error) {
	vars := make(map[string]string)
	switch {
	case js != "" && path != "":
		return nil, errors.New("cannot define both command-line config and file config")
	case js != "":
		err := json.Unmarshal([]byte(js), &vars)
		if err != nil {
			return nil, fmt.Errorf("could not decode JSON config: %w", err)
		}
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("could not open config file: %w", err)
		}
		defer f.Close()
		err = json.NewDecoder(f).Decode(&vars)
		if err != nil {
			return nil, fmt.Errorf("could not decode JSON config file: %w", err)
		}
	}
	return vars, nil
}

// newSource returns the frame source selected by c.Input.
func newSource(c config.Config) (device.FrameSource, error) {
	switch c.Input {
	case config.InputRealSense:
		return realsense.New(c.Logger), nil
	case config.InputFile:
		return file.New(c.Logger), nil
	case config.InputManual:
		return nil, errors.New("manual input can only be written through the tracker package")
	}
	return nil, fmt.Errorf("unknown input: %d", c.Input)
}

// profile opens a file to hold CPU profiling metrics and then starts the
// CPU profiler.
func profile() error {
	f, err := os.Create(profilePath)
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	return pprof.StartCPUProfile(f)
}
