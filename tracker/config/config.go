/*
NAME
  config.go

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config contains the configuration settings for a tracker session.
package config

import (
	"github.com/ausocean/utils/logging"
)

// Enums to define inputs.
const (
	// Indicates no option has been set.
	NothingDefined = iota

	// Inputs.
	InputRealSense
	InputFile
	InputManual
)

// Threshold presets. The values behind each name live with the threshold
// parameters in the filter package.
const (
	PresetPants = "pants"
	PresetLid   = "lid"
)

// Config provides parameters relevant to a tracker session. Default values for
// these fields are defined in variables.go and applied by Validate.
type Config struct {
	// ColorWidth and ColorHeight define the colour stream resolution. If both are
	// zero the resolution is chosen from the product line of the device.
	ColorHeight uint
	ColorWidth  uint

	DepthHeight uint // Height of the depth stream.

	// DepthScale is the linear factor applied to raw depth values before they
	// are clamped to 8 bits and passed through the colour palette.
	DepthScale float64

	DepthWidth uint // Width of the depth stream.
	FileFPS    uint // Defines the rate at which frames from a file source are processed.
	FrameRate  uint // Frame rate of both streams.

	// FrameTimeout is the time in milliseconds to wait for a frame pair before
	// the pair is considered unavailable for this iteration.
	FrameTimeout uint

	// Headless disables the OpenCV windows; results are logged instead and the
	// threshold range is fixed by the configuration.
	Headless bool

	// Input defines the frame source.
	//
	// Valid values are defined by enums:
	// InputRealSense:
	//		Stream from the first attached RealSense device.
	// InputFile:
	//		Replay recorded frame pairs from the directory in InputPath.
	// InputManual:
	//		Frame pairs are written to the source by software.
	Input uint8

	// InputPath defines the recording directory for File input.
	InputPath string

	KeyDelay uint // Milliseconds to wait for a key press each iteration.
	KeepSize bool // If true frames are processed at stream resolution rather than the working size.

	// Logger holds an implementation of the Logger interface.
	// This must be set for the tracker to work correctly.
	Logger logging.Logger

	// LogLevel is the logging verbosity level.
	// Valid values are defined by enums from the logger package: logging.Debug,
	// logging.Info, logging.Warning logging.Error, logging.Fatal.
	LogLevel int8

	Loop bool // If true will restart reading of a recording after the last pair.

	// Preset names the initial threshold range, see PresetPants and PresetLid.
	Preset string

	// QuitKey is the single character that ends the session.
	QuitKey string

	Suppress bool // Holds logger suppression state.

	// Thresholds holds explicitly configured threshold parameters keyed by
	// parameter name (HL, HH, SL, SH, VL, VH). These override the preset.
	Thresholds map[string]int

	WorkHeight uint // Height frames are resized to before processing.
	WorkWidth  uint // Width frames are resized to before processing.
}

// Validate checks for any errors in the config fields and defaults settings
// if particular parameters have not been defined.
func (c *Config) Validate() error {
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}
	return nil
}

// Update takes a map of configuration variable names and their corresponding
// values, parses the string values and converting into correct type, and then
// sets the config struct fields as appropriate.
func (c *Config) Update(vars map[string]string) {
	for _, value := range Variables {
		if v, ok := vars[value.Name]; ok && value.Update != nil {
			value.Update(c, v)
		}
	}
}

func (c *Config) LogInvalidField(name string, def interface{}) {
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}
