/*
DESCRIPTION
  variables.go contains a list of structs that provide a variable Name, type in
  a string format, a function for updating the variable in the Config struct
  from a string, and finally, a validation function to check the validity of the
  corresponding field value in the Config.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ausocean/utils/logging"
)

// Config map Keys.
const (
	KeyColorHeight  = "ColorHeight"
	KeyColorWidth   = "ColorWidth"
	KeyDepthHeight  = "DepthHeight"
	KeyDepthScale   = "DepthScale"
	KeyDepthWidth   = "DepthWidth"
	KeyFileFPS      = "FileFPS"
	KeyFrameRate    = "FrameRate"
	KeyFrameTimeout = "FrameTimeout"
	KeyHeadless     = "Headless"
	KeyInput        = "Input"
	KeyInputPath    = "InputPath"
	KeyKeepSize     = "KeepSize"
	KeyKeyDelay     = "KeyDelay"
	KeyLogging      = "logging"
	KeyLoop         = "Loop"
	KeyPreset       = "Preset"
	KeyQuitKey      = "QuitKey"
	KeySuppress     = "Suppress"
	KeyWorkHeight   = "WorkHeight"
	KeyWorkWidth    = "WorkWidth"

	// Threshold parameters. These are also the trackbar names.
	KeyHueLow  = "HL"
	KeyHueHigh = "HH"
	KeySatLow  = "SL"
	KeySatHigh = "SH"
	KeyValLow  = "VL"
	KeyValHigh = "VH"
)

// Config map parameter types.
const (
	typeString = "string"
	typeInt    = "int"
	typeUint   = "uint"
	typeBool   = "bool"
	typeFloat  = "float"
)

// Default variable values.
const (
	defaultInput        = InputRealSense
	defaultVerbosity    = logging.Info
	defaultFrameRate    = 30
	defaultDepthWidth   = 640
	defaultDepthHeight  = 480
	defaultWorkWidth    = 320
	defaultWorkHeight   = 280
	defaultDepthScale   = 0.03
	defaultKeyDelay     = 10   // Milliseconds.
	defaultFrameTimeout = 5000 // Milliseconds.
	defaultPreset       = PresetPants
	defaultQuitKey      = "q"
	defaultFileFPS      = 0
)

// Threshold parameter bounds.
const (
	maxHue      = 180
	maxSatOrVal = 255
)

// Variables describes the variables that can be used for tracker control.
// These structs provide the name and type of variable, a function for updating
// this variable in a Config, and a function for validating the value of the variable.
var Variables = []struct {
	Name     string
	Type     string
	Update   func(*Config, string)
	Validate func(*Config)
}{
	{
		Name:   KeyColorHeight,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.ColorHeight = parseUint(KeyColorHeight, v, c) },
	},
	{
		Name:   KeyColorWidth,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.ColorWidth = parseUint(KeyColorWidth, v, c) },
		Validate: func(c *Config) {
			// Either both are set or the device decides.
			if (c.ColorWidth == 0) != (c.ColorHeight == 0) {
				c.LogInvalidField(KeyColorWidth+"/"+KeyColorHeight, "product line default")
				c.ColorWidth, c.ColorHeight = 0, 0
			}
		},
	},
	{
		Name:   KeyDepthHeight,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.DepthHeight = parseUint(KeyDepthHeight, v, c) },
		Validate: func(c *Config) {
			c.DepthHeight = lessThanOrEqual(KeyDepthHeight, c.DepthHeight, 0, c, defaultDepthHeight)
		},
	},
	{
		Name: KeyDepthScale,
		Type: typeFloat,
		Update: func(c *Config, v string) {
			_v, err := strconv.ParseFloat(v, 64)
			if err != nil {
				c.Logger.Warning(fmt.Sprintf("expected float for param %s", KeyDepthScale), "value", v)
			}
			c.DepthScale = _v
		},
		Validate: func(c *Config) {
			if c.DepthScale <= 0 {
				c.LogInvalidField(KeyDepthScale, defaultDepthScale)
				c.DepthScale = defaultDepthScale
			}
		},
	},
	{
		Name:   KeyDepthWidth,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.DepthWidth = parseUint(KeyDepthWidth, v, c) },
		Validate: func(c *Config) {
			c.DepthWidth = lessThanOrEqual(KeyDepthWidth, c.DepthWidth, 0, c, defaultDepthWidth)
		},
	},
	{
		Name:   KeyFileFPS,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.FileFPS = parseUint(KeyFileFPS, v, c) },
		Validate: func(c *Config) {
			if c.FileFPS > 0 && c.Input != InputFile {
				c.LogInvalidField(KeyFileFPS, defaultFileFPS)
				c.FileFPS = defaultFileFPS
			}
		},
	},
	{
		Name:   KeyFrameRate,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.FrameRate = parseUint(KeyFrameRate, v, c) },
		Validate: func(c *Config) {
			if c.FrameRate <= 0 || c.FrameRate > 90 {
				c.LogInvalidField(KeyFrameRate, defaultFrameRate)
				c.FrameRate = defaultFrameRate
			}
		},
	},
	{
		Name:   KeyFrameTimeout,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.FrameTimeout = parseUint(KeyFrameTimeout, v, c) },
		Validate: func(c *Config) {
			c.FrameTimeout = lessThanOrEqual(KeyFrameTimeout, c.FrameTimeout, 0, c, defaultFrameTimeout)
		},
	},
	{
		Name:   KeyHeadless,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.Headless = parseBool(KeyHeadless, v, c) },
	},
	{
		Name: KeyInput,
		Type: "enum:realsense,file,manual",
		Update: func(c *Config, v string) {
			c.Input = parseEnum(
				KeyInput,
				v,
				map[string]uint8{
					"realsense": InputRealSense,
					"file":      InputFile,
					"manual":    InputManual,
				},
				c,
			)
		},
		Validate: func(c *Config) {
			switch c.Input {
			case InputRealSense, InputFile, InputManual:
			default:
				c.LogInvalidField(KeyInput, defaultInput)
				c.Input = defaultInput
			}
		},
	},
	{
		Name:   KeyInputPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.InputPath = v },
		Validate: func(c *Config) {
			if c.Input == InputFile && c.InputPath == "" {
				c.Logger.Warning("file input selected but InputPath is empty")
			}
		},
	},
	{
		Name:   KeyKeepSize,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.KeepSize = parseBool(KeyKeepSize, v, c) },
	},
	{
		Name:   KeyKeyDelay,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.KeyDelay = parseUint(KeyKeyDelay, v, c) },
		Validate: func(c *Config) {
			c.KeyDelay = lessThanOrEqual(KeyKeyDelay, c.KeyDelay, 0, c, defaultKeyDelay)
		},
	},
	{
		Name: KeyLogging,
		Type: "enum:Debug,Info,Warning,Error,Fatal",
		Update: func(c *Config, v string) {
			switch v {
			case "Debug":
				c.LogLevel = logging.Debug
			case "Info":
				c.LogLevel = logging.Info
			case "Warning":
				c.LogLevel = logging.Warning
			case "Error":
				c.LogLevel = logging.Error
			case "Fatal":
				c.LogLevel = logging.Fatal
			default:
				c.Logger.Warning("invalid Logging param", "value", v)
			}
		},
		Validate: func(c *Config) {
			switch c.LogLevel {
			case logging.Debug, logging.Info, logging.Warning, logging.Error, logging.Fatal:
			default:
				c.LogInvalidField("LogLevel", defaultVerbosity)
				c.LogLevel = defaultVerbosity
			}
		},
	},
	{
		Name:   KeyLoop,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.Loop = parseBool(KeyLoop, v, c) },
	},
	{
		Name:   KeyPreset,
		Type:   "enum:pants,lid",
		Update: func(c *Config, v string) { c.Preset = strings.ToLower(v) },
		Validate: func(c *Config) {
			switch c.Preset {
			case PresetPants, PresetLid:
			default:
				c.LogInvalidField(KeyPreset, defaultPreset)
				c.Preset = defaultPreset
			}
		},
	},
	{
		Name:   KeyQuitKey,
		Type:   typeString,
		Update: func(c *Config, v string) { c.QuitKey = v },
		Validate: func(c *Config) {
			if len(c.QuitKey) != 1 {
				c.LogInvalidField(KeyQuitKey, defaultQuitKey)
				c.QuitKey = defaultQuitKey
			}
		},
	},
	{
		Name: KeySuppress,
		Type: typeBool,
		Update: func(c *Config, v string) {
			c.Suppress = parseBool(KeySuppress, v, c)
			if l, ok := c.Logger.(*logging.JSONLogger); ok {
				l.SetSuppress(c.Suppress)
			}
		},
	},
	{
		Name:   KeyWorkHeight,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.WorkHeight = parseUint(KeyWorkHeight, v, c) },
		Validate: func(c *Config) {
			c.WorkHeight = lessThanOrEqual(KeyWorkHeight, c.WorkHeight, 0, c, defaultWorkHeight)
		},
	},
	{
		Name:   KeyWorkWidth,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.WorkWidth = parseUint(KeyWorkWidth, v, c) },
		Validate: func(c *Config) {
			c.WorkWidth = lessThanOrEqual(KeyWorkWidth, c.WorkWidth, 0, c, defaultWorkWidth)
		},
	},
	{
		Name:     KeyHueLow,
		Type:     typeInt,
		Update:   updateThreshold(KeyHueLow),
		Validate: validateThreshold(KeyHueLow, maxHue),
	},
	{
		Name:     KeyHueHigh,
		Type:     typeInt,
		Update:   updateThreshold(KeyHueHigh),
		Validate: validateThreshold(KeyHueHigh, maxHue),
	},
	{
		Name:     KeySatLow,
		Type:     typeInt,
		Update:   updateThreshold(KeySatLow),
		Validate: validateThreshold(KeySatLow, maxSatOrVal),
	},
	{
		Name:     KeySatHigh,
		Type:     typeInt,
		Update:   updateThreshold(KeySatHigh),
		Validate: validateThreshold(KeySatHigh, maxSatOrVal),
	},
	{
		Name:     KeyValLow,
		Type:     typeInt,
		Update:   updateThreshold(KeyValLow),
		Validate: validateThreshold(KeyValLow, maxSatOrVal),
	},
	{
		Name:     KeyValHigh,
		Type:     typeInt,
		Update:   updateThreshold(KeyValHigh),
		Validate: validateThreshold(KeyValHigh, maxSatOrVal),
	},
}

// updateThreshold returns an Update func that records an explicit value for
// the named threshold parameter.
func updateThreshold(n string) func(*Config, string) {
	return func(c *Config, v string) {
		_v, err := strconv.Atoi(v)
		if err != nil {
			c.Logger.Warning(fmt.Sprintf("expected integer for param %s", n), "value", v)
			return
		}
		if c.Thresholds == nil {
			c.Thresholds = make(map[string]int)
		}
		c.Thresholds[n] = _v
	}
}

// validateThreshold returns a Validate func that drops an explicit threshold
// outside of [0, max] so that the preset value is used instead.
func validateThreshold(n string, max int) func(*Config) {
	return func(c *Config) {
		v, ok := c.Thresholds[n]
		if !ok {
			return
		}
		if v < 0 || v > max {
			c.LogInvalidField(n, "preset")
			delete(c.Thresholds, n)
		}
	}
}

func parseUint(n, v string, c *Config) uint {
	_v, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected unsigned int for param %s", n), "value", v)
	}
	return uint(_v)
}

func parseBool(n, v string, c *Config) (b bool) {
	switch strings.ToLower(v) {
	case "true":
		b = true
	case "false":
		b = false
	default:
		c.Logger.Warning(fmt.Sprintf("expect bool for param %s", n), "value", v)
	}
	return
}

func parseEnum(n, v string, enums map[string]uint8, c *Config) uint8 {
	_v, ok := enums[strings.ToLower(v)]
	if !ok {
		c.Logger.Warning(fmt.Sprintf("invalid value for %s param", n), "value", v)
	}
	return _v
}

func lessThanOrEqual(n string, v, cmp uint, c *Config, def uint) uint {
	if v <= cmp {
		c.LogInvalidField(n, def)
		return def
	}
	return v
}
