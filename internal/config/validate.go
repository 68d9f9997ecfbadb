package config

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	minTargetFPS = 1
	maxTargetFPS = 240
)

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

var validOutputFormats = map[string]bool{
	"text": true,
	"json": true,
	"yaml": true,
}

// ValidationResult splits problems into fatals, which must stop startup,
// and warnings, which were corrected in place.
type ValidationResult struct {
	Fatals   []error
	Warnings []error
}

func (r ValidationResult) HasFatals() bool {
	return len(r.Fatals) > 0
}

// ValidateTiered checks the config. Out-of-range numbers are clamped and
// reported as warnings; values that cannot be corrected are fatal. Nothing is
// logged here: the caller reports warnings once logging is configured.
func (c *Config) ValidateTiered() ValidationResult {
	var r ValidationResult

	// A selector that is not a decimal id falls back to the main display on
	// every capture. The value is kept so the fallback is logged at resolve.
	if c.OutputName != "" {
		if _, err := strconv.ParseUint(c.OutputName, 10, 32); err != nil {
			r.Warnings = append(r.Warnings, fmt.Errorf("output_name %q is not a display id, the main display will be used", c.OutputName))
		}
	}

	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		r.Fatals = append(r.Fatals, fmt.Errorf("log_format %q is not valid (use text or json)", c.LogFormat))
	}

	if c.OutputFormat != "" && !validOutputFormats[strings.ToLower(c.OutputFormat)] {
		r.Fatals = append(r.Fatals, fmt.Errorf("output_format %q is not valid (use text, json or yaml)", c.OutputFormat))
	}

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		r.Warnings = append(r.Warnings, fmt.Errorf("log_level %q is not valid, using info", c.LogLevel))
		c.LogLevel = "info"
	}

	if c.TargetFPS < minTargetFPS {
		r.Warnings = append(r.Warnings, fmt.Errorf("target_fps %d is below minimum %d, clamping", c.TargetFPS, minTargetFPS))
		c.TargetFPS = minTargetFPS
	} else if c.TargetFPS > maxTargetFPS {
		r.Warnings = append(r.Warnings, fmt.Errorf("target_fps %d exceeds maximum %d, clamping", c.TargetFPS, maxTargetFPS))
		c.TargetFPS = maxTargetFPS
	}

	if c.LogMaxSizeMB < 1 {
		r.Warnings = append(r.Warnings, fmt.Errorf("log_max_size_mb %d is below minimum 1, clamping", c.LogMaxSizeMB))
		c.LogMaxSizeMB = 1
	} else if c.LogMaxSizeMB > 500 {
		r.Warnings = append(r.Warnings, fmt.Errorf("log_max_size_mb %d exceeds maximum 500, clamping", c.LogMaxSizeMB))
		c.LogMaxSizeMB = 500
	}

	if c.LogMaxBackups < 1 {
		r.Warnings = append(r.Warnings, fmt.Errorf("log_max_backups %d is below minimum 1, clamping", c.LogMaxBackups))
		c.LogMaxBackups = 1
	} else if c.LogMaxBackups > 20 {
		r.Warnings = append(r.Warnings, fmt.Errorf("log_max_backups %d exceeds maximum 20, clamping", c.LogMaxBackups))
		c.LogMaxBackups = 20
	}

	return r
}
