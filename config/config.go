// Package config holds the starprint command line configuration. Values
// come from ~/.starprint/config.toml, then STARPRINT_* variables, then flags.
package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/AlexStarov/starprnt-GoLang-lib/charset"
	"github.com/AlexStarov/starprnt-GoLang-lib/printer"
	"github.com/AlexStarov/starprnt-GoLang-lib/spool"
)

// Config holds CLI configuration for starprint.
type Config struct {
	Port     string
	Settings string

	OpenTimeout time.Duration
	EndTimeout  time.Duration

	SensorActiveHigh bool

	// PrintableArea in dots for images and raster text.
	PrintableArea int
	Compress      bool
	Dither        bool
	Encoding      string

	LogLevel string
	LogDir   string

	SpoolDir string
	Debounce time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		OpenTimeout:   printer.DefaultOpenTimeout,
		EndTimeout:    printer.DefaultEndTimeout,
		PrintableArea: printer.PrintableWidth3Inch,
		Compress:      true,
		Dither:        true,
		LogLevel:      "info",
		Debounce:      spool.DefaultDebounce,
	}
}

// Validate checks the configuration for errors and canonicalizes the
// encoding name. The port is checked by Printer, not every command needs one.
func (c *Config) Validate() error {
	if c.OpenTimeout <= 0 {
		return fmt.Errorf("open timeout must be positive")
	}
	if c.EndTimeout <= 0 {
		return fmt.Errorf("end timeout must be positive")
	}
	if c.PrintableArea < 8 || c.PrintableArea > 0xffff {
		return fmt.Errorf("printable area %d out of range", c.PrintableArea)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative")
	}

	enc, err := charset.Canonical(c.Encoding)
	if err != nil {
		return err
	}
	c.Encoding = enc

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return nil
}

// Printer returns a Printer for the configured port.
func (c Config) Printer() (*printer.Printer, error) {
	if c.Port == "" {
		return nil, fmt.Errorf("port is required (--port or STARPRINT_PORT)")
	}
	if _, err := printer.ParsePortName(c.Port); err != nil {
		return nil, err
	}
	p := printer.NewPrinter(c.Port, c.Settings)
	p.OpenTimeout = c.OpenTimeout
	p.EndTimeout = c.EndTimeout
	p.SensorActiveHigh = c.SensorActiveHigh
	return p, nil
}

// ImageOptions returns the image settings of c.
func (c Config) ImageOptions() printer.ImageOptions {
	return printer.ImageOptions{
		MaxWidth: c.PrintableArea,
		Compress: c.Compress,
		Dither:   c.Dither,
	}
}

// configSetter applies values unless the matching flag was set explicitly.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString is setInt for environment variables.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	s.setInt(flag, i, dst)
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
