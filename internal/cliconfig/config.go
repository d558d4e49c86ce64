package cliconfig

import (
	"fmt"
	"time"

	"github.com/bft-labs/errlog/pkg/log"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Sink backends.
const (
	BackendZerolog = "zerolog"
	BackendZap     = "zap"
)

// Output targets that are not file paths.
const (
	OutputStderr = "stderr"
	OutputStdout = "stdout"
)

// Config holds CLI configuration for errlog.
type Config struct {
	Level      string
	Format     string
	Output     string
	Backend    string
	TimeFormat string

	Watch         bool
	WatchDebounce time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Level:         "info",
		Format:        FormatConsole,
		Output:        OutputStderr,
		Backend:       BackendZerolog,
		TimeFormat:    time.RFC3339,
		WatchDebounce: 100 * time.Millisecond,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.Level == "" {
		c.Level = "info"
	}
	if _, err := log.ParseLevel(c.Level); err != nil {
		return err
	}

	if c.Format == "" {
		c.Format = FormatConsole
	}
	switch c.Format {
	case FormatConsole, FormatJSON:
	default:
		return fmt.Errorf("%w: %q", log.ErrUnknownFormat, c.Format)
	}

	if c.Backend == "" {
		c.Backend = BackendZerolog
	}
	switch c.Backend {
	case BackendZerolog, BackendZap:
	default:
		return fmt.Errorf("%w: %q", log.ErrUnknownBackend, c.Backend)
	}

	if c.Output == "" {
		c.Output = OutputStderr
	}

	if c.WatchDebounce <= 0 {
		return fmt.Errorf("watch debounce must be positive")
	}

	return nil
}

// MinLevel returns the parsed Level. Call Validate first.
func (c Config) MinLevel() log.Level {
	lvl, _ := log.ParseLevel(c.Level)
	return lvl
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
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

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
