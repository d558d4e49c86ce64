package cliconfig

import "os"

const envLevel = "ERRLOG_LEVEL"

// EnvLevelSet reports whether ERRLOG_LEVEL is set to a non-empty value.
func EnvLevelSet() bool {
	return os.Getenv(envLevel) != ""
}

// ApplyEnvConfig applies configuration from environment variables (ERRLOG_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("level", os.Getenv(envLevel), &cfg.Level)
	s.setString("format", os.Getenv("ERRLOG_FORMAT"), &cfg.Format)
	s.setString("output", os.Getenv("ERRLOG_OUTPUT"), &cfg.Output)
	s.setString("backend", os.Getenv("ERRLOG_BACKEND"), &cfg.Backend)
	s.setString("time-format", os.Getenv("ERRLOG_TIME_FORMAT"), &cfg.TimeFormat)

	s.setBoolFromString("watch", os.Getenv("ERRLOG_WATCH"), &cfg.Watch)
	if err := s.setDuration("watch-debounce", os.Getenv("ERRLOG_WATCH_DEBOUNCE"), &cfg.WatchDebounce); err != nil {
		return err
	}

	return nil
}
