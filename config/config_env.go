package config

import "os"

// ApplyEnvConfig applies STARPRINT_* environment variables to cfg. Flags in
// changed keep their values.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("port", os.Getenv("STARPRINT_PORT"), &cfg.Port)
	s.setString("settings", os.Getenv("STARPRINT_SETTINGS"), &cfg.Settings)
	s.setString("encoding", os.Getenv("STARPRINT_ENCODING"), &cfg.Encoding)
	s.setString("log-level", os.Getenv("STARPRINT_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-dir", os.Getenv("STARPRINT_LOG_DIR"), &cfg.LogDir)
	s.setString("spool-dir", os.Getenv("STARPRINT_SPOOL_DIR"), &cfg.SpoolDir)

	if err := s.setDuration("open-timeout", os.Getenv("STARPRINT_OPEN_TIMEOUT"), &cfg.OpenTimeout); err != nil {
		return err
	}
	if err := s.setDuration("end-timeout", os.Getenv("STARPRINT_END_TIMEOUT"), &cfg.EndTimeout); err != nil {
		return err
	}
	if err := s.setDuration("debounce", os.Getenv("STARPRINT_DEBOUNCE"), &cfg.Debounce); err != nil {
		return err
	}

	if err := s.setIntFromString("width", os.Getenv("STARPRINT_WIDTH"), &cfg.PrintableArea); err != nil {
		return err
	}

	s.setBoolFromString("sensor-active-high", os.Getenv("STARPRINT_SENSOR_ACTIVE_HIGH"), &cfg.SensorActiveHigh)
	s.setBoolFromString("compress", os.Getenv("STARPRINT_COMPRESS"), &cfg.Compress)
	s.setBoolFromString("dither", os.Getenv("STARPRINT_DITHER"), &cfg.Dither)

	return nil
}
