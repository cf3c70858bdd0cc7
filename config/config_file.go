package config

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config with string durations and optional booleans.
type FileConfig struct {
	Port             string `toml:"port"`
	Settings         string `toml:"settings"`
	OpenTimeout      string `toml:"open_timeout"`
	EndTimeout       string `toml:"end_timeout"`
	SensorActiveHigh *bool  `toml:"sensor_active_high"`
	PrintableArea    int    `toml:"printable_area"`
	Compress         *bool  `toml:"compress"`
	Dither           *bool  `toml:"dither"`
	Encoding         string `toml:"encoding"`
	LogLevel         string `toml:"log_level"`
	LogDir           string `toml:"log_dir"`
	SpoolDir         string `toml:"spool_dir"`
	Debounce         string `toml:"debounce"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.starprint/config.toml, or "" without a home
// directory.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".starprint", "config.toml")
	}
	return ""
}

// ApplyFileConfig copies the values set in fc into cfg, skipping the flags
// in changed.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("port", fc.Port, &cfg.Port)
	s.setString("settings", fc.Settings, &cfg.Settings)
	s.setString("encoding", fc.Encoding, &cfg.Encoding)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-dir", fc.LogDir, &cfg.LogDir)
	s.setString("spool-dir", fc.SpoolDir, &cfg.SpoolDir)

	if err := s.setDuration("open-timeout", fc.OpenTimeout, &cfg.OpenTimeout); err != nil {
		return err
	}
	if err := s.setDuration("end-timeout", fc.EndTimeout, &cfg.EndTimeout); err != nil {
		return err
	}
	if err := s.setDuration("debounce", fc.Debounce, &cfg.Debounce); err != nil {
		return err
	}

	s.setInt("width", fc.PrintableArea, &cfg.PrintableArea)

	s.setBool("sensor-active-high", fc.SensorActiveHigh, &cfg.SensorActiveHigh)
	s.setBool("compress", fc.Compress, &cfg.Compress)
	s.setBool("dither", fc.Dither, &cfg.Dither)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
