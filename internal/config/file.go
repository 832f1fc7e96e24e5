package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// fileConfig mirrors config.toml. Pointer fields distinguish "unset" from
// zero values so the file only overrides what it names.
type fileConfig struct {
	Log struct {
		Path string `toml:"path"`
	} `toml:"log"`
	Tracker struct {
		HeartbeatSeconds *int `toml:"heartbeat_seconds"`
	} `toml:"tracker"`
	Index struct {
		Enabled *bool  `toml:"enabled"`
		Path    string `toml:"path"`
	} `toml:"index"`
	Daemon struct {
		PIDFile string `toml:"pid_file"`
		LogFile string `toml:"log_file"`
	} `toml:"daemon"`
	Logging struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"logging"`
	Report struct {
		TimeZone string `toml:"timezone"`
	} `toml:"report"`
}

// DefaultFilePath returns ~/.config/focuslog/config.toml.
func DefaultFilePath() string {
	return defaultPath("config.toml")
}

// LoadFile applies the TOML file at path on top of cfg. An empty path means
// the default location, which may be absent; an explicit path must exist.
func LoadFile(cfg *Config, path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultFilePath()
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}

	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("parse config %s: unknown key %s", path, undecoded[0])
	}

	if fc.Log.Path != "" {
		cfg.Log.Path = expandHome(fc.Log.Path)
	}
	if fc.Tracker.HeartbeatSeconds != nil {
		cfg.Tracker.HeartbeatInterval = time.Duration(*fc.Tracker.HeartbeatSeconds) * time.Second
	}
	if fc.Index.Enabled != nil {
		cfg.Index.Enabled = *fc.Index.Enabled
	}
	if fc.Index.Path != "" {
		cfg.Index.Path = expandHome(fc.Index.Path)
	}
	if fc.Daemon.PIDFile != "" {
		cfg.Daemon.PIDFile = expandHome(fc.Daemon.PIDFile)
	}
	if fc.Daemon.LogFile != "" {
		cfg.Daemon.LogFile = expandHome(fc.Daemon.LogFile)
	}
	if fc.Logging.Level != "" {
		cfg.Logging.Level = fc.Logging.Level
	}
	if fc.Logging.Format != "" {
		cfg.Logging.Format = fc.Logging.Format
	}
	if fc.Report.TimeZone != "" {
		cfg.Report.TimeZone = fc.Report.TimeZone
	}
	return nil
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
