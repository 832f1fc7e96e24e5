package config

import (
	"os"
	"strconv"
	"time"
)

// LoadFromEnv loads configuration from environment variables
// Environment variables override file and default values
func LoadFromEnv(cfg *Config) {
	if logPath := os.Getenv("FOCUSLOG_LOG_PATH"); logPath != "" {
		cfg.Log.Path = expandHome(logPath)
	}

	if heartbeat := os.Getenv("FOCUSLOG_HEARTBEAT"); heartbeat != "" {
		if seconds, err := strconv.Atoi(heartbeat); err == nil && seconds > 0 {
			interval := time.Duration(seconds) * time.Second
			if interval >= cfg.Tracker.MinHeartbeatInterval && interval <= cfg.Tracker.MaxHeartbeatInterval {
				cfg.Tracker.HeartbeatInterval = interval
			}
		}
	}

	if enabled := os.Getenv("FOCUSLOG_INDEX_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.Index.Enabled = val
		}
	}

	if indexPath := os.Getenv("FOCUSLOG_INDEX_PATH"); indexPath != "" {
		cfg.Index.Path = expandHome(indexPath)
	}

	if pidFile := os.Getenv("FOCUSLOG_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	if logFile := os.Getenv("FOCUSLOG_DAEMON_LOG"); logFile != "" {
		cfg.Daemon.LogFile = logFile
	}

	if level := os.Getenv("FOCUSLOG_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	if format := os.Getenv("FOCUSLOG_LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}

	if timeZone := os.Getenv("FOCUSLOG_TIMEZONE"); timeZone != "" {
		cfg.Report.TimeZone = timeZone
	}
}

// New creates a new Config with default values, the default config file if
// present, and environment overrides
func New() (*Config, error) {
	return Load("")
}

// Load builds the configuration from defaults, the TOML file at path (or the
// default location when path is empty), and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := LoadFile(cfg, path); err != nil {
		return nil, err
	}
	LoadFromEnv(cfg)
	return cfg, nil
}
