package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	appDir         = ".config/focuslog"
	defaultLogName = "activity.csv"
	defaultIdxName = "index.db"
)

// Config holds all application configuration
type Config struct {
	// Activity log configuration
	Log LogConfig

	// Tracker configuration
	Tracker TrackerConfig

	// SQLite index mirror configuration
	Index IndexConfig

	// Daemon configuration
	Daemon DaemonConfig

	// Diagnostic logging configuration
	Logging LoggingConfig

	// Report configuration
	Report ReportConfig
}

// LogConfig holds activity log configuration
type LogConfig struct {
	Path string // Path to the CSV activity log
}

// TrackerConfig holds tracking behavior configuration
type TrackerConfig struct {
	HeartbeatInterval    time.Duration // How long an interval may stay open before it is flushed
	MinHeartbeatInterval time.Duration
	MaxHeartbeatInterval time.Duration
}

// IndexConfig holds the optional SQLite mirror configuration
type IndexConfig struct {
	Enabled bool
	Path    string
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string // Path to PID file for daemon management
	LogFile string // Where the background daemon writes diagnostics
}

// LoggingConfig holds diagnostic logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // text or json
}

// ReportConfig holds report generation configuration
type ReportConfig struct {
	TimeZone string
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Path: defaultPath(defaultLogName),
		},
		Tracker: TrackerConfig{
			HeartbeatInterval:    10 * time.Second,
			MinHeartbeatInterval: 1 * time.Second,
			MaxHeartbeatInterval: time.Hour,
		},
		Index: IndexConfig{
			Enabled: false,
			Path:    defaultPath(defaultIdxName),
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/focuslog-%d.pid", os.Getuid()),
			LogFile: fmt.Sprintf("/tmp/focuslog-%d.log", os.Getuid()),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Report: ReportConfig{
			TimeZone: "Local",
		},
	}
}

// defaultPath places name under ~/.config/focuslog, or the working
// directory when there is no home.
func defaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, appDir, name)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Log.Path == "" {
		return fmt.Errorf("activity log path cannot be empty")
	}

	if c.Tracker.HeartbeatInterval < c.Tracker.MinHeartbeatInterval {
		return fmt.Errorf("heartbeat interval (%v) cannot be less than minimum (%v)",
			c.Tracker.HeartbeatInterval, c.Tracker.MinHeartbeatInterval)
	}

	if c.Tracker.HeartbeatInterval > c.Tracker.MaxHeartbeatInterval {
		return fmt.Errorf("heartbeat interval (%v) cannot be greater than maximum (%v)",
			c.Tracker.HeartbeatInterval, c.Tracker.MaxHeartbeatInterval)
	}

	if c.Index.Enabled && c.Index.Path == "" {
		return fmt.Errorf("index path cannot be empty when the index is enabled")
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	return nil
}

// SetHeartbeatInterval sets the heartbeat interval with validation
func (c *Config) SetHeartbeatInterval(interval time.Duration) error {
	if interval < c.Tracker.MinHeartbeatInterval {
		return fmt.Errorf("heartbeat interval cannot be less than %v", c.Tracker.MinHeartbeatInterval)
	}
	if interval > c.Tracker.MaxHeartbeatInterval {
		return fmt.Errorf("heartbeat interval cannot be greater than %v", c.Tracker.MaxHeartbeatInterval)
	}
	c.Tracker.HeartbeatInterval = interval
	return nil
}

// GetHeartbeatSeconds returns the heartbeat interval in seconds
func (c *Config) GetHeartbeatSeconds() int64 {
	return int64(c.Tracker.HeartbeatInterval.Seconds())
}

// Location resolves the report time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Report.TimeZone == "" || c.Report.TimeZone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Report.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid report time zone %q: %w", c.Report.TimeZone, err)
	}
	return loc, nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Log:
    Path: %s
  Tracker:
    Heartbeat Interval: %v
    Min Interval: %v
    Max Interval: %v
  Index:
    Enabled: %v
    Path: %s
  Daemon:
    PID File: %s
    Log File: %s
  Logging:
    Level: %s
    Format: %s
  Report:
    Time Zone: %s`,
		c.Log.Path,
		c.Tracker.HeartbeatInterval,
		c.Tracker.MinHeartbeatInterval,
		c.Tracker.MaxHeartbeatInterval,
		c.Index.Enabled,
		c.Index.Path,
		c.Daemon.PIDFile,
		c.Daemon.LogFile,
		c.Logging.Level,
		c.Logging.Format,
		c.Report.TimeZone,
	)
}
