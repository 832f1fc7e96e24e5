package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
[log]
path = "/var/tmp/focus.csv"

[tracker]
heartbeat_seconds = 30

[index]
enabled = true
path = "/var/tmp/focus.db"

[logging]
level = "debug"
format = "json"

[report]
timezone = "UTC"
`)

	cfg := Default()
	require.NoError(t, LoadFile(cfg, path))

	assert.Equal(t, "/var/tmp/focus.csv", cfg.Log.Path)
	assert.Equal(t, 30*time.Second, cfg.Tracker.HeartbeatInterval)
	assert.True(t, cfg.Index.Enabled)
	assert.Equal(t, "/var/tmp/focus.db", cfg.Index.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "UTC", cfg.Report.TimeZone)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileKeepsUnsetDefaults(t *testing.T) {
	path := writeFile(t, "[logging]\nlevel = \"warn\"\n")

	cfg := Default()
	want := Default()
	require.NoError(t, LoadFile(cfg, path))

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, want.Log.Path, cfg.Log.Path)
	assert.Equal(t, want.Tracker.HeartbeatInterval, cfg.Tracker.HeartbeatInterval)
	assert.Equal(t, want.Index.Enabled, cfg.Index.Enabled)
}

func TestLoadFileErrors(t *testing.T) {
	t.Run("explicit missing file", func(t *testing.T) {
		err := LoadFile(Default(), filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})

	t.Run("syntax error", func(t *testing.T) {
		err := LoadFile(Default(), writeFile(t, "[log\npath = 1"))
		assert.Error(t, err)
	})

	t.Run("unknown key", func(t *testing.T) {
		err := LoadFile(Default(), writeFile(t, "[tracker]\npoll_interval = 5\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tracker.poll_interval")
	})
}

func TestLoadFileDefaultLocationMayBeAbsent(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	assert.NoError(t, LoadFile(Default(), ""))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FOCUSLOG_LOG_PATH", "/tmp/env.csv")
	t.Setenv("FOCUSLOG_HEARTBEAT", "45")
	t.Setenv("FOCUSLOG_INDEX_ENABLED", "true")
	t.Setenv("FOCUSLOG_INDEX_PATH", "/tmp/env.db")
	t.Setenv("FOCUSLOG_PID_FILE", "/tmp/env.pid")
	t.Setenv("FOCUSLOG_LOG_LEVEL", "error")
	t.Setenv("FOCUSLOG_TIMEZONE", "Europe/Paris")

	cfg := Default()
	LoadFromEnv(cfg)

	assert.Equal(t, "/tmp/env.csv", cfg.Log.Path)
	assert.Equal(t, 45*time.Second, cfg.Tracker.HeartbeatInterval)
	assert.True(t, cfg.Index.Enabled)
	assert.Equal(t, "/tmp/env.db", cfg.Index.Path)
	assert.Equal(t, "/tmp/env.pid", cfg.Daemon.PIDFile)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, "Europe/Paris", cfg.Report.TimeZone)
}

func TestLoadFromEnvIgnoresOutOfRangeHeartbeat(t *testing.T) {
	for _, value := range []string{"0", "-3", "abc", "7200"} {
		t.Run(value, func(t *testing.T) {
			t.Setenv("FOCUSLOG_HEARTBEAT", value)
			cfg := Default()
			LoadFromEnv(cfg)
			assert.Equal(t, 10*time.Second, cfg.Tracker.HeartbeatInterval)
		})
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "[tracker]\nheartbeat_seconds = 30\n")
	t.Setenv("FOCUSLOG_HEARTBEAT", "20")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Second, cfg.Tracker.HeartbeatInterval)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty log path", func(c *Config) { c.Log.Path = "" }},
		{"heartbeat too short", func(c *Config) { c.Tracker.HeartbeatInterval = 100 * time.Millisecond }},
		{"heartbeat too long", func(c *Config) { c.Tracker.HeartbeatInterval = 2 * time.Hour }},
		{"index without path", func(c *Config) { c.Index.Enabled = true; c.Index.Path = "" }},
		{"empty pid file", func(c *Config) { c.Daemon.PIDFile = "" }},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad timezone", func(c *Config) { c.Report.TimeZone = "Mars/Olympus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, "logs/a.csv"), expandHome("~/logs/a.csv"))
	assert.Equal(t, "/abs/a.csv", expandHome("/abs/a.csv"))
	assert.Equal(t, "~user/a.csv", expandHome("~user/a.csv"))
}

func TestGetHeartbeatSeconds(t *testing.T) {
	cfg := Default()
	assert.Equal(t, int64(10), cfg.GetHeartbeatSeconds())
}
