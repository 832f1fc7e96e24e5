package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/actionsum/focuslog/internal/config"
)

type globalOptions struct {
	configPath string
	logPath    string
	heartbeat  time.Duration
}

var globals globalOptions

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "focuslog",
		Short: "Record which window has focus into a CSV activity log",
		Long: `focuslog listens to i3 window events and records every stretch of focus
on a window as one row of an append-only CSV log. Open intervals are flushed
on a heartbeat so a crash loses at most one heartbeat of activity.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globals.configPath, "config", "", "Config file (default ~/.config/focuslog/config.toml)")
	flags.StringVar(&globals.logPath, "log-path", "", "Activity log path")
	flags.DurationVar(&globals.heartbeat, "heartbeat", 0, "Heartbeat interval, e.g. 10s")

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewStartCommand())
	rootCmd.AddCommand(NewStopCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewReportCommand())
	rootCmd.AddCommand(NewTailCommand())
	rootCmd.AddCommand(NewArchiveCommand())
	rootCmd.AddCommand(NewIndexCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig applies file, environment and flag settings over the defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(globals.configPath)
	if err != nil {
		return nil, err
	}

	if globals.logPath != "" {
		cfg.Log.Path = globals.logPath
	}
	if globals.heartbeat != 0 {
		if err := cfg.SetHeartbeatInterval(globals.heartbeat); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
