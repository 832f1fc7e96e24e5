package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/actionsum/focuslog/internal/config"
	"github.com/actionsum/focuslog/internal/daemon"
	"github.com/actionsum/focuslog/internal/database"
	"github.com/actionsum/focuslog/internal/logging"
	"github.com/actionsum/focuslog/internal/logstore"
	"github.com/actionsum/focuslog/internal/tracker"
	"github.com/actionsum/focuslog/pkg/detector"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Track window focus in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return track(cmd.Context(), cfg, os.Stderr)
		},
	}
}

// NewStartCommand creates the start command
func NewStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start tracking in the background",
		Args:  cobra.NoArgs,
		RunE:  runStart,
	}
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if running && !daemon.IsChild() {
		return fmt.Errorf("daemon is already running (PID: %d)", pid)
	}

	if !daemon.IsChild() {
		pid, err := daemon.Daemonize(os.Args)
		if err != nil {
			return err
		}
		fmt.Printf("Daemon started successfully (PID: %d)\n", pid)
		fmt.Printf("Activity log: %s\n", cfg.Log.Path)
		fmt.Printf("Logs: %s\n", cfg.Daemon.LogFile)
		return nil
	}

	logFile, err := os.OpenFile(cfg.Daemon.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open daemon log: %w", err)
	}
	defer logFile.Close()

	return track(cmd.Context(), cfg, logFile)
}

// track runs the aggregator until a signal arrives or tracking fails.
func track(ctx context.Context, cfg *config.Config, logOut io.Writer) error {
	logger, err := logging.Setup(logOut, logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return err
	}

	w, err := logstore.Open(cfg.Log.Path)
	if err != nil {
		if errors.Is(err, logstore.ErrLocked) {
			return fmt.Errorf("another focuslog instance is already tracking %s", cfg.Log.Path)
		}
		return fmt.Errorf("failed to open activity log: %w", err)
	}
	defer w.Close()

	opts := []tracker.Option{
		tracker.WithHeartbeat(cfg.Tracker.HeartbeatInterval),
		tracker.WithLogger(logger.With("component", "tracker")),
	}

	if cfg.Index.Enabled {
		if repo, closeIndex, err := openIndex(cfg.Index.Path); err != nil {
			logger.Warn("index mirror disabled", "path", cfg.Index.Path, "error", err)
		} else {
			defer closeIndex()
			opts = append(opts, tracker.WithMirror(repo), tracker.WithErrorRecorder(repo))
		}
	}

	source, resolver, err := detector.New()
	if err != nil {
		return fmt.Errorf("failed to initialize window detection: %w", err)
	}
	defer source.Close()
	defer resolver.Close()

	dm := daemon.New(cfg.Daemon.PIDFile)
	if err := dm.WritePID(); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	defer dm.RemovePID()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting focuslog",
		"log_path", cfg.Log.Path,
		"index", cfg.Index.Enabled,
		"pid", os.Getpid(),
	)

	agg := tracker.NewAggregator(w, resolver, w.NextID(), opts...)
	err = agg.Run(ctx, source)
	if errors.Is(err, context.Canceled) {
		logger.Info("focuslog stopped")
		return nil
	}

	var terr *tracker.TransportError
	if errors.As(err, &terr) {
		logger.Error("window event stream failed", "source", terr.Source, "error", terr.Err)
	}
	return err
}

func openIndex(path string) (*database.Repository, func(), error) {
	db, err := database.Connect(path)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, nil, err
	}
	closeFn := func() {
		if err := db.Close(); err != nil {
			slog.Warn("failed to close index", "error", err)
		}
	}
	return database.NewRepository(db), closeFn, nil
}
