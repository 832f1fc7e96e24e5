package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/actionsum/focuslog/internal/daemon"
	"github.com/actionsum/focuslog/internal/logstore"
	"github.com/actionsum/focuslog/pkg/detector"
	"github.com/actionsum/focuslog/pkg/utils"
)

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show tracker state, the last logged interval and the focused window",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if running {
		fmt.Printf("Status: Running (PID: %d)\n", pid)
	} else {
		fmt.Println("Status: Not running")
	}
	fmt.Printf("Heartbeat: %v\n", cfg.Tracker.HeartbeatInterval)
	fmt.Printf("Activity log: %s\n", cfg.Log.Path)
	if cfg.Index.Enabled {
		fmt.Printf("Index: %s\n", cfg.Index.Path)
	}

	nextID, err := logstore.RecoverNextID(cfg.Log.Path)
	if err != nil {
		return err
	}
	fmt.Printf("Next id: %d\n", nextID)

	last, err := logstore.NewReader(cfg.Log.Path).Last()
	if err != nil {
		return err
	}
	if last != nil {
		ago := int64(time.Since(last.EndTime) / time.Second)
		fmt.Printf("\nLast interval (%s ago):\n", utils.FormatRoundedUnit(ago))
		fmt.Printf("  Id: %d\n", last.ID)
		fmt.Printf("  Class: %s\n", last.WindowClass)
		fmt.Printf("  Title: %s\n", last.WindowTitle)
		fmt.Printf("  Duration: %s\n", utils.FormatClock(last.Duration))
	}

	resolver, err := detector.NewResolver()
	if err != nil {
		fmt.Printf("\nCould not detect current window: %v\n", err)
		return nil
	}
	defer resolver.Close()

	id, title, err := resolver.ActiveWindow()
	if err != nil {
		fmt.Printf("\nCould not detect current window: %v\n", err)
		return nil
	}
	class, err := resolver.ResolveClass(id)
	if err != nil {
		class = "(unknown)"
	}
	fmt.Printf("\nCurrent Window:\n")
	fmt.Printf("  Id: %d\n", id)
	fmt.Printf("  Class: %s\n", class)
	fmt.Printf("  Title: %s\n", title)
	return nil
}
