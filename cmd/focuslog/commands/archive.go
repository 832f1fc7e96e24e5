package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/actionsum/focuslog/internal/archive"
)

// NewArchiveCommand creates the archive command
func NewArchiveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive [dir]",
		Short: "Write a compressed snapshot of the activity log",
		Long: `Write a zstd compressed copy of the activity log as
activity-YYYYMMDD-HHMMSS.csv.zst. The log itself is not modified, so this is
safe while the tracker is running. The default directory is "archive" next
to the log.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			dir := filepath.Join(filepath.Dir(cfg.Log.Path), "archive")
			if len(args) == 1 {
				dir = args[0]
			}

			path, err := archive.Snapshot(cfg.Log.Path, dir, time.Now())
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "cat <file>",
		Short: "Print the CSV contents of a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := archive.Open(args[0])
			if err != nil {
				return err
			}
			defer rc.Close()

			if _, err := io.Copy(os.Stdout, rc); err != nil {
				return fmt.Errorf("decompress: %w", err)
			}
			return nil
		},
	})

	return cmd
}
