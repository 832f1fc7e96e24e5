package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/actionsum/focuslog/internal/logstore"
	"github.com/actionsum/focuslog/internal/models"
	"github.com/actionsum/focuslog/pkg/utils"
)

type tailOptions struct {
	lines  int
	follow bool
}

// NewTailCommand creates the tail command
func NewTailCommand() *cobra.Command {
	opts := &tailOptions{}
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print the most recent intervals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			recent, err := logstore.Tail(cfg.Log.Path, opts.lines)
			if err != nil {
				return err
			}
			for _, iv := range recent {
				printInterval(os.Stdout, iv)
			}

			if !opts.follow {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = logstore.Follow(ctx, cfg.Log.Path, func(iv models.Interval) {
				printInterval(os.Stdout, iv)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 10, "Number of intervals to print")
	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Keep printing intervals as they are logged")
	return cmd
}

func printInterval(w io.Writer, iv models.Interval) {
	fmt.Fprintf(w, "%6d  %s  %s  %-20s %s\n",
		iv.ID,
		iv.StartTime.Local().Format(models.TimeLayout),
		utils.FormatClock(iv.Duration),
		iv.WindowClass,
		iv.WindowTitle)
}
