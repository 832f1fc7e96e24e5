package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/actionsum/focuslog/internal/logstore"
)

// NewIndexCommand creates the index command
func NewIndexCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the SQLite index mirror of the activity log",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "rebuild",
		Short: "Replace the index contents with the rows of the activity log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			intervals, err := logstore.ReadAll(cfg.Log.Path)
			if err != nil {
				return err
			}

			repo, closeIndex, err := openIndex(cfg.Index.Path)
			if err != nil {
				return fmt.Errorf("failed to open index: %w", err)
			}
			defer closeIndex()

			if err := repo.Rebuild(intervals); err != nil {
				return err
			}
			fmt.Printf("Indexed %d intervals into %s\n", len(intervals), cfg.Index.Path)
			return nil
		},
	})

	var limit int
	errorsCmd := &cobra.Command{
		Use:   "errors",
		Short: "List recent non-fatal tracker failures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			repo, closeIndex, err := openIndex(cfg.Index.Path)
			if err != nil {
				return fmt.Errorf("failed to open index: %w", err)
			}
			defer closeIndex()

			logs, err := repo.RecentErrors(limit)
			if err != nil {
				return err
			}
			if len(logs) == 0 {
				fmt.Println("No errors recorded")
				return nil
			}
			for _, l := range logs {
				fmt.Printf("%s  %-10s %s\n", l.Timestamp.Local().Format("2006-01-02 15:04:05"), l.Component, l.ErrorMsg)
			}
			return nil
		},
	}
	errorsCmd.Flags().IntVarP(&limit, "lines", "n", 20, "Number of entries to show")
	cmd.AddCommand(errorsCmd)

	return cmd
}
