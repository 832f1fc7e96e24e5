package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/actionsum/focuslog/internal/logstore"
	"github.com/actionsum/focuslog/internal/reporter"
)

type reportOptions struct {
	json   bool
	source string
}

// NewReportCommand creates the report command
func NewReportCommand() *cobra.Command {
	opts := &reportOptions{}
	cmd := &cobra.Command{
		Use:       "report [day|week|month]",
		Short:     "Summarize time per window class",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"day", "today", "week", "month"},
		RunE: func(cmd *cobra.Command, args []string) error {
			period := "day"
			if len(args) == 1 {
				period = args[0]
			}
			return runReport(period, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the report as JSON")
	cmd.Flags().StringVar(&opts.source, "source", "log", "Read from the activity log (log) or the SQLite index (index)")
	return cmd
}

func runReport(period string, opts *reportOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	var source reporter.Summarizer
	switch opts.source {
	case "log":
		source = logstore.NewReader(cfg.Log.Path)
	case "index":
		repo, closeIndex, err := openIndex(cfg.Index.Path)
		if err != nil {
			return fmt.Errorf("failed to open index: %w", err)
		}
		defer closeIndex()
		source = repo
	default:
		return fmt.Errorf("invalid source %q (valid: log, index)", opts.source)
	}

	rep := reporter.New(source, loc)
	report, err := rep.GenerateReport(period)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if opts.json {
		out, err := rep.FormatReportJSON(report)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	fmt.Print(rep.FormatReportText(report))
	return nil
}
