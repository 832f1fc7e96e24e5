package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var buildInfo = struct {
	version, commit, date string
}{"dev", "none", "unknown"}

// SetVersion records the build metadata printed by the version command.
func SetVersion(version, commit, date string) {
	buildInfo.version, buildInfo.commit, buildInfo.date = version, commit, date
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "focuslog %s (commit %s, built %s, %s)\n",
				buildInfo.version, buildInfo.commit, buildInfo.date, runtime.Version())
		},
	}
}
