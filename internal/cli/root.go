// Package cli wires the meeting-twin components into cobra commands.
package cli

import (
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

// Dependencies are shared by every command. The config is loaded lazily
// so that --config is honoured.
type Dependencies struct {
	ConfigPath string
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "twin",
		Short: "Live meeting capture, summaries and change-driven analysis",
		Long: "meeting-twin records a meeting from two audio devices, transcribes and summarizes it " +
			"chunk by chunk, and watches the meeting document to analyze each finished meeting once.",
		SilenceUsage: true,
	}

	rootCmd.Version = Version
	rootCmd.PersistentFlags().StringVarP(&deps.ConfigPath, "config", "c", "config.yaml", "path to config file")

	rootCmd.AddCommand(NewRecordCmd(deps))
	rootCmd.AddCommand(NewWatchCmd(deps))
	rootCmd.AddCommand(NewResolveCmd(deps))
	rootCmd.AddCommand(NewStopCmd(deps))
	rootCmd.AddCommand(NewStatusCmd(deps))

	return rootCmd
}
