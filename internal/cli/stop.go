package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meeting-twin/internal/config"
	"github.com/nguyentantai21042004/meeting-twin/internal/watcher"
)

func NewStopCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Ask a running recording to finish",
		Long:  "Raise the stop flag in the control directory. The recording process finishes the session and writes the final summary.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(deps.ConfigPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			out := newFormatter(os.Stdout)
			if !watcher.NewRecordingFlag(cfg.Paths.Control).IsSet() {
				out.Warning("no recording in progress")
				return nil
			}

			flag := watcher.NewStopFlag(cfg.Paths.Control)
			if err := flag.Set(); err != nil {
				return err
			}
			out.Success("stop requested (" + flag.Path() + ")")
			return nil
		},
	}

	return cmd
}
