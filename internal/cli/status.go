package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meeting-twin/internal/config"
	"github.com/nguyentantai21042004/meeting-twin/internal/logger"
	"github.com/nguyentantai21042004/meeting-twin/internal/poller"
	"github.com/nguyentantai21042004/meeting-twin/internal/watcher"
)

func NewStatusCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a recording is live and the last analyzed fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(deps.ConfigPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			var last *poller.Record
			if cfg.Poller.StateFile != "" {
				st, err := poller.NewFileStore(cfg.Poller.StateFile, logger.New("warn"))
				if err != nil {
					return fmt.Errorf("opening poller state: %w", err)
				}
				if rec, ok := st.Last(); ok {
					last = &rec
				}
			}

			out := newFormatter(os.Stdout)
			out.Status(watcher.NewRecordingFlag(cfg.Paths.Control).IsSet(), last)
			return nil
		},
	}

	return cmd
}
