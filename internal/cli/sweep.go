package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vidgrab/vidgrab/server"
)

func newSweepCommand(flags *globalFlags, deps dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Remove expired downloads once and exit",
		Long: `sweep runs a single retention pass over the download directory, removing every
file older than FILE_CLEANUP_HOURS. Use it from cron when the server's own reaper
is disabled with REAPER_ENABLE=false.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd.Context(), flags, deps)
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			store, err := server.NewFilesystemArtifactStore(cfg.DownloadDir)
			if err != nil {
				return err
			}

			reaper := server.NewRetentionReaper(logger, store, cfg.RetentionTTL(), cfg.ReaperConfig.Interval)
			removed, err := reaper.Sweep(cmd.Context())
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %d file(s) from %s\n", removed, store.Dir())
			return err
		},
	}
}
