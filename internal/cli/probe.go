package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/vidgrab/vidgrab/server"
	"github.com/vidgrab/vidgrab/types"
)

func newProbeCommand(flags *globalFlags, deps dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <url>",
		Short: "Print the metadata of a video page as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, logger, err := loadConfig(ctx, flags, deps)
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			fetcher, err := deps.newFetcher(ctx, logger, cfg)
			if err != nil {
				return err
			}

			store, err := server.NewFilesystemArtifactStore(cfg.DownloadDir)
			if err != nil {
				return err
			}

			service := server.NewDownloadService(logger, fetcher, store, server.WithMaxFileSizeMB(cfg.MaxFileSizeMB))
			metadata, err := service.GetInfo(ctx, types.DownloadRequest{URL: args[0]})
			if err != nil {
				return server.Classify(err, server.OperationInfo, cfg.MaxFileSizeMB)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(metadata)
		},
	}
}
