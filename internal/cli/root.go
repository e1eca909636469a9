package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/vidgrab/vidgrab/server"
	"github.com/vidgrab/vidgrab/server/config"
	"go.uber.org/zap"
)

// dependencies are the seams the commands use to reach the outside world
type dependencies struct {
	newFetcher func(ctx context.Context, logger *zap.Logger, cfg *config.Config) (server.Fetcher, error)
	newLogger  func(debug bool) (*zap.Logger, error)
}

func defaultDependencies() dependencies {
	return dependencies{
		newFetcher: func(ctx context.Context, logger *zap.Logger, cfg *config.Config) (server.Fetcher, error) {
			if cfg.FetchConfig.AutoInstall && cfg.FetchConfig.Executable == "" {
				if err := server.InstallYTDLP(ctx, logger); err != nil {
					return nil, err
				}
			}
			return server.NewYTDLPFetcher(logger, cfg.FetchConfig.Executable), nil
		},
		newLogger: server.NewLogger,
	}
}

// globalFlags are shared by every subcommand; a set flag wins over the environment
type globalFlags struct {
	downloadDir string
	debug       bool
}

// base returns the config fields the flags override
func (f *globalFlags) base() *config.Config {
	return &config.Config{
		ServiceName:    server.BuildServiceName,
		ServiceVersion: server.BuildServiceVersion,
		DownloadDir:    f.downloadDir,
		Debug:          f.debug,
	}
}

// NewRootCommand builds the vidgrab command tree
func NewRootCommand() *cobra.Command {
	return newRootCommand(defaultDependencies())
}

func newRootCommand(deps dependencies) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "vidgrab",
		Short: "A small HTTP service that downloads videos from public pages.",
		Long: `vidgrab accepts a page URL, asks yt-dlp for the video's metadata or downloads
the video at a requested quality, and serves the resulting file back over HTTP.

Downloaded files are kept for FILE_CLEANUP_HOURS and then removed by a background
reaper. Configuration is read from the environment; the flags below override it.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.downloadDir, "download-dir", "", "directory holding downloaded files (overrides DOWNLOAD_DIR)")
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging (overrides DEBUG)")

	rootCmd.AddCommand(
		newServeCommand(flags, deps),
		newSweepCommand(flags, deps),
		newProbeCommand(flags, deps),
		newVersionCommand(),
	)

	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the environment on top of the flag values and builds a matching logger
func loadConfig(ctx context.Context, flags *globalFlags, deps dependencies) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(ctx, flags.base())
	if err != nil {
		return nil, nil, err
	}

	logger, err := deps.newLogger(cfg.Debug)
	if err != nil {
		return nil, nil, err
	}

	return cfg, logger, nil
}
