package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vidgrab/vidgrab/server"
	"go.uber.org/zap"
)

func newServeCommand(flags *globalFlags, deps dependencies) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, logger, err := loadConfig(ctx, flags, deps)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}

			fetcher, err := deps.newFetcher(ctx, logger, cfg)
			if err != nil {
				return err
			}

			srv, err := server.NewVideoServerBuilder(*cfg, logger).
				WithFetcher(fetcher).
				Build(ctx)
			if err != nil {
				return err
			}

			runErr := srv.Start(ctx)

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ServerConfig.ShutdownTimeout)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				logger.Error("shutdown failed", zap.Error(err))
			}

			return runErr
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "HTTP listen port (overrides PORT)")
	return cmd
}
