package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/adtech-emissions/internal/api"
	"github.com/rshade/adtech-emissions/internal/config"
	"github.com/rshade/adtech-emissions/internal/defaults"
	"github.com/rshade/adtech-emissions/internal/facts"
	"github.com/rshade/adtech-emissions/internal/logging"
	"github.com/rshade/adtech-emissions/internal/rpc"
	"github.com/rshade/adtech-emissions/internal/service"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API and the gRPC service",
		Long:  "Serve the REST API on PORT and the gRPC service on GRPC_PORT. Settings come from the environment.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bootstrap, err := logging.New(os.Stderr, "")
			if err != nil {
				return err
			}
			cfg, err := config.Load(bootstrap)
			if err != nil {
				return err
			}
			logger, err := logging.New(os.Stderr, cfg.LogLevel)
			if err != nil {
				return err
			}

			store, err := defaults.Load(cfg.DefaultsPaths(), logger)
			if err != nil {
				return fmt.Errorf("load defaults: %w", err)
			}
			var public *facts.PublicIndex
			if cfg.DataDir != "" {
				if public, err = facts.NewPublicIndex(os.DirFS(cfg.DataDir), logger); err != nil {
					return fmt.Errorf("index %s: %w", cfg.DataDir, err)
				}
			}
			svc := service.New(store, public, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return api.New(svc, cfg.CORS, logger).Run(ctx, cfg.HTTPAddr())
			})
			g.Go(func() error {
				return rpc.New(svc, logger).Run(ctx, cfg.GRPCAddr())
			})
			err = g.Wait()
			logger.Info().Err(err).Msg("servers stopped")
			return err
		},
	}
}
