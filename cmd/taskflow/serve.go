package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/taskflow/internal/api"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API",
		Long: `Serve the task, timer and calendar REST API.

Examples:
  taskflow serve
  taskflow serve --addr :8080 --config taskflow.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load(os.Stderr)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			repo, err := openRepository(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer repo.Close()

			log.Info("storage ready", "driver", cfg.Storage.Driver)
			server := api.NewServer(newPlanner(repo, cfg, log), log)
			return server.Run(ctx, cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
