package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/taskflow/internal/config"
	"github.com/sandeepkv93/taskflow/internal/service"
	"github.com/sandeepkv93/taskflow/internal/storage"
)

var Version = "dev"

type rootOptions struct {
	configPath string
	logLevel   string
}

func main() {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:          "taskflow",
		Short:        "taskflow - day planner with live task timers and a month calendar",
		Version:      Version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(tuiCmd(opts))
	rootCmd.AddCommand(migrateCmd(opts))
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the taskflow version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// load reads the config and installs the default logger writing to w.
func (o *rootOptions) load(w io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, nil, err
	}
	log := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)
	return cfg, log, nil
}

func openRepository(ctx context.Context, cfg *config.Config) (storage.Repository, error) {
	if cfg.Storage.Driver == config.DriverPostgres {
		repo, err := storage.OpenPostgres(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		return repo, nil
	}
	repo, err := storage.OpenSQLite(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func newPlanner(repo storage.Repository, cfg *config.Config, log *slog.Logger) *service.Planner {
	return service.New(repo,
		service.WithLogger(log),
		service.WithWeekStart(cfg.WeekStart()),
		service.WithUpcomingLimit(cfg.Calendar.UpcomingLimit),
	)
}
