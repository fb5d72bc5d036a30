package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/taskflow/internal/config"
	"github.com/sandeepkv93/taskflow/internal/storage"
)

func migrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the database schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Create or upgrade the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load(os.Stderr)
			if err != nil {
				return err
			}
			if cfg.Storage.Driver == config.DriverPostgres {
				repo, err := storage.OpenPostgres(context.Background(), cfg.Storage.DSN)
				if err != nil {
					return err
				}
				defer repo.Close()
				log.Info("schema ready", "driver", cfg.Storage.Driver)
				return nil
			}
			return withSQLite(cfg.Storage.Path, func(db *sql.DB) error {
				if err := storage.MigrateUp(db); err != nil {
					return err
				}
				log.Info("migrations applied", "path", cfg.Storage.Path)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Drop the schema (sqlite only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load(os.Stderr)
			if err != nil {
				return err
			}
			if cfg.Storage.Driver != config.DriverSQLite {
				return fmt.Errorf("migrate down is only supported for %s", config.DriverSQLite)
			}
			return withSQLite(cfg.Storage.Path, func(db *sql.DB) error {
				if err := storage.MigrateDown(db); err != nil {
					return err
				}
				log.Info("migrations rolled back", "path", cfg.Storage.Path)
				return nil
			})
		},
	})
	return cmd
}

func withSQLite(path string, fn func(*sql.DB) error) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()
	return fn(db)
}
