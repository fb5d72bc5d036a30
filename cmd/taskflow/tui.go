package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/taskflow/internal/scheduler"
	"github.com/sandeepkv93/taskflow/internal/update"
)

func tuiCmd(opts *rootOptions) *cobra.Command {
	var (
		userID  string
		logFile string
	)
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal planner",
		RunE: func(cmd *cobra.Command, args []string) error {
			// the terminal belongs to the UI, so logs go to a file or nowhere
			var w io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("failed to open log file: %w", err)
				}
				defer f.Close()
				w = f
			}
			cfg, log, err := opts.load(w)
			if err != nil {
				return err
			}

			repo, err := openRepository(context.Background(), cfg)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer repo.Close()

			engine := scheduler.NewEngine(cfg.Scheduler.Buffer)
			engine.Start()
			defer engine.Stop()

			model := update.NewModel(update.Options{
				Planner:   newPlanner(repo, cfg, log),
				Scheduler: engine,
				UserID:    userID,
				Timer:     cfg.Timer,
				Log:       log,
			})
			if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
				return fmt.Errorf("taskflow tui failed: %w", err)
			}
			if n := engine.Dropped(); n > 0 {
				log.Warn("alerts dropped", "count", n)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "local", "user id whose tasks are shown")
	cmd.Flags().StringVar(&logFile, "log-file", "", "append logs to this file")
	return cmd
}
