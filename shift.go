package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"chat-router/scheduler"

	"github.com/spf13/cobra"
)

func newShiftCmd() *cobra.Command {
	var (
		configPath string
		at         string
	)

	cmd := &cobra.Command{
		Use:   "shift",
		Short: "Show the current shift and the next change",
		Long:  "Evaluates the shift windows in the configured time zone and prints the team on duty and the next rotation.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			dir, err := loadDirectory(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
			if err != nil {
				return err
			}

			now := time.Now()
			if at != "" {
				if now, err = time.Parse(time.RFC3339, at); err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
			}

			current := scheduler.ShiftOf(now, loc)
			next, nextShift := scheduler.NextChange(now, loc)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Current shift: %s (%s)\n", current, dir.Team(current).Name)
			fmt.Fprintf(out, "Next change:   %s -> %s (in %s)\n",
				next.Format("2006-01-02 15:04 MST"), nextShift, next.Sub(now).Round(time.Minute))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to chat-router config file")
	cmd.Flags().StringVar(&at, "at", "", "evaluate at this RFC3339 time instead of now")
	return cmd
}
