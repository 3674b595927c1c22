package main

import (
	"fmt"
	"io"
	"log/slog"

	"chat-router/queue"

	"github.com/spf13/cobra"
)

func newRosterCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "roster",
		Short: "List the teams and their chat capacity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			dir, err := loadDirectory(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, team := range dir.Teams() {
				q := queue.New(queue.Settings{})
				q.SetCapacity(team.Capacity())
				fmt.Fprintf(out, "%s [%s] capacity=%d queue=%d\n", team.Name, team.Shift, q.TeamCapacity(), q.WaitCeiling())
				for _, a := range team.Agents {
					fmt.Fprintf(out, "  %-12s %-10s %-9s %d\n", a.ID, a.Nickname, a.Seniority, a.Capacity())
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to chat-router config file")
	return cmd
}
