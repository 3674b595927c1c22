package main

import (
	"fmt"
	"io"
	"log/slog"

	"chat-router/config"
	"chat-router/metrics"
	"chat-router/models"
	"chat-router/parser"
	"chat-router/scheduler"
)

// loadConfig reads path, or returns the defaults when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// loadDirectory builds the team directory from the roster file, falling back
// to the built-in teams when none is configured.
func loadDirectory(cfg *config.Config, logger *slog.Logger) (*scheduler.Directory, error) {
	teams := models.DefaultTeams()
	if cfg.RostersFile != "" {
		var err error
		teams, err = parser.ParseFile(cfg.RostersFile)
		if err != nil {
			return nil, fmt.Errorf("load roster: %w", err)
		}

		agents := 0
		for _, t := range teams {
			agents += len(t.Agents)
		}
		metrics.RosterAgentsLoaded.Set(float64(agents))
		logger.Info("roster loaded",
			slog.String("file", cfg.RostersFile),
			slog.Int("teams", len(teams)),
			slog.Int("agents", agents),
		)
	}

	dir, err := scheduler.NewDirectory(teams)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	return dir, nil
}
