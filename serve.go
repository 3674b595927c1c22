package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"chat-router/config"
	"chat-router/driver"
	"chat-router/events"
	"chat-router/metrics"
	"chat-router/router"
	"chat-router/server"

	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/cobra"
)

const pushJobName = "chat_router"

func newServeCmd() *cobra.Command {
	var (
		configPath string
		listen     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat router",
		Long:  "Starts the HTTP API and the maintenance loop that expires, promotes and rotates chats.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}
			return runServe(cmd, cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to chat-router config file (defaults when empty)")
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "HTTP listen address, overrides the config file")
	return cmd
}

func runServe(cmd *cobra.Command, cfg *config.Config) error {
	logger := newLogger(cfg, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	dir, err := loadDirectory(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pub := newPublisher(ctx, cfg, logger)
	defer pub.Close()

	r, err := router.New(router.Config{
		Settings: router.Settings{
			MaxRetry:             cfg.Chat.MaxRetry,
			ExpiryHorizon:        cfg.ExpiryHorizon(),
			CheckLiveInterval:    cfg.CheckLiveInterval(),
			CheckExpiredInterval: cfg.CheckExpiredInterval(),
			AutoAssign:           cfg.AutoAssign(),
			CheckChangeInterval:  cfg.CheckChangeInterval(),
			DefaultShift:         cfg.Shift.DefaultShift,
			Location:             loc,
		},
		Directory: dir,
		Logger:    logger,
		Publisher: pub,
	})
	if err != nil {
		return err
	}

	driverDone := make(chan error, 1)
	go func() {
		driverDone <- driver.Run(ctx, r, cfg.PeriodicRun(), logger)
	}()

	serveErr := server.Start(ctx, server.StartOpts{
		Addr:    cfg.Listen,
		Service: r,
		Logger:  logger,
	})
	stop()
	if err := <-driverDone; err != nil && serveErr == nil {
		serveErr = err
	}

	pushMetrics(cfg.Metrics.PushURL, logger)
	return serveErr
}

// newPublisher connects to RabbitMQ when configured. A broker that cannot be
// reached degrades to logging events instead of failing startup.
func newPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) events.Publisher {
	if cfg.Events.AMQPURL == "" {
		return events.NewFallback(logger)
	}

	pub, err := events.NewAMQP(ctx, events.ConnectionOptions{
		URL:           cfg.Events.AMQPURL,
		RetryAttempts: cfg.Events.RetryAttempts,
		Delay:         time.Second,
		Logger:        logger,
	}, cfg.Events.Exchange)
	if err != nil {
		logger.Warn("event broker unavailable, logging events instead", slog.Any("error", err))
		return events.NewFallback(logger)
	}
	return pub
}

func pushMetrics(url string, logger *slog.Logger) {
	if url == "" {
		return
	}
	if err := push.New(url, pushJobName).Gatherer(metrics.Registry).Push(); err != nil {
		logger.Error("pushing to Pushgateway", slog.Any("error", fmt.Errorf("push %s: %w", url, err)))
		return
	}
	logger.Info("metrics pushed to Pushgateway", slog.String("url", url))
}
