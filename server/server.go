// Package server exposes the chat router over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"chat-router/models"

	"github.com/gin-gonic/gin"
)

// Service is the routing surface the HTTP handlers drive.
type Service interface {
	StartSession(ctx context.Context, customer string) (string, error)
	EndSession(ctx context.Context, id string) bool
	SendMessage(ctx context.Context, id, text string) (*models.ChatSession, error)
	Snapshot() models.Snapshot
}

// StartOpts holds configuration for starting the HTTP server.
type StartOpts struct {
	Addr    string
	Service Service
	Logger  *slog.Logger
}

// shutdownTimeout bounds how long in-flight requests get after ctx is done.
const shutdownTimeout = 10 * time.Second

// Handler builds the gin engine serving every route.
func Handler(svc Service, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	router := gin.New()
	router.Use(gin.Recovery())
	registerRoutes(router, svc, logger)
	return router
}

// Start runs the HTTP server until ctx is cancelled.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Service == nil {
		return fmt.Errorf("server: service is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           Handler(opts.Service, opts.Logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			opts.Logger.Warn("http shutdown", slog.Any("error", err))
		}
	}()

	opts.Logger.Info("http server listening", slog.String("addr", opts.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
