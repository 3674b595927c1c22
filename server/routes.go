package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	chaterrors "chat-router/errors"
	"chat-router/formatter"
	"chat-router/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes sets up all routes on the gin engine.
func registerRoutes(router *gin.Engine, svc Service, logger *slog.Logger) {
	router.POST("/chat", handleStart(svc, logger))
	router.POST("/chat/send", handleSend(svc))
	router.DELETE("/chat", handleEnd(svc))

	router.GET("/monitor", handleMonitor(svc))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
}

func handleStart(svc Service, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := svc.StartSession(c.Request.Context(), c.Query("userName"))
		switch {
		case errors.Is(err, chaterrors.ErrEmptyCustomer):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, chaterrors.ErrChatRefused):
			c.JSON(http.StatusOK, gin.H{"refused": true, "message": chaterrors.RefusalMessage})
		case err != nil:
			logger.Error("start session", slog.Any("error", err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusOK, gin.H{"session_id": id})
		}
	}
}

func handleSend(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := svc.SendMessage(c.Request.Context(), c.Query("sessionId"), c.Query("message"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

func handleEnd(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ended": svc.EndSession(c.Request.Context(), c.Query("sessionId"))})
	}
}

var contentTypes = map[string]string{
	formatter.Text: "text/plain; charset=utf-8",
	formatter.JSON: "application/json; charset=utf-8",
	formatter.CSV:  "text/csv; charset=utf-8",
}

func handleMonitor(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		format := strings.ToLower(c.DefaultQuery("format", formatter.JSON))
		body, err := formatter.Format(format, svc.Snapshot())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ct, ok := contentTypes[format]
		if !ok {
			ct = contentTypes[formatter.Text]
		}
		c.Data(http.StatusOK, ct, []byte(body))
	}
}
