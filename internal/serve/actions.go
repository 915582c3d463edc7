package serve

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/finvarta/annbrief/models"
)

func ServeAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(2)
	}

	srv := NewServer(cfg, logger)
	addr := c.String("addr")

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting HTTP server", "addr", addr,
		"openai_configured", cfg.OpenAIAPIKey != "",
		"email_configured", cfg.EmailConfigured())

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("HTTP server failed", "error", err)
		os.Exit(2)
	}
	return nil
}
