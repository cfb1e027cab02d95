package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"NewsBrief/internal/app"
	"NewsBrief/internal/config"
	"NewsBrief/internal/handler"
	"NewsBrief/internal/logging"
)

func main() {
	envErr := config.LoadDotEnv()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Debug(".env not loaded", "error", envErr)
	}

	application, err := app.New(cfg, logger, app.Options{SkipPublishers: true})
	if err != nil {
		log.Fatalf("error building application: %v", err)
	}

	r := gin.Default()

	allowedOrigins := cfg.HTTP.AllowOrigins
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	handler.NewBriefHandler(application, logger.With("component", "handler")).Register(r)

	if err := r.Run(cfg.HTTP.Addr); err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
