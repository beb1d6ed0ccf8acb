// Package main implements the entry point for the Owlingo generation API,
// the service that produces AI-generated language activities for the LMS.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/owlingo/owlingo-api/internal/config"
	"github.com/owlingo/owlingo-api/internal/platform/logger"
)

func main() {
	cfg, appLogger, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	ctx := context.Background()
	app, err := newApplication(ctx, cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"llm_order", cfg.Providers.LLMOrder,
		"tts_order", cfg.Providers.TTSOrder)
	if cfg.Database.URL != "" {
		appLogger.Debug("Usage audit database configured", "url_present", true)
	}

	return cfg, appLogger, nil
}
