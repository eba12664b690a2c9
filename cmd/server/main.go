package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"attrgo/internal/delivery"
	"attrgo/internal/domain"
	"attrgo/internal/infrastructure"
	"attrgo/internal/usecase"
	"attrgo/pkg/config"
	"attrgo/pkg/logger"
	"attrgo/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)
	log.Info("Starting attribution service")

	m := metrics.New()

	// Optional server-side record mirror
	var mirror domain.RecordMirror
	if cfg.External.RedisAddr != "" {
		redisMirror := infrastructure.NewRedisRecordMirror(cfg.External.RedisAddr, cfg.External.RedisPassword, log)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisMirror.Ping(ctx); err != nil {
			log.WithError(err).Warn("Record mirror unreachable, continuing with cookies only")
		} else {
			mirror = redisMirror
			log.WithField("addr", cfg.External.RedisAddr).Info("Record mirror enabled")
		}
		cancel()
	}

	ghlClient := infrastructure.NewGHLClient(
		cfg.External.GHLAPIURL,
		cfg.External.GHLAPIKey,
		cfg.External.GHLWebhookSecret,
		cfg.Attribution.RequestTimeout,
		cfg.Attribution.RateLimitPerSecond,
		log,
		m,
	)

	leadRepo := infrastructure.NewLeadRepository(log)

	attributionService := usecase.NewAttributionService(mirror, cfg.Attribution.CookieMaxAge, log, m)
	leadService := usecase.NewLeadService(leadRepo, ghlClient, attributionService, log, m)

	handlers := delivery.NewHTTPHandlers(attributionService, leadService, cfg.Attribution.CookieMaxAge, log, m)
	router := delivery.NewHTTPRouter(handlers, log, m)

	engine := router.SetupRoutes()

	log.WithField("port", cfg.Server.Port).Info("Listening")
	if err := engine.Run(":" + cfg.Server.Port); err != nil {
		log.WithError(err).Error("Server stopped")
		os.Exit(1)
	}
}
