package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Kocoro-lab/Shannon/go/citations/internal/config"
	"github.com/Kocoro-lab/Shannon/go/citations/internal/formatting"
	"github.com/Kocoro-lab/Shannon/go/citations/internal/httpapi"
)

func main() {
	loader := config.NewLoader("")
	cfg, err := loader.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if !loader.FileLoaded() {
		logger.Warn("Config file not found, using defaults and environment", zap.String("path", loader.Path()))
	} else {
		logger.Info("Loaded configuration", zap.String("path", loader.Path()))
	}

	handler := httpapi.NewCitationsHandler(logger, displayOptions(cfg.Display), cfg.Server.MaxBodyBytes)
	loader.Watch(logger, func(next *config.Config) {
		handler.SetDisplayOptions(displayOptions(next.Display))
	})

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	limiter := httpapi.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpapi.RequestID(limiter.Middleware(mux)),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutMs) * time.Millisecond,
	}
	go func() {
		logger.Info("Citations API listening",
			zap.Int("port", cfg.Server.Port),
			zap.Float64("rate_limit_rps", cfg.RateLimit.RequestsPerSecond))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Citations API server failed", zap.Error(err))
		}
	}()

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler:           metricsMux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("Metrics server listening", zap.Int("port", cfg.Metrics.Port))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Failed to start metrics server", zap.Error(err))
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutting down citations service")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown citations API", zap.Error(err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Error("Failed to shutdown metrics server", zap.Error(err))
		}
	}
}

// newLogger builds a production JSON logger, or a console logger when configured.
func newLogger(c config.LoggingConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", c.Level, err)
	}
	zc.Level = level
	return zc.Build()
}

func displayOptions(d config.DisplayConfig) formatting.DisplayOptions {
	return formatting.DisplayOptions{
		MaxItems:         d.MaxItems,
		PlaceholderTitle: d.PlaceholderTitle,
		SnippetMaxRunes:  d.SnippetMaxRunes,
	}
}
