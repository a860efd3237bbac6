package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/afroash/aqi-monitor/internal/config"
	"github.com/afroash/aqi-monitor/internal/logging"
	"github.com/afroash/aqi-monitor/internal/prediction"
	"github.com/afroash/aqi-monitor/internal/regressor"
	"github.com/afroash/aqi-monitor/internal/server"
	"github.com/afroash/aqi-monitor/internal/source"
)

const version = "v0.1.0"

func main() {
	configPath := flag.String("config", "configs/server.yaml", "path to config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Failed to load .env: %v", err)
	}

	cfg, err := config.LoadAppConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	logger.Info().
		Str("version", version).
		Int("port", cfg.Server.Port).
		Str("location", cfg.SourceLocation().String()).
		Msg("Starting AQI prediction API")

	// A missing or broken model is not fatal: the API stays up and reports
	// model_not_loaded on /health.
	var predictor prediction.Predictor
	var modelInfo *regressor.Info
	model, err := regressor.Load(cfg.Model.Path)
	if err != nil {
		logger.Error().Err(err).Str("path", cfg.Model.Path).Msg("Failed to load model, predictions disabled")
	} else {
		predictor = model
		info := model.Info()
		modelInfo = &info
		logger.Info().
			Str("kind", string(info.Kind)).
			Int("trees", info.Trees).
			Str("path", info.Path).
			Msg("Model loaded")
	}

	src := source.NewClient(source.Config{
		BaseURL:  cfg.Source.BaseURL,
		Timeout:  cfg.Source.Timeout,
		Timezone: cfg.Source.Timezone,
	}, logger)
	service := prediction.NewService(src, predictor, cfg.SourceLocation(), logger)

	mux := http.NewServeMux()
	server.NewAPIHandler(service, modelInfo, logger).Register(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Chain(mux, cfg.Server.AllowedOrigins, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown error")
	}

	logger.Info().Msg("Server stopped")
}
