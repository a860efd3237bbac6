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
	"github.com/afroash/aqi-monitor/internal/dashboard"
	"github.com/afroash/aqi-monitor/internal/logging"
	"github.com/afroash/aqi-monitor/internal/server"
)

const version = "v0.1.0"

func main() {
	configPath := flag.String("config", "configs/dashboard.yaml", "path to config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Failed to load .env: %v", err)
	}

	cfg, err := config.LoadDashboardConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if err := dashboard.LoadTemplates(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to load dashboard templates")
	}

	logger.Info().
		Str("version", version).
		Str("api_url", cfg.Dashboard.APIURL).
		Dur("refresh_interval", cfg.Dashboard.RefreshInterval).
		Bool("sample_data", cfg.Dashboard.UseSampleData).
		Msg("Starting AQI dashboard")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	history := dashboard.NewHistoryBuffer(cfg.Dashboard.HistorySize)
	hub := dashboard.NewHub(logger, cfg.Dashboard.AllowedOrigins...)
	client := dashboard.NewAPIClient(cfg.Dashboard.APIURL, cfg.Dashboard.UseSampleData, logger)
	refresher := dashboard.NewRefresher(client, history, hub, cfg.Dashboard.RefreshInterval, logger)

	mux := http.NewServeMux()
	dashboard.NewHandler(refresher, history, hub, logger).Register(mux)

	var handler http.Handler = mux
	handler = server.RequestLogger(logger)(handler)
	handler = server.WithRequestID(handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Dashboard.Host, cfg.Dashboard.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	refreshDone := make(chan struct{})
	go func() {
		defer close(refreshDone)
		if err := refresher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Refresher stopped unexpectedly")
		}
	}()

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("Dashboard listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down dashboard...")

	<-refreshDone
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown error")
	}

	logger.Info().Msg("Dashboard stopped")
}
