package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"database/sql"

	"github.com/Dan9191/finance-dashboard/internal/config"
	"github.com/Dan9191/finance-dashboard/internal/forecast"
	"github.com/Dan9191/finance-dashboard/internal/handler"
	"github.com/Dan9191/finance-dashboard/internal/integrations/cbr"
	"github.com/Dan9191/finance-dashboard/internal/integrations/openai"
	"github.com/Dan9191/finance-dashboard/internal/middleware"
	"github.com/Dan9191/finance-dashboard/internal/repository"
	"github.com/Dan9191/finance-dashboard/internal/service"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	aiClient := openai.NewClient(cfg, logger)
	if !cfg.AIEnabled() {
		logger.Warn("OPENAI_API_KEY is empty, predictions will use the fallback method")
	}
	orchestrator := forecast.NewOrchestrator(
		repo,
		forecast.NewAIForecaster(aiClient, logger),
		forecast.NewFallbackForecaster(repo),
		logger,
	)
	rates := service.NewRatesCache(cbr.NewCBRClient(cfg, logger), logger)
	svc := service.NewService(repo, orchestrator, rates, logger)
	h := handler.NewHandler(svc, logger)

	// Exchange rate refresh
	scheduler := cron.New()
	if err := rates.Schedule(scheduler, cfg.RatesRefreshSpec); err != nil {
		logger.Fatalf("Failed to schedule rate refresh: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := rates.Refresh(ctx); err != nil {
			logger.Warnf("Initial exchange rate refresh failed: %v", err)
		}
	}()

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(logger))
	h.Register(r)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.OpenAITimeout + 30*time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
