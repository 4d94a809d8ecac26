package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/cropdash/internal/config"
	"github.com/mamadbah2/cropdash/internal/repository/sheets"
	"github.com/mamadbah2/cropdash/internal/server/handlers"
	"github.com/mamadbah2/cropdash/internal/server/router"
	dashboardsvc "github.com/mamadbah2/cropdash/internal/service/dashboard"
	efficiencysvc "github.com/mamadbah2/cropdash/internal/service/efficiency"
	harvestsvc "github.com/mamadbah2/cropdash/internal/service/harvest"
	weathersvc "github.com/mamadbah2/cropdash/internal/service/weather"
	"github.com/mamadbah2/cropdash/pkg/clients/openweather"
	"github.com/mamadbah2/cropdash/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	// The sheet source is optional; a nil RowReader makes sheet ranges fail per request.
	var sheetSource harvestsvc.RowReader
	if cfg.Sheets.Enabled() {
		repo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheetSource = repo
		baseLogger.Info("google sheets harvest source enabled")
	}

	weatherClient := openweather.NewClient(cfg.Weather)
	weatherSvc := weathersvc.NewService(weatherClient, baseLogger.Named("svc.weather"))
	ingestor := harvestsvc.NewIngestor(baseLogger.Named("svc.harvest"))
	calculator := efficiencysvc.NewCalculator(baseLogger.Named("svc.efficiency"))
	pipeline := dashboardsvc.NewPipeline(ingestor, sheetSource, weatherSvc, calculator, baseLogger.Named("svc.dashboard"))

	dashboardHandler := handlers.NewDashboardHandler(pipeline, cfg.Weather.DefaultCity, cfg.Server.UploadMaxBytes, baseLogger.Named("handlers.dashboard"))
	engine := router.New(dashboardHandler, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2*cfg.Weather.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
