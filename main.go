package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	apihttp "grid-atlas/internal/api/http"
	"grid-atlas/internal/archive"
	"grid-atlas/internal/cache"
	"grid-atlas/internal/config"
	"grid-atlas/internal/gridload"
	"grid-atlas/internal/observability/metrics"
	"grid-atlas/internal/sources"
	"grid-atlas/internal/telemetry"
)

const shutdownGrace = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = zlog.Sync() }()
	logger := zlog.Sugar()

	model, err := config.LoadModel(cfg.ModelConfigPath)
	if err != nil {
		logger.Fatalw("model config error", "error", err)
	}

	data, err := sources.LoadAll(sources.DefaultPaths(cfg.DataDir))
	if err != nil {
		logger.Fatalw("dataset load error", "error", err)
	}
	logger.Infow("datasets loaded",
		"districts", len(data.Districts),
		"windparks", len(data.WindParks),
		"stations", len(data.Stations),
		"substations", len(data.Substations),
		"plants", len(data.Plants.Records),
		"turbines", len(data.WindTurbines),
	)

	var provider telemetry.Provider
	if cfg.TelemetryBaseURL != "" {
		client, err := telemetry.NewClient(cfg.TelemetryBaseURL, cfg.TelemetryTimeout)
		if err != nil {
			logger.Fatalw("telemetry client error", "error", err)
		}
		provider = client
	} else {
		logger.Warn("ENTSOE_BRIDGE_URL not set, running on static defaults")
	}

	opts := []gridload.Option{
		gridload.WithFallbackLoadMW(model.FallbackLoadMW),
		gridload.WithDefaultFactors(model.DefaultUtilization),
		gridload.WithBorderBoxes(model.Boxes()),
	}
	if len(model.RegionalLoadFactors) > 0 {
		opts = append(opts, gridload.WithLoadFactor(model.LoadFactor))
	}
	estimator := gridload.NewEstimator(provider, logger, opts...)

	var archiveRepo *archive.Repository
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalw("db open error", "error", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalw("db ping error", "error", err)
		}
		archiveRepo = archive.NewRepository(db)
		if err := archiveRepo.EnsureSchema(context.Background()); err != nil {
			logger.Fatalw("archive schema error", "error", err)
		}
		logger.Info("run archive enabled")
	}

	metrics.Init()

	svc := apihttp.NewService(data, estimator, cache.New(cfg.CacheTTL), archiveRepo, logger)
	handlers := apihttp.NewHandlers(svc, logger)
	router := apihttp.NewRouter(handlers, apihttp.RouterConfig{
		JWTSecret:   []byte(cfg.JWTSecret),
		CORSOrigins: cfg.CORSOrigins,
	}, logger)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Infow("http listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("http server error", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorw("shutdown error", "error", err)
	}
}
