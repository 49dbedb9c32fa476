package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"honeytrap-lab/internal/api"
	"honeytrap-lab/internal/api/handlers"
	"honeytrap-lab/internal/config"
	"honeytrap-lab/internal/domain/services/detection"
	"honeytrap-lab/internal/domain/services/extraction"
	"honeytrap-lab/internal/domain/services/generation"
	"honeytrap-lab/internal/domain/services/reporting"
	"honeytrap-lab/internal/domain/services/session"
	"honeytrap-lab/internal/domain/services/strategy"
	"honeytrap-lab/internal/grpc/healthgrpc"
	"honeytrap-lab/internal/infrastructure/cache"
	"honeytrap-lab/internal/infrastructure/database"
	"honeytrap-lab/internal/infrastructure/database/repository"
	"honeytrap-lab/internal/ops"
	"honeytrap-lab/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.NewDevelopment()
	}
	logger.SetGlobal(log)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting Honeytrap Lab")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize infrastructure
	db, redisCache := initInfrastructure(ctx, cfg, log)
	defer func() {
		if db != nil {
			db.Close()
		}
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	// Initialize report archive
	var reports *repository.ReportRepository
	if db != nil {
		if err := db.Migrate(ctx); err != nil {
			log.Warn().Err(err).Msg("database migration failed, report archive may be unavailable")
		}
		reports = repository.NewReportRepository(db.Pool())
		log.Info().Msg("report repository initialized with database")
	} else {
		log.Warn().Msg("running without database - report archive unavailable")
	}

	// Initialize the engagement pipeline
	detector := detection.NewEngine(log, detection.WithThreshold(cfg.Detection.ScamThreshold))
	extractor := extraction.New(log)
	strategist := strategy.New(log)
	generator := generation.New(cfg.Generation, log)
	deliverer := reporting.New(cfg.Callback, log)

	manager := session.NewManager(session.Dependencies{
		Config:     cfg.Engagement,
		Detector:   detector,
		Extractor:  extractor,
		Strategist: strategist,
		Generator:  generator,
		Deliverer:  deliverer,
		Reports:    reports,
		Cache:      redisCache,
		Logger:     log,
	})
	manager.Start(ctx)
	defer manager.Stop()

	// Initialize handlers
	deps := handlers.Dependencies{
		Config:    *cfg,
		Manager:   manager,
		Detector:  detector,
		Extractor: extractor,
		Cache:     redisCache,
		DB:        db,
		Reports:   reports,
		Logger:    log,
	}
	h := handlers.NewHandlers(deps)

	// Create router
	router := api.NewRouter(*cfg, h, redisCache, log)
	httpHandler := router.Setup()

	// Start HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      httpHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Start ops server on its own listener
	opsServer := ops.NewServer(
		fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.OpsPort),
		manager, reports, redisCache, log,
	)
	go func() {
		if err := opsServer.Start(); err != nil {
			log.Fatal().Err(err).Msg("ops server failed")
		}
	}()

	// Start gRPC server
	grpcListener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gRPC listener")
	}

	grpcServer := grpc.NewServer()
	healthgrpc.Register(ctx, grpcServer, db, redisCache)

	go func() {
		log.Info().
			Str("addr", grpcListener.Addr().String()).
			Msg("starting gRPC server")
		if err := grpcServer.Serve(grpcListener); err != nil {
			log.Fatal().Err(err).Msg("gRPC server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	// Cancel context to stop background services
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Stop gRPC server
	grpcServer.GracefulStop()

	// Stop HTTP servers
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("ops server shutdown error")
	}

	log.Info().Msg("shutdown complete")
}

// initInfrastructure initializes database and cache connections.
// Both are optional; the engine degrades rather than refusing to start.
func initInfrastructure(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.PostgresDB, *cache.RedisCache) {
	var db *database.PostgresDB
	if cfg.Database.Enabled {
		var err error
		db, err = database.NewPostgres(ctx, cfg.Database, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to PostgreSQL, continuing without database")
			db = nil
		}
	}

	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		var err error
		redisCache, err = cache.NewRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without cache")
			redisCache = nil
		}
	}

	return db, redisCache
}
