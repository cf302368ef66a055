package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"perception/internal/adapters/config"
	"perception/internal/adapters/errors/noop"
	"perception/internal/adapters/errors/sentry"
	"perception/internal/adapters/feedapi"
	redisclient "perception/internal/adapters/redis"
	"perception/internal/adapters/telegram"
	"perception/internal/api"
	"perception/internal/api/health"
	boardapi "perception/internal/api/leaderboard"
	boarddomain "perception/internal/domain/leaderboard"
	"perception/internal/metrics"
	"perception/internal/repository/memory"
	redisrepo "perception/internal/repository/redis"
	boardservice "perception/internal/services/leaderboard"
	"perception/internal/workers"
	"perception/pkg/errors"
	"perception/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	// Initialize error tracker
	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	// Initialize metrics
	metrics.Init()

	// Snapshot store: Redis when configured, process memory otherwise
	redisConn, store := initSnapshotStore(cfg, log)
	if redisConn != nil {
		defer redisConn.Close()
	}

	// Feed client and leaderboard pipeline
	feedClient := feedapi.NewClient(cfg.Feed)
	service := boardservice.NewService(feedClient, store, cfg.Feed, cfg.Leaderboard)

	// Background workers
	scheduler := initWorkers(cfg, service, log)

	// HTTP server
	healthHandler := health.New(log, redisConn, store,
		3*cfg.Workers.RefresherInterval, cfg.App.Name, cfg.App.Version)
	boardHandler := boardapi.New(service, cfg.Leaderboard.DisplayLimit)

	server := api.NewServer(api.ServerConfig{
		Port:        cfg.Server.Port,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	}, healthHandler, boardHandler, log)

	log.Info("System initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start workers: %v", err)
	}

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	waitForShutdown(ctx, cancel, server, scheduler, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// initSnapshotStore picks the snapshot store backend
func initSnapshotStore(cfg *config.Config, log *logger.Logger) (*redisclient.Client, boarddomain.SnapshotStore) {
	if !cfg.Redis.Enabled() {
		log.Info("Redis not configured, keeping snapshots in memory")
		return nil, memory.NewSnapshotStore()
	}

	conn, err := redisclient.NewClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	log.Infof("Snapshot store backed by Redis at %s", cfg.Redis.Addr())
	return conn, redisrepo.NewSnapshotStore(conn, cfg.Leaderboard.SnapshotTTL)
}

// initWorkers registers background workers with the scheduler
func initWorkers(cfg *config.Config, service *boardservice.Service, log *logger.Logger) *workers.Scheduler {
	scheduler := workers.NewScheduler()

	scheduler.RegisterWorker(workers.NewRefresherWorker(
		service, cfg.Workers.RefresherInterval, cfg.Workers.RefresherEnabled))

	if cfg.Telegram.Enabled() {
		notifier, err := telegram.NewNotifier(cfg.Telegram)
		if err != nil {
			log.Warnf("Failed to initialize Telegram notifier: %v", err)
		} else {
			scheduler.RegisterWorker(workers.NewPodiumNotifierWorker(
				service, notifier, cfg.Workers.NotifierInterval, cfg.Workers.NotifierEnabled))
		}
	} else {
		log.Info("Telegram not configured, podium notifier disabled")
	}

	return scheduler
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func waitForShutdown(ctx context.Context, cancel context.CancelFunc, server *api.Server, scheduler *workers.Scheduler, errorTracker errors.Tracker, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("HTTP server shutdown: %v", err)
	}

	if err := scheduler.Stop(); err != nil {
		log.Warnf("Worker shutdown: %v", err)
	}

	// Flush error tracker
	if errorTracker != nil {
		if err := errorTracker.Flush(shutdownCtx); err != nil {
			log.Warnf("Failed to flush error tracker: %v", err)
		}
	}

	log.Info("Shutdown complete")
}
