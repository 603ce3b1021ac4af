package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"resumaker/internal/config"
	"resumaker/internal/database"
	"resumaker/internal/metrics"
	"resumaker/internal/pdf"
	"resumaker/internal/storage"
	"resumaker/internal/store"
	"resumaker/internal/tasks"
	"resumaker/internal/worker"
)

func main() {
	cfg := config.MustLoad()

	handlerOpts := &slog.HandlerOptions{}
	var logger *slog.Logger
	if cfg.API.LogFormat == "text" {
		logger = slog.New(slog.NewTextHandler(os.Stdout, handlerOpts))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, handlerOpts))
	}
	logger = logger.With(slog.String("service", "worker"))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("worker exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	objects, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	redisAddr := cfg.Redis.Addr()
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer redisClient.Close()
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	svc := store.NewService(store.NewGormRepository(db), store.Options{
		OrphanPolicy:   cfg.Editor.OrphanPolicy(),
		AutoApplyDelay: cfg.Editor.AutoApplyDelay,
		MaxResumes:     cfg.Editor.MaxResumes,
		Logger:         logger,
	})
	printer := pdf.NewGenerator(cfg.Print.Timeout, logger)
	defer printer.Close()

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypePrintResume, worker.NewPrintTaskHandler(svc, objects, redisClient, printer, logger))

	server := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{
		Concurrency:     cfg.Worker.Concurrency,
		Logger:          newAsynqLogger(logger),
		ShutdownTimeout: cfg.Print.Timeout,
	})
	if err := server.Start(mux); err != nil {
		return fmt.Errorf("start asynq server: %w", err)
	}
	logger.Info("worker started",
		slog.String("redis_addr", redisAddr),
		slog.Int("concurrency", cfg.Worker.Concurrency),
	)

	var metricsSrv *http.Server
	if cfg.Worker.MetricsPort > 0 {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Worker.MetricsPort),
			Handler:           metricsMux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", slog.Any("error", err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("worker shutting down")
	server.Shutdown()
	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return nil
}
