package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"resumaker/internal/api"
	"resumaker/internal/config"
	"resumaker/internal/database"
	"resumaker/internal/storage"
	"resumaker/internal/store"
)

func newLogger(format string) *slog.Logger {
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func main() {
	cfg := config.MustLoad()
	logger := newLogger(cfg.API.LogFormat)
	slog.SetDefault(logger)

	log.Printf("api bootstrapped with db host=%s port=%d db=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	log.Printf("database connection ready and migrated")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, notifications and rate limits disabled", slog.Any("error", err))
		_ = redisClient.Close()
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("close redis client failed", slog.Any("error", err))
			}
		}()
	}
	cancelPing()

	var queue api.TaskEnqueuer
	if cfg.Print.Enabled {
		asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr()})
		defer asynqClient.Close()
		queue = asynqClient
	}

	var objects storage.ObjectStore
	if storageClient, err := storage.NewClient(cfg.MinIO); err != nil {
		logger.Warn("object storage unavailable, avatars and pdf export disabled", slog.Any("error", err))
	} else {
		objects = storageClient
		log.Printf("storage client ready, bucket=%s", cfg.MinIO.Bucket)
	}

	svc := store.NewService(store.NewGormRepository(db), store.Options{
		OrphanPolicy:   cfg.Editor.OrphanPolicy(),
		AutoApplyDelay: cfg.Editor.AutoApplyDelay,
		MaxResumes:     cfg.Editor.MaxResumes,
		Logger:         logger,
	})

	router := api.NewRouter(api.Deps{
		Config:  cfg,
		Store:   svc,
		Queue:   queue,
		Objects: objects,
		Redis:   redisClient,
		Logger:  logger,
	})

	address := fmt.Sprintf(":%d", cfg.API.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown api server failed", slog.Any("error", err))
		}
	}()

	log.Printf("api listening on %s", address)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("failed to start api server: %v", err)
	}
	logger.Info("api server stopped")
}
