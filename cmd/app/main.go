package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BuzzLyutic/todo-app/internal/auth"
	"github.com/BuzzLyutic/todo-app/internal/config"
	"github.com/BuzzLyutic/todo-app/internal/handler"
	"github.com/BuzzLyutic/todo-app/internal/repo"
	"github.com/BuzzLyutic/todo-app/internal/service"
	"github.com/BuzzLyutic/todo-app/pkg/logger"
)

func main() {
	// Загрузка конфигурации
	cfg := config.Load()

	// Подключаем логгер
	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("invalid LOG_LEVEL %q: %v", cfg.LogLevel, err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Подключаем БД
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		zl.Fatal("Failed to connect to Database", zap.Error(err)) // дальнейшая работа теряет смысл
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		zl.Fatal("Failed to ping the Database", zap.Error(err))
	}
	zl.Info("Successfully connected to the Database")

	var store repo.TaskStore = repo.NewTaskRepo(pool)

	// Кэш списков в Redis необязателен
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			zl.Fatal("Invalid REDIS_URL", zap.Error(err))
		}
		client := redis.NewClient(opts)
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			zl.Warn("Redis unavailable, list cache disabled", zap.Error(err))
		} else {
			store = repo.NewCachedTaskRepo(store, client, cfg.CacheTTL, zl)
			zl.Info("Redis list cache enabled", zap.Duration("ttl", cfg.CacheTTL))
		}
	}

	sessions := service.NewSessions(store, zl, service.SessionConfig{
		ViewCacheSize: cfg.ViewCacheSize,
		MaxSessions:   cfg.MaxSessions,
		IdleTTL:       cfg.SessionTTL,
	})
	taskHandler := handler.NewTaskHandler(sessions, zl)
	router := handler.NewRouter(taskHandler, auth.NewVerifier(cfg.JWTSecret), zl)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zl.Info("Server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		zl.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zl.Error("Server failed", zap.Error(err))
		os.Exit(1)
	}
	zl.Info("Server stopped successfully")
}
