package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/MavisVermie/TBR3-sub000/internal/config"
	cacheadapter "github.com/MavisVermie/TBR3-sub000/internal/infrastructure/cache/adapter"
	"github.com/MavisVermie/TBR3-sub000/internal/infrastructure/database"
	queueadapter "github.com/MavisVermie/TBR3-sub000/internal/infrastructure/queue/adapter"
	qport "github.com/MavisVermie/TBR3-sub000/internal/infrastructure/queue/port"
	"github.com/MavisVermie/TBR3-sub000/internal/infrastructure/realtime"
	"github.com/MavisVermie/TBR3-sub000/internal/middleware"
	"github.com/MavisVermie/TBR3-sub000/internal/pkg/identity"
	"github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/application/task"
	"github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/delivery"
	"github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/persistence/repository/adapter"
	messaginghttp "github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/presentation/http"
)

func main() {
	cfg := config.Load()

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		logger.Fatal().Msg("DB_URL is required")
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	pool, err := database.Connect(connectCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer pool.Close()

	logger.Info().Msg("running database migrations")
	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	verifier := identity.NewJWTVerifier(cfg.JWTSecret)

	// Username lookups hit Postgres; Redis in front of them when available.
	var directory identity.Directory = identity.NewPgDirectory(pool)
	var redisCache *cacheadapter.RedisCache
	if cfg.RedisURL != "" {
		redisCache, err = cacheadapter.NewRedisCache(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisCache.Close()
		directory = identity.NewCachedDirectory(directory, redisCache)
		logger.Info().Msg("connected to Redis")
	}

	repo := adapter.NewPgMessageRepository(pool)
	registry := realtime.NewRegistry()
	defer registry.Close()

	// The queue carries only offline-notify work; pushes never queue.
	var queueClient qport.Client
	if cfg.RedisURL != "" {
		asynqClient, err := queueadapter.NewAsynqClientFromEnv()
		if err != nil {
			logger.Fatal().Err(err).Msg("asynq client setup failed")
		}
		defer asynqClient.Close()
		queueClient = asynqClient
	}

	pipeline := delivery.NewPipeline(registry, repo, queueClient, logger)

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	if cfg.RedisURL != "" {
		asynqServer, err := queueadapter.NewAsynqServerFromEnv()
		if err != nil {
			logger.Fatal().Err(err).Msg("asynq server setup failed")
		}
		task.RegisterOfflineNotifyTask(asynqServer, task.LogNotifier{Log: logger})
		go func() {
			if err := asynqServer.Run(workerCtx); err != nil {
				logger.Error().Err(err).Msg("asynq server stopped")
			}
		}()
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(logger), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "postgres": err.Error()})
			return
		}
		if redisCache != nil {
			if err := redisCache.Ping(pingCtx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	messaginghttp.RegisterRoutes(api, pool, registry, pipeline, directory, verifier, logger)

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// Write timeout stays off: websocket sessions outlive any
		// sane request deadline.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting messaging server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	stopWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
