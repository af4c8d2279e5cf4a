package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/aray/backend/internal/media"
	"github.com/anonto42/aray/backend/internal/middleware"
	"github.com/anonto42/aray/backend/internal/observability"
	"github.com/anonto42/aray/backend/internal/repositories"
	"github.com/anonto42/aray/backend/internal/router"
	"github.com/anonto42/aray/backend/internal/service"
	"github.com/anonto42/aray/backend/pkg/config"
	"github.com/anonto42/aray/backend/pkg/firebase"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, dotenv := config.Load()
	logger := observability.NewLogger(cfg.LogLevel, os.Stdout)
	slog.SetDefault(logger)
	if !dotenv {
		logger.Info("no .env file found, using environment variables")
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Initialize database connections
	db, err := config.OpenPostgres(cfg.PostgresConnStr, logger)
	if err != nil {
		return err
	}
	defer config.ClosePostgres(db, logger)

	if err := repositories.Migrate(db); err != nil {
		return err
	}
	logger.Info("PostgreSQL auto-migrations completed")

	var store media.Store
	if cfg.MongoURI != "" {
		client, err := config.ConnectMongo(ctx, cfg.MongoURI, logger)
		if err != nil {
			return err
		}
		defer config.CloseMongo(client, logger)

		gridfs, err := media.NewGridFSStore(client.Database(cfg.MongoDatabase))
		if err != nil {
			return err
		}
		store = gridfs
	}

	// Firebase is optional; without it /auth/firebase-login is not served
	var verifier service.IDTokenVerifier
	if cfg.FirebaseCredentialsPath != "" {
		client, err := firebase.NewAuthClient(ctx, cfg.FirebaseCredentialsPath, logger)
		if err != nil {
			return err
		}
		verifier = client
	}

	var limiter middleware.Limiter = middleware.NewLocalLimiter(cfg.RateLimitWrites, cfg.RateLimitWindow)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, rate limiting will fail open until it recovers", slog.String("error", err.Error()))
		}
		limiter = middleware.NewRedisLimiter(rdb, cfg.RateLimitWrites, cfg.RateLimitWindow)
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db)
	followRepo := repositories.NewPostgresFollowRepository(db)
	postRepo := repositories.NewPostgresPostRepository(db)
	likeRepo := repositories.NewPostgresLikeRepository(db)
	commentRepo := repositories.NewPostgresCommentRepository(db)
	notificationRepo := repositories.NewPostgresNotificationRepository(db)

	// --- Initialize Services ---
	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	notifications := service.NewNotificationService(notificationRepo, userRepo, logger, cfg.PostsPerPage)
	graph := service.NewGraphService(followRepo, userRepo, notifications, cfg.UsersPerPage)

	e := router.New(router.Deps{
		DB:             db,
		Logger:         logger,
		Tokens:         tokens,
		Users:          service.NewUserService(userRepo, followRepo, postRepo, tokens, verifier),
		Graph:          graph,
		Content:        service.NewContentService(postRepo, likeRepo, commentRepo, userRepo, notifications, cfg.PostsPerPage),
		Feed:           service.NewFeedService(postRepo, userRepo, graph, cfg.PostsPerPage, cfg.UsersPerPage),
		Notifications:  notifications,
		MediaStore:     store,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Limiter:        limiter,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("metrics server listening", slog.String("port", cfg.MetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		logger.Info("server listening", slog.String("port", cfg.Port), slog.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", slog.String("error", err.Error()))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown failed", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
	return nil
}
