// Command seed fills the configured database with demo data.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/anonto42/aray/backend/internal/observability"
	"github.com/anonto42/aray/backend/internal/repositories"
	"github.com/anonto42/aray/backend/internal/seed"
	"github.com/anonto42/aray/backend/internal/service"
	"github.com/anonto42/aray/backend/pkg/config"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.Users, "Number of users to create")
	postsPerUser := flag.Int("posts", defaults.PostsPerUser, "Posts per user")
	followsPerUser := flag.Int("follows", defaults.FollowsPerUser, "Follow attempts per user")
	likesPerPost := flag.Int("likes", defaults.LikesPerPost, "Like attempts per post")
	seedValue := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	cfg, _ := config.Load()
	logger := observability.NewLogger(cfg.LogLevel, os.Stdout)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := config.OpenPostgres(cfg.PostgresConnStr, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer config.ClosePostgres(db, logger)

	if err := repositories.Migrate(db); err != nil {
		logger.Error("migration failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	users := repositories.NewPostgresUserRepository(db)
	follows := repositories.NewPostgresFollowRepository(db)
	posts := repositories.NewPostgresPostRepository(db)
	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	notifications := service.NewNotificationService(repositories.NewPostgresNotificationRepository(db), users, logger, cfg.PostsPerPage)
	graph := service.NewGraphService(follows, users, notifications, cfg.UsersPerPage)
	content := service.NewContentService(posts, repositories.NewPostgresLikeRepository(db), repositories.NewPostgresCommentRepository(db), users, notifications, cfg.PostsPerPage)

	opts := defaults
	opts.Users = *numUsers
	opts.PostsPerUser = *postsPerUser
	opts.FollowsPerUser = *followsPerUser
	opts.LikesPerPost = *likesPerPost
	opts.Seed = *seedValue

	logger.Info("seeding database", slog.Int("users", opts.Users), slog.Int("posts_per_user", opts.PostsPerUser))
	res, err := seed.NewSeeder(service.NewUserService(users, follows, posts, tokens, nil), graph, content).Run(context.Background(), opts)
	if err != nil {
		logger.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("seeding complete",
		slog.Int("users", len(res.Users)),
		slog.Int("posts", res.Posts),
		slog.Int("follows", res.Follows),
		slog.Int("likes", res.Likes),
		slog.Int("comments", res.Comments),
		slog.Int("reposts", res.Reposts),
		slog.String("password", seed.DemoPassword),
	)
}
