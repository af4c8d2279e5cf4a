package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anonto42/aray/backend/internal/models"
	"github.com/anonto42/aray/backend/internal/observability"
	"github.com/anonto42/aray/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-key"

type testEnv struct {
	db            *gorm.DB
	users         *repositories.PostgresUserRepository
	tokens        *TokenIssuer
	notifications *NotificationService
	graph         *GraphService
	content       *ContentService
	feed          *FeedService
	accounts      *UserService
}

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repositories.Migrate(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)

	users := repositories.NewPostgresUserRepository(db)
	follows := repositories.NewPostgresFollowRepository(db)
	posts := repositories.NewPostgresPostRepository(db)
	likes := repositories.NewPostgresLikeRepository(db)
	comments := repositories.NewPostgresCommentRepository(db)
	notes := repositories.NewPostgresNotificationRepository(db)

	tokens := NewTokenIssuer(testSecret, time.Hour, 24*time.Hour)
	notifications := NewNotificationService(notes, users, observability.Discard(), 20)
	graph := NewGraphService(follows, users, notifications, 10)

	return &testEnv{
		db:            db,
		users:         users,
		tokens:        tokens,
		notifications: notifications,
		graph:         graph,
		content:       NewContentService(posts, likes, comments, users, notifications, 20),
		feed:          NewFeedService(posts, users, graph, 20, 10),
		accounts:      NewUserService(users, follows, posts, tokens, nil),
	}
}

func (e *testEnv) user(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Name: username, Password: "x"}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) post(t *testing.T, authorID uint, content string) *models.PostView {
	t.Helper()
	v, err := e.content.CreatePost(context.Background(), authorID, models.CreatePostRequest{Content: content})
	require.NoError(t, err)
	return v
}

func (e *testEnv) notificationsFor(t *testing.T, userID uint) []models.Notification {
	t.Helper()
	var out []models.Notification
	require.NoError(t, e.db.Where("recipient_id = ?", userID).Order("id ASC").Find(&out).Error)
	return out
}

// assertCode asserts that err is an AppError with the given code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
