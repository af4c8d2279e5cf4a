package repositories

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/anonto42/aray/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

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

	require.NoError(t, Migrate(db))
	return db
}

// setupMockDB creates a GORM *gorm.DB backed by sqlmock for unit tests.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Name:     username,
		Password: "hash",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createPost(t *testing.T, db *gorm.DB, userID uint, content string, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{UserID: userID, Content: content, CreatedAt: at, UpdatedAt: at}
	require.NoError(t, db.Create(p).Error)
	return p
}

func createRepost(t *testing.T, db *gorm.DB, userID, originalID uint, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{UserID: userID, OriginalPostID: &originalID, IsRepost: true, CreatedAt: at, UpdatedAt: at}
	require.NoError(t, db.Create(p).Error)
	return p
}

func follow(t *testing.T, db *gorm.DB, followerID, followingID uint, at time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.Follow{FollowerID: followerID, FollowingID: followingID, CreatedAt: at}).Error)
}

func page(n, size int) models.PageRequest {
	return models.PageRequest{Page: n, PerPage: size}
}
