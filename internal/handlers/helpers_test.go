package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/aray/backend/internal/media"
	"github.com/anonto42/aray/backend/internal/middleware"
	"github.com/anonto42/aray/backend/internal/models"
	"github.com/anonto42/aray/backend/internal/observability"
	"github.com/anonto42/aray/backend/internal/repositories"
	"github.com/anonto42/aray/backend/internal/service"
	"github.com/anonto42/aray/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type memoryStore struct {
	mu    sync.Mutex
	files map[string]storedFile
	next  int
}

type storedFile struct {
	ownerID     uint
	contentType string
	data        []byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{files: make(map[string]storedFile)}
}

func (s *memoryStore) Save(_ context.Context, ownerID uint, _, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := fmt.Sprintf("%024x", s.next)
	s.files[id] = storedFile{ownerID: ownerID, contentType: contentType, data: data}
	return id, nil
}

func (s *memoryStore) Open(_ context.Context, id string) (*media.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok {
		return nil, media.ErrNotFound
	}
	return &media.Object{
		ReadCloser:  io.NopCloser(bytes.NewReader(f.data)),
		ContentType: f.contentType,
		Size:        int64(len(f.data)),
	}, nil
}

type testServer struct {
	e      *echo.Echo
	db     *gorm.DB
	tokens *service.TokenIssuer
	store  *memoryStore
}

const maxUploadBytes = 64

func newTestServer(t *testing.T) *testServer {
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

	users := repositories.NewPostgresUserRepository(db)
	follows := repositories.NewPostgresFollowRepository(db)
	posts := repositories.NewPostgresPostRepository(db)
	likes := repositories.NewPostgresLikeRepository(db)
	comments := repositories.NewPostgresCommentRepository(db)
	notes := repositories.NewPostgresNotificationRepository(db)

	log := observability.Discard()
	tokens := service.NewTokenIssuer("handler-test-secret", time.Hour, 24*time.Hour)
	notifications := service.NewNotificationService(notes, users, log, 20)
	graph := service.NewGraphService(follows, users, notifications, 10)
	content := service.NewContentService(posts, likes, comments, users, notifications, 20)
	feed := service.NewFeedService(posts, users, graph, 20, 10)
	accounts := service.NewUserService(users, follows, posts, tokens, nil)

	e := echo.New()
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	guards := Guards{
		Required: middleware.JWTAuthMiddleware(tokens),
		Optional: middleware.OptionalJWTAuthMiddleware(tokens),
		Limit:    middleware.RateLimit(middleware.NewLocalLimiter(1000, time.Minute), log),
	}
	store := newMemoryStore()

	e.GET("/api/v1/health", NewHealthHandler(db).HealthCheck)
	api := e.Group("/api/v1")
	NewAuthHandler(accounts).RegisterAuthRoutes(api.Group("/auth"), guards)
	NewFeedHandler(feed).RegisterFeedRoutes(api, guards)
	NewUserHandler(accounts, graph).RegisterProfileRoutes(api, guards)
	NewFollowHandler(graph).RegisterFollowRoutes(api, guards)
	NewPostHandler(content).RegisterPostRoutes(api, guards)
	NewLikeHandler(content).RegisterLikeRoutes(api, guards)
	NewCommentHandler(content).RegisterCommentRoutes(api, guards)
	NewNotificationHandler(notifications).RegisterNotificationRoutes(api, guards)
	NewMediaHandler(store, maxUploadBytes, "/api/v1").RegisterMediaRoutes(api, guards)

	return &testServer{e: e, db: db, tokens: tokens, store: store}
}

// user inserts an account directly and returns it with an access token
func (s *testServer) user(t *testing.T, username string) (*models.User, string) {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Name: username, Password: "x"}
	require.NoError(t, s.db.Create(u).Error)
	token, err := s.tokens.IssueAccess(u.ID)
	require.NoError(t, err)
	return u, token
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) map[string]interface{} {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	return decode(t, rec)
}

func idOf(m map[string]interface{}) uint {
	return uint(m["id"].(float64))
}
