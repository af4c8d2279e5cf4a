package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/aray/backend/internal/middleware"
	"github.com/anonto42/aray/backend/internal/models"
	"github.com/anonto42/aray/backend/internal/observability"
	"github.com/anonto42/aray/backend/internal/repositories"
	"github.com/anonto42/aray/backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T, writesPerWindow int) (*echo.Echo, *service.TokenIssuer, *gorm.DB) {
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
	log := observability.Discard()
	tokens := service.NewTokenIssuer("router-test", time.Hour, time.Hour)
	notifications := service.NewNotificationService(repositories.NewPostgresNotificationRepository(db), users, log, 20)
	graph := service.NewGraphService(follows, users, notifications, 10)

	e := New(Deps{
		DB:            db,
		Logger:        log,
		Tokens:        tokens,
		Users:         service.NewUserService(users, follows, posts, tokens, nil),
		Graph:         graph,
		Content:       service.NewContentService(posts, repositories.NewPostgresLikeRepository(db), repositories.NewPostgresCommentRepository(db), users, notifications, 20),
		Feed:          service.NewFeedService(posts, users, graph, 20, 10),
		Notifications: notifications,
		Limiter:       middleware.NewLocalLimiter(writesPerWindow, time.Hour),
		AllowedOrigins: []string{
			"http://localhost:5173",
		},
	})
	return e, tokens, db
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndRequestID(t *testing.T) {
	e, _, _ := newTestRouter(t, 10)

	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := serve(e, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "healthy")
		assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	}
}

func TestUnknownRouteIsJSON(t *testing.T) {
	e, _, _ := newTestRouter(t, 10)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), models.CodeNotFound)
}

func TestMediaRoutesDisabledWithoutStore(t *testing.T) {
	e, _, _ := newTestRouter(t, 10)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/v1/media/abc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	for _, r := range e.Routes() {
		assert.False(t, strings.HasPrefix(r.Path, "/api/v1/upload"), r.Path)
	}
}

func TestCORSPreflight(t *testing.T) {
	e, _, _ := newTestRouter(t, 10)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/posts", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:5173")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := serve(e, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestWriteRoutesAreRateLimited(t *testing.T) {
	e, tokens, db := newTestRouter(t, 1)
	u := &models.User{Username: "alice", Email: "alice@example.com", Name: "Alice", Password: "x"}
	require.NoError(t, db.Create(u).Error)
	token, err := tokens.IssueAccess(u.ID)
	require.NoError(t, err)

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", strings.NewReader(`{"content":"hi"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		return serve(e, req)
	}

	assert.Equal(t, http.StatusCreated, post().Code)
	rec := post()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), models.CodeRateLimited)

	// reads stay available
	rec = serve(e, httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	e, _, _ := newTestRouter(t, 10)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), models.CodeUnauthorized)
}
