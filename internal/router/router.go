package router

import (
	"log/slog"
	"net/http"

	"github.com/anonto42/aray/backend/internal/handlers"
	"github.com/anonto42/aray/backend/internal/media"
	"github.com/anonto42/aray/backend/internal/middleware"
	"github.com/anonto42/aray/backend/internal/service"
	"github.com/anonto42/aray/backend/validators"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

// APIPrefix is the mount point of every API route
const APIPrefix = "/api/v1"

// Deps are the services and infrastructure the routes are built from
type Deps struct {
	DB            *gorm.DB
	Logger        *slog.Logger
	Tokens        *service.TokenIssuer
	Users         *service.UserService
	Graph         *service.GraphService
	Content       *service.ContentService
	Feed          *service.FeedService
	Notifications *service.NotificationService
	// MediaStore is nil when uploads are disabled
	MediaStore     media.Store
	MaxUploadBytes int64
	Limiter        middleware.Limiter
	AllowedOrigins []string
}

// New builds the echo instance with global middleware and every route
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.NewHTTPErrorHandler(d.Logger)

	SetupMiddleware(e, d.Logger, d.AllowedOrigins)
	SetupRoutes(e, d)
	return e
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, logger *slog.Logger, allowedOrigins []string) {
	e.Use(eMiddleware.RequestIDWithConfig(eMiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.Metrics())
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				if v.Status >= http.StatusInternalServerError {
					level = slog.LevelError
				}
			}
			logger.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	}))
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORSWithConfig(eMiddleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, d Deps) {
	health := handlers.NewHealthHandler(d.DB)
	e.GET("/health", health.HealthCheck)

	api := e.Group(APIPrefix)
	api.GET("/health", health.HealthCheck)

	guards := handlers.Guards{
		Required: middleware.JWTAuthMiddleware(d.Tokens),
		Optional: middleware.OptionalJWTAuthMiddleware(d.Tokens),
		Limit:    middleware.RateLimit(d.Limiter, d.Logger),
	}

	handlers.NewAuthHandler(d.Users).RegisterAuthRoutes(api.Group("/auth"), guards)
	handlers.NewFeedHandler(d.Feed).RegisterFeedRoutes(api, guards)
	handlers.NewUserHandler(d.Users, d.Graph).RegisterProfileRoutes(api, guards)
	handlers.NewFollowHandler(d.Graph).RegisterFollowRoutes(api, guards)
	handlers.NewPostHandler(d.Content).RegisterPostRoutes(api, guards)
	handlers.NewLikeHandler(d.Content).RegisterLikeRoutes(api, guards)
	handlers.NewCommentHandler(d.Content).RegisterCommentRoutes(api, guards)
	handlers.NewNotificationHandler(d.Notifications).RegisterNotificationRoutes(api, guards)

	if d.MediaStore != nil {
		handlers.NewMediaHandler(d.MediaStore, d.MaxUploadBytes, APIPrefix).RegisterMediaRoutes(api, guards)
	} else {
		d.Logger.Info("media uploads disabled, MONGO_URI not set")
	}

	d.Logger.Info("routes configured", slog.Int("count", len(e.Routes())))
}
