package middleware

import (
	"strings"

	"github.com/anonto42/aray/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// ClaimsContextKey is where verified claims are stored on the echo context
const ClaimsContextKey = "user"

// TokenParser verifies a signed token of the expected type
type TokenParser interface {
	Parse(tokenString, expectedType string) (*models.JwtCustomClaims, error)
}

// JWTAuthMiddleware checks for a valid access token and extracts user claims.
func JWTAuthMiddleware(tokens TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return models.NewUnauthorizedError("Missing Authorization header")
			}
			if err := authenticate(c, tokens, authHeader); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// OptionalJWTAuthMiddleware lets anonymous requests through but rejects bad tokens.
func OptionalJWTAuthMiddleware(tokens TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return next(c)
			}
			if err := authenticate(c, tokens, authHeader); err != nil {
				return err
			}
			return next(c)
		}
	}
}

func authenticate(c echo.Context, tokens TokenParser, authHeader string) error {
	// Expecting "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return models.NewUnauthorizedError("Invalid Authorization header format")
	}

	claims, err := tokens.Parse(parts[1], models.TokenTypeAccess)
	if err != nil {
		return err
	}

	// Store user claims in context
	c.Set(ClaimsContextKey, claims)
	return nil
}

// UserIDFromContext returns the authenticated user id, or 0 for anonymous requests
func UserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get(ClaimsContextKey).(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return 0
	}
	return claims.UserID
}
