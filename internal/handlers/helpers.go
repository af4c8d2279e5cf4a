package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/aray/backend/internal/middleware"
	"github.com/anonto42/aray/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// Guards are the per-route middlewares handlers attach while registering routes
type Guards struct {
	// Required rejects anonymous requests
	Required echo.MiddlewareFunc
	// Optional identifies the caller when a token is present
	Optional echo.MiddlewareFunc
	// Limit throttles writes
	Limit echo.MiddlewareFunc
}

// getUserIDFromContext returns the authenticated user id, 0 when anonymous
func getUserIDFromContext(c echo.Context) uint {
	return middleware.UserIDFromContext(c)
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid ID")
	}
	return uint(id), nil
}

func queryUint(c echo.Context, name string) (uint, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, models.NewValidationError("Invalid " + name)
	}
	return uint(v), nil
}

// pageRequest reads page and per_page; unparsable values fall back to defaults
func pageRequest(c echo.Context) models.PageRequest {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))
	return models.PageRequest{Page: page, PerPage: perPage}
}

// bindAndValidate binds the request body into req and runs the registered validator
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return models.NewValidationError("Invalid request payload")
	}
	return c.Validate(req)
}

// respondPage writes a page under key together with its pagination metadata
func respondPage[T any](c echo.Context, key string, page *models.Page[T]) error {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		key:          items,
		"pagination": page.Pagination,
	})
}

func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"message": msg})
}
