package handlers

import (
	"net/http"

	"github.com/anonto42/aray/backend/internal/models"
	"github.com/anonto42/aray/backend/internal/service"
	"github.com/labstack/echo/v4"
)

// UserHandler handles profile-related HTTP requests
type UserHandler struct {
	users *service.UserService
	graph *service.GraphService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *service.UserService, graph *service.GraphService) *UserHandler {
	return &UserHandler{users: users, graph: graph}
}

// RegisterProfileRoutes registers profile routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group, guards Guards) {
	g.PUT("/users/me", h.UpdateProfile, guards.Required, guards.Limit)
	g.GET("/users/by-username/:username", h.GetProfileByUsername, guards.Optional)
	g.GET("/users/:id", h.GetProfile, guards.Optional)
	g.GET("/users/:id/followers", h.Followers, guards.Optional)
	g.GET("/users/:id/following", h.Following, guards.Optional)
}

// GetProfile returns a profile by id
func (h *UserHandler) GetProfile(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	profile, err := h.users.GetProfile(c.Request().Context(), getUserIDFromContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// GetProfileByUsername returns a profile by username
func (h *UserHandler) GetProfileByUsername(c echo.Context) error {
	profile, err := h.users.GetProfileByUsername(c.Request().Context(), getUserIDFromContext(c), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateProfile updates the authenticated user's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	profile, err := h.users.UpdateProfile(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// Followers lists who follows a user
func (h *UserHandler) Followers(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	page, err := h.graph.Followers(c.Request().Context(), getUserIDFromContext(c), id, pageRequest(c))
	if err != nil {
		return err
	}
	return respondPage(c, "followers", page)
}

// Following lists who a user follows
func (h *UserHandler) Following(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	page, err := h.graph.Following(c.Request().Context(), getUserIDFromContext(c), id, pageRequest(c))
	if err != nil {
		return err
	}
	return respondPage(c, "following", page)
}
