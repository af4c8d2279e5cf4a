package handlers

import (
	"net/http"

	"github.com/anonto42/aray/backend/internal/service"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	graph *service.GraphService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(graph *service.GraphService) *FollowHandler {
	return &FollowHandler{graph: graph}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group, guards Guards) {
	g.POST("/users/:id/follow", h.FollowUser, guards.Required, guards.Limit)
	g.DELETE("/users/:id/follow", h.UnfollowUser, guards.Required, guards.Limit)
}

// FollowUser follows a user
func (h *FollowHandler) FollowUser(c echo.Context) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.graph.Follow(c.Request().Context(), getUserIDFromContext(c), targetID); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":      "Successfully followed user",
		"is_following": true,
	})
}

// UnfollowUser unfollows a user
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.graph.Unfollow(c.Request().Context(), getUserIDFromContext(c), targetID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":      "Successfully unfollowed user",
		"is_following": false,
	})
}
