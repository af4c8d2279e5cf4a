package handlers

import (
	"net/http"

	"github.com/anonto42/aray/backend/internal/service"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles like and repost HTTP requests
type LikeHandler struct {
	content *service.ContentService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(content *service.ContentService) *LikeHandler {
	return &LikeHandler{content: content}
}

// RegisterLikeRoutes registers like and repost routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group, guards Guards) {
	g.POST("/posts/:id/like", h.LikePost, guards.Required, guards.Limit)
	g.DELETE("/posts/:id/like", h.UnlikePost, guards.Required, guards.Limit)
	g.POST("/posts/:id/repost", h.Repost, guards.Required, guards.Limit)
	g.DELETE("/posts/:id/repost", h.Unrepost, guards.Required, guards.Limit)
}

// LikePost likes a post
func (h *LikeHandler) LikePost(c echo.Context) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	result, err := h.content.LikePost(c.Request().Context(), getUserIDFromContext(c), postID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// UnlikePost removes a like
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	result, err := h.content.UnlikePost(c.Request().Context(), getUserIDFromContext(c), postID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Repost reposts a post, or the original of a repost
func (h *LikeHandler) Repost(c echo.Context) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	repost, err := h.content.Repost(c.Request().Context(), getUserIDFromContext(c), postID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, repost)
}

// Unrepost removes the caller's repost of a post
func (h *LikeHandler) Unrepost(c echo.Context) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.content.Unrepost(c.Request().Context(), getUserIDFromContext(c), postID); err != nil {
		return err
	}
	return message(c, http.StatusOK, "Repost removed successfully")
}
