package handlers

import (
	"net/http"

	"github.com/anonto42/aray/backend/internal/models"
	"github.com/anonto42/aray/backend/internal/service"
	"github.com/labstack/echo/v4"
)

// PostHandler handles post-related HTTP requests
type PostHandler struct {
	content *service.ContentService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(content *service.ContentService) *PostHandler {
	return &PostHandler{content: content}
}

// RegisterPostRoutes registers post routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, guards Guards) {
	g.POST("/posts", h.CreatePost, guards.Required, guards.Limit)
	g.GET("/posts/:id", h.GetPost, guards.Optional)
	g.DELETE("/posts/:id", h.DeletePost, guards.Required, guards.Limit)
}

// CreatePost creates a post or a reply
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.content.CreatePost(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a single post
func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	post, err := h.content.GetPost(c.Request().Context(), getUserIDFromContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes an own post with its likes, comments and reposts
func (h *PostHandler) DeletePost(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.content.DeletePost(c.Request().Context(), getUserIDFromContext(c), id); err != nil {
		return err
	}
	return message(c, http.StatusOK, "Post deleted successfully")
}
