package handlers

import (
	"net/http"

	"github.com/anonto42/aray/backend/internal/models"
	"github.com/anonto42/aray/backend/internal/service"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	content *service.ContentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(content *service.ContentService) *CommentHandler {
	return &CommentHandler{content: content}
}

// RegisterCommentRoutes registers comment routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, guards Guards) {
	g.GET("/posts/:id/comments", h.GetComments, guards.Optional)
	g.POST("/posts/:id/comments", h.CreateComment, guards.Required, guards.Limit)
	g.GET("/comments/:id/replies", h.GetReplies, guards.Optional)
	g.DELETE("/comments/:id", h.DeleteComment, guards.Required, guards.Limit)
}

// CreateComment adds a comment, or a reply when parent_id is set
func (h *CommentHandler) CreateComment(c echo.Context) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.content.CreateComment(c.Request().Context(), getUserIDFromContext(c), postID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, comment)
}

// GetComments lists top-level comments of a post
func (h *CommentHandler) GetComments(c echo.Context) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	page, err := h.content.ListComments(c.Request().Context(), postID, pageRequest(c))
	if err != nil {
		return err
	}
	return respondPage(c, "comments", page)
}

// GetReplies lists replies to a comment
func (h *CommentHandler) GetReplies(c echo.Context) error {
	commentID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	page, err := h.content.ListReplies(c.Request().Context(), commentID, pageRequest(c))
	if err != nil {
		return err
	}
	return respondPage(c, "replies", page)
}

// DeleteComment deletes an own comment and its replies
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	commentID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.content.DeleteComment(c.Request().Context(), getUserIDFromContext(c), commentID); err != nil {
		return err
	}
	return message(c, http.StatusOK, "Comment deleted successfully")
}
