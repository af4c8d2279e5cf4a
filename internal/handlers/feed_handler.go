package handlers

import (
	"net/http"

	"github.com/anonto42/aray/backend/internal/models"
	"github.com/anonto42/aray/backend/internal/service"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves feeds, search and suggestions
type FeedHandler struct {
	feed *service.FeedService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feed *service.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// RegisterFeedRoutes registers feed and discovery routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group, guards Guards) {
	g.GET("/posts", h.GetFeed, guards.Optional)
	g.GET("/posts/search", h.SearchPosts, guards.Optional)
	g.GET("/users/search", h.SearchUsers, guards.Optional)
	g.GET("/users/suggestions", h.SuggestUsers, guards.Required)
}

// GetFeed returns one page of the explore, timeline or user feed
func (h *FeedHandler) GetFeed(c echo.Context) error {
	userID, err := queryUint(c, "user_id")
	if err != nil {
		return err
	}

	page, err := h.feed.GetFeed(c.Request().Context(), models.FeedQuery{
		ViewerID:     getUserIDFromContext(c),
		Type:         models.FeedType(c.QueryParam("type")),
		TargetUserID: userID,
		PageRequest:  pageRequest(c),
	})
	if err != nil {
		return err
	}
	return respondPage(c, "posts", page)
}

// SearchPosts finds posts whose content contains q
func (h *FeedHandler) SearchPosts(c echo.Context) error {
	page, err := h.feed.SearchPosts(c.Request().Context(), getUserIDFromContext(c), c.QueryParam("q"), pageRequest(c))
	if err != nil {
		return err
	}
	return respondPage(c, "posts", page)
}

// SearchUsers finds users by username, name or bio
func (h *FeedHandler) SearchUsers(c echo.Context) error {
	page, err := h.feed.SearchUsers(c.Request().Context(), getUserIDFromContext(c), c.QueryParam("q"), pageRequest(c))
	if err != nil {
		return err
	}
	return respondPage(c, "users", page)
}

// SuggestUsers returns popular users the caller does not follow yet
func (h *FeedHandler) SuggestUsers(c echo.Context) error {
	users, err := h.feed.SuggestUsers(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	if users == nil {
		users = []models.UserSummary{}
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}
