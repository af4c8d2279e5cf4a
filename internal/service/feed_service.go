package service

import (
	"context"
	"strings"

	"github.com/anonto42/aray/backend/internal/models"
	"github.com/anonto42/aray/backend/internal/repositories"
)

// UserAnnotator attaches viewer relationship flags to users
type UserAnnotator interface {
	Annotate(ctx context.Context, viewerID uint, users []models.User) ([]models.UserSummary, error)
}

// FeedService composes paginated, viewer-annotated result sets.
type FeedService struct {
	posts        repositories.PostRepository
	users        repositories.UserRepository
	annotator    UserAnnotator
	postsPerPage int
	usersPerPage int
}

// NewFeedService returns a new FeedService.
func NewFeedService(posts repositories.PostRepository, users repositories.UserRepository, annotator UserAnnotator, postsPerPage, usersPerPage int) *FeedService {
	return &FeedService{
		posts:        posts,
		users:        users,
		annotator:    annotator,
		postsPerPage: postsPerPage,
		usersPerPage: usersPerPage,
	}
}

// GetFeed returns one page of the explore, timeline or user feed.
func (s *FeedService) GetFeed(ctx context.Context, q models.FeedQuery) (*models.Page[models.PostView], error) {
	filter := repositories.PostFilter{TopLevelOnly: true}

	switch q.Type {
	case models.FeedExplore, "":
	case models.FeedTimeline:
		if q.ViewerID == 0 {
			return nil, models.NewUnauthorizedError("Authentication required for the timeline")
		}
		filter.TimelineOf = q.ViewerID
	case models.FeedUser:
		if q.TargetUserID == 0 {
			return nil, models.NewValidationError("user_id is required for the user feed")
		}
		if _, err := s.users.GetUserByID(ctx, q.TargetUserID); err != nil {
			return nil, err
		}
		filter.AuthorID = q.TargetUserID
	default:
		return nil, models.NewValidationError("Unknown feed type: " + string(q.Type))
	}

	return s.listPosts(ctx, filter, q.ViewerID, q.PageRequest)
}

// SearchPosts matches post content case-insensitively.
func (s *FeedService) SearchPosts(ctx context.Context, viewerID uint, query string, page models.PageRequest) (*models.Page[models.PostView], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.listPosts(ctx, repositories.PostFilter{Search: query}, viewerID, page)
}

func (s *FeedService) listPosts(ctx context.Context, filter repositories.PostFilter, viewerID uint, page models.PageRequest) (*models.Page[models.PostView], error) {
	page = page.Normalize(s.postsPerPage)
	items, total, err := s.posts.ListPostViews(ctx, filter, viewerID, page)
	if err != nil {
		return nil, err
	}
	return &models.Page[models.PostView]{Items: items, Pagination: models.NewPagination(page, total)}, nil
}

// SearchUsers matches username, name and bio case-insensitively.
func (s *FeedService) SearchUsers(ctx context.Context, viewerID uint, query string, page models.PageRequest) (*models.Page[models.UserSummary], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	page = page.Normalize(s.usersPerPage)
	users, total, err := s.users.SearchUsers(ctx, query, page)
	if err != nil {
		return nil, err
	}
	items, err := s.annotator.Annotate(ctx, viewerID, users)
	if err != nil {
		return nil, err
	}
	return &models.Page[models.UserSummary]{Items: items, Pagination: models.NewPagination(page, total)}, nil
}

// SuggestUsers returns up to ten users the viewer does not follow yet, most followed first.
func (s *FeedService) SuggestUsers(ctx context.Context, viewerID uint) ([]models.UserSummary, error) {
	if viewerID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	users, err := s.users.SuggestUsers(ctx, viewerID, repositories.SuggestionLimit)
	if err != nil {
		return nil, err
	}
	return s.annotator.Annotate(ctx, viewerID, users)
}
