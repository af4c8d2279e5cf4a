package service

import (
	"context"

	"github.com/anonto42/aray/backend/internal/models"
	"github.com/anonto42/aray/backend/internal/repositories"
)

// GraphService owns the directed follow edges between users.
type GraphService struct {
	follows  repositories.FollowRepository
	users    repositories.UserRepository
	notifier Notifier
	perPage  int
}

// NewGraphService returns a new GraphService.
func NewGraphService(follows repositories.FollowRepository, users repositories.UserRepository, notifier Notifier, perPage int) *GraphService {
	return &GraphService{
		follows:  follows,
		users:    users,
		notifier: notifier,
		perPage:  perPage,
	}
}

// Follow creates the edge follower -> target and notifies the target.
func (s *GraphService) Follow(ctx context.Context, followerID, targetID uint) error {
	if followerID == targetID {
		return models.NewInvalidOperationError("You cannot follow yourself")
	}
	if _, err := s.users.GetUserByID(ctx, targetID); err != nil {
		return err
	}

	following, err := s.follows.IsFollowing(ctx, followerID, targetID)
	if err != nil {
		return err
	}
	if following {
		return models.NewAlreadyExistsError("already following this user")
	}

	if err := s.follows.CreateFollow(ctx, &models.Follow{FollowerID: followerID, FollowingID: targetID}); err != nil {
		return err
	}

	s.notifier.Notify(ctx, followerID, targetID, models.FollowPayload{UserID: followerID}, "")
	return nil
}

// Unfollow removes the edge follower -> target.
func (s *GraphService) Unfollow(ctx context.Context, followerID, targetID uint) error {
	if followerID == targetID {
		return models.NewInvalidOperationError("You cannot unfollow yourself")
	}
	return s.follows.DeleteFollow(ctx, followerID, targetID)
}

// IsFollowing reports whether a follows b.
func (s *GraphService) IsFollowing(ctx context.Context, a, b uint) (bool, error) {
	if a == 0 || a == b {
		return false, nil
	}
	return s.follows.IsFollowing(ctx, a, b)
}

// Followers lists the users following userID, annotated for the viewer.
func (s *GraphService) Followers(ctx context.Context, viewerID, userID uint, page models.PageRequest) (*models.Page[models.UserSummary], error) {
	return s.list(ctx, viewerID, userID, page, s.follows.GetFollowers)
}

// Following lists the users followed by userID, annotated for the viewer.
func (s *GraphService) Following(ctx context.Context, viewerID, userID uint, page models.PageRequest) (*models.Page[models.UserSummary], error) {
	return s.list(ctx, viewerID, userID, page, s.follows.GetFollowing)
}

type edgeLister func(ctx context.Context, userID uint, page models.PageRequest) ([]models.User, int64, error)

func (s *GraphService) list(ctx context.Context, viewerID, userID uint, page models.PageRequest, fetch edgeLister) (*models.Page[models.UserSummary], error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.checkListAccess(ctx, viewerID, user); err != nil {
		return nil, err
	}

	page = page.Normalize(s.perPage)
	users, total, err := fetch(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	summaries, err := s.Annotate(ctx, viewerID, users)
	if err != nil {
		return nil, err
	}
	return &models.Page[models.UserSummary]{Items: summaries, Pagination: models.NewPagination(page, total)}, nil
}

// checkListAccess hides the lists of a private user from everyone but the user and their followers
func (s *GraphService) checkListAccess(ctx context.Context, viewerID uint, user *models.User) error {
	if !user.IsPrivate || viewerID == user.ID {
		return nil
	}
	if viewerID != 0 {
		ok, err := s.follows.IsFollowing(ctx, viewerID, user.ID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return models.NewForbiddenError("This account is private")
}

// Relationship returns how viewerID relates to userID; zero for anonymous or self.
func (s *GraphService) Relationship(ctx context.Context, viewerID, userID uint) (models.Relationship, error) {
	var rel models.Relationship
	if viewerID == 0 || viewerID == userID {
		return rel, nil
	}
	var err error
	if rel.IsFollowing, err = s.follows.IsFollowing(ctx, viewerID, userID); err != nil {
		return rel, err
	}
	if rel.IsFollowedBy, err = s.follows.IsFollowing(ctx, userID, viewerID); err != nil {
		return rel, err
	}
	return rel, nil
}

// Annotate attaches is_following / is_followed_by relative to the viewer.
func (s *GraphService) Annotate(ctx context.Context, viewerID uint, users []models.User) ([]models.UserSummary, error) {
	ids := make([]uint, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	followed, err := s.follows.FollowedAmong(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}
	fans, err := s.follows.FollowersAmong(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.UserSummary, len(users))
	for i := range users {
		if users[i].ID == viewerID {
			out[i] = models.UserSummary{User: users[i]}
			continue
		}
		out[i] = models.UserSummary{User: users[i].Public()}
		out[i].IsFollowing = followed[users[i].ID]
		out[i].IsFollowedBy = fans[users[i].ID]
	}
	return out, nil
}
