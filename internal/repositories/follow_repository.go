package repositories

import (
	"context"

	"github.com/anonto42/aray/backend/internal/models"
	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(ctx context.Context, follow *models.Follow) error
	DeleteFollow(ctx context.Context, followerID, followingID uint) error
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	GetFollowers(ctx context.Context, userID uint, page models.PageRequest) ([]models.User, int64, error)
	GetFollowing(ctx context.Context, userID uint, page models.PageRequest) ([]models.User, int64, error)
	GetFollowersCount(ctx context.Context, userID uint) (int64, error)
	GetFollowingCount(ctx context.Context, userID uint) (int64, error)
	FollowedAmong(ctx context.Context, followerID uint, userIDs []uint) (map[uint]bool, error)
	FollowersAmong(ctx context.Context, followingID uint, userIDs []uint) (map[uint]bool, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

// CreateFollow inserts an edge; an existing edge yields ALREADY_EXISTS
func (r *PostgresFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	if err := r.db.WithContext(ctx).Create(follow).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewAlreadyExistsError("already following this user")
		}
		return err
	}
	return nil
}

func (r *PostgresFollowRepository) DeleteFollow(ctx context.Context, followerID, followingID uint) error {
	res := r.db.WithContext(ctx).Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Follow relationship", followingID)
	}
	return nil
}

func (r *PostgresFollowRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ? AND following_id = ?", followerID, followingID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetFollowers lists users following userID, most recent edge first
func (r *PostgresFollowRepository) GetFollowers(ctx context.Context, userID uint, page models.PageRequest) ([]models.User, int64, error) {
	return r.listEdges(ctx, "follows.follower_id", "follows.following_id", userID, page)
}

// GetFollowing lists users followed by userID, most recent edge first
func (r *PostgresFollowRepository) GetFollowing(ctx context.Context, userID uint, page models.PageRequest) ([]models.User, int64, error) {
	return r.listEdges(ctx, "follows.following_id", "follows.follower_id", userID, page)
}

func (r *PostgresFollowRepository) listEdges(ctx context.Context, joinCol, filterCol string, userID uint, page models.PageRequest) ([]models.User, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Table("users").
			Joins("JOIN follows ON "+joinCol+" = users.id").
			Where(filterCol+" = ?", userID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := paginate(base().Select("users.*").Order("follows.created_at DESC, follows.id DESC"), page).
		Find(&users).Error
	return users, total, err
}

func (r *PostgresFollowRepository) GetFollowersCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("following_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *PostgresFollowRepository) GetFollowingCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}

// FollowedAmong returns which of userIDs are followed by followerID
func (r *PostgresFollowRepository) FollowedAmong(ctx context.Context, followerID uint, userIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool)
	if followerID == 0 || len(userIDs) == 0 {
		return out, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id IN ?", followerID, uniqueIDs(userIDs)).
		Pluck("following_id", &ids).Error
	for _, id := range ids {
		out[id] = true
	}
	return out, err
}

// FollowersAmong returns which of userIDs follow followingID
func (r *PostgresFollowRepository) FollowersAmong(ctx context.Context, followingID uint, userIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool)
	if followingID == 0 || len(userIDs) == 0 {
		return out, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("following_id = ? AND follower_id IN ?", followingID, uniqueIDs(userIDs)).
		Pluck("follower_id", &ids).Error
	for _, id := range ids {
		out[id] = true
	}
	return out, err
}
