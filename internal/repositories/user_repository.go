package repositories

import (
	"context"
	"strings"

	"github.com/anonto42/aray/backend/internal/models"
	"gorm.io/gorm"
)

// SuggestionLimit caps the "who to follow" list
const SuggestionLimit = 10

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByEmailOrUsername(ctx context.Context, login string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error)
	GetUsersByUsernames(ctx context.Context, usernames []string) ([]models.User, error)
	UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error)
	UpdateUser(ctx context.Context, user *models.User) error
	SearchUsers(ctx context.Context, query string, page models.PageRequest) ([]models.User, int64, error)
	SuggestUsers(ctx context.Context, viewerID uint, limit int) ([]models.User, error)
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser creates a new user; a taken username or email yields CONFLICT
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("username or email already registered")
		}
		return err
	}
	return nil
}

// GetUserByID retrieves a user by ID
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "User", id)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username (case-insensitive)
func (r *PostgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", strings.ToLower(username)).First(&user).Error; err != nil {
		return nil, notFound(err, "User", username)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email (case-insensitive)
func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, notFound(err, "User", email)
	}
	return &user, nil
}

// GetUserByEmailOrUsername retrieves a user matching either the email or the username
func (r *PostgresUserRepository) GetUserByEmailOrUsername(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	login = strings.ToLower(strings.TrimSpace(login))
	if err := r.db.WithContext(ctx).Where("email = ? OR username = ?", login, login).First(&user).Error; err != nil {
		return nil, notFound(err, "User", login)
	}
	return &user, nil
}

// GetUserByFirebaseUID retrieves a user by Firebase UID
func (r *PostgresUserRepository) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("firebase_uid = ?", firebaseUID).First(&user).Error; err != nil {
		return nil, notFound(err, "User", firebaseUID)
	}
	return &user, nil
}

// GetUsersByIDs retrieves the users with the given ids, in no particular order
func (r *PostgresUserRepository) GetUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", uniqueIDs(ids)).Find(&users).Error
	return users, err
}

// GetUsersByUsernames retrieves the users with the given usernames
func (r *PostgresUserRepository) GetUsersByUsernames(ctx context.Context, usernames []string) ([]models.User, error) {
	var users []models.User
	if len(usernames) == 0 {
		return users, nil
	}
	lowered := make([]string, len(usernames))
	for i, u := range usernames {
		lowered[i] = strings.ToLower(u)
	}
	err := r.db.WithContext(ctx).Where("username IN ?", lowered).Find(&users).Error
	return users, err
}

// UsernameOrEmailTaken checks both unique columns before an insert
func (r *PostgresUserRepository) UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", strings.ToLower(username), strings.ToLower(email)).
		Count(&count).Error
	return count > 0, err
}

// UpdateUser updates an existing user
func (r *PostgresUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("username or email already registered")
		}
		return err
	}
	return nil
}

// SearchUsers searches for users by username, name or bio (case-insensitive)
func (r *PostgresUserRepository) SearchUsers(ctx context.Context, query string, page models.PageRequest) ([]models.User, int64, error) {
	pattern := containsPattern(query)
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.User{}).
			Where(`LOWER(username) LIKE LOWER(?) ESCAPE '\' OR LOWER(name) LIKE LOWER(?) ESCAPE '\' OR LOWER(bio) LIKE LOWER(?) ESCAPE '\'`, pattern, pattern, pattern)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	if err := paginate(base().Order("id ASC"), page).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// SuggestUsers returns users the viewer does not follow, most followed first
func (r *PostgresUserRepository) SuggestUsers(ctx context.Context, viewerID uint, limit int) ([]models.User, error) {
	var users []models.User
	followed := r.db.Model(&models.Follow{}).Select("following_id").Where("follower_id = ?", viewerID)
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("users.*, (SELECT COUNT(*) FROM follows WHERE follows.following_id = users.id) AS followers_count").
		Where("users.id <> ?", viewerID).
		Where("users.id NOT IN (?)", followed).
		Order("followers_count DESC, users.id ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}
