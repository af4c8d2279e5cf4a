package repositories

import (
	"context"

	"github.com/anonto42/aray/backend/internal/models"
	"gorm.io/gorm"
)

// PostFilter narrows the base set of a post listing. Zero fields do not filter.
type PostFilter struct {
	TopLevelOnly bool   // parent_id IS NULL
	AuthorID     uint   // posts by one user
	TimelineOf   uint   // posts by the user or anyone they follow
	Search       string // case-insensitive substring of content
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	GetPostView(ctx context.Context, id, viewerID uint) (*models.PostView, error)
	ListPostViews(ctx context.Context, filter PostFilter, viewerID uint, page models.PageRequest) ([]models.PostView, int64, error)
	GetRepost(ctx context.Context, userID, originalPostID uint) (*models.Post, error)
	DeletePost(ctx context.Context, id uint) error
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// postRow is a post with the read-time aggregates selected by withDetails
type postRow struct {
	models.Post
	LikesCount    int64
	CommentsCount int64
	RepostsCount  int64
	RepliesCount  int64
	IsLiked       bool
	IsReposted    bool
}

// CreatePost inserts a post; a second repost of the same original yields CONFLICT
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("post already reposted")
		}
		return err
	}
	return nil
}

// GetPostByID retrieves a bare post row
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, notFound(err, "Post", id)
	}
	return &post, nil
}

// GetPostView retrieves a post with author, counts and viewer annotations
func (r *PostgresPostRepository) GetPostView(ctx context.Context, id, viewerID uint) (*models.PostView, error) {
	var rows []postRow
	err := r.withDetails(r.db.WithContext(ctx).Table("posts"), viewerID).
		Where("posts.id = ?", id).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, models.NewNotFoundError("Post", id)
	}
	views, err := r.hydrate(ctx, rows, viewerID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListPostViews returns one page of annotated posts, newest first
func (r *PostgresPostRepository) ListPostViews(ctx context.Context, filter PostFilter, viewerID uint, page models.PageRequest) ([]models.PostView, int64, error) {
	base := func() *gorm.DB {
		return applyPostFilter(r.db.WithContext(ctx).Table("posts"), filter)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []postRow
	err := paginate(r.withDetails(base(), viewerID).Order("posts.created_at DESC, posts.id DESC"), page).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	views, err := r.hydrate(ctx, rows, viewerID)
	return views, total, err
}

func applyPostFilter(db *gorm.DB, filter PostFilter) *gorm.DB {
	if filter.TopLevelOnly {
		db = db.Where("posts.parent_id IS NULL")
	}
	if filter.AuthorID != 0 {
		db = db.Where("posts.user_id = ?", filter.AuthorID)
	}
	if filter.TimelineOf != 0 {
		db = db.Where("(posts.user_id = ? OR posts.user_id IN (SELECT following_id FROM follows WHERE follower_id = ?))",
			filter.TimelineOf, filter.TimelineOf)
	}
	if filter.Search != "" {
		db = db.Where(`LOWER(posts.content) LIKE LOWER(?) ESCAPE '\'`, containsPattern(filter.Search))
	}
	return db
}

// withDetails adds subqueries to fetch counts and viewer flags in a single query.
func (r *PostgresPostRepository) withDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count, " +
		"(SELECT COUNT(*) FROM posts AS reposts WHERE reposts.original_post_id = posts.id AND reposts.is_repost = ?) AS reposts_count, " +
		"(SELECT COUNT(*) FROM posts AS replies WHERE replies.parent_id = posts.id) AS replies_count"

	if viewerID != 0 {
		return db.Select(selectQuery+", "+
			"EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS is_liked, "+
			"EXISTS(SELECT 1 FROM posts AS mine WHERE mine.original_post_id = posts.id AND mine.is_repost = ? AND mine.user_id = ?) AS is_reposted",
			true, viewerID, true, viewerID)
	}

	return db.Select(selectQuery+", false AS is_liked, false AS is_reposted", true)
}

// hydrate attaches authors and, for reposts, the annotated original post
func (r *PostgresPostRepository) hydrate(ctx context.Context, rows []postRow, viewerID uint) ([]models.PostView, error) {
	var originalIDs []uint
	for _, row := range rows {
		if row.IsRepost && row.OriginalPostID != nil {
			originalIDs = append(originalIDs, *row.OriginalPostID)
		}
	}

	var originals []postRow
	if len(originalIDs) > 0 {
		err := r.withDetails(r.db.WithContext(ctx).Table("posts"), viewerID).
			Where("posts.id IN ?", uniqueIDs(originalIDs)).
			Find(&originals).Error
		if err != nil {
			return nil, err
		}
	}

	authorIDs := make([]uint, 0, len(rows)+len(originals))
	for _, row := range rows {
		authorIDs = append(authorIDs, row.UserID)
	}
	for _, row := range originals {
		authorIDs = append(authorIDs, row.UserID)
	}
	authors, err := loadAuthors(r.db.WithContext(ctx), authorIDs)
	if err != nil {
		return nil, err
	}

	originalViews := make(map[uint]models.PostView, len(originals))
	for _, row := range originals {
		originalViews[row.ID] = row.view(authors)
	}

	views := make([]models.PostView, 0, len(rows))
	for _, row := range rows {
		v := row.view(authors)
		if row.IsRepost && row.OriginalPostID != nil {
			if orig, ok := originalViews[*row.OriginalPostID]; ok {
				v.OriginalPost = &orig
			}
		}
		views = append(views, v)
	}
	return views, nil
}

func (row postRow) view(authors map[uint]models.UserCompact) models.PostView {
	return models.PostView{
		Post:          row.Post,
		Kind:          row.Post.Kind(),
		Author:        authors[row.UserID],
		LikesCount:    row.LikesCount,
		CommentsCount: row.CommentsCount,
		RepostsCount:  row.RepostsCount,
		RepliesCount:  row.RepliesCount,
		IsLiked:       row.IsLiked,
		IsReposted:    row.IsReposted,
	}
}

// GetRepost retrieves the repost row of userID for an original post
func (r *PostgresPostRepository) GetRepost(ctx context.Context, userID, originalPostID uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND original_post_id = ? AND is_repost = ?", userID, originalPostID, true).
		First(&post).Error
	if err != nil {
		return nil, notFound(err, "Repost", originalPostID)
	}
	return &post, nil
}

// DeletePost removes a post, its reposts and every like and comment attached to them.
// Replies are separate posts and keep their parent_id.
func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		affected := func() *gorm.DB {
			return tx.Model(&models.Post{}).Select("id").
				Where("id = ? OR (original_post_id = ? AND is_repost = ?)", id, id, true)
		}

		if err := tx.Where("post_id IN (?)", affected()).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id IN (?)", affected()).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("original_post_id = ? AND is_repost = ?", id, true).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
}

// CountByUser counts every post row authored by userID
func (r *PostgresPostRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
