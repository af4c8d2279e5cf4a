package repositories

import (
	"context"

	"github.com/anonto42/aray/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	GetCommentView(ctx context.Context, id uint) (*models.CommentView, error)
	GetCommentsByPostID(ctx context.Context, postID uint, page models.PageRequest) ([]models.CommentView, int64, error)
	GetReplies(ctx context.Context, commentID uint, page models.PageRequest) ([]models.CommentView, int64, error)
	DeleteComment(ctx context.Context, id uint) error
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

type commentRow struct {
	models.Comment
	RepliesCount int64
}

const commentSelect = "comments.*, (SELECT COUNT(*) FROM comments AS replies WHERE replies.parent_id = comments.id) AS replies_count"

// CreateComment creates a new comment
func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// GetCommentByID retrieves a comment by ID
func (r *PostgresCommentRepository) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, notFound(err, "Comment", id)
	}
	return &comment, nil
}

// GetCommentView retrieves a comment with its author and reply count
func (r *PostgresCommentRepository) GetCommentView(ctx context.Context, id uint) (*models.CommentView, error) {
	var rows []commentRow
	if err := r.db.WithContext(ctx).Table("comments").Select(commentSelect).Where("comments.id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, models.NewNotFoundError("Comment", id)
	}
	views, err := r.hydrate(ctx, rows)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// GetCommentsByPostID lists top-level comments of a post, newest first
func (r *PostgresCommentRepository) GetCommentsByPostID(ctx context.Context, postID uint, page models.PageRequest) ([]models.CommentView, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Table("comments").Where("comments.post_id = ? AND comments.parent_id IS NULL", postID)
	}
	return r.list(ctx, base, "comments.created_at DESC, comments.id DESC", page)
}

// GetReplies lists direct replies to a comment, oldest first
func (r *PostgresCommentRepository) GetReplies(ctx context.Context, commentID uint, page models.PageRequest) ([]models.CommentView, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Table("comments").Where("comments.parent_id = ?", commentID)
	}
	return r.list(ctx, base, "comments.created_at ASC, comments.id ASC", page)
}

func (r *PostgresCommentRepository) list(ctx context.Context, base func() *gorm.DB, order string, page models.PageRequest) ([]models.CommentView, int64, error) {
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []commentRow
	if err := paginate(base().Select(commentSelect).Order(order), page).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	views, err := r.hydrate(ctx, rows)
	return views, total, err
}

func (r *PostgresCommentRepository) hydrate(ctx context.Context, rows []commentRow) ([]models.CommentView, error) {
	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.UserID)
	}
	authors, err := loadAuthors(r.db.WithContext(ctx), ids)
	if err != nil {
		return nil, err
	}
	views := make([]models.CommentView, 0, len(rows))
	for _, row := range rows {
		views = append(views, models.CommentView{
			Comment:      row.Comment,
			Author:       authors[row.UserID],
			RepliesCount: row.RepliesCount,
		})
	}
	return views, nil
}

// DeleteComment deletes a comment together with its reply thread
func (r *PostgresCommentRepository) DeleteComment(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := []uint{id}
		frontier := []uint{id}
		for len(frontier) > 0 {
			var children []uint
			if err := tx.Model(&models.Comment{}).Where("parent_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
				return err
			}
			ids = append(ids, children...)
			frontier = children
		}

		res := tx.Where("id IN ?", ids).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Comment", id)
		}
		return nil
	})
}
