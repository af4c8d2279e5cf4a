package models

import "time"

// Comment represents a comment on a post; ParentID nests it under another comment of the same post
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"not null;index"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	ParentID  *uint     `json:"parent_id" gorm:"index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentView is a comment with its author and direct reply count
type CommentView struct {
	Comment
	Author       UserCompact `json:"author"`
	RepliesCount int64       `json:"replies_count"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content  string `json:"content"`
	ParentID *uint  `json:"parent_id,omitempty"`
}
