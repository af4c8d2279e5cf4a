package models

import "time"

// Like represents a like on a post
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"not null;index;uniqueIndex:idx_like_user_post"`
	UserID    uint      `json:"user_id" gorm:"not null;index;uniqueIndex:idx_like_user_post"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeResult is returned by like and unlike
type LikeResult struct {
	PostID     uint  `json:"post_id"`
	Liked      bool  `json:"is_liked"`
	LikesCount int64 `json:"likes_count"`
}
