package models

import "time"

// PostKind is derived from which reference fields of a post are set
type PostKind string

const (
	PostKindOriginal PostKind = "original"
	PostKindReply    PostKind = "reply"
	PostKindRepost   PostKind = "repost"
)

// Media kinds accepted on posts
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// MaxContentLength is the rune limit for post and comment bodies
const MaxContentLength = 280

// Post is a single row for originals, replies and reposts.
// A reply has ParentID set; a repost has IsRepost, OriginalPostID set and empty Content.
type Post struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         uint      `json:"user_id" gorm:"not null;index;uniqueIndex:idx_post_user_original"`
	Content        string    `json:"content" gorm:"type:text;not null"`
	MediaURL       string    `json:"media_url,omitempty"`
	MediaType      string    `json:"media_type,omitempty" gorm:"size:10"`
	ParentID       *uint     `json:"parent_id" gorm:"index"`
	OriginalPostID *uint     `json:"original_post_id" gorm:"index;uniqueIndex:idx_post_user_original"` // one repost per (user, original)
	IsRepost       bool      `json:"is_repost" gorm:"not null"`
	CreatedAt      time.Time `json:"created_at" gorm:"index"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Kind reports whether the post is an original, a reply or a repost
func (p *Post) Kind() PostKind {
	switch {
	case p.IsRepost && p.OriginalPostID != nil:
		return PostKindRepost
	case p.ParentID != nil:
		return PostKindReply
	default:
		return PostKindOriginal
	}
}

// PostView is a post as returned to clients: author, read-time counts and viewer annotations
type PostView struct {
	Post
	Kind          PostKind    `json:"kind"`
	Author        UserCompact `json:"author"`
	LikesCount    int64       `json:"likes_count"`
	CommentsCount int64       `json:"comments_count"`
	RepostsCount  int64       `json:"reposts_count"`
	RepliesCount  int64       `json:"replies_count"`
	IsLiked       bool        `json:"is_liked"`
	IsReposted    bool        `json:"is_reposted"`
	OriginalPost  *PostView   `json:"original_post,omitempty"`
}

// CreatePostRequest defines the request body for creating a new post or reply
type CreatePostRequest struct {
	Content   string `json:"content"`
	ParentID  *uint  `json:"parent_id,omitempty"`
	MediaURL  string `json:"media_url,omitempty" validate:"omitempty,max=500"`
	MediaType string `json:"media_type,omitempty" validate:"omitempty,oneof=image video"`
}

// FeedType selects the base set of a feed
type FeedType string

const (
	FeedExplore  FeedType = "explore"
	FeedTimeline FeedType = "timeline"
	FeedUser     FeedType = "user"
)

// FeedQuery describes one feed page request
type FeedQuery struct {
	ViewerID     uint // 0 for anonymous
	Type         FeedType
	TargetUserID uint
	PageRequest
}
