package models

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
)

// NotificationPayload is the typed data attached to a notification
type NotificationPayload interface {
	NotificationType() NotificationType
}

// LikePayload is attached to "like" notifications
type LikePayload struct {
	PostID uint `json:"post_id"`
	UserID uint `json:"user_id"`
}

// CommentPayload is attached to "comment" notifications.
// CommentID is set for comments, ParentPostID for replies.
type CommentPayload struct {
	PostID       uint  `json:"post_id"`
	CommentID    *uint `json:"comment_id,omitempty"`
	ParentPostID *uint `json:"parent_post_id,omitempty"`
}

// FollowPayload is attached to "follow" notifications
type FollowPayload struct {
	UserID uint `json:"user_id"`
}

// RepostPayload is attached to "repost" notifications
type RepostPayload struct {
	PostID         uint `json:"post_id"`
	OriginalPostID uint `json:"original_post_id"`
}

// MentionPayload is attached to "mention" notifications
type MentionPayload struct {
	PostID uint `json:"post_id"`
}

func (LikePayload) NotificationType() NotificationType    { return NotificationLike }
func (CommentPayload) NotificationType() NotificationType { return NotificationComment }
func (FollowPayload) NotificationType() NotificationType  { return NotificationFollow }
func (RepostPayload) NotificationType() NotificationType  { return NotificationRepost }
func (MentionPayload) NotificationType() NotificationType { return NotificationMention }

// EncodePayload serializes a payload for the JSON column
func EncodePayload(p NotificationPayload) (datatypes.JSON, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// DecodePayload restores the typed payload of a stored notification
func DecodePayload(t NotificationType, raw datatypes.JSON) (NotificationPayload, error) {
	var err error
	switch t {
	case NotificationLike:
		var p LikePayload
		err = unmarshalPayload(raw, &p)
		return p, err
	case NotificationComment:
		var p CommentPayload
		err = unmarshalPayload(raw, &p)
		return p, err
	case NotificationFollow:
		var p FollowPayload
		err = unmarshalPayload(raw, &p)
		return p, err
	case NotificationRepost:
		var p RepostPayload
		err = unmarshalPayload(raw, &p)
		return p, err
	case NotificationMention:
		var p MentionPayload
		err = unmarshalPayload(raw, &p)
		return p, err
	}
	return nil, fmt.Errorf("unknown notification type %q", t)
}

func unmarshalPayload(raw datatypes.JSON, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
