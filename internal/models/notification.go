package models

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationType enumerates the events users are notified about
type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationFollow  NotificationType = "follow"
	NotificationRepost  NotificationType = "repost"
	NotificationMention NotificationType = "mention"
)

// Notification represents a user notification
type Notification struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	RecipientID uint             `json:"recipient_id" gorm:"not null;index"`
	ActorID     uint             `json:"actor_id" gorm:"index"`
	Type        NotificationType `json:"type" gorm:"size:20;not null;index"`
	Message     string           `json:"message"`
	Payload     datatypes.JSON   `json:"-"`
	IsRead      bool             `json:"is_read" gorm:"not null;index"`
	CreatedAt   time.Time        `json:"created_at" gorm:"index"`
}

// NotificationView includes the decoded payload and actor info
type NotificationView struct {
	Notification
	Data  NotificationPayload `json:"data"`
	Actor UserCompact         `json:"actor"`
}

// GroupedNotifications buckets notifications by age
type GroupedNotifications struct {
	Today       []NotificationView `json:"today"`
	Yesterday   []NotificationView `json:"yesterday"`
	ThisWeek    []NotificationView `json:"this_week"`
	Older       []NotificationView `json:"older"`
	UnreadCount int64              `json:"unread_count"`
}

// MarkReadRequest selects notifications to mark read; empty means all unread
type MarkReadRequest struct {
	NotificationIDs []uint `json:"notification_ids"`
}
