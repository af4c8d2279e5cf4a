package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/anonto42/aray/backend/internal/models"
	"github.com/anonto42/aray/backend/internal/observability"
	"github.com/anonto42/aray/backend/internal/repositories"
)

// Notifier records a notification after the triggering write has committed.
// Implementations never fail the caller.
type Notifier interface {
	Notify(ctx context.Context, actorID, recipientID uint, payload models.NotificationPayload, message string)
}

// NotificationService stores and reads user notifications.
type NotificationService struct {
	repo    repositories.NotificationRepository
	users   repositories.UserRepository
	logger  *slog.Logger
	perPage int
	now     func() time.Time
}

// NewNotificationService returns a new NotificationService.
func NewNotificationService(repo repositories.NotificationRepository, users repositories.UserRepository, logger *slog.Logger, perPage int) *NotificationService {
	return &NotificationService{
		repo:    repo,
		users:   users,
		logger:  logger,
		perPage: perPage,
		now:     time.Now,
	}
}

// Emit stores one notification. Self-actions are dropped and return nil.
func (s *NotificationService) Emit(ctx context.Context, actorID, recipientID uint, payload models.NotificationPayload, message string) (*models.Notification, error) {
	if actorID == recipientID || recipientID == 0 {
		return nil, nil
	}
	raw, err := models.EncodePayload(payload)
	if err != nil {
		return nil, err
	}
	if message == "" {
		message = s.defaultMessage(ctx, actorID, payload)
	}

	n := &models.Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        payload.NotificationType(),
		Message:     message,
		Payload:     raw,
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return nil, err
	}
	observability.NotificationsEmitted.WithLabelValues(string(n.Type)).Inc()
	return n, nil
}

// Notify is Emit for callers that already committed their own write
func (s *NotificationService) Notify(ctx context.Context, actorID, recipientID uint, payload models.NotificationPayload, message string) {
	if _, err := s.Emit(ctx, actorID, recipientID, payload, message); err != nil {
		observability.NotificationsFailed.WithLabelValues(string(payload.NotificationType())).Inc()
		s.logger.WarnContext(ctx, "notification dropped",
			slog.Uint64("recipient_id", uint64(recipientID)),
			slog.Uint64("actor_id", uint64(actorID)),
			slog.String("type", string(payload.NotificationType())),
			slog.String("error", err.Error()),
		)
	}
}

func (s *NotificationService) defaultMessage(ctx context.Context, actorID uint, payload models.NotificationPayload) string {
	name := "Someone"
	if actor, err := s.users.GetUserByID(ctx, actorID); err == nil {
		name = actor.Username
	}

	switch p := payload.(type) {
	case models.LikePayload:
		return name + " liked your post"
	case models.CommentPayload:
		if p.ParentPostID != nil {
			return name + " replied to your post"
		}
		return name + " commented on your post"
	case models.FollowPayload:
		return name + " started following you"
	case models.RepostPayload:
		return name + " reposted your post"
	case models.MentionPayload:
		return name + " mentioned you in a post"
	}
	return name + " interacted with you"
}

// List returns the user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID uint, page models.PageRequest) (*models.Page[models.NotificationView], error) {
	page = page.Normalize(s.perPage)
	items, total, err := s.repo.GetByRecipientID(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	views, err := s.toViews(ctx, items)
	if err != nil {
		return nil, err
	}
	return &models.Page[models.NotificationView]{Items: views, Pagination: models.NewPagination(page, total)}, nil
}

// UnreadCount returns the number of unread notifications
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// Grouped returns notifications bucketed by age together with the unread count
func (s *NotificationService) Grouped(ctx context.Context, userID uint) (*models.GroupedNotifications, error) {
	today, yesterday, thisWeek, older, err := s.repo.GetGrouped(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &models.GroupedNotifications{UnreadCount: unread}
	buckets := []struct {
		src []models.Notification
		dst *[]models.NotificationView
	}{
		{today, &out.Today},
		{yesterday, &out.Yesterday},
		{thisWeek, &out.ThisWeek},
		{older, &out.Older},
	}
	for _, b := range buckets {
		views, err := s.toViews(ctx, b.src)
		if err != nil {
			return nil, err
		}
		*b.dst = views
	}
	return out, nil
}

// MarkRead marks the given notifications read, or every unread one when ids is empty.
// It returns the number of notifications that changed state.
func (s *NotificationService) MarkRead(ctx context.Context, userID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return s.repo.MarkAllAsRead(ctx, userID)
	}
	return s.repo.MarkAsRead(ctx, userID, ids)
}

func (s *NotificationService) toViews(ctx context.Context, items []models.Notification) ([]models.NotificationView, error) {
	views := make([]models.NotificationView, 0, len(items))
	if len(items) == 0 {
		return views, nil
	}

	actorIDs := make([]uint, 0, len(items))
	for _, n := range items {
		actorIDs = append(actorIDs, n.ActorID)
	}
	actors, err := s.users.GetUsersByIDs(ctx, actorIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.UserCompact, len(actors))
	for i := range actors {
		byID[actors[i].ID] = actors[i].ToCompact()
	}

	for _, n := range items {
		data, err := models.DecodePayload(n.Type, n.Payload)
		if err != nil {
			s.logger.WarnContext(ctx, "undecodable notification payload",
				slog.Uint64("notification_id", uint64(n.ID)),
				slog.String("error", err.Error()),
			)
		}
		views = append(views, models.NotificationView{
			Notification: n,
			Data:         data,
			Actor:        byID[n.ActorID],
		})
	}
	return views, nil
}
