package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anonto42/aray/backend/internal/models"
	"github.com/anonto42/aray/backend/internal/observability"
	"github.com/anonto42/aray/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// notificationRepoStub is a stub for repositories.NotificationRepository.
type notificationRepoStub struct {
	repositories.NotificationRepository
	createFn func(context.Context, *models.Notification) error
}

func (s *notificationRepoStub) CreateNotification(ctx context.Context, n *models.Notification) error {
	return s.createFn(ctx, n)
}

func TestNotificationService_EmitSkipsSelf(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")

	n, err := env.notifications.Emit(ctx, alice.ID, alice.ID, models.FollowPayload{UserID: alice.ID}, "")
	require.NoError(t, err)
	assert.Nil(t, n)
	assert.Empty(t, env.notificationsFor(t, alice.ID))
}

func TestNotificationService_NotifySwallowsFailures(t *testing.T) {
	env := newTestEnv(t)
	var buf bytes.Buffer
	stub := &notificationRepoStub{createFn: func(context.Context, *models.Notification) error {
		return errors.New("disk full")
	}}
	svc := NewNotificationService(stub, env.users, observability.NewLogger("info", &buf), 20)

	assert.NotPanics(t, func() {
		svc.Notify(context.Background(), 1, 2, models.LikePayload{PostID: 3, UserID: 1}, "x liked your post")
	})
	assert.Contains(t, buf.String(), "notification dropped")
	assert.Contains(t, buf.String(), "disk full")
	assert.Contains(t, buf.String(), `"type":"like"`)
}

func TestNotificationService_ListAndMarkRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	carol := env.user(t, "carol")

	first, err := env.notifications.Emit(ctx, bob.ID, alice.ID, models.FollowPayload{UserID: bob.ID}, "")
	require.NoError(t, err)
	second, err := env.notifications.Emit(ctx, carol.ID, alice.ID, models.MentionPayload{PostID: 9}, "custom message")
	require.NoError(t, err)
	foreign, err := env.notifications.Emit(ctx, alice.ID, bob.ID, models.FollowPayload{UserID: alice.ID}, "")
	require.NoError(t, err)

	page, err := env.notifications.List(ctx, alice.ID, models.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, second.ID, page.Items[0].ID)
	assert.Equal(t, "custom message", page.Items[0].Message)
	assert.Equal(t, models.MentionPayload{PostID: 9}, page.Items[0].Data)
	assert.Equal(t, "carol", page.Items[0].Actor.Username)
	assert.Equal(t, models.FollowPayload{UserID: bob.ID}, page.Items[1].Data)

	changed, err := env.notifications.MarkRead(ctx, alice.ID, []uint{first.ID, foreign.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	unread, err := env.notifications.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	changed, err = env.notifications.MarkRead(ctx, alice.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	changed, err = env.notifications.MarkRead(ctx, alice.ID, nil)
	require.NoError(t, err)
	assert.Zero(t, changed)
}

func TestNotificationService_Grouped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	now := time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)
	env.notifications.now = func() time.Time { return now }
	for _, at := range []time.Time{now.Add(-time.Hour), now.Add(-10 * 24 * time.Hour)} {
		n := &models.Notification{RecipientID: alice.ID, ActorID: bob.ID, Type: models.NotificationFollow, Payload: []byte(`{"user_id":2}`), CreatedAt: at}
		require.NoError(t, env.db.Create(n).Error)
	}

	grouped, err := env.notifications.Grouped(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, grouped.Today, 1)
	assert.Empty(t, grouped.Yesterday)
	assert.Empty(t, grouped.ThisWeek)
	assert.Len(t, grouped.Older, 1)
	assert.Equal(t, int64(2), grouped.UnreadCount)
	assert.Equal(t, "bob", grouped.Today[0].Actor.Username)
}
