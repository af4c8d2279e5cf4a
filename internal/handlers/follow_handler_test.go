package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/anonto42/aray/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowAndNotifications(t *testing.T) {
	s := newTestServer(t)
	alice, aliceToken := s.user(t, "alice")
	bob, bobToken := s.user(t, "bob")
	followURL := fmt.Sprintf("/api/v1/users/%d/follow", bob.ID)

	body := requireStatus(t, s.do(t, http.MethodPost, followURL, nil, aliceToken), http.StatusCreated)
	assert.Equal(t, true, body["is_following"])

	body = requireStatus(t, s.do(t, http.MethodPost, followURL, nil, aliceToken), http.StatusConflict)
	assert.Equal(t, models.CodeAlreadyExists, body["code"])

	body = requireStatus(t, s.do(t, http.MethodPost,
		fmt.Sprintf("/api/v1/users/%d/follow", alice.ID), nil, aliceToken), http.StatusBadRequest)
	assert.Equal(t, models.CodeInvalidOperation, body["code"])

	requireStatus(t, s.do(t, http.MethodPost, "/api/v1/users/9999/follow", nil, aliceToken), http.StatusNotFound)

	t.Run("followers list", func(t *testing.T) {
		body := requireStatus(t, s.do(t, http.MethodGet,
			fmt.Sprintf("/api/v1/users/%d/followers", bob.ID), nil, bobToken), http.StatusOK)
		followers := body["followers"].([]interface{})
		require.Len(t, followers, 1)
		entry := followers[0].(map[string]interface{})
		assert.Equal(t, "alice", entry["username"])
		assert.Equal(t, true, entry["is_followed_by"])
		assert.Nil(t, entry["email"])
	})

	t.Run("profile relationship", func(t *testing.T) {
		body := requireStatus(t, s.do(t, http.MethodGet,
			fmt.Sprintf("/api/v1/users/%d", bob.ID), nil, aliceToken), http.StatusOK)
		assert.Equal(t, true, body["is_following"])
		assert.EqualValues(t, 1, body["followers_count"])
		assert.Nil(t, body["email"])

		body = requireStatus(t, s.do(t, http.MethodGet, "/api/v1/users/by-username/alice", nil, ""), http.StatusOK)
		assert.EqualValues(t, 1, body["following_count"])
	})

	t.Run("notifications", func(t *testing.T) {
		body := requireStatus(t, s.do(t, http.MethodGet, "/api/v1/notifications/unread-count", nil, bobToken), http.StatusOK)
		assert.EqualValues(t, 1, body["unread_count"])

		body = requireStatus(t, s.do(t, http.MethodGet, "/api/v1/notifications", nil, bobToken), http.StatusOK)
		items := body["notifications"].([]interface{})
		require.Len(t, items, 1)
		item := items[0].(map[string]interface{})
		assert.Equal(t, string(models.NotificationFollow), item["type"])
		data := item["data"].(map[string]interface{})
		assert.EqualValues(t, alice.ID, data["user_id"])

		body = requireStatus(t, s.do(t, http.MethodPost, "/api/v1/notifications/mark-read",
			map[string]interface{}{}, bobToken), http.StatusOK)
		assert.EqualValues(t, 1, body["updated"])

		body = requireStatus(t, s.do(t, http.MethodPost, "/api/v1/notifications/mark-read",
			map[string]interface{}{}, bobToken), http.StatusOK)
		assert.EqualValues(t, 0, body["updated"])

		requireStatus(t, s.do(t, http.MethodGet, "/api/v1/notifications/grouped", nil, bobToken), http.StatusOK)
		requireStatus(t, s.do(t, http.MethodGet, "/api/v1/notifications", nil, ""), http.StatusUnauthorized)
	})

	t.Run("unfollow", func(t *testing.T) {
		body := requireStatus(t, s.do(t, http.MethodDelete, followURL, nil, aliceToken), http.StatusOK)
		assert.Equal(t, false, body["is_following"])
		requireStatus(t, s.do(t, http.MethodDelete, followURL, nil, aliceToken), http.StatusNotFound)
	})
}

func TestUserDiscovery(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.user(t, "alice")
	s.user(t, "alicia")
	s.user(t, "bob")

	body := requireStatus(t, s.do(t, http.MethodGet, "/api/v1/users/search?q=ALI", nil, ""), http.StatusOK)
	assert.Len(t, body["users"], 2)

	requireStatus(t, s.do(t, http.MethodGet, "/api/v1/users/search", nil, ""), http.StatusBadRequest)

	body = requireStatus(t, s.do(t, http.MethodGet, "/api/v1/users/suggestions", nil, aliceToken), http.StatusOK)
	assert.Len(t, body["users"], 2)
	requireStatus(t, s.do(t, http.MethodGet, "/api/v1/users/suggestions", nil, ""), http.StatusUnauthorized)

	body = requireStatus(t, s.do(t, http.MethodPut, "/api/v1/users/me",
		map[string]interface{}{"bio": "hello", "is_private": true}, aliceToken), http.StatusOK)
	assert.Equal(t, "hello", body["bio"])
	assert.Equal(t, true, body["is_private"])
}
