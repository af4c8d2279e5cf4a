package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorCodes(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewNotFoundError("Post", 7))
	assert.Equal(t, CodeNotFound, ErrorCode(err))
	assert.True(t, IsCode(err, CodeNotFound))
	assert.False(t, IsCode(err, CodeConflict))
	assert.Equal(t, "", ErrorCode(errors.New("plain")))
	assert.Equal(t, "Post with ID 7 not found", NewNotFoundError("Post", 7).Error())
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("db down")
	err := NewInternalError(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Internal server error: db down", err.Error())
}

func TestPageRequestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   PageRequest
		want PageRequest
	}{
		{"defaults", PageRequest{}, PageRequest{Page: 1, PerPage: 20}},
		{"clamp high", PageRequest{Page: 2, PerPage: 500}, PageRequest{Page: 2, PerPage: 100}},
		{"clamp low", PageRequest{Page: -3, PerPage: -1}, PageRequest{Page: 1, PerPage: 1}},
		{"kept", PageRequest{Page: 3, PerPage: 5}, PageRequest{Page: 3, PerPage: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize(20))
		})
	}
	assert.Equal(t, 10, PageRequest{Page: 3, PerPage: 5}.Offset())
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(PageRequest{Page: 1, PerPage: 2}, 3)
	assert.Equal(t, Pagination{Page: 1, Pages: 2, PerPage: 2, Total: 3, HasNext: true, HasPrev: false}, p)

	p = NewPagination(PageRequest{Page: 2, PerPage: 2}, 3)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrev)

	empty := NewPagination(PageRequest{Page: 1, PerPage: 20}, 0)
	assert.Equal(t, 0, empty.Pages)
	assert.False(t, empty.HasNext)
}

func TestPostKind(t *testing.T) {
	id := uint(3)
	assert.Equal(t, PostKindOriginal, (&Post{}).Kind())
	assert.Equal(t, PostKindReply, (&Post{ParentID: &id}).Kind())
	assert.Equal(t, PostKindRepost, (&Post{IsRepost: true, OriginalPostID: &id}).Kind())
}

func TestDecodePayload(t *testing.T) {
	commentID := uint(9)
	raw, err := EncodePayload(CommentPayload{PostID: 4, CommentID: &commentID})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"post_id":4,"comment_id":9}`, string(raw))

	p, err := DecodePayload(NotificationComment, raw)
	assert.NoError(t, err)
	assert.Equal(t, CommentPayload{PostID: 4, CommentID: &commentID}, p)

	_, err = DecodePayload("poke", raw)
	assert.Error(t, err)
}
