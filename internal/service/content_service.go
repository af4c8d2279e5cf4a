package service

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/anonto42/aray/backend/internal/models"
	"github.com/anonto42/aray/backend/internal/repositories"
)

var mentionPattern = regexp.MustCompile(`(?:^|[^a-zA-Z0-9_@])@([a-zA-Z0-9_]{3,30})`)

// ContentService owns posts, reposts, likes and comments.
type ContentService struct {
	posts    repositories.PostRepository
	likes    repositories.LikeRepository
	comments repositories.CommentRepository
	users    repositories.UserRepository
	notifier Notifier
	perPage  int
}

// NewContentService returns a new ContentService.
func NewContentService(
	posts repositories.PostRepository,
	likes repositories.LikeRepository,
	comments repositories.CommentRepository,
	users repositories.UserRepository,
	notifier Notifier,
	perPage int,
) *ContentService {
	return &ContentService{
		posts:    posts,
		likes:    likes,
		comments: comments,
		users:    users,
		notifier: notifier,
		perPage:  perPage,
	}
}

// CreatePost creates an original post, or a reply when ParentID is set.
func (s *ContentService) CreatePost(ctx context.Context, authorID uint, req models.CreatePostRequest) (*models.PostView, error) {
	content := strings.TrimSpace(req.Content)
	mediaURL := strings.TrimSpace(req.MediaURL)
	mediaType := strings.TrimSpace(req.MediaType)

	if content == "" && mediaURL == "" {
		return nil, models.NewValidationError("Content or media is required")
	}
	if utf8.RuneCountInString(content) > models.MaxContentLength {
		return nil, models.NewValidationError("Content too long (max 280 characters)")
	}
	if mediaURL == "" {
		mediaType = ""
	} else {
		if mediaType == "" {
			mediaType = models.MediaTypeImage
		}
		if mediaType != models.MediaTypeImage && mediaType != models.MediaTypeVideo {
			return nil, models.NewValidationError("media_type must be image or video")
		}
	}

	var parent *models.Post
	if req.ParentID != nil {
		p, err := s.posts.GetPostByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if p.IsRepost {
			return nil, models.NewValidationError("Cannot reply to a repost")
		}
		parent = p
	}

	post := &models.Post{
		UserID:    authorID,
		Content:   content,
		MediaURL:  mediaURL,
		MediaType: mediaType,
		ParentID:  req.ParentID,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	var notified uint
	if parent != nil {
		parentID := parent.ID
		s.notifier.Notify(ctx, authorID, parent.UserID, models.CommentPayload{PostID: post.ID, ParentPostID: &parentID}, "")
		notified = parent.UserID
	}
	s.notifyMentions(ctx, authorID, post.ID, content, notified)

	return s.posts.GetPostView(ctx, post.ID, authorID)
}

// notifyMentions notifies every distinct @username in content once, skipping the author and skip
func (s *ContentService) notifyMentions(ctx context.Context, authorID, postID uint, content string, skip uint) {
	names := ExtractMentions(content)
	if len(names) == 0 {
		return
	}
	users, err := s.users.GetUsersByUsernames(ctx, names)
	if err != nil {
		return
	}
	for _, u := range users {
		if u.ID == authorID || u.ID == skip {
			continue
		}
		s.notifier.Notify(ctx, authorID, u.ID, models.MentionPayload{PostID: postID}, "")
	}
}

// ExtractMentions returns the distinct lower-cased usernames mentioned in content
func ExtractMentions(content string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, m := range mentionPattern.FindAllStringSubmatch(content, -1) {
		name := strings.ToLower(m[1])
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// GetPost returns one annotated post.
func (s *ContentService) GetPost(ctx context.Context, viewerID, postID uint) (*models.PostView, error) {
	return s.posts.GetPostView(ctx, postID, viewerID)
}

// DeletePost deletes a post owned by actorID together with its reposts, likes and comments.
func (s *ContentService) DeletePost(ctx context.Context, actorID, postID uint) error {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != actorID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.posts.DeletePost(ctx, postID)
}

// LikePost adds the like edge and returns the fresh count.
func (s *ContentService) LikePost(ctx context.Context, actorID, postID uint) (*models.LikeResult, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.likes.CreateLike(ctx, &models.Like{PostID: postID, UserID: actorID}); err != nil {
		return nil, err
	}
	count, err := s.likes.GetLikesCountByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, actorID, post.UserID, models.LikePayload{PostID: postID, UserID: actorID}, "")
	return &models.LikeResult{PostID: postID, Liked: true, LikesCount: count}, nil
}

// UnlikePost removes the like edge and returns the fresh count.
func (s *ContentService) UnlikePost(ctx context.Context, actorID, postID uint) (*models.LikeResult, error) {
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}
	if err := s.likes.DeleteLike(ctx, postID, actorID); err != nil {
		return nil, err
	}
	count, err := s.likes.GetLikesCountByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &models.LikeResult{PostID: postID, Liked: false, LikesCount: count}, nil
}

// Repost creates actorID's repost of a post. Reposting a repost targets its original.
func (s *ContentService) Repost(ctx context.Context, actorID, postID uint) (*models.PostView, error) {
	original, err := s.resolveOriginal(ctx, postID)
	if err != nil {
		return nil, err
	}

	_, err = s.posts.GetRepost(ctx, actorID, original.ID)
	if err == nil {
		return nil, models.NewConflictError("post already reposted")
	}
	if !models.IsCode(err, models.CodeNotFound) {
		return nil, err
	}

	originalID := original.ID
	repost := &models.Post{
		UserID:         actorID,
		OriginalPostID: &originalID,
		IsRepost:       true,
	}
	if err := s.posts.CreatePost(ctx, repost); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, actorID, original.UserID, models.RepostPayload{PostID: repost.ID, OriginalPostID: originalID}, "")
	return s.posts.GetPostView(ctx, repost.ID, actorID)
}

// Unrepost removes actorID's repost of a post.
func (s *ContentService) Unrepost(ctx context.Context, actorID, postID uint) error {
	original, err := s.resolveOriginal(ctx, postID)
	if err != nil {
		return err
	}
	repost, err := s.posts.GetRepost(ctx, actorID, original.ID)
	if err != nil {
		return err
	}
	return s.posts.DeletePost(ctx, repost.ID)
}

func (s *ContentService) resolveOriginal(ctx context.Context, postID uint) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.IsRepost && post.OriginalPostID != nil {
		return s.posts.GetPostByID(ctx, *post.OriginalPostID)
	}
	return post, nil
}

// CreateComment adds a comment, optionally nested under another comment of the same post.
func (s *ContentService) CreateComment(ctx context.Context, authorID, postID uint, req models.CreateCommentRequest) (*models.CommentView, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > models.MaxContentLength {
		return nil, models.NewValidationError("Content too long (max 280 characters)")
	}

	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		parent, err := s.comments.GetCommentByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, models.NewValidationError("Parent comment belongs to another post")
		}
	}

	comment := &models.Comment{
		PostID:   postID,
		UserID:   authorID,
		ParentID: req.ParentID,
		Content:  content,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	commentID := comment.ID
	s.notifier.Notify(ctx, authorID, post.UserID, models.CommentPayload{PostID: postID, CommentID: &commentID}, "")
	return s.comments.GetCommentView(ctx, comment.ID)
}

// ListComments returns top-level comments of a post, newest first.
func (s *ContentService) ListComments(ctx context.Context, postID uint, page models.PageRequest) (*models.Page[models.CommentView], error) {
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}
	page = page.Normalize(s.perPage)
	items, total, err := s.comments.GetCommentsByPostID(ctx, postID, page)
	if err != nil {
		return nil, err
	}
	return &models.Page[models.CommentView]{Items: items, Pagination: models.NewPagination(page, total)}, nil
}

// ListReplies returns the direct replies to a comment, oldest first.
func (s *ContentService) ListReplies(ctx context.Context, commentID uint, page models.PageRequest) (*models.Page[models.CommentView], error) {
	if _, err := s.comments.GetCommentByID(ctx, commentID); err != nil {
		return nil, err
	}
	page = page.Normalize(s.perPage)
	items, total, err := s.comments.GetReplies(ctx, commentID, page)
	if err != nil {
		return nil, err
	}
	return &models.Page[models.CommentView]{Items: items, Pagination: models.NewPagination(page, total)}, nil
}

// DeleteComment deletes a comment owned by actorID and its replies.
func (s *ContentService) DeleteComment(ctx context.Context, actorID, commentID uint) error {
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != actorID {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	return s.comments.DeleteComment(ctx, commentID)
}
