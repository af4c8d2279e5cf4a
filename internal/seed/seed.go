// Package seed fills a database with demo users, follows, posts and interactions.
// Everything goes through the services so counts, uniqueness and notifications
// look exactly like real traffic.
package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/anonto42/aray/backend/internal/models"
	"github.com/anonto42/aray/backend/internal/service"
	"github.com/brianvoe/gofakeit/v6"
)

// DemoPassword is the password of every seeded account
const DemoPassword = "Passw0rd"

// Options controls how much data is generated
type Options struct {
	Users          int
	PostsPerUser   int
	FollowsPerUser int
	LikesPerPost   int
	CommentsRatio  float64 // chance that a post gets a comment
	RepliesRatio   float64 // chance that a new post replies to an earlier one
	Seed           int64
}

// DefaultOptions is a small but well connected network
func DefaultOptions() Options {
	return Options{
		Users:          25,
		PostsPerUser:   6,
		FollowsPerUser: 8,
		LikesPerPost:   3,
		CommentsRatio:  0.3,
		RepliesRatio:   0.2,
		Seed:           42,
	}
}

// Result summarizes what was created
type Result struct {
	Users    []models.User
	Posts    int
	Follows  int
	Likes    int
	Reposts  int
	Comments int
}

// Seeder generates data through the services
type Seeder struct {
	users   *service.UserService
	graph   *service.GraphService
	content *service.ContentService
	faker   *gofakeit.Faker
}

// NewSeeder creates a Seeder
func NewSeeder(users *service.UserService, graph *service.GraphService, content *service.ContentService) *Seeder {
	return &Seeder{users: users, graph: graph, content: content}
}

// Run creates the requested data
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	s.faker = gofakeit.New(opts.Seed)
	res := &Result{}

	for i := 0; i < opts.Users; i++ {
		user, err := s.createUser(ctx, i)
		if err != nil {
			return nil, err
		}
		res.Users = append(res.Users, *user)
	}
	if len(res.Users) == 0 {
		return res, nil
	}

	if err := s.follow(ctx, res, opts.FollowsPerUser); err != nil {
		return nil, err
	}

	var postIDs []uint
	for round := 0; round < opts.PostsPerUser; round++ {
		for _, author := range res.Users {
			req := models.CreatePostRequest{Content: s.postContent(res.Users, author.ID)}
			if len(postIDs) > 0 && s.faker.Float64() < opts.RepliesRatio {
				parent := postIDs[s.faker.Number(0, len(postIDs)-1)]
				req.ParentID = &parent
			}
			post, err := s.content.CreatePost(ctx, author.ID, req)
			if err != nil {
				return nil, fmt.Errorf("create post: %w", err)
			}
			postIDs = append(postIDs, post.ID)
			res.Posts++
		}
	}

	for _, postID := range postIDs {
		if err := s.interact(ctx, res, postID, opts); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (s *Seeder) createUser(ctx context.Context, i int) (*models.User, error) {
	person := s.faker.Person()
	resp, err := s.users.Register(ctx, models.RegisterRequest{
		Name:     person.FirstName + " " + person.LastName,
		Email:    fmt.Sprintf("user%d@%s", i, s.faker.DomainName()),
		Username: username(s.faker.Username(), i),
		Password: DemoPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("register user %d: %w", i, err)
	}

	bio := s.faker.HipsterSentence(8)
	location := s.faker.City()
	profile, err := s.users.UpdateProfile(ctx, resp.User.ID, models.UpdateProfileRequest{
		Bio:      &bio,
		Location: &location,
	})
	if err != nil {
		return nil, fmt.Errorf("update profile %d: %w", i, err)
	}
	return &profile.User, nil
}

func (s *Seeder) follow(ctx context.Context, res *Result, perUser int) error {
	for _, follower := range res.Users {
		for j := 0; j < perUser; j++ {
			target := res.Users[s.faker.Number(0, len(res.Users)-1)]
			err := s.graph.Follow(ctx, follower.ID, target.ID)
			switch {
			case err == nil:
				res.Follows++
			case models.IsCode(err, models.CodeAlreadyExists), models.IsCode(err, models.CodeInvalidOperation):
			default:
				return fmt.Errorf("follow: %w", err)
			}
		}
	}
	return nil
}

func (s *Seeder) interact(ctx context.Context, res *Result, postID uint, opts Options) error {
	for j := 0; j < opts.LikesPerPost; j++ {
		liker := res.Users[s.faker.Number(0, len(res.Users)-1)]
		_, err := s.content.LikePost(ctx, liker.ID, postID)
		switch {
		case err == nil:
			res.Likes++
		case models.IsCode(err, models.CodeConflict):
		default:
			return fmt.Errorf("like: %w", err)
		}
	}

	if s.faker.Float64() < opts.CommentsRatio {
		commenter := res.Users[s.faker.Number(0, len(res.Users)-1)]
		if _, err := s.content.CreateComment(ctx, commenter.ID, postID, models.CreateCommentRequest{
			Content: s.faker.Sentence(8),
		}); err != nil {
			return fmt.Errorf("comment: %w", err)
		}
		res.Comments++
	}

	if s.faker.Float64() < opts.CommentsRatio/2 {
		reposter := res.Users[s.faker.Number(0, len(res.Users)-1)]
		_, err := s.content.Repost(ctx, reposter.ID, postID)
		switch {
		case err == nil:
			res.Reposts++
		case models.IsCode(err, models.CodeConflict):
		default:
			return fmt.Errorf("repost: %w", err)
		}
	}
	return nil
}

// postContent is a short sentence that sometimes mentions another user
func (s *Seeder) postContent(users []models.User, authorID uint) string {
	content := s.faker.Sentence(s.faker.Number(4, 16))
	if len(users) > 1 && s.faker.Number(0, 4) == 0 {
		other := users[s.faker.Number(0, len(users)-1)]
		if other.ID != authorID {
			content += " @" + other.Username
		}
	}
	if r := []rune(content); len(r) > models.MaxContentLength {
		content = string(r[:models.MaxContentLength])
	}
	return content
}

// username keeps the allowed characters of raw and appends i so names are unique
func username(raw string, i int) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	base := b.String()
	if len(base) > 20 {
		base = base[:20]
	}
	if base == "" {
		base = "user"
	}
	return fmt.Sprintf("%s_%d", base, i)
}
