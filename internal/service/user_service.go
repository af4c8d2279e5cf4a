package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/aray/backend/internal/models"
	"github.com/anonto42/aray/backend/internal/repositories"
	"github.com/anonto42/aray/backend/validators"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// maxNameLength bounds display names in characters
const maxNameLength = 100

// IDTokenVerifier verifies Firebase ID tokens; *auth.Client satisfies it
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// UserService owns accounts, credentials and profiles.
type UserService struct {
	users    repositories.UserRepository
	follows  repositories.FollowRepository
	posts    repositories.PostRepository
	tokens   *TokenIssuer
	firebase IDTokenVerifier
}

// NewUserService returns a new UserService. firebase may be nil.
func NewUserService(
	users repositories.UserRepository,
	follows repositories.FollowRepository,
	posts repositories.PostRepository,
	tokens *TokenIssuer,
	firebase IDTokenVerifier,
) *UserService {
	return &UserService{
		users:    users,
		follows:  follows,
		posts:    posts,
		tokens:   tokens,
		firebase: firebase,
	}
}

// FirebaseEnabled reports whether federated login is configured
func (s *UserService) FirebaseEnabled() bool {
	return s.firebase != nil
}

// Register creates a local account and signs the user in.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)

	switch {
	case len(username) < 3 || len(username) > 30 || !validators.IsValidUsername(username):
		return nil, models.NewValidationError("Username must be 3-30 letters, numbers or underscores")
	case len(email) > 120 || !validators.IsValidEmail(email):
		return nil, models.NewValidationError("A valid email is required")
	case name == "" || utf8.RuneCountInString(name) > maxNameLength:
		return nil, models.NewValidationError("Name must be 1-100 characters")
	case !validators.IsStrongPassword(req.Password):
		return nil, models.NewValidationError("Password must be at least 8 characters with upper case, lower case and a digit")
	}

	taken, err := s.users.UsernameOrEmailTaken(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewConflictError("username or email already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: username,
		Email:    email,
		Name:     name,
		Password: string(hashed),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Authenticate signs a user in by email or username.
func (s *UserService) Authenticate(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetUserByEmailOrUsername(ctx, req.EmailOrUsername)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthorizedError("Invalid credentials")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return s.issue(user)
}

// Refresh exchanges a refresh token for a new access token.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Parse(refreshToken, models.TokenTypeRefresh)
	if err != nil {
		return "", err
	}
	if _, err := s.users.GetUserByID(ctx, claims.UserID); err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return "", models.NewUnauthorizedError("Invalid token")
		}
		return "", err
	}
	return s.tokens.IssueAccess(claims.UserID)
}

func (s *UserService) issue(user *models.User) (*models.AuthResponse, error) {
	access, refresh, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// Me returns the acting user's own profile.
func (s *UserService) Me(ctx context.Context, actorID uint) (*models.UserProfile, error) {
	user, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, actorID, user)
}

// GetProfile returns a profile with counts and the viewer relationship.
func (s *UserService) GetProfile(ctx context.Context, viewerID, userID uint) (*models.UserProfile, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, viewerID, user)
}

// GetProfileByUsername is GetProfile keyed by username.
func (s *UserService) GetProfileByUsername(ctx context.Context, viewerID uint, username string) (*models.UserProfile, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, viewerID, user)
}

func (s *UserService) profile(ctx context.Context, viewerID uint, user *models.User) (*models.UserProfile, error) {
	p := &models.UserProfile{User: *user}
	if viewerID != user.ID {
		p.User = user.Public()
	}

	var err error
	if p.FollowersCount, err = s.follows.GetFollowersCount(ctx, user.ID); err != nil {
		return nil, err
	}
	if p.FollowingCount, err = s.follows.GetFollowingCount(ctx, user.ID); err != nil {
		return nil, err
	}
	if p.PostsCount, err = s.posts.CountByUser(ctx, user.ID); err != nil {
		return nil, err
	}
	if viewerID != 0 && viewerID != user.ID {
		if p.IsFollowing, err = s.follows.IsFollowing(ctx, viewerID, user.ID); err != nil {
			return nil, err
		}
		if p.IsFollowedBy, err = s.follows.IsFollowing(ctx, user.ID, viewerID); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// UpdateProfile applies the non-nil fields of req to the acting user.
func (s *UserService) UpdateProfile(ctx context.Context, actorID uint, req models.UpdateProfileRequest) (*models.UserProfile, error) {
	user, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || utf8.RuneCountInString(name) > maxNameLength {
			return nil, models.NewValidationError("Name must be 1-100 characters")
		}
		user.Name = name
	}
	limits := []struct {
		value *string
		dst   *string
		max   int
		field string
	}{
		{req.Bio, &user.Bio, 160, "Bio"},
		{req.Location, &user.Location, 100, "Location"},
		{req.Website, &user.Website, 200, "Website"},
		{req.AvatarURL, &user.AvatarURL, 500, "Avatar URL"},
		{req.BannerURL, &user.BannerURL, 500, "Banner URL"},
	}
	for _, l := range limits {
		if l.value == nil {
			continue
		}
		v := strings.TrimSpace(*l.value)
		if utf8.RuneCountInString(v) > l.max {
			return nil, models.NewValidationError(fmt.Sprintf("%s must be at most %d characters", l.field, l.max))
		}
		*l.dst = v
	}
	if req.IsPrivate != nil {
		user.IsPrivate = *req.IsPrivate
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return s.profile(ctx, actorID, user)
}

// ChangePassword replaces the password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, actorID uint, req models.ChangePasswordRequest) error {
	user, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return models.NewUnauthorizedError("Current password is incorrect")
	}
	if !validators.IsStrongPassword(req.NewPassword) {
		return models.NewValidationError("Password must be at least 8 characters with upper case, lower case and a digit")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	return s.users.UpdateUser(ctx, user)
}

// FirebaseLogin verifies a Firebase ID token, links or creates the matching user
// and issues local tokens.
func (s *UserService) FirebaseLogin(ctx context.Context, idToken string) (*models.AuthResponse, error) {
	if s.firebase == nil {
		return nil, models.NewInvalidOperationError("Firebase login is not configured")
	}
	token, err := s.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid Firebase ID token")
	}
	email, _ := token.Claims["email"].(string)
	email = strings.ToLower(strings.TrimSpace(email))
	verified, _ := token.Claims["email_verified"].(bool)
	name, _ := token.Claims["name"].(string)
	name = truncateRunes(strings.TrimSpace(name), maxNameLength)

	user, err := s.users.GetUserByFirebaseUID(ctx, token.UID)
	switch {
	case err == nil:
		return s.issue(user)
	case !models.IsCode(err, models.CodeNotFound):
		return nil, err
	}

	if email == "" {
		return nil, models.NewValidationError("Firebase account has no email")
	}
	// linking or creating by email needs a verified address
	if !verified {
		return nil, models.NewUnauthorizedError("Firebase email is not verified")
	}
	uid := token.UID

	// link an existing local account by email
	user, err = s.users.GetUserByEmail(ctx, email)
	if err == nil {
		user.FirebaseUID = &uid
		if err := s.users.UpdateUser(ctx, user); err != nil {
			return nil, err
		}
		return s.issue(user)
	}
	if !models.IsCode(err, models.CodeNotFound) {
		return nil, err
	}

	username, err := s.freeUsername(ctx, email)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = username
	}
	// local password login stays impossible until the user sets one
	hashed, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user = &models.User{
		Username:    username,
		Email:       email,
		Name:        name,
		Password:    string(hashed),
		FirebaseUID: &uid,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// freeUsername derives an unused username from the local part of an email
func (s *UserService) freeUsername(ctx context.Context, email string) (string, error) {
	local := email
	if i := strings.IndexByte(email, '@'); i >= 0 {
		local = email[:i]
	}
	var b strings.Builder
	for _, r := range strings.ToLower(local) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	base := b.String()
	if len(base) < 3 {
		base = "user_" + base
	}
	if len(base) > 24 {
		base = base[:24]
	}

	candidate := base
	for i := 1; i <= 50; i++ {
		if _, err := s.users.GetUserByUsername(ctx, candidate); err != nil {
			if models.IsCode(err, models.CodeNotFound) {
				return candidate, nil
			}
			return "", err
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	return base + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:5], nil
}
