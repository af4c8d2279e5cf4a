package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User represents a registered account
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"size:30;not null;uniqueIndex"`
	Email       string    `json:"email,omitempty" gorm:"size:120;not null;uniqueIndex"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Password    string    `json:"-" gorm:"not null"` // bcrypt hash, never serialized
	Bio         string    `json:"bio" gorm:"size:160"`
	Location    string    `json:"location" gorm:"size:100"`
	Website     string    `json:"website" gorm:"size:200"`
	AvatarURL   string    `json:"avatar_url"`
	BannerURL   string    `json:"banner_url"`
	IsPrivate   bool      `json:"is_private" gorm:"default:false"`
	IsVerified  bool      `json:"is_verified" gorm:"default:false"`
	FirebaseUID *string   `json:"-" gorm:"uniqueIndex"` // Link to Firebase User UID, null for local accounts
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Public returns a copy safe to show to other users
func (u User) Public() User {
	u.Email = ""
	return u
}

// UserCompact is the author/actor shape embedded in posts, comments and notifications
type UserCompact struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	AvatarURL  string `json:"avatar_url"`
	IsVerified bool   `json:"is_verified"`
}

// ToCompact converts a user to its compact representation
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:         u.ID,
		Username:   u.Username,
		Name:       u.Name,
		AvatarURL:  u.AvatarURL,
		IsVerified: u.IsVerified,
	}
}

// Relationship describes how the viewing user relates to another user
type Relationship struct {
	IsFollowing  bool `json:"is_following"`
	IsFollowedBy bool `json:"is_followed_by"`
}

// UserSummary is a user row in lists (followers, search, suggestions)
type UserSummary struct {
	User
	Relationship
}

// UserProfile is a full profile with aggregate counts
type UserProfile struct {
	User
	Relationship
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
	PostsCount     int64 `json:"posts_count"`
}

// RegisterRequest defines the request body for local registration
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Username string `json:"username" validate:"required,min=3,max=30,username"`
	Password string `json:"password" validate:"required,password"`
}

// LoginRequest defines the request body for signing in
type LoginRequest struct {
	EmailOrUsername string `json:"email_or_username" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// FirebaseLoginRequest carries a Firebase ID token to exchange for local tokens
type FirebaseLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// ChangePasswordRequest defines the request body for changing the password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,password"`
}

// UpdateProfileRequest defines the request body for updating the own profile.
// Nil fields are left untouched.
type UpdateProfileRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Bio       *string `json:"bio,omitempty" validate:"omitempty,max=160"`
	Location  *string `json:"location,omitempty" validate:"omitempty,max=100"`
	Website   *string `json:"website,omitempty" validate:"omitempty,max=200"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	BannerURL *string `json:"banner_url,omitempty"`
	IsPrivate *bool   `json:"is_private,omitempty"`
}

// AuthResponse is returned by register, login and firebase-login
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Token types carried in the "typ" claim
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID    uint   `json:"user_id"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}
