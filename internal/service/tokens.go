package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/aray/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
)

// TokenIssuer signs and verifies the HS256 access and refresh tokens
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenIssuer creates a TokenIssuer
func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssuePair returns a fresh access and refresh token for userID
func (t *TokenIssuer) IssuePair(userID uint) (access, refresh string, err error) {
	access, err = t.sign(userID, models.TokenTypeAccess, t.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = t.sign(userID, models.TokenTypeRefresh, t.refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// IssueAccess returns a fresh access token for userID
func (t *TokenIssuer) IssueAccess(userID uint) (string, error) {
	return t.sign(userID, models.TokenTypeAccess, t.accessTTL)
}

func (t *TokenIssuer) sign(userID uint, tokenType string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := &models.JwtCustomClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(userID),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse verifies tokenString and checks that it is of the expected type
func (t *TokenIssuer) Parse(tokenString, expectedType string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.NewUnauthorizedError("Token expired")
		}
		return nil, models.NewUnauthorizedError("Invalid token")
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, models.NewUnauthorizedError("Invalid token")
	}
	if claims.TokenType != expectedType {
		return nil, models.NewUnauthorizedError("Invalid token type")
	}
	return claims, nil
}
