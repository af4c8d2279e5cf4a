package handlers

import (
	"net/http"

	"github.com/anonto42/aray/backend/internal/models"
	"github.com/anonto42/aray/backend/internal/service"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	users *service.UserService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(users *service.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, guards Guards) {
	g.POST("/register", h.Register, guards.Limit)
	g.POST("/login", h.Login, guards.Limit)
	g.POST("/refresh", h.Refresh)
	if h.users.FirebaseEnabled() {
		g.POST("/firebase-login", h.FirebaseLogin, guards.Limit)
	}
	g.GET("/me", h.Me, guards.Required)
	g.POST("/change-password", h.ChangePassword, guards.Required, guards.Limit)
}

// Register handles local user registration
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.users.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login authenticates by email or username and password
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.users.Authenticate(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh exchanges a refresh token for a new access token
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req models.RefreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	access, err := h.users.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"access_token": access})
}

// FirebaseLogin verifies a Firebase ID token and signs the linked user in
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.users.FirebaseLogin(c.Request().Context(), req.IDToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Me returns the profile of the authenticated user
func (h *AuthHandler) Me(c echo.Context) error {
	profile, err := h.users.Me(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// ChangePassword replaces the password after checking the current one
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req models.ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.users.ChangePassword(c.Request().Context(), getUserIDFromContext(c), req); err != nil {
		return err
	}
	return message(c, http.StatusOK, "Password updated successfully")
}
