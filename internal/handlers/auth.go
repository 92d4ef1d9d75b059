package handlers

import (
	"errors"

	"payvault/internal/middleware"
	"payvault/internal/services/auth"
	"payvault/internal/services/user"
	"payvault/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService auth.Service
	userService user.Service
}

func NewAuthHandler(authService auth.Service, userService user.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Register creates a new account with its wallet.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	u, err := h.userService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			return utils.Conflict(c, err.Error())
		case errors.Is(err, user.ErrMissingFields), errors.Is(err, user.ErrWeakPassword):
			return utils.BadRequest(c, err.Error())
		}
		return utils.InternalError(c, "failed to register user")
	}

	return utils.Created(c, fiber.Map{
		"id":        u.ID,
		"name":      u.Name,
		"email":     u.Email,
		"wallet_id": u.WalletID,
	})
}

// Login authenticates a user and returns access and refresh tokens.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return utils.BadRequest(c, "email and password are required")
	}

	u, accessToken, refreshToken, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		return utils.Unauthorized(c, "invalid credentials")
	}

	return utils.Success(c, fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user": fiber.Map{
			"id":        u.ID,
			"name":      u.Name,
			"email":     u.Email,
			"role":      u.Role,
			"wallet_id": u.WalletID,
		},
	})
}

// Refresh exchanges a valid refresh token for a new token pair.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if req.RefreshToken == "" {
		return utils.BadRequest(c, "refresh_token is required")
	}

	accessToken, refreshToken, err := h.authService.RefreshTokens(req.RefreshToken)
	if err != nil {
		return utils.Unauthorized(c, "invalid refresh token")
	}

	return utils.Success(c, fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// Logout bumps the token version, revoking every outstanding token.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, ok := middleware.GetUserClaims(c)
	if !ok {
		return utils.Unauthorized(c, "authentication required")
	}

	if err := h.authService.Logout(claims.UserID); err != nil {
		return utils.InternalError(c, "failed to logout")
	}
	return utils.Success(c, fiber.Map{"message": "logged out"})
}

// ChangePassword updates the password and revokes existing tokens.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	claims, ok := middleware.GetUserClaims(c)
	if !ok {
		return utils.Unauthorized(c, "authentication required")
	}

	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	if err := h.authService.ChangePassword(claims.UserID, req.OldPassword, req.NewPassword); err != nil {
		return utils.BadRequest(c, err.Error())
	}
	return utils.Success(c, fiber.Map{"message": "password updated"})
}
