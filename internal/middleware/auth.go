package middleware

import (
	"strings"

	"payvault/internal/models"
	"payvault/internal/services/auth"
	"payvault/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates the Bearer token and stores the claims in the
// request context. Tokens issued before the user's current token version
// are rejected.
func AuthMiddleware(authService auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return utils.Unauthorized(c, "missing authorization header")
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			return utils.Unauthorized(c, "invalid authorization header format")
		}

		claims, err := utils.ParseToken(tokenStr)
		if err != nil {
			return utils.Unauthorized(c, "invalid or expired token")
		}

		currentVersion, err := authService.GetUserTokenVersion(claims.UserID)
		if err != nil {
			return utils.Unauthorized(c, "user not found")
		}
		if claims.TokenVersion != currentVersion {
			return utils.Unauthorized(c, "token has been revoked")
		}

		c.Locals("claims", claims)
		c.Locals("user_id", claims.UserID)
		return c.Next()
	}
}

// AdminAuthMiddleware requires the authenticated user to hold the admin role.
// It must run after AuthMiddleware.
func AdminAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*models.UserClaims)
		if !ok {
			return utils.Unauthorized(c, "authentication required")
		}
		if claims.Role != "admin" {
			return utils.Forbidden(c, "admin access required")
		}
		return c.Next()
	}
}

// HasPermission requires the authenticated user to hold a specific permission.
// It must run after AuthMiddleware.
func HasPermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*models.UserClaims)
		if !ok {
			return utils.Unauthorized(c, "authentication required")
		}
		if !claims.HasPermission(permission) {
			return utils.Forbidden(c, "insufficient permissions")
		}
		return c.Next()
	}
}

// GetUserClaims extracts the authenticated claims from the request context.
func GetUserClaims(c *fiber.Ctx) (*models.UserClaims, bool) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	return claims, ok
}
