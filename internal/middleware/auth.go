// Package middleware provides authentication, logging and rate limiting
// middleware for the application.
package middleware

import (
	"context"
	"strings"

	"incognitor/internal/auth"
	"incognitor/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired enforces bearer token authentication for protected routes.
// On success the authenticated user's ID is stored in c.Locals("userID").
func AuthRequired(tokens repository.TokenRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		token, err := auth.Verify(c.UserContext(), tokens, parts[1])
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "An error occurred",
			})
		}
		if token == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or revoked token",
			})
		}

		// Best-effort; auth does not depend on the timestamp update.
		_ = tokens.TouchLastUsed(c.UserContext(), token.ID)

		c.Locals("userID", token.UserID)
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, token.UserID))
		return c.Next()
	}
}

// UserID returns the authenticated user's ID from the request, or 0 when
// the route is unauthenticated.
func UserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	return 0
}
