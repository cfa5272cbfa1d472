package server

import (
	"incognitor/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// FeatureFlags handles GET /api/me/flags. It reports the configured
// flags alongside their evaluated state for the authenticated user, so
// clients can tell which rollouts the user falls into.
func (s *Server) FeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(middleware.UserID(c)),
	})
}
