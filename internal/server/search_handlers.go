package server

import (
	"incognitor/internal/middleware"
	"incognitor/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Search handles GET /api/content/search?q=...
func (s *Server) Search(c *fiber.Ctx) error {
	results, err := s.searchService.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(results)
}

// MyPostsSummary handles GET /api/me/posts/summary
func (s *Server) MyPostsSummary(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if !s.featureFlags.Enabled("post_summary", userID) {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewValidationError("Summaries are currently disabled"))
	}

	summary, err := s.summaryService.MyPostsSummary(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"data": summary})
}
