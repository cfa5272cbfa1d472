package server

import (
	"incognitor/internal/middleware"
	"incognitor/internal/models"
	"incognitor/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AddComment handles POST /api/posts/:post/comments
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "post")
	if err != nil {
		return models.RespondError(c, err)
	}

	var req struct {
		Content string `json:"content" form:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondError(c, models.NewBadRequestError("Invalid request body"))
	}

	comment, err := s.commentService.AddComment(c.UserContext(), service.AddCommentInput{
		PostID:  postID,
		UserID:  middleware.UserID(c),
		Content: req.Content,
	})
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Comment added successfully",
		"comment": comment,
	})
}
