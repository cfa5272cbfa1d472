package server

import (
	"strings"

	"incognitor/internal/content"
	"incognitor/internal/middleware"
	"incognitor/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListContents handles GET /api/contents?type=...&page=N
func (s *Server) ListContents(c *fiber.Ctx) error {
	kind, err := parseKind(c)
	if err != nil {
		return models.RespondError(c, err)
	}

	page := c.QueryInt("page", 1)
	data, meta, err := s.contentService.List(c.UserContext(), kind, page)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"data": data,
		"meta": meta,
	})
}

// GetContent handles GET /api/content/:slug?type=...
func (s *Server) GetContent(c *fiber.Ctx) error {
	kind, err := parseKind(c)
	if err != nil {
		return models.RespondError(c, err)
	}

	item, err := s.contentService.Get(c.UserContext(), kind, c.Params("slug"))
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"data": item})
}

// CreateContent handles POST /api/content (multipart)
func (s *Server) CreateContent(c *fiber.Ctx) error {
	kind, err := contentKindFromBody(c)
	if err != nil {
		return models.RespondError(c, err)
	}

	in, uploads := contentInput(c)
	item, err := s.contentService.Create(c.UserContext(), kind, middleware.UserID(c), in, uploads)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Content created successfully",
		"data":    item,
	})
}

// UpdateContent handles PATCH /api/content/:slug?type=... and the POST
// method-override form multipart clients send.
func (s *Server) UpdateContent(c *fiber.Ctx) error {
	kind, err := parseKind(c)
	if err != nil {
		kind, err = contentKindFromBody(c)
		if err != nil {
			return models.RespondError(c, err)
		}
	}

	in, uploads := contentInput(c)
	item, err := s.contentService.Update(c.UserContext(), kind, c.Params("slug"), in, uploads)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Content updated successfully",
		"data":    item,
	})
}

// DeleteContent handles DELETE /api/content/:slug?type=...
func (s *Server) DeleteContent(c *fiber.Ctx) error {
	kind, err := parseKind(c)
	if err != nil {
		return models.RespondError(c, err)
	}

	if err := s.contentService.Delete(c.UserContext(), kind, c.Params("slug"), middleware.UserID(c)); err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Content deleted successfully"})
}

// ListTags handles GET /api/tags
func (s *Server) ListTags(c *fiber.Ctx) error {
	tags, err := s.contentService.Tags(c.UserContext())
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"tags": tags})
}

// MyContent handles GET /api/me/posts?type=...
func (s *Server) MyContent(c *fiber.Ctx) error {
	kind, err := parseKind(c)
	if err != nil {
		return models.RespondError(c, err)
	}

	items, err := s.contentService.MyContent(c.UserContext(), kind, middleware.UserID(c))
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "List of your posts",
		"data":    items,
	})
}

// contentKindFromBody reads the type discriminator from the form or JSON
// body, falling back to the query string.
func contentKindFromBody(c *fiber.Ctx) (content.Kind, error) {
	if form, err := c.MultipartForm(); err == nil && form != nil {
		if t := formValue(form, "type"); t != "" {
			return content.ParseKind(t)
		}
	}
	var req struct {
		Type string `json:"type"`
	}
	if err := c.BodyParser(&req); err == nil && req.Type != "" {
		return content.ParseKind(req.Type)
	}
	if t := strings.TrimSpace(c.Query("type")); t != "" {
		return content.ParseKind(t)
	}
	return "", models.NewBadRequestError("Invalid content type")
}
