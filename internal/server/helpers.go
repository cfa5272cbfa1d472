package server

import (
	"mime/multipart"

	"incognitor/internal/content"
	"incognitor/internal/models"

	"github.com/gofiber/fiber/v2"
)

// parseKind reads and validates the ?type= discriminator.
func parseKind(c *fiber.Ctx) (content.Kind, error) {
	return content.ParseKind(c.Query("type"))
}

// parseID extracts a route parameter by name as a positive uint.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, models.NewBadRequestError("Invalid " + param + " ID")
	}
	return uint(id), nil
}

// contentInput reads the writable content fields from either a multipart
// form or a JSON body, plus any uploaded thumbnail files.
func contentInput(c *fiber.Ctx) (content.Input, []*multipart.FileHeader) {
	var uploads []*multipart.FileHeader

	if form, err := c.MultipartForm(); err == nil && form != nil {
		in := content.Input{
			Title:    formValue(form, "title"),
			Content:  formValue(form, "content"),
			Tags:     formValue(form, "tags"),
			From:     formValue(form, "from"),
			To:       formValue(form, "to"),
			Location: formValue(form, "location"),
		}
		uploads = append(uploads, form.File["thumbnail[]"]...)
		uploads = append(uploads, form.File["thumbnail"]...)
		return in, uploads
	}

	var req struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		Tags     string `json:"tags"`
		From     string `json:"from"`
		To       string `json:"to"`
		Location string `json:"location"`
	}
	if err := c.BodyParser(&req); err != nil {
		return content.Input{}, nil
	}
	return content.Input{
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
		From:     req.From,
		To:       req.To,
		Location: req.Location,
	}, nil
}

func formValue(form *multipart.Form, key string) string {
	if vals := form.Value[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}
