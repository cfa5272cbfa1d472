package server

import (
	"incognitor/internal/content"
	"incognitor/internal/middleware"
	"incognitor/internal/models"
	"incognitor/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username             string `json:"username" form:"username"`
		Email                string `json:"email" form:"email"`
		Password             string `json:"password" form:"password"`
		PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondError(c, models.NewBadRequestError("Invalid request body"))
	}

	user, token, err := s.accountService.Register(c.UserContext(), service.RegisterInput{
		Username:             req.Username,
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
		"token":   token,
	})
}

// Login handles POST /api/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Identifier string `json:"identifier" form:"identifier"`
		Password   string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondError(c, models.NewBadRequestError("Invalid request body"))
	}

	user, token, err := s.accountService.Login(c.UserContext(), service.LoginInput{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "User Logged In Successfully",
		"token":   token,
		"user":    user,
	})
}

// Logout handles POST /api/logout. All of the user's tokens are revoked.
func (s *Server) Logout(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if err := s.accountService.Logout(c.UserContext(), userID); err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User logged out successfully"})
}

// Me handles GET /api/me
func (s *Server) Me(c *fiber.Ctx) error {
	user, err := s.accountService.Me(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "User profile retrieved successfully",
		"user":    user,
	})
}

// UpdateProfile handles POST /api/profile/update (multipart)
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	in := service.UpdateProfileInput{UserID: middleware.UserID(c)}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		in.Username = formValue(form, "username")
		in.Email = formValue(form, "email")
		if files := form.File["avatar"]; len(files) > 0 {
			in.Avatar = files[0]
		}
	} else {
		var req struct {
			Username string `json:"username"`
			Email    string `json:"email"`
		}
		if err := c.BodyParser(&req); err != nil {
			return models.RespondError(c, models.NewBadRequestError("Invalid request body"))
		}
		in.Username = req.Username
		in.Email = req.Email
	}

	user, err := s.accountService.UpdateProfile(c.UserContext(), in)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "User profile updated successfully",
		"user":    user,
	})
}

// ForgotPassword handles POST /api/forgot-password
func (s *Server) ForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Identifier string `json:"identifier" form:"identifier"`
		Email      string `json:"email" form:"email"`
		Password   string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondError(c, models.NewBadRequestError("Invalid request body"))
	}

	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Email
	}

	err := s.accountService.ForgotPassword(c.UserContext(), service.ForgotPasswordInput{
		Identifier: identifier,
		Password:   req.Password,
	})
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

// ListPeople handles GET /api/people?page=N
func (s *Server) ListPeople(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	users, meta, err := s.accountService.People(c.UserContext(), page)
	if err != nil {
		return models.RespondError(c, err)
	}

	data := make([]map[string]any, 0, len(users))
	for i := range users {
		data = append(data, content.MapUser(&users[i]))
	}

	return c.JSON(fiber.Map{
		"data": data,
		"meta": meta,
	})
}
