package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-analyzer/internal/middleware"
	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/services"
)

type UserHandler struct {
	auth services.AuthService
}

func NewUserHandler(auth services.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

// HandleRegister handles POST /users/register
func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	if _, err := h.auth.Register(c.UserContext(), req); err != nil {
		return err
	}
	return c.JSON(models.MessageResponse{Message: "User registered successfully."})
}

// HandleLogin handles POST /users/login
func (h *UserHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	token, err := h.auth.Login(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(token)
}

// HandleSecureData handles GET /secure-data. Requires middleware.RequireAuth.
func (h *UserHandler) HandleSecureData(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return fiber.ErrUnauthorized
	}
	return c.JSON(fiber.Map{
		"message": "This is secure data.",
		"user":    user.Username,
	})
}
