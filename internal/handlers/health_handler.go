package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	ping func(ctx context.Context) error
}

func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

// HandleHealth handles GET /health
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"error":  err.Error(),
				"time":   time.Now(),
			})
		}
	}
	return c.JSON(fiber.Map{
		"status": "healthy",
		"time":   time.Now(),
	})
}

// HandleRoot handles GET /
func (h *HealthHandler) HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Resume Analyzer API",
		"version": "1.0.0",
		"endpoints": []string{
			"POST /analyze_resume/",
			"GET /resumes/:filename",
			"GET /analyses/:id",
			"POST /analyses/search",
			"POST /users/register",
			"POST /users/login",
			"POST /subscriptions/subscribe/:user_id",
			"GET /subscriptions/status/:user_id",
			"POST /reports/generate/:user_id",
			"GET /reports/download/:user_id",
			"GET /secure-data",
		},
	})
}
