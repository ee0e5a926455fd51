package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-analyzer/internal/services"
)

type SubscriptionHandler struct {
	subscriptions services.SubscriptionService
}

func NewSubscriptionHandler(subscriptions services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// HandleSubscribe handles POST /subscriptions/subscribe/:user_id
func (h *SubscriptionHandler) HandleSubscribe(c *fiber.Ctx) error {
	userID, err := paramID(c, "user_id")
	if err != nil {
		return err
	}

	msg, err := h.subscriptions.Subscribe(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(msg)
}

// HandleStatus handles GET /subscriptions/status/:user_id
func (h *SubscriptionHandler) HandleStatus(c *fiber.Ctx) error {
	userID, err := paramID(c, "user_id")
	if err != nil {
		return err
	}

	status, err := h.subscriptions.Status(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(status)
}
