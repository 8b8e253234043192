package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/travel-community/internal/idprovider"
	"github.com/spec-kit/travel-community/internal/service"
)

// WebhookHandler receives identity provider notifications.
type WebhookHandler struct {
	webhooks *service.WebhookService
}

// NewWebhookHandler constructs handler.
func NewWebhookHandler(webhooks *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks}
}

// Provider POST /webhooks/provider. The signature covers the raw body, so it is
// read before any parsing.
func (h *WebhookHandler) Provider(c *fiber.Ctx) error {
	body := append([]byte(nil), c.Body()...)
	result, err := h.webhooks.HandleDelivery(c.UserContext(), body, c.Get(idprovider.SignatureHeader))
	if err != nil {
		return err
	}
	response := fiber.Map{"received": true}
	if result.Duplicate {
		response["duplicate"] = true
	}
	return c.JSON(response)
}
