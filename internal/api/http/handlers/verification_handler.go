package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/travel-community/internal/api/dto"
	"github.com/spec-kit/travel-community/internal/service"
	apperrors "github.com/spec-kit/travel-community/pkg/util/errorutil"
)

// VerificationHandler exposes the user side of verification.
type VerificationHandler struct {
	verification *service.VerificationService
	sessions     *service.ProviderSessionService
	validate     *dto.Validator
}

// NewVerificationHandler constructs handler.
func NewVerificationHandler(verification *service.VerificationService, sessions *service.ProviderSessionService, validate *dto.Validator) *VerificationHandler {
	return &VerificationHandler{verification: verification, sessions: sessions, validate: validate}
}

// Submit POST /verification-requests.
func (h *VerificationHandler) Submit(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.SubmitVerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	created, err := h.verification.SubmitRequest(c.UserContext(), principal.User.ID, req.VerificationType, req.AdditionalInfo)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewVerificationRequestResponse(created)})
}

// List GET /verification-requests.
func (h *VerificationHandler) List(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	requests, err := h.verification.ListRequests(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewVerificationRequestList(requests)})
}

// Status GET /verification/status.
func (h *VerificationHandler) Status(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	view, err := h.verification.Status(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStatusResponse(view)})
}

// StartSession POST /verification/sessions.
func (h *VerificationHandler) StartSession(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.StartSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	session, err := h.sessions.StartSession(c.UserContext(), principal.User.ID, req.VerificationType)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewSessionResponse(session)})
}

// ListSessions GET /verification/sessions.
func (h *VerificationHandler) ListSessions(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	sessions, err := h.sessions.ListSessions(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	items := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		items = append(items, dto.NewSessionResponse(&sessions[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
