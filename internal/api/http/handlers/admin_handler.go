package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/travel-community/internal/api/dto"
	"github.com/spec-kit/travel-community/internal/service"
	apperrors "github.com/spec-kit/travel-community/pkg/util/errorutil"
)

// AdminHandler exposes the admin review surface.
type AdminHandler struct {
	admin        *service.AdminService
	verification *service.VerificationService
	validate     *dto.Validator
}

// NewAdminHandler constructs handler.
func NewAdminHandler(admin *service.AdminService, verification *service.VerificationService, validate *dto.Validator) *AdminHandler {
	return &AdminHandler{admin: admin, verification: verification, validate: validate}
}

// ListRequests GET /admin/verification-requests?status=&type=&search=.
func (h *AdminHandler) ListRequests(c *fiber.Ctx) error {
	views, err := h.admin.ListRequests(c.UserContext(), service.RequestListFilter{
		Status: c.Query("status"),
		Type:   c.Query("type"),
		Search: c.Query("search"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAdminVerificationRequestList(views)})
}

// Approve POST /admin/verification-requests/:id/approve.
func (h *AdminHandler) Approve(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ApproveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	result, err := h.verification.Approve(c.UserContext(), service.ApproveInput{
		RequestID: c.Params("id"),
		UserID:    req.UserID,
		Type:      req.VerificationType,
		AdminID:   principal.User.ID,
	})
	if result == nil {
		return err
	}
	return respondWithOutcome(c, dto.NewApprovalResponse(result), err)
}

// Reject POST /admin/verification-requests/:id/reject.
func (h *AdminHandler) Reject(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	req, err := h.verification.Reject(c.UserContext(), c.Params("id"), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewVerificationRequestResponse(req)})
}

// IssueLink POST /admin/verification-requests/:id/link.
func (h *AdminHandler) IssueLink(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.IssueLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	result, err := h.verification.IssueVerificationLink(c.UserContext(), c.Params("id"), req.UserID, req.Link, principal.User.ID)
	if result == nil {
		return err
	}
	return respondWithOutcome(c, dto.NewLinkResponse(result), err)
}

// ListUsers GET /admin/users?search=.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.admin.ListUsers(c.UserContext(), c.Query("search"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserList(users)})
}

// Block POST /admin/users/:id/block.
func (h *AdminHandler) Block(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.admin.Block(c.UserContext(), c.Params("id"), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user, user.IsAdmin)})
}

// Unblock POST /admin/users/:id/unblock.
func (h *AdminHandler) Unblock(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.admin.Unblock(c.UserContext(), c.Params("id"), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user, user.IsAdmin)})
}

// Verify POST /admin/users/:id/verify.
func (h *AdminHandler) Verify(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.admin.VerifyUser(c.UserContext(), c.Params("id"), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user, user.IsAdmin)})
}
