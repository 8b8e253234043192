package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/travel-community/internal/auth"
	apperrors "github.com/spec-kit/travel-community/pkg/util/errorutil"
)

// respondWithOutcome writes data on success. A PARTIAL_FAILURE is rendered as
// 207 carrying both the data and the error so the caller sees what was applied.
// Any other error is returned to the error middleware.
func respondWithOutcome(c *fiber.Ctx, data any, err error) error {
	if err == nil {
		return c.JSON(fiber.Map{"data": data})
	}
	if !apperrors.HasCode(err, apperrors.CodePartialFailure) {
		return err
	}
	domainErr := apperrors.ToDomainError(err)
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{
		"data": data,
		"error": fiber.Map{
			"code":    domainErr.Code,
			"message": domainErr.Message,
			"details": domainErr.Details,
		},
	})
}

func currentPrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("user required")
	}
	return principal, nil
}
