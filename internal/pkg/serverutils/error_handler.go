package serverutils

import (
	"errors"

	"flowcredits-be/internal/apperrors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps domain errors bubbling out of handlers to HTTP
// statuses so services stay transport-agnostic.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := fiber.StatusInternalServerError
		switch {
		case errors.Is(err, apperrors.ErrInsufficientCredits):
			status = fiber.StatusPaymentRequired
		case errors.Is(err, apperrors.ErrInvalidQuantity),
			errors.Is(err, apperrors.ErrInvalidCurrency),
			errors.Is(err, apperrors.ErrInvalidState):
			status = fiber.StatusBadRequest
		case errors.Is(err, apperrors.ErrTokenNotFound),
			errors.Is(err, apperrors.ErrPaymentNotFound),
			errors.Is(err, apperrors.ErrPolicyNotFound):
			status = fiber.StatusNotFound
		case errors.Is(err, apperrors.ErrBusy):
			status = fiber.StatusConflict
		case errors.Is(err, apperrors.ErrPaymentFailed):
			status = fiber.StatusUnprocessableEntity
		case errors.Is(err, apperrors.ErrDataIntegrity):
			status = fiber.StatusInternalServerError
		default:
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			}
		}

		return ctx.Status(status).JSON(ErrorResponse(status, err.Error()))
	}
}
