package serverutils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// TenantFromContext reads the tenant identity stashed by JwtMiddleware.
func TenantFromContext(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := ctx.Locals("tenant_id").(string)
	if !ok {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "missing tenant identity")
	}
	tenantId, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "invalid tenant identity")
	}
	return tenantId, nil
}
