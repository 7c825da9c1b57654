package controller

import (
	"flowcredits-be/internal/dto"
	"flowcredits-be/internal/pkg/serverutils"
	"flowcredits-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPolicyController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	GetPolicy(ctx *fiber.Ctx) error
	UpsertPolicy(ctx *fiber.Ctx) error
}

type policyController struct {
	service service.IPolicyService
}

func NewPolicyController(service service.IPolicyService) IPolicyController {
	return &policyController{service: service}
}

func (c *policyController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/policy")
	h.Get("/", auth, c.GetPolicy)
	h.Put("/", auth, c.UpsertPolicy)
}

func (c *policyController) GetPolicy(ctx *fiber.Ctx) error {
	tenantId, err := serverutils.TenantFromContext(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.GetPolicy(ctx.Context(), tenantId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Policy", res))
}

func (c *policyController) UpsertPolicy(ctx *fiber.Ctx) error {
	tenantId, err := serverutils.TenantFromContext(ctx)
	if err != nil {
		return err
	}
	var req dto.PolicyRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.UpsertPolicy(ctx.Context(), tenantId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Policy updated", res))
}
