package controller

import (
	"strconv"

	"flowcredits-be/internal/dto"
	"flowcredits-be/internal/pkg/serverutils"
	"flowcredits-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICreditController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Quote(ctx *fiber.Ctx) error
	Purchase(ctx *fiber.Ctx) error
	Refund(ctx *fiber.Ctx) error
	Webhook(ctx *fiber.Ctx) error
	Reserve(ctx *fiber.Ctx) error
	Consume(ctx *fiber.Ctx) error
	Release(ctx *fiber.Ctx) error
	GetBalance(ctx *fiber.Ctx) error
	GetTransactions(ctx *fiber.Ctx) error
	Rebuild(ctx *fiber.Ctx) error
}

type creditController struct {
	purchaseService    service.IPurchaseService
	reservationService service.IReservationService
	balanceService     service.IBalanceService
}

func NewCreditController(
	purchaseService service.IPurchaseService,
	reservationService service.IReservationService,
	balanceService service.IBalanceService,
) ICreditController {
	return &creditController{
		purchaseService:    purchaseService,
		reservationService: reservationService,
		balanceService:     balanceService,
	}
}

func (c *creditController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/credits")
	h.Post("/midtrans/notification", c.Webhook)
	h.Get("/quote", c.Quote)

	// Protected Routes
	h.Post("/purchase", auth, c.Purchase)
	h.Post("/refund", auth, c.Refund)
	h.Post("/reserve", auth, c.Reserve)
	h.Post("/consume", auth, c.Consume)
	h.Post("/release", auth, c.Release)
	h.Get("/balance", auth, c.GetBalance)
	h.Get("/transactions", auth, c.GetTransactions)
	h.Post("/balance/rebuild", auth, c.Rebuild)
}

func (c *creditController) Quote(ctx *fiber.Ctx) error {
	quantity, err := strconv.ParseInt(ctx.Query("quantity"), 10, 64)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "quantity is required"))
	}
	res, err := c.purchaseService.GetQuote(ctx.Context(), quantity)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Quote", res))
}

func (c *creditController) Purchase(ctx *fiber.Ctx) error {
	tenantId, err := serverutils.TenantFromContext(ctx)
	if err != nil {
		return err
	}
	var req dto.PurchaseRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}
	res, err := c.purchaseService.PurchaseCredits(ctx.Context(), tenantId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Purchase opened", res))
}

func (c *creditController) Refund(ctx *fiber.Ctx) error {
	tenantId, err := serverutils.TenantFromContext(ctx)
	if err != nil {
		return err
	}
	var req dto.RefundRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}
	res, err := c.purchaseService.RefundPayment(ctx.Context(), tenantId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment refunded", res))
}

func (c *creditController) Webhook(ctx *fiber.Ctx) error {
	var req dto.MidtransWebhookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid payload"))
	}
	if err := c.purchaseService.HandleNotification(ctx.Context(), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("OK", nil))
}

func (c *creditController) Reserve(ctx *fiber.Ctx) error {
	tenantId, err := serverutils.TenantFromContext(ctx)
	if err != nil {
		return err
	}
	var req dto.ReserveRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}
	res, err := c.reservationService.Reserve(ctx.Context(), tenantId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Credits reserved", res))
}

func (c *creditController) Consume(ctx *fiber.Ctx) error {
	tenantId, err := serverutils.TenantFromContext(ctx)
	if err != nil {
		return err
	}
	var req dto.ConsumeRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}
	res, err := c.reservationService.Consume(ctx.Context(), tenantId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Reservation consumed", res))
}

func (c *creditController) Release(ctx *fiber.Ctx) error {
	tenantId, err := serverutils.TenantFromContext(ctx)
	if err != nil {
		return err
	}
	var req dto.ReleaseRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}
	res, err := c.reservationService.Release(ctx.Context(), tenantId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Reservation released", res))
}

func (c *creditController) GetBalance(ctx *fiber.Ctx) error {
	tenantId, err := serverutils.TenantFromContext(ctx)
	if err != nil {
		return err
	}
	res, err := c.balanceService.GetBalance(ctx.Context(), tenantId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Balance", res))
}

func (c *creditController) GetTransactions(ctx *fiber.Ctx) error {
	tenantId, err := serverutils.TenantFromContext(ctx)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(ctx.Query("limit", "50"))
	offset, _ := strconv.Atoi(ctx.Query("offset", "0"))
	res, err := c.balanceService.GetTransactions(ctx.Context(), tenantId, limit, offset)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Transactions", res))
}

func (c *creditController) Rebuild(ctx *fiber.Ctx) error {
	tenantId, err := serverutils.TenantFromContext(ctx)
	if err != nil {
		return err
	}
	res, err := c.balanceService.Rebuild(ctx.Context(), tenantId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Balance rebuilt", res))
}
