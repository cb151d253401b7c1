// Package http exposes the storefront engine over a Fiber REST API.
// Authentication is terminated upstream; the gateway forwards the actor
// identity in headers and this layer only translates it.
package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	appinventory "github.com/obrador/storefront/internal/application/inventory"
	appinvoice "github.com/obrador/storefront/internal/application/invoice"
	apporder "github.com/obrador/storefront/internal/application/order"
	apppayment "github.com/obrador/storefront/internal/application/payment"
	domactor "github.com/obrador/storefront/internal/domain/actor"
	dominv "github.com/obrador/storefront/internal/domain/inventory"
	domorder "github.com/obrador/storefront/internal/domain/order"
)

const (
	headerActorID   = "X-Actor-Id"
	headerActorRole = "X-Actor-Role"
)

type Handler struct {
	orders    *apporder.Service
	payments  *apppayment.Service
	invoices  *appinvoice.Service
	inventory *appinventory.Service
}

func NewHandler(orders *apporder.Service, payments *apppayment.Service, invoices *appinvoice.Service, inventory *appinventory.Service) *Handler {
	return &Handler{
		orders:    orders,
		payments:  payments,
		invoices:  invoices,
		inventory: inventory,
	}
}

func (h *Handler) Register(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	orders := v1.Group("/orders")
	orders.Post("/", h.createOrder)
	orders.Get("/:id", h.getOrder)
	orders.Post("/:id/payment", h.confirmPayment)
	orders.Post("/:id/status", h.updateStatus)
	orders.Post("/:id/invoice", h.generateInvoice)
	orders.Get("/:id/invoice", h.getInvoice)
	orders.Post("/:id/invoice/sent", h.markInvoiceSent)

	inventory := v1.Group("/inventory")
	inventory.Post("/movements", h.recordMovement)
	inventory.Get("/:productID/stock", h.stockOf)
	inventory.Get("/:productID/movements", h.listMovements)
}

// actorFrom translates the gateway identity headers. Requests without a role
// header are treated as customers, the least-privileged role.
func actorFrom(c *fiber.Ctx) domactor.Actor {
	role := domactor.Role(c.Get(headerActorRole))
	if role != domactor.RoleStaff {
		role = domactor.RoleCustomer
	}
	return domactor.Actor{ID: c.Get(headerActorID), Role: role}
}

func parseID(c *fiber.Ctx, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) createOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	result, err := h.orders.CreateOrder(c.UserContext(), req.toInput())
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(createOrderResponse{
		OrderID:        result.OrderID,
		Total:          result.Total,
		OfflinePayment: result.OfflinePayment,
	})
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}

	entity, err := h.orders.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(toOrderResponse(entity))
}

func (h *Handler) confirmPayment(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}
	var req paymentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	err := h.payments.ConfirmPayment(c.UserContext(), actorFrom(c), id, domorder.PaymentStatus(req.PaymentStatus))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"order_id": id, "payment_status": req.PaymentStatus})
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}
	var req orderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	err := h.orders.UpdateStatus(c.UserContext(), actorFrom(c), id, domorder.Status(req.Status))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"order_id": id, "status": req.Status})
}

func (h *Handler) generateInvoice(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}
	if !actorFrom(c).IsStaff() {
		return fail(c, domactor.ErrForbidden)
	}

	invoiceID, err := h.invoices.Generate(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"invoice_id": invoiceID, "order_id": id})
}

func (h *Handler) getInvoice(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}

	inv, err := h.invoices.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(toInvoiceResponse(inv))
}

func (h *Handler) markInvoiceSent(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}
	if !actorFrom(c).IsStaff() {
		return fail(c, domactor.ErrForbidden)
	}

	if err := h.invoices.MarkSent(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"order_id": id, "sent": true})
}

func (h *Handler) recordMovement(c *fiber.Ctx) error {
	var req recordMovementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	movementID, err := h.inventory.Record(c.UserContext(), actorFrom(c), appinventory.RecordInput{
		ProductID:   req.ProductID,
		Type:        dominv.MovementType(req.Type),
		Quantity:    req.Quantity,
		ReferenceID: req.ReferenceID,
		Notes:       req.Notes,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"movement_id": movementID})
}

func (h *Handler) stockOf(c *fiber.Ctx) error {
	productID, ok := parseID(c, "productID")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}

	stock, err := h.inventory.StockOf(c.UserContext(), productID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"product_id": productID, "stock": stock})
}

func (h *Handler) listMovements(c *fiber.Ctx) error {
	productID, ok := parseID(c, "productID")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}

	movements, err := h.inventory.Ledger(c.UserContext(), productID)
	if err != nil {
		return fail(c, err)
	}
	out := make([]movementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, toMovementResponse(m))
	}
	return c.JSON(out)
}
