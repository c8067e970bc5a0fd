package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ksilverstone/b2b/internal/application/dto"
	"github.com/ksilverstone/b2b/internal/application/order"
	"github.com/ksilverstone/b2b/internal/domain"
)

// OrderHandler maneja las peticiones HTTP de gestión de pedidos.
type OrderHandler struct {
	uc *order.UseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *order.UseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// My pedidos colocados por la empresa del usuario (lado comprador).
// GET /api/orders/my
func (h *OrderHandler) My(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "query inválida"})
	}
	orders, err := h.uc.MyOrders(GetCompanyID(c), page.Limit, page.Offset)
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(orders)
}

// Incoming pedidos recibidos por la empresa del usuario (lado vendedor).
// GET /api/orders/incoming
func (h *OrderHandler) Incoming(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "query inválida"})
	}
	orders, err := h.uc.IncomingOrders(GetCompanyID(c), page.Limit, page.Offset)
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(orders)
}

// GetByID detalle de un pedido con sus líneas (comprador o vendedor del pedido).
// GET /api/orders/:id
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	detail, err := h.uc.GetOrder(GetCompanyID(c), c.Params("id"))
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(detail)
}

// UpdateStatus cambia el estado de un pedido (solo el vendedor).
// La anulación devuelve stock y asienta un crédito compensatorio.
// PUT /api/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateOrderStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.UpdateStatus(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"), in); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: "transición de estado no permitida"})
		}
		return orderError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// StatusHistory historial de estados de un pedido.
// GET /api/orders/:id/history
func (h *OrderHandler) StatusHistory(c *fiber.Ctx) error {
	history, err := h.uc.StatusHistory(GetCompanyID(c), c.Params("id"))
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(history)
}

// orderError mapea errores de pedidos a HTTP.
func orderError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "pedido no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al pedido"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
