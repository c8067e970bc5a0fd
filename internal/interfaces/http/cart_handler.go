package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/ksilverstone/b2b/internal/application/cart"
	"github.com/ksilverstone/b2b/internal/application/checkout"
	"github.com/ksilverstone/b2b/internal/application/dto"
	"github.com/ksilverstone/b2b/internal/domain"
)

// CartHandler maneja las peticiones HTTP del carrito y del checkout.
type CartHandler struct {
	cartUC     *cart.UseCase
	checkoutUC *checkout.UseCase
}

// NewCartHandler construye el handler.
func NewCartHandler(cartUC *cart.UseCase, checkoutUC *checkout.UseCase) *CartHandler {
	return &CartHandler{cartUC: cartUC, checkoutUC: checkoutUC}
}

// GetActive devuelve el carrito activo del comprador. Con ?seller_id= se
// filtra por vendedor; sin él, el carrito neutro.
// GET /api/cart
func (h *CartHandler) GetActive(c *fiber.Ctx) error {
	var sellerID *string
	if s := c.Query("seller_id"); s != "" {
		sellerID = &s
	}
	resp, err := h.cartUC.GetActiveCart(GetCompanyID(c), sellerID)
	if err != nil {
		return cartError(c, err)
	}
	return c.JSON(resp)
}

// AddItem agrega cantidad de un producto al carrito activo (delta: si el
// producto ya está, se suma).
// POST /api/cart/items
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var in dto.AddToCartRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id requerido"})
	}
	resp, err := h.cartUC.AddToCart(GetCompanyID(c), in)
	if err != nil {
		return cartError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// UpdateItem fija la cantidad de una línea del carrito.
// PUT /api/cart/items/:id
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	var in dto.UpdateCartItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.cartUC.UpdateItemQuantity(GetCompanyID(c), c.Params("id"), in.Quantity)
	if err != nil {
		return cartError(c, err)
	}
	return c.JSON(resp)
}

// RemoveItem elimina una línea del carrito.
// DELETE /api/cart/items/:id
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	resp, err := h.cartUC.RemoveItem(GetCompanyID(c), c.Params("id"))
	if err != nil {
		return cartError(c, err)
	}
	return c.JSON(resp)
}

// Checkout convierte el carrito en pedido: pedido + líneas + descuento de
// stock + asiento de cartera + cierre del carrito, todo o nada.
// POST /api/cart/:id/checkout
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	resp, err := h.checkoutUC.Checkout(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		var stockErr *domain.StockError
		switch {
		case errors.As(err, &stockErr):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Code:    "INSUFFICIENT_STOCK",
				Message: fmt.Sprintf("stock insuficiente para %s: pedido %d, disponible %d", stockErr.ProductName, stockErr.Requested, stockErr.Available),
			})
		case errors.Is(err, domain.ErrEmptyCart):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "EMPTY_CART", Message: "el carrito no tiene líneas"})
		case errors.Is(err, domain.ErrMissingCounterparty):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_SELLER", Message: "el carrito no tiene vendedor asignado"})
		case errors.Is(err, domain.ErrConcurrencyConflict):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENCY_CONFLICT", Message: "conflicto de concurrencia, reintente la operación"})
		default:
			return cartError(c, err)
		}
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// cartError mapea errores de carrito/checkout a HTTP.
func cartError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUANTITY", Message: "la cantidad debe ser mayor que cero"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "el carrito ya no está activo"})
	case errors.Is(err, domain.ErrDuplicate):
		// Dos checkouts en el mismo segundo pueden colisionar en el
		// número de pedido; es transitorio, como el conflicto de
		// concurrencia.
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "conflicto por duplicado, reintente la operación"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
