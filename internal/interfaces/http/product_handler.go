package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ksilverstone/b2b/internal/application/dto"
	"github.com/ksilverstone/b2b/internal/application/usecase"
	"github.com/ksilverstone/b2b/internal/domain"
)

// ProductHandler maneja las peticiones HTTP del catálogo (productos y
// bandas de precio).
type ProductHandler struct {
	uc *usecase.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// Create crea un producto en el catálogo de la empresa actuante.
// POST /api/products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.SKU == "" || in.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "sku y name requeridos"})
	}
	product, err := h.uc.Create(companyID, in)
	if err != nil {
		return productError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// List lista el catálogo. Con ?mine=true lista el catálogo propio
// (incluye inactivos); si no, el catálogo activo global.
// GET /api/products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "query inválida"})
	}
	if c.QueryBool("mine") {
		products, err := h.uc.ListBySeller(GetCompanyID(c), page)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
		return c.JSON(products)
	}
	products, err := h.uc.ListActive(page)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(products)
}

// GetByID obtiene un producto.
// GET /api/products/:id
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	product, err := h.uc.Get(c.Params("id"))
	if err != nil {
		return productError(c, err)
	}
	return c.JSON(product)
}

// Update actualiza un producto propio.
// PUT /api/products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	product, err := h.uc.Update(GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return productError(c, err)
	}
	return c.JSON(product)
}

// Delete desactiva un producto propio.
// DELETE /api/products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(GetCompanyID(c), c.Params("id")); err != nil {
		return productError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddPriceTier agrega una banda de precio por volumen.
// POST /api/products/:id/price-tiers
func (h *ProductHandler) AddPriceTier(c *fiber.Ctx) error {
	var in dto.CreatePriceTierRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	tier, err := h.uc.AddPriceTier(GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "TIER_OVERLAP", Message: "la banda se solapa con una existente"})
		}
		return productError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tier)
}

// ListPriceTiers lista las bandas de un producto.
// GET /api/products/:id/price-tiers
func (h *ProductHandler) ListPriceTiers(c *fiber.Ctx) error {
	tiers, err := h.uc.ListPriceTiers(c.Params("id"))
	if err != nil {
		return productError(c, err)
	}
	return c.JSON(tiers)
}

// RemovePriceTier elimina una banda de un producto propio.
// DELETE /api/products/:id/price-tiers/:tierId
func (h *ProductHandler) RemovePriceTier(c *fiber.Ctx) error {
	if err := h.uc.RemovePriceTier(GetCompanyID(c), c.Params("id"), c.Params("tierId")); err != nil {
		return productError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// productError mapea errores del caso de uso de catálogo a HTTP.
func productError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "sku ya existe para la empresa"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
