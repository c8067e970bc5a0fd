package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ksilverstone/b2b/internal/application/accounting"
	"github.com/ksilverstone/b2b/internal/application/dto"
	"github.com/ksilverstone/b2b/internal/domain"
)

// AccountingHandler maneja las peticiones HTTP de cartera: cuentas,
// extractos, pagos y export PDF. Solo lado vendedor/admin.
type AccountingHandler struct {
	uc *accounting.UseCase
}

// NewAccountingHandler construye el handler.
func NewAccountingHandler(uc *accounting.UseCase) *AccountingHandler {
	return &AccountingHandler{uc: uc}
}

// Accounts lista las cuentas de cartera con saldo y última actividad.
// GET /api/accounting/accounts
func (h *AccountingHandler) Accounts(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "query inválida"})
	}
	accounts, err := h.uc.Accounts(page.Limit, page.Offset)
	if err != nil {
		return accountingError(c, err)
	}
	return c.JSON(accounts)
}

// Statement extracto de cuenta: asientos en orden cronológico con saldo
// snapshot por movimiento.
// GET /api/accounting/accounts/:id/statement
func (h *AccountingHandler) Statement(c *fiber.Ctx) error {
	statement, err := h.uc.Statement(c.Params("id"))
	if err != nil {
		return accountingError(c, err)
	}
	return c.JSON(statement)
}

// StatementPDF extracto de cuenta en PDF.
// GET /api/accounting/accounts/:id/statement.pdf
func (h *AccountingHandler) StatementPDF(c *fiber.Ctx) error {
	pdfBytes, err := h.uc.StatementPDF(c.Context(), c.Params("id"))
	if err != nil {
		return accountingError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="extracto.pdf"`)
	return c.Send(pdfBytes)
}

// RecordPayment registra un pago del cliente (asiento de crédito).
// POST /api/accounting/payments
func (h *AccountingHandler) RecordPayment(c *fiber.Ctx) error {
	var in dto.RecordPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.CustomerID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "customer_id requerido"})
	}
	txn, err := h.uc.RecordPayment(c.Context(), in)
	if err != nil {
		return accountingError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(txn)
}

// accountingError mapea errores de cartera a HTTP.
func accountingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cuenta no encontrada"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
