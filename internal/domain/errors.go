package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// Errores del pipeline de pedido y cartera.
	ErrInvalidQuantity     = errors.New("cantidad inválida")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrEmptyCart           = errors.New("el carrito está vacío")
	ErrMissingCounterparty = errors.New("falta el comprador o el vendedor del carrito")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, reintente la operación")
)

// StockError indica stock insuficiente para un producto concreto.
// Envuelve ErrInsufficientStock para que errors.Is siga funcionando
// y el mensaje pueda nombrar el producto ofensor.
type StockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *StockError) Error() string {
	return "stock insuficiente para " + e.ProductName
}

// Unwrap permite errors.Is(err, ErrInsufficientStock).
func (e *StockError) Unwrap() error { return ErrInsufficientStock }
