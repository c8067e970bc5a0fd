package checkout

import (
	"context"

	"github.com/ksilverstone/b2b/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción SERIALIZABLE de BD,
// pasando repositorios atados a esa tx. Es la frontera transaccional del
// checkout: o se persisten pedido, líneas, descuento de stock, asiento de
// cartera y cierre del carrito, o nada. Un fallo de serialización se mapea a
// domain.ErrConcurrencyConflict y NO se reintenta aquí: se informa al caller.
type TxRunner interface {
	RunCheckout(ctx context.Context, fn func(
		cartRepo repository.CartRepository,
		productRepo repository.ProductRepository,
		customerRepo repository.CustomerRepository,
		txnRepo repository.TransactionRepository,
		orderRepo repository.OrderRepository,
	) error) error
}
