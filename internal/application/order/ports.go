package order

import (
	"context"

	"github.com/ksilverstone/b2b/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios que toca la gestión de pedidos. La anulación de un pedido
// (devolver stock + crédito compensatorio + historial) exige la misma
// atomicidad que el checkout.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		customerRepo repository.CustomerRepository,
		txnRepo repository.TransactionRepository,
		orderRepo repository.OrderRepository,
	) error) error
}
