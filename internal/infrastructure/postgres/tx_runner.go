package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ksilverstone/b2b/internal/application/accounting"
	"github.com/ksilverstone/b2b/internal/application/checkout"
	"github.com/ksilverstone/b2b/internal/application/order"
	"github.com/ksilverstone/b2b/internal/domain"
	"github.com/ksilverstone/b2b/internal/domain/repository"
)

// Ensure TxRunner implements the transactional ports of the application layer.
var _ checkout.TxRunner = (*TxRunner)(nil)
var _ order.TxRunner = (*TxRunner)(nil)
var _ accounting.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunCheckout inicia una transacción SERIALIZABLE, ejecuta fn con repos
// atados a la tx y hace Commit o Rollback. Un fallo de serialización o
// deadlock se traduce a domain.ErrConcurrencyConflict; el caller decide si
// reintenta.
func (r *TxRunner) RunCheckout(ctx context.Context, fn func(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	txnRepo repository.TransactionRepository,
	orderRepo repository.OrderRepository,
) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cartRepo := NewCartRepository(tx)
	productRepo := NewProductRepository(tx)
	customerRepo := NewCustomerRepository(tx)
	txnRepo := NewTransactionRepository(tx)
	orderRepo := NewOrderRepository(tx)

	if err := fn(cartRepo, productRepo, customerRepo, txnRepo, orderRepo); err != nil {
		if isSerializationFailure(err) {
			return domain.ErrConcurrencyConflict
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isSerializationFailure(err) {
			return domain.ErrConcurrencyConflict
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunOrder inicia una transacción con los repos de gestión de pedidos
// (anulación: devolver stock + crédito compensatorio + historial).
func (r *TxRunner) RunOrder(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	txnRepo repository.TransactionRepository,
	orderRepo repository.OrderRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	productRepo := NewProductRepository(tx)
	customerRepo := NewCustomerRepository(tx)
	txnRepo := NewTransactionRepository(tx)
	orderRepo := NewOrderRepository(tx)

	if err := fn(productRepo, customerRepo, txnRepo, orderRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunLedger inicia una transacción con los repos de cartera (registro de pagos).
func (r *TxRunner) RunLedger(ctx context.Context, fn func(
	customerRepo repository.CustomerRepository,
	txnRepo repository.TransactionRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	customerRepo := NewCustomerRepository(tx)
	txnRepo := NewTransactionRepository(tx)

	if err := fn(customerRepo, txnRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
