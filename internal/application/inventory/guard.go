// Package inventory protege el invariante stock >= 0: toda salida de stock
// pasa por el guard, que bloquea la fila del producto y re-verifica la
// disponibilidad dentro de la transacción del caller.
package inventory

import (
	"time"

	"github.com/ksilverstone/b2b/internal/domain"
	"github.com/ksilverstone/b2b/internal/domain/entity"
	"github.com/ksilverstone/b2b/internal/domain/repository"
)

// StockGuard valida y descuenta stock de forma atómica por línea.
type StockGuard struct{}

// NewStockGuard construye el guard.
func NewStockGuard() *StockGuard {
	return &StockGuard{}
}

// ReserveInTx descuenta quantity del stock del producto usando el
// repositorio del caller (misma transacción). Bloquea la fila
// (SELECT FOR UPDATE), re-verifica stock >= quantity después del lock y
// recién entonces descuenta. Un error aquí debe abortar la transacción
// completa del caller: ninguna línea del checkout queda aplicada a medias.
func (g *StockGuard) ReserveInTx(productRepo repository.ProductRepository, productID string, quantity int) (*entity.Product, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	product, err := productRepo.GetForUpdate(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.Stock < quantity {
		return nil, &domain.StockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   quantity,
			Available:   product.Stock,
		}
	}
	if err := productRepo.UpdateStock(product.ID, product.Stock-quantity); err != nil {
		return nil, err
	}
	product.Stock -= quantity
	product.UpdatedAt = time.Now()
	return product, nil
}

// ReleaseInTx devuelve quantity al stock (anulación de pedido). Usa el mismo
// lock de fila que la reserva.
func (g *StockGuard) ReleaseInTx(productRepo repository.ProductRepository, productID string, quantity int) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	product, err := productRepo.GetForUpdate(productID)
	if err != nil {
		return err
	}
	if product == nil {
		// El producto pudo borrarse después del pedido; no hay stock que devolver.
		return nil
	}
	return productRepo.UpdateStock(product.ID, product.Stock+quantity)
}
