package repository

import "github.com/ksilverstone/b2b/internal/domain/entity"

// PriceTierRepository define el puerto de persistencia para las bandas de
// precio por volumen.
type PriceTierRepository interface {
	Create(tier *entity.ProductPriceTier) error
	// ListByProduct devuelve las bandas ordenadas por min_quantity ascendente.
	ListByProduct(productID string) ([]*entity.ProductPriceTier, error)
	Delete(id string) error
}
