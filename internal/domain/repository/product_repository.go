package repository

import "github.com/ksilverstone/b2b/internal/domain/entity"

// ProductRepository define el puerto de persistencia para Product.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT ... FOR UPDATE);
	// es el punto de serialización del stock en el checkout.
	GetForUpdate(id string) (*entity.Product, error)
	GetByCompanyAndSKU(sellerCompanyID, sku string) (*entity.Product, error)
	ListBySeller(sellerCompanyID string, limit, offset int) ([]*entity.Product, error)
	ListActive(limit, offset int) ([]*entity.Product, error)
	Update(product *entity.Product) error
	// UpdateStock fija el stock resultante y toca updated_at.
	UpdateStock(productID string, stock int) error
	Delete(id string) error
}
