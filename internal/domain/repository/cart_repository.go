package repository

import "github.com/ksilverstone/b2b/internal/domain/entity"

// CartRepository define el puerto de persistencia para carritos y sus líneas.
type CartRepository interface {
	Create(cart *entity.Cart) error
	GetByID(id string) (*entity.Cart, error)
	// GetWithItems carga el carrito y sus líneas en orden de inserción.
	GetWithItems(id string) (*entity.Cart, error)
	// FindActive busca el carrito Active del par (customer, seller).
	// sellerCompanyID nil busca el carrito neutro (sin vendedor asignado).
	FindActive(customerID string, sellerCompanyID *string) (*entity.Cart, error)
	Update(cart *entity.Cart) error
	// UpdateStatus cambia el estado del carrito; con expectStatus se exige el
	// estado previo (cierre atómico en el checkout).
	UpdateStatus(id, expectStatus, newStatus string) error

	CreateItem(item *entity.CartItem) error
	GetItem(itemID string) (*entity.CartItem, error)
	FindItemByProduct(cartID, productID string) (*entity.CartItem, error)
	UpdateItem(item *entity.CartItem) error
	DeleteItem(itemID string) error
}
