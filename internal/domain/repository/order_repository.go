package repository

import "github.com/ksilverstone/b2b/internal/domain/entity"

// OrderRepository define el puerto de persistencia para pedidos, sus líneas
// y su historial de estados.
type OrderRepository interface {
	Create(order *entity.CustomerOrder) error
	CreateItem(item *entity.CustomerOrderItem) error
	GetByID(id string) (*entity.CustomerOrder, error)
	GetItems(orderID string) ([]*entity.CustomerOrderItem, error)
	ListByBuyerCompany(buyerCompanyID string, limit, offset int) ([]*entity.CustomerOrder, error)
	ListBySellerCompany(sellerCompanyID string, limit, offset int) ([]*entity.CustomerOrder, error)
	ListByCustomer(customerID string, limit, offset int) ([]*entity.CustomerOrder, error)
	// UpdateStatus cambia el estado exigiendo el estado previo
	// (compare-and-set). Devuelve ErrConflict si el pedido ya no está en
	// expectStatus: el perdedor de dos transiciones concurrentes no debe
	// aplicar sus efectos dos veces.
	UpdateStatus(id, expectStatus, newStatus string) error
	CreateStatusHistory(h *entity.OrderStatusHistory) error
	ListStatusHistory(orderID string) ([]*entity.OrderStatusHistory, error)
}
