package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del carrito.
const (
	CartStatusActive    = "Active"
	CartStatusOrdered   = "Ordered"
	CartStatusCancelled = "Cancelled"
)

// Cart es el área de preparación mutable previa al pedido. A lo sumo un
// carrito Active por par (customer, seller); SellerCompanyID puede ser nil
// si se agregaron ítems antes de conocer al vendedor.
type Cart struct {
	ID              string
	CustomerID      string
	SellerCompanyID *string
	BuyerCompanyID  *string
	Status          string // ver constantes CartStatus*
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Items []*CartItem
}

// IsActive indica si el carrito admite mutaciones.
func (c *Cart) IsActive() bool { return c.Status == CartStatusActive }

// CartItem es una línea de producto en el carrito. UnitPrice es un
// snapshot al momento de agregar y se re-resuelve al cambiar la cantidad.
type CartItem struct {
	ID        string
	CartID    string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	CreatedAt time.Time
}
