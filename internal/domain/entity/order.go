package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del pedido. El checkout crea siempre en Pending; el resto de
// transiciones las maneja el flujo de gestión de pedidos.
const (
	OrderStatusPending   = "Pending"
	OrderStatusApproved  = "Approved"
	OrderStatusCancelled = "Cancelled"
	OrderStatusCompleted = "Completed"
)

// DocumentTypeOrder es el tipo de documento de los pedidos de venta.
// (order_number es único por tipo de documento).
const DocumentTypeOrder = "Order"

// CustomerOrder es el registro inmutable de un checkout completado.
// Solo Status/UpdatedAt mutan después de la creación.
type CustomerOrder struct {
	ID              string
	OrderNumber     string
	DocumentType    string
	CustomerID      string
	BuyerCompanyID  string
	SellerCompanyID *string
	OrderDate       time.Time
	TotalAmount     decimal.Decimal
	Status          string // ver constantes OrderStatus*
	Description     string
	ItemCount       int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CanTransition valida las transiciones de estado permitidas:
// Pending → Approved|Cancelled; Approved → Completed|Cancelled.
// Cancelled y Completed son terminales.
func (o *CustomerOrder) CanTransition(to string) bool {
	switch o.Status {
	case OrderStatusPending:
		return to == OrderStatusApproved || to == OrderStatusCancelled
	case OrderStatusApproved:
		return to == OrderStatusCompleted || to == OrderStatusCancelled
	default:
		return false
	}
}

// OrderStatusHistory registra cada cambio de estado de un pedido.
type OrderStatusHistory struct {
	ID         string
	OrderID    string
	FromStatus string
	ToStatus   string
	ChangedBy  string // user id
	Note       string
	CreatedAt  time.Time
}
