package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderResponse cabecera de pedido en respuestas.
type OrderResponse struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"order_number"`
	CustomerID      string          `json:"customer_id"`
	BuyerCompanyID  string          `json:"buyer_company_id"`
	SellerCompanyID string          `json:"seller_company_id,omitempty"`
	OrderDate       time.Time       `json:"order_date"`
	Status          string          `json:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ItemCount       int             `json:"item_count"`
	Description     string          `json:"description,omitempty"`
}

// OrderItemResponse línea de pedido en respuestas. Los campos de producto
// son snapshots al momento del pedido (el catálogo actual no importa aquí).
type OrderItemResponse struct {
	LineNo       int             `json:"line_no"`
	ProductID    string          `json:"product_id,omitempty"`
	ProductName  string          `json:"product_name"`
	SKU          string          `json:"sku,omitempty"`
	Unit         string          `json:"unit"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	NetAmount    decimal.Decimal `json:"net_amount"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// OrderDetailResponse pedido con líneas.
type OrderDetailResponse struct {
	Order OrderResponse       `json:"order"`
	Items []OrderItemResponse `json:"items"`
}

// UpdateOrderStatusRequest body para PUT /api/orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Approved Cancelled Completed"`
	Note   string `json:"note"`
}

// OrderStatusHistoryResponse un cambio de estado del pedido.
type OrderStatusHistoryResponse struct {
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ChangedBy  string    `json:"changed_by"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
