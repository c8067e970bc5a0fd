package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddToCartRequest body para POST /api/cart/items.
// Quantity es un delta: si el producto ya está en el carrito se suma.
type AddToCartRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// UpdateCartItemRequest body para PUT /api/cart/items/:id.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// CartItemResponse línea del carrito en respuestas.
type CartItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// CartResponse carrito con líneas y total.
type CartResponse struct {
	ID              string             `json:"id"`
	CustomerID      string             `json:"customer_id"`
	SellerCompanyID string             `json:"seller_company_id,omitempty"`
	Status          string             `json:"status"`
	Items           []CartItemResponse `json:"items"`
	Total           decimal.Decimal    `json:"total"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// CheckoutResponse resultado de un checkout exitoso.
type CheckoutResponse struct {
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Total       decimal.Decimal `json:"total"`
	RedirectURL string          `json:"redirect_url"`
}
