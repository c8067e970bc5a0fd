package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU         string          `json:"sku" validate:"required,min=1,max=100"`
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"min=0"`
	MinStock    int             `json:"min_stock" validate:"min=0"`
}

// UpdateProductRequest entrada para actualizar un producto (el stock solo
// muta vía checkout/anulación, no por este endpoint).
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	Unit        *string          `json:"unit"`
	Price       *decimal.Decimal `json:"price"`
	MinStock    *int             `json:"min_stock"`
	IsActive    *bool            `json:"is_active"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID              string          `json:"id"`
	SellerCompanyID string          `json:"seller_company_id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Unit            string          `json:"unit"`
	Price           decimal.Decimal `json:"price"`
	Stock           int             `json:"stock"`
	MinStock        int             `json:"min_stock"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CreatePriceTierRequest banda de precio por volumen para un producto.
type CreatePriceTierRequest struct {
	MinQuantity int             `json:"min_quantity" validate:"required,min=1"`
	MaxQuantity *int            `json:"max_quantity"` // nil = sin tope
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// PriceTierResponse banda de precio en respuestas.
type PriceTierResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	MinQuantity int             `json:"min_quantity"`
	MaxQuantity *int            `json:"max_quantity,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}
