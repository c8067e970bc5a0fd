package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de una empresa vendedora.
// Invariante: Stock >= 0 siempre; un checkout jamás puede dejarlo negativo.
type Product struct {
	ID              string
	SellerCompanyID string
	SKU             string // código único por empresa vendedora
	Name            string
	Description     string
	Unit            string          // unidad de venta (ej. "Adet" / unidad)
	Price           decimal.Decimal // precio base de venta
	Stock           int
	MinStock        int // umbral mínimo para alertas de reposición
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
