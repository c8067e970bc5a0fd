package entity

import "github.com/shopspring/decimal"

// ProductPriceTier es una regla de precio por volumen: para cantidades en
// la banda [MinQuantity, MaxQuantity] aplica UnitPrice en lugar del precio
// base. MaxQuantity nil = banda sin tope. Las bandas de un producto no se
// solapan; (product_id, min_quantity) es único.
type ProductPriceTier struct {
	ID          string
	ProductID   string
	MinQuantity int
	MaxQuantity *int
	UnitPrice   decimal.Decimal
}

// Contains indica si la cantidad cae dentro de la banda (ambos extremos inclusive).
func (t *ProductPriceTier) Contains(quantity int) bool {
	if quantity < t.MinQuantity {
		return false
	}
	return t.MaxQuantity == nil || quantity <= *t.MaxQuantity
}

// Overlaps indica si dos bandas se intersectan. Se usa al validar la
// creación de bandas: los rangos de un producto deben ser disjuntos.
func (t *ProductPriceTier) Overlaps(other *ProductPriceTier) bool {
	// t termina antes de que empiece other
	if t.MaxQuantity != nil && *t.MaxQuantity < other.MinQuantity {
		return false
	}
	// other termina antes de que empiece t
	if other.MaxQuantity != nil && *other.MaxQuantity < t.MinQuantity {
		return false
	}
	return true
}
