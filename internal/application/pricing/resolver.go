// Package pricing resuelve el precio unitario de una línea a partir de las
// bandas de precio por volumen del producto (ProductPriceTier).
package pricing

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ksilverstone/b2b/internal/domain/entity"
	"github.com/ksilverstone/b2b/internal/domain/repository"
)

// SelectTier elige la banda aplicable para la cantidad: la de mayor
// MinQuantity con MinQuantity <= quantity y quantity <= MaxQuantity (o sin
// tope). Las bandas no se solapan por construcción; si la validación se
// violó en otra parte y hay varias candidatas, gana la de mayor MinQuantity.
// Función pura, sin efectos.
func SelectTier(tiers []*entity.ProductPriceTier, quantity int) *entity.ProductPriceTier {
	var best *entity.ProductPriceTier
	for _, t := range tiers {
		if !t.Contains(quantity) {
			continue
		}
		if best == nil || t.MinQuantity > best.MinQuantity {
			best = t
		}
	}
	return best
}

// Resolver resuelve precios unitarios consultando las bandas persistidas.
type Resolver struct {
	tierRepo repository.PriceTierRepository
	log      zerolog.Logger
}

// NewResolver construye el resolver.
func NewResolver(tierRepo repository.PriceTierRepository, log zerolog.Logger) *Resolver {
	return &Resolver{tierRepo: tierRepo, log: log}
}

// ResolveUnitPrice devuelve el precio base del producto salvo que una banda
// aplique a la cantidad objetivo. Un fallo al leer las bandas no rompe el
// flujo: se cae al precio base (mismo comportamiento tolerante del catálogo),
// pero se deja registro para no ocultar una base de datos degradada.
func (r *Resolver) ResolveUnitPrice(product *entity.Product, quantity int) decimal.Decimal {
	tiers, err := r.tierRepo.ListByProduct(product.ID)
	if err != nil {
		r.log.Warn().
			Err(err).
			Str("product_id", product.ID).
			Int("quantity", quantity).
			Msg("fallo al leer bandas de precio, usando precio base")
		return product.Price
	}
	if len(tiers) == 0 {
		return product.Price
	}
	if tier := SelectTier(tiers, quantity); tier != nil {
		return tier.UnitPrice
	}
	return product.Price
}
