package postgres

import (
	"context"
	"fmt"

	"github.com/ksilverstone/b2b/internal/domain"
	"github.com/ksilverstone/b2b/internal/domain/entity"
	"github.com/ksilverstone/b2b/internal/domain/repository"
)

var _ repository.PriceTierRepository = (*PriceTierRepo)(nil)

// PriceTierRepo implementación del puerto PriceTierRepository sobre PostgreSQL (usable con pool o tx).
type PriceTierRepo struct {
	q Querier
}

// NewPriceTierRepository construye el adaptador de persistencia para bandas de precio. Pasar pool o tx (Querier).
func NewPriceTierRepository(q Querier) *PriceTierRepo {
	return &PriceTierRepo{q: q}
}

// Create persiste una banda de precio. (product_id, min_quantity) es único.
func (r *PriceTierRepo) Create(tier *entity.ProductPriceTier) error {
	query := `
		INSERT INTO product_price_tiers (id, product_id, min_quantity, max_quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		tier.ID, tier.ProductID, tier.MinQuantity, tier.MaxQuantity, tier.UnitPrice,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert price tier: %w", err)
	}
	return nil
}

// ListByProduct devuelve las bandas ordenadas por min_quantity ascendente.
func (r *PriceTierRepo) ListByProduct(productID string) ([]*entity.ProductPriceTier, error) {
	query := `
		SELECT id, product_id, min_quantity, max_quantity, unit_price
		FROM product_price_tiers
		WHERE product_id = $1
		ORDER BY min_quantity ASC`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list price tiers: %w", err)
	}
	defer rows.Close()

	var out []*entity.ProductPriceTier
	for rows.Next() {
		var t entity.ProductPriceTier
		if err := rows.Scan(&t.ID, &t.ProductID, &t.MinQuantity, &t.MaxQuantity, &t.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan price tier: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

// Delete elimina una banda.
func (r *PriceTierRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM product_price_tiers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete price tier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
