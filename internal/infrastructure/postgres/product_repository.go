package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ksilverstone/b2b/internal/domain"
	"github.com/ksilverstone/b2b/internal/domain/entity"
	"github.com/ksilverstone/b2b/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, seller_company_id, sku, name, description, unit, price, stock, min_stock, is_active, created_at, updated_at`

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(product *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		product.ID, product.SellerCompanyID, product.SKU, product.Name, product.Description,
		product.Unit, product.Price, product.Stock, product.MinStock, product.IsActive,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID. Devuelve nil si no existe.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProduct(r.q.QueryRow(context.Background(), query, id), "get product")
}

// GetForUpdate obtiene el producto bloqueando su fila (SELECT ... FOR UPDATE).
// Es el punto de serialización del stock; usar solo dentro de tx.
func (r *ProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`
	return scanProduct(r.q.QueryRow(context.Background(), query, id), "lock product")
}

// GetByCompanyAndSKU obtiene un producto por empresa vendedora y SKU.
func (r *ProductRepo) GetByCompanyAndSKU(sellerCompanyID, sku string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE seller_company_id = $1 AND sku = $2`
	return scanProduct(r.q.QueryRow(context.Background(), query, sellerCompanyID, sku), "get product by sku")
}

// ListBySeller lista el catálogo de una empresa vendedora (incluye inactivos).
func (r *ProductRepo) ListBySeller(sellerCompanyID string, limit, offset int) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + ` FROM products
		WHERE seller_company_id = $1
		ORDER BY name LIMIT $2 OFFSET $3`
	return r.list(query, sellerCompanyID, limit, offset)
}

// ListActive lista productos activos de todas las empresas (catálogo comprador).
func (r *ProductRepo) ListActive(limit, offset int) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + ` FROM products
		WHERE is_active = TRUE
		ORDER BY name LIMIT $1 OFFSET $2`
	return r.list(query, limit, offset)
}

// Update actualiza los campos de catálogo de un producto (no el stock).
func (r *ProductRepo) Update(product *entity.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, unit = $4, price = $5, min_stock = $6,
		    is_active = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		product.ID, product.Name, product.Description, product.Unit, product.Price,
		product.MinStock, product.IsActive, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStock fija el stock resultante. Llamar con la fila ya bloqueada
// (GetForUpdate) dentro de la misma tx.
func (r *ProductRepo) UpdateStock(productID string, stock int) error {
	query := `UPDATE products SET stock = $2, updated_at = $3 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, productID, stock, time.Now())
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete desactiva el producto (soft delete: los pedidos conservan sus
// snapshots y la referencia débil sigue siendo válida).
func (r *ProductRepo) Delete(id string) error {
	query := `UPDATE products SET is_active = FALSE, updated_at = $2 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, time.Now())
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) list(query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(
			&p.ID, &p.SellerCompanyID, &p.SKU, &p.Name, &p.Description, &p.Unit,
			&p.Price, &p.Stock, &p.MinStock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row, op string) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.SellerCompanyID, &p.SKU, &p.Name, &p.Description, &p.Unit,
		&p.Price, &p.Stock, &p.MinStock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}
