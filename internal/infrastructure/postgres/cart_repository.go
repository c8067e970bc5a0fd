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

var _ repository.CartRepository = (*CartRepo)(nil)

// CartRepo implementación del puerto CartRepository sobre PostgreSQL (usable con pool o tx).
type CartRepo struct {
	q Querier
}

// NewCartRepository construye el adaptador de persistencia para carritos. Pasar pool o tx (Querier).
func NewCartRepository(q Querier) *CartRepo {
	return &CartRepo{q: q}
}

const cartColumns = `id, customer_id, seller_company_id, buyer_company_id, status, created_at, updated_at`

// Create persiste un carrito nuevo. El índice parcial único sobre
// (customer_id, seller_company_id) WHERE status = 'Active' impide dos
// carritos activos para el mismo par.
func (r *CartRepo) Create(cart *entity.Cart) error {
	query := `
		INSERT INTO carts (` + cartColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		cart.ID, cart.CustomerID, cart.SellerCompanyID, cart.BuyerCompanyID,
		cart.Status, cart.CreatedAt, cart.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert cart: %w", err)
	}
	return nil
}

// GetByID obtiene un carrito por ID sin sus líneas. Devuelve nil si no existe.
func (r *CartRepo) GetByID(id string) (*entity.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE id = $1`
	return scanCart(r.q.QueryRow(context.Background(), query, id), "get cart")
}

// GetWithItems carga el carrito y sus líneas en orden de inserción.
func (r *CartRepo) GetWithItems(id string) (*entity.Cart, error) {
	cart, err := r.GetByID(id)
	if err != nil || cart == nil {
		return cart, err
	}
	items, err := r.listItems(id)
	if err != nil {
		return nil, err
	}
	cart.Items = items
	return cart, nil
}

// FindActive busca el carrito Active del par (customer, seller).
// sellerCompanyID nil busca el carrito neutro (seller_company_id IS NULL).
func (r *CartRepo) FindActive(customerID string, sellerCompanyID *string) (*entity.Cart, error) {
	var query string
	var args []any
	if sellerCompanyID == nil {
		query = `SELECT ` + cartColumns + ` FROM carts
			WHERE customer_id = $1 AND seller_company_id IS NULL AND status = $2`
		args = []any{customerID, entity.CartStatusActive}
	} else {
		query = `SELECT ` + cartColumns + ` FROM carts
			WHERE customer_id = $1 AND seller_company_id = $2 AND status = $3`
		args = []any{customerID, *sellerCompanyID, entity.CartStatusActive}
	}
	return scanCart(r.q.QueryRow(context.Background(), query, args...), "find active cart")
}

// Update actualiza seller/buyer/updated_at de un carrito (repurposing del
// carrito neutro al asignarle vendedor).
func (r *CartRepo) Update(cart *entity.Cart) error {
	query := `
		UPDATE carts
		SET seller_company_id = $2, buyer_company_id = $3, updated_at = $4
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		cart.ID, cart.SellerCompanyID, cart.BuyerCompanyID, cart.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update cart: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStatus cambia el estado del carrito exigiendo el estado previo.
// Si la fila ya no está en expectStatus devuelve ErrConflict: es el cierre
// atómico Active→Ordered del checkout.
func (r *CartRepo) UpdateStatus(id, expectStatus, newStatus string) error {
	query := `UPDATE carts SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	tag, err := r.q.Exec(context.Background(), query, id, expectStatus, newStatus, time.Now())
	if err != nil {
		return fmt.Errorf("update cart status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

const cartItemColumns = `id, cart_id, product_id, quantity, unit_price, created_at`

// CreateItem persiste una línea de carrito.
func (r *CartRepo) CreateItem(item *entity.CartItem) error {
	query := `
		INSERT INTO cart_items (` + cartItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.CartID, item.ProductID, item.Quantity, item.UnitPrice, item.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert cart item: %w", err)
	}
	return nil
}

// GetItem obtiene una línea por ID. Devuelve nil si no existe.
func (r *CartRepo) GetItem(itemID string) (*entity.CartItem, error) {
	query := `SELECT ` + cartItemColumns + ` FROM cart_items WHERE id = $1`
	return scanCartItem(r.q.QueryRow(context.Background(), query, itemID), "get cart item")
}

// FindItemByProduct busca la línea de un producto dentro de un carrito.
func (r *CartRepo) FindItemByProduct(cartID, productID string) (*entity.CartItem, error) {
	query := `SELECT ` + cartItemColumns + ` FROM cart_items WHERE cart_id = $1 AND product_id = $2`
	return scanCartItem(r.q.QueryRow(context.Background(), query, cartID, productID), "find cart item")
}

// UpdateItem actualiza cantidad y precio unitario de una línea.
func (r *CartRepo) UpdateItem(item *entity.CartItem) error {
	query := `UPDATE cart_items SET quantity = $2, unit_price = $3 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, item.ID, item.Quantity, item.UnitPrice)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteItem elimina una línea.
func (r *CartRepo) DeleteItem(itemID string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CartRepo) listItems(cartID string) ([]*entity.CartItem, error) {
	query := `
		SELECT ` + cartItemColumns + ` FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query, cartID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	var out []*entity.CartItem
	for rows.Next() {
		var it entity.CartItem
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}

func scanCart(row pgx.Row, op string) (*entity.Cart, error) {
	var c entity.Cart
	err := row.Scan(&c.ID, &c.CustomerID, &c.SellerCompanyID, &c.BuyerCompanyID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

func scanCartItem(row pgx.Row, op string) (*entity.CartItem, error) {
	var it entity.CartItem
	err := row.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &it, nil
}
