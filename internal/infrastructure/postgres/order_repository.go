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

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación del puerto OrderRepository sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de persistencia para pedidos. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, order_number, document_type, customer_id, buyer_company_id, seller_company_id, order_date, total_amount, status, description, item_count, created_at, updated_at`

// Create persiste la cabecera de un pedido. (document_type, order_number)
// es único: dos checkouts en el mismo segundo chocan aquí y el segundo
// recibe ErrDuplicate.
func (r *OrderRepo) Create(order *entity.CustomerOrder) error {
	query := `
		INSERT INTO customer_orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.OrderNumber, order.DocumentType, order.CustomerID,
		order.BuyerCompanyID, order.SellerCompanyID, order.OrderDate,
		order.TotalAmount, order.Status, order.Description, order.ItemCount,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

const orderItemColumns = `id, order_id, line_no, product_id, product_name, sku, unit, quantity, unit_price, discount_rate, tax_rate, net_amount, tax_amount, total_amount, created_at`

// CreateItem persiste una línea de pedido con sus snapshots de producto.
func (r *OrderRepo) CreateItem(item *entity.CustomerOrderItem) error {
	query := `
		INSERT INTO customer_order_items (` + orderItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.OrderID, item.LineNo, item.ProductID, item.ProductName,
		item.SKU, item.Unit, item.Quantity, item.UnitPrice, item.DiscountRate,
		item.TaxRate, item.NetAmount, item.TaxAmount, item.TotalAmount, item.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera de un pedido. Devuelve nil si no existe.
func (r *OrderRepo) GetByID(id string) (*entity.CustomerOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM customer_orders WHERE id = $1`
	var o entity.CustomerOrder
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&o.ID, &o.OrderNumber, &o.DocumentType, &o.CustomerID, &o.BuyerCompanyID,
		&o.SellerCompanyID, &o.OrderDate, &o.TotalAmount, &o.Status, &o.Description,
		&o.ItemCount, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

// GetItems devuelve las líneas de un pedido en orden de línea.
func (r *OrderRepo) GetItems(orderID string) ([]*entity.CustomerOrderItem, error) {
	query := `
		SELECT ` + orderItemColumns + ` FROM customer_order_items
		WHERE order_id = $1
		ORDER BY line_no ASC`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var out []*entity.CustomerOrderItem
	for rows.Next() {
		var it entity.CustomerOrderItem
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.LineNo, &it.ProductID, &it.ProductName,
			&it.SKU, &it.Unit, &it.Quantity, &it.UnitPrice, &it.DiscountRate,
			&it.TaxRate, &it.NetAmount, &it.TaxAmount, &it.TotalAmount, &it.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}

// ListByBuyerCompany pedidos colocados por una empresa compradora, más recientes primero.
func (r *OrderRepo) ListByBuyerCompany(buyerCompanyID string, limit, offset int) ([]*entity.CustomerOrder, error) {
	query := `
		SELECT ` + orderColumns + ` FROM customer_orders
		WHERE buyer_company_id = $1
		ORDER BY order_date DESC LIMIT $2 OFFSET $3`
	return r.list(query, buyerCompanyID, limit, offset)
}

// ListBySellerCompany pedidos recibidos por una empresa vendedora, más recientes primero.
func (r *OrderRepo) ListBySellerCompany(sellerCompanyID string, limit, offset int) ([]*entity.CustomerOrder, error) {
	query := `
		SELECT ` + orderColumns + ` FROM customer_orders
		WHERE seller_company_id = $1
		ORDER BY order_date DESC LIMIT $2 OFFSET $3`
	return r.list(query, sellerCompanyID, limit, offset)
}

// ListByCustomer pedidos de una cuenta de cartera, más recientes primero.
func (r *OrderRepo) ListByCustomer(customerID string, limit, offset int) ([]*entity.CustomerOrder, error) {
	query := `
		SELECT ` + orderColumns + ` FROM customer_orders
		WHERE customer_id = $1
		ORDER BY order_date DESC LIMIT $2 OFFSET $3`
	return r.list(query, customerID, limit, offset)
}

// UpdateStatus cambia el estado de un pedido exigiendo el estado previo,
// igual que el cierre del carrito: si otra transacción ya lo movió,
// 0 filas → ErrConflict y la transición perdedora se revierte.
func (r *OrderRepo) UpdateStatus(id, expectStatus, newStatus string) error {
	query := `UPDATE customer_orders SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	tag, err := r.q.Exec(context.Background(), query, id, expectStatus, newStatus, time.Now())
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// CreateStatusHistory registra un cambio de estado.
func (r *OrderRepo) CreateStatusHistory(h *entity.OrderStatusHistory) error {
	query := `
		INSERT INTO order_status_history (id, order_id, from_status, to_status, changed_by, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		h.ID, h.OrderID, h.FromStatus, h.ToStatus, h.ChangedBy, h.Note, h.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert status history: %w", err)
	}
	return nil
}

// ListStatusHistory historial de estados de un pedido en orden cronológico.
func (r *OrderRepo) ListStatusHistory(orderID string) ([]*entity.OrderStatusHistory, error) {
	query := `
		SELECT id, order_id, from_status, to_status, changed_by, note, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY created_at ASC`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	defer rows.Close()

	var out []*entity.OrderStatusHistory
	for rows.Next() {
		var h entity.OrderStatusHistory
		if err := rows.Scan(&h.ID, &h.OrderID, &h.FromStatus, &h.ToStatus, &h.ChangedBy, &h.Note, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan status history: %w", err)
		}
		out = append(out, &h)
	}
	return out, rows.Err()
}

func (r *OrderRepo) list(query string, args ...any) ([]*entity.CustomerOrder, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []*entity.CustomerOrder
	for rows.Next() {
		var o entity.CustomerOrder
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.DocumentType, &o.CustomerID, &o.BuyerCompanyID,
			&o.SellerCompanyID, &o.OrderDate, &o.TotalAmount, &o.Status, &o.Description,
			&o.ItemCount, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}
