package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ksilverstone/b2b/internal/domain"
	"github.com/ksilverstone/b2b/internal/domain/entity"
	"github.com/ksilverstone/b2b/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación del puerto CustomerRepository sobre PostgreSQL (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador de persistencia para cuentas de cartera. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

const customerColumns = `id, buyer_company_id, name, email, phone, address, tax_number, tax_office, balance, is_active, created_at, updated_at`

// Create persiste una nueva cuenta de cartera. (buyer_company_id es único:
// a lo sumo una cuenta por empresa compradora).
func (r *CustomerRepo) Create(customer *entity.Customer) error {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		customer.ID, customer.BuyerCompanyID, customer.Name, customer.Email,
		customer.Phone, customer.Address, customer.TaxNumber, customer.TaxOffice,
		customer.Balance, customer.IsActive, customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene una cuenta por ID. Devuelve nil si no existe.
func (r *CustomerRepo) GetByID(id string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return scanCustomer(r.q.QueryRow(context.Background(), query, id), "get customer")
}

// GetForUpdate obtiene la cuenta bloqueando su fila (SELECT ... FOR UPDATE).
// Serializa los asientos de cartera contra el saldo; usar solo dentro de tx.
func (r *CustomerRepo) GetForUpdate(id string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1 FOR UPDATE`
	return scanCustomer(r.q.QueryRow(context.Background(), query, id), "lock customer")
}

// GetByBuyerCompany busca la cuenta por su clave estable de aprovisionamiento.
func (r *CustomerRepo) GetByBuyerCompany(buyerCompanyID string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE buyer_company_id = $1`
	return scanCustomer(r.q.QueryRow(context.Background(), query, buyerCompanyID), "get customer by buyer company")
}

// List lista cuentas paginadas ordenadas por nombre.
func (r *CustomerRepo) List(limit, offset int) ([]*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var out []*entity.Customer
	for rows.Next() {
		var c entity.Customer
		if err := rows.Scan(
			&c.ID, &c.BuyerCompanyID, &c.Name, &c.Email, &c.Phone, &c.Address,
			&c.TaxNumber, &c.TaxOffice, &c.Balance, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// UpdateBalance fija el saldo de la cuenta. Solo el ledger debe invocarlo,
// con la fila ya bloqueada vía GetForUpdate.
func (r *CustomerRepo) UpdateBalance(id string, balance decimal.Decimal) error {
	query := `UPDATE customers SET balance = $2, updated_at = $3 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, balance, time.Now())
	if err != nil {
		return fmt.Errorf("update customer balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Update actualiza los datos de contacto de una cuenta (no el saldo).
func (r *CustomerRepo) Update(customer *entity.Customer) error {
	query := `
		UPDATE customers
		SET name = $2, email = $3, phone = $4, address = $5, tax_number = $6,
		    tax_office = $7, is_active = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		customer.ID, customer.Name, customer.Email, customer.Phone, customer.Address,
		customer.TaxNumber, customer.TaxOffice, customer.IsActive, customer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanCustomer(row pgx.Row, op string) (*entity.Customer, error) {
	var c entity.Customer
	err := row.Scan(
		&c.ID, &c.BuyerCompanyID, &c.Name, &c.Email, &c.Phone, &c.Address,
		&c.TaxNumber, &c.TaxOffice, &c.Balance, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}
