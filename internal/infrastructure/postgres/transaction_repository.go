package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ksilverstone/b2b/internal/domain/entity"
	"github.com/ksilverstone/b2b/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo implementación del puerto TransactionRepository sobre PostgreSQL (usable con pool o tx).
// Los asientos son inmutables: solo INSERT y SELECT.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador de persistencia para asientos de cartera. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

const transactionColumns = `id, customer_id, transaction_date, document_no, description, debit, credit, balance, transaction_type, created_at`

// Create persiste un asiento de cartera.
func (r *TransactionRepo) Create(tx *entity.CustomerTransaction) error {
	query := `
		INSERT INTO customer_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		tx.ID, tx.CustomerID, tx.TransactionDate, tx.DocumentNo, tx.Description,
		tx.Debit, tx.Credit, tx.Balance, tx.TransactionType, tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// ListByCustomer devuelve los asientos del cliente ordenados por fecha
// ascendente (y created_at como desempate para asientos del mismo instante).
func (r *TransactionRepo) ListByCustomer(customerID string) ([]*entity.CustomerTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM customer_transactions
		WHERE customer_id = $1
		ORDER BY transaction_date ASC, created_at ASC`
	rows, err := r.q.Query(context.Background(), query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []*entity.CustomerTransaction
	for rows.Next() {
		var t entity.CustomerTransaction
		if err := rows.Scan(
			&t.ID, &t.CustomerID, &t.TransactionDate, &t.DocumentNo, &t.Description,
			&t.Debit, &t.Credit, &t.Balance, &t.TransactionType, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

// LastTransactionDate devuelve la fecha del último asiento del cliente, o
// nil si no tiene movimientos.
func (r *TransactionRepo) LastTransactionDate(customerID string) (*time.Time, error) {
	query := `
		SELECT transaction_date FROM customer_transactions
		WHERE customer_id = $1
		ORDER BY transaction_date DESC, created_at DESC
		LIMIT 1`
	var date time.Time
	err := r.q.QueryRow(context.Background(), query, customerID).Scan(&date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last transaction date: %w", err)
	}
	return &date, nil
}
