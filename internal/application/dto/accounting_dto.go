package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountResponse cuenta de cartera en el listado de clientes.
type AccountResponse struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Email               string          `json:"email,omitempty"`
	Phone               string          `json:"phone,omitempty"`
	TaxNumber           string          `json:"tax_number,omitempty"`
	Balance             decimal.Decimal `json:"balance"`
	IsActive            bool            `json:"is_active"`
	LastTransactionDate *time.Time      `json:"last_transaction_date,omitempty"`
}

// TransactionResponse un asiento del extracto con su saldo snapshot.
type TransactionResponse struct {
	ID              string          `json:"id"`
	TransactionDate time.Time       `json:"transaction_date"`
	DocumentNo      string          `json:"document_no,omitempty"`
	Description     string          `json:"description,omitempty"`
	TransactionType string          `json:"transaction_type"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	Balance         decimal.Decimal `json:"balance"`
}

// StatementResponse extracto de cuenta: historial ordenado + saldo corriente.
type StatementResponse struct {
	Account      AccountResponse       `json:"account"`
	Transactions []TransactionResponse `json:"transactions"`
}

// RecordPaymentRequest body para POST /api/accounting/payments.
type RecordPaymentRequest struct {
	CustomerID  string          `json:"customer_id" validate:"required,uuid"`
	Amount      decimal.Decimal `json:"amount"`
	DocumentNo  string          `json:"document_no"`
	Description string          `json:"description"`
}
