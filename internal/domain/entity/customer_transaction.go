package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de cartera.
const (
	TransactionTypeOrder    = "Order"    // pedido: débito
	TransactionTypePayment  = "Payment"  // pago recibido: crédito
	TransactionTypeReversal = "Reversal" // anulación de pedido: crédito compensatorio
)

// CustomerTransaction es un asiento inmutable de cartera. En un asiento
// normal exactamente uno de Debit/Credit es distinto de cero. Balance es
// el saldo del cliente DESPUÉS de aplicar este asiento (snapshot), de modo
// que reproducir los deltas en orden reconstruye el historial completo.
type CustomerTransaction struct {
	ID              string
	CustomerID      string
	TransactionDate time.Time
	DocumentNo      string // referencia al documento (ej. número de pedido)
	Description     string
	Debit           decimal.Decimal
	Credit          decimal.Decimal
	Balance         decimal.Decimal
	TransactionType string // ver constantes TransactionType*
	CreatedAt       time.Time
}
