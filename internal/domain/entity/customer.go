package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer es la cuenta de cartera de una empresa compradora.
// Balance es el saldo corriente: positivo = el cliente debe.
// Solo el componente de cartera (ledger) puede mutar Balance.
type Customer struct {
	ID             string
	BuyerCompanyID string // clave estable de aprovisionamiento: una cuenta por empresa compradora
	Name           string
	Email          string
	Phone          string
	Address        string
	TaxNumber      string
	TaxOffice      string
	Balance        decimal.Decimal
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
