package repository

import (
	"github.com/shopspring/decimal"

	"github.com/ksilverstone/b2b/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para la cuenta de
// cartera (Customer). UpdateBalance solo debe invocarse desde el ledger.
type CustomerRepository interface {
	Create(customer *entity.Customer) error
	GetByID(id string) (*entity.Customer, error)
	// GetForUpdate bloquea la fila del cliente (SELECT ... FOR UPDATE) para
	// serializar los asientos de cartera contra el saldo.
	GetForUpdate(id string) (*entity.Customer, error)
	// GetByBuyerCompany busca la cuenta por su clave estable de
	// aprovisionamiento (empresa compradora).
	GetByBuyerCompany(buyerCompanyID string) (*entity.Customer, error)
	List(limit, offset int) ([]*entity.Customer, error)
	UpdateBalance(id string, balance decimal.Decimal) error
	Update(customer *entity.Customer) error
}
