// Package ledger mantiene la cartera de clientes: un log de asientos
// inmutables por cliente y su saldo corriente. PostInTx es la ÚNICA vía
// sancionada para mutar Customer.Balance; ningún otro código escribe el
// saldo directamente.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ksilverstone/b2b/internal/domain"
	"github.com/ksilverstone/b2b/internal/domain/entity"
	"github.com/ksilverstone/b2b/internal/domain/repository"
)

// PostInput datos de un asiento. En un asiento normal exactamente uno de
// Debit/Credit es distinto de cero (pedido = débito, pago = crédito); la
// primitiva no lo prohíbe, pero los flujos de negocio lo respetan.
type PostInput struct {
	CustomerID  string
	DocumentNo  string
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Type        string // entity.TransactionType*
	Date        time.Time
}

// Ledger aplica asientos de cartera de forma transaccional.
type Ledger struct{}

// New construye el ledger.
func New() *Ledger {
	return &Ledger{}
}

// PostInTx agrega el asiento con balance = saldo + debit - credit y
// actualiza Customer.Balance a ese mismo valor, usando los repositorios de
// la transacción del caller. Bloquea la fila del cliente para que dos
// asientos concurrentes no lean el mismo saldo base.
func (l *Ledger) PostInTx(
	customerRepo repository.CustomerRepository,
	txnRepo repository.TransactionRepository,
	in PostInput,
) (*entity.CustomerTransaction, error) {
	if in.Debit.IsNegative() || in.Credit.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	customer, err := customerRepo.GetForUpdate(in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}

	newBalance := customer.Balance.Add(in.Debit).Sub(in.Credit)
	now := in.Date
	if now.IsZero() {
		now = time.Now()
	}
	txn := &entity.CustomerTransaction{
		ID:              uuid.New().String(),
		CustomerID:      customer.ID,
		TransactionDate: now,
		DocumentNo:      in.DocumentNo,
		Description:     in.Description,
		Debit:           in.Debit,
		Credit:          in.Credit,
		Balance:         newBalance, // snapshot: saldo DESPUÉS de este asiento
		TransactionType: in.Type,
		CreatedAt:       now,
	}
	if err := txnRepo.Create(txn); err != nil {
		return nil, err
	}
	if err := customerRepo.UpdateBalance(customer.ID, newBalance); err != nil {
		return nil, err
	}
	return txn, nil
}

// FindOrCreateAccount resuelve la cuenta de cartera del comprador,
// creándola si es su primer pedido. La clave es estable: la empresa
// compradora — nada de emparejar por nombre o email, que duplica cuentas
// ante un cambio de razón social.
//
/// Debe llamarse con repositorios fuera de una transacción SERIALIZABLE:
// dentro de una, la violación de unicidad aborta la transacción entera y
// la recuperación de la carrera benigna ya no puede releer.
func (l *Ledger) FindOrCreateAccount(
	customerRepo repository.CustomerRepository,
	buyerCompany *entity.Company,
	contactEmail string,
) (*entity.Customer, error) {
	existing, err := customerRepo.GetByBuyerCompany(buyerCompany.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	now := time.Now()
	account := &entity.Customer{
		ID:             uuid.New().String(),
		BuyerCompanyID: buyerCompany.ID,
		Name:           buyerCompany.Name,
		Email:          contactEmail,
		TaxNumber:      buyerCompany.TaxNumber,
		Balance:        decimal.Zero,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := customerRepo.Create(account); err != nil {
		// Carrera benigna: otro checkout del mismo comprador pudo crearla.
		if err == domain.ErrDuplicate {
			return customerRepo.GetByBuyerCompany(buyerCompany.ID)
		}
		return nil, err
	}
	return account, nil
}
