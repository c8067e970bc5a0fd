// Package accounting expone las lecturas y operaciones de cartera: listado
// de cuentas, extracto con saldo corriente, registro de pagos y
// exportación del extracto a PDF.
package accounting

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ksilverstone/b2b/internal/application/dto"
	"github.com/ksilverstone/b2b/internal/application/ledger"
	"github.com/ksilverstone/b2b/internal/domain"
	"github.com/ksilverstone/b2b/internal/domain/entity"
	"github.com/ksilverstone/b2b/internal/domain/repository"
)

// UseCase casos de uso de cartera.
type UseCase struct {
	customerRepo repository.CustomerRepository
	txnRepo      repository.TransactionRepository
	txRunner     TxRunner
	ledger       *ledger.Ledger
	pdfGen       StatementPDFGenerator
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	customerRepo repository.CustomerRepository,
	txnRepo repository.TransactionRepository,
	txRunner TxRunner,
	ldg *ledger.Ledger,
	pdfGen StatementPDFGenerator,
) *UseCase {
	return &UseCase{
		customerRepo: customerRepo,
		txnRepo:      txnRepo,
		txRunner:     txRunner,
		ledger:       ldg,
		pdfGen:       pdfGen,
	}
}

// Accounts lista las cuentas con saldo y fecha del último movimiento.
func (uc *UseCase) Accounts(limit, offset int) ([]dto.AccountResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	customers, err := uc.customerRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AccountResponse, 0, len(customers))
	for _, c := range customers {
		acc := toAccount(c)
		if last, err := uc.txnRepo.LastTransactionDate(c.ID); err == nil {
			acc.LastTransactionDate = last
		}
		out = append(out, acc)
	}
	return out, nil
}

// Statement devuelve el extracto: historial ordenado por fecha con el saldo
// snapshot de cada asiento. Reproducir los deltas débito-crédito en ese
// orden reconstruye cada saldo almacenado.
func (uc *UseCase) Statement(customerID string) (*dto.StatementResponse, error) {
	customer, err := uc.customerRepo.GetByID(customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	txns, err := uc.txnRepo.ListByCustomer(customerID)
	if err != nil {
		return nil, err
	}
	resp := &dto.StatementResponse{
		Account:      toAccount(customer),
		Transactions: make([]dto.TransactionResponse, 0, len(txns)),
	}
	for _, t := range txns {
		resp.Transactions = append(resp.Transactions, toTransaction(t))
	}
	return resp, nil
}

// RecordPayment registra un pago del cliente: asiento de crédito
// que reduce el saldo, dentro de una transacción.
func (uc *UseCase) RecordPayment(ctx context.Context, in dto.RecordPaymentRequest) (*dto.TransactionResponse, error) {
	if in.CustomerID == "" || !in.Amount.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	description := in.Description
	if description == "" {
		description = "Pago recibido"
	}
	var out dto.TransactionResponse
	err := uc.txRunner.RunLedger(ctx, func(
		customerRepo repository.CustomerRepository,
		txnRepo repository.TransactionRepository,
	) error {
		txn, err := uc.ledger.PostInTx(customerRepo, txnRepo, ledger.PostInput{
			CustomerID:  in.CustomerID,
			DocumentNo:  in.DocumentNo,
			Description: description,
			Debit:       decimal.Zero,
			Credit:      in.Amount,
			Type:        entity.TransactionTypePayment,
		})
		if err != nil {
			return err
		}
		out = toTransaction(txn)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// StatementPDF genera el extracto en PDF.
func (uc *UseCase) StatementPDF(ctx context.Context, customerID string) ([]byte, error) {
	customer, err := uc.customerRepo.GetByID(customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	txns, err := uc.txnRepo.ListByCustomer(customerID)
	if err != nil {
		return nil, err
	}
	rows := make([]dto.TransactionResponse, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, toTransaction(t))
	}
	return uc.pdfGen.GenerateStatementPDF(ctx, customer, rows)
}

func toAccount(c *entity.Customer) dto.AccountResponse {
	return dto.AccountResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		TaxNumber: c.TaxNumber,
		Balance:   c.Balance,
		IsActive:  c.IsActive,
	}
}

func toTransaction(t *entity.CustomerTransaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:              t.ID,
		TransactionDate: t.TransactionDate,
		DocumentNo:      t.DocumentNo,
		Description:     t.Description,
		TransactionType: t.TransactionType,
		Debit:           t.Debit,
		Credit:          t.Credit,
		Balance:         t.Balance,
	}
}
