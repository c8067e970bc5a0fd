package accounting

import (
	"context"

	"github.com/ksilverstone/b2b/internal/application/dto"
	"github.com/ksilverstone/b2b/internal/domain/entity"
	"github.com/ksilverstone/b2b/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios de cartera (el registro de un pago debe asentar y actualizar
// el saldo atómicamente).
type TxRunner interface {
	RunLedger(ctx context.Context, fn func(
		customerRepo repository.CustomerRepository,
		txnRepo repository.TransactionRepository,
	) error) error
}

// StatementPDFGenerator genera la representación en PDF de un extracto de
// cuenta. Lo implementa infrastructure/pdf con Maroto.
type StatementPDFGenerator interface {
	GenerateStatementPDF(ctx context.Context, customer *entity.Customer, transactions []dto.TransactionResponse) ([]byte, error)
}
