package repository

import (
	"time"

	"github.com/ksilverstone/b2b/internal/domain/entity"
)

// TransactionRepository define el puerto de persistencia para los asientos
// de cartera. Solo inserción y lectura: los asientos son inmutables.
type TransactionRepository interface {
	Create(tx *entity.CustomerTransaction) error
	// ListByCustomer devuelve los asientos del cliente ordenados por fecha
	// ascendente (el extracto reproduce el saldo corriente en ese orden).
	ListByCustomer(customerID string) ([]*entity.CustomerTransaction, error)
	LastTransactionDate(customerID string) (*time.Time, error)
}
