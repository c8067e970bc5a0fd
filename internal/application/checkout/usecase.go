// Package checkout es el orquestador que convierte un carrito activo en un
// pedido persistido: valida inventario, crea pedido y líneas, asienta la
// cartera y cierra el carrito — todo como una sola unidad lógica.
//
// Fases: Collecting (carrito activo) → Validating → Committing → Closed.
// Cualquier fallo deja Aborted: el carrito sigue Active y ningún efecto de
// Committing queda persistido (rollback completo de la transacción).
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ksilverstone/b2b/internal/application/dto"
	"github.com/ksilverstone/b2b/internal/application/inventory"
	"github.com/ksilverstone/b2b/internal/application/ledger"
	"github.com/ksilverstone/b2b/internal/domain"
	"github.com/ksilverstone/b2b/internal/domain/entity"
	"github.com/ksilverstone/b2b/internal/domain/repository"
)

// UseCase orquesta el checkout.
type UseCase struct {
	txRunner     TxRunner
	companyRepo  repository.CompanyRepository
	customerRepo repository.CustomerRepository
	guard        *inventory.StockGuard
	ledger       *ledger.Ledger
}

// NewUseCase construye el orquestador.
func NewUseCase(
	txRunner TxRunner,
	companyRepo repository.CompanyRepository,
	customerRepo repository.CustomerRepository,
	guard *inventory.StockGuard,
	ldg *ledger.Ledger,
) *UseCase {
	return &UseCase{
		txRunner:     txRunner,
		companyRepo:  companyRepo,
		customerRepo: customerRepo,
		guard:        guard,
		ledger:       ldg,
	}
}

// Checkout convierte el carrito en pedido. companyID/userID vienen del
// token, resueltos una vez en el borde HTTP: nada de identidad ambiente.
//
// Una vez iniciada la fase de commit no hay cancelación parcial: corre
// hasta el final o se revierte completa.
func (uc *UseCase) Checkout(ctx context.Context, companyID, userID, cartID string) (*dto.CheckoutResponse, error) {
	if cartID == "" {
		return nil, domain.ErrInvalidInput
	}
	// Comprador (fuera de la tx, solo lectura).
	buyerCompany, err := uc.companyRepo.GetByID(companyID)
	if err != nil {
		return nil, err
	}
	if buyerCompany == nil {
		return nil, domain.ErrMissingCounterparty
	}
	if !buyerCompany.IsBuyer {
		return nil, domain.ErrForbidden
	}

	// Cuenta de cartera del comprador, aprovisionada en su primer pedido.
	// Se resuelve ANTES de la transacción SERIALIZABLE: una violación de
	// unicidad dentro de ella abortaría toda la transacción y la
	// recuperación de la carrera benigna no podría releer la ganadora.
	customer, err := uc.ledger.FindOrCreateAccount(uc.customerRepo, buyerCompany, buyerCompany.Email)
	if err != nil {
		return nil, err
	}

	var out *dto.CheckoutResponse
	err = uc.txRunner.RunCheckout(ctx, func(
		cartRepo repository.CartRepository,
		productRepo repository.ProductRepository,
		customerRepo repository.CustomerRepository,
		txnRepo repository.TransactionRepository,
		orderRepo repository.OrderRepository,
	) error {
		// ── Validating ──────────────────────────────────────────────────
		cart, err := cartRepo.GetWithItems(cartID)
		if err != nil {
			return err
		}
		if cart == nil {
			return domain.ErrNotFound
		}
		if !cart.IsActive() {
			return domain.ErrConflict
		}
		if len(cart.Items) == 0 {
			return domain.ErrEmptyCart
		}
		if cart.SellerCompanyID == nil {
			return domain.ErrMissingCounterparty
		}
		if cart.CustomerID != customer.ID {
			return domain.ErrForbidden
		}

		// Verificación de stock por línea, nombrando el producto ofensor.
		for _, it := range cart.Items {
			product, err := productRepo.GetByID(it.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrNotFound
			}
			if product.Stock < it.Quantity {
				return &domain.StockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   it.Quantity,
					Available:   product.Stock,
				}
			}
		}

		// ── Committing (todo o nada) ────────────────────────────────────
		now := time.Now()
		total := decimal.Zero
		for _, it := range cart.Items {
			total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}

		order := &entity.CustomerOrder{
			ID:              uuid.New().String(),
			OrderNumber:     fmt.Sprintf("SO-%s", now.Format("20060102150405")),
			DocumentType:    entity.DocumentTypeOrder,
			CustomerID:      customer.ID,
			BuyerCompanyID:  buyerCompany.ID,
			SellerCompanyID: cart.SellerCompanyID,
			OrderDate:       now,
			TotalAmount:     total,
			Status:          entity.OrderStatusPending,
			ItemCount:       len(cart.Items),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := orderRepo.Create(order); err != nil {
			return err
		}

		// Líneas en orden de inserción: LineNo 1-based, snapshots del
		// producto y descuento de stock vía el guard (lock de fila).
		for i, it := range cart.Items {
			product, err := uc.guard.ReserveInTx(productRepo, it.ProductID, it.Quantity)
			if err != nil {
				return err
			}
			productID := product.ID
			line := &entity.CustomerOrderItem{
				ID:           uuid.New().String(),
				OrderID:      order.ID,
				LineNo:       i + 1,
				ProductID:    &productID,
				ProductName:  product.Name,
				SKU:          product.SKU,
				Unit:         product.Unit,
				Quantity:     it.Quantity,
				UnitPrice:    it.UnitPrice,
				DiscountRate: decimal.Zero,
				TaxRate:      entity.DefaultTaxRate,
				CreatedAt:    now,
			}
			line.ComputeAmounts()
			if err := orderRepo.CreateItem(line); err != nil {
				return err
			}
		}

		// Asiento de cartera: el pedido debita el total.
		if _, err := uc.ledger.PostInTx(customerRepo, txnRepo, ledger.PostInput{
			CustomerID:  customer.ID,
			DocumentNo:  order.OrderNumber,
			Description: "Pedido",
			Debit:       total,
			Credit:      decimal.Zero,
			Type:        entity.TransactionTypeOrder,
			Date:        now,
		}); err != nil {
			return err
		}

		// Cierre del carrito: Active → Ordered, exigiendo el estado previo.
		if err := cartRepo.UpdateStatus(cart.ID, entity.CartStatusActive, entity.CartStatusOrdered); err != nil {
			return err
		}

		out = &dto.CheckoutResponse{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Total:       total,
			RedirectURL: "/orders/my",
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
