// Package order implementa la gestión de pedidos posterior al checkout:
// historiales de compra/venta, detalle con líneas y el workflow de estados
// Pending → Approved|Cancelled → ... → Completed.
package order

import (
	"context"
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

// UseCase casos de uso de pedidos.
type UseCase struct {
	orderRepo repository.OrderRepository
	txRunner  TxRunner
	guard     *inventory.StockGuard
	ledger    *ledger.Ledger
}

// NewUseCase construye el caso de uso.
func NewUseCase(orderRepo repository.OrderRepository, txRunner TxRunner, guard *inventory.StockGuard, ldg *ledger.Ledger) *UseCase {
	return &UseCase{orderRepo: orderRepo, txRunner: txRunner, guard: guard, ledger: ldg}
}

// MyOrders lista los pedidos de la empresa compradora, más reciente primero.
func (uc *UseCase) MyOrders(buyerCompanyID string, limit, offset int) ([]dto.OrderResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	orders, err := uc.orderRepo.ListByBuyerCompany(buyerCompanyID, limit, offset)
	if err != nil {
		return nil, err
	}
	return toResponses(orders), nil
}

// IncomingOrders lista los pedidos recibidos por la empresa vendedora.
func (uc *UseCase) IncomingOrders(sellerCompanyID string, limit, offset int) ([]dto.OrderResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	orders, err := uc.orderRepo.ListBySellerCompany(sellerCompanyID, limit, offset)
	if err != nil {
		return nil, err
	}
	return toResponses(orders), nil
}

// GetOrder devuelve el pedido con sus líneas. Solo el comprador o el
// vendedor del pedido pueden verlo.
func (uc *UseCase) GetOrder(companyID, orderID string) (*dto.OrderDetailResponse, error) {
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if !belongsTo(order, companyID) {
		return nil, domain.ErrForbidden
	}
	items, err := uc.orderRepo.GetItems(orderID)
	if err != nil {
		return nil, err
	}
	resp := &dto.OrderDetailResponse{
		Order: toResponse(order),
		Items: make([]dto.OrderItemResponse, 0, len(items)),
	}
	for _, it := range items {
		line := dto.OrderItemResponse{
			LineNo:       it.LineNo,
			ProductName:  it.ProductName,
			SKU:          it.SKU,
			Unit:         it.Unit,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			DiscountRate: it.DiscountRate,
			TaxRate:      it.TaxRate,
			NetAmount:    it.NetAmount,
			TaxAmount:    it.TaxAmount,
			TotalAmount:  it.TotalAmount,
		}
		// Referencia débil: si el producto fue borrado del catálogo, la
		// línea sigue siendo legible gracias a los snapshots.
		if it.ProductID != nil {
			line.ProductID = *it.ProductID
		}
		resp.Items = append(resp.Items, line)
	}
	return resp, nil
}

// UpdateStatus aplica una transición del workflow. Solo el vendedor del
// pedido decide Approved/Completed/Cancelled. Cancelar un pedido no
// completado devuelve el stock y asienta un crédito compensatorio por el
// total, en una sola transacción; cada cambio queda en el historial.
func (uc *UseCase) UpdateStatus(ctx context.Context, companyID, userID, orderID string, in dto.UpdateOrderStatusRequest) error {
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return domain.ErrNotFound
	}
	if order.SellerCompanyID == nil || *order.SellerCompanyID != companyID {
		return domain.ErrForbidden
	}
	if !order.CanTransition(in.Status) {
		return domain.ErrConflict
	}

	return uc.txRunner.RunOrder(ctx, func(
		productRepo repository.ProductRepository,
		customerRepo repository.CustomerRepository,
		txnRepo repository.TransactionRepository,
		orderRepo repository.OrderRepository,
	) error {
		// Reclama la transición ANTES de los efectos: el compare-and-set
		// sobre el estado leído detecta una transición concurrente ya
		// aplicada (ErrConflict) y aborta sin devolver stock ni asentar
		// crédito por segunda vez.
		if err := orderRepo.UpdateStatus(order.ID, order.Status, in.Status); err != nil {
			return err
		}

		if in.Status == entity.OrderStatusCancelled {
			items, err := orderRepo.GetItems(order.ID)
			if err != nil {
				return err
			}
			for _, it := range items {
				if it.ProductID == nil {
					continue
				}
				if err := uc.guard.ReleaseInTx(productRepo, *it.ProductID, it.Quantity); err != nil {
					return err
				}
			}
			if _, err := uc.ledger.PostInTx(customerRepo, txnRepo, ledger.PostInput{
				CustomerID:  order.CustomerID,
				DocumentNo:  order.OrderNumber,
				Description: "Anulación de pedido",
				Debit:       decimal.Zero,
				Credit:      order.TotalAmount,
				Type:        entity.TransactionTypeReversal,
			}); err != nil {
				return err
			}
		}

		return orderRepo.CreateStatusHistory(&entity.OrderStatusHistory{
			ID:         uuid.New().String(),
			OrderID:    order.ID,
			FromStatus: order.Status,
			ToStatus:   in.Status,
			ChangedBy:  userID,
			Note:       in.Note,
			CreatedAt:  time.Now(),
		})
	})
}

// StatusHistory devuelve los cambios de estado del pedido.
func (uc *UseCase) StatusHistory(companyID, orderID string) ([]dto.OrderStatusHistoryResponse, error) {
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if !belongsTo(order, companyID) {
		return nil, domain.ErrForbidden
	}
	history, err := uc.orderRepo.ListStatusHistory(orderID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderStatusHistoryResponse, 0, len(history))
	for _, h := range history {
		out = append(out, dto.OrderStatusHistoryResponse{
			FromStatus: h.FromStatus,
			ToStatus:   h.ToStatus,
			ChangedBy:  h.ChangedBy,
			Note:       h.Note,
			CreatedAt:  h.CreatedAt,
		})
	}
	return out, nil
}

func belongsTo(order *entity.CustomerOrder, companyID string) bool {
	if order.BuyerCompanyID == companyID {
		return true
	}
	return order.SellerCompanyID != nil && *order.SellerCompanyID == companyID
}

func toResponse(o *entity.CustomerOrder) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		CustomerID:     o.CustomerID,
		BuyerCompanyID: o.BuyerCompanyID,
		OrderDate:      o.OrderDate,
		Status:         o.Status,
		TotalAmount:    o.TotalAmount,
		ItemCount:      o.ItemCount,
		Description:    o.Description,
	}
	if o.SellerCompanyID != nil {
		resp.SellerCompanyID = *o.SellerCompanyID
	}
	return resp
}

func toResponses(orders []*entity.CustomerOrder) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toResponse(o))
	}
	return out
}
