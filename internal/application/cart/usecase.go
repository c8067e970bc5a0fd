// Package cart implementa el área de preparación previa al pedido: un
// carrito Active por par (cliente, vendedor), con líneas cuyo precio
// unitario se re-resuelve contra las bandas de volumen en cada cambio de
// cantidad.
package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ksilverstone/b2b/internal/application/dto"
	"github.com/ksilverstone/b2b/internal/application/ledger"
	"github.com/ksilverstone/b2b/internal/application/pricing"
	"github.com/ksilverstone/b2b/internal/domain"
	"github.com/ksilverstone/b2b/internal/domain/entity"
	"github.com/ksilverstone/b2b/internal/domain/repository"
)

// UseCase casos de uso del carrito.
type UseCase struct {
	cartRepo     repository.CartRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	companyRepo  repository.CompanyRepository
	resolver     *pricing.Resolver
	ledger       *ledger.Ledger
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	companyRepo repository.CompanyRepository,
	resolver *pricing.Resolver,
	ldg *ledger.Ledger,
) *UseCase {
	return &UseCase{
		cartRepo:     cartRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		companyRepo:  companyRepo,
		resolver:     resolver,
		ledger:       ldg,
	}
}

// resolveActingCustomer resuelve la cuenta de cartera del comprador que
// actúa, aprovisionándola si no existe (clave estable: empresa compradora).
func (uc *UseCase) resolveActingCustomer(companyID string) (*entity.Customer, error) {
	company, err := uc.companyRepo.GetByID(companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	if !company.IsBuyer {
		return nil, domain.ErrForbidden
	}
	return uc.ledger.FindOrCreateAccount(uc.customerRepo, company, company.Email)
}

// GetOrCreateActiveCart devuelve el único carrito Active del par
// (customer, seller), creándolo si no existe. Si hay un carrito Active
// neutro (sin vendedor, con ítems agregados antes de conocerlo), se
// reutiliza asignándole el vendedor en lugar de crear un duplicado.
func (uc *UseCase) GetOrCreateActiveCart(customerID string, sellerCompanyID *string) (*entity.Cart, error) {
	cart, err := uc.cartRepo.FindActive(customerID, sellerCompanyID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}
	if sellerCompanyID != nil {
		neutral, err := uc.cartRepo.FindActive(customerID, nil)
		if err != nil {
			return nil, err
		}
		if neutral != nil {
			neutral.SellerCompanyID = sellerCompanyID
			neutral.UpdatedAt = time.Now()
			if err := uc.cartRepo.Update(neutral); err != nil {
				return nil, err
			}
			return neutral, nil
		}
	}
	now := time.Now()
	cart = &entity.Cart{
		ID:              uuid.New().String(),
		CustomerID:      customerID,
		SellerCompanyID: sellerCompanyID,
		Status:          entity.CartStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.cartRepo.Create(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// AddToCart agrega quantity unidades del producto al carrito activo del par
// (comprador, vendedor del producto). Si la línea ya existe incrementa la
// cantidad; el precio unitario se re-resuelve con la cantidad RESULTANTE
// (el precio por volumen refleja el acumulado, no el delta).
func (uc *UseCase) AddToCart(companyID string, in dto.AddToCartRequest) (*dto.CartResponse, error) {
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	customer, err := uc.resolveActingCustomer(companyID)
	if err != nil {
		return nil, err
	}
	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, domain.ErrNotFound
	}

	cart, err := uc.GetOrCreateActiveCart(customer.ID, &product.SellerCompanyID)
	if err != nil {
		return nil, err
	}

	item, err := uc.cartRepo.FindItemByProduct(cart.ID, product.ID)
	if err != nil {
		return nil, err
	}
	targetQty := in.Quantity
	if item != nil {
		targetQty += item.Quantity
	}
	unitPrice := uc.resolver.ResolveUnitPrice(product, targetQty)

	if item == nil {
		item = &entity.CartItem{
			ID:        uuid.New().String(),
			CartID:    cart.ID,
			ProductID: product.ID,
			Quantity:  in.Quantity,
			UnitPrice: unitPrice,
			CreatedAt: time.Now(),
		}
		if err := uc.cartRepo.CreateItem(item); err != nil {
			return nil, err
		}
	} else {
		item.Quantity = targetQty
		item.UnitPrice = unitPrice
		if err := uc.cartRepo.UpdateItem(item); err != nil {
			return nil, err
		}
	}
	return uc.toResponse(cart.ID)
}

// UpdateItemQuantity fija la cantidad de una línea. Pre-chequea el stock
// contra el catálogo actual (el cierre definitivo ocurre en el checkout) y
// re-resuelve el precio unitario con la nueva cantidad.
func (uc *UseCase) UpdateItemQuantity(companyID, itemID string, quantity int) (*dto.CartResponse, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	customer, err := uc.resolveActingCustomer(companyID)
	if err != nil {
		return nil, err
	}
	item, cart, err := uc.ownedActiveItem(customer.ID, itemID)
	if err != nil {
		return nil, err
	}
	product, err := uc.productRepo.GetByID(item.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.Stock < quantity {
		return nil, &domain.StockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   quantity,
			Available:   product.Stock,
		}
	}
	item.Quantity = quantity
	item.UnitPrice = uc.resolver.ResolveUnitPrice(product, quantity)
	if err := uc.cartRepo.UpdateItem(item); err != nil {
		return nil, err
	}
	return uc.toResponse(cart.ID)
}

// RemoveItem borra la línea. Sobre una línea ya removida devuelve
// ErrNotFound (idempotente en el borde de la API).
func (uc *UseCase) RemoveItem(companyID, itemID string) (*dto.CartResponse, error) {
	customer, err := uc.resolveActingCustomer(companyID)
	if err != nil {
		return nil, err
	}
	item, cart, err := uc.ownedActiveItem(customer.ID, itemID)
	if err != nil {
		return nil, err
	}
	if err := uc.cartRepo.DeleteItem(item.ID); err != nil {
		return nil, err
	}
	return uc.toResponse(cart.ID)
}

// GetActiveCart devuelve el carrito activo del comprador con el vendedor
// indicado (nil = neutro). Si no hay, responde un carrito vacío sin crear.
func (uc *UseCase) GetActiveCart(companyID string, sellerCompanyID *string) (*dto.CartResponse, error) {
	customer, err := uc.resolveActingCustomer(companyID)
	if err != nil {
		return nil, err
	}
	cart, err := uc.cartRepo.FindActive(customer.ID, sellerCompanyID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return &dto.CartResponse{
			CustomerID: customer.ID,
			Status:     entity.CartStatusActive,
			Items:      []dto.CartItemResponse{},
			Total:      decimal.Zero,
		}, nil
	}
	return uc.toResponse(cart.ID)
}

// ownedActiveItem carga la línea y valida pertenencia y estado:
// toda mutación exige carrito Active y del cliente que actúa.
func (uc *UseCase) ownedActiveItem(customerID, itemID string) (*entity.CartItem, *entity.Cart, error) {
	item, err := uc.cartRepo.GetItem(itemID)
	if err != nil {
		return nil, nil, err
	}
	if item == nil {
		return nil, nil, domain.ErrNotFound
	}
	cart, err := uc.cartRepo.GetByID(item.CartID)
	if err != nil {
		return nil, nil, err
	}
	if cart == nil {
		return nil, nil, domain.ErrNotFound
	}
	if cart.CustomerID != customerID || !cart.IsActive() {
		return nil, nil, domain.ErrForbidden
	}
	return item, cart, nil
}

func (uc *UseCase) toResponse(cartID string) (*dto.CartResponse, error) {
	cart, err := uc.cartRepo.GetWithItems(cartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, domain.ErrNotFound
	}
	resp := &dto.CartResponse{
		ID:         cart.ID,
		CustomerID: cart.CustomerID,
		Status:     cart.Status,
		Items:      make([]dto.CartItemResponse, 0, len(cart.Items)),
		Total:      decimal.Zero,
		UpdatedAt:  cart.UpdatedAt,
	}
	if cart.SellerCompanyID != nil {
		resp.SellerCompanyID = *cart.SellerCompanyID
	}
	for _, it := range cart.Items {
		lineTotal := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		name := ""
		if p, err := uc.productRepo.GetByID(it.ProductID); err == nil && p != nil {
			name = p.Name
		}
		resp.Items = append(resp.Items, dto.CartItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   lineTotal,
		})
		resp.Total = resp.Total.Add(lineTotal)
	}
	return resp, nil
}
