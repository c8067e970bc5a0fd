package checkout_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksilverstone/b2b/internal/application/checkout"
	"github.com/ksilverstone/b2b/internal/application/inventory"
	"github.com/ksilverstone/b2b/internal/application/ledger"
	"github.com/ksilverstone/b2b/internal/domain"
	"github.com/ksilverstone/b2b/internal/domain/entity"
	"github.com/ksilverstone/b2b/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Store en memoria + TxRunner con semántica de rollback: el callback corre
// sobre una copia del estado y solo un retorno sin error la publica. Así los
// tests verifican el "todo o nada" real del checkout.
// ──────────────────────────────────────────────────────────────────────────────

type store struct {
	companies map[string]*entity.Company
	customers map[string]*entity.Customer
	products  map[string]*entity.Product
	carts     map[string]*entity.Cart
	cartItems map[string]*entity.CartItem
	orders    map[string]*entity.CustomerOrder
	lines     []*entity.CustomerOrderItem
	txns      []*entity.CustomerTransaction
}

func newStore() *store {
	return &store{
		companies: map[string]*entity.Company{},
		customers: map[string]*entity.Customer{},
		products:  map[string]*entity.Product{},
		carts:     map[string]*entity.Cart{},
		cartItems: map[string]*entity.CartItem{},
		orders:    map[string]*entity.CustomerOrder{},
	}
}

func (s *store) clone() *store {
	c := newStore()
	for k, v := range s.companies {
		cp := *v
		c.companies[k] = &cp
	}
	for k, v := range s.customers {
		cp := *v
		c.customers[k] = &cp
	}
	for k, v := range s.products {
		cp := *v
		c.products[k] = &cp
	}
	for k, v := range s.carts {
		cp := *v
		c.carts[k] = &cp
	}
	for k, v := range s.cartItems {
		cp := *v
		c.cartItems[k] = &cp
	}
	for k, v := range s.orders {
		cp := *v
		c.orders[k] = &cp
	}
	c.lines = append(c.lines, s.lines...)
	c.txns = append(c.txns, s.txns...)
	return c
}

func (s *store) replaceWith(other *store) { *s = *other }

// ── Repos sobre el store ──────────────────────────────────────────────────────

type memCompanyRepo struct{ s *store }

func (r memCompanyRepo) Create(c *entity.Company) error { r.s.companies[c.ID] = c; return nil }
func (r memCompanyRepo) GetByID(id string) (*entity.Company, error) {
	return r.s.companies[id], nil
}
func (r memCompanyRepo) List(int, int) ([]*entity.Company, error) { return nil, nil }
func (r memCompanyRepo) Update(*entity.Company) error             { return nil }

type memCustomerRepo struct{ s *store }

func (r memCustomerRepo) Create(c *entity.Customer) error {
	for _, existing := range r.s.customers {
		if existing.BuyerCompanyID == c.BuyerCompanyID {
			return domain.ErrDuplicate
		}
	}
	r.s.customers[c.ID] = c
	return nil
}
func (r memCustomerRepo) GetByID(id string) (*entity.Customer, error)      { return r.s.customers[id], nil }
func (r memCustomerRepo) GetForUpdate(id string) (*entity.Customer, error) { return r.s.customers[id], nil }
func (r memCustomerRepo) GetByBuyerCompany(buyerCompanyID string) (*entity.Customer, error) {
	for _, c := range r.s.customers {
		if c.BuyerCompanyID == buyerCompanyID {
			return c, nil
		}
	}
	return nil, nil
}
func (r memCustomerRepo) List(int, int) ([]*entity.Customer, error) { return nil, nil }
func (r memCustomerRepo) Update(*entity.Customer) error             { return nil }
func (r memCustomerRepo) UpdateBalance(id string, balance decimal.Decimal) error {
	c := r.s.customers[id]
	if c == nil {
		return domain.ErrNotFound
	}
	c.Balance = balance
	return nil
}

type memProductRepo struct{ s *store }

func (r memProductRepo) Create(p *entity.Product) error              { r.s.products[p.ID] = p; return nil }
func (r memProductRepo) GetByID(id string) (*entity.Product, error)  { return r.s.products[id], nil }
func (r memProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.s.products[id], nil
}
func (r memProductRepo) GetByCompanyAndSKU(string, string) (*entity.Product, error) {
	return nil, nil
}
func (r memProductRepo) ListBySeller(string, int, int) ([]*entity.Product, error) { return nil, nil }
func (r memProductRepo) ListActive(int, int) ([]*entity.Product, error)           { return nil, nil }
func (r memProductRepo) Update(*entity.Product) error                             { return nil }
func (r memProductRepo) UpdateStock(id string, stock int) error {
	p := r.s.products[id]
	if p == nil {
		return domain.ErrNotFound
	}
	p.Stock = stock
	return nil
}
func (r memProductRepo) Delete(string) error { return nil }

type memCartRepo struct{ s *store }

func (r memCartRepo) Create(c *entity.Cart) error             { r.s.carts[c.ID] = c; return nil }
func (r memCartRepo) GetByID(id string) (*entity.Cart, error) { return r.s.carts[id], nil }
func (r memCartRepo) GetWithItems(id string) (*entity.Cart, error) {
	cart := r.s.carts[id]
	if cart == nil {
		return nil, nil
	}
	cp := *cart
	cp.Items = nil
	for _, it := range r.s.cartItems {
		if it.CartID == id {
			cp.Items = append(cp.Items, it)
		}
	}
	// Orden de inserción, como el adaptador real (created_at, id).
	sort.Slice(cp.Items, func(i, j int) bool {
		if cp.Items[i].CreatedAt.Equal(cp.Items[j].CreatedAt) {
			return cp.Items[i].ID < cp.Items[j].ID
		}
		return cp.Items[i].CreatedAt.Before(cp.Items[j].CreatedAt)
	})
	return &cp, nil
}
func (r memCartRepo) FindActive(string, *string) (*entity.Cart, error) { return nil, nil }
func (r memCartRepo) Update(*entity.Cart) error                        { return nil }
func (r memCartRepo) UpdateStatus(id, expect, status string) error {
	cart := r.s.carts[id]
	if cart == nil || cart.Status != expect {
		return domain.ErrConflict
	}
	cart.Status = status
	return nil
}
func (r memCartRepo) CreateItem(it *entity.CartItem) error { r.s.cartItems[it.ID] = it; return nil }
func (r memCartRepo) GetItem(id string) (*entity.CartItem, error) {
	return r.s.cartItems[id], nil
}
func (r memCartRepo) FindItemByProduct(string, string) (*entity.CartItem, error) { return nil, nil }
func (r memCartRepo) UpdateItem(*entity.CartItem) error                          { return nil }
func (r memCartRepo) DeleteItem(string) error                                    { return nil }

type memTxnRepo struct{ s *store }

func (r memTxnRepo) Create(t *entity.CustomerTransaction) error {
	r.s.txns = append(r.s.txns, t)
	return nil
}
func (r memTxnRepo) ListByCustomer(string) ([]*entity.CustomerTransaction, error) {
	return r.s.txns, nil
}
func (r memTxnRepo) LastTransactionDate(string) (*time.Time, error) { return nil, nil }

type memOrderRepo struct{ s *store }

func (r memOrderRepo) Create(o *entity.CustomerOrder) error { r.s.orders[o.ID] = o; return nil }
func (r memOrderRepo) CreateItem(it *entity.CustomerOrderItem) error {
	r.s.lines = append(r.s.lines, it)
	return nil
}
func (r memOrderRepo) GetByID(id string) (*entity.CustomerOrder, error) { return r.s.orders[id], nil }
func (r memOrderRepo) GetItems(orderID string) ([]*entity.CustomerOrderItem, error) {
	var out []*entity.CustomerOrderItem
	for _, l := range r.s.lines {
		if l.OrderID == orderID {
			out = append(out, l)
		}
	}
	return out, nil
}
func (r memOrderRepo) ListByBuyerCompany(string, int, int) ([]*entity.CustomerOrder, error) {
	return nil, nil
}
func (r memOrderRepo) ListBySellerCompany(string, int, int) ([]*entity.CustomerOrder, error) {
	return nil, nil
}
func (r memOrderRepo) ListByCustomer(string, int, int) ([]*entity.CustomerOrder, error) {
	return nil, nil
}
func (r memOrderRepo) UpdateStatus(id, expect, status string) error {
	o := r.s.orders[id]
	if o == nil || o.Status != expect {
		return domain.ErrConflict
	}
	o.Status = status
	return nil
}
func (r memOrderRepo) CreateStatusHistory(*entity.OrderStatusHistory) error { return nil }
func (r memOrderRepo) ListStatusHistory(string) ([]*entity.OrderStatusHistory, error) {
	return nil, nil
}

// memTxRunner publica la copia solo si el callback termina sin error.
type memTxRunner struct{ s *store }

func (r memTxRunner) RunCheckout(_ context.Context, fn func(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	txnRepo repository.TransactionRepository,
	orderRepo repository.OrderRepository,
) error) error {
	work := r.s.clone()
	err := fn(memCartRepo{work}, memProductRepo{work}, memCustomerRepo{work}, memTxnRepo{work}, memOrderRepo{work})
	if err != nil {
		return err // rollback: el store original queda intacto
	}
	r.s.replaceWith(work)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: comprador, vendedor, dos productos y un carrito listo.
// ──────────────────────────────────────────────────────────────────────────────

const (
	buyerID  = "buyer-co"
	sellerID = "seller-co"
	userID   = "user-1"
	cartID   = "cart-1"
)

func fixture() *store {
	s := newStore()
	s.companies[buyerID] = &entity.Company{ID: buyerID, Name: "Compras SAS", IsBuyer: true}
	s.companies[sellerID] = &entity.Company{ID: sellerID, Name: "Ventas SAS", IsSeller: true}
	s.customers["cust-1"] = &entity.Customer{ID: "cust-1", BuyerCompanyID: buyerID, Balance: decimal.Zero}
	s.products["prod-a"] = &entity.Product{
		ID: "prod-a", SellerCompanyID: sellerID, SKU: "A-1", Name: "Producto A",
		Unit: "unidad", Price: decimal.NewFromInt(100), Stock: 50, IsActive: true,
	}
	s.products["prod-b"] = &entity.Product{
		ID: "prod-b", SellerCompanyID: sellerID, SKU: "B-1", Name: "Producto B",
		Unit: "unidad", Price: decimal.NewFromInt(50), Stock: 3, IsActive: true,
	}
	seller := sellerID
	s.carts[cartID] = &entity.Cart{
		ID: cartID, CustomerID: "cust-1", SellerCompanyID: &seller,
		Status: entity.CartStatusActive,
	}
	return s
}

func addLine(s *store, id, productID string, qty int, unitPrice int64) {
	s.cartItems[id] = &entity.CartItem{
		ID: id, CartID: cartID, ProductID: productID,
		Quantity: qty, UnitPrice: decimal.NewFromInt(unitPrice),
		CreatedAt: time.Now(),
	}
}

func newCheckoutUC(s *store) *checkout.UseCase {
	return checkout.NewUseCase(memTxRunner{s}, memCompanyRepo{s}, memCustomerRepo{s},
		inventory.NewStockGuard(), ledger.New())
}

// ──────────────────────────────────────────────────────────────────────────────
// Camino feliz: pedido + líneas + stock + asiento + cierre del carrito.
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckout_CaminoFeliz(t *testing.T) {
	s := fixture()
	addLine(s, "li-1", "prod-a", 3, 100) // 300
	addLine(s, "li-2", "prod-b", 1, 50)  // 50
	uc := newCheckoutUC(s)

	resp, err := uc.Checkout(context.Background(), buyerID, userID, cartID)
	require.NoError(t, err)

	// Total = Σ unitario * cantidad del carrito.
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(350)), "total 300+50, fue %s", resp.Total)
	assert.Regexp(t, `^SO-\d{14}$`, resp.OrderNumber, "número SO-<yyyyMMddHHmmss>")
	assert.Equal(t, "/orders/my", resp.RedirectURL)

	// Pedido persistido en Pending con las líneas en orden de inserción.
	order := s.orders[resp.OrderID]
	require.NotNil(t, order)
	assert.Equal(t, entity.OrderStatusPending, order.Status)
	assert.Equal(t, entity.DocumentTypeOrder, order.DocumentType)
	assert.Equal(t, 2, order.ItemCount)
	require.Len(t, s.lines, 2)
	assert.Equal(t, 1, s.lines[0].LineNo)
	assert.Equal(t, "Producto A", s.lines[0].ProductName, "snapshot del nombre")
	assert.Equal(t, 2, s.lines[1].LineNo)

	// Importes de línea: net 300, tax 60, total 360 para la línea A.
	assert.True(t, s.lines[0].TaxAmount.Equal(decimal.NewFromInt(60)),
		"IVA 20%% de 300, fue %s", s.lines[0].TaxAmount)

	// Stock descontado.
	assert.Equal(t, 47, s.products["prod-a"].Stock)
	assert.Equal(t, 2, s.products["prod-b"].Stock)

	// Asiento de cartera: débito por el total, snapshot del saldo.
	require.Len(t, s.txns, 1)
	assert.Equal(t, entity.TransactionTypeOrder, s.txns[0].TransactionType)
	assert.True(t, s.txns[0].Debit.Equal(decimal.NewFromInt(350)))
	assert.True(t, s.customers["cust-1"].Balance.Equal(decimal.NewFromInt(350)),
		"el saldo del cliente refleja el débito del pedido")

	// Carrito cerrado.
	assert.Equal(t, entity.CartStatusOrdered, s.carts[cartID].Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Todo o nada: un fallo de stock en la línea B no deja rastro de la línea A.
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckout_StockInsuficienteRevierteTodo(t *testing.T) {
	s := fixture()
	addLine(s, "li-1", "prod-a", 3, 100)
	addLine(s, "li-2", "prod-b", 10, 50) // stock de B es 3
	uc := newCheckoutUC(s)

	_, err := uc.Checkout(context.Background(), buyerID, userID, cartID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.StockError
	require.ErrorAs(t, err, &stockErr, "el error nombra el producto ofensor")
	assert.Equal(t, "prod-b", stockErr.ProductID)
	assert.Equal(t, 10, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)

	// Nada persistió: stock de A intacto, sin pedido, sin asiento, carrito Active.
	assert.Equal(t, 50, s.products["prod-a"].Stock, "rollback: stock de A sin tocar")
	assert.Empty(t, s.orders)
	assert.Empty(t, s.txns)
	assert.True(t, s.customers["cust-1"].Balance.IsZero())
	assert.Equal(t, entity.CartStatusActive, s.carts[cartID].Status,
		"el carrito sigue Active y el comprador puede corregirlo")
}

// ──────────────────────────────────────────────────────────────────────────────
// Validaciones previas al commit.
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckout_CarritoVacio(t *testing.T) {
	s := fixture()
	uc := newCheckoutUC(s)

	_, err := uc.Checkout(context.Background(), buyerID, userID, cartID)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestCheckout_SinVendedorAsignado(t *testing.T) {
	s := fixture()
	s.carts[cartID].SellerCompanyID = nil
	addLine(s, "li-1", "prod-a", 1, 100)
	uc := newCheckoutUC(s)

	_, err := uc.Checkout(context.Background(), buyerID, userID, cartID)
	assert.ErrorIs(t, err, domain.ErrMissingCounterparty,
		"un carrito neutro no puede pasar por checkout")
}

func TestCheckout_CarritoYaOrdenado(t *testing.T) {
	s := fixture()
	s.carts[cartID].Status = entity.CartStatusOrdered
	addLine(s, "li-1", "prod-a", 1, 100)
	uc := newCheckoutUC(s)

	_, err := uc.Checkout(context.Background(), buyerID, userID, cartID)
	assert.ErrorIs(t, err, domain.ErrConflict,
		"un segundo checkout del mismo carrito no duplica el pedido")
}

func TestCheckout_CarritoInexistente(t *testing.T) {
	s := fixture()
	uc := newCheckoutUC(s)

	_, err := uc.Checkout(context.Background(), buyerID, userID, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCheckout_EmpresaNoCompradora(t *testing.T) {
	s := fixture()
	addLine(s, "li-1", "prod-a", 1, 100)
	uc := newCheckoutUC(s)

	_, err := uc.Checkout(context.Background(), sellerID, userID, cartID)
	assert.ErrorIs(t, err, domain.ErrForbidden,
		"solo una empresa compradora coloca pedidos")
}

func TestCheckout_CarritoDeOtroCliente(t *testing.T) {
	s := fixture()
	addLine(s, "li-1", "prod-a", 1, 100)
	// Otra empresa compradora con su propia cuenta.
	s.companies["other-co"] = &entity.Company{ID: "other-co", Name: "Otra SAS", IsBuyer: true}
	s.customers["cust-2"] = &entity.Customer{ID: "cust-2", BuyerCompanyID: "other-co"}
	uc := newCheckoutUC(s)

	_, err := uc.Checkout(context.Background(), "other-co", userID, cartID)
	assert.ErrorIs(t, err, domain.ErrForbidden,
		"el carrito pertenece a otro comprador")
}

// La cuenta de cartera se aprovisiona ANTES de la transacción del checkout:
// un checkout que aborta no revierte la cuenta (y una carrera benigna de
// aprovisionamiento nunca aborta la transacción SERIALIZABLE).
func TestCheckout_AprovisionaCuentaFueraDeLaTransaccion(t *testing.T) {
	s := fixture()
	s.companies["nueva-co"] = &entity.Company{ID: "nueva-co", Name: "Nueva SAS", Email: "x@nueva.co", IsBuyer: true}
	addLine(s, "li-1", "prod-a", 1, 100)
	uc := newCheckoutUC(s)

	// El carrito pertenece a cust-1, así que este checkout aborta dentro
	// de la transacción con ErrForbidden.
	_, err := uc.Checkout(context.Background(), "nueva-co", userID, cartID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Pero la cuenta quedó aprovisionada: se creó fuera de la transacción.
	var provisioned *entity.Customer
	for _, c := range s.customers {
		if c.BuyerCompanyID == "nueva-co" {
			provisioned = c
		}
	}
	require.NotNil(t, provisioned, "la cuenta sobrevive al checkout abortado")
	assert.True(t, provisioned.Balance.IsZero())
	assert.Empty(t, s.txns, "sin checkout exitoso no hay asientos")
}
