package order_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksilverstone/b2b/internal/application/dto"
	"github.com/ksilverstone/b2b/internal/application/inventory"
	"github.com/ksilverstone/b2b/internal/application/ledger"
	"github.com/ksilverstone/b2b/internal/application/order"
	"github.com/ksilverstone/b2b/internal/domain"
	"github.com/ksilverstone/b2b/internal/domain/entity"
	"github.com/ksilverstone/b2b/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria. El runner ejecuta el callback sobre los mismos repos del
// fixture: aquí interesa el efecto del workflow, no la atomicidad (esa la
// cubre el test del checkout).
// ──────────────────────────────────────────────────────────────────────────────

type fakeOrderRepo struct {
	orders  map[string]*entity.CustomerOrder
	items   map[string][]*entity.CustomerOrderItem
	history []*entity.OrderStatusHistory
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: map[string]*entity.CustomerOrder{},
		items:  map[string][]*entity.CustomerOrderItem{},
	}
}

func (r *fakeOrderRepo) Create(o *entity.CustomerOrder) error { r.orders[o.ID] = o; return nil }
func (r *fakeOrderRepo) CreateItem(it *entity.CustomerOrderItem) error {
	r.items[it.OrderID] = append(r.items[it.OrderID], it)
	return nil
}
func (r *fakeOrderRepo) GetByID(id string) (*entity.CustomerOrder, error) {
	o := r.orders[id]
	if o == nil {
		return nil, nil
	}
	// Copia fresca, como un repo real: lo leído no muta con el store.
	cp := *o
	return &cp, nil
}
func (r *fakeOrderRepo) GetItems(orderID string) ([]*entity.CustomerOrderItem, error) {
	return r.items[orderID], nil
}
func (r *fakeOrderRepo) ListByBuyerCompany(buyerCompanyID string, limit, offset int) ([]*entity.CustomerOrder, error) {
	var out []*entity.CustomerOrder
	for _, o := range r.orders {
		if o.BuyerCompanyID == buyerCompanyID {
			out = append(out, o)
		}
	}
	return out, nil
}
func (r *fakeOrderRepo) ListBySellerCompany(sellerCompanyID string, limit, offset int) ([]*entity.CustomerOrder, error) {
	var out []*entity.CustomerOrder
	for _, o := range r.orders {
		if o.SellerCompanyID != nil && *o.SellerCompanyID == sellerCompanyID {
			out = append(out, o)
		}
	}
	return out, nil
}
func (r *fakeOrderRepo) ListByCustomer(string, int, int) ([]*entity.CustomerOrder, error) {
	return nil, nil
}
func (r *fakeOrderRepo) UpdateStatus(id, expect, status string) error {
	o := r.orders[id]
	if o == nil || o.Status != expect {
		return domain.ErrConflict
	}
	o.Status = status
	return nil
}
func (r *fakeOrderRepo) CreateStatusHistory(h *entity.OrderStatusHistory) error {
	r.history = append(r.history, h)
	return nil
}
func (r *fakeOrderRepo) ListStatusHistory(orderID string) ([]*entity.OrderStatusHistory, error) {
	var out []*entity.OrderStatusHistory
	for _, h := range r.history {
		if h.OrderID == orderID {
			out = append(out, h)
		}
	}
	return out, nil
}

type fakeProductRepo struct{ products map[string]*entity.Product }

func (r *fakeProductRepo) Create(p *entity.Product) error             { r.products[p.ID] = p; return nil }
func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) { return r.products[id], nil }
func (r *fakeProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.products[id], nil
}
func (r *fakeProductRepo) GetByCompanyAndSKU(string, string) (*entity.Product, error) {
	return nil, nil
}
func (r *fakeProductRepo) ListBySeller(string, int, int) ([]*entity.Product, error) { return nil, nil }
func (r *fakeProductRepo) ListActive(int, int) ([]*entity.Product, error)           { return nil, nil }
func (r *fakeProductRepo) Update(*entity.Product) error                             { return nil }
func (r *fakeProductRepo) UpdateStock(id string, stock int) error {
	r.products[id].Stock = stock
	return nil
}
func (r *fakeProductRepo) Delete(string) error { return nil }

type fakeCustomerRepo struct{ customers map[string]*entity.Customer }

func (r *fakeCustomerRepo) Create(c *entity.Customer) error { r.customers[c.ID] = c; return nil }
func (r *fakeCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	return r.customers[id], nil
}
func (r *fakeCustomerRepo) GetForUpdate(id string) (*entity.Customer, error) {
	return r.customers[id], nil
}
func (r *fakeCustomerRepo) GetByBuyerCompany(string) (*entity.Customer, error) { return nil, nil }
func (r *fakeCustomerRepo) List(int, int) ([]*entity.Customer, error)          { return nil, nil }
func (r *fakeCustomerRepo) UpdateBalance(id string, balance decimal.Decimal) error {
	r.customers[id].Balance = balance
	return nil
}
func (r *fakeCustomerRepo) Update(*entity.Customer) error { return nil }

type fakeTxnRepo struct{ txns []*entity.CustomerTransaction }

func (r *fakeTxnRepo) Create(t *entity.CustomerTransaction) error {
	r.txns = append(r.txns, t)
	return nil
}
func (r *fakeTxnRepo) ListByCustomer(string) ([]*entity.CustomerTransaction, error) {
	return r.txns, nil
}
func (r *fakeTxnRepo) LastTransactionDate(string) (*time.Time, error) { return nil, nil }

type fakeTxRunner struct {
	products  *fakeProductRepo
	customers *fakeCustomerRepo
	txns      *fakeTxnRepo
	orders    *fakeOrderRepo

	// beforeTx corre justo antes del callback: permite intercalar una
	// transacción rival que commitea entre la validación y la tx propia.
	beforeTx func()
}

func (r *fakeTxRunner) RunOrder(_ context.Context, fn func(
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	txnRepo repository.TransactionRepository,
	orderRepo repository.OrderRepository,
) error) error {
	if r.beforeTx != nil {
		r.beforeTx()
	}
	return fn(r.products, r.customers, r.txns, r.orders)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: pedido SO-1 del comprador b1 con el vendedor s1, dos líneas
// (una con referencia débil a producto borrado) y cuenta con saldo 350.
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	uc        *order.UseCase
	orders    *fakeOrderRepo
	products  *fakeProductRepo
	customers *fakeCustomerRepo
	txns      *fakeTxnRepo
	runner    *fakeTxRunner
}

const (
	buyerCo  = "b1"
	sellerCo = "s1"
	orderID  = "ord-1"
	userID   = "vendedor-1"
)

func setup(t *testing.T) *fixture {
	t.Helper()
	orders := newFakeOrderRepo()
	products := &fakeProductRepo{products: map[string]*entity.Product{
		"prod-a": {ID: "prod-a", SellerCompanyID: sellerCo, Name: "Producto A", Stock: 47},
	}}
	customers := &fakeCustomerRepo{customers: map[string]*entity.Customer{
		"cust-1": {ID: "cust-1", BuyerCompanyID: buyerCo, Balance: decimal.NewFromInt(350)},
	}}
	txns := &fakeTxnRepo{}

	seller := sellerCo
	orders.orders[orderID] = &entity.CustomerOrder{
		ID: orderID, OrderNumber: "SO-20260830120000", DocumentType: entity.DocumentTypeOrder,
		CustomerID: "cust-1", BuyerCompanyID: buyerCo, SellerCompanyID: &seller,
		TotalAmount: decimal.NewFromInt(350), Status: entity.OrderStatusPending, ItemCount: 2,
	}
	prodA := "prod-a"
	orders.items[orderID] = []*entity.CustomerOrderItem{
		{ID: "li-1", OrderID: orderID, LineNo: 1, ProductID: &prodA, ProductName: "Producto A",
			Quantity: 3, UnitPrice: decimal.NewFromInt(100)},
		// Producto ya borrado del catálogo: la línea vive por sus snapshots.
		{ID: "li-2", OrderID: orderID, LineNo: 2, ProductID: nil, ProductName: "Producto B",
			Quantity: 1, UnitPrice: decimal.NewFromInt(50)},
	}

	runner := &fakeTxRunner{products: products, customers: customers, txns: txns, orders: orders}
	return &fixture{
		uc:        order.NewUseCase(orders, runner, inventory.NewStockGuard(), ledger.New()),
		orders:    orders,
		products:  products,
		customers: customers,
		txns:      txns,
		runner:    runner,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Workflow de estados
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateStatus_AprobacionConHistorial(t *testing.T) {
	f := setup(t)

	err := f.uc.UpdateStatus(context.Background(), sellerCo, userID, orderID,
		dto.UpdateOrderStatusRequest{Status: entity.OrderStatusApproved, Note: "listo para despacho"})
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusApproved, f.orders.orders[orderID].Status)
	require.Len(t, f.orders.history, 1)
	assert.Equal(t, entity.OrderStatusPending, f.orders.history[0].FromStatus)
	assert.Equal(t, entity.OrderStatusApproved, f.orders.history[0].ToStatus)
	assert.Equal(t, userID, f.orders.history[0].ChangedBy)
	assert.Equal(t, "listo para despacho", f.orders.history[0].Note)

	// Aprobar no toca ni stock ni cartera.
	assert.Equal(t, 47, f.products.products["prod-a"].Stock)
	assert.Empty(t, f.txns.txns)
}

func TestUpdateStatus_CancelarDevuelveStockYAcreditaCartera(t *testing.T) {
	f := setup(t)

	err := f.uc.UpdateStatus(context.Background(), sellerCo, userID, orderID,
		dto.UpdateOrderStatusRequest{Status: entity.OrderStatusCancelled})
	require.NoError(t, err)

	// Stock devuelto solo para líneas con producto vivo; la referencia
	// débil (producto borrado) se omite sin error.
	assert.Equal(t, 50, f.products.products["prod-a"].Stock, "47 + 3 devueltos")

	// Crédito compensatorio por el total del pedido.
	require.Len(t, f.txns.txns, 1)
	rev := f.txns.txns[0]
	assert.Equal(t, entity.TransactionTypeReversal, rev.TransactionType)
	assert.True(t, rev.Credit.Equal(decimal.NewFromInt(350)))
	assert.True(t, rev.Debit.IsZero())
	assert.True(t, f.customers.customers["cust-1"].Balance.IsZero(),
		"350 − 350: la anulación deja el saldo donde estaba antes del pedido")

	assert.Equal(t, entity.OrderStatusCancelled, f.orders.orders[orderID].Status)
	require.Len(t, f.orders.history, 1)
	assert.Equal(t, entity.OrderStatusCancelled, f.orders.history[0].ToStatus)
}

func TestUpdateStatus_SoloElVendedorDecide(t *testing.T) {
	f := setup(t)

	err := f.uc.UpdateStatus(context.Background(), buyerCo, userID, orderID,
		dto.UpdateOrderStatusRequest{Status: entity.OrderStatusApproved})
	assert.ErrorIs(t, err, domain.ErrForbidden,
		"el comprador no opera el workflow del vendedor")
}

func TestUpdateStatus_TransicionInvalida(t *testing.T) {
	f := setup(t)

	err := f.uc.UpdateStatus(context.Background(), sellerCo, userID, orderID,
		dto.UpdateOrderStatusRequest{Status: entity.OrderStatusCompleted})
	assert.ErrorIs(t, err, domain.ErrConflict, "Pending no salta a Completed")

	f.orders.orders[orderID].Status = entity.OrderStatusCancelled
	err = f.uc.UpdateStatus(context.Background(), sellerCo, userID, orderID,
		dto.UpdateOrderStatusRequest{Status: entity.OrderStatusApproved})
	assert.ErrorIs(t, err, domain.ErrConflict, "Cancelled es terminal")
}

// Dos cancelaciones del mismo pedido Pending: ambas validan contra el
// estado leído, pero el compare-and-set dentro de la transacción deja pasar
// solo a la primera. La perdedora no devuelve stock ni asienta un segundo
// crédito compensatorio.
func TestUpdateStatus_CancelacionConcurrentePierdeLaCarrera(t *testing.T) {
	f := setup(t)

	// La rival commitea su cancelación completa entre la validación de la
	// perdedora y su transacción.
	f.runner.beforeTx = func() {
		rival := f.runner
		f.runner.beforeTx = nil
		err := order.NewUseCase(f.orders, rival, inventory.NewStockGuard(), ledger.New()).
			UpdateStatus(context.Background(), sellerCo, "rival-1", orderID,
				dto.UpdateOrderStatusRequest{Status: entity.OrderStatusCancelled})
		require.NoError(t, err)
	}

	err := f.uc.UpdateStatus(context.Background(), sellerCo, userID, orderID,
		dto.UpdateOrderStatusRequest{Status: entity.OrderStatusCancelled})
	assert.ErrorIs(t, err, domain.ErrConflict,
		"la segunda cancelación pierde el compare-and-set")

	// Los efectos se aplicaron exactamente una vez.
	assert.Equal(t, 50, f.products.products["prod-a"].Stock, "47 + 3, no 53")
	require.Len(t, f.txns.txns, 1, "un solo crédito compensatorio")
	assert.True(t, f.customers.customers["cust-1"].Balance.IsZero(),
		"350 − 350, no −350")
	require.Len(t, f.orders.history, 1)
}

func TestUpdateStatus_PedidoInexistente(t *testing.T) {
	f := setup(t)

	err := f.uc.UpdateStatus(context.Background(), sellerCo, userID, "no-existe",
		dto.UpdateOrderStatusRequest{Status: entity.OrderStatusApproved})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lectura de pedidos
// ──────────────────────────────────────────────────────────────────────────────

func TestGetOrder_VisibleParaAmbasPartes(t *testing.T) {
	f := setup(t)

	for _, companyID := range []string{buyerCo, sellerCo} {
		resp, err := f.uc.GetOrder(companyID, orderID)
		require.NoError(t, err)
		assert.Equal(t, "SO-20260830120000", resp.Order.OrderNumber)
		require.Len(t, resp.Items, 2)
	}
}

func TestGetOrder_TerceroNoVe(t *testing.T) {
	f := setup(t)

	_, err := f.uc.GetOrder("intrusa-co", orderID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.StatusHistory("intrusa-co", orderID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestGetOrder_LineaConProductoBorrado(t *testing.T) {
	f := setup(t)

	resp, err := f.uc.GetOrder(buyerCo, orderID)
	require.NoError(t, err)

	require.Len(t, resp.Items, 2)
	assert.Empty(t, resp.Items[1].ProductID, "referencia débil: sin product_id")
	assert.Equal(t, "Producto B", resp.Items[1].ProductName,
		"los snapshots mantienen legible el histórico")
}

func TestMyOrders_FiltraPorComprador(t *testing.T) {
	f := setup(t)
	f.orders.orders["ajeno"] = &entity.CustomerOrder{
		ID: "ajeno", BuyerCompanyID: "b2", Status: entity.OrderStatusPending,
	}

	mine, err := f.uc.MyOrders(buyerCo, 20, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, orderID, mine[0].ID)

	incoming, err := f.uc.IncomingOrders(sellerCo, 20, 0)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
}
