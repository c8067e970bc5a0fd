package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultTaxRate IVA aplicado uniformemente a las líneas de pedido (20%).
var DefaultTaxRate = decimal.NewFromInt(20)

// CustomerOrderItem es una línea inmutable de un pedido colocado.
// ProductName/SKU/Unit son snapshots desnormalizados al momento del pedido:
// el histórico permanece estable aunque el catálogo cambie o el producto se
// borre (ProductID es referencia débil, nullable).
type CustomerOrderItem struct {
	ID           string
	OrderID      string
	LineNo       int // 1-based, único por pedido
	ProductID    *string
	ProductName  string
	SKU          string
	Unit         string
	Quantity     int
	UnitPrice    decimal.Decimal
	DiscountRate decimal.Decimal // porcentaje 0-100
	TaxRate      decimal.Decimal // porcentaje 0-100
	NetAmount    decimal.Decimal
	TaxAmount    decimal.Decimal
	TotalAmount  decimal.Decimal
	CreatedAt    time.Time
}

// ComputeAmounts calcula los importes de la línea una sola vez, a la
// creación; nunca se recalculan desde el catálogo actual.
//
//	net   = unitPrice * quantity * (1 - discountRate/100)
//	tax   = round(net * taxRate/100, 2)
//	total = net + tax
func (i *CustomerOrderItem) ComputeAmounts() {
	hundred := decimal.NewFromInt(100)
	qty := decimal.NewFromInt(int64(i.Quantity))

	net := i.UnitPrice.Mul(qty)
	if !i.DiscountRate.IsZero() {
		net = net.Mul(hundred.Sub(i.DiscountRate)).Div(hundred)
	}
	tax := net.Mul(i.TaxRate).Div(hundred).Round(2)

	i.NetAmount = net
	i.TaxAmount = tax
	i.TotalAmount = net.Add(tax)
}
