package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ksilverstone/b2b/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// ComputeAmounts: los importes de línea se calculan una sola vez, a la
// creación, y nunca desde el catálogo actual.
//
//	net   = unitPrice * quantity * (1 - discountRate/100)
//	tax   = round(net * taxRate/100, 2)
//	total = net + tax
// ──────────────────────────────────────────────────────────────────────────────

func TestComputeAmounts_LineaSinDescuento(t *testing.T) {
	item := &entity.CustomerOrderItem{
		Quantity:     5,
		UnitPrice:    decimal.NewFromInt(90),
		DiscountRate: decimal.Zero,
		TaxRate:      entity.DefaultTaxRate,
	}
	item.ComputeAmounts()

	assert.True(t, item.NetAmount.Equal(decimal.NewFromInt(450)),
		"net = 90 * 5 = 450, fue %s", item.NetAmount)
	assert.True(t, item.TaxAmount.Equal(decimal.NewFromInt(90)),
		"tax = 450 * 20%% = 90, fue %s", item.TaxAmount)
	assert.True(t, item.TotalAmount.Equal(decimal.NewFromInt(540)),
		"total = 450 + 90 = 540, fue %s", item.TotalAmount)
}

func TestComputeAmounts_ImpuestoRedondeadoADosDecimales(t *testing.T) {
	// 3 * 33.33 = 99.99; 20% = 19.998 → redondea a 20.00
	item := &entity.CustomerOrderItem{
		Quantity:     3,
		UnitPrice:    decimal.RequireFromString("33.33"),
		DiscountRate: decimal.Zero,
		TaxRate:      entity.DefaultTaxRate,
	}
	item.ComputeAmounts()

	assert.True(t, item.NetAmount.Equal(decimal.RequireFromString("99.99")),
		"net = 99.99, fue %s", item.NetAmount)
	assert.True(t, item.TaxAmount.Equal(decimal.RequireFromString("20.00")),
		"tax redondeado a 2 decimales debe ser 20.00, fue %s", item.TaxAmount)
	assert.True(t, item.TotalAmount.Equal(decimal.RequireFromString("119.99")),
		"total = net + tax = 119.99, fue %s", item.TotalAmount)
}

func TestComputeAmounts_ConDescuento(t *testing.T) {
	// 10 * 100 = 1000; 10% descuento → net 900; 20% IVA → 180; total 1080
	item := &entity.CustomerOrderItem{
		Quantity:     10,
		UnitPrice:    decimal.NewFromInt(100),
		DiscountRate: decimal.NewFromInt(10),
		TaxRate:      entity.DefaultTaxRate,
	}
	item.ComputeAmounts()

	assert.True(t, item.NetAmount.Equal(decimal.NewFromInt(900)), "net con descuento, fue %s", item.NetAmount)
	assert.True(t, item.TaxAmount.Equal(decimal.NewFromInt(180)), "tax, fue %s", item.TaxAmount)
	assert.True(t, item.TotalAmount.Equal(decimal.NewFromInt(1080)), "total, fue %s", item.TotalAmount)
}

// ──────────────────────────────────────────────────────────────────────────────
// CanTransition: Pending → Approved|Cancelled; Approved → Completed|Cancelled;
// Cancelled y Completed son terminales.
// ──────────────────────────────────────────────────────────────────────────────

func TestCanTransition_WorkflowDePedido(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{entity.OrderStatusPending, entity.OrderStatusApproved, true},
		{entity.OrderStatusPending, entity.OrderStatusCancelled, true},
		{entity.OrderStatusPending, entity.OrderStatusCompleted, false},
		{entity.OrderStatusApproved, entity.OrderStatusCompleted, true},
		{entity.OrderStatusApproved, entity.OrderStatusCancelled, true},
		{entity.OrderStatusApproved, entity.OrderStatusPending, false},
		{entity.OrderStatusCancelled, entity.OrderStatusApproved, false},
		{entity.OrderStatusCompleted, entity.OrderStatusCancelled, false},
	}
	for _, tc := range cases {
		o := &entity.CustomerOrder{Status: tc.from}
		assert.Equal(t, tc.ok, o.CanTransition(tc.to),
			"transición %s → %s", tc.from, tc.to)
	}
}
