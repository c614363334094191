package billing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/facturacion-pro/internal/application/billing"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
)

func printFixture() (*entity.Invoice, *entity.Company, *entity.Customer, []entity.InvoiceItem, []entity.Payment) {
	inv := &entity.Invoice{
		ID:                  "doc-1",
		CompanyID:           companyID,
		CustomerID:          customerID,
		Number:              "F-0100",
		Type:                entity.InvoiceTypeSale,
		Status:              entity.InvoiceStatusActive,
		Date:                time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
		SubTotal:            d("350"),
		TaxRatePercent:      d("16"),
		TaxAmount:           d("56"),
		TotalAmount:         d("406"),
		AmountPaid:          d("456"),
		AmountDue:           decimal.Zero,
		OverpaymentAmount:   d("50"),
		OverpaymentHandling: entity.OverpaymentCredited,
		Notes:               "entrega en mostrador",
	}
	company := &entity.Company{
		ID:           companyID,
		Name:         "Repuestos El Motor",
		RIF:          "J-98765432-1",
		WarrantyText: "Garantía de 30 días",
		ThankYouText: "¡Gracias por su compra!",
	}
	customer := &entity.Customer{
		ID:      customerID,
		Name:    "Carlos Pérez",
		RIF:     "V-12345678-9",
		Address: "Av. Bolívar, Valencia",
	}
	items := []entity.InvoiceItem{
		{Description: "Filtro de aceite", Quantity: d("2"), UnitPrice: d("100")},
		{Description: "Bujía", Quantity: d("3"), UnitPrice: d("50")},
	}
	payments := []entity.Payment{
		{Method: "Efectivo", Amount: d("456"), Kind: entity.PaymentKindPayment},
		{Method: "Efectivo", Amount: d("10"), Kind: entity.PaymentKindChangeRefund},
	}
	return inv, company, customer, items, payments
}

func TestBuildPrintPayload_Completo(t *testing.T) {
	inv, company, customer, items, payments := printFixture()

	p := billing.BuildPrintPayload(inv, company, customer, items, payments, false)

	assert.False(t, p.Simplified)
	assert.Equal(t, "Carlos Pérez", p.Customer.Name)
	assert.Len(t, p.Items, 2)
	assert.True(t, p.SubTotal.Equal(d("350")))
	assert.True(t, p.TotalAmount.Equal(d("406")))
	assert.True(t, p.AmountPaid.Equal(d("456")))
	require.Len(t, p.Payments, 1, "los vueltos (change_refund) no viajan como método de pago")
	assert.Equal(t, "Efectivo", p.Payments[0].Method)
}

func TestBuildPrintPayload_Simplificado(t *testing.T) {
	inv, company, customer, items, payments := printFixture()

	p := billing.BuildPrintPayload(inv, company, customer, items, payments, true)

	assert.True(t, p.Simplified)

	// Los montos derivados van en cero: el puente recalcula el ticket.
	assert.True(t, p.SubTotal.IsZero())
	assert.True(t, p.TaxAmount.IsZero())
	assert.True(t, p.TotalAmount.IsZero())
	assert.True(t, p.AmountPaid.IsZero())
	assert.True(t, p.AmountDue.IsZero())

	// El resto del subconjunto reducido viaja completo.
	assert.Len(t, p.Items, 2)
	require.Len(t, p.Payments, 1)
	assert.True(t, p.Payments[0].Amount.Equal(d("456")))
	assert.Equal(t, "entrega en mostrador", p.Notes)
	assert.Equal(t, "Garantía de 30 días", p.WarrantyText)
	assert.Equal(t, "¡Gracias por su compra!", p.ThankYouText)
	assert.True(t, p.OverpaymentAmount.Equal(d("50")))
	assert.Equal(t, entity.OverpaymentCredited, p.OverpaymentHandling)
}
