package settlement_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/internal/domain/settlement"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func item(qty, price float64) entity.InvoiceItem {
	return entity.InvoiceItem{Description: "línea", Quantity: d(qty), UnitPrice: d(price)}
}

// assertMonto compara decimales por valor, no por representación interna.
func assertMonto(t *testing.T, expected float64, actual decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, d(expected).Equal(actual),
		"esperado %v, obtenido %s: %v", expected, actual.String(), msgAndArgs)
}

// ──────────────────────────────────────────────────────────────────────────────
// ComputeTotals
// ──────────────────────────────────────────────────────────────────────────────

// Escenario de referencia: [{2 x 100}, {1 x 150}], sin descuento, IVA 16%.
func TestComputeTotals_EscenarioReferencia(t *testing.T) {
	items := []entity.InvoiceItem{item(2, 100), item(1, 150)}

	tot := settlement.ComputeTotals(items, d(16), decimal.Zero, true)

	assertMonto(t, 350.00, tot.SubTotal)
	assertMonto(t, 0, tot.DiscountAmount)
	assertMonto(t, 56.00, tot.TaxAmount)
	assertMonto(t, 406.00, tot.TotalAmount)
}

func TestComputeTotals_SinImpuesto(t *testing.T) {
	tot := settlement.ComputeTotals([]entity.InvoiceItem{item(3, 10)}, d(16), decimal.Zero, false)

	assertMonto(t, 30, tot.SubTotal)
	assertMonto(t, 0, tot.TaxAmount)
	assertMonto(t, 30, tot.TotalAmount)
}

// El descuento reduce la base gravable antes de aplicar el impuesto.
func TestComputeTotals_DescuentoAntesDeImpuesto(t *testing.T) {
	tot := settlement.ComputeTotals([]entity.InvoiceItem{item(1, 100)}, d(16), d(20), true)

	assertMonto(t, 100, tot.SubTotal)
	assertMonto(t, 20, tot.DiscountAmount)
	assertMonto(t, 12.80, tot.TaxAmount) // 80 * 16%
	assertMonto(t, 92.80, tot.TotalAmount)
}

// Un descuento mayor al subtotal no produce base negativa.
func TestComputeTotals_DescuentoExcesivoNoNegativiza(t *testing.T) {
	tot := settlement.ComputeTotals([]entity.InvoiceItem{item(1, 50)}, d(16), d(80), true)

	assertMonto(t, 0, tot.TaxAmount)
	assertMonto(t, 0, tot.TotalAmount)
}

// ──────────────────────────────────────────────────────────────────────────────
// Sincronía valor <-> porcentaje del descuento
// ──────────────────────────────────────────────────────────────────────────────

func TestDiscount_ConversionIdaYVuelta(t *testing.T) {
	sub := d(350)

	value := settlement.DiscountPercentToValue(d(10), sub)
	assertMonto(t, 35, value)

	percent := settlement.DiscountValueToPercent(value, sub)
	assertMonto(t, 10, percent)
}

// Subtotal cero fuerza porcentaje cero: no hay base sobre la cual descontar.
func TestDiscount_SubtotalCeroFuerzaPorcentajeCero(t *testing.T) {
	percent := settlement.DiscountValueToPercent(d(25), decimal.Zero)
	assertMonto(t, 0, percent)
}

// ──────────────────────────────────────────────────────────────────────────────
// SummarizePayments
// ──────────────────────────────────────────────────────────────────────────────

func TestSummarizePayments_SumaYPendiente(t *testing.T) {
	payments := []entity.Payment{
		{Method: "Efectivo", Amount: d(200)},
		{Method: "Tarjeta de Débito", Amount: d(100)},
	}

	s := settlement.SummarizePayments(payments, d(406))

	assertMonto(t, 300, s.AmountPaid)
	assertMonto(t, 106, s.AmountDue)
}

// Antes de resolver el sobrepago, AmountDue puede ser negativo: es la señal
// que Settle usa para decidir entre vuelto y abono a cuenta.
func TestSummarizePayments_SobrepagoQuedaNegativo(t *testing.T) {
	s := settlement.SummarizePayments([]entity.Payment{{Method: "Efectivo", Amount: d(150)}}, d(100))

	assertMonto(t, -50, s.AmountDue)
}
