package settlement_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/internal/domain/settlement"
)

func pago(method string, amount float64) entity.Payment {
	return entity.Payment{Method: method, Amount: d(amount), Kind: entity.PaymentKindPayment}
}

func ventaBase(payments ...entity.Payment) settlement.Draft {
	return settlement.Draft{
		Items:          []entity.InvoiceItem{item(2, 100), item(1, 150)}, // total 406 con IVA 16%
		Payments:       payments,
		ApplyTax:       true,
		TaxRatePercent: d(16),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Venta ordinaria
// ──────────────────────────────────────────────────────────────────────────────

// Pago exacto: sin cambios de deuda ni de saldo a favor.
func TestSettle_VentaPagoExacto(t *testing.T) {
	out, err := settlement.Settle(ventaBase(pago("Efectivo", 406)), settlement.Ledger{})

	require.NoError(t, err)
	assertMonto(t, 406, out.AmountPaid)
	assertMonto(t, 0, out.AmountDue)
	assertMonto(t, 0, out.Ledger.Outstanding)
	assertMonto(t, 0, out.Ledger.Credit)
	assert.Len(t, out.Payments, 1, "no debe sintetizarse ninguna línea")
}

// Pago parcial: el faltante queda como deuda del cliente.
func TestSettle_VentaParcialGeneraDeuda(t *testing.T) {
	out, err := settlement.Settle(ventaBase(pago("Efectivo", 300)), settlement.Ledger{})

	require.NoError(t, err)
	assertMonto(t, 106, out.AmountDue)
	assertMonto(t, 106, out.Ledger.Outstanding)
}

// Cliente con saldo a favor 50 paga 356 en efectivo: el faltante de 50 se cubre
// automáticamente con una línea "Saldo a Favor (Auto)".
func TestSettle_SaldoAFavorAutomaticoCubreFaltante(t *testing.T) {
	lg := settlement.Ledger{Credit: d(50)}

	out, err := settlement.Settle(ventaBase(pago("Efectivo", 356)), lg)

	require.NoError(t, err)
	assertMonto(t, 406, out.AmountPaid)
	assertMonto(t, 0, out.AmountDue)
	assertMonto(t, 0, out.Ledger.Credit)

	require.Len(t, out.Payments, 2)
	auto := out.Payments[1]
	assert.Equal(t, entity.MethodStoreCreditAuto, auto.Method)
	assertMonto(t, 50, auto.Amount)
	assert.NotEmpty(t, out.Note, "debe quedar nota explicativa del crédito automático")
}

// El crédito automático se agota sin cubrir todo: el resto sigue siendo deuda.
func TestSettle_CreditoInsuficienteDejaDeuda(t *testing.T) {
	lg := settlement.Ledger{Credit: d(20)}

	out, err := settlement.Settle(ventaBase(pago("Efectivo", 356)), lg)

	require.NoError(t, err)
	assertMonto(t, 376, out.AmountPaid)
	assertMonto(t, 30, out.AmountDue)
	assertMonto(t, 30, out.Ledger.Outstanding)
	assertMonto(t, 0, out.Ledger.Credit)
}

// Uso explícito de saldo a favor dentro del disponible.
func TestSettle_SaldoAFavorExplicito(t *testing.T) {
	lg := settlement.Ledger{Credit: d(100)}

	out, err := settlement.Settle(ventaBase(
		pago("Efectivo", 306),
		pago(entity.MethodStoreCredit, 100),
	), lg)

	require.NoError(t, err)
	assertMonto(t, 406, out.AmountPaid)
	assertMonto(t, 0, out.Ledger.Credit)
	assertMonto(t, 0, out.AmountDue)
}

// El saldo a favor explícito no puede exceder el disponible: error de
// validación atribuible a la línea, sin tocar el libro.
func TestSettle_SaldoExplicitoExcedidoFalla(t *testing.T) {
	lg := settlement.Ledger{Credit: d(30)}

	_, err := settlement.Settle(ventaBase(pago(entity.MethodStoreCredit, 50)), lg)

	var vErr *settlement.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "payments[0].amount", vErr.Field)
}

// La línea "Saldo a Favor (Auto)" está reservada al motor.
func TestSettle_LineaAutoDelOperadorRechazada(t *testing.T) {
	_, err := settlement.Settle(ventaBase(pago(entity.MethodStoreCreditAuto, 10)), settlement.Ledger{})

	var vErr *settlement.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Field, "method")
}

// ──────────────────────────────────────────────────────────────────────────────
// Sobrepago
// ──────────────────────────────────────────────────────────────────────────────

// Total 100, pago 150, excedente abonado a cuenta: credit += 50, due 0.
func TestSettle_SobrepagoAbonadoACuenta(t *testing.T) {
	draft := settlement.Draft{
		Items:               []entity.InvoiceItem{item(1, 100)},
		Payments:            []entity.Payment{pago("Efectivo", 150)},
		OverpaymentHandling: entity.OverpaymentCredited,
	}

	out, err := settlement.Settle(draft, settlement.Ledger{})

	require.NoError(t, err)
	assertMonto(t, 0, out.AmountDue)
	assertMonto(t, 50, out.OverpaymentAmount)
	assertMonto(t, 50, out.Ledger.Credit)
	assert.Equal(t, entity.OverpaymentCredited, out.OverpaymentHandling)
}

// Vuelto inmediato: las líneas de devolución deben sumar exactamente el sobrepago.
func TestSettle_SobrepagoConVueltoExacto(t *testing.T) {
	draft := settlement.Draft{
		Items:               []entity.InvoiceItem{item(1, 100)},
		Payments:            []entity.Payment{pago("Efectivo", 150)},
		OverpaymentHandling: entity.OverpaymentRefunded,
		ChangeRefunds:       []entity.Payment{{Method: "Efectivo", Amount: d(50)}},
	}

	out, err := settlement.Settle(draft, settlement.Ledger{})

	require.NoError(t, err)
	assertMonto(t, 0, out.AmountDue)
	assertMonto(t, 0, out.Ledger.Credit, "el vuelto no toca el saldo a favor")
	require.Len(t, out.Payments, 2)
	assert.Equal(t, entity.PaymentKindChangeRefund, out.Payments[1].Kind)
}

// Vuelto que no cuadra con el sobrepago: aborta toda la liquidación.
func TestSettle_VueltoDescuadradoAborta(t *testing.T) {
	draft := settlement.Draft{
		Items:               []entity.InvoiceItem{item(1, 100)},
		Payments:            []entity.Payment{pago("Efectivo", 150)},
		OverpaymentHandling: entity.OverpaymentRefunded,
		ChangeRefunds:       []entity.Payment{{Method: "Efectivo", Amount: d(40)}},
	}

	_, err := settlement.Settle(draft, settlement.Ledger{})

	var vErr *settlement.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "changeRefunds", vErr.Field)
}

// ──────────────────────────────────────────────────────────────────────────────
// Abono a deuda
// ──────────────────────────────────────────────────────────────────────────────

func abonoDraft(monto, pagado float64) settlement.Draft {
	return settlement.Draft{
		Items:         []entity.InvoiceItem{{Description: "Abono a deuda", Quantity: d(1), UnitPrice: d(monto)}},
		Payments:      []entity.Payment{pago("Efectivo", pagado)},
		IsDebtPayment: true,
	}
}

func TestSettle_AbonoReduceDeuda(t *testing.T) {
	lg := settlement.Ledger{Outstanding: d(200)}

	out, err := settlement.Settle(abonoDraft(80, 80), lg)

	require.NoError(t, err)
	assertMonto(t, 120, out.Ledger.Outstanding)
	assertMonto(t, 0, out.Ledger.Credit)
	assertMonto(t, 0, out.AmountDue)
}

// Abono mayor que la deuda: la deuda baja a cero y el exceso pasa a saldo a
// favor, registrado en OverpaymentAmount para poder revertir con exactitud.
func TestSettle_AbonoExcedenteVaASaldo(t *testing.T) {
	lg := settlement.Ledger{Outstanding: d(50)}

	out, err := settlement.Settle(abonoDraft(120, 120), lg)

	require.NoError(t, err)
	assertMonto(t, 0, out.Ledger.Outstanding)
	assertMonto(t, 70, out.Ledger.Credit)
	assertMonto(t, 70, out.OverpaymentAmount)
	assert.Equal(t, entity.OverpaymentCredited, out.OverpaymentHandling)
}

// En modo abono el impuesto y el descuento van forzados a cero.
func TestSettle_AbonoIgnoraImpuestoYDescuento(t *testing.T) {
	draft := abonoDraft(100, 100)
	draft.ApplyTax = true
	draft.TaxRatePercent = d(16)
	draft.DiscountValue = d(10)

	out, err := settlement.Settle(draft, settlement.Ledger{Outstanding: d(100)})

	require.NoError(t, err)
	assertMonto(t, 0, out.Totals.TaxAmount)
	assertMonto(t, 0, out.Totals.DiscountAmount)
	assertMonto(t, 100, out.Totals.TotalAmount)
}

// ──────────────────────────────────────────────────────────────────────────────
// Depósito de saldo
// ──────────────────────────────────────────────────────────────────────────────

func depositoDraft(monto float64) settlement.Draft {
	return settlement.Draft{
		Items:           []entity.InvoiceItem{{Description: "Depósito de saldo", Quantity: d(1), UnitPrice: d(monto)}},
		Payments:        []entity.Payment{pago("Efectivo", monto)},
		IsCreditDeposit: true,
	}
}

// El depósito primero salda la deuda y el resto aumenta el saldo a favor.
func TestSettle_DepositoSaldaDeudaPrimero(t *testing.T) {
	lg := settlement.Ledger{Outstanding: d(60), Credit: d(5)}

	out, err := settlement.Settle(depositoDraft(100), lg)

	require.NoError(t, err)
	assertMonto(t, 0, out.Ledger.Outstanding)
	assertMonto(t, 45, out.Ledger.Credit)
	assertMonto(t, 0, out.AmountDue)
	assertMonto(t, 40, out.OverpaymentAmount, "porción que llegó a saldo a favor")
}

func TestSettle_DepositoSinDeudaTodoACredito(t *testing.T) {
	out, err := settlement.Settle(depositoDraft(75), settlement.Ledger{})

	require.NoError(t, err)
	assertMonto(t, 75, out.Ledger.Credit)
	assertMonto(t, 75, out.OverpaymentAmount)
}

// ──────────────────────────────────────────────────────────────────────────────
// Validaciones generales
// ──────────────────────────────────────────────────────────────────────────────

func TestSettle_ModosExcluyentes(t *testing.T) {
	draft := abonoDraft(10, 10)
	draft.IsCreditDeposit = true

	_, err := settlement.Settle(draft, settlement.Ledger{})

	var vErr *settlement.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "mode", vErr.Field)
}

func TestSettle_CantidadInvalidaSenalaLinea(t *testing.T) {
	draft := ventaBase(pago("Efectivo", 100))
	draft.Items = []entity.InvoiceItem{item(1, 50), {Description: "x", Quantity: decimal.Zero, UnitPrice: d(10)}}

	_, err := settlement.Settle(draft, settlement.Ledger{})

	var vErr *settlement.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "items[1].quantity", vErr.Field)
}

// La liquidación jamás deja saldos negativos en el libro.
func TestSettle_LibroNuncaNegativo(t *testing.T) {
	lg := settlement.Ledger{Credit: d(50)}

	out, err := settlement.Settle(ventaBase(
		pago("Efectivo", 356),
		pago(entity.MethodStoreCredit, 50),
	), lg)

	require.NoError(t, err)
	assert.False(t, out.Ledger.Credit.IsNegative())
	assert.False(t, out.Ledger.Outstanding.IsNegative())
}
