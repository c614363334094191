// Package settlement implementa el núcleo financiero de la facturación: cálculo
// de totales, distribución de pagos (incluyendo saldo a favor explícito y
// automático), manejo de sobrepagos, y la reversión exacta de todos esos
// efectos al anular un documento.
//
// Todo el paquete es puro: recibe valores (borrador + libro del cliente) y
// devuelve valores (resultado + libro actualizado). La persistencia y los
// efectos externos viven en la capa de aplicación. Un solo algoritmo de
// liquidación, muchos puntos de llamada.
package settlement

import (
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
)

var (
	hundred = decimal.NewFromInt(100)

	// refundTolerance es la tolerancia al comparar la suma de líneas de vuelto
	// contra el sobrepago (0.001).
	refundTolerance = decimal.New(1, -3)
)

// Totals agrupa los montos derivados de las líneas de una factura.
type Totals struct {
	SubTotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
}

// ComputeTotals calcula subtotal, descuento, impuesto y total.
//
//	subtotal  = Σ cantidad * precio unitario   (el total de línea siempre se recalcula)
//	gravable  = max(0, subtotal - descuento)
//	impuesto  = gravable * tasa/100            (solo si applyTax)
//	total     = gravable + impuesto
func ComputeTotals(items []entity.InvoiceItem, taxRatePercent, discountValue decimal.Decimal, applyTax bool) Totals {
	var subTotal decimal.Decimal
	for _, it := range items {
		subTotal = subTotal.Add(it.LineTotal())
	}

	discount := discountValue
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	taxable := subTotal.Sub(discount)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}

	var tax decimal.Decimal
	if applyTax {
		tax = taxable.Mul(taxRatePercent).Div(hundred)
	}

	return Totals{
		SubTotal:       subTotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		TotalAmount:    taxable.Add(tax),
	}
}

// DiscountPercentToValue deriva el valor absoluto del descuento a partir del
// porcentaje. El campo canónico es siempre el valor; el porcentaje es una
// comodidad de presentación.
func DiscountPercentToValue(percent, subTotal decimal.Decimal) decimal.Decimal {
	return percent.Mul(subTotal).Div(hundred)
}

// DiscountValueToPercent deriva el porcentaje a partir del valor. Subtotal cero
// fuerza porcentaje cero (no hay base sobre la cual descontar).
func DiscountValueToPercent(value, subTotal decimal.Decimal) decimal.Decimal {
	if subTotal.IsZero() {
		return decimal.Zero
	}
	return value.Div(subTotal).Mul(hundred)
}

// PaymentSummary resume una lista de pagos contra un total.
type PaymentSummary struct {
	AmountPaid decimal.Decimal
	AmountDue  decimal.Decimal // puede ser negativo: señala sobrepago, el motor decide qué hacer
}

// SummarizePayments suma los pagos y calcula el saldo pendiente. Un AmountDue
// negativo significa sobrepago; esta función no lo resuelve, eso es trabajo de
// Settle.
func SummarizePayments(payments []entity.Payment, totalAmount decimal.Decimal) PaymentSummary {
	var paid decimal.Decimal
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	return PaymentSummary{
		AmountPaid: paid,
		AmountDue:  totalAmount.Sub(paid),
	}
}
