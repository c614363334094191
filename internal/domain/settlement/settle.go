package settlement

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
)

// ValidationError es un fallo de validación atribuible a un campo del borrador.
// No es fatal para el proceso: el llamador lo presenta junto al campo ofensor y
// ningún estado persistido se toca.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationErrorf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Draft es el borrador de documento que entra al motor. Los montos derivados
// (totales de línea, subtotal) nunca se toman del borrador: se recalculan aquí.
type Draft struct {
	Items    []entity.InvoiceItem
	Payments []entity.Payment // líneas ingresadas por el operador (Kind = payment)

	// Modos mutuamente excluyentes; ambos false = venta ordinaria.
	IsDebtPayment   bool
	IsCreditDeposit bool

	// Configuración de impuesto/descuento (ignorada en los modos especiales).
	ApplyTax       bool
	TaxRatePercent decimal.Decimal
	DiscountValue  decimal.Decimal

	// Resolución del sobrepago en venta ordinaria: entity.OverpaymentCredited o
	// entity.OverpaymentRefunded. Con "refunded", ChangeRefunds debe sumar
	// exactamente el sobrepago (tolerancia 0.001).
	OverpaymentHandling string
	ChangeRefunds       []entity.Payment // líneas de vuelto (Kind = change_refund)
}

// Outcome es el resultado de la liquidación: los montos finales del documento,
// la lista de pagos definitiva (puede incluir una línea de saldo a favor
// automático y las líneas de vuelto) y el libro del cliente actualizado.
// O se produce completo, o no se produce nada: no hay aplicación parcial.
type Outcome struct {
	Totals              Totals
	AmountPaid          decimal.Decimal
	AmountDue           decimal.Decimal
	OverpaymentAmount   decimal.Decimal // porción enviada a saldo a favor o devuelta como vuelto
	OverpaymentHandling string
	Payments            []entity.Payment
	Note                string // nota explicativa (ej. saldo a favor aplicado automáticamente)
	Ledger              Ledger
}

// Settle ejecuta la liquidación del borrador contra el libro actual del cliente.
// Valida antes de calcular: si retorna error, ni el documento ni el libro
// cambiaron. El libro resultante ya viene recortado a >= 0.
func Settle(d Draft, lg Ledger) (*Outcome, error) {
	if d.IsDebtPayment && d.IsCreditDeposit {
		return nil, validationErrorf("mode", "abono a deuda y depósito de saldo son excluyentes")
	}
	if err := validateItems(d); err != nil {
		return nil, err
	}
	if err := validatePayments(d); err != nil {
		return nil, err
	}

	switch {
	case d.IsDebtPayment:
		return settleDebtPayment(d, lg)
	case d.IsCreditDeposit:
		return settleCreditDeposit(d, lg)
	default:
		return settleSale(d, lg)
	}
}

func validateItems(d Draft) error {
	if len(d.Items) == 0 {
		return validationErrorf("items", "la factura debe tener al menos una línea")
	}
	if (d.IsDebtPayment || d.IsCreditDeposit) && len(d.Items) != 1 {
		return validationErrorf("items", "los modos abono/depósito llevan exactamente una línea")
	}
	for i, it := range d.Items {
		if !it.Quantity.IsPositive() {
			return validationErrorf(fmt.Sprintf("items[%d].quantity", i), "la cantidad debe ser mayor que cero")
		}
		if it.UnitPrice.IsNegative() {
			return validationErrorf(fmt.Sprintf("items[%d].unitPrice", i), "el precio unitario no puede ser negativo")
		}
	}
	return nil
}

func validatePayments(d Draft) error {
	for i, p := range d.Payments {
		if p.Method == entity.MethodStoreCreditAuto {
			// La línea automática la sintetiza el motor; no se acepta del operador.
			return validationErrorf(fmt.Sprintf("payments[%d].method", i), "método reservado al sistema")
		}
		if p.Method == entity.MethodStoreCredit {
			if p.Amount.IsNegative() {
				return validationErrorf(fmt.Sprintf("payments[%d].amount", i), "el saldo a favor usado no puede ser negativo")
			}
		} else if !p.Amount.IsPositive() {
			return validationErrorf(fmt.Sprintf("payments[%d].amount", i), "el monto debe ser mayor que cero")
		}
		if (d.IsDebtPayment || d.IsCreditDeposit) && p.Method == entity.MethodStoreCredit {
			return validationErrorf(fmt.Sprintf("payments[%d].method", i), "saldo a favor no aplica en abonos ni depósitos")
		}
	}
	return nil
}

// settleSale implementa la venta ordinaria:
//
//	1. debitar el saldo a favor usado explícitamente ("Saldo a Favor")
//	2. si falta por pagar y queda saldo a favor, sintetizar "Saldo a Favor (Auto)"
//	3. neto > 0  -> deuda del cliente (outstanding += neto)
//	   neto < 0  -> sobrepago: vuelto exacto o abono a saldo a favor
func settleSale(d Draft, lg Ledger) (*Outcome, error) {
	totals := ComputeTotals(d.Items, d.TaxRatePercent, d.DiscountValue, d.ApplyTax)

	var explicitCredit, otherPaid decimal.Decimal
	for i, p := range d.Payments {
		if p.Method == entity.MethodStoreCredit {
			explicitCredit = explicitCredit.Add(p.Amount)
			if explicitCredit.GreaterThan(lg.Credit) {
				return nil, validationErrorf(fmt.Sprintf("payments[%d].amount", i),
					"el saldo a favor usado (%s) excede el disponible (%s)",
					explicitCredit.StringFixed(2), lg.Credit.StringFixed(2))
			}
			continue
		}
		otherPaid = otherPaid.Add(p.Amount)
	}

	out := &Outcome{
		Totals:   totals,
		Payments: append([]entity.Payment(nil), d.Payments...),
	}
	lg.Credit = lg.Credit.Sub(explicitCredit)

	// Saldo a favor automático: cubre el faltante hasta agotar el crédito.
	shortfall := totals.TotalAmount.Sub(otherPaid).Sub(explicitCredit)
	var autoCredit decimal.Decimal
	if shortfall.IsPositive() && lg.Credit.IsPositive() {
		autoCredit = decimal.Min(shortfall, lg.Credit)
		lg.Credit = lg.Credit.Sub(autoCredit)
		out.Payments = append(out.Payments, entity.Payment{
			Method: entity.MethodStoreCreditAuto,
			Amount: autoCredit,
			Kind:   entity.PaymentKindPayment,
		})
		out.Note = fmt.Sprintf("Se aplicó automáticamente %s de saldo a favor.", autoCredit.StringFixed(2))
	}

	out.AmountPaid = otherPaid.Add(explicitCredit).Add(autoCredit)
	net := totals.TotalAmount.Sub(out.AmountPaid)

	switch {
	case net.IsNegative():
		over := net.Neg()
		out.OverpaymentAmount = over
		out.AmountDue = decimal.Zero
		switch d.OverpaymentHandling {
		case entity.OverpaymentRefunded:
			var refunded decimal.Decimal
			for _, r := range d.ChangeRefunds {
				refunded = refunded.Add(r.Amount)
			}
			if refunded.Sub(over).Abs().GreaterThan(refundTolerance) {
				return nil, validationErrorf("changeRefunds",
					"las líneas de vuelto suman %s pero el sobrepago es %s",
					refunded.StringFixed(2), over.StringFixed(2))
			}
			out.OverpaymentHandling = entity.OverpaymentRefunded
			for _, r := range d.ChangeRefunds {
				r.Kind = entity.PaymentKindChangeRefund
				out.Payments = append(out.Payments, r)
			}
		case entity.OverpaymentCredited, "":
			// Por defecto el excedente pasa a saldo a favor del cliente.
			out.OverpaymentHandling = entity.OverpaymentCredited
			lg.Credit = lg.Credit.Add(over)
		default:
			return nil, validationErrorf("overpaymentHandling", "valor desconocido %q", d.OverpaymentHandling)
		}
	case net.IsPositive():
		// Venta a crédito: lo no pagado queda como deuda del cliente.
		lg.Outstanding = lg.Outstanding.Add(net)
		out.AmountDue = net
	default:
		out.AmountDue = decimal.Zero
	}

	out.Ledger = lg.Clamp()
	return out, nil
}

// settleDebtPayment implementa el abono a deuda: impuesto y descuento forzados
// a cero, una sola línea sintética con el monto abonado. Lo pagado reduce la
// deuda; cualquier exceso sobre la deuda original pasa a saldo a favor y queda
// registrado en OverpaymentAmount para que la reversión sea exacta.
func settleDebtPayment(d Draft, lg Ledger) (*Outcome, error) {
	totals := ComputeTotals(d.Items, decimal.Zero, decimal.Zero, false)
	summary := SummarizePayments(d.Payments, totals.TotalAmount)

	debtCleared := decimal.Min(lg.Outstanding, summary.AmountPaid)
	toCredit := summary.AmountPaid.Sub(debtCleared)

	lg.Outstanding = lg.Outstanding.Sub(debtCleared)
	lg.Credit = lg.Credit.Add(toCredit)

	due := totals.TotalAmount.Sub(summary.AmountPaid)
	if due.IsNegative() {
		due = decimal.Zero
	}

	out := &Outcome{
		Totals:            totals,
		AmountPaid:        summary.AmountPaid,
		AmountDue:         due,
		OverpaymentAmount: toCredit,
		Payments:          append([]entity.Payment(nil), d.Payments...),
		Ledger:            lg.Clamp(),
	}
	if toCredit.IsPositive() {
		out.OverpaymentHandling = entity.OverpaymentCredited
		out.Note = fmt.Sprintf("El abono excede la deuda; %s pasó a saldo a favor.", toCredit.StringFixed(2))
	}
	return out, nil
}

// settleCreditDeposit implementa el depósito de saldo: el monto depositado
// primero salda la deuda existente y el resto aumenta el saldo a favor. La
// porción que llegó a saldo a favor queda en OverpaymentAmount.
func settleCreditDeposit(d Draft, lg Ledger) (*Outcome, error) {
	totals := ComputeTotals(d.Items, decimal.Zero, decimal.Zero, false)
	summary := SummarizePayments(d.Payments, totals.TotalAmount)

	if totals.TotalAmount.Sub(summary.AmountPaid).Abs().GreaterThan(refundTolerance) {
		return nil, validationErrorf("payments", "el depósito (%s) debe coincidir con la línea del documento (%s)",
			summary.AmountPaid.StringFixed(2), totals.TotalAmount.StringFixed(2))
	}

	debtCleared := decimal.Min(lg.Outstanding, summary.AmountPaid)
	toCredit := summary.AmountPaid.Sub(debtCleared)

	lg.Outstanding = lg.Outstanding.Sub(debtCleared)
	lg.Credit = lg.Credit.Add(toCredit)

	out := &Outcome{
		Totals:            totals,
		AmountPaid:        summary.AmountPaid,
		AmountDue:         decimal.Zero,
		OverpaymentAmount: toCredit,
		Payments:          append([]entity.Payment(nil), d.Payments...),
		Ledger:            lg.Clamp(),
	}
	if toCredit.IsPositive() {
		out.OverpaymentHandling = entity.OverpaymentCredited
	}
	if debtCleared.IsPositive() {
		out.Note = fmt.Sprintf("El depósito saldó %s de deuda pendiente.", debtCleared.StringFixed(2))
	}
	return out, nil
}
