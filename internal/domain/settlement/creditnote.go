package settlement

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
)

// CreditNoteInput parametriza la derivación de una nota de crédito a partir de
// una venta original.
type CreditNoteInput struct {
	ID              string // id del nuevo documento
	Number          string
	Date            time.Time
	RefundMethod    string // método con el que se devuelve el valor al cliente
	RefundReference string
	Reason          string // obligatorio por política
}

// CreditNoteFromInvoice deriva una nota de crédito de documento completo a
// partir de la venta original: financieros copiados 1:1 (no hay devoluciones
// parciales), tipo return, enlace unidireccional a la original.
//
// Efecto sobre el libro: si el método de devolución es "Abono a Saldo a Favor",
// credit += total. Es aditivo e independiente de cómo se liquidó la venta
// original; no se revierte su distribución de pagos. La transición de la
// original a return_processed y la verificación de que no exista otra nota
// (una por original) son responsabilidad del llamador, que conoce la colección.
func CreditNoteFromInvoice(original *entity.Invoice, items []entity.InvoiceItem, in CreditNoteInput, lg Ledger) (*entity.Invoice, []entity.InvoiceItem, []entity.Payment, Ledger, error) {
	if original.Type != entity.InvoiceTypeSale || original.IsDebtPayment || original.IsCreditDeposit {
		return nil, nil, nil, lg, domain.ErrConflict
	}
	if original.Status != entity.InvoiceStatusActive {
		return nil, nil, nil, lg, domain.ErrConflict
	}
	if in.Reason == "" {
		return nil, nil, nil, lg, validationErrorf("reason", "el motivo de la nota de crédito es obligatorio")
	}

	note := &entity.Invoice{
		ID:                    in.ID,
		CompanyID:             original.CompanyID,
		CustomerID:            original.CustomerID,
		Number:                in.Number,
		Type:                  entity.InvoiceTypeReturn,
		Status:                entity.InvoiceStatusActive,
		Date:                  in.Date,
		OriginalInvoiceID:     original.ID,
		SubTotal:              original.SubTotal,
		DiscountValue:         original.DiscountValue,
		TaxRatePercent:        original.TaxRatePercent,
		TaxAmount:             original.TaxAmount,
		TotalAmount:           original.TotalAmount,
		AmountPaid:            original.TotalAmount,
		AmountDue:             decimal.Zero,
		ReasonForStatusChange: in.Reason,
		CreatedAt:             in.Date,
		UpdatedAt:             in.Date,
	}

	copied := make([]entity.InvoiceItem, 0, len(items))
	for _, it := range items {
		it.ID = ""
		it.InvoiceID = in.ID
		copied = append(copied, it)
	}

	payments := []entity.Payment{{
		InvoiceID: in.ID,
		Method:    in.RefundMethod,
		Amount:    original.TotalAmount,
		Reference: in.RefundReference,
		Kind:      entity.PaymentKindPayment,
	}}

	if in.RefundMethod == entity.MethodAccountCredit {
		lg.Credit = lg.Credit.Add(original.TotalAmount)
	}
	return note, copied, payments, lg.Clamp(), nil
}

// WithdrawalNote sintetiza la nota de crédito de un retiro de saldo a favor:
// el cliente se lleva dinero de su crédito acumulado. Valida 0 < amount <=
// credit y debita el libro directamente.
func WithdrawalNote(companyID, customerID string, amount decimal.Decimal, in CreditNoteInput, lg Ledger) (*entity.Invoice, []entity.InvoiceItem, []entity.Payment, Ledger, error) {
	if !amount.IsPositive() {
		return nil, nil, nil, lg, validationErrorf("amount", "el monto a retirar debe ser mayor que cero")
	}
	if amount.GreaterThan(lg.Credit) {
		return nil, nil, nil, lg, domain.ErrInsufficientCredit
	}
	if in.Reason == "" {
		return nil, nil, nil, lg, validationErrorf("reason", "el motivo del retiro es obligatorio")
	}

	note := &entity.Invoice{
		ID:                    in.ID,
		CompanyID:             companyID,
		CustomerID:            customerID,
		Number:                in.Number,
		Type:                  entity.InvoiceTypeReturn,
		Status:                entity.InvoiceStatusActive,
		Date:                  in.Date,
		IsCreditDeposit:       true, // marca de movimiento de saldo, no de mercancía
		OriginalInvoiceID:     entity.OriginalInvoiceWithdrawal,
		SubTotal:              amount,
		TotalAmount:           amount,
		AmountPaid:            amount,
		AmountDue:             decimal.Zero,
		ReasonForStatusChange: in.Reason,
		CreatedAt:             in.Date,
		UpdatedAt:             in.Date,
	}

	items := []entity.InvoiceItem{{
		InvoiceID:   in.ID,
		Description: "Retiro de saldo a favor",
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   amount,
	}}
	payments := []entity.Payment{{
		InvoiceID: in.ID,
		Method:    in.RefundMethod,
		Amount:    amount,
		Reference: in.RefundReference,
		Kind:      entity.PaymentKindPayment,
	}}

	lg.Credit = lg.Credit.Sub(amount)
	return note, items, payments, lg.Clamp(), nil
}
