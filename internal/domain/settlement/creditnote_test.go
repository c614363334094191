package settlement_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/internal/domain/settlement"
)

func ventaOriginal() (*entity.Invoice, []entity.InvoiceItem) {
	inv := &entity.Invoice{
		ID:             "inv-1",
		CompanyID:      "co-1",
		CustomerID:     "cli-1",
		Number:         "00001234",
		Type:           entity.InvoiceTypeSale,
		Status:         entity.InvoiceStatusActive,
		SubTotal:       d(350),
		TaxRatePercent: d(16),
		TaxAmount:      d(56),
		TotalAmount:    d(406),
		AmountPaid:     d(406),
	}
	items := []entity.InvoiceItem{
		{ID: "it-1", InvoiceID: "inv-1", Description: "Producto A", Quantity: d(2), UnitPrice: d(100)},
		{ID: "it-2", InvoiceID: "inv-1", Description: "Producto B", Quantity: d(1), UnitPrice: d(150)},
	}
	return inv, items
}

func notaInput() settlement.CreditNoteInput {
	return settlement.CreditNoteInput{
		ID:           "nc-1",
		Number:       "NC-0001",
		Date:         time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		RefundMethod: "Efectivo",
		Reason:       "devolución de mercancía",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Nota de crédito desde factura
// ──────────────────────────────────────────────────────────────────────────────

// La nota copia los financieros 1:1 (documento completo, sin devoluciones
// parciales) y enlaza a la original.
func TestCreditNote_CopiaFinancierosYEnlaza(t *testing.T) {
	original, items := ventaOriginal()

	note, copied, payments, lg, err := settlement.CreditNoteFromInvoice(original, items, notaInput(), settlement.Ledger{})

	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceTypeReturn, note.Type)
	assert.Equal(t, "inv-1", note.OriginalInvoiceID)
	assertMonto(t, 406, note.TotalAmount)
	assertMonto(t, 56, note.TaxAmount)
	assertMonto(t, 0, note.AmountDue)
	assert.Len(t, copied, 2)
	assert.Equal(t, "nc-1", copied[0].InvoiceID)

	require.Len(t, payments, 1)
	assertMonto(t, 406, payments[0].Amount)

	// Devolución en efectivo: el libro no cambia.
	assertMonto(t, 0, lg.Credit)
	assertMonto(t, 0, lg.Outstanding)
}

// Devolución abonada a la cuenta: credit += total, sin revertir la
// distribución de pagos de la venta original.
func TestCreditNote_AbonoACuentaSumaCredito(t *testing.T) {
	original, items := ventaOriginal()
	in := notaInput()
	in.RefundMethod = entity.MethodAccountCredit

	_, _, _, lg, err := settlement.CreditNoteFromInvoice(original, items, in, settlement.Ledger{Credit: d(10)})

	require.NoError(t, err)
	assertMonto(t, 416, lg.Credit)
}

func TestCreditNote_RechazaOriginalNoActiva(t *testing.T) {
	original, items := ventaOriginal()
	original.Status = entity.InvoiceStatusCancelled

	_, _, _, _, err := settlement.CreditNoteFromInvoice(original, items, notaInput(), settlement.Ledger{})

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreditNote_RechazaAbonoYDeposito(t *testing.T) {
	original, items := ventaOriginal()
	original.IsDebtPayment = true

	_, _, _, _, err := settlement.CreditNoteFromInvoice(original, items, notaInput(), settlement.Ledger{})

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreditNote_MotivoObligatorio(t *testing.T) {
	original, items := ventaOriginal()
	in := notaInput()
	in.Reason = ""

	_, _, _, _, err := settlement.CreditNoteFromInvoice(original, items, in, settlement.Ledger{})

	var vErr *settlement.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "reason", vErr.Field)
}

// ──────────────────────────────────────────────────────────────────────────────
// Retiro de saldo a favor
// ──────────────────────────────────────────────────────────────────────────────

// Retiro de A con saldo C >= A: credit == C - A y un único documento return
// con total A.
func TestWithdrawal_DebitaYGeneraDocumento(t *testing.T) {
	in := notaInput()
	in.Reason = "retiro de saldo"

	note, items, payments, lg, err := settlement.WithdrawalNote("co-1", "cli-1", d(80), in, settlement.Ledger{Credit: d(200)})

	require.NoError(t, err)
	assertMonto(t, 120, lg.Credit)
	assert.Equal(t, entity.InvoiceTypeReturn, note.Type)
	assert.True(t, note.IsCreditDeposit)
	assert.Equal(t, entity.OriginalInvoiceWithdrawal, note.OriginalInvoiceID)
	assertMonto(t, 80, note.TotalAmount)
	require.Len(t, items, 1)
	require.Len(t, payments, 1)
	assertMonto(t, 80, payments[0].Amount)
}

func TestWithdrawal_RechazaMontoExcesivo(t *testing.T) {
	_, _, _, _, err := settlement.WithdrawalNote("co-1", "cli-1", d(300), notaInput(), settlement.Ledger{Credit: d(200)})

	assert.ErrorIs(t, err, domain.ErrInsufficientCredit)
}

func TestWithdrawal_RechazaMontoNoPositivo(t *testing.T) {
	_, _, _, _, err := settlement.WithdrawalNote("co-1", "cli-1", d(0), notaInput(), settlement.Ledger{Credit: d(200)})

	var vErr *settlement.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "amount", vErr.Field)
}
