package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de documento.
const (
	InvoiceTypeSale   = "sale"   // factura de venta
	InvoiceTypeReturn = "return" // nota de crédito (devolución o retiro de saldo)
)

// Estados del documento.
const (
	InvoiceStatusActive          = "active"
	InvoiceStatusCancelled       = "cancelled"
	InvoiceStatusReturnProcessed = "return_processed" // la venta ya tiene nota de crédito
)

// Manejo del vuelto cuando el pago excede el total.
const (
	OverpaymentCredited = "creditedToAccount" // el excedente pasa a saldo a favor
	OverpaymentRefunded = "refunded"          // el excedente se devuelve en el momento
)

// OriginalInvoiceWithdrawal es el marcador sintético que llevan las notas de
// crédito por retiro de saldo en OriginalInvoiceID: no referencia una factura real.
const OriginalInvoiceWithdrawal = "retiro-saldo"

// Invoice es el registro de liquidación de una venta, abono, depósito o nota de
// crédito. Los campos financieros son inmutables después de la creación; solo
// Status, CancelledAt y ReasonForStatusChange cambian (vía anulación o al quedar
// la venta con nota de crédito asociada).
type Invoice struct {
	ID         string
	CompanyID  string
	CustomerID string
	Number     string // número de factura visible; el núcleo no garantiza unicidad global
	Type       string // InvoiceTypeSale | InvoiceTypeReturn
	Status     string // InvoiceStatusActive | Cancelled | ReturnProcessed
	Date       time.Time

	// Modos mutuamente excluyentes; ambos en false = venta ordinaria.
	IsDebtPayment   bool // abono a deuda, sin mercancía
	IsCreditDeposit bool // depósito a saldo a favor, sin mercancía

	// Para notas de crédito: la venta que compensan. Para retiros de saldo lleva
	// el marcador OriginalInvoiceWithdrawal.
	OriginalInvoiceID string

	SubTotal        decimal.Decimal
	DiscountValue   decimal.Decimal // valor absoluto; el porcentaje se deriva, no se persiste
	TaxRatePercent  decimal.Decimal
	TaxAmount       decimal.Decimal
	TotalAmount     decimal.Decimal
	AmountPaid      decimal.Decimal
	AmountDue       decimal.Decimal // total - pagado, nunca negativo una vez liquidada

	OverpaymentAmount   decimal.Decimal
	OverpaymentHandling string // OverpaymentCredited | OverpaymentRefunded | ""

	Notes                 string
	ReasonForStatusChange string
	CancelledAt           *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsSale indica si el documento es una venta ordinaria (sin modo especial).
func (i *Invoice) IsSale() bool {
	return i.Type == InvoiceTypeSale && !i.IsDebtPayment && !i.IsCreditDeposit
}
