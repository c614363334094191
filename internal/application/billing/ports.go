package billing

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/internal/domain/repository"
)

// BillingTxRunner ejecuta un callback con repositorios atados a una misma
// transacción: o se persisten juntos factura y saldos del cliente, o nada.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		customerRepo repository.CustomerRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error
}

// ── Puente de impresora fiscal ────────────────────────────────────────────────

// PrintCustomer subconjunto del cliente que viaja al puente.
type PrintCustomer struct {
	Name    string `json:"name"`
	RIF     string `json:"rif"`
	Address string `json:"address"`
}

// PrintItem línea de documento para impresión.
type PrintItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// PrintPaymentLine método y monto de una línea de pago para impresión.
type PrintPaymentLine struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

// PrintPayload es el cuerpo JSON que acepta el puente en POST /print. En modo
// simplificado los montos derivados (subtotal, impuesto, total, pagado,
// pendiente) van en cero y el puente los recalcula; pagos, notas, textos del
// ticket y sobrepago viajan en ambos modos.
type PrintPayload struct {
	Type              string `json:"type"`
	Status            string `json:"status"`
	IsDebtPayment     bool   `json:"is_debt_payment"`
	IsCreditDeposit   bool   `json:"is_credit_deposit"`
	OriginalInvoiceID string `json:"original_invoice_id,omitempty"`
	Number            string `json:"number,omitempty"`
	Date              string `json:"date,omitempty"`

	Customer PrintCustomer `json:"customer"`
	Items    []PrintItem   `json:"items"`

	DiscountValue   decimal.Decimal `json:"discount_value"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`

	// En cero en el payload simplificado; el puente los recalcula.
	SubTotal    decimal.Decimal `json:"sub_total,omitempty"`
	TaxAmount   decimal.Decimal `json:"tax_amount,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount,omitempty"`
	AmountPaid  decimal.Decimal `json:"amount_paid,omitempty"`
	AmountDue   decimal.Decimal `json:"amount_due,omitempty"`

	Payments []PrintPaymentLine `json:"payment_methods"`

	Notes        string `json:"notes,omitempty"`
	WarrantyText string `json:"warranty_text,omitempty"`
	ThankYouText string `json:"thank_you_text,omitempty"`

	OverpaymentAmount   decimal.Decimal `json:"overpayment_amount,omitempty"`
	OverpaymentHandling string          `json:"overpayment_handling,omitempty"`

	Simplified bool `json:"simplified"`
}

// PrintResult respuesta del puente a un trabajo de impresión.
type PrintResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// BridgeStatus respuesta del sondeo de vida del puente.
type BridgeStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// PrinterClient define el puerto de salida hacia el puente de impresora
// fiscal. El puente es un relé tonto: los fallos de impresión se reportan al
// usuario pero JAMÁS revierten una liquidación ya confirmada.
type PrinterClient interface {
	Print(ctx context.Context, endpoint string, payload *PrintPayload) (*PrintResult, error)
	Status(ctx context.Context, endpoint string) (*BridgeStatus, error)
}

// ── PDF ───────────────────────────────────────────────────────────────────────

// InvoicePDFGenerator define el puerto para la representación gráfica del
// documento (factura o nota de crédito).
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(
		ctx context.Context,
		invoice *entity.Invoice,
		company *entity.Company,
		customer *entity.Customer,
		items []entity.InvoiceItem,
		payments []entity.Payment,
	) ([]byte, error)
}
