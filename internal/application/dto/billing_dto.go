package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCustomerRequest body para POST /api/customers.
type CreateCustomerRequest struct {
	Name    string `json:"name"`
	RIF     string `json:"rif"`
	Address string `json:"address"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// CustomerResponse cliente en respuestas, con sus dos saldos.
type CustomerResponse struct {
	ID                 string          `json:"id"`
	CompanyID          string          `json:"company_id"`
	Name               string          `json:"name"`
	RIF                string          `json:"rif"`
	Address            string          `json:"address"`
	Email              string          `json:"email,omitempty"`
	Phone              string          `json:"phone,omitempty"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	CreditBalance      decimal.Decimal `json:"credit_balance"`
}

// CustomerListResponse listado paginado de clientes.
type CustomerListResponse struct {
	Items []*CustomerResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// InvoiceItemRequest línea de factura (descripción libre, cantidad, precio).
// El total de línea se recalcula en el servidor; nunca se confía en el cliente.
type InvoiceItemRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// PaymentRequest línea de pago ingresada por el operador.
type PaymentRequest struct {
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
}

// NewCustomerData datos mínimos para registrar un cliente sobre la marcha
// cuando el RIF no existe todavía (alta implícita desde el editor de factura).
type NewCustomerData struct {
	Name    string `json:"name"`
	RIF     string `json:"rif"`
	Address string `json:"address"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// CreateInvoiceRequest body para POST /api/invoices.
//
// Modos: is_debt_payment (abono a deuda) e is_credit_deposit (depósito de
// saldo) son excluyentes; ambos en false es una venta ordinaria. En los modos
// especiales items lleva exactamente una línea sintética con el monto.
type CreateInvoiceRequest struct {
	CustomerID  string           `json:"customer_id,omitempty"`
	NewCustomer *NewCustomerData `json:"new_customer,omitempty"`
	Number      string           `json:"number"`

	Items    []InvoiceItemRequest `json:"items"`
	Payments []PaymentRequest     `json:"payments"`

	IsDebtPayment   bool `json:"is_debt_payment,omitempty"`
	IsCreditDeposit bool `json:"is_credit_deposit,omitempty"`

	ApplyTax        bool            `json:"apply_tax"`
	TaxRatePercent  decimal.Decimal `json:"tax_rate_percent"`
	DiscountValue   decimal.Decimal `json:"discount_value"`
	DiscountPercent decimal.Decimal `json:"discount_percent"` // comodidad de UI; si >0 y value==0, se deriva

	OverpaymentHandling string           `json:"overpayment_handling,omitempty"` // creditedToAccount | refunded
	ChangeRefunds       []PaymentRequest `json:"change_refunds,omitempty"`

	Notes string `json:"notes,omitempty"`
}

// PaymentResponse línea de pago en respuestas (incluye las sintetizadas).
type PaymentResponse struct {
	ID        string          `json:"id"`
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
	Kind      string          `json:"kind"`
}

// InvoiceItemResponse línea de detalle en la respuesta.
type InvoiceItemResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// InvoiceResponse factura completa.
type InvoiceResponse struct {
	ID                string `json:"id"`
	CompanyID         string `json:"company_id"`
	CustomerID        string `json:"customer_id"`
	CustomerName      string `json:"customer_name,omitempty"`
	Number            string `json:"number"`
	Type              string `json:"type"`
	Status            string `json:"status"`
	Date              string `json:"date"`
	IsDebtPayment     bool   `json:"is_debt_payment,omitempty"`
	IsCreditDeposit   bool   `json:"is_credit_deposit,omitempty"`
	OriginalInvoiceID string `json:"original_invoice_id,omitempty"`

	SubTotal        decimal.Decimal `json:"sub_total"`
	DiscountValue   decimal.Decimal `json:"discount_value"`
	DiscountPercent decimal.Decimal `json:"discount_percent"` // derivado del valor, nunca persistido
	TaxRatePercent  decimal.Decimal `json:"tax_rate_percent"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	AmountDue       decimal.Decimal `json:"amount_due"`

	OverpaymentAmount   decimal.Decimal `json:"overpayment_amount,omitempty"`
	OverpaymentHandling string          `json:"overpayment_handling,omitempty"`

	Notes                 string     `json:"notes,omitempty"`
	ReasonForStatusChange string     `json:"reason_for_status_change,omitempty"`
	CancelledAt           *time.Time `json:"cancelled_at,omitempty"`

	Items    []InvoiceItemResponse `json:"items"`
	Payments []PaymentResponse     `json:"payments"`

	// Saldos del cliente después de la operación (para mostrar en caja).
	CustomerOutstanding decimal.Decimal `json:"customer_outstanding_balance"`
	CustomerCredit      decimal.Decimal `json:"customer_credit_balance"`
}

// CancelInvoiceRequest body para POST /api/invoices/:id/cancel.
type CancelInvoiceRequest struct {
	Reason string `json:"reason"`
}

// CreateCreditNoteRequest body para POST /api/invoices/:id/credit-note.
type CreateCreditNoteRequest struct {
	Number          string `json:"number"`
	RefundMethod    string `json:"refund_method"`
	RefundReference string `json:"refund_reference,omitempty"`
	Reason          string `json:"reason"`
}

// CreditWithdrawalRequest body para POST /api/customers/:id/credit-withdrawal.
type CreditWithdrawalRequest struct {
	Number       string          `json:"number"`
	Amount       decimal.Decimal `json:"amount"`
	RefundMethod string          `json:"refund_method"`
	Reason       string          `json:"reason"`
}

// PrintStatusResponse respuesta del sondeo de vida del puente de impresora.
type PrintStatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// PrintResultResponse respuesta del puente tras un trabajo de impresión.
type PrintResultResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
