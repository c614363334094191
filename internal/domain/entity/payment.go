package entity

import "github.com/shopspring/decimal"

// Métodos de pago con significado para el motor de liquidación. El resto
// ("Efectivo", "Tarjeta de Débito", ...) es texto libre.
const (
	MethodStoreCredit     = "Saldo a Favor"        // uso explícito de saldo a favor
	MethodStoreCreditAuto = "Saldo a Favor (Auto)" // línea sintetizada por el motor
	MethodAccountCredit   = "Abono a Saldo a Favor" // devolución acreditada a la cuenta del cliente
)

// Clases de línea de pago.
const (
	PaymentKindPayment      = "payment"       // pago del cliente hacia la factura
	PaymentKindChangeRefund = "change_refund" // devolución del vuelto (sobrepago "refunded")
)

// Payment representa una línea de pago de una factura.
type Payment struct {
	ID        string
	InvoiceID string
	Method    string
	Amount    decimal.Decimal
	Reference string
	Kind      string // PaymentKindPayment | PaymentKindChangeRefund
}

// IsStoreCredit indica si la línea consume saldo a favor (explícito o automático).
func (p Payment) IsStoreCredit() bool {
	return p.Method == MethodStoreCredit || p.Method == MethodStoreCreditAuto
}
