package entity

import "github.com/shopspring/decimal"

// InvoiceItem representa una línea de una factura. El total de línea
// (Quantity * UnitPrice) se recalcula siempre; nunca se confía en el valor
// recibido del cliente.
type InvoiceItem struct {
	ID          string
	InvoiceID   string
	Description string
	Quantity    decimal.Decimal // > 0
	UnitPrice   decimal.Decimal // >= 0
}

// LineTotal devuelve Quantity * UnitPrice.
func (it InvoiceItem) LineTotal() decimal.Decimal {
	return it.Quantity.Mul(it.UnitPrice)
}
