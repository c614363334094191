package settlement

import "github.com/shopspring/decimal"

// Ledger es el estado financiero de un cliente visto por el motor: lo que debe
// (Outstanding) y el saldo a favor que se le debe (Credit). Se pasa por valor:
// el motor nunca muta el libro del llamador, devuelve uno nuevo.
type Ledger struct {
	Outstanding decimal.Decimal // deuda del cliente con la empresa
	Credit      decimal.Decimal // saldo a favor del cliente
}

// Clamp recorta ambos campos a >= 0. Un saldo negativo es un error de
// programación, no un estado válido; se normaliza antes de persistir.
func (l Ledger) Clamp() Ledger {
	if l.Outstanding.IsNegative() {
		l.Outstanding = decimal.Zero
	}
	if l.Credit.IsNegative() {
		l.Credit = decimal.Zero
	}
	return l
}
