package settlement

import (
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
)

// cancellableError valida la elegibilidad del documento para reversión.
func cancellableError(inv *entity.Invoice) error {
	switch {
	case inv.Type == entity.InvoiceTypeReturn:
		return domain.ErrNotCancellable // las notas de crédito no se anulan
	case inv.Status == entity.InvoiceStatusCancelled:
		return domain.ErrConflict // ya anulada
	case inv.Status == entity.InvoiceStatusReturnProcessed:
		return domain.ErrConflict // ya tiene nota de crédito
	case inv.Status != entity.InvoiceStatusActive:
		return domain.ErrConflict
	}
	return nil
}

// Reverse deshace sobre el libro ACTUAL del cliente los efectos que la
// liquidación de inv produjo en su momento. Es el inverso exacto de Settle para
// el modo registrado en el documento:
//
//	venta ordinaria:  outstanding -= amountDue;  credit += líneas de saldo a favor
//	                  (explícitas y automáticas); credit -= sobrepago abonado a cuenta
//	abono/depósito:   outstanding += (pagado - porción a crédito); credit -= porción a crédito
//
// Para abonos y depósitos la porción enviada a saldo a favor quedó registrada
// en OverpaymentAmount al liquidar, así la reversión conserva el total de
// dinero movido sin depender del estado histórico del libro.
//
// No es re-aplicable: un documento ya anulado se rechaza de entrada.
func Reverse(inv *entity.Invoice, payments []entity.Payment, lg Ledger) (Ledger, error) {
	if err := cancellableError(inv); err != nil {
		return lg, err
	}

	if inv.IsDebtPayment || inv.IsCreditDeposit {
		toCredit := inv.OverpaymentAmount
		lg.Credit = lg.Credit.Sub(toCredit)
		lg.Outstanding = lg.Outstanding.Add(inv.AmountPaid.Sub(toCredit))
		return lg.Clamp(), nil
	}

	if inv.AmountDue.IsPositive() {
		lg.Outstanding = lg.Outstanding.Sub(inv.AmountDue)
	}
	for _, p := range payments {
		if p.Kind == entity.PaymentKindPayment && p.IsStoreCredit() {
			lg.Credit = lg.Credit.Add(p.Amount)
		}
	}
	if inv.OverpaymentHandling == entity.OverpaymentCredited {
		lg.Credit = lg.Credit.Sub(inv.OverpaymentAmount)
	}
	return lg.Clamp(), nil
}
