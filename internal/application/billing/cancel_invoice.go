package billing

import (
	"context"
	"time"

	"github.com/tu-usuario/facturacion-pro/internal/application/dto"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/internal/domain/repository"
	"github.com/tu-usuario/facturacion-pro/internal/domain/settlement"
)

// CancelInvoiceUseCase anula una factura activa revirtiendo sobre el libro
// ACTUAL del cliente los efectos exactos de su liquidación original.
type CancelInvoiceUseCase struct {
	txRunner     BillingTxRunner
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
}

// NewCancelInvoiceUseCase construye el caso de uso.
func NewCancelInvoiceUseCase(txRunner BillingTxRunner, invoiceRepo repository.InvoiceRepository, customerRepo repository.CustomerRepository) *CancelInvoiceUseCase {
	return &CancelInvoiceUseCase{txRunner: txRunner, invoiceRepo: invoiceRepo, customerRepo: customerRepo}
}

// Cancel anula la factura. Elegibilidad: venta ordinaria activa. Los abonos a
// deuda y depósitos de saldo no se anulan desde este flujo (política del
// editor); las notas de crédito no se anulan nunca. El motivo es obligatorio.
func (uc *CancelInvoiceUseCase) Cancel(ctx context.Context, companyID, invoiceID, reason string) (*dto.InvoiceResponse, error) {
	if reason == "" {
		return nil, &settlement.ValidationError{Field: "reason", Message: "el motivo de anulación es obligatorio"}
	}

	inv, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil || inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	if inv.IsDebtPayment || inv.IsCreditDeposit {
		return nil, domain.ErrNotCancellable
	}

	customer, err := uc.customerRepo.GetByID(inv.CustomerID)
	if err != nil || customer == nil {
		return nil, domain.ErrNotFound
	}
	payments, err := uc.invoiceRepo.GetPaymentsByInvoiceID(invoiceID)
	if err != nil {
		return nil, err
	}

	reversed, err := settlement.Reverse(inv, payments, settlement.Ledger{
		Outstanding: customer.OutstandingBalance,
		Credit:      customer.CreditBalance,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	inv.Status = entity.InvoiceStatusCancelled
	inv.CancelledAt = &now
	inv.ReasonForStatusChange = reason
	inv.UpdatedAt = now

	customer.OutstandingBalance = reversed.Outstanding
	customer.CreditBalance = reversed.Credit
	customer.UpdatedAt = now

	err = uc.txRunner.RunBilling(ctx, func(
		customerRepo repository.CustomerRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		if err := invoiceRepo.UpdateStatus(inv); err != nil {
			return err
		}
		return customerRepo.UpdateBalances(customer)
	})
	if err != nil {
		return nil, err
	}

	items, _ := uc.invoiceRepo.GetItemsByInvoiceID(invoiceID)
	return toInvoiceResponse(inv, customer, items, payments), nil
}
