package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/facturacion-pro/internal/application/dto"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/internal/domain/repository"
	"github.com/tu-usuario/facturacion-pro/internal/domain/settlement"
)

// CreditNoteUseCase genera notas de crédito: devoluciones de documento
// completo y retiros de saldo a favor.
type CreditNoteUseCase struct {
	txRunner     BillingTxRunner
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
}

// NewCreditNoteUseCase construye el caso de uso.
func NewCreditNoteUseCase(txRunner BillingTxRunner, invoiceRepo repository.InvoiceRepository, customerRepo repository.CustomerRepository) *CreditNoteUseCase {
	return &CreditNoteUseCase{txRunner: txRunner, invoiceRepo: invoiceRepo, customerRepo: customerRepo}
}

// CreateFromInvoice emite la nota de crédito de una venta. A lo sumo una nota
// activa por original: el conflicto se detecta escaneando la colección antes
// de mutar. La original pasa a return_processed en la misma transacción.
func (uc *CreditNoteUseCase) CreateFromInvoice(ctx context.Context, companyID, originalID string, in dto.CreateCreditNoteRequest) (*dto.InvoiceResponse, error) {
	original, err := uc.invoiceRepo.GetByID(originalID)
	if err != nil || original == nil {
		return nil, domain.ErrNotFound
	}
	if original.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	existing, err := uc.invoiceRepo.FindReturnForInvoice(originalID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrReturnExists
	}

	customer, err := uc.customerRepo.GetByID(original.CustomerID)
	if err != nil || customer == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.invoiceRepo.GetItemsByInvoiceID(originalID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	note, copiedItems, payments, ledger, err := settlement.CreditNoteFromInvoice(original, items, settlement.CreditNoteInput{
		ID:              uuid.New().String(),
		Number:          in.Number,
		Date:            now,
		RefundMethod:    in.RefundMethod,
		RefundReference: in.RefundReference,
		Reason:          in.Reason,
	}, settlement.Ledger{
		Outstanding: customer.OutstandingBalance,
		Credit:      customer.CreditBalance,
	})
	if err != nil {
		return nil, err
	}

	original.Status = entity.InvoiceStatusReturnProcessed
	original.ReasonForStatusChange = in.Reason
	original.UpdatedAt = now

	customer.OutstandingBalance = ledger.Outstanding
	customer.CreditBalance = ledger.Credit
	customer.UpdatedAt = now

	err = uc.persistNote(ctx, note, copiedItems, payments, customer, original)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(note, customer, copiedItems, payments), nil
}

// Withdraw emite la nota de crédito de un retiro de saldo a favor y debita el
// crédito del cliente.
func (uc *CreditNoteUseCase) Withdraw(ctx context.Context, companyID, customerID string, in dto.CreditWithdrawalRequest) (*dto.InvoiceResponse, error) {
	customer, err := uc.customerRepo.GetByID(customerID)
	if err != nil || customer == nil {
		return nil, domain.ErrNotFound
	}
	if customer.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	method := in.RefundMethod
	if method == "" {
		method = "Efectivo"
	}
	note, items, payments, ledger, err := settlement.WithdrawalNote(companyID, customerID, in.Amount, settlement.CreditNoteInput{
		ID:           uuid.New().String(),
		Number:       in.Number,
		Date:         now,
		RefundMethod: method,
		Reason:       in.Reason,
	}, settlement.Ledger{
		Outstanding: customer.OutstandingBalance,
		Credit:      customer.CreditBalance,
	})
	if err != nil {
		return nil, err
	}

	customer.OutstandingBalance = ledger.Outstanding
	customer.CreditBalance = ledger.Credit
	customer.UpdatedAt = now

	err = uc.persistNote(ctx, note, items, payments, customer, nil)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(note, customer, items, payments), nil
}

// persistNote guarda la nota con sus líneas y pagos, los saldos del cliente y
// (si aplica) la transición de la factura original, todo en una transacción.
func (uc *CreditNoteUseCase) persistNote(ctx context.Context, note *entity.Invoice, items []entity.InvoiceItem, payments []entity.Payment, customer *entity.Customer, original *entity.Invoice) error {
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.New().String()
		}
	}
	for i := range payments {
		if payments[i].ID == "" {
			payments[i].ID = uuid.New().String()
		}
	}
	return uc.txRunner.RunBilling(ctx, func(
		customerRepo repository.CustomerRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		if err := invoiceRepo.Create(note); err != nil {
			return err
		}
		for i := range items {
			if err := invoiceRepo.CreateItem(&items[i]); err != nil {
				return err
			}
		}
		for i := range payments {
			if err := invoiceRepo.CreatePayment(&payments[i]); err != nil {
				return err
			}
		}
		if original != nil {
			if err := invoiceRepo.UpdateStatus(original); err != nil {
				return err
			}
		}
		return customerRepo.UpdateBalances(customer)
	})
}
