package billing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-pro/internal/application/dto"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/internal/domain/repository"
	"github.com/tu-usuario/facturacion-pro/internal/domain/settlement"
)

// CreateInvoiceUseCase liquida un borrador y persiste factura + saldos del
// cliente en una sola transacción. Es el único punto de entrada para ventas,
// abonos a deuda y depósitos de saldo: todos pasan por settlement.Settle.
type CreateInvoiceUseCase struct {
	txRunner     BillingTxRunner
	customerRepo repository.CustomerRepository
	companyRepo  repository.CompanyRepository
	invoiceRepo  repository.InvoiceRepository
	printer      PrinterClient
}

// NewCreateInvoiceUseCase construye el caso de uso.
func NewCreateInvoiceUseCase(
	txRunner BillingTxRunner,
	customerRepo repository.CustomerRepository,
	companyRepo repository.CompanyRepository,
	invoiceRepo repository.InvoiceRepository,
	printer PrinterClient,
) *CreateInvoiceUseCase {
	return &CreateInvoiceUseCase{
		txRunner:     txRunner,
		customerRepo: customerRepo,
		companyRepo:  companyRepo,
		invoiceRepo:  invoiceRepo,
		printer:      printer,
	}
}

// CreateInvoice ejecuta el flujo completo de emisión:
//
//  1. resolver (o registrar sobre la marcha) el cliente
//  2. liquidar el borrador con el motor (puro; si falla, nada se tocó)
//  3. persistir factura, líneas, pagos y saldos en UNA transacción
//  4. disparar la impresión sin esperar: un fallo del puente se reporta
//     pero nunca revierte la liquidación ya confirmada
func (uc *CreateInvoiceUseCase) CreateInvoice(ctx context.Context, companyID, userID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if in.Number == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}

	customer, err := uc.resolveCustomer(companyID, in)
	if err != nil {
		return nil, err
	}

	draft := buildDraft(in)
	outcome, err := settlement.Settle(draft, settlement.Ledger{
		Outstanding: customer.OutstandingBalance,
		Credit:      customer.CreditBalance,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	inv := &entity.Invoice{
		ID:                  uuid.New().String(),
		CompanyID:           companyID,
		CustomerID:          customer.ID,
		Number:              in.Number,
		Type:                entity.InvoiceTypeSale,
		Status:              entity.InvoiceStatusActive,
		Date:                now,
		IsDebtPayment:       in.IsDebtPayment,
		IsCreditDeposit:     in.IsCreditDeposit,
		SubTotal:            outcome.Totals.SubTotal,
		DiscountValue:       outcome.Totals.DiscountAmount,
		TaxRatePercent:      draft.TaxRatePercent,
		TaxAmount:           outcome.Totals.TaxAmount,
		TotalAmount:         outcome.Totals.TotalAmount,
		AmountPaid:          outcome.AmountPaid,
		AmountDue:           outcome.AmountDue,
		OverpaymentAmount:   outcome.OverpaymentAmount,
		OverpaymentHandling: outcome.OverpaymentHandling,
		Notes:               joinNotes(in.Notes, outcome.Note),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if !draft.ApplyTax || in.IsDebtPayment || in.IsCreditDeposit {
		inv.TaxRatePercent = decimal.Zero
	}

	items := make([]entity.InvoiceItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, entity.InvoiceItem{
			ID:          uuid.New().String(),
			InvoiceID:   inv.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	payments := make([]entity.Payment, 0, len(outcome.Payments))
	for _, p := range outcome.Payments {
		p.ID = uuid.New().String()
		p.InvoiceID = inv.ID
		if p.Kind == "" {
			p.Kind = entity.PaymentKindPayment
		}
		payments = append(payments, p)
	}

	customer.OutstandingBalance = outcome.Ledger.Outstanding
	customer.CreditBalance = outcome.Ledger.Credit
	customer.UpdatedAt = now

	err = uc.txRunner.RunBilling(ctx, func(
		customerRepo repository.CustomerRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		if err := invoiceRepo.Create(inv); err != nil {
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
		return customerRepo.UpdateBalances(customer)
	})
	if err != nil {
		return nil, err
	}

	uc.printAsync(companyID, inv, customer, items, payments)

	return toInvoiceResponse(inv, customer, items, payments), nil
}

// resolveCustomer busca el cliente por id o por RIF; si el RIF es desconocido
// y el operador completó los datos mínimos, lo registra con saldos en cero.
// Datos incompletos producen un error de validación que nombra el campo.
func (uc *CreateInvoiceUseCase) resolveCustomer(companyID string, in dto.CreateInvoiceRequest) (*entity.Customer, error) {
	if in.CustomerID != "" {
		customer, err := uc.customerRepo.GetByID(in.CustomerID)
		if err != nil || customer == nil {
			return nil, domain.ErrNotFound
		}
		if customer.CompanyID != companyID {
			return nil, domain.ErrForbidden
		}
		return customer, nil
	}

	nc := in.NewCustomer
	if nc == nil {
		return nil, domain.ErrInvalidInput
	}
	switch {
	case nc.Name == "":
		return nil, &settlement.ValidationError{Field: "new_customer.name", Message: "el nombre es requerido"}
	case nc.RIF == "":
		return nil, &settlement.ValidationError{Field: "new_customer.rif", Message: "el RIF es requerido"}
	case nc.Address == "":
		return nil, &settlement.ValidationError{Field: "new_customer.address", Message: "la dirección es requerida"}
	}

	// RIF ya registrado: se reutiliza el cliente existente con sus saldos.
	if existing, err := uc.customerRepo.GetByCompanyAndRIF(companyID, nc.RIF); err == nil && existing != nil {
		return existing, nil
	}

	now := time.Now()
	customer := &entity.Customer{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      nc.Name,
		RIF:       nc.RIF,
		Address:   nc.Address,
		Phone:     nc.Phone,
		Email:     nc.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.customerRepo.Create(customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// buildDraft traduce el request al borrador del motor. El porcentaje de
// descuento es solo comodidad de UI: si viene sin valor absoluto, se deriva
// aquí y de ahí en adelante el valor es el campo canónico.
func buildDraft(in dto.CreateInvoiceRequest) settlement.Draft {
	items := make([]entity.InvoiceItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, entity.InvoiceItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}

	discount := in.DiscountValue
	if discount.IsZero() && in.DiscountPercent.IsPositive() {
		subTotal := settlement.ComputeTotals(items, decimal.Zero, decimal.Zero, false).SubTotal
		discount = settlement.DiscountPercentToValue(in.DiscountPercent, subTotal)
	}

	payments := make([]entity.Payment, 0, len(in.Payments))
	for _, p := range in.Payments {
		payments = append(payments, entity.Payment{
			Method:    p.Method,
			Amount:    p.Amount,
			Reference: p.Reference,
			Kind:      entity.PaymentKindPayment,
		})
	}
	refunds := make([]entity.Payment, 0, len(in.ChangeRefunds))
	for _, p := range in.ChangeRefunds {
		refunds = append(refunds, entity.Payment{
			Method:    p.Method,
			Amount:    p.Amount,
			Reference: p.Reference,
			Kind:      entity.PaymentKindChangeRefund,
		})
	}

	return settlement.Draft{
		Items:               items,
		Payments:            payments,
		IsDebtPayment:       in.IsDebtPayment,
		IsCreditDeposit:     in.IsCreditDeposit,
		ApplyTax:            in.ApplyTax && !in.IsDebtPayment && !in.IsCreditDeposit,
		TaxRatePercent:      in.TaxRatePercent,
		DiscountValue:       discount,
		OverpaymentHandling: in.OverpaymentHandling,
		ChangeRefunds:       refunds,
	}
}

// printAsync dispara la impresión en segundo plano. La liquidación ya está
// confirmada: un puente caído solo deja registro en el log.
func (uc *CreateInvoiceUseCase) printAsync(companyID string, inv *entity.Invoice, customer *entity.Customer, items []entity.InvoiceItem, payments []entity.Payment) {
	company, err := uc.companyRepo.GetByID(companyID)
	if err != nil || company == nil || company.PrinterEndpoint == "" {
		return
	}
	payload := BuildPrintPayload(inv, company, customer, items, payments, false)
	endpoint := company.PrinterEndpoint
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if _, err := uc.printer.Print(ctx, endpoint, payload); err != nil {
			log.Warn().Err(err).Str("invoice_id", inv.ID).Msg("impresión fiscal falló; la factura queda emitida")
		}
	}()
}

func joinNotes(parts ...string) string {
	var keep []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			keep = append(keep, p)
		}
	}
	return strings.Join(keep, " ")
}

// GetInvoice obtiene una factura completa por ID.
func (uc *CreateInvoiceUseCase) GetInvoice(ctx context.Context, companyID, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil || inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	items, err := uc.invoiceRepo.GetItemsByInvoiceID(id)
	if err != nil {
		return nil, err
	}
	payments, err := uc.invoiceRepo.GetPaymentsByInvoiceID(id)
	if err != nil {
		return nil, err
	}
	customer, _ := uc.customerRepo.GetByID(inv.CustomerID)
	return toInvoiceResponse(inv, customer, items, payments), nil
}

// ListInvoices lista las facturas de la empresa, más reciente primero.
func (uc *CreateInvoiceUseCase) ListInvoices(ctx context.Context, companyID string, limit, offset int) ([]*dto.InvoiceResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.invoiceRepo.ListByCompany(companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, toInvoiceResponse(inv, nil, nil, nil))
	}
	return out, nil
}

func toInvoiceResponse(inv *entity.Invoice, customer *entity.Customer, items []entity.InvoiceItem, payments []entity.Payment) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:                    inv.ID,
		CompanyID:             inv.CompanyID,
		CustomerID:            inv.CustomerID,
		Number:                inv.Number,
		Type:                  inv.Type,
		Status:                inv.Status,
		Date:                  inv.Date.Format("2006-01-02"),
		IsDebtPayment:         inv.IsDebtPayment,
		IsCreditDeposit:       inv.IsCreditDeposit,
		OriginalInvoiceID:     inv.OriginalInvoiceID,
		SubTotal:              inv.SubTotal,
		DiscountValue:         inv.DiscountValue,
		DiscountPercent:       settlement.DiscountValueToPercent(inv.DiscountValue, inv.SubTotal),
		TaxRatePercent:        inv.TaxRatePercent,
		TaxAmount:             inv.TaxAmount,
		TotalAmount:           inv.TotalAmount,
		AmountPaid:            inv.AmountPaid,
		AmountDue:             inv.AmountDue,
		OverpaymentAmount:     inv.OverpaymentAmount,
		OverpaymentHandling:   inv.OverpaymentHandling,
		Notes:                 inv.Notes,
		ReasonForStatusChange: inv.ReasonForStatusChange,
		CancelledAt:           inv.CancelledAt,
		Items:                 make([]dto.InvoiceItemResponse, 0, len(items)),
		Payments:              make([]dto.PaymentResponse, 0, len(payments)),
	}
	if customer != nil {
		resp.CustomerName = customer.Name
		resp.CustomerOutstanding = customer.OutstandingBalance
		resp.CustomerCredit = customer.CreditBalance
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.InvoiceItemResponse{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal(),
		})
	}
	for _, p := range payments {
		resp.Payments = append(resp.Payments, dto.PaymentResponse{
			ID:        p.ID,
			Method:    p.Method,
			Amount:    p.Amount,
			Reference: p.Reference,
			Kind:      p.Kind,
		})
	}
	return resp
}
