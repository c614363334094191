package billing

import (
	"context"

	"github.com/tu-usuario/facturacion-pro/internal/application/dto"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/internal/domain/repository"
	"github.com/tu-usuario/facturacion-pro/internal/domain/settlement"
)

// PrintUseCase reenvía documentos al puente de impresora fiscal configurado en
// la empresa y sondea su estado. Nunca toca saldos ni facturas: el puente es
// posterior a la liquidación.
type PrintUseCase struct {
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	companyRepo  repository.CompanyRepository
	printer      PrinterClient
}

// NewPrintUseCase construye el caso de uso.
func NewPrintUseCase(
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	companyRepo repository.CompanyRepository,
	printer PrinterClient,
) *PrintUseCase {
	return &PrintUseCase{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		companyRepo:  companyRepo,
		printer:      printer,
	}
}

// PrintInvoice reimprime un documento ya emitido. Con simplified en true viaja
// el payload reducido (sin montos derivados; el puente recalcula el ticket).
func (uc *PrintUseCase) PrintInvoice(ctx context.Context, companyID, invoiceID string, simplified bool) (*dto.PrintResultResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil || inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	company, err := uc.companyRepo.GetByID(companyID)
	if err != nil || company == nil {
		return nil, domain.ErrNotFound
	}
	if company.PrinterEndpoint == "" {
		return nil, &settlement.ValidationError{Field: "printer_endpoint", Message: "la empresa no tiene puente de impresora configurado"}
	}

	customer, err := uc.customerRepo.GetByID(inv.CustomerID)
	if err != nil || customer == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.invoiceRepo.GetItemsByInvoiceID(invoiceID)
	if err != nil {
		return nil, err
	}
	payments, err := uc.invoiceRepo.GetPaymentsByInvoiceID(invoiceID)
	if err != nil {
		return nil, err
	}
	payload := buildPrintPayload(inv, company, customer, items, payments, simplified)

	result, err := uc.printer.Print(ctx, company.PrinterEndpoint, payload)
	if err != nil {
		return nil, err
	}
	return &dto.PrintResultResponse{Success: result.Success, Message: result.Message}, nil
}

// BridgeStatus sondea la vida del puente de la empresa.
func (uc *PrintUseCase) BridgeStatus(ctx context.Context, companyID string) (*dto.PrintStatusResponse, error) {
	company, err := uc.companyRepo.GetByID(companyID)
	if err != nil || company == nil {
		return nil, domain.ErrNotFound
	}
	if company.PrinterEndpoint == "" {
		return nil, &settlement.ValidationError{Field: "printer_endpoint", Message: "la empresa no tiene puente de impresora configurado"}
	}
	status, err := uc.printer.Status(ctx, company.PrinterEndpoint)
	if err != nil {
		return nil, err
	}
	return &dto.PrintStatusResponse{Status: status.Status, Message: status.Message}, nil
}

// BuildPrintPayload arma el cuerpo JSON del puente a partir del documento ya
// persistido. En modo simplificado los montos derivados (subtotal, impuesto,
// total, pagado, pendiente) van en cero y el puente los recalcula; el resto
// (líneas, descuento, cliente, pagos, notas, textos y sobrepago) viaja igual.
func BuildPrintPayload(inv *entity.Invoice, company *entity.Company, customer *entity.Customer, items []entity.InvoiceItem, payments []entity.Payment, simplified bool) *PrintPayload {
	return buildPrintPayload(inv, company, customer, items, payments, simplified)
}

func buildPrintPayload(inv *entity.Invoice, company *entity.Company, customer *entity.Customer, items []entity.InvoiceItem, payments []entity.Payment, simplified bool) *PrintPayload {
	p := &PrintPayload{
		Type:              inv.Type,
		Status:            inv.Status,
		IsDebtPayment:     inv.IsDebtPayment,
		IsCreditDeposit:   inv.IsCreditDeposit,
		OriginalInvoiceID: inv.OriginalInvoiceID,
		Number:            inv.Number,
		Date:              inv.Date.Format("2006-01-02"),
		Customer: PrintCustomer{
			Name:    customer.Name,
			RIF:     customer.RIF,
			Address: customer.Address,
		},
		Items:           make([]PrintItem, 0, len(items)),
		DiscountValue:   inv.DiscountValue,
		DiscountPercent: settlement.DiscountValueToPercent(inv.DiscountValue, inv.SubTotal),
		Simplified:      simplified,
	}
	for _, it := range items {
		p.Items = append(p.Items, PrintItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	p.OverpaymentAmount = inv.OverpaymentAmount
	p.OverpaymentHandling = inv.OverpaymentHandling
	p.Notes = inv.Notes
	if company != nil {
		p.WarrantyText = company.WarrantyText
		p.ThankYouText = company.ThankYouText
	}
	p.Payments = make([]PrintPaymentLine, 0, len(payments))
	for _, pay := range payments {
		if pay.Kind != entity.PaymentKindPayment {
			continue
		}
		p.Payments = append(p.Payments, PrintPaymentLine{Method: pay.Method, Amount: pay.Amount})
	}
	if simplified {
		return p
	}

	p.SubTotal = inv.SubTotal
	p.TaxAmount = inv.TaxAmount
	p.TotalAmount = inv.TotalAmount
	p.AmountPaid = inv.AmountPaid
	p.AmountDue = inv.AmountDue
	return p
}
