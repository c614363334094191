package repository

import "github.com/tu-usuario/facturacion-pro/internal/domain/entity"

// InvoiceRepository define el puerto de persistencia para facturas, líneas y pagos.
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	CreateItem(item *entity.InvoiceItem) error
	CreatePayment(payment *entity.Payment) error
	GetByID(id string) (*entity.Invoice, error)
	GetItemsByInvoiceID(invoiceID string) ([]entity.InvoiceItem, error)
	GetPaymentsByInvoiceID(invoiceID string) ([]entity.Payment, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.Invoice, error)
	ListByCustomer(customerID string, limit, offset int) ([]*entity.Invoice, error)
	// UpdateStatus cambia status, cancelled_at y reason_for_status_change.
	// Los campos financieros son inmutables después de Create.
	UpdateStatus(invoice *entity.Invoice) error
	// FindReturnForInvoice busca una nota de crédito activa que referencie a la
	// factura original (a lo sumo una por original; la unicidad la impone el
	// generador de notas con este escaneo, no la base de datos).
	FindReturnForInvoice(originalInvoiceID string) (*entity.Invoice, error)
}
