package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, company_id, customer_id, number, type, status, date,
	is_debt_payment, is_credit_deposit, original_invoice_id,
	sub_total, discount_value, tax_rate_percent, tax_amount, total_amount,
	amount_paid, amount_due, overpayment_amount, overpayment_handling,
	notes, reason_for_status_change, cancelled_at, created_at, updated_at`

// Create persiste la cabecera del documento. Los campos financieros quedan
// inmutables desde este momento.
func (r *InvoiceRepo) Create(invoice *entity.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices (id, company_id, customer_id, number, type, status, date,
			is_debt_payment, is_credit_deposit, original_invoice_id,
			sub_total, discount_value, tax_rate_percent, tax_amount, total_amount,
			amount_paid, amount_due, overpayment_amount, overpayment_handling,
			notes, reason_for_status_change, cancelled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.CompanyID, invoice.CustomerID, invoice.Number, invoice.Type, invoice.Status, invoice.Date,
		invoice.IsDebtPayment, invoice.IsCreditDeposit, nullIfEmpty(invoice.OriginalInvoiceID),
		invoice.SubTotal, invoice.DiscountValue, invoice.TaxRatePercent, invoice.TaxAmount, invoice.TotalAmount,
		invoice.AmountPaid, invoice.AmountDue, invoice.OverpaymentAmount, nullIfEmpty(invoice.OverpaymentHandling),
		nullIfEmpty(invoice.Notes), nullIfEmpty(invoice.ReasonForStatusChange), invoice.CancelledAt,
		invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("número de documento %s: %w", invoice.Number, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de detalle.
func (r *InvoiceRepo) CreateItem(item *entity.InvoiceItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoice_items (id, invoice_id, description, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.InvoiceID, item.Description, item.Quantity, item.UnitPrice,
	)
	if err != nil {
		return fmt.Errorf("insert invoice item: %w", err)
	}
	return nil
}

// CreatePayment persiste una línea de pago (incluye las sintetizadas y los
// vueltos con kind change_refund).
func (r *InvoiceRepo) CreatePayment(payment *entity.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoice_payments (id, invoice_id, method, amount, reference, kind)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		payment.ID, payment.InvoiceID, payment.Method, payment.Amount,
		nullIfEmpty(payment.Reference), payment.Kind,
	)
	if err != nil {
		return fmt.Errorf("insert invoice payment: %w", err)
	}
	return nil
}

// GetByID obtiene un documento completo por ID.
func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := r.scanInvoice(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetItemsByInvoiceID obtiene todas las líneas de un documento.
func (r *InvoiceRepo) GetItemsByInvoiceID(invoiceID string) ([]entity.InvoiceItem, error) {
	query := `
		SELECT id, invoice_id, description, quantity, unit_price
		FROM invoice_items WHERE invoice_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	var list []entity.InvoiceItem
	for rows.Next() {
		var it entity.InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.Description, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// GetPaymentsByInvoiceID obtiene todas las líneas de pago de un documento.
func (r *InvoiceRepo) GetPaymentsByInvoiceID(invoiceID string) ([]entity.Payment, error) {
	query := `
		SELECT id, invoice_id, method, amount, COALESCE(reference, ''), kind
		FROM invoice_payments WHERE invoice_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice payments: %w", err)
	}
	defer rows.Close()
	var list []entity.Payment
	for rows.Next() {
		var p entity.Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Method, &p.Amount, &p.Reference, &p.Kind); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// ListByCompany lista documentos de la empresa, más recientes primero.
func (r *InvoiceRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM invoices WHERE company_id = $1 ORDER BY date DESC, created_at DESC LIMIT $2 OFFSET $3`
	return r.list(query, companyID, limit, offset)
}

// ListByCustomer lista los documentos de un cliente (estado de cuenta).
func (r *InvoiceRepo) ListByCustomer(customerID string, limit, offset int) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM invoices WHERE customer_id = $1 ORDER BY date DESC, created_at DESC LIMIT $2 OFFSET $3`
	return r.list(query, customerID, limit, offset)
}

// UpdateStatus cambia status, cancelled_at y reason_for_status_change. Los
// campos financieros no se tocan nunca después de Create.
func (r *InvoiceRepo) UpdateStatus(invoice *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET status = $2, cancelled_at = $3, reason_for_status_change = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.Status, invoice.CancelledAt,
		nullIfEmpty(invoice.ReasonForStatusChange), invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	return nil
}

// FindReturnForInvoice busca una nota de crédito activa que referencie a la
// factura original.
func (r *InvoiceRepo) FindReturnForInvoice(originalInvoiceID string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE original_invoice_id = $1 AND type = $2 AND status = $3
		LIMIT 1`
	inv, err := r.scanInvoice(r.q.QueryRow(context.Background(), query,
		originalInvoiceID, entity.InvoiceTypeReturn, entity.InvoiceStatusActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find return for invoice: %w", err)
	}
	return inv, nil
}

func (r *InvoiceRepo) list(query string, key string, limit, offset int) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(context.Background(), query, key, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := r.scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

func (r *InvoiceRepo) scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var originalID, overHandling, notes, reason *string
	err := row.Scan(
		&inv.ID, &inv.CompanyID, &inv.CustomerID, &inv.Number, &inv.Type, &inv.Status, &inv.Date,
		&inv.IsDebtPayment, &inv.IsCreditDeposit, &originalID,
		&inv.SubTotal, &inv.DiscountValue, &inv.TaxRatePercent, &inv.TaxAmount, &inv.TotalAmount,
		&inv.AmountPaid, &inv.AmountDue, &inv.OverpaymentAmount, &overHandling,
		&notes, &reason, &inv.CancelledAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	derefStr := func(p *string) string {
		if p != nil {
			return *p
		}
		return ""
	}
	inv.OriginalInvoiceID = derefStr(originalID)
	inv.OverpaymentHandling = derefStr(overHandling)
	inv.Notes = derefStr(notes)
	inv.ReasonForStatusChange = derefStr(reason)
	return &inv, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
