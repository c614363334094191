package billing_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/facturacion-pro/internal/application/billing"
	"github.com/tu-usuario/facturacion-pro/internal/application/dto"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/internal/domain/repository"
	"github.com/tu-usuario/facturacion-pro/internal/domain/settlement"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeCustomerRepo struct {
	byID map[string]*entity.Customer
}

func newFakeCustomerRepo(customers ...*entity.Customer) *fakeCustomerRepo {
	r := &fakeCustomerRepo{byID: map[string]*entity.Customer{}}
	for _, c := range customers {
		cp := *c
		r.byID[c.ID] = &cp
	}
	return r
}

func (r *fakeCustomerRepo) Create(c *entity.Customer) error {
	cp := *c
	r.byID[c.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCustomerRepo) GetByCompanyAndRIF(companyID, rif string) (*entity.Customer, error) {
	for _, c := range r.byID {
		if c.CompanyID == companyID && c.RIF == rif {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Customer, error) {
	var out []*entity.Customer
	for _, c := range r.byID {
		if c.CompanyID == companyID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeCustomerRepo) Update(c *entity.Customer) error {
	cp := *c
	r.byID[c.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) UpdateBalances(c *entity.Customer) error {
	existing, ok := r.byID[c.ID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.OutstandingBalance = c.OutstandingBalance
	existing.CreditBalance = c.CreditBalance
	existing.UpdatedAt = c.UpdatedAt
	return nil
}

type fakeInvoiceRepo struct {
	invoices map[string]*entity.Invoice
	items    map[string][]entity.InvoiceItem
	payments map[string][]entity.Payment
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{
		invoices: map[string]*entity.Invoice{},
		items:    map[string][]entity.InvoiceItem{},
		payments: map[string][]entity.Payment{},
	}
}

func (r *fakeInvoiceRepo) Create(inv *entity.Invoice) error {
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) CreateItem(it *entity.InvoiceItem) error {
	r.items[it.InvoiceID] = append(r.items[it.InvoiceID], *it)
	return nil
}

func (r *fakeInvoiceRepo) CreatePayment(p *entity.Payment) error {
	r.payments[p.InvoiceID] = append(r.payments[p.InvoiceID], *p)
	return nil
}

func (r *fakeInvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInvoiceRepo) GetItemsByInvoiceID(id string) ([]entity.InvoiceItem, error) {
	return append([]entity.InvoiceItem(nil), r.items[id]...), nil
}

func (r *fakeInvoiceRepo) GetPaymentsByInvoiceID(id string) ([]entity.Payment, error) {
	return append([]entity.Payment(nil), r.payments[id]...), nil
}

func (r *fakeInvoiceRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, inv := range r.invoices {
		if inv.CompanyID == companyID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) ListByCustomer(customerID string, limit, offset int) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, inv := range r.invoices {
		if inv.CustomerID == customerID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) UpdateStatus(inv *entity.Invoice) error {
	existing, ok := r.invoices[inv.ID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.Status = inv.Status
	existing.CancelledAt = inv.CancelledAt
	existing.ReasonForStatusChange = inv.ReasonForStatusChange
	existing.UpdatedAt = inv.UpdatedAt
	return nil
}

func (r *fakeInvoiceRepo) FindReturnForInvoice(originalID string) (*entity.Invoice, error) {
	for _, inv := range r.invoices {
		if inv.OriginalInvoiceID == originalID && inv.Type == entity.InvoiceTypeReturn && inv.Status == entity.InvoiceStatusActive {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeCompanyRepo struct {
	byID map[string]*entity.Company
}

func (r *fakeCompanyRepo) Create(c *entity.Company) error { r.byID[c.ID] = c; return nil }
func (r *fakeCompanyRepo) GetByID(id string) (*entity.Company, error) {
	return r.byID[id], nil
}
func (r *fakeCompanyRepo) GetByRIF(rif string) (*entity.Company, error) { return nil, nil }
func (r *fakeCompanyRepo) Update(c *entity.Company) error               { return nil }
func (r *fakeCompanyRepo) List(limit, offset int) ([]*entity.Company, error) {
	return nil, nil
}

// fakeTxRunner ejecuta el callback directo contra los repos en memoria.
type fakeTxRunner struct {
	customerRepo repository.CustomerRepository
	invoiceRepo  repository.InvoiceRepository
}

func (r *fakeTxRunner) RunBilling(ctx context.Context, fn func(
	customerRepo repository.CustomerRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	return fn(r.customerRepo, r.invoiceRepo)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixtures
// ──────────────────────────────────────────────────────────────────────────────

const (
	companyID  = "empresa-1"
	userID     = "usuario-1"
	customerID = "cliente-1"
)

func d(s string) decimal.Decimal {
	v, _ := decimal.NewFromString(s)
	return v
}

type env struct {
	customers *fakeCustomerRepo
	invoices  *fakeInvoiceRepo
	companies *fakeCompanyRepo
	create    *billing.CreateInvoiceUseCase
	cancel    *billing.CancelInvoiceUseCase
	notes     *billing.CreditNoteUseCase
}

// newEnv arma el entorno con un cliente con los saldos dados. La empresa no
// tiene puente de impresora configurado: no se dispara impresión.
func newEnv(outstanding, credit decimal.Decimal) *env {
	customers := newFakeCustomerRepo(&entity.Customer{
		ID:                 customerID,
		CompanyID:          companyID,
		Name:               "Carlos Pérez",
		RIF:                "V-12345678-9",
		Address:            "Av. Bolívar, Valencia",
		OutstandingBalance: outstanding,
		CreditBalance:      credit,
	})
	invoices := newFakeInvoiceRepo()
	companies := &fakeCompanyRepo{byID: map[string]*entity.Company{
		companyID: {ID: companyID, Name: "Repuestos El Motor", RIF: "J-98765432-1"},
	}}
	tx := &fakeTxRunner{customerRepo: customers, invoiceRepo: invoices}
	return &env{
		customers: customers,
		invoices:  invoices,
		companies: companies,
		create:    billing.NewCreateInvoiceUseCase(tx, customers, companies, invoices, nil),
		cancel:    billing.NewCancelInvoiceUseCase(tx, invoices, customers),
		notes:     billing.NewCreditNoteUseCase(tx, invoices, customers),
	}
}

func ventaRequest() dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		CustomerID: customerID,
		Number:     "F-0001",
		Items: []dto.InvoiceItemRequest{
			{Description: "Filtro de aceite", Quantity: d("2"), UnitPrice: d("100")},
			{Description: "Bujía", Quantity: d("3"), UnitPrice: d("50")},
		},
		ApplyTax:       true,
		TaxRatePercent: d("16"),
		Payments: []dto.PaymentRequest{
			{Method: "Efectivo", Amount: d("406")},
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateInvoice
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateInvoice_VentaExacta(t *testing.T) {
	e := newEnv(decimal.Zero, decimal.Zero)

	resp, err := e.create.CreateInvoice(context.Background(), companyID, userID, ventaRequest())
	require.NoError(t, err)

	assert.True(t, resp.TotalAmount.Equal(d("406")), "total: 350 + 16%% IVA")
	assert.True(t, resp.AmountDue.IsZero(), "pago exacto no deja deuda")
	assert.Equal(t, entity.InvoiceStatusActive, resp.Status)
	assert.Len(t, resp.Items, 2)
	assert.Len(t, resp.Payments, 1)

	// La factura y sus saldos quedaron persistidos juntos.
	persisted, _ := e.invoices.GetByID(resp.ID)
	require.NotNil(t, persisted)
	customer, _ := e.customers.GetByID(customerID)
	assert.True(t, customer.OutstandingBalance.IsZero())
	assert.True(t, customer.CreditBalance.IsZero())
}

func TestCreateInvoice_PagoParcialGeneraDeuda(t *testing.T) {
	e := newEnv(decimal.Zero, decimal.Zero)
	in := ventaRequest()
	in.Payments = []dto.PaymentRequest{{Method: "Efectivo", Amount: d("300")}}

	resp, err := e.create.CreateInvoice(context.Background(), companyID, userID, in)
	require.NoError(t, err)

	assert.True(t, resp.AmountDue.Equal(d("106")))
	customer, _ := e.customers.GetByID(customerID)
	assert.True(t, customer.OutstandingBalance.Equal(d("106")),
		"el faltante pasa al saldo pendiente del cliente")
}

func TestCreateInvoice_SobrepagoAcreditado(t *testing.T) {
	e := newEnv(decimal.Zero, decimal.Zero)
	in := ventaRequest()
	in.Payments = []dto.PaymentRequest{{Method: "Efectivo", Amount: d("456")}}
	in.OverpaymentHandling = entity.OverpaymentCredited

	resp, err := e.create.CreateInvoice(context.Background(), companyID, userID, in)
	require.NoError(t, err)

	assert.True(t, resp.OverpaymentAmount.Equal(d("50")))
	customer, _ := e.customers.GetByID(customerID)
	assert.True(t, customer.CreditBalance.Equal(d("50")),
		"el excedente se acredita al saldo a favor")
}

func TestCreateInvoice_ClienteNuevoSobreLaMarcha(t *testing.T) {
	e := newEnv(decimal.Zero, decimal.Zero)
	in := ventaRequest()
	in.CustomerID = ""
	in.NewCustomer = &dto.NewCustomerData{
		Name:    "María Gómez",
		RIF:     "V-87654321-0",
		Address: "Calle 5, Maracay",
	}

	resp, err := e.create.CreateInvoice(context.Background(), companyID, userID, in)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.CustomerID)
	assert.NotEqual(t, customerID, resp.CustomerID)

	nuevo, _ := e.customers.GetByCompanyAndRIF(companyID, "V-87654321-0")
	require.NotNil(t, nuevo, "el cliente debe quedar registrado")
	assert.True(t, nuevo.OutstandingBalance.IsZero())
}

func TestCreateInvoice_ClienteNuevoIncompleto(t *testing.T) {
	e := newEnv(decimal.Zero, decimal.Zero)
	in := ventaRequest()
	in.CustomerID = ""
	in.NewCustomer = &dto.NewCustomerData{Name: "Sin RIF", Address: "x"}

	_, err := e.create.CreateInvoice(context.Background(), companyID, userID, in)
	var vErr *settlement.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "new_customer.rif", vErr.Field)
}

func TestCreateInvoice_AbonoADeuda(t *testing.T) {
	e := newEnv(d("200"), decimal.Zero)
	in := dto.CreateInvoiceRequest{
		CustomerID:    customerID,
		Number:        "AB-0001",
		IsDebtPayment: true,
		Items: []dto.InvoiceItemRequest{
			{Description: "Abono a deuda", Quantity: d("1"), UnitPrice: d("120")},
		},
		Payments: []dto.PaymentRequest{{Method: "Efectivo", Amount: d("120")}},
	}

	resp, err := e.create.CreateInvoice(context.Background(), companyID, userID, in)
	require.NoError(t, err)
	assert.True(t, resp.CustomerOutstanding.Equal(d("80")))

	customer, _ := e.customers.GetByID(customerID)
	assert.True(t, customer.OutstandingBalance.Equal(d("80")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Cancel
// ──────────────────────────────────────────────────────────────────────────────

func TestCancel_RestauraSaldos(t *testing.T) {
	e := newEnv(decimal.Zero, decimal.Zero)
	in := ventaRequest()
	in.Payments = []dto.PaymentRequest{{Method: "Efectivo", Amount: d("300")}}
	created, err := e.create.CreateInvoice(context.Background(), companyID, userID, in)
	require.NoError(t, err)

	cancelled, err := e.cancel.Cancel(context.Background(), companyID, created.ID, "error de caja")
	require.NoError(t, err)

	assert.Equal(t, entity.InvoiceStatusCancelled, cancelled.Status)
	assert.Equal(t, "error de caja", cancelled.ReasonForStatusChange)
	customer, _ := e.customers.GetByID(customerID)
	assert.True(t, customer.OutstandingBalance.IsZero(),
		"anular la venta retira la deuda que había creado")
}

func TestCancel_RequiereMotivo(t *testing.T) {
	e := newEnv(decimal.Zero, decimal.Zero)
	created, err := e.create.CreateInvoice(context.Background(), companyID, userID, ventaRequest())
	require.NoError(t, err)

	_, err = e.cancel.Cancel(context.Background(), companyID, created.ID, "")
	var vErr *settlement.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "reason", vErr.Field)
}

func TestCancel_AbonoNoSeAnula(t *testing.T) {
	e := newEnv(d("100"), decimal.Zero)
	in := dto.CreateInvoiceRequest{
		CustomerID:    customerID,
		Number:        "AB-0002",
		IsDebtPayment: true,
		Items: []dto.InvoiceItemRequest{
			{Description: "Abono a deuda", Quantity: d("1"), UnitPrice: d("50")},
		},
		Payments: []dto.PaymentRequest{{Method: "Efectivo", Amount: d("50")}},
	}
	created, err := e.create.CreateInvoice(context.Background(), companyID, userID, in)
	require.NoError(t, err)

	_, err = e.cancel.Cancel(context.Background(), companyID, created.ID, "prueba")
	assert.ErrorIs(t, err, domain.ErrNotCancellable)
}

// ──────────────────────────────────────────────────────────────────────────────
// Notas de crédito
// ──────────────────────────────────────────────────────────────────────────────

func TestCreditNote_DevolucionCompleta(t *testing.T) {
	e := newEnv(decimal.Zero, decimal.Zero)
	created, err := e.create.CreateInvoice(context.Background(), companyID, userID, ventaRequest())
	require.NoError(t, err)

	note, err := e.notes.CreateFromInvoice(context.Background(), companyID, created.ID, dto.CreateCreditNoteRequest{
		Number:       "NC-0001",
		RefundMethod: "Efectivo",
		Reason:       "producto defectuoso",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.InvoiceTypeReturn, note.Type)
	assert.True(t, note.TotalAmount.Equal(created.TotalAmount),
		"la nota copia los montos de la original")
	assert.Equal(t, created.ID, note.OriginalInvoiceID)

	original, _ := e.invoices.GetByID(created.ID)
	assert.Equal(t, entity.InvoiceStatusReturnProcessed, original.Status)
}

func TestCreditNote_SegundaDevolucionConflicto(t *testing.T) {
	e := newEnv(decimal.Zero, decimal.Zero)
	created, err := e.create.CreateInvoice(context.Background(), companyID, userID, ventaRequest())
	require.NoError(t, err)

	in := dto.CreateCreditNoteRequest{Number: "NC-0001", RefundMethod: "Efectivo", Reason: "defecto"}
	_, err = e.notes.CreateFromInvoice(context.Background(), companyID, created.ID, in)
	require.NoError(t, err)

	in.Number = "NC-0002"
	_, err = e.notes.CreateFromInvoice(context.Background(), companyID, created.ID, in)
	assert.ErrorIs(t, err, domain.ErrReturnExists)
}

func TestCreditNote_ReembolsoASaldoAFavor(t *testing.T) {
	e := newEnv(decimal.Zero, decimal.Zero)
	created, err := e.create.CreateInvoice(context.Background(), companyID, userID, ventaRequest())
	require.NoError(t, err)

	_, err = e.notes.CreateFromInvoice(context.Background(), companyID, created.ID, dto.CreateCreditNoteRequest{
		Number:       "NC-0003",
		RefundMethod: entity.MethodAccountCredit,
		Reason:       "cambio por otro repuesto",
	})
	require.NoError(t, err)

	customer, _ := e.customers.GetByID(customerID)
	assert.True(t, customer.CreditBalance.Equal(d("406")),
		"la devolución acreditada suma el total al saldo a favor")
}

func TestWithdraw_DebitaCredito(t *testing.T) {
	e := newEnv(decimal.Zero, d("200"))

	note, err := e.notes.Withdraw(context.Background(), companyID, customerID, dto.CreditWithdrawalRequest{
		Number: "NC-0004",
		Amount: d("80"),
		Reason: "retiro en efectivo",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.InvoiceTypeReturn, note.Type)
	assert.Equal(t, entity.OriginalInvoiceWithdrawal, note.OriginalInvoiceID)
	customer, _ := e.customers.GetByID(customerID)
	assert.True(t, customer.CreditBalance.Equal(d("120")))
}

func TestWithdraw_SinCreditoSuficiente(t *testing.T) {
	e := newEnv(decimal.Zero, d("50"))

	_, err := e.notes.Withdraw(context.Background(), companyID, customerID, dto.CreditWithdrawalRequest{
		Number: "NC-0005",
		Amount: d("80"),
		Reason: "retiro",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientCredit)
}
