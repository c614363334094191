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

// CustomerUseCase administra los clientes de la empresa. Los saldos
// (pendiente y a favor) SOLO los muta el motor de liquidación; desde aquí se
// leen, nunca se editan a mano.
type CustomerUseCase struct {
	customerRepo repository.CustomerRepository
	invoiceRepo  repository.InvoiceRepository
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(customerRepo repository.CustomerRepository, invoiceRepo repository.InvoiceRepository) *CustomerUseCase {
	return &CustomerUseCase{customerRepo: customerRepo, invoiceRepo: invoiceRepo}
}

// Create registra un cliente con ambos saldos en cero. El RIF es único por
// empresa: el duplicado se reporta como conflicto, no se pisa el existente.
func (uc *CustomerUseCase) Create(ctx context.Context, companyID string, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	switch {
	case in.Name == "":
		return nil, &settlement.ValidationError{Field: "name", Message: "el nombre es requerido"}
	case in.RIF == "":
		return nil, &settlement.ValidationError{Field: "rif", Message: "el RIF es requerido"}
	case in.Address == "":
		return nil, &settlement.ValidationError{Field: "address", Message: "la dirección es requerida"}
	}

	if existing, err := uc.customerRepo.GetByCompanyAndRIF(companyID, in.RIF); err == nil && existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now()
	customer := &entity.Customer{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      in.Name,
		RIF:       in.RIF,
		Address:   in.Address,
		Email:     in.Email,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.customerRepo.Create(customer); err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// Get obtiene un cliente con sus saldos actuales.
func (uc *CustomerUseCase) Get(ctx context.Context, companyID, id string) (*dto.CustomerResponse, error) {
	customer, err := uc.customerRepo.GetByID(id)
	if err != nil || customer == nil {
		return nil, domain.ErrNotFound
	}
	if customer.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return toCustomerResponse(customer), nil
}

// List lista los clientes de la empresa.
func (uc *CustomerUseCase) List(ctx context.Context, companyID string, limit, offset int) (*dto.CustomerListResponse, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.customerRepo.ListByCompany(companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := &dto.CustomerListResponse{
		Items: make([]*dto.CustomerResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, c := range list {
		out.Items = append(out.Items, toCustomerResponse(c))
	}
	return out, nil
}

// History lista los documentos del cliente, más reciente primero. Es la vista
// de estado de cuenta: ventas, abonos, depósitos y notas de crédito juntos.
func (uc *CustomerUseCase) History(ctx context.Context, companyID, customerID string, limit, offset int) ([]*dto.InvoiceResponse, error) {
	customer, err := uc.customerRepo.GetByID(customerID)
	if err != nil || customer == nil {
		return nil, domain.ErrNotFound
	}
	if customer.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.invoiceRepo.ListByCustomer(customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, toInvoiceResponse(inv, customer, nil, nil))
	}
	return out, nil
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:                 c.ID,
		CompanyID:          c.CompanyID,
		Name:               c.Name,
		RIF:                c.RIF,
		Address:            c.Address,
		Email:              c.Email,
		Phone:              c.Phone,
		OutstandingBalance: c.OutstandingBalance,
		CreditBalance:      c.CreditBalance,
	}
}
