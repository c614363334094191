package repository

import "github.com/tu-usuario/facturacion-pro/internal/domain/entity"

// CustomerRepository define el puerto de persistencia para Customer.
// Semántica de lectura de escrituras propias: dentro de una transacción lo
// escrito se ve de inmediato.
type CustomerRepository interface {
	Create(customer *entity.Customer) error
	GetByID(id string) (*entity.Customer, error)
	GetByCompanyAndRIF(companyID, rif string) (*entity.Customer, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.Customer, error)
	Update(customer *entity.Customer) error
	// UpdateBalances reemplaza atómicamente los dos saldos del cliente con la
	// salida del motor de liquidación. Nadie más escribe estos campos.
	UpdateBalances(customer *entity.Customer) error
}
