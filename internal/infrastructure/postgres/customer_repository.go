package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// Create persiste un nuevo cliente (saldos en cero salvo que vengan cargados).
func (r *CustomerRepo) Create(customer *entity.Customer) error {
	query := `
		INSERT INTO customers (id, company_id, name, rif, address, email, phone, outstanding_balance, credit_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		customer.ID, customer.CompanyID, customer.Name, customer.RIF, customer.Address,
		customer.Email, customer.Phone,
		customer.OutstandingBalance, customer.CreditBalance,
		customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(id string) (*entity.Customer, error) {
	query := `
		SELECT id, company_id, name, rif, address, email, phone, outstanding_balance, credit_balance, created_at, updated_at
		FROM customers WHERE id = $1`
	var c entity.Customer
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&c.ID, &c.CompanyID, &c.Name, &c.RIF, &c.Address, &c.Email, &c.Phone,
		&c.OutstandingBalance, &c.CreditBalance, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// GetByCompanyAndRIF obtiene un cliente por empresa y RIF.
func (r *CustomerRepo) GetByCompanyAndRIF(companyID, rif string) (*entity.Customer, error) {
	query := `
		SELECT id, company_id, name, rif, address, email, phone, outstanding_balance, credit_balance, created_at, updated_at
		FROM customers WHERE company_id = $1 AND rif = $2`
	var c entity.Customer
	err := r.q.QueryRow(context.Background(), query, companyID, rif).Scan(
		&c.ID, &c.CompanyID, &c.Name, &c.RIF, &c.Address, &c.Email, &c.Phone,
		&c.OutstandingBalance, &c.CreditBalance, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer by rif: %w", err)
	}
	return &c, nil
}

// ListByCompany lista clientes de la empresa con paginación.
func (r *CustomerRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Customer, error) {
	query := `
		SELECT id, company_id, name, rif, address, email, phone, outstanding_balance, credit_balance, created_at, updated_at
		FROM customers WHERE company_id = $1 ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		var c entity.Customer
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.RIF, &c.Address, &c.Email, &c.Phone,
			&c.OutstandingBalance, &c.CreditBalance, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// Update actualiza los datos de contacto del cliente. Los saldos NO se tocan
// por esta vía; para eso está UpdateBalances.
func (r *CustomerRepo) Update(customer *entity.Customer) error {
	query := `
		UPDATE customers SET name = $2, rif = $3, address = $4, email = $5, phone = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		customer.ID, customer.Name, customer.RIF, customer.Address, customer.Email, customer.Phone, customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

// UpdateBalances reemplaza atómicamente los dos saldos con la salida del
// motor de liquidación.
func (r *CustomerRepo) UpdateBalances(customer *entity.Customer) error {
	query := `
		UPDATE customers SET outstanding_balance = $2, credit_balance = $3, updated_at = $4
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		customer.ID, customer.OutstandingBalance, customer.CreditBalance, customer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update customer balances: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
