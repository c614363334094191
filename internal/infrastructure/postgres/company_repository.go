package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/internal/domain/repository"
)

// Asegura que CompanyRepo implementa repository.CompanyRepository.
var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL.
type CompanyRepo struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository construye el adaptador de persistencia para empresas.
func NewCompanyRepository(pool *pgxpool.Pool) *CompanyRepo {
	return &CompanyRepo{pool: pool}
}

const companyColumns = `
	id, name, rif, address, phone, email,
	COALESCE(logo_url, ''), COALESCE(invoice_notes, ''), COALESCE(warranty_text, ''),
	COALESCE(thank_you_text, ''), COALESCE(printer_endpoint, ''),
	status, created_at, updated_at`

// Create persiste una nueva empresa.
func (r *CompanyRepo) Create(company *entity.Company) error {
	query := `
		INSERT INTO companies (id, name, rif, address, phone, email, logo_url, invoice_notes, warranty_text, thank_you_text, printer_endpoint, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.pool.Exec(context.Background(), query,
		company.ID, company.Name, company.RIF, company.Address,
		company.Phone, company.Email,
		nullIfEmpty(company.LogoURL), nullIfEmpty(company.InvoiceNotes),
		nullIfEmpty(company.WarrantyText), nullIfEmpty(company.ThankYouText),
		nullIfEmpty(company.PrinterEndpoint),
		company.Status, company.CreatedAt, company.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID obtiene una empresa por ID.
func (r *CompanyRepo) GetByID(id string) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	return r.getOne(query, id)
}

// GetByRIF obtiene una empresa por RIF.
func (r *CompanyRepo) GetByRIF(rif string) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE rif = $1`
	return r.getOne(query, rif)
}

func (r *CompanyRepo) getOne(query, key string) (*entity.Company, error) {
	var c entity.Company
	err := r.pool.QueryRow(context.Background(), query, key).Scan(
		&c.ID, &c.Name, &c.RIF, &c.Address, &c.Phone, &c.Email,
		&c.LogoURL, &c.InvoiceNotes, &c.WarrantyText, &c.ThankYouText, &c.PrinterEndpoint,
		&c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &c, nil
}

// Update actualiza una empresa existente.
func (r *CompanyRepo) Update(company *entity.Company) error {
	query := `
		UPDATE companies
		SET name = $2, rif = $3, address = $4, phone = $5, email = $6,
		    logo_url = $7, invoice_notes = $8, warranty_text = $9, thank_you_text = $10,
		    printer_endpoint = $11, status = $12, updated_at = $13
		WHERE id = $1`
	_, err := r.pool.Exec(context.Background(), query,
		company.ID, company.Name, company.RIF, company.Address, company.Phone, company.Email,
		nullIfEmpty(company.LogoURL), nullIfEmpty(company.InvoiceNotes),
		nullIfEmpty(company.WarrantyText), nullIfEmpty(company.ThankYouText),
		nullIfEmpty(company.PrinterEndpoint),
		company.Status, company.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	return nil
}

// List devuelve empresas con paginación.
func (r *CompanyRepo) List(limit, offset int) ([]*entity.Company, error) {
	query := `SELECT ` + companyColumns + `
		FROM companies ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var list []*entity.Company
	for rows.Next() {
		var c entity.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.RIF, &c.Address, &c.Phone, &c.Email,
			&c.LogoURL, &c.InvoiceNotes, &c.WarrantyText, &c.ThankYouText, &c.PrinterEndpoint,
			&c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
