package dto

import "time"

// CreateCompanyRequest entrada para crear una empresa.
type CreateCompanyRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	RIF     string `json:"rif" validate:"required,min=1,max=20"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
}

// UpdateCompanyRequest entrada para actualizar una empresa (campos opcionales).
type UpdateCompanyRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=200"`
	Address         *string `json:"address"`
	Phone           *string `json:"phone"`
	Email           *string `json:"email" validate:"omitempty,email"`
	LogoURL         *string `json:"logo_url"`
	InvoiceNotes    *string `json:"invoice_notes"`
	WarrantyText    *string `json:"warranty_text"`
	ThankYouText    *string `json:"thank_you_text"`
	PrinterEndpoint *string `json:"printer_endpoint"`
	Status          *string `json:"status" validate:"omitempty,oneof=active suspended inactive"`
}

// CompanyResponse salida de una empresa.
type CompanyResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	RIF             string    `json:"rif"`
	Address         string    `json:"address"`
	Phone           string    `json:"phone"`
	Email           string    `json:"email"`
	LogoURL         string    `json:"logo_url,omitempty"`
	InvoiceNotes    string    `json:"invoice_notes,omitempty"`
	WarrantyText    string    `json:"warranty_text,omitempty"`
	ThankYouText    string    `json:"thank_you_text,omitempty"`
	PrinterEndpoint string    `json:"printer_endpoint,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
