package entity

import "time"

// Company representa una organización/tenant del sistema (enfoque Venezuela).
type Company struct {
	ID        string
	Name      string
	RIF       string // RIF venezolano (J-12345678-9)
	Address   string
	Phone     string
	Email     string
	LogoURL   string
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time

	// Textos de pie de factura (impresión y PDF).
	InvoiceNotes string
	WarrantyText string
	ThankYouText string

	// Endpoint del puente de impresora fiscal (vacío = sin impresora configurada).
	PrinterEndpoint string
}
