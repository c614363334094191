package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/facturacion-pro/internal/application/auth"
	"github.com/tu-usuario/facturacion-pro/internal/application/billing"
	"github.com/tu-usuario/facturacion-pro/internal/application/usecase"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC     *usecase.CompanyUseCase
	CustomerUC    *billing.CustomerUseCase
	CreateInvoice *billing.CreateInvoiceUseCase
	CancelInvoice *billing.CancelInvoiceUseCase
	CreditNoteUC  *billing.CreditNoteUseCase
	PDFUC         *billing.PDFUseCase
	PrintUC       *billing.PrintUseCase
	AuthUC        *auth.AuthUseCase
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Companies (público por ahora; se puede proteger con AuthMiddleware(deps.JWTSecret))
	companies := api.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Get("/", companyHandler.List)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)
	companies.Put("/:id", AuthMiddleware(deps.JWTSecret), RequireRole(entity.RoleAdmin), companyHandler.Update)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Customers (protegido)
	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC, deps.CreditNoteUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Get("/:id/invoices", customerHandler.History)
	customers.Post("/:id/credit-withdrawal", customerHandler.CreditWithdrawal)

	// Invoices (protegido)
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.CreateInvoice, deps.CancelInvoice, deps.CreditNoteUC, deps.PDFUC, deps.PrintUC)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)
	invoices.Post("/:id/print", invoiceHandler.Print)
	// Anulaciones y notas de crédito quedan reservadas al administrador.
	invoices.Post("/:id/cancel", RequireRole(entity.RoleAdmin), invoiceHandler.Cancel)
	invoices.Post("/:id/credit-note", RequireRole(entity.RoleAdmin), invoiceHandler.CreditNote)

	// Puente de impresora fiscal (protegido)
	protected.Get("/printer/status", invoiceHandler.PrinterStatus)
}
