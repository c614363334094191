package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/facturacion-pro/internal/application/billing"
	"github.com/tu-usuario/facturacion-pro/internal/application/dto"
)

// InvoiceHandler maneja las peticiones HTTP de facturación (protegido).
type InvoiceHandler struct {
	create     *billing.CreateInvoiceUseCase
	cancel     *billing.CancelInvoiceUseCase
	creditNote *billing.CreditNoteUseCase
	pdf        *billing.PDFUseCase
	print      *billing.PrintUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(
	create *billing.CreateInvoiceUseCase,
	cancel *billing.CancelInvoiceUseCase,
	creditNote *billing.CreditNoteUseCase,
	pdf *billing.PDFUseCase,
	print *billing.PrintUseCase,
) *InvoiceHandler {
	return &InvoiceHandler{create: create, cancel: cancel, creditNote: creditNote, pdf: pdf, print: print}
}

// Create liquida y emite un documento: venta ordinaria, abono a deuda o
// depósito de saldo según los flags del body.
// POST /api/invoices
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	invoice, err := h.create.CreateInvoice(c.Context(), companyID, userID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// List lista los documentos de la empresa, más reciente primero.
// GET /api/invoices?limit=20&offset=0
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	list, err := h.create.ListInvoices(c.Context(), companyID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// GetByID obtiene el detalle completo de un documento.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	invoice, err := h.create.GetInvoice(c.Context(), companyID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(invoice)
}

// Cancel anula una factura activa y revierte sus efectos sobre los saldos.
// POST /api/invoices/:id/cancel
func (h *InvoiceHandler) Cancel(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	var in dto.CancelInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	invoice, err := h.cancel.Cancel(c.Context(), companyID, id, in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(invoice)
}

// CreditNote emite la nota de crédito (devolución total) de una venta.
// POST /api/invoices/:id/credit-note
func (h *InvoiceHandler) CreditNote(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	var in dto.CreateCreditNoteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	note, err := h.creditNote.CreateFromInvoice(c.Context(), companyID, id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

// DownloadPDF descarga la representación gráfica del documento.
// GET /api/invoices/:id/pdf
func (h *InvoiceHandler) DownloadPDF(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	pdfBytes, filename, err := h.pdf.DownloadInvoicePDF(c.Context(), companyID, id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}

// Print reimprime el documento en el puente de impresora fiscal.
// POST /api/invoices/:id/print?simplified=true
func (h *InvoiceHandler) Print(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	simplified := c.QueryBool("simplified", false)
	result, err := h.print.PrintInvoice(c.Context(), companyID, id, simplified)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// PrinterStatus sondea la vida del puente de impresora configurado.
// GET /api/printer/status
func (h *InvoiceHandler) PrinterStatus(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	status, err := h.print.BridgeStatus(c.Context(), companyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(status)
}
