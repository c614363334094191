// Package pdf implementa la representación gráfica de los documentos de
// facturación: facturas de venta, abonos a deuda, depósitos de saldo y notas
// de crédito.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razón Social + RIF  │  Tipo + N° Doc + Fecha       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  EMISOR: Dirección / Tel / Email                            │
//	│  CLIENTE: Nombre + RIF + dirección                          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | Total línea           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Descuento / IVA / TOTAL / Pagado       │
//	│  PAGOS: método + monto por línea                            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: notas + garantía + agradecimiento                  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appbilling "github.com/tu-usuario/facturacion-pro/internal/application/billing"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ appbilling.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(
	_ context.Context,
	invoice *entity.Invoice,
	company *entity.Company,
	customer *entity.Customer,
	items []entity.InvoiceItem,
	payments []entity.Payment,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(documentTitle(invoice), true).
		WithAuthor(company.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(invoice, company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(emisorRow(company))
	m.AddRows(clienteRow(customer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableItemRows(items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(invoice))
	for _, r := range paymentRows(payments) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range footerRows(invoice, company) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// documentTitle devuelve el rótulo del documento según tipo y modo.
func documentTitle(invoice *entity.Invoice) string {
	switch {
	case invoice.Type == entity.InvoiceTypeReturn && invoice.OriginalInvoiceID == entity.OriginalInvoiceWithdrawal:
		return "NOTA DE CRÉDITO — RETIRO DE SALDO"
	case invoice.Type == entity.InvoiceTypeReturn:
		return "NOTA DE CRÉDITO"
	case invoice.IsDebtPayment:
		return "RECIBO DE ABONO A DEUDA"
	case invoice.IsCreditDeposit:
		return "RECIBO DE DEPÓSITO DE SALDO"
	default:
		return "FACTURA"
	}
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: Razón social + RIF (izq) y tipo + N° documento + fecha (der).
func headerRow(invoice *entity.Invoice, company *entity.Company) core.Row {
	fecha := invoice.Date.Format("02/01/2006")

	return row.New(18).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("RIF: "+company.RIF, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(documentTitle(invoice), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(invoice.Number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// emisorRow: datos del emisor (empresa).
func emisorRow(company *entity.Company) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DEL EMISOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Dirección: %s   |   Tel: %s   |   Email: %s",
				nonEmpty(company.Address, "—"),
				nonEmpty(company.Phone, "—"),
				nonEmpty(company.Email, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// clienteRow: datos del cliente.
func clienteRow(customer *entity.Customer) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(customer.Name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("RIF: %s   |   Dirección: %s   |   Tel: %s",
				customer.RIF,
				nonEmpty(customer.Address, "—"),
				nonEmpty(customer.Phone, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 6, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Total", 3, align.Right),
	)
}

// tableItemRows: una fila por línea del documento.
func tableItemRows(items []entity.InvoiceItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				it.Quantity.String(),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(6).Add(text.New(
				it.Description,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				formatMoney(it.UnitPrice),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(3).Add(text.New(
				formatMoney(it.LineTotal()),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(invoice *entity.Invoice) core.Row {
	type pair struct {
		label string
		value string
		grand bool
	}
	pairs := []pair{
		{label: "Subtotal:", value: formatMoney(invoice.SubTotal)},
	}
	if invoice.DiscountValue.IsPositive() {
		pairs = append(pairs, pair{label: "Descuento:", value: "-" + formatMoney(invoice.DiscountValue)})
	}
	if invoice.TaxAmount.IsPositive() {
		pairs = append(pairs, pair{
			label: fmt.Sprintf("IVA (%s%%):", invoice.TaxRatePercent.String()),
			value: formatMoney(invoice.TaxAmount),
		})
	}
	pairs = append(pairs,
		pair{label: "TOTAL:", value: formatMoney(invoice.TotalAmount), grand: true},
		pair{label: "Pagado:", value: formatMoney(invoice.AmountPaid)},
		pair{label: "Pendiente:", value: formatMoney(invoice.AmountDue)},
	)

	labels := make([]core.Component, 0, len(pairs))
	values := make([]core.Component, 0, len(pairs))
	for i, p := range pairs {
		top := float64(i) * 5
		size := 9.0
		color := (*props.Color)(nil)
		style := fontstyle.Bold
		if p.grand {
			size = 10
			color = colorPrimary
		}
		labels = append(labels, text.New(p.label, props.Text{
			Style: style, Size: size, Align: align.Right, Right: 2, Top: top, Color: color,
		}))
		values = append(values, text.New(p.value, props.Text{
			Size: size, Align: align.Right, Right: 1, Top: top, Color: color,
		}))
	}

	height := float64(len(pairs)*5 + 4)
	return row.New(height).Add(
		col.New(5),
		col.New(4).Add(labels...),
		col.New(3).Add(values...),
	)
}

// paymentRows: una fila por línea de pago (métodos + vueltos).
func paymentRows(payments []entity.Payment) []core.Row {
	if len(payments) == 0 {
		return nil
	}
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("FORMAS DE PAGO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}
	for _, p := range payments {
		label := p.Method
		if p.Kind == entity.PaymentKindChangeRefund {
			label = "Vuelto (" + p.Method + ")"
		}
		rows = append(rows, row.New(5).Add(
			col.New(6).Add(text.New(label, props.Text{Size: 8, Left: 2, Top: 0.5})),
			col.New(6).Add(text.New(formatMoney(p.Amount), props.Text{
				Size: 8, Align: align.Right, Right: 1, Top: 0.5,
			})),
		))
	}
	return rows
}

// footerRows: notas del documento + textos configurados por la empresa.
func footerRows(invoice *entity.Invoice, company *entity.Company) []core.Row {
	var rows []core.Row
	add := func(s string, style props.Text) {
		if s == "" {
			return
		}
		rows = append(rows, row.New(7).Add(col.New(12).Add(text.New(s, style))))
	}

	add(invoice.Notes, props.Text{Size: 8, Color: colorGray, Top: 1})
	if invoice.ReasonForStatusChange != "" {
		add("Motivo: "+invoice.ReasonForStatusChange, props.Text{Size: 8, Color: colorGray, Top: 1})
	}
	add(company.InvoiceNotes, props.Text{Size: 7.5, Color: colorGray, Top: 1})
	add(company.WarrantyText, props.Text{Size: 7.5, Color: colorGray, Top: 1})
	add(company.ThankYouText, props.Text{
		Style: fontstyle.Bold, Size: 9, Align: align.Center, Color: colorPrimary, Top: 2,
	})
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney formatea un monto con dos decimales y puntos de miles.
// Ej: 25000 → "25.000,00"
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	entero, dec := s[:len(s)-3], s[len(s)-2:]
	n := len(entero)
	buf := make([]byte, 0, n+n/3+4)
	for i := 0; i < n; i++ {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, entero[i])
	}
	out := string(buf) + "," + dec
	if neg {
		out = "-" + out
	}
	return out
}
