// Package pdf genera los comprobantes imprimibles de ventas y órdenes de producción.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tipo de documento   │  N° + Fecha                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre + documento + contacto (si aplica)          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | Subtotal               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / IVA 19% / TOTAL (solo con precio)       │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

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

	"github.com/jhoicas/Produccion-api/internal/application/documents"
	"github.com/jhoicas/Produccion-api/pkg/money"
)

var _ documents.ReceiptPDFGenerator = (*MarotoReceiptGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 121, Green: 85, Blue: 61}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// MarotoReceiptGenerator implementa documents.ReceiptPDFGenerator con Maroto v2.
type MarotoReceiptGenerator struct {
	company string
}

// NewMarotoReceiptGenerator construye el generador; company va en el encabezado.
func NewMarotoReceiptGenerator(company string) *MarotoReceiptGenerator {
	return &MarotoReceiptGenerator{company: company}
}

// GenerateReceiptPDF genera el PDF y devuelve sus bytes.
func (g *MarotoReceiptGenerator) GenerateReceiptPDF(_ context.Context, r documents.Receipt) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(titleOf(r), true).
		WithAuthor(g.company, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	if r.Counterparty != nil {
		m.AddRows(counterpartyRow(r))
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	}

	m.AddRows(tableHeaderRow(r.PriceApplies))
	m.AddRows(tableRows(r)...)

	if r.PriceApplies {
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
		m.AddRows(totalsRow(r))
	}
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(r))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoReceiptGenerator) headerRow(r documents.Receipt) core.Row {
	fecha := "—"
	if !r.Date.IsZero() {
		fecha = r.Date.Format("02/01/2006")
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.company, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(strings.ToUpper(titleOf(r)), props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("N° "+nonEmpty(r.Number, "—"), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New("Fecha: "+fecha, props.Text{Size: 8, Align: align.Right, Top: 8, Color: colorGray}),
			text.New("Estado: "+nonEmpty(r.Status, "—"), props.Text{Size: 8, Align: align.Right, Top: 13, Color: colorGray}),
		),
	)
}

func counterpartyRow(r documents.Receipt) core.Row {
	c := r.Counterparty
	docID := strings.TrimSpace(c.DocumentType + " " + c.DocumentNumber)
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(c.Name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(fmt.Sprintf("Documento: %s   |   Email: %s   |   Contacto: %s",
				nonEmpty(docID, "—"), nonEmpty(c.Email, "—"), nonEmpty(c.Contact, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow(priced bool) core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	if !priced {
		return row.New(8).Add(h("Cant.", 2, align.Center), h("Producto", 10, align.Left))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 6, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Subtotal", 3, align.Right),
	)
}

func tableRows(r documents.Receipt) []core.Row {
	out := make([]core.Row, 0, len(r.Lines))
	cell := func(a align.Type) props.Text {
		return props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}
	}
	for _, l := range r.Lines {
		qty := money.Number(int64(l.Quantity))
		if !r.PriceApplies {
			out = append(out, row.New(7).Add(
				col.New(2).Add(text.New(qty, cell(align.Center))),
				col.New(10).Add(text.New(l.Name, cell(align.Left))),
			))
			continue
		}
		out = append(out, row.New(7).Add(
			col.New(1).Add(text.New(qty, cell(align.Center))),
			col.New(6).Add(text.New(l.Name, cell(align.Left))),
			col.New(2).Add(text.New(money.Format(l.UnitPrice), cell(align.Right))),
			col.New(3).Add(text.New(money.Format(l.Subtotal), cell(align.Right))),
		))
	}
	return out
}

func totalsRow(r documents.Receipt) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	grand := props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 13}
	return row.New(22).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:", 1),
			label("IVA (19%):", 7),
			text.New("TOTAL:", grand),
		),
		col.New(3).Add(
			value(money.Format(r.Subtotal), 1),
			value(money.Format(r.Tax), 7),
			text.New(money.Format(r.Total), grand),
		),
	)
}

func footerRow(r documents.Receipt) core.Row {
	msg := "Gracias por su compra."
	if !r.PriceApplies {
		msg = "Orden de producción para uso interno."
		if !r.DeliveryDate.IsZero() {
			msg += " Entrega: " + r.DeliveryDate.Format("02/01/2006") + "."
		}
	}
	return row.New(8).Add(col.New(12).Add(
		text.New(msg, props.Text{Size: 7, Color: colorGray, Top: 2, Align: align.Center}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func titleOf(r documents.Receipt) string {
	if r.PriceApplies {
		return "Comprobante de " + r.Title
	}
	return r.Title
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
