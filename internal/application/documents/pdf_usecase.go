package documents

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Produccion-api/internal/domain/document"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/pkg/money"
)

// VATRate IVA incluido en el total de las ventas.
var VATRate = decimal.RequireFromString("0.19")

// Receipt datos del comprobante, ya resueltos, que recibe el generador de PDF.
type Receipt struct {
	Kind         entity.Kind
	Title        string
	Number       string
	Date         time.Time
	DeliveryDate time.Time
	Status       string
	Counterparty *entity.CatalogEntry // nil si el tipo no tiene contraparte
	Lines        []ReceiptLine
	PriceApplies bool
	Subtotal     decimal.Decimal // total sin IVA
	Tax          decimal.Decimal
	Total        decimal.Decimal
}

// ReceiptLine línea del comprobante con el nombre de la referencia.
type ReceiptLine struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// ReceiptPDFGenerator puerto del generador de PDF.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(ctx context.Context, r Receipt) ([]byte, error)
}

// PDFUseCase genera el comprobante de una venta o de una orden de producción.
// Solo se imprimen documentos activos.
type PDFUseCase struct {
	docs      *Service
	catalogs  document.CatalogLookup
	generator ReceiptPDFGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(docs *Service, catalogs document.CatalogLookup, generator ReceiptPDFGenerator) *PDFUseCase {
	return &PDFUseCase{docs: docs, catalogs: catalogs, generator: generator}
}

// Download devuelve los bytes del PDF y el nombre de archivo sugerido.
func (uc *PDFUseCase) Download(ctx context.Context, cfg *document.KindConfig, id int) ([]byte, string, error) {
	// ── 1. Cargar documento y verificar que se puede imprimir ────────────────
	if !cfg.Printable {
		return nil, "", document.CheckPrintable(cfg, entity.Document{})
	}
	doc, err := uc.docs.Document(ctx, cfg, id)
	if err != nil {
		return nil, "", err
	}
	if err := document.CheckPrintable(cfg, doc); err != nil {
		return nil, "", err
	}

	// ── 2. Armar comprobante ─────────────────────────────────────────────────
	r, err := uc.buildReceipt(ctx, cfg, doc)
	if err != nil {
		return nil, "", err
	}

	// ── 3. Generar PDF ───────────────────────────────────────────────────────
	pdfBytes, err := uc.generator.GenerateReceiptPDF(ctx, r)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	number := doc.Number
	if number == "" {
		number = strconv.Itoa(doc.ID)
	}
	return pdfBytes, fmt.Sprintf("%s_%s.pdf", cfg.Resource, number), nil
}

func (uc *PDFUseCase) buildReceipt(ctx context.Context, cfg *document.KindConfig, doc entity.Document) (Receipt, error) {
	r := Receipt{
		Kind:         cfg.Kind,
		Title:        cfg.Noun.Text,
		Number:       doc.Number,
		Date:         doc.TransactionDate,
		DeliveryDate: doc.DeliveryDate,
		Status:       doc.Status,
		PriceApplies: cfg.PriceApplies,
		Total:        doc.Total,
	}
	if r.Date.IsZero() {
		r.Date = doc.RegistrationDate
	}
	if cfg.Counterparty != "" && doc.CounterpartyID > 0 {
		e, err := uc.catalogs.Lookup(ctx, cfg.Counterparty, doc.CounterpartyID)
		if err != nil {
			return Receipt{}, fmt.Errorf("pdf: obtener contraparte: %w", err)
		}
		r.Counterparty = e
	}
	for _, li := range doc.Items {
		name := cfg.ItemRef.Label.Text + " " + strconv.Itoa(li.RefID)
		if e, err := uc.catalogs.Lookup(ctx, cfg.ItemCatalog, li.RefID); err == nil && e != nil {
			name = e.Name
		}
		r.Lines = append(r.Lines, ReceiptLine{
			Name:      name,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
			Subtotal:  li.Subtotal,
		})
	}
	if cfg.PriceApplies {
		r.Subtotal, r.Tax = money.SplitVAT(doc.Total, VATRate)
	}
	return r, nil
}
