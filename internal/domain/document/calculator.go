package document

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ComputeSubtotal cantidad × precio. Una entrada vacía o no numérica cuenta como 0.
func ComputeSubtotal(quantity, unitPrice string) decimal.Decimal {
	return parseLenient(quantity).Mul(parseLenient(unitPrice))
}

// ComputeTotal suma de los subtotales de las líneas.
func ComputeTotal(items []DraftItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal)
	}
	return total
}

// Recompute recalcula el subtotal de cada línea y el total del borrador.
// Se llama después de cualquier cambio en cantidad, precio o lista de líneas.
func Recompute(d *Draft) {
	for i := range d.Items {
		d.Items[i].Subtotal = ComputeSubtotal(d.Items[i].Quantity, d.Items[i].UnitPrice)
	}
	d.Total = ComputeTotal(d.Items)
}

func parseLenient(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return v
}
