// Package money formatea montos en pesos colombianos.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.MustParse("es-CO"))

// Format "$ 1.250.000". Los pesos se muestran sin decimales (redondeo al entero).
func Format(v decimal.Decimal) string {
	return printer.Sprintf("$ %d", v.Round(0).IntPart())
}

// Number entero con separador de miles, sin símbolo.
func Number(n int64) string {
	return printer.Sprintf("%d", n)
}

// SplitVAT separa un total con IVA incluido en base e impuesto: base = total / (1 + tasa).
// La base se redondea a 2 decimales y el impuesto es la diferencia.
func SplitVAT(total, rate decimal.Decimal) (base, tax decimal.Decimal) {
	base = total.Div(decimal.NewFromInt(1).Add(rate)).Round(2)
	return base, total.Sub(base)
}
