package document_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Produccion-api/internal/domain/document"
)

func TestComputeSubtotal(t *testing.T) {
	cases := []struct {
		name     string
		qty      string
		price    string
		expected string
	}{
		{"valores normales", "3", "10.00", "30"},
		{"precio con decimales", "2", "5.50", "11"},
		{"cantidad vacía cuenta como cero", "", "10", "0"},
		{"precio no numérico cuenta como cero", "4", "abc", "0"},
		{"espacios alrededor", " 2 ", " 1.25 ", "2.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := document.ComputeSubtotal(tc.qty, tc.price)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.expected)), "obtenido %s", got)
		})
	}
}

func TestComputeTotal_ColeccionVaciaEsCero(t *testing.T) {
	assert.True(t, document.ComputeTotal(nil).IsZero())
	assert.True(t, document.ComputeTotal([]document.DraftItem{}).IsZero())
}

// TestComputeTotal_SumaDeCantidadPorPrecio: el total es la suma de cantidad × precio
// para cualquier colección.
func TestComputeTotal_SumaDeCantidadPorPrecio(t *testing.T) {
	collections := [][][2]string{
		{{"1", "1"}},
		{{"3", "10.00"}, {"2", "5.50"}},
		{{"7", "0.33"}, {"1", "1000"}, {"12", "2.75"}},
		{{"0", "9"}, {"5", ""}},
	}
	for _, col := range collections {
		d := document.Draft{}
		expected := decimal.Zero
		for _, it := range col {
			d.Items = append(d.Items, document.DraftItem{Quantity: it[0], UnitPrice: it[1]})
			q, _ := decimal.NewFromString(it[0])
			p, _ := decimal.NewFromString(it[1])
			expected = expected.Add(q.Mul(p))
		}
		document.Recompute(&d)
		assert.True(t, d.Total.Equal(expected), "total %s, esperado %s", d.Total, expected)
		assert.True(t, document.ComputeTotal(d.Items).Equal(expected))
	}
}

func TestDraft_RecalculaEnCadaCambioDeLinea(t *testing.T) {
	d := document.Draft{}
	i := d.AddItem()
	d.SetItemField(i, "quantity", "3")
	d.SetItemField(i, "price", "10.00")
	assert.True(t, d.Total.Equal(decimal.NewFromInt(30)))

	j := d.AddItem()
	d.SetItemField(j, "quantity", "2")
	d.SetItemField(j, "price", "5.50")
	assert.True(t, d.Total.Equal(decimal.RequireFromString("41.00")))

	d.RemoveItem(0)
	assert.True(t, d.Total.Equal(decimal.NewFromInt(11)))
	assert.Len(t, d.Items, 1)
}
