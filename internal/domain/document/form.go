package document

import (
	"strings"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// Claves adicionales de la vista editable.
const (
	ViewSubtotal      = "subtotal"
	ViewActivityState = "estado_actividad"
	ViewCounterparty  = "contraparte"
	ViewRefName       = "nombre"
)

// DraftFromForm lee los valores crudos de un formulario (mismos nombres de campo
// que la API remota). Todo valor escalar se toma como texto; las claves
// desconocidas van a Scratch.
func DraftFromForm(cfg *KindConfig, form Record) Draft {
	d := NewDraft(cfg)
	d.Scratch = map[string]any{}
	known := map[string]bool{cfg.ItemsField: true, WirePaid: true, WireActive: true, WireReason: true, cfg.IDField: true}

	for f, spec := range cfg.Header {
		known[spec.Wire] = true
		if v, ok := form[spec.Wire]; ok && v != nil {
			d.Set(f, strings.TrimSpace(toString(v)))
		}
	}
	if cfg.PaymentTracked {
		d.Paid = toBool(form[WirePaid], false)
	}
	d.ID = toInt(form[cfg.IDField])

	for _, m := range toMaps(form[cfg.ItemsField]) {
		it := DraftItem{
			RefID:    strings.TrimSpace(toString(m[cfg.ItemRef.Wire])),
			Quantity: strings.TrimSpace(toString(m[cfg.QuantityWire])),
		}
		if cfg.PriceApplies {
			it.UnitPrice = strings.TrimSpace(toString(m[cfg.PriceWire]))
		}
		d.Items = append(d.Items, it)
	}
	for k, v := range form {
		if !known[k] {
			d.Scratch[k] = v
		}
	}
	if !cfg.HasField(FieldStatus) {
		d.Status = ""
	}
	Recompute(&d)
	return d
}

// FormOf vista editable de un borrador: valores de cabecera como texto,
// líneas con su subtotal, total calculado y el estado de actividad.
func FormOf(cfg *KindConfig, d Draft) Record {
	view := Record{}
	if d.ID > 0 {
		view[cfg.IDField] = d.ID
	}
	for f, spec := range cfg.Header {
		view[spec.Wire] = d.Get(f)
	}
	if cfg.PaymentTracked {
		view[WirePaid] = d.Paid
	}
	if cfg.Lifecycle {
		active, reason := d.Activity.Flags()
		view[WireActive] = active
		view[WireReason] = reason
		view[ViewActivityState] = d.Activity.State.String()
	}
	items := make([]Record, 0, len(d.Items))
	for _, it := range d.Items {
		row := Record{
			cfg.ItemRef.Wire: it.RefID,
			cfg.QuantityWire: it.Quantity,
		}
		if cfg.PriceApplies {
			row[cfg.PriceWire] = it.UnitPrice
			row[ViewSubtotal] = it.Subtotal
		}
		items = append(items, row)
	}
	view[cfg.ItemsField] = items
	if cfg.PriceApplies {
		view[WireTotal] = d.Total
	}
	if d.CreatedAt != "" {
		view[WireCreatedAt] = d.CreatedAt
	}
	if d.UpdatedAt != "" {
		view[WireUpdatedAt] = d.UpdatedAt
	}
	return view
}

// IsActiveView indica si una vista o registro corresponde a un documento activo.
func IsActiveView(rec Record) bool {
	return toBool(rec[WireActive], true)
}

// ActivityOf estado de actividad de un registro de persistencia.
func ActivityOf(rec Record) entity.Activity {
	return entity.ActivityFromFlags(toBool(rec[WireActive], true), strings.TrimSpace(toString(rec[WireReason])))
}
