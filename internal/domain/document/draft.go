package document

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// Record documento tal como lo intercambia la capa de persistencia:
// claves con los nombres de la API remota (id_proveedor, detalleCompras, ...).
type Record map[string]any

// Draft forma editable de un documento. Los campos numéricos y de fecha se
// guardan como texto tal como los escribió el usuario; la normalización ocurre
// al construir el payload.
type Draft struct {
	ID   int
	Kind entity.Kind

	CounterpartyID   string
	Number           string
	Description      string
	Supplies         string
	RegistrationDate string
	TransactionDate  string
	DeliveryDate     string
	PaymentDate      string
	Status           string
	Paid             bool
	Activity         entity.Activity

	Items []DraftItem
	Total decimal.Decimal

	CreatedAt string
	UpdatedAt string

	// Scratch datos auxiliares de la pantalla (filas de búsqueda, selección
	// temporal). Nunca se envían a persistencia.
	Scratch map[string]any
}

// DraftItem línea editable. Subtotal siempre es cantidad × precio.
type DraftItem struct {
	RefID     string
	Quantity  string
	UnitPrice string
	Subtotal  decimal.Decimal
}

// NewDraft borrador vacío de un tipo: lista de líneas vacía y estado activo.
func NewDraft(cfg *KindConfig) Draft {
	return Draft{
		Kind:     cfg.Kind,
		Status:   cfg.InitialStatus,
		Activity: entity.Active(),
		Items:    []DraftItem{},
		Total:    decimal.Zero,
	}
}

// Get valor de un campo de cabecera.
func (d *Draft) Get(f Field) string {
	switch f {
	case FieldCounterparty:
		return d.CounterpartyID
	case FieldNumber:
		return d.Number
	case FieldDescription:
		return d.Description
	case FieldSupplies:
		return d.Supplies
	case FieldRegistrationDate:
		return d.RegistrationDate
	case FieldTransactionDate:
		return d.TransactionDate
	case FieldDeliveryDate:
		return d.DeliveryDate
	case FieldPaymentDate:
		return d.PaymentDate
	case FieldStatus:
		return d.Status
	}
	return ""
}

// Set asigna un campo de cabecera.
func (d *Draft) Set(f Field, v string) {
	switch f {
	case FieldCounterparty:
		d.CounterpartyID = v
	case FieldNumber:
		d.Number = v
	case FieldDescription:
		d.Description = v
	case FieldSupplies:
		d.Supplies = v
	case FieldRegistrationDate:
		d.RegistrationDate = v
	case FieldTransactionDate:
		d.TransactionDate = v
	case FieldDeliveryDate:
		d.DeliveryDate = v
	case FieldPaymentDate:
		d.PaymentDate = v
	case FieldStatus:
		d.Status = v
	}
}

// AddItem agrega una línea vacía y devuelve su índice.
func (d *Draft) AddItem() int {
	d.Items = append(d.Items, DraftItem{Subtotal: decimal.Zero})
	return len(d.Items) - 1
}

// RemoveItem quita la línea en la posición i y recalcula el total.
func (d *Draft) RemoveItem(i int) {
	if i < 0 || i >= len(d.Items) {
		return
	}
	d.Items = append(d.Items[:i], d.Items[i+1:]...)
	Recompute(d)
}

// SetItemField cambia un campo de una línea y recalcula subtotal y total.
// name es "ref", "quantity" o "price".
func (d *Draft) SetItemField(i int, name, value string) {
	if i < 0 || i >= len(d.Items) {
		return
	}
	it := &d.Items[i]
	switch strings.ToLower(name) {
	case "ref":
		it.RefID = value
	case "quantity":
		it.Quantity = value
	case "price":
		it.UnitPrice = value
	}
	Recompute(d)
}
