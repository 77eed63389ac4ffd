// Package document contiene el motor genérico de ciclo de vida de los documentos
// comerciales (compras, ventas, pedidos, órdenes de producción y fichas técnicas).
//
// Cada tipo de documento se describe con un KindConfig: campos de cabecera
// requeridos, nombres de campo de las líneas, si aplica precio, etiquetas de
// estado permitidas y qué acciones de ciclo de vida soporta. El cálculo de
// totales, la validación, las transiciones y la construcción del payload son los
// mismos para todos los tipos.
package document

import (
	"strings"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// Field campo de cabecera genérico de un documento.
type Field string

const (
	FieldCounterparty     Field = "counterparty"
	FieldNumber           Field = "number"
	FieldDescription      Field = "description"
	FieldSupplies         Field = "supplies"
	FieldRegistrationDate Field = "registration_date"
	FieldTransactionDate  Field = "transaction_date"
	FieldDeliveryDate     Field = "delivery_date"
	FieldPaymentDate      Field = "payment_date"
	FieldStatus           Field = "status"
)

// Nombres de campo comunes a todos los recursos de la API remota.
const (
	WireActive    = "activo"
	WireReason    = "anulacion"
	WirePaid      = "pagado"
	WireTotal     = "total"
	WireCreatedAt = "createdAt"
	WireUpdatedAt = "updatedAt"
)

// DuplicateKey clave del error de documento para referencias repetidas entre líneas.
const DuplicateKey = "duplicados"

// Label nombre legible de un campo y su género gramatical, para los mensajes.
type Label struct {
	Text     string
	Feminine bool
}

// FieldSpec nombre del campo en la API remota y su etiqueta.
type FieldSpec struct {
	Wire  string
	Label Label
}

// KindConfig describe un tipo de documento para el motor genérico.
type KindConfig struct {
	Kind     entity.Kind
	Resource string // ruta del recurso en la API: compras, ventas, ...
	IDField  string // id_compra, id_venta, ...
	Noun     Label  // compra, venta, pedido, ...

	Counterparty entity.Catalog // catálogo de la contraparte; vacío si no aplica
	Header       map[Field]FieldSpec
	Required     []Field

	ItemsField   string   // detalleCompras, detalleVentas, ...
	ItemsAliases []string // nombres alternativos con los que la API devuelve las líneas
	ItemCatalog  entity.Catalog
	ItemRef      FieldSpec // id_insumo / id_producto
	QuantityWire string
	PriceWire    string

	PriceApplies     bool // las líneas llevan precio unitario y el documento total
	PriceRequired    bool // el precio unitario debe ser estrictamente positivo
	PriceFromCatalog bool // una línea sin precio toma el precio del catálogo

	InitialStatus  string
	StatusLabels   []string
	PaymentTracked bool   // eje pagado / esperando pago
	Lifecycle      bool   // eje activo / anulado
	Producible     bool   // acción producir (órdenes de producción)
	Deletable      bool   // borrado físico (fichas técnicas)
	PatchPath      string // sufijo de la ruta PATCH de ciclo de vida: estado | activo
	Printable      bool
}

// HasField indica si el tipo maneja el campo de cabecera.
func (c *KindConfig) HasField(f Field) bool {
	_, ok := c.Header[f]
	return ok
}

// Wire nombre del campo en la API remota; vacío si el tipo no lo maneja.
func (c *KindConfig) Wire(f Field) string {
	return c.Header[f].Wire
}

// AllowsStatus indica si la etiqueta pertenece al conjunto del tipo y devuelve
// la forma canónica (la comparación ignora mayúsculas y espacios).
func (c *KindConfig) AllowsStatus(label string) (string, bool) {
	label = strings.TrimSpace(label)
	for _, s := range c.StatusLabels {
		if strings.EqualFold(s, label) {
			return s, true
		}
	}
	return "", false
}

// Subject "La compra", "El pedido".
func (c *KindConfig) Subject() string {
	return article(c.Noun, true) + " " + c.Noun.Text
}

// Agree concuerda un participio con el género del documento: "anulad" -> anulada/anulado.
func (c *KindConfig) Agree(stem string) string {
	return agree(c.Noun, stem)
}

func article(l Label, upper bool) string {
	switch {
	case l.Feminine && upper:
		return "La"
	case l.Feminine:
		return "la"
	case upper:
		return "El"
	default:
		return "el"
	}
}

func agree(l Label, stem string) string {
	if l.Feminine {
		return stem + "a"
	}
	return stem + "o"
}

var (
	lblSupplier    = Label{Text: "proveedor"}
	lblCustomer    = Label{Text: "cliente"}
	lblProduct     = Label{Text: "producto"}
	lblSupplyItem  = Label{Text: "insumo"}
	lblStatus      = Label{Text: "estado"}
	lblDelivery    = Label{Text: "fecha de entrega", Feminine: true}
	lblPaymentDate = Label{Text: "fecha de pago", Feminine: true}
	lblDescription = Label{Text: "descripción", Feminine: true}
)

var configs = []*KindConfig{
	{
		Kind:         entity.KindPurchase,
		Resource:     "compras",
		IDField:      "id_compra",
		Noun:         Label{Text: "compra", Feminine: true},
		Counterparty: entity.CatalogSuppliers,
		Header: map[Field]FieldSpec{
			FieldCounterparty:     {Wire: "id_proveedor", Label: lblSupplier},
			FieldNumber:           {Wire: "numero_recibo", Label: Label{Text: "número de recibo"}},
			FieldTransactionDate:  {Wire: "fecha_compra", Label: Label{Text: "fecha de compra", Feminine: true}},
			FieldRegistrationDate: {Wire: "fecha_registro", Label: Label{Text: "fecha de registro", Feminine: true}},
			FieldStatus:           {Wire: "estado", Label: lblStatus},
		},
		Required:      []Field{FieldCounterparty, FieldTransactionDate, FieldRegistrationDate, FieldNumber},
		ItemsField:    "detalleCompras",
		ItemsAliases:  []string{"detalles"},
		ItemCatalog:   entity.CatalogSupplyItems,
		ItemRef:       FieldSpec{Wire: "id_insumo", Label: lblSupplyItem},
		QuantityWire:  "cantidad",
		PriceWire:     "precio_unitario",
		PriceApplies:  true,
		PriceRequired: true,
		InitialStatus: entity.StatusCompleted,
		StatusLabels:  []string{entity.StatusPending, entity.StatusCompleted},
		Lifecycle:     true,
		PatchPath:     "estado",
	},
	{
		Kind:         entity.KindSale,
		Resource:     "ventas",
		IDField:      "id_venta",
		Noun:         Label{Text: "venta", Feminine: true},
		Counterparty: entity.CatalogCustomers,
		Header: map[Field]FieldSpec{
			FieldCounterparty:    {Wire: "id_cliente", Label: lblCustomer},
			FieldNumber:          {Wire: "numero_venta", Label: Label{Text: "número de venta"}},
			FieldTransactionDate: {Wire: "fecha_venta", Label: Label{Text: "fecha de venta", Feminine: true}},
			FieldDeliveryDate:    {Wire: "fecha_entrega", Label: lblDelivery},
			FieldPaymentDate:     {Wire: "fecha_pago", Label: lblPaymentDate},
			FieldStatus:          {Wire: "estado", Label: lblStatus},
		},
		Required:         []Field{FieldCounterparty, FieldNumber, FieldTransactionDate},
		ItemsField:       "detalleVentas",
		ItemsAliases:     []string{"detalles"},
		ItemCatalog:      entity.CatalogProducts,
		ItemRef:          FieldSpec{Wire: "id_producto", Label: lblProduct},
		QuantityWire:     "cantidad",
		PriceWire:        "precio_unitario",
		PriceApplies:     true,
		PriceFromCatalog: true,
		InitialStatus:    entity.StatusAwaitingPayment,
		StatusLabels: []string{
			entity.StatusAwaitingPayment, entity.StatusPendingPreparation,
			entity.StatusPending, entity.StatusInPreparation, entity.StatusDone,
		},
		PaymentTracked: true,
		Lifecycle:      true,
		PatchPath:      "estado",
		Printable:      true,
	},
	{
		Kind:         entity.KindOrder,
		Resource:     "pedidos",
		IDField:      "id_pedido",
		Noun:         Label{Text: "pedido"},
		Counterparty: entity.CatalogCustomers,
		Header: map[Field]FieldSpec{
			FieldCounterparty: {Wire: "id_cliente", Label: lblCustomer},
			FieldNumber:       {Wire: "numero_pedido", Label: Label{Text: "número de pedido"}},
			FieldDeliveryDate: {Wire: "fecha_entrega", Label: lblDelivery},
			FieldPaymentDate:  {Wire: "fecha_pago", Label: lblPaymentDate},
			FieldStatus:       {Wire: "estado", Label: lblStatus},
		},
		Required:      []Field{FieldCounterparty, FieldNumber, FieldDeliveryDate, FieldStatus},
		ItemsField:    "detallesPedido",
		ItemCatalog:   entity.CatalogProducts,
		ItemRef:       FieldSpec{Wire: "id_producto", Label: lblProduct},
		QuantityWire:  "cantidad",
		InitialStatus: entity.StatusAwaitingPayment,
		StatusLabels: []string{
			entity.StatusAwaitingPayment, entity.StatusPendingPreparation,
			entity.StatusPending, entity.StatusInPreparation, entity.StatusDone,
		},
		PaymentTracked: true,
		Lifecycle:      true,
		PatchPath:      "estado",
	},
	{
		Kind:     entity.KindProductionOrder,
		Resource: "ordenesproduccion",
		IDField:  "id_orden",
		Noun:     Label{Text: "orden de producción", Feminine: true},
		Header: map[Field]FieldSpec{
			FieldNumber:           {Wire: "numero_orden", Label: Label{Text: "número de orden"}},
			FieldRegistrationDate: {Wire: "fecha_orden", Label: Label{Text: "fecha de orden", Feminine: true}},
			FieldDeliveryDate:     {Wire: "fecha_entrega", Label: lblDelivery},
			FieldStatus:           {Wire: "estado", Label: lblStatus},
		},
		Required:      []Field{FieldNumber, FieldDeliveryDate},
		ItemsField:    "ordenProduccionDetalles",
		ItemsAliases:  []string{"detalles"},
		ItemCatalog:   entity.CatalogProducts,
		ItemRef:       FieldSpec{Wire: "id_producto", Label: lblProduct},
		QuantityWire:  "cantidad",
		InitialStatus: entity.StatusPending,
		StatusLabels:  []string{entity.StatusPending, entity.StatusInProduction, entity.StatusProduced},
		Lifecycle:     true,
		Producible:    true,
		PatchPath:     "activo",
		Printable:     true,
	},
	{
		Kind:         entity.KindTechnicalSheet,
		Resource:     "fichastecnicas",
		IDField:      "id_ficha",
		Noun:         Label{Text: "ficha técnica", Feminine: true},
		Counterparty: entity.CatalogProducts,
		Header: map[Field]FieldSpec{
			FieldCounterparty: {Wire: "id_producto", Label: lblProduct},
			FieldDescription:  {Wire: "descripcion", Label: lblDescription},
			FieldSupplies:     {Wire: "insumos", Label: Label{Text: "descripción de insumos", Feminine: true}},
		},
		Required:     []Field{FieldCounterparty, FieldDescription, FieldSupplies},
		ItemsField:   "detallesFichaTecnicat",
		ItemCatalog:  entity.CatalogSupplyItems,
		ItemRef:      FieldSpec{Wire: "id_insumo", Label: lblSupplyItem},
		QuantityWire: "cantidad",
		Deletable:    true,
	},
}

// Configs devuelve las configuraciones de todos los tipos en orden estable.
func Configs() []*KindConfig {
	out := make([]*KindConfig, len(configs))
	copy(out, configs)
	return out
}

// ConfigFor busca la configuración de un tipo.
func ConfigFor(kind entity.Kind) (*KindConfig, bool) {
	for _, c := range configs {
		if c.Kind == kind {
			return c, true
		}
	}
	return nil, false
}

// ConfigByResource busca la configuración por ruta de recurso (compras, ventas, ...).
func ConfigByResource(resource string) (*KindConfig, bool) {
	for _, c := range configs {
		if c.Resource == resource {
			return c, true
		}
	}
	return nil, false
}
