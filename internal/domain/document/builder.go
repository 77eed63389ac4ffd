package document

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// DateLayout formato de fecha (solo día) que espera la API remota.
const DateLayout = "2006-01-02"

// ParseDate acepta "2006-01-02" o un timestamp RFC3339; en ambos casos conserva solo el día.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if len(s) > len(DateLayout) {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return dateOnly(t), true
		}
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate devuelve "" para la fecha cero.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PrepareNew completa un borrador nuevo: fecha de registro de hoy si el tipo
// la maneja, estado inicial y estado activo. En los tipos con pago, el estado
// se deriva de Paid.
func PrepareNew(cfg *KindConfig, d *Draft, now time.Time) {
	d.ID = 0
	d.Kind = cfg.Kind
	if cfg.HasField(FieldRegistrationDate) && strings.TrimSpace(d.RegistrationDate) == "" {
		d.RegistrationDate = now.Format(DateLayout)
	}
	if strings.TrimSpace(d.Status) == "" {
		d.Status = cfg.InitialStatus
	}
	if cfg.PaymentTracked {
		syncPaymentStatus(d)
	}
	d.Activity = entity.Active()
	if d.Items == nil {
		d.Items = []DraftItem{}
	}
	Recompute(d)
}

// Canonical normaliza un borrador a la forma tipada. Los valores no numéricos
// quedan en cero; el borrador debería haber pasado por Validate antes.
func Canonical(cfg *KindConfig, d Draft) entity.Document {
	doc := entity.Document{
		ID:       d.ID,
		Kind:     cfg.Kind,
		Status:   strings.TrimSpace(d.Status),
		Paid:     d.Paid && cfg.PaymentTracked,
		Activity: d.Activity,
		Items:    make([]entity.LineItem, 0, len(d.Items)),
	}
	if cfg.HasField(FieldCounterparty) {
		doc.CounterpartyID, _ = strconv.Atoi(strings.TrimSpace(d.CounterpartyID))
	}
	if cfg.HasField(FieldNumber) {
		doc.Number = strings.TrimSpace(d.Number)
	}
	if cfg.HasField(FieldDescription) {
		doc.Description = strings.TrimSpace(d.Description)
	}
	if cfg.HasField(FieldSupplies) {
		doc.Supplies = strings.TrimSpace(d.Supplies)
	}
	doc.RegistrationDate = draftDate(cfg, FieldRegistrationDate, d.RegistrationDate)
	doc.TransactionDate = draftDate(cfg, FieldTransactionDate, d.TransactionDate)
	doc.DeliveryDate = draftDate(cfg, FieldDeliveryDate, d.DeliveryDate)
	doc.PaymentDate = draftDate(cfg, FieldPaymentDate, d.PaymentDate)
	if s, ok := cfg.AllowsStatus(doc.Status); ok {
		doc.Status = s
	}
	if doc.Status == "" {
		doc.Status = cfg.InitialStatus
	}

	total := decimal.Zero
	for _, it := range d.Items {
		li := entity.LineItem{Subtotal: decimal.Zero, UnitPrice: decimal.Zero}
		li.RefID, _ = strconv.Atoi(strings.TrimSpace(it.RefID))
		li.Quantity, _ = strconv.Atoi(strings.TrimSpace(it.Quantity))
		if cfg.PriceApplies {
			li.UnitPrice = parseLenient(it.UnitPrice)
			li.Subtotal = li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
			total = total.Add(li.Subtotal)
		}
		doc.Items = append(doc.Items, li)
	}
	doc.Total = total
	doc.CreatedAt, _ = time.Parse(time.RFC3339, d.CreatedAt)
	doc.UpdatedAt, _ = time.Parse(time.RFC3339, d.UpdatedAt)
	return doc
}

func draftDate(cfg *KindConfig, f Field, v string) time.Time {
	if !cfg.HasField(f) {
		return time.Time{}
	}
	t, _ := ParseDate(v)
	return t
}

// DraftOf convierte un documento tipado en su forma editable.
func DraftOf(cfg *KindConfig, doc entity.Document) Draft {
	d := Draft{
		ID:               doc.ID,
		Kind:             cfg.Kind,
		Number:           doc.Number,
		Description:      doc.Description,
		Supplies:         doc.Supplies,
		RegistrationDate: FormatDate(doc.RegistrationDate),
		TransactionDate:  FormatDate(doc.TransactionDate),
		DeliveryDate:     FormatDate(doc.DeliveryDate),
		PaymentDate:      FormatDate(doc.PaymentDate),
		Status:           doc.Status,
		Paid:             doc.Paid,
		Activity:         doc.Activity,
		Items:            make([]DraftItem, 0, len(doc.Items)),
		Total:            doc.Total,
	}
	if doc.CounterpartyID > 0 {
		d.CounterpartyID = strconv.Itoa(doc.CounterpartyID)
	}
	for _, li := range doc.Items {
		it := DraftItem{Quantity: strconv.Itoa(li.Quantity), Subtotal: decimal.Zero}
		if li.RefID > 0 {
			it.RefID = strconv.Itoa(li.RefID)
		}
		if cfg.PriceApplies {
			it.UnitPrice = li.UnitPrice.String()
			it.Subtotal = li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
		}
		d.Items = append(d.Items, it)
	}
	if !doc.CreatedAt.IsZero() {
		d.CreatedAt = doc.CreatedAt.Format(time.RFC3339)
	}
	if !doc.UpdatedAt.IsZero() {
		d.UpdatedAt = doc.UpdatedAt.Format(time.RFC3339)
	}
	return d
}

// Encode documento tipado a Record con los nombres de la API remota.
// Incluye identificador, estado de actividad y marcas de tiempo.
func Encode(cfg *KindConfig, doc entity.Document) Record {
	rec := Record{}
	if doc.ID > 0 {
		rec[cfg.IDField] = doc.ID
	}
	if cfg.HasField(FieldCounterparty) {
		rec[cfg.Wire(FieldCounterparty)] = doc.CounterpartyID
	}
	for f, v := range map[Field]string{FieldNumber: doc.Number, FieldDescription: doc.Description, FieldSupplies: doc.Supplies} {
		if cfg.HasField(f) {
			rec[cfg.Wire(f)] = v
		}
	}
	for f, t := range map[Field]time.Time{
		FieldRegistrationDate: doc.RegistrationDate,
		FieldTransactionDate:  doc.TransactionDate,
		FieldDeliveryDate:     doc.DeliveryDate,
	} {
		if cfg.HasField(f) && !t.IsZero() {
			rec[cfg.Wire(f)] = FormatDate(t)
		}
	}
	if cfg.HasField(FieldPaymentDate) {
		if doc.PaymentDate.IsZero() {
			rec[cfg.Wire(FieldPaymentDate)] = nil
		} else {
			rec[cfg.Wire(FieldPaymentDate)] = FormatDate(doc.PaymentDate)
		}
	}
	if cfg.HasField(FieldStatus) {
		rec[cfg.Wire(FieldStatus)] = doc.Status
	}
	if cfg.PaymentTracked {
		rec[WirePaid] = doc.Paid
	}
	if cfg.Lifecycle {
		active, reason := doc.Activity.Flags()
		rec[WireActive] = active
		if reason != "" {
			rec[WireReason] = reason
		} else {
			rec[WireReason] = nil
		}
	}

	items := make([]any, 0, len(doc.Items))
	for _, li := range doc.Items {
		m := map[string]any{
			cfg.ItemRef.Wire: li.RefID,
			cfg.QuantityWire: li.Quantity,
		}
		if cfg.PriceApplies {
			m[cfg.PriceWire] = li.UnitPrice.InexactFloat64()
		}
		items = append(items, m)
	}
	rec[cfg.ItemsField] = items
	if cfg.PriceApplies {
		rec[WireTotal] = doc.Total.InexactFloat64()
	}
	if !doc.CreatedAt.IsZero() {
		rec[WireCreatedAt] = doc.CreatedAt.Format(time.RFC3339)
	}
	if !doc.UpdatedAt.IsZero() {
		rec[WireUpdatedAt] = doc.UpdatedAt.Format(time.RFC3339)
	}
	return rec
}

// ToSavePayload construye exactamente lo que se envía al crear o actualizar:
// sin identificador, sin marcas de tiempo, sin campos de la pantalla y sin el
// par activo/anulación, que solo cambia por las rutas de ciclo de vida.
func ToSavePayload(cfg *KindConfig, d Draft) Record {
	if cfg.PaymentTracked {
		syncPaymentStatus(&d)
	}
	rec := Encode(cfg, Canonical(cfg, d))
	delete(rec, cfg.IDField)
	delete(rec, WireActive)
	delete(rec, WireReason)
	delete(rec, WireCreatedAt)
	delete(rec, WireUpdatedAt)
	return rec
}

// Decode lee un Record de persistencia con tolerancia: colecciones ausentes
// quedan vacías, montos en texto se convierten a número y los timestamps se
// recortan al día. Si el registro trae líneas, el total se deriva de ellas.
func Decode(cfg *KindConfig, rec Record) entity.Document {
	doc := entity.Document{
		ID:       toInt(rec[cfg.IDField]),
		Kind:     cfg.Kind,
		Activity: entity.Active(),
		Items:    []entity.LineItem{},
		Total:    decimal.Zero,
	}
	if doc.ID == 0 {
		doc.ID = toInt(rec["id"])
	}
	if cfg.HasField(FieldCounterparty) {
		doc.CounterpartyID = toInt(rec[cfg.Wire(FieldCounterparty)])
	}
	if cfg.HasField(FieldNumber) {
		doc.Number = toString(rec[cfg.Wire(FieldNumber)])
	}
	if cfg.HasField(FieldDescription) {
		doc.Description = toString(rec[cfg.Wire(FieldDescription)])
	}
	if cfg.HasField(FieldSupplies) {
		doc.Supplies = toString(rec[cfg.Wire(FieldSupplies)])
	}
	doc.RegistrationDate = recordDate(cfg, rec, FieldRegistrationDate)
	doc.TransactionDate = recordDate(cfg, rec, FieldTransactionDate)
	doc.DeliveryDate = recordDate(cfg, rec, FieldDeliveryDate)
	doc.PaymentDate = recordDate(cfg, rec, FieldPaymentDate)
	if cfg.HasField(FieldStatus) {
		doc.Status = toString(rec[cfg.Wire(FieldStatus)])
	}
	if cfg.PaymentTracked {
		doc.Paid = toBool(rec[WirePaid], false)
	}
	if cfg.Lifecycle {
		doc.Activity = ActivityOf(rec)
	}

	raw, ok := rec[cfg.ItemsField]
	if !ok || raw == nil {
		for _, alias := range cfg.ItemsAliases {
			if v, found := rec[alias]; found && v != nil {
				raw = v
				break
			}
		}
	}
	total := decimal.Zero
	for _, m := range toMaps(raw) {
		li := entity.LineItem{
			RefID:     toInt(m[cfg.ItemRef.Wire]),
			Quantity:  toInt(m[cfg.QuantityWire]),
			UnitPrice: decimal.Zero,
			Subtotal:  decimal.Zero,
		}
		if cfg.PriceApplies {
			li.UnitPrice = toDecimal(m[cfg.PriceWire])
			li.Subtotal = li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
			total = total.Add(li.Subtotal)
		}
		doc.Items = append(doc.Items, li)
	}
	if cfg.PriceApplies {
		if len(doc.Items) > 0 {
			doc.Total = total
		} else {
			doc.Total = toDecimal(rec[WireTotal])
		}
	}
	doc.CreatedAt = toTime(rec[WireCreatedAt])
	doc.UpdatedAt = toTime(rec[WireUpdatedAt])
	return doc
}

// FromPersisted Record de persistencia a borrador editable.
func FromPersisted(cfg *KindConfig, rec Record) Draft {
	return DraftOf(cfg, Decode(cfg, rec))
}

// syncPaymentStatus: en los tipos con pago, mientras el estado sea uno de los
// dos estados de pago se deriva de Paid. Sin pago no hay fecha de pago.
func syncPaymentStatus(d *Draft) {
	st := strings.TrimSpace(d.Status)
	if st == "" || st == entity.StatusAwaitingPayment || st == entity.StatusPendingPreparation {
		if d.Paid {
			d.Status = entity.StatusPendingPreparation
		} else {
			d.Status = entity.StatusAwaitingPayment
		}
	}
	if !d.Paid {
		d.PaymentDate = ""
	}
}

func recordDate(cfg *KindConfig, rec Record, f Field) time.Time {
	if !cfg.HasField(f) {
		return time.Time{}
	}
	return toTime(rec[cfg.Wire(f)])
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			f, _ := n.Float64()
			return int(f)
		}
		return int(i)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return i
	}
	return 0
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	}
	return ""
}

func toBool(v any, def bool) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		p, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return def
		}
		return p
	case float64:
		return b != 0
	case int:
		return b != 0
	}
	return def
}

func toDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case decimal.Decimal:
		return n
	case float64:
		return decimal.NewFromFloat(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case json.Number:
		return parseLenient(n.String())
	case string:
		return parseLenient(n)
	}
	return decimal.Zero
}

func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return t
		}
		return dateOnly(t)
	case string:
		d, _ := ParseDate(t)
		return d
	}
	return time.Time{}
}

func toMaps(v any) []map[string]any {
	switch list := v.(type) {
	case []map[string]any:
		return list
	case []any:
		out := make([]map[string]any, 0, len(list))
		for _, e := range list {
			switch m := e.(type) {
			case map[string]any:
				out = append(out, m)
			case Record:
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}
