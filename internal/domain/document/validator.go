package document

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// Validate revisa un borrador y devuelve los errores por campo. Un mapa vacío
// significa que el borrador se puede guardar. Las claves de cabecera usan el
// nombre del campo en la API; las de líneas llevan el índice (cantidad_2).
// Las referencias repetidas se reportan una sola vez con DuplicateKey.
func Validate(cfg *KindConfig, d Draft) map[string]string {
	errs := make(map[string]string)

	for _, f := range cfg.Required {
		spec := cfg.Header[f]
		if strings.TrimSpace(d.Get(f)) == "" {
			errs[spec.Wire] = requiredMessage(spec.Label)
		}
	}
	if cfg.HasField(FieldCounterparty) {
		if v := strings.TrimSpace(d.CounterpartyID); v != "" {
			if _, ok := positiveInt(v); !ok {
				spec := cfg.Header[FieldCounterparty]
				errs[spec.Wire] = invalidMessage(spec.Label)
			}
		}
	}
	for _, f := range []Field{FieldRegistrationDate, FieldTransactionDate, FieldDeliveryDate, FieldPaymentDate} {
		if !cfg.HasField(f) {
			continue
		}
		if v := strings.TrimSpace(d.Get(f)); v != "" {
			if _, ok := ParseDate(v); !ok {
				spec := cfg.Header[f]
				errs[spec.Wire] = invalidMessage(spec.Label)
			}
		}
	}
	if cfg.HasField(FieldStatus) {
		if v := strings.TrimSpace(d.Status); v != "" {
			if _, ok := cfg.AllowsStatus(v); !ok {
				errs[cfg.Wire(FieldStatus)] = fmt.Sprintf("El estado %q no es válido", v)
			}
		}
	}

	if len(d.Items) == 0 {
		errs[cfg.ItemsField] = fmt.Sprintf("Debe agregar al menos %s", withIndefinite(cfg.ItemRef.Label))
	}

	seen := make(map[string]bool, len(d.Items))
	duplicated := false
	for i, it := range d.Items {
		ref := strings.TrimSpace(it.RefID)
		refKey := indexedKey(cfg.ItemRef.Wire, i)
		if ref == "" {
			errs[refKey] = requiredMessage(cfg.ItemRef.Label)
		} else if id, ok := positiveInt(ref); !ok {
			errs[refKey] = invalidMessage(cfg.ItemRef.Label)
		} else {
			key := strconv.Itoa(id)
			if seen[key] {
				duplicated = true
			}
			seen[key] = true
		}

		if _, ok := positiveInt(strings.TrimSpace(it.Quantity)); !ok {
			errs[indexedKey(cfg.QuantityWire, i)] = "La cantidad debe ser un número entero mayor a 0"
		}

		if !cfg.PriceApplies {
			continue
		}
		price := strings.TrimSpace(it.UnitPrice)
		priceKey := indexedKey(cfg.PriceWire, i)
		switch {
		case cfg.PriceRequired:
			p, err := decimal.NewFromString(price)
			if err != nil || !p.IsPositive() {
				errs[priceKey] = "El precio unitario debe ser mayor a 0"
			} else if msg := priceScaleError(p); msg != "" {
				errs[priceKey] = msg
			}
		case price != "":
			p, err := decimal.NewFromString(price)
			if err != nil || p.IsNegative() {
				errs[priceKey] = "El precio unitario no es válido"
			} else if msg := priceScaleError(p); msg != "" {
				errs[priceKey] = msg
			}
		}
	}
	if duplicated {
		errs[DuplicateKey] = fmt.Sprintf("No se pueden seleccionar %ss duplicados.", cfg.ItemRef.Label.Text)
	}
	return errs
}

// ValidateDraft igual que Validate pero devuelve un *domain.ValidationError (o nil).
func ValidateDraft(cfg *KindConfig, d Draft) error {
	return domain.NewValidationError(Validate(cfg, d))
}

// CatalogLookup resuelve una entrada de catálogo; devuelve (nil, nil) si no existe.
type CatalogLookup interface {
	Lookup(ctx context.Context, catalog entity.Catalog, id int) (*entity.CatalogEntry, error)
}

// CheckReferences verifica que la contraparte y las referencias de las líneas
// existan en su catálogo y estén activas. Las referencias mal formadas se
// ignoran aquí; ya las reporta Validate.
func CheckReferences(ctx context.Context, cfg *KindConfig, d Draft, lookup CatalogLookup) (map[string]string, error) {
	errs := make(map[string]string)
	if cfg.Counterparty != "" && cfg.HasField(FieldCounterparty) {
		if id, ok := positiveInt(strings.TrimSpace(d.CounterpartyID)); ok {
			entry, err := lookup.Lookup(ctx, cfg.Counterparty, id)
			if err != nil {
				return nil, err
			}
			if entry == nil || !entry.Active {
				spec := cfg.Header[FieldCounterparty]
				errs[spec.Wire] = unavailableMessage(spec.Label)
			}
		}
	}
	if cfg.ItemCatalog == "" {
		return errs, nil
	}
	for i, it := range d.Items {
		id, ok := positiveInt(strings.TrimSpace(it.RefID))
		if !ok {
			continue
		}
		entry, err := lookup.Lookup(ctx, cfg.ItemCatalog, id)
		if err != nil {
			return nil, err
		}
		if entry == nil || !entry.Active {
			errs[indexedKey(cfg.ItemRef.Wire, i)] = unavailableMessage(cfg.ItemRef.Label)
		}
	}
	return errs, nil
}

func indexedKey(wire string, i int) string {
	name := strings.TrimPrefix(wire, "id_")
	return name + "_" + strconv.Itoa(i)
}

func positiveInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func requiredMessage(l Label) string {
	return fmt.Sprintf("%s %s es %s", article(l, true), l.Text, agree(l, "obligatori"))
}

func invalidMessage(l Label) string {
	return fmt.Sprintf("%s %s no es %s", article(l, true), l.Text, agree(l, "válid"))
}

func unavailableMessage(l Label) string {
	return fmt.Sprintf("%s %s no existe o está %s", article(l, true), l.Text, agree(l, "inactiv"))
}

func withIndefinite(l Label) string {
	if l.Feminine {
		return "una " + l.Text
	}
	return "un " + l.Text
}

// Límites del precio unitario: centavos y magnitud que el número JSON de la
// persistencia representa sin pérdida.
const PriceDecimals = 2

var maxUnitPrice = decimal.RequireFromString("999999999999.99")

func priceScaleError(p decimal.Decimal) string {
	if !p.Equal(p.Round(PriceDecimals)) {
		return fmt.Sprintf("El precio unitario admite máximo %d decimales", PriceDecimals)
	}
	if p.GreaterThan(maxUnitPrice) {
		return "El precio unitario excede el máximo permitido"
	}
	return ""
}
