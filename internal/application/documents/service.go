// Package documents orquesta el ciclo de vida de los documentos comerciales:
// arma el borrador desde el formulario, lo valida, aplica las transiciones y
// delega la persistencia en el DocumentStore configurado.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/document"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/jhoicas/Produccion-api/pkg/logger"
)

// Service casos de uso de documentos, comunes a todos los tipos.
type Service struct {
	store    repository.DocumentStore
	catalogs document.CatalogLookup
	inflight *InFlight
	log      *logger.Logger
	now      func() time.Time
}

// NewService construye el servicio. catalogs resuelve contrapartes y referencias
// de las líneas (normalmente el CatalogUseCase con caché).
func NewService(store repository.DocumentStore, catalogs document.CatalogLookup, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		store:    store,
		catalogs: catalogs,
		inflight: NewInFlight(),
		log:      log,
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj (pruebas).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ── Lectura ──────────────────────────────────────────────────────────────────

// List lista los documentos del tipo como vistas editables, con el nombre de la
// contraparte. OnlyActive descarta inactivos y anulados.
func (s *Service) List(ctx context.Context, cfg *document.KindConfig, in dto.DocumentListRequest) (*dto.DocumentListResponse, error) {
	in.DefaultPage()
	records, err := s.store.List(ctx, cfg.Kind)
	if err != nil {
		s.logPersistence(cfg, 0, "listar", err)
		return nil, err
	}
	views := make([]document.Record, 0, len(records))
	for _, rec := range records {
		if in.OnlyActive && cfg.Lifecycle && !document.IsActiveView(rec) {
			continue
		}
		views = append(views, s.view(ctx, cfg, document.FromPersisted(cfg, rec)))
	}
	start, end := in.Window(len(views))
	return &dto.DocumentListResponse{
		Items: views[start:end],
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: len(views)},
	}, nil
}

// Get devuelve la vista editable de un documento.
func (s *Service) Get(ctx context.Context, cfg *document.KindConfig, id int) (document.Record, error) {
	doc, err := s.load(ctx, cfg, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cfg, document.DraftOf(cfg, doc)), nil
}

// Document devuelve el documento tipado (comprobantes PDF).
func (s *Service) Document(ctx context.Context, cfg *document.KindConfig, id int) (entity.Document, error) {
	return s.load(ctx, cfg, id)
}

// ── Borradores ───────────────────────────────────────────────────────────────

// Preview valida un borrador sin guardarlo: recalcula totales, aplica precios de
// catálogo y devuelve el mapa de errores; si es válido incluye el payload listo
// para enviar.
func (s *Service) Preview(ctx context.Context, cfg *document.KindConfig, form document.Record) (*dto.PreviewResponse, error) {
	draft := document.DraftFromForm(cfg, form)
	if draft.ID == 0 {
		document.PrepareNew(cfg, &draft, s.now())
	}
	s.applyCatalogPrices(ctx, cfg, &draft)
	errs, err := s.check(ctx, cfg, draft)
	if err != nil {
		return nil, err
	}
	out := &dto.PreviewResponse{Valid: len(errs) == 0, Errors: errs, Draft: document.FormOf(cfg, draft)}
	if out.Valid {
		out.Payload = document.ToSavePayload(cfg, draft)
	}
	return out, nil
}

// Create valida y guarda un documento nuevo. idemKey identifica el guardado
// lógico; un segundo Create con la misma clave mientras el primero sigue en
// curso se rechaza.
func (s *Service) Create(ctx context.Context, cfg *document.KindConfig, form document.Record, idemKey string) (*dto.DocumentResult, error) {
	draft := document.DraftFromForm(cfg, form)
	document.PrepareNew(cfg, &draft, s.now())

	idemKey = strings.TrimSpace(idemKey)
	guardKey := idemKey
	if guardKey == "" && strings.TrimSpace(draft.Number) != "" {
		guardKey = "numero:" + strings.TrimSpace(draft.Number)
	}
	if idemKey == "" {
		idemKey = uuid.NewString()
	}
	if guardKey == "" {
		guardKey = idemKey
	}
	release, err := s.begin(cfg, 0, "save:"+string(cfg.Kind)+":"+guardKey)
	if err != nil {
		return nil, err
	}
	defer release()

	s.applyCatalogPrices(ctx, cfg, &draft)
	errs, err := s.check(ctx, cfg, draft)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, domain.NewValidationError(errs)
	}

	payload := document.ToSavePayload(cfg, draft)
	saved, err := s.store.Create(repository.WithIdempotencyKey(ctx, idemKey), cfg.Kind, payload)
	if err != nil {
		s.logPersistence(cfg, 0, document.ActionCreate, err)
		return nil, err
	}
	if len(saved) == 0 {
		saved = payload
	}
	result := document.FromPersisted(cfg, saved)
	s.log.Info().Str("kind", string(cfg.Kind)).Int("id", result.ID).Str("action", string(document.ActionCreate)).
		Str("total", result.Total.StringFixed(2)).Msg("documento creado")
	return &dto.DocumentResult{
		Document:     s.view(ctx, cfg, result),
		Notification: document.Succeeded(cfg, document.ActionCreate),
	}, nil
}

// Update reemplaza cabecera y líneas de un documento existente. La fecha de
// registro y el estado de actividad se conservan; un documento anulado no se edita.
func (s *Service) Update(ctx context.Context, cfg *document.KindConfig, id int, form document.Record) (*dto.DocumentResult, error) {
	release, err := s.begin(cfg, id, docKey(cfg, id))
	if err != nil {
		return nil, err
	}
	defer release()

	current, err := s.load(ctx, cfg, id)
	if err != nil {
		return nil, err
	}
	if err := document.CheckEditable(cfg, current); err != nil {
		s.logPolicy(cfg, id, document.ActionUpdate, err)
		return nil, err
	}

	draft := document.DraftFromForm(cfg, form)
	draft.ID = id
	draft.Activity = current.Activity
	if cfg.HasField(document.FieldRegistrationDate) {
		draft.RegistrationDate = document.FormatDate(current.RegistrationDate)
	}
	if v, ok := form[cfg.Wire(document.FieldStatus)]; !ok || v == nil || strings.TrimSpace(draft.Status) == "" {
		draft.Status = current.Status
	}
	if _, ok := form[document.WirePaid]; cfg.PaymentTracked && !ok {
		draft.Paid = current.Paid
		if strings.TrimSpace(draft.PaymentDate) == "" {
			draft.PaymentDate = document.FormatDate(current.PaymentDate)
		}
	}
	s.applyCatalogPrices(ctx, cfg, &draft)
	errs, err := s.check(ctx, cfg, draft)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, domain.NewValidationError(errs)
	}

	saved, err := s.store.Update(ctx, cfg.Kind, id, document.ToSavePayload(cfg, draft))
	if err != nil {
		s.logPersistence(cfg, id, document.ActionUpdate, err)
		return nil, err
	}
	s.log.Info().Str("kind", string(cfg.Kind)).Int("id", id).Str("action", string(document.ActionUpdate)).Msg("documento actualizado")
	return s.result(ctx, cfg, id, saved, document.Canonical(cfg, draft), document.ActionUpdate), nil
}

// ── Ciclo de vida ────────────────────────────────────────────────────────────

// Deactivate anula el documento con el motivo indicado. Un motivo vacío se
// rechaza antes de consultar la persistencia.
func (s *Service) Deactivate(ctx context.Context, cfg *document.KindConfig, id int, reason string) (*dto.DocumentResult, error) {
	if err := document.RequireReason(reason); err != nil {
		s.logPolicy(cfg, id, document.ActionDeactivate, err)
		return nil, err
	}
	return s.transition(ctx, cfg, id, document.ActionDeactivate, func(doc entity.Document) (document.Transition, error) {
		return document.Deactivate(cfg, doc, reason)
	})
}

// Reactivate vuelve a activar un documento inactivo que nunca fue anulado.
func (s *Service) Reactivate(ctx context.Context, cfg *document.KindConfig, id int) (*dto.DocumentResult, error) {
	return s.transition(ctx, cfg, id, document.ActionReactivate, func(doc entity.Document) (document.Transition, error) {
		return document.Reactivate(cfg, doc)
	})
}

// ChangeStatus cambia la etiqueta de estado sin tocar el estado de actividad.
func (s *Service) ChangeStatus(ctx context.Context, cfg *document.KindConfig, id int, label string) (*dto.DocumentResult, error) {
	return s.transition(ctx, cfg, id, document.ActionChangeStatus, func(doc entity.Document) (document.Transition, error) {
		return document.ChangeStatus(cfg, doc, label)
	})
}

// Produce ejecuta la acción producir de una orden activa.
func (s *Service) Produce(ctx context.Context, cfg *document.KindConfig, id int) (*dto.DocumentResult, error) {
	return s.transition(ctx, cfg, id, document.ActionProduce, func(doc entity.Document) (document.Transition, error) {
		return document.Produce(cfg, doc)
	})
}

// SetPaid marca o desmarca el pago. Se guarda como actualización completa del
// documento, igual que la edición.
func (s *Service) SetPaid(ctx context.Context, cfg *document.KindConfig, id int, paid bool, paymentDate string) (*dto.DocumentResult, error) {
	if !cfg.PaymentTracked {
		err := document.ApplyPaid(cfg, &document.Draft{}, paid, paymentDate)
		s.logPolicy(cfg, id, document.ActionSetPaid, err)
		return nil, err
	}
	release, err := s.begin(cfg, id, docKey(cfg, id))
	if err != nil {
		return nil, err
	}
	defer release()

	current, err := s.load(ctx, cfg, id)
	if err != nil {
		return nil, err
	}
	draft := document.DraftOf(cfg, current)
	if err := document.ApplyPaid(cfg, &draft, paid, paymentDate); err != nil {
		s.logPolicy(cfg, id, document.ActionSetPaid, err)
		return nil, err
	}
	saved, err := s.store.Update(ctx, cfg.Kind, id, document.ToSavePayload(cfg, draft))
	if err != nil {
		s.logPersistence(cfg, id, document.ActionSetPaid, err)
		return nil, err
	}
	s.log.Info().Str("kind", string(cfg.Kind)).Int("id", id).Str("action", string(document.ActionSetPaid)).
		Bool("pagado", paid).Str("estado", draft.Status).Msg("pago actualizado")
	return s.result(ctx, cfg, id, saved, document.Canonical(cfg, draft), document.ActionSetPaid), nil
}

// Delete borra físicamente un documento (solo fichas técnicas).
func (s *Service) Delete(ctx context.Context, cfg *document.KindConfig, id int) (*dto.DocumentResult, error) {
	if err := document.CheckDeletable(cfg); err != nil {
		s.logPolicy(cfg, id, document.ActionDelete, err)
		return nil, err
	}
	release, err := s.begin(cfg, id, docKey(cfg, id))
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.store.Delete(ctx, cfg.Kind, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, notFound(cfg, id)
		}
		s.logPersistence(cfg, id, document.ActionDelete, err)
		return nil, err
	}
	s.log.Info().Str("kind", string(cfg.Kind)).Int("id", id).Str("action", string(document.ActionDelete)).Msg("documento eliminado")
	return &dto.DocumentResult{Notification: document.Succeeded(cfg, document.ActionDelete)}, nil
}

// transition flujo común: reserva el documento, lo carga, aplica la regla y
// envía el cambio por la ruta de ciclo de vida. Un rechazo no llama a persistencia.
func (s *Service) transition(ctx context.Context, cfg *document.KindConfig, id int, action document.Action,
	apply func(entity.Document) (document.Transition, error)) (*dto.DocumentResult, error) {
	release, err := s.begin(cfg, id, docKey(cfg, id))
	if err != nil {
		return nil, err
	}
	defer release()

	current, err := s.load(ctx, cfg, id)
	if err != nil {
		return nil, err
	}
	tr, err := apply(current)
	if err != nil {
		s.logPolicy(cfg, id, action, err)
		return nil, err
	}
	if action == document.ActionProduce {
		err = s.store.Produce(ctx, cfg.Kind, id)
	} else {
		err = s.store.Patch(ctx, cfg.Kind, id, tr.Patch)
	}
	if err != nil {
		s.logPersistence(cfg, id, action, err)
		return nil, err
	}
	s.log.Info().Str("kind", string(cfg.Kind)).Int("id", id).Str("action", string(action)).
		Str("actividad", tr.Next.Activity.State.String()).Str("estado", tr.Next.Status).Msg("transición aplicada")
	return s.result(ctx, cfg, id, nil, tr.Next, action), nil
}

// ── Auxiliares ───────────────────────────────────────────────────────────────

func (s *Service) begin(cfg *document.KindConfig, id int, key string) (func(), error) {
	release, ok := s.inflight.Acquire(key)
	if !ok {
		err := domain.NewPolicyError(domain.RuleInFlight,
			fmt.Sprintf("Ya hay una operación en curso sobre %s %s.", articleOf(cfg), cfg.Noun.Text))
		s.logPolicy(cfg, id, "", err)
		return nil, err
	}
	return release, nil
}

// load lee y decodifica un documento; un documento inexistente es un PolicyError NO_ENCONTRADO.
func (s *Service) load(ctx context.Context, cfg *document.KindConfig, id int) (entity.Document, error) {
	if id <= 0 {
		return entity.Document{}, notFound(cfg, id)
	}
	rec, err := s.store.Get(ctx, cfg.Kind, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return entity.Document{}, notFound(cfg, id)
		}
		s.logPersistence(cfg, id, "leer", err)
		return entity.Document{}, err
	}
	if rec == nil {
		return entity.Document{}, notFound(cfg, id)
	}
	doc := document.Decode(cfg, rec)
	if doc.ID == 0 {
		doc.ID = id
	}
	return doc, nil
}

// result vuelve a leer el documento tras un cambio; si la relectura falla usa
// el registro devuelto por la persistencia o, en último caso, el estado local.
func (s *Service) result(ctx context.Context, cfg *document.KindConfig, id int, saved document.Record,
	local entity.Document, action document.Action) *dto.DocumentResult {
	doc := local
	if rec, err := s.store.Get(ctx, cfg.Kind, id); err == nil && rec != nil {
		doc = document.Decode(cfg, rec)
	} else if len(saved) > 0 {
		doc = document.Decode(cfg, saved)
	}
	if doc.ID == 0 {
		doc.ID = id
	}
	return &dto.DocumentResult{
		Document:     s.view(ctx, cfg, document.DraftOf(cfg, doc)),
		Notification: document.Succeeded(cfg, action),
	}
}

// check validación estructural más existencia y estado de las referencias de catálogo.
func (s *Service) check(ctx context.Context, cfg *document.KindConfig, d document.Draft) (map[string]string, error) {
	errs := document.Validate(cfg, d)
	if s.catalogs == nil {
		return errs, nil
	}
	refErrs, err := document.CheckReferences(ctx, cfg, d, s.catalogs)
	if err != nil {
		return nil, fmt.Errorf("verificar referencias: %w", err)
	}
	for k, v := range refErrs {
		if _, exists := errs[k]; !exists {
			errs[k] = v
		}
	}
	return errs, nil
}

// applyCatalogPrices completa el precio de las líneas sin precio con el del catálogo.
func (s *Service) applyCatalogPrices(ctx context.Context, cfg *document.KindConfig, d *document.Draft) {
	if !cfg.PriceFromCatalog || s.catalogs == nil {
		return
	}
	for i := range d.Items {
		if strings.TrimSpace(d.Items[i].UnitPrice) != "" {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(d.Items[i].RefID))
		if err != nil || id <= 0 {
			continue
		}
		entry, err := s.catalogs.Lookup(ctx, cfg.ItemCatalog, id)
		if err != nil || entry == nil {
			continue
		}
		d.Items[i].UnitPrice = entry.Price.String()
	}
	document.Recompute(d)
}

// view vista editable con nombres de contraparte y referencias (si se pueden resolver).
func (s *Service) view(ctx context.Context, cfg *document.KindConfig, d document.Draft) document.Record {
	v := document.FormOf(cfg, d)
	if s.catalogs == nil {
		return v
	}
	if cfg.Counterparty != "" {
		if id, err := strconv.Atoi(d.CounterpartyID); err == nil {
			if e, err := s.catalogs.Lookup(ctx, cfg.Counterparty, id); err == nil && e != nil {
				v[document.ViewCounterparty] = e.Name
			}
		}
	}
	rows, _ := v[cfg.ItemsField].([]document.Record)
	for i, row := range rows {
		if i >= len(d.Items) {
			break
		}
		id, err := strconv.Atoi(d.Items[i].RefID)
		if err != nil {
			continue
		}
		if e, err := s.catalogs.Lookup(ctx, cfg.ItemCatalog, id); err == nil && e != nil {
			row[document.ViewRefName] = e.Name
		}
	}
	return v
}

func (s *Service) logPolicy(cfg *document.KindConfig, id int, action document.Action, err error) {
	var perr *domain.PolicyError
	rule := ""
	if errors.As(err, &perr) {
		rule = perr.Rule
	}
	s.log.Warn().Str("kind", string(cfg.Kind)).Int("id", id).Str("action", string(action)).
		Str("rule", rule).Msg(err.Error())
}

func (s *Service) logPersistence(cfg *document.KindConfig, id int, action document.Action, err error) {
	s.log.Error().Err(err).Str("kind", string(cfg.Kind)).Int("id", id).Str("action", string(action)).
		Msg("falla de persistencia")
}

func docKey(cfg *document.KindConfig, id int) string {
	return "doc:" + string(cfg.Kind) + ":" + strconv.Itoa(id)
}

func notFound(cfg *document.KindConfig, id int) error {
	return domain.NewPolicyError(domain.RuleNotFound,
		fmt.Sprintf("%s %d no existe.", cfg.Subject(), id))
}

func articleOf(cfg *document.KindConfig) string {
	if cfg.Noun.Feminine {
		return "la"
	}
	return "el"
}
