package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Produccion-api/internal/application/catalog"
	"github.com/jhoicas/Produccion-api/internal/application/documents"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/document"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	apphttp "github.com/jhoicas/Produccion-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu       sync.Mutex
	docs     map[entity.Kind]map[int]document.Record
	nextID   int
	idemKeys []string
	writes   int
	failErr  error
}

func newMemStore() *memStore {
	return &memStore{docs: map[entity.Kind]map[int]document.Record{}}
}

func (m *memStore) put(kind entity.Kind, id int, rec document.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs[kind] == nil {
		m.docs[kind] = map[int]document.Record{}
	}
	m.docs[kind][id] = rec
	if id > m.nextID {
		m.nextID = id
	}
}

func (m *memStore) List(_ context.Context, kind entity.Kind) ([]document.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []document.Record
	for id := 1; id <= m.nextID; id++ {
		if rec, ok := m.docs[kind][id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memStore) Get(_ context.Context, kind entity.Kind, id int) (document.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.docs[kind][id]
	if !ok {
		return nil, &domain.PersistenceError{Status: 404, Err: domain.ErrNotFound}
	}
	cp := document.Record{}
	for k, v := range rec {
		cp[k] = v
	}
	return cp, nil
}

func (m *memStore) Create(ctx context.Context, kind entity.Kind, payload document.Record) (document.Record, error) {
	m.mu.Lock()
	m.writes++
	m.idemKeys = append(m.idemKeys, repository.IdempotencyKey(ctx))
	fail := m.failErr
	m.mu.Unlock()
	if fail != nil {
		return nil, fail
	}
	cfg, _ := document.ConfigFor(kind)
	m.mu.Lock()
	id := m.nextID + 1
	m.mu.Unlock()
	rec := document.Record{cfg.IDField: id, "activo": true}
	for k, v := range payload {
		rec[k] = v
	}
	m.put(kind, id, rec)
	return rec, nil
}

func (m *memStore) Update(_ context.Context, kind entity.Kind, id int, payload document.Record) (document.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	rec := m.docs[kind][id]
	for k, v := range payload {
		rec[k] = v
	}
	return rec, nil
}

func (m *memStore) Patch(_ context.Context, kind entity.Kind, id int, partial document.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.failErr != nil {
		return m.failErr
	}
	for k, v := range partial {
		m.docs[kind][id][k] = v
	}
	return nil
}

func (m *memStore) Produce(_ context.Context, kind entity.Kind, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.docs[kind][id]["estado"] = entity.StatusProduced
	return nil
}

func (m *memStore) Delete(_ context.Context, kind entity.Kind, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if _, ok := m.docs[kind][id]; !ok {
		return &domain.PersistenceError{Status: 404, Err: domain.ErrNotFound}
	}
	delete(m.docs[kind], id)
	return nil
}

func (m *memStore) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

type memCatalogs map[entity.Catalog][]*entity.CatalogEntry

func (m memCatalogs) List(_ context.Context, c entity.Catalog) ([]*entity.CatalogEntry, error) {
	return m[c], nil
}

func (m memCatalogs) GetByID(_ context.Context, c entity.Catalog, id int) (*entity.CatalogEntry, error) {
	for _, e := range m[c] {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

type stubPDF struct{ got documents.Receipt }

func (s *stubPDF) GenerateReceiptPDF(_ context.Context, r documents.Receipt) ([]byte, error) {
	s.got = r
	return []byte("%PDF-1.4 stub"), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type testEnv struct {
	app   *fiber.App
	store *memStore
	pdf   *stubPDF
	auth  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newMemStore()
	repo := memCatalogs{
		entity.CatalogSuppliers: {{ID: 4, Catalog: entity.CatalogSuppliers, Name: "Molinos del Valle", Active: true}},
		entity.CatalogSupplyItems: {
			{ID: 1, Catalog: entity.CatalogSupplyItems, Name: "Harina", Active: true},
			{ID: 2, Catalog: entity.CatalogSupplyItems, Name: "Azúcar", Active: false},
		},
		entity.CatalogProducts: {
			{ID: 7, Catalog: entity.CatalogProducts, Name: "Pan", Price: decimal.NewFromInt(2500), Active: true},
			{ID: 8, Catalog: entity.CatalogProducts, Name: "Arepa", Price: decimal.NewFromInt(1800), Active: false},
		},
		entity.CatalogCustomers: {{ID: 3, Catalog: entity.CatalogCustomers, Name: "Ana Pérez", Active: true}},
	}
	catalogs := catalog.NewUseCase(repo, nil, 0, nil)
	svc := documents.NewService(store, catalogs, nil)
	pdf := &stubPDF{}

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Documents:   svc,
		DocumentPDF: documents.NewPDFUseCase(svc, catalogs, pdf),
		Catalogs:    catalogs,
		JWTSecret:   testJWTSecret,
		JWTIssuer:   testIssuer,
		ServiceName: "produccion-test",
	})
	return &testEnv{app: app, store: store, pdf: pdf, auth: bearer(t, "admin")}
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers ...string) (*http.Response, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Authorization", e.auth)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") && len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp, out
}

func notificationOf(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	n, ok := body["notification"].(map[string]any)
	require.True(t, ok, "la respuesta debe incluir notification: %v", body)
	return n
}

const purchaseBody = `{
	"id_proveedor": "4",
	"numero_recibo": "R-1",
	"fecha_compra": "2024-03-14",
	"detalleCompras": [
		{"id_insumo": "1", "cantidad": "3", "precio_unitario": "10.00"}
	]
}`

func seedSale(e *testEnv, id int, active bool) {
	e.store.put(entity.KindSale, id, document.Record{
		"id_venta":      id,
		"id_cliente":    3,
		"numero_venta":  "V-1",
		"fecha_venta":   "2024-03-14",
		"estado":        entity.StatusAwaitingPayment,
		"pagado":        false,
		"activo":        active,
		"total":         "5000",
		"detalleVentas": []any{map[string]any{"id_producto": 7, "cantidad": 2, "precio_unitario": "2500"}},
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth_SinToken(t *testing.T) {
	e := newTestEnv(t)
	resp, err := e.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDocumentos_RequierenToken(t *testing.T) {
	e := newTestEnv(t)
	resp, err := e.app.Test(httptest.NewRequest(http.MethodGet, "/api/compras", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreate_CompraValidaReenviaClaveDeIdempotencia(t *testing.T) {
	e := newTestEnv(t)
	resp, body := e.do(t, http.MethodPost, "/api/compras", purchaseBody, apphttp.HeaderIdempotencyKey, "guardado-1")

	require.Equal(t, http.StatusCreated, resp.StatusCode, "%v", body)
	n := notificationOf(t, body)
	assert.Equal(t, "success", n["level"])
	assert.Equal(t, []string{"guardado-1"}, e.store.idemKeys)

	doc, ok := body["document"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "R-1", doc["numero_recibo"])
}

func TestCreate_BorradorInvalidoDevuelve422SinPersistir(t *testing.T) {
	e := newTestEnv(t)
	resp, body := e.do(t, http.MethodPost, "/api/compras", `{"numero_recibo":"R-2","detalleCompras":[]}`)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, apphttp.CodeValidation, body["code"])
	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, errs)
	assert.Equal(t, "warning", notificationOf(t, body)["level"])
	assert.Zero(t, e.store.writeCount())
}

func TestCreate_CuerpoNoJSON(t *testing.T) {
	e := newTestEnv(t)
	resp, body := e.do(t, http.MethodPost, "/api/compras", `{"id_proveedor":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apphttp.CodeInvalidBody, body["code"])
}

func TestCreate_ErrorDePersistenciaDevuelve502(t *testing.T) {
	e := newTestEnv(t)
	e.store.failErr = &domain.PersistenceError{Status: 400, Message: "número de recibo repetido"}

	resp, body := e.do(t, http.MethodPost, "/api/compras", purchaseBody)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, apphttp.CodePersistence, body["code"])
	n := notificationOf(t, body)
	assert.Equal(t, "error", n["level"])
	assert.Contains(t, n["text"], "número de recibo repetido")
}

func TestPreview_NoGuarda(t *testing.T) {
	e := newTestEnv(t)
	resp, body := e.do(t, http.MethodPost, "/api/compras/validar", purchaseBody)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["valid"])
	assert.NotNil(t, body["payload"])
	assert.Zero(t, e.store.writeCount())
}

func TestGet_NoEncontrado(t *testing.T) {
	e := newTestEnv(t)
	resp, body := e.do(t, http.MethodGet, "/api/compras/999", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, domain.RuleNotFound, body["code"])
}

func TestGet_IDInvalido(t *testing.T) {
	e := newTestEnv(t)
	resp, _ := e.do(t, http.MethodGet, "/api/compras/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestList_SoloActivos(t *testing.T) {
	e := newTestEnv(t)
	seedSale(e, 1, true)
	seedSale(e, 2, false)

	resp, body := e.do(t, http.MethodGet, "/api/ventas?activos=true", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items, ok := body["items"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 1)
}

func TestAnular_SinMotivoEsConflicto(t *testing.T) {
	e := newTestEnv(t)
	seedSale(e, 1, true)

	resp, body := e.do(t, http.MethodPatch, "/api/ventas/1/anular", `{"motivo":"  "}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, domain.RuleReasonRequired, body["code"])
	assert.Zero(t, e.store.writeCount())
}

func TestAnular_LuegoActivarFalla(t *testing.T) {
	e := newTestEnv(t)
	seedSale(e, 1, true)

	resp, body := e.do(t, http.MethodPatch, "/api/ventas/1/anular", `{"motivo":"cliente desistió"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, "%v", body)
	assert.Equal(t, "success", notificationOf(t, body)["level"])

	resp, body = e.do(t, http.MethodPatch, "/api/ventas/1/activar", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, domain.RuleAlreadyCancelled, body["code"])
}

func TestEstado_Requerido(t *testing.T) {
	e := newTestEnv(t)
	seedSale(e, 1, true)
	resp, _ := e.do(t, http.MethodPatch, "/api/ventas/1/estado", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPago_FechaConFormatoInvalido(t *testing.T) {
	e := newTestEnv(t)
	seedSale(e, 1, true)
	resp, _ := e.do(t, http.MethodPatch, "/api/ventas/1/pago", `{"pagado":true,"fecha_pago":"14/03/2024"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPago_NoSoportadoEnCompras(t *testing.T) {
	e := newTestEnv(t)
	resp, _ := e.do(t, http.MethodPatch, "/api/compras/1/pago", `{"pagado":true}`)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Zero(t, e.store.writeCount())
}

func TestDelete_NoSoportadoEnCompras(t *testing.T) {
	e := newTestEnv(t)
	resp, body := e.do(t, http.MethodDelete, "/api/compras/1", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, domain.RuleUnsupported, body["code"])
}

func TestPDF_Venta(t *testing.T) {
	e := newTestEnv(t)
	seedSale(e, 1, true)

	req := httptest.NewRequest(http.MethodGet, "/api/ventas/1/pdf", nil)
	req.Header.Set("Authorization", e.auth)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "ventas_V-1.pdf")
	raw, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.HasPrefix(string(raw), "%PDF"))
	require.NotNil(t, e.pdf.got.Counterparty)
	assert.Equal(t, "Ana Pérez", e.pdf.got.Counterparty.Name)
}

func TestPDF_VentaAnuladaNoSeImprime(t *testing.T) {
	e := newTestEnv(t)
	seedSale(e, 1, false)
	resp, _ := e.do(t, http.MethodGet, "/api/ventas/1/pdf", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCatalogo_SoloActivos(t *testing.T) {
	e := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/catalogos/productos?activos=true", nil)
	req.Header.Set("Authorization", e.auth)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var entries []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Pan", entries[0]["nombre"])
}

func TestCatalogo_Desconocido(t *testing.T) {
	e := newTestEnv(t)
	resp, body := e.do(t, http.MethodGet, "/api/catalogos/bodegas", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, apphttp.CodeNotFound, body["code"])
}
