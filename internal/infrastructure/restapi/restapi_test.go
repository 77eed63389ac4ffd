package restapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/document"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/restapi"
)

type seen struct {
	method, path, auth, idem string
	body                     map[string]any
}

// upstream servidor de prueba que registra cada petición y responde con handler.
func upstream(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*restapi.Client, *[]seen) {
	t.Helper()
	var mu sync.Mutex
	var calls []seen
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := seen{method: r.Method, path: r.URL.Path, auth: r.Header.Get("Authorization"), idem: r.Header.Get("Idempotency-Key")}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &s.body)
		}
		mu.Lock()
		calls = append(calls, s)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return restapi.NewClient(srv.URL+"/api", 2*time.Second, nil), &calls
}

func TestDocumentStore_CreateReenviaTokenYClave(t *testing.T) {
	c, calls := upstream(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"Compra creada","id_compra":12}`))
	})
	store := restapi.NewDocumentStore(c)

	ctx := repository.WithAuthToken(context.Background(), "tok")
	ctx = repository.WithIdempotencyKey(ctx, "k-1")
	rec, err := store.Create(ctx, entity.KindPurchase, document.Record{"numero_recibo": "R-1", "total": 41.0})
	require.NoError(t, err)

	assert.Equal(t, json.Number("12"), rec["id_compra"])
	assert.Equal(t, "R-1", rec["numero_recibo"])
	assert.NotContains(t, rec, "message")

	require.Len(t, *calls, 1)
	got := (*calls)[0]
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/api/compras", got.path)
	assert.Equal(t, "Bearer tok", got.auth)
	assert.Equal(t, "k-1", got.idem)
	assert.Equal(t, 41.0, got.body["total"])
}

func TestDocumentStore_PatchRutas(t *testing.T) {
	c, calls := upstream(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	store := restapi.NewDocumentStore(c)
	ctx := context.Background()

	require.NoError(t, store.Patch(ctx, entity.KindPurchase, 5, document.Record{"activo": false, "anulacion": "error"}))
	require.NoError(t, store.Patch(ctx, entity.KindSale, 7, document.Record{"estado": entity.StatusInPreparation}))
	require.NoError(t, store.Patch(ctx, entity.KindProductionOrder, 2, document.Record{"activo": true}))
	require.NoError(t, store.Produce(ctx, entity.KindProductionOrder, 2))
	require.NoError(t, store.Patch(ctx, entity.KindProductionOrder, 3, document.Record{"estado": entity.StatusInProduction}))

	require.Len(t, *calls, 5)
	assert.Equal(t, "PATCH /api/compras/5/estado", (*calls)[0].method+" "+(*calls)[0].path)
	assert.Equal(t, "error", (*calls)[0].body["anulacion"])
	assert.Equal(t, "PUT /api/ventas/7/estado", (*calls)[1].method+" "+(*calls)[1].path)
	assert.Equal(t, "PATCH /api/ordenesproduccion/2/activo", (*calls)[2].method+" "+(*calls)[2].path)
	assert.Equal(t, "POST /api/ordenesproduccion/2/producir", (*calls)[3].method+" "+(*calls)[3].path)
	// El estado de una orden de producción viaja por la ruta del ciclo de vida.
	assert.Equal(t, "PATCH /api/ordenesproduccion/3/activo", (*calls)[4].method+" "+(*calls)[4].path)
	assert.Equal(t, entity.StatusInProduction, (*calls)[4].body["estado"])
}

func TestDocumentStore_ErroresDelServidor(t *testing.T) {
	c, _ := upstream(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/ventas/404" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Venta no encontrada"}`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"número de venta repetido"}`))
	})
	store := restapi.NewDocumentStore(c)

	_, err := store.Get(context.Background(), entity.KindSale, 404)
	var pe *domain.PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusNotFound, pe.Status)
	assert.Equal(t, "Venta no encontrada", pe.Message)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = store.Update(context.Background(), entity.KindSale, 3, document.Record{})
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "número de venta repetido", pe.Message)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestDocumentStore_ServidorCaido(t *testing.T) {
	c := restapi.NewClient("http://127.0.0.1:1/api", 500*time.Millisecond, nil)
	_, err := restapi.NewDocumentStore(c).List(context.Background(), entity.KindOrder)
	var pe *domain.PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 0, pe.Status)
}

func TestCatalogRepository(t *testing.T) {
	c, _ := upstream(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/productos":
			_, _ = w.Write([]byte(`[{"id_producto":7,"nombre":"Pan","precio":"2500.00","activo":true},
				{"id_producto":8,"nombre":"Torta","precio":30000,"activo":false}]`))
		case "/api/clientes/3":
			_, _ = w.Write([]byte(`{"id_cliente":3,"nombre":"Ana Pérez","tipo_documento":"CC","numero_documento":"1020","email":"ana@correo.co"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	repo := restapi.NewCatalogRepository(c)

	list, err := repo.List(context.Background(), entity.CatalogProducts)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 7, list[0].ID)
	assert.Equal(t, "2500", list[0].Price.String())
	assert.False(t, list[1].Active)

	cli, err := repo.GetByID(context.Background(), entity.CatalogCustomers, 3)
	require.NoError(t, err)
	require.NotNil(t, cli)
	assert.Equal(t, "CC", cli.DocumentType)
	assert.Equal(t, "ana@correo.co", cli.Email)
	assert.True(t, cli.Active)

	missing, err := repo.GetByID(context.Background(), entity.CatalogCustomers, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = repo.List(context.Background(), entity.Catalog("usuarios"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
