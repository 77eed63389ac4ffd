package restapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jhoicas/Produccion-api/internal/domain/document"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.DocumentStore = (*DocumentStore)(nil)

// DocumentStore implementa repository.DocumentStore sobre los recursos REST de cada tipo.
type DocumentStore struct {
	c *Client
}

// NewDocumentStore construye el adaptador.
func NewDocumentStore(c *Client) *DocumentStore {
	return &DocumentStore{c: c}
}

func (s *DocumentStore) resource(kind entity.Kind) (*document.KindConfig, string, error) {
	cfg, ok := document.ConfigFor(kind)
	if !ok {
		return nil, "", fmt.Errorf("restapi: tipo de documento desconocido %q", kind)
	}
	return cfg, "/" + cfg.Resource, nil
}

func (s *DocumentStore) List(ctx context.Context, kind entity.Kind) ([]document.Record, error) {
	_, path, err := s.resource(kind)
	if err != nil {
		return nil, err
	}
	var out []document.Record
	if err := s.c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DocumentStore) Get(ctx context.Context, kind entity.Kind, id int) (document.Record, error) {
	_, path, err := s.resource(kind)
	if err != nil {
		return nil, err
	}
	var out document.Record
	if err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("%s/%d", path, id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create envía el payload; si la API no devuelve el documento creado se
// responde con el mismo payload.
func (s *DocumentStore) Create(ctx context.Context, kind entity.Kind, payload document.Record) (document.Record, error) {
	_, path, err := s.resource(kind)
	if err != nil {
		return nil, err
	}
	var out any
	if err := s.c.do(ctx, http.MethodPost, path, payload, &out); err != nil {
		return nil, err
	}
	return merged(payload, out), nil
}

func (s *DocumentStore) Update(ctx context.Context, kind entity.Kind, id int, payload document.Record) (document.Record, error) {
	cfg, path, err := s.resource(kind)
	if err != nil {
		return nil, err
	}
	var out any
	if err := s.c.do(ctx, http.MethodPut, fmt.Sprintf("%s/%d", path, id), payload, &out); err != nil {
		return nil, err
	}
	rec := merged(payload, out)
	if _, ok := rec[cfg.IDField]; !ok {
		rec[cfg.IDField] = id
	}
	return rec, nil
}

// Patch: en los tipos cuya ruta de ciclo de vida es estado, el cambio de estado
// de trabajo va por PUT /R/:id/estado. Activo, anulación y el estado de las
// órdenes de producción van por PATCH sobre la ruta de ciclo de vida del tipo.
func (s *DocumentStore) Patch(ctx context.Context, kind entity.Kind, id int, partial document.Record) error {
	cfg, path, err := s.resource(kind)
	if err != nil {
		return err
	}
	_, hasActive := partial[document.WireActive]
	if status, ok := partial[cfg.Wire(document.FieldStatus)]; ok && !hasActive && cfg.PatchPath == "estado" {
		return s.c.do(ctx, http.MethodPut, fmt.Sprintf("%s/%d/estado", path, id), document.Record{"estado": status}, nil)
	}
	return s.c.do(ctx, http.MethodPatch, fmt.Sprintf("%s/%d/%s", path, id, cfg.PatchPath), partial, nil)
}

func (s *DocumentStore) Produce(ctx context.Context, kind entity.Kind, id int) error {
	_, path, err := s.resource(kind)
	if err != nil {
		return err
	}
	return s.c.do(ctx, http.MethodPost, fmt.Sprintf("%s/%d/producir", path, id), nil, nil)
}

func (s *DocumentStore) Delete(ctx context.Context, kind entity.Kind, id int) error {
	_, path, err := s.resource(kind)
	if err != nil {
		return err
	}
	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", path, id), nil, nil)
}

// merged combina el payload enviado con la respuesta. Algunas rutas devuelven
// el documento bajo una clave ("compra", "data"); otras solo un mensaje.
func merged(payload document.Record, out any) document.Record {
	rec := document.Record{}
	for k, v := range payload {
		rec[k] = v
	}
	m, ok := out.(map[string]any)
	if !ok {
		return rec
	}
	for _, k := range []string{"data", "compra", "venta", "pedido", "orden", "ficha"} {
		if inner, ok := m[k].(map[string]any); ok {
			m = inner
			break
		}
	}
	for k, v := range m {
		if k == "message" || k == "mensaje" {
			continue
		}
		rec[k] = v
	}
	return rec
}
