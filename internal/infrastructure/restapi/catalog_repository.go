package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.CatalogRepository = (*CatalogRepository)(nil)

// CatalogRepository lee proveedores, insumos, productos y clientes de la API remota.
type CatalogRepository struct {
	c *Client
}

// NewCatalogRepository construye el adaptador.
func NewCatalogRepository(c *Client) *CatalogRepository {
	return &CatalogRepository{c: c}
}

func (r *CatalogRepository) List(ctx context.Context, catalog entity.Catalog) ([]*entity.CatalogEntry, error) {
	if !catalog.Valid() {
		return nil, fmt.Errorf("restapi: catálogo desconocido %q: %w", catalog, domain.ErrInvalidInput)
	}
	var raw []map[string]any
	if err := r.c.do(ctx, http.MethodGet, "/"+string(catalog), nil, &raw); err != nil {
		return nil, err
	}
	out := make([]*entity.CatalogEntry, 0, len(raw))
	for _, m := range raw {
		out = append(out, entryOf(catalog, m))
	}
	return out, nil
}

// GetByID devuelve (nil, nil) si la API responde 404.
func (r *CatalogRepository) GetByID(ctx context.Context, catalog entity.Catalog, id int) (*entity.CatalogEntry, error) {
	if !catalog.Valid() {
		return nil, fmt.Errorf("restapi: catálogo desconocido %q: %w", catalog, domain.ErrInvalidInput)
	}
	var raw map[string]any
	err := r.c.do(ctx, http.MethodGet, fmt.Sprintf("/%s/%d", catalog, id), nil, &raw)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entryOf(catalog, raw), nil
}

// entryOf mapea el registro remoto. Los nombres de campo varían entre catálogos.
func entryOf(catalog entity.Catalog, m map[string]any) *entity.CatalogEntry {
	e := &entity.CatalogEntry{
		Catalog:        catalog,
		ID:             intOf(m[catalog.IDField()]),
		Name:           firstString(m, "nombre", "nombre_completo", "razon_social"),
		Contact:        firstString(m, "contacto", "telefono"),
		Email:          firstString(m, "email", "correo"),
		DocumentType:   firstString(m, "tipo_documento"),
		DocumentNumber: firstString(m, "numero_documento", "documento"),
		Active:         true,
	}
	if e.ID == 0 {
		e.ID = intOf(m["id"])
	}
	for _, k := range []string{"precio", "precio_venta", "precio_unitario"} {
		if v, ok := m[k]; ok && v != nil {
			if d, err := decimal.NewFromString(strings.TrimSpace(fmt.Sprint(v))); err == nil {
				e.Price = d
				break
			}
		}
	}
	switch v := m["activo"].(type) {
	case bool:
		e.Active = v
	case json.Number:
		e.Active = v.String() != "0"
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			e.Active = b
		}
	}
	return e
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
				return s
			}
		}
	}
	return ""
}

func intOf(v any) int {
	switch n := v.(type) {
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(n))
		return i
	}
	return 0
}
