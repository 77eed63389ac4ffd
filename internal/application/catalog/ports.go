package catalog

import (
	"context"
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// Cache almacén temporal de catálogos completos. Un fallo de la caché nunca
// impide leer del repositorio.
type Cache interface {
	// Get devuelve (entradas, true, nil) si el catálogo está en caché.
	Get(ctx context.Context, catalog entity.Catalog) ([]*entity.CatalogEntry, bool, error)
	Set(ctx context.Context, catalog entity.Catalog, entries []*entity.CatalogEntry, ttl time.Duration) error
	Invalidate(ctx context.Context, catalog entity.Catalog) error
}
