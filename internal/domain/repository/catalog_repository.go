package repository

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// CatalogRepository lectura de catálogos (proveedores, insumos, productos, clientes).
// GetByID devuelve (nil, nil) si la entrada no existe.
type CatalogRepository interface {
	List(ctx context.Context, catalog entity.Catalog) ([]*entity.CatalogEntry, error)
	GetByID(ctx context.Context, catalog entity.Catalog, id int) (*entity.CatalogEntry, error)
}
