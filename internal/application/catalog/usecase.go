// Package catalog expone los catálogos de solo lectura (proveedores, insumos,
// productos, clientes) a los formularios y al validador de documentos.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/document"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/jhoicas/Produccion-api/pkg/logger"
)

var _ document.CatalogLookup = (*UseCase)(nil)

// UseCase lectura de catálogos con caché por catálogo completo.
type UseCase struct {
	repo  repository.CatalogRepository
	cache Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewUseCase construye el caso de uso. cache puede ser nil (sin caché).
func NewUseCase(repo repository.CatalogRepository, cache Cache, ttl time.Duration, log *logger.Logger) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &UseCase{repo: repo, cache: cache, ttl: ttl, log: log}
}

// List devuelve las entradas del catálogo ordenadas por nombre.
func (uc *UseCase) List(ctx context.Context, c entity.Catalog, in dto.CatalogListRequest) ([]*dto.CatalogEntryResponse, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("catálogo %q: %w", c, domain.ErrNotFound)
	}
	entries, err := uc.entries(ctx, c)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CatalogEntryResponse, 0, len(entries))
	for _, e := range entries {
		if in.OnlyActive && !e.Active {
			continue
		}
		out = append(out, toEntryResponse(e))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Lookup busca una entrada por ID. Primero en el catálogo (cacheado); si no
// aparece, consulta el repositorio por si fue creada después de llenar la caché.
func (uc *UseCase) Lookup(ctx context.Context, c entity.Catalog, id int) (*entity.CatalogEntry, error) {
	entries, err := uc.entries(ctx, c)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	e, err := uc.repo.GetByID(ctx, c, id)
	if err != nil {
		return nil, err
	}
	if e != nil {
		if err := uc.Refresh(ctx, c); err != nil {
			uc.log.Warn().Err(err).Str("catalogo", string(c)).Msg("no se pudo invalidar la caché del catálogo")
		}
	}
	return e, nil
}

// Refresh descarta la caché de un catálogo.
func (uc *UseCase) Refresh(ctx context.Context, c entity.Catalog) error {
	if uc.cache == nil {
		return nil
	}
	return uc.cache.Invalidate(ctx, c)
}

func (uc *UseCase) entries(ctx context.Context, c entity.Catalog) ([]*entity.CatalogEntry, error) {
	if uc.cache != nil {
		cached, ok, err := uc.cache.Get(ctx, c)
		if err != nil {
			uc.log.Warn().Err(err).Str("catalogo", string(c)).Msg("caché de catálogo no disponible")
		} else if ok {
			return cached, nil
		}
	}
	entries, err := uc.repo.List(ctx, c)
	if err != nil {
		return nil, err
	}
	if uc.cache != nil {
		if err := uc.cache.Set(ctx, c, entries, uc.ttl); err != nil {
			uc.log.Warn().Err(err).Str("catalogo", string(c)).Msg("no se pudo guardar el catálogo en caché")
		}
	}
	return entries, nil
}

func toEntryResponse(e *entity.CatalogEntry) *dto.CatalogEntryResponse {
	return &dto.CatalogEntryResponse{
		ID:             e.ID,
		Name:           e.Name,
		Contact:        e.Contact,
		Email:          e.Email,
		DocumentType:   e.DocumentType,
		DocumentNumber: e.DocumentNumber,
		Price:          e.Price,
		Active:         e.Active,
	}
}
