package repository

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain/document"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// DocumentStore puerto de persistencia de documentos, un recurso por tipo.
// Los registros usan los nombres de campo de la API remota (ver document.KindConfig).
// Los errores de la capa de persistencia llegan como *domain.PersistenceError;
// un documento inexistente envuelve domain.ErrNotFound.
type DocumentStore interface {
	List(ctx context.Context, kind entity.Kind) ([]document.Record, error)
	Get(ctx context.Context, kind entity.Kind, id int) (document.Record, error)
	Create(ctx context.Context, kind entity.Kind, payload document.Record) (document.Record, error)
	// Update reemplaza cabecera y líneas. No toca el par activo/anulación.
	Update(ctx context.Context, kind entity.Kind, id int, payload document.Record) (document.Record, error)
	// Patch actualización parcial de ciclo de vida (activo, anulacion, estado).
	Patch(ctx context.Context, kind entity.Kind, id int, partial document.Record) error
	// Produce acción producir de una orden de producción; la resuelve la persistencia.
	Produce(ctx context.Context, kind entity.Kind, id int) error
	Delete(ctx context.Context, kind entity.Kind, id int) error
}
