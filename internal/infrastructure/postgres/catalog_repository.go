package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

// CatalogRepo implementación de CatalogRepository (usable con pool o tx).
type CatalogRepo struct {
	q Querier
}

// NewCatalogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

const catalogColumns = `catalog, id, name, contact, email, document_type, document_number, price, active`

// List entradas del catálogo ordenadas por nombre.
func (r *CatalogRepo) List(ctx context.Context, catalog entity.Catalog) ([]*entity.CatalogEntry, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+catalogColumns+` FROM catalog_entries WHERE catalog = $1 ORDER BY name, id`, string(catalog))
	if err != nil {
		return nil, persistenceError("list catalog", err)
	}
	defer rows.Close()
	var list []*entity.CatalogEntry
	for rows.Next() {
		e, err := scanCatalogEntry(rows)
		if err != nil {
			return nil, persistenceError("scan catalog", err)
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("list catalog", err)
	}
	return list, nil
}

// GetByID devuelve (nil, nil) si la entrada no existe.
func (r *CatalogRepo) GetByID(ctx context.Context, catalog entity.Catalog, id int) (*entity.CatalogEntry, error) {
	row := r.q.QueryRow(ctx,
		`SELECT `+catalogColumns+` FROM catalog_entries WHERE catalog = $1 AND id = $2`, string(catalog), id)
	e, err := scanCatalogEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, persistenceError("get catalog entry", err)
	}
	return e, nil
}

// Upsert crea o reemplaza una entrada (carga inicial de catálogos).
func (r *CatalogRepo) Upsert(ctx context.Context, e *entity.CatalogEntry) error {
	const query = `
		INSERT INTO catalog_entries (` + catalogColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (catalog, id) DO UPDATE
		SET name = EXCLUDED.name, contact = EXCLUDED.contact, email = EXCLUDED.email,
		    document_type = EXCLUDED.document_type, document_number = EXCLUDED.document_number,
		    price = EXCLUDED.price, active = EXCLUDED.active`
	_, err := r.q.Exec(ctx, query,
		string(e.Catalog), e.ID, e.Name, e.Contact, e.Email, e.DocumentType, e.DocumentNumber, e.Price, e.Active)
	if err != nil {
		return fmt.Errorf("upsert catalog entry: %w", err)
	}
	return nil
}

func scanCatalogEntry(row pgx.Row) (*entity.CatalogEntry, error) {
	var e entity.CatalogEntry
	var catalog string
	if err := row.Scan(&catalog, &e.ID, &e.Name, &e.Contact, &e.Email,
		&e.DocumentType, &e.DocumentNumber, &e.Price, &e.Active); err != nil {
		return nil, err
	}
	e.Catalog = entity.Catalog(catalog)
	return &e, nil
}
