package postgres

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Produccion-api/internal/domain"
)

// Querier lo implementan *pgxpool.Pool y pgx.Tx; los repos aceptan cualquiera.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// persistenceError traduce errores de pgx al error de persistencia del dominio.
func persistenceError(op string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return &domain.PersistenceError{Status: http.StatusNotFound, Err: domain.ErrNotFound}
	case isUniqueViolation(err):
		return &domain.PersistenceError{
			Status:  http.StatusConflict,
			Message: "ya existe un documento con ese número",
			Err:     domain.ErrDuplicate,
		}
	}
	var pe *domain.PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &domain.PersistenceError{Status: http.StatusInternalServerError, Err: errors.Join(errors.New(op), err)}
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullIfZero(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}


func derefInt(p *int) int {
	if p != nil {
		return *p
	}
	return 0
}
