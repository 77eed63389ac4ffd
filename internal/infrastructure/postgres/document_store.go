package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Produccion-api/internal/domain/document"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.DocumentStore = (*DocumentStore)(nil)

// DocumentStore implementación de repository.DocumentStore sobre las tablas
// documents y document_items. Los registros se traducen con document.Encode/Decode.
type DocumentStore struct {
	q  Querier
	tx *TxRunner
}

// NewDocumentStore construye el adaptador. Las escrituras de cabecera + líneas
// van en una transacción.
func NewDocumentStore(pool *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{q: pool, tx: NewTxRunner(pool)}
}

const documentColumns = `
	id, counterparty_id, number, description, supplies,
	registration_date, transaction_date, delivery_date, payment_date,
	status, paid, active, cancel_reason, total, created_at, updated_at`

func configOf(kind entity.Kind) (*document.KindConfig, error) {
	cfg, ok := document.ConfigFor(kind)
	if !ok {
		return nil, fmt.Errorf("postgres: tipo de documento desconocido %q", kind)
	}
	return cfg, nil
}

func (s *DocumentStore) List(ctx context.Context, kind entity.Kind) ([]document.Record, error) {
	cfg, err := configOf(kind)
	if err != nil {
		return nil, err
	}
	rows, err := s.q.Query(ctx, `SELECT `+documentColumns+` FROM documents WHERE kind = $1 ORDER BY id`, string(kind))
	if err != nil {
		return nil, persistenceError("list documents", err)
	}
	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Document, error) {
		return scanDocument(row, kind)
	})
	if err != nil {
		return nil, persistenceError("scan documents", err)
	}

	ids := make([]int, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	items, err := loadItems(ctx, s.q, ids)
	if err != nil {
		return nil, err
	}
	out := make([]document.Record, 0, len(docs))
	for _, d := range docs {
		d.Items = items[d.ID]
		out = append(out, document.Encode(cfg, d))
	}
	return out, nil
}

func (s *DocumentStore) Get(ctx context.Context, kind entity.Kind, id int) (document.Record, error) {
	cfg, err := configOf(kind)
	if err != nil {
		return nil, err
	}
	doc, err := getDocument(ctx, s.q, kind, id)
	if err != nil {
		return nil, err
	}
	return document.Encode(cfg, doc), nil
}

// Create inserta cabecera y líneas. Con clave de idempotencia en el contexto,
// un reintento devuelve el documento ya creado en lugar de duplicarlo.
func (s *DocumentStore) Create(ctx context.Context, kind entity.Kind, payload document.Record) (document.Record, error) {
	cfg, err := configOf(kind)
	if err != nil {
		return nil, err
	}
	doc := document.Decode(cfg, payload)
	key := repository.IdempotencyKey(ctx)

	var id int
	err = s.tx.Run(ctx, func(q Querier) error {
		const query = `
			INSERT INTO documents (kind, counterparty_id, number, description, supplies,
			                       registration_date, transaction_date, delivery_date, payment_date,
			                       status, paid, active, cancel_reason, total, idempotency_key)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, TRUE, '', $12, $13)
			ON CONFLICT (idempotency_key) WHERE idempotency_key IS NOT NULL DO NOTHING
			RETURNING id`
		err := q.QueryRow(ctx, query,
			string(kind), nullIfZero(doc.CounterpartyID), doc.Number, doc.Description, doc.Supplies,
			nullDate(doc.RegistrationDate), nullDate(doc.TransactionDate), nullDate(doc.DeliveryDate), nullDate(doc.PaymentDate),
			doc.Status, doc.Paid, doc.Total, nullIfEmpty(key),
		).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) && key != "" {
			// reintento: el documento ya existe con esta clave
			return q.QueryRow(ctx, `SELECT id FROM documents WHERE idempotency_key = $1`, key).Scan(&id)
		}
		if err != nil {
			return err
		}
		return insertItems(ctx, q, id, doc.Items)
	})
	if err != nil {
		return nil, persistenceError("insert document", err)
	}
	return s.Get(ctx, kind, id)
}

// Update reemplaza cabecera y líneas; no toca active ni cancel_reason.
func (s *DocumentStore) Update(ctx context.Context, kind entity.Kind, id int, payload document.Record) (document.Record, error) {
	cfg, err := configOf(kind)
	if err != nil {
		return nil, err
	}
	doc := document.Decode(cfg, payload)
	err = s.tx.Run(ctx, func(q Querier) error {
		const query = `
			UPDATE documents
			SET counterparty_id   = $3,
			    number            = $4,
			    description       = $5,
			    supplies          = $6,
			    registration_date = COALESCE($7, registration_date),
			    transaction_date  = $8,
			    delivery_date     = $9,
			    payment_date      = $10,
			    status            = $11,
			    paid              = $12,
			    total             = $13,
			    updated_at        = NOW()
			WHERE kind = $1 AND id = $2`
		tag, err := q.Exec(ctx, query,
			string(kind), id, nullIfZero(doc.CounterpartyID), doc.Number, doc.Description, doc.Supplies,
			nullDate(doc.RegistrationDate), nullDate(doc.TransactionDate), nullDate(doc.DeliveryDate), nullDate(doc.PaymentDate),
			doc.Status, doc.Paid, doc.Total,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		if _, err := q.Exec(ctx, `DELETE FROM document_items WHERE document_id = $1`, id); err != nil {
			return err
		}
		return insertItems(ctx, q, id, doc.Items)
	})
	if err != nil {
		return nil, persistenceError("update document", err)
	}
	return s.Get(ctx, kind, id)
}

// Patch aplica activo, anulacion y estado; ignora cualquier otra clave.
func (s *DocumentStore) Patch(ctx context.Context, kind entity.Kind, id int, partial document.Record) error {
	cfg, err := configOf(kind)
	if err != nil {
		return err
	}
	var active *bool
	var reason, status *string
	if v, ok := partial[document.WireActive].(bool); ok {
		active = &v
	}
	if v, ok := partial[document.WireReason]; ok {
		r, _ := v.(string)
		reason = &r
	}
	if v, ok := partial[cfg.Wire(document.FieldStatus)].(string); ok && cfg.HasField(document.FieldStatus) {
		status = &v
	}
	const query = `
		UPDATE documents
		SET active        = COALESCE($3, active),
		    cancel_reason = COALESCE($4, cancel_reason),
		    status        = COALESCE($5, status),
		    updated_at    = NOW()
		WHERE kind = $1 AND id = $2`
	tag, err := s.q.Exec(ctx, query, string(kind), id, active, reason, status)
	if err != nil {
		return persistenceError("patch document", err)
	}
	if tag.RowsAffected() == 0 {
		return persistenceError("patch document", pgx.ErrNoRows)
	}
	return nil
}

// Produce marca la orden como producida.
func (s *DocumentStore) Produce(ctx context.Context, kind entity.Kind, id int) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE documents SET status = $3, updated_at = NOW() WHERE kind = $1 AND id = $2 AND active`,
		string(kind), id, entity.StatusProduced)
	if err != nil {
		return persistenceError("produce document", err)
	}
	if tag.RowsAffected() == 0 {
		return persistenceError("produce document", pgx.ErrNoRows)
	}
	return nil
}

func (s *DocumentStore) Delete(ctx context.Context, kind entity.Kind, id int) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM documents WHERE kind = $1 AND id = $2`, string(kind), id)
	if err != nil {
		return persistenceError("delete document", err)
	}
	if tag.RowsAffected() == 0 {
		return persistenceError("delete document", pgx.ErrNoRows)
	}
	return nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func getDocument(ctx context.Context, q Querier, kind entity.Kind, id int) (entity.Document, error) {
	row := q.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE kind = $1 AND id = $2`, string(kind), id)
	doc, err := scanDocument(row, kind)
	if err != nil {
		return entity.Document{}, persistenceError("get document", err)
	}
	items, err := loadItems(ctx, q, []int{id})
	if err != nil {
		return entity.Document{}, err
	}
	doc.Items = items[id]
	return doc, nil
}

func scanDocument(row pgx.Row, kind entity.Kind) (entity.Document, error) {
	var (
		d                                       entity.Document
		counterparty                            *int
		registration, txDate, delivery, payment *time.Time
		active                                  bool
		reason                                  string
	)
	err := row.Scan(
		&d.ID, &counterparty, &d.Number, &d.Description, &d.Supplies,
		&registration, &txDate, &delivery, &payment,
		&d.Status, &d.Paid, &active, &reason, &d.Total, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return entity.Document{}, err
	}
	d.Kind = kind
	d.CounterpartyID = derefInt(counterparty)
	d.RegistrationDate = derefTime(registration)
	d.TransactionDate = derefTime(txDate)
	d.DeliveryDate = derefTime(delivery)
	d.PaymentDate = derefTime(payment)
	d.Activity = entity.ActivityFromFlags(active, reason)
	d.Items = []entity.LineItem{}
	return d, nil
}

func loadItems(ctx context.Context, q Querier, ids []int) (map[int][]entity.LineItem, error) {
	out := make(map[int][]entity.LineItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := q.Query(ctx, `
		SELECT document_id, ref_id, quantity, unit_price, subtotal
		FROM document_items WHERE document_id = ANY($1)
		ORDER BY document_id, position`, ids)
	if err != nil {
		return nil, persistenceError("list items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var docID int
		var li entity.LineItem
		if err := rows.Scan(&docID, &li.RefID, &li.Quantity, &li.UnitPrice, &li.Subtotal); err != nil {
			return nil, persistenceError("scan items", err)
		}
		out[docID] = append(out[docID], li)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("list items", err)
	}
	return out, nil
}

func insertItems(ctx context.Context, q Querier, docID int, items []entity.LineItem) error {
	for i, li := range items {
		subtotal := li.Subtotal
		if subtotal.IsZero() && !li.UnitPrice.IsZero() {
			subtotal = li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
		}
		_, err := q.Exec(ctx, `
			INSERT INTO document_items (document_id, position, ref_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			docID, i, li.RefID, li.Quantity, li.UnitPrice, subtotal)
		if err != nil {
			return fmt.Errorf("insert item %d: %w", i, err)
		}
	}
	return nil
}

func nullDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func derefTime(p *time.Time) time.Time {
	if p == nil {
		return time.Time{}
	}
	return p.UTC()
}
