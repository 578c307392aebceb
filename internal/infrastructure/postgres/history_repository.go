package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-sheets/internal/domain/entity"
	"github.com/jhoicas/inventario-sheets/internal/domain/repository"
)

var _ repository.HistoryRepository = (*HistoryRepo)(nil)

const historySchema = `
	CREATE TABLE IF NOT EXISTS stock_history (
		id           TEXT PRIMARY KEY,
		code         TEXT NOT NULL DEFAULT '',
		reference    TEXT NOT NULL DEFAULT '',
		description  TEXT NOT NULL DEFAULT '',
		unit         TEXT NOT NULL DEFAULT '',
		quantity     NUMERIC(18,4) NOT NULL,
		location     TEXT NOT NULL DEFAULT '',
		min_stock    TEXT NOT NULL DEFAULT '',
		status       TEXT NOT NULL DEFAULT '',
		method       TEXT NOT NULL,
		moved_at     TIMESTAMPTZ NOT NULL,
		actor        TEXT NOT NULL DEFAULT '',
		units_moved  NUMERIC(18,4) NOT NULL
	);
	CREATE INDEX IF NOT EXISTS stock_history_moved_at_idx ON stock_history (moved_at DESC);`

// HistoryRepo histórico de movimientos sobre PostgreSQL (usable con pool o tx).
type HistoryRepo struct {
	q Querier
}

// NewHistoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewHistoryRepository(q Querier) *HistoryRepo {
	return &HistoryRepo{q: q}
}

// EnsureSchema crea la tabla si no existe.
func (r *HistoryRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, historySchema); err != nil {
		return fmt.Errorf("crear tabla stock_history: %w", err)
	}
	return nil
}

// Append inserta la entrada. Un ID repetido se considera ya registrado.
func (r *HistoryRepo) Append(ctx context.Context, e entity.HistoryEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_history (id, code, reference, description, unit, quantity, location, min_stock, status, method, moved_at, actor, units_moved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.Code, e.Reference, e.Description, e.Unit, e.Quantity,
		e.Location, e.MinStock, e.Status, e.Method, e.Timestamp, e.Actor, e.UnitsMoved,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("insertar histórico: %w", err)
	}
	return nil
}

// ListRecent devuelve las últimas entradas, la más reciente primero.
func (r *HistoryRepo) ListRecent(ctx context.Context, limit int) ([]entity.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, code, reference, description, unit, quantity, location, min_stock, status, method, moved_at, actor, units_moved
		FROM stock_history ORDER BY moved_at DESC LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listar histórico: %w", err)
	}
	defer rows.Close()

	var out []entity.HistoryEntry
	for rows.Next() {
		var e entity.HistoryEntry
		if err := rows.Scan(
			&e.ID, &e.Code, &e.Reference, &e.Description, &e.Unit, &e.Quantity,
			&e.Location, &e.MinStock, &e.Status, &e.Method, &e.Timestamp, &e.Actor, &e.UnitsMoved,
		); err != nil {
			return nil, fmt.Errorf("leer histórico: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
