package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // driver sqlite en Go puro

	"github.com/jhoicas/inventario-sheets/internal/domain/entity"
	"github.com/jhoicas/inventario-sheets/internal/domain/repository"
)

var _ repository.HistoryRepository = (*HistoryRepo)(nil)

// Las fechas se guardan en UTC con ancho fijo para que el orden de texto sea cronológico.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z"

const historySchema = `
CREATE TABLE IF NOT EXISTS stock_history (
	id          TEXT PRIMARY KEY,
	code        TEXT NOT NULL DEFAULT '',
	reference   TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	unit        TEXT NOT NULL DEFAULT '',
	quantity    TEXT NOT NULL,
	location    TEXT NOT NULL DEFAULT '',
	min_stock   TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT '',
	method      TEXT NOT NULL,
	moved_at    TEXT NOT NULL,
	actor       TEXT NOT NULL DEFAULT '',
	units_moved TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS stock_history_moved_at_idx ON stock_history (moved_at);`

// HistoryRepo histórico de movimientos en un archivo SQLite local.
type HistoryRepo struct {
	db *sql.DB
}

// Open abre (o crea) la base en path y aplica el esquema.
func Open(ctx context.Context, path string) (*HistoryRepo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}
	// Un solo escritor; evita SQLITE_BUSY entre conexiones del pool.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("habilitar WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, historySchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("crear tabla stock_history: %w", err)
	}
	return &HistoryRepo{db: db}, nil
}

// Close cierra la base.
func (r *HistoryRepo) Close() error {
	return r.db.Close()
}

// Append inserta la entrada. Un ID repetido se ignora.
func (r *HistoryRepo) Append(ctx context.Context, e entity.HistoryEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT OR IGNORE INTO stock_history (id, code, reference, description, unit, quantity, location, min_stock, status, method, moved_at, actor, units_moved)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Code, e.Reference, e.Description, e.Unit, e.Quantity.String(),
		e.Location, e.MinStock, e.Status, e.Method,
		e.Timestamp.UTC().Format(storedTimeLayout), e.Actor, e.UnitsMoved.String(),
	)
	if err != nil {
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
		FROM stock_history ORDER BY moved_at DESC, rowid DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listar histórico: %w", err)
	}
	defer rows.Close()

	var out []entity.HistoryEntry
	for rows.Next() {
		var (
			e                   entity.HistoryEntry
			qty, units, movedAt string
		)
		if err := rows.Scan(
			&e.ID, &e.Code, &e.Reference, &e.Description, &e.Unit, &qty,
			&e.Location, &e.MinStock, &e.Status, &e.Method, &movedAt, &e.Actor, &units,
		); err != nil {
			return nil, fmt.Errorf("leer histórico: %w", err)
		}
		if e.Quantity, err = decimal.NewFromString(qty); err != nil {
			return nil, fmt.Errorf("cantidad %q: %w", qty, err)
		}
		if e.UnitsMoved, err = decimal.NewFromString(units); err != nil {
			return nil, fmt.Errorf("unidades %q: %w", units, err)
		}
		if e.Timestamp, err = time.Parse(storedTimeLayout, movedAt); err != nil {
			return nil, fmt.Errorf("fecha %q: %w", movedAt, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
