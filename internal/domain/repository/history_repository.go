package repository

import (
	"context"

	"github.com/jhoicas/inventario-sheets/internal/domain/entity"
)

// HistoryRepository define el puerto del histórico de movimientos (sólo agregar y listar).
type HistoryRepository interface {
	Append(ctx context.Context, entry entity.HistoryEntry) error
	// ListRecent devuelve las últimas entradas, la más reciente primero.
	ListRecent(ctx context.Context, limit int) ([]entity.HistoryEntry, error)
}
