package gsheets

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jhoicas/inventario-sheets/internal/domain"
	"github.com/jhoicas/inventario-sheets/internal/domain/entity"
	"github.com/jhoicas/inventario-sheets/internal/domain/repository"
)

// HistoryRepository histórico en una hoja aparte. Las filas se escriben y leen
// por posición en el orden de entity.HistoryColumns; el texto del encabezado
// de la hoja no participa (puede decir "Ubicacion" o "Fecha Movimiento").
type HistoryRepository struct {
	loc    Locator
	reader *Reader
	writer *Writer
	tz     *time.Location

	mu        sync.Mutex
	hasHeader bool
}

// NewHistoryRepository crea el repositorio; tz define el formato de FechaMovimiento.
func NewHistoryRepository(loc Locator, reader *Reader, writer *Writer, tz *time.Location) *HistoryRepository {
	if tz == nil {
		tz = time.UTC
	}
	return &HistoryRepository{loc: loc, reader: reader, writer: writer, tz: tz}
}

// Append implementa repository.HistoryRepository.
func (r *HistoryRepository) Append(ctx context.Context, entry entity.HistoryEntry) error {
	if err := r.ensureHeader(ctx); err != nil {
		return err
	}
	return r.writer.AppendRow(ctx, r.loc, entry.Row(r.tz))
}

// ensureHeader escribe el encabezado si la pestaña está vacía. Se verifica una
// vez por vida del repositorio.
func (r *HistoryRepository) ensureHeader(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hasHeader {
		return nil
	}
	_, err := r.writer.Header(ctx, r.loc)
	switch {
	case errors.Is(err, domain.ErrNoHeaders):
		if err := r.writer.AppendRow(ctx, r.loc, entity.HistoryColumns); err != nil {
			return err
		}
	case err != nil:
		return err
	}
	r.hasHeader = true
	return nil
}

// ListRecent implementa repository.HistoryRepository. La hoja se escribe en
// orden cronológico, así que las últimas filas son las más recientes.
func (r *HistoryRepository) ListRecent(ctx context.Context, limit int) ([]entity.HistoryEntry, error) {
	t, err := r.reader.ReadTable(ctx, r.loc)
	if err != nil {
		return nil, err
	}
	out := make([]entity.HistoryEntry, 0, len(t.Rows))
	for i := len(t.Rows) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		rec := entity.NewRecord(entity.HistoryColumns, t.Rows[i])
		out = append(out, entity.HistoryEntryFromRecord(rec, r.tz))
	}
	return out, nil
}

var _ repository.HistoryRepository = (*HistoryRepository)(nil)
