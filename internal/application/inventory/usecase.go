package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-sheets/internal/application/dto"
	"github.com/jhoicas/inventario-sheets/internal/domain"
	"github.com/jhoicas/inventario-sheets/internal/domain/entity"
	"github.com/jhoicas/inventario-sheets/internal/domain/inventory"
	"github.com/jhoicas/inventario-sheets/internal/domain/repository"
	"github.com/jhoicas/inventario-sheets/internal/domain/sheet"
	"github.com/jhoicas/inventario-sheets/pkg/logger"
)

// StockUseCase edición de productos con movimiento de stock (Ingreso/Salida) y
// registro en el histórico. No hay transacción: si el histórico falla después de
// actualizar la hoja, el resultado es parcial y la actualización se conserva.
type StockUseCase struct {
	products repository.ProductRepository
	history  repository.HistoryRepository
	log      *logger.Logger
	now      func() time.Time
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(products repository.ProductRepository, history repository.HistoryRepository, log *logger.Logger) *StockUseCase {
	return &StockUseCase{
		products: products,
		history:  history,
		log:      logger.OrNop(log).Component("inventory"),
		now:      time.Now,
	}
}

// EditInput entrada de la edición: campos a escribir y movimiento opcional.
type EditInput struct {
	ID     string
	Fields map[string]string
	Method string
	Units  string
	Actor  string
}

// Edit valida el movimiento, escribe la fila y, si se movieron unidades, agrega la
// entrada de histórico con la cantidad resultante. Errores de validación se
// devuelven antes de cualquier escritura.
//
// Con movimiento, la cantidad se calcula sobre el valor actual de la hoja y
// reemplaza cualquier "cantidad" enviada en Fields.
func (uc *StockUseCase) Edit(ctx context.Context, in EditInput) (*dto.ProductWriteResponse, error) {
	adj, err := inventory.NewAdjustment(in.Method, in.Units)
	if err != nil {
		return nil, err
	}
	record, err := uc.products.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	writeID, err := sheet.WriteIdentifier(record)
	if err != nil {
		return nil, err
	}

	changes := editableFields(record, in.Fields)
	var resulting decimal.Decimal
	if !adj.IsZero() {
		current, err := inventory.ParseQuantity(record.Lookup(entity.FieldQuantity...))
		if err != nil {
			return nil, err
		}
		if resulting, err = adj.Apply(current); err != nil {
			return nil, err
		}
		quantityKey := entity.QuantityColumn
		for _, name := range entity.FieldQuantity {
			if col, ok := record.Column(name); ok {
				quantityKey = col
				break
			}
		}
		for k := range changes {
			if strings.EqualFold(strings.TrimSpace(k), quantityKey) {
				delete(changes, k)
			}
		}
		changes[quantityKey] = inventory.FormatQuantity(resulting)
	}

	if err := uc.products.Update(ctx, writeID, changes); err != nil {
		return nil, err
	}
	updated := applyChanges(record, changes)

	var failures []domain.SecondaryFailure
	if !adj.IsZero() {
		entry := entity.NewHistoryEntry(
			uuid.New().String(),
			entity.ProductFromRecord(writeID, record),
			resulting, adj.Method, adj.Units, in.Actor, uc.now(),
		)
		if err := uc.history.Append(ctx, entry); err != nil {
			uc.log.Warn().Str("operation", "history-append").Str("identifier", writeID).Err(err).
				Msg("producto actualizado pero el histórico no se registró")
			failures = append(failures, domain.NewSecondaryFailure(domain.StepHistory))
		}
	}

	uc.log.Info().Str("operation", "edit").Str("identifier", writeID).
		Str("method", adj.Method).Str("units", adj.Units.String()).Str("actor", in.Actor).
		Msg("producto editado")

	return &dto.ProductWriteResponse{
		WriteResult: dto.NewWriteResult(failures),
		ID:          writeID,
		Product:     updated,
		Quantity:    updated.Lookup(entity.FieldQuantity...),
	}, nil
}

// Recent devuelve los últimos movimientos del histórico.
func (uc *StockUseCase) Recent(ctx context.Context, limit int) (*dto.HistoryListResponse, error) {
	entries, err := uc.history.ListRecent(ctx, limit)
	if err != nil {
		if !errors.Is(err, domain.ErrDataUnavailable) && !domain.IsMisconfiguration(err) {
			err = errors.Join(domain.ErrDataUnavailable, err)
		}
		return nil, err
	}
	out := &dto.HistoryListResponse{Items: make([]dto.HistoryEntryResponse, 0, len(entries))}
	for _, e := range entries {
		out.Items = append(out.Items, dto.HistoryEntryResponse{
			Code:        e.Code,
			Reference:   e.Reference,
			Description: e.Description,
			Unit:        e.Unit,
			Quantity:    e.Quantity,
			Location:    e.Location,
			MinStock:    e.MinStock,
			Status:      e.Status,
			Method:      e.Method,
			Timestamp:   e.Timestamp,
			Actor:       e.Actor,
			UnitsMoved:  e.UnitsMoved,
		})
	}
	return out, nil
}

// editableFields copia los campos del formulario sin la columna de identificador
// de escritura: cambiarla dejaría la fila inubicable.
func editableFields(record entity.Record, fields map[string]string) map[string]string {
	idCol := ""
	if col, err := sheet.IdentifierColumn(record.Columns()); err == nil {
		idCol = record.Columns()[col]
	}
	out := make(map[string]string, len(fields)+1)
	for k, v := range fields {
		if idCol != "" && strings.EqualFold(strings.TrimSpace(k), idCol) {
			continue
		}
		out[k] = v
	}
	return out
}

// applyChanges reproduce localmente la fila que quedó escrita.
func applyChanges(record entity.Record, changes map[string]string) entity.Record {
	cols := record.Columns()
	cells := make([]string, len(cols))
	for i, c := range cols {
		cells[i] = record.Value(c)
	}
	return entity.NewRecord(cols, sheet.MergeRow(cols, cells, changes))
}
