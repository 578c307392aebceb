package gsheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/inventario-sheets/internal/domain"
	"github.com/jhoicas/inventario-sheets/internal/domain/entity"
	"github.com/jhoicas/inventario-sheets/internal/domain/sheet"
	"github.com/jhoicas/inventario-sheets/pkg/logger"
)

// Writer escritura posicional sobre la API de valores: actualiza una fila
// conservando el orden de columnas y agrega filas en el orden del encabezado.
// No hay bloqueo entre la lectura y la escritura: gana la última escritura.
type Writer struct {
	values *ValuesClient
	log    *logger.Logger
}

// NewWriter crea el escritor.
func NewWriter(values *ValuesClient, log *logger.Logger) *Writer {
	return &Writer{values: values, log: logger.OrNop(log).Component("gsheets.writer")}
}

// UpdateResult posición escrita (fila 1-based de la hoja) y columnas descartadas.
type UpdateResult struct {
	Row     int
	Dropped []string
}

// Update reescribe la fila cuyo identificador coincide con id. Las columnas no
// mencionadas en changes conservan su valor; claves sin encabezado se descartan.
func (w *Writer) Update(ctx context.Context, loc Locator, id string, changes map[string]string) (UpdateResult, error) {
	prefix, err := w.rangePrefix(ctx, loc)
	if err != nil {
		return UpdateResult{}, err
	}
	rows, err := w.values.Get(ctx, loc.SpreadsheetID, prefix+"A:ZZ")
	if err != nil {
		return UpdateResult{}, w.fail("update", id, err)
	}
	if len(rows) == 0 {
		return UpdateResult{}, w.fail("update", id, domain.ErrNoHeaders)
	}
	header := trimAll(rows[0])
	col, err := sheet.IdentifierColumn(header)
	if err != nil {
		return UpdateResult{}, w.fail("update", id, err)
	}
	idx, ok := sheet.FindRow(rows[1:], col, id)
	if !ok {
		return UpdateResult{}, w.fail("update", id, fmt.Errorf("%w: fila con ID %q", domain.ErrNotFound, id))
	}
	rowNumber := idx + 2
	merged := sheet.MergeRow(header, rows[idx+1], changes)
	rng := prefix + strconv.Itoa(rowNumber) + ":" + strconv.Itoa(rowNumber)
	if err := w.values.Update(ctx, loc.SpreadsheetID, rng, merged); err != nil {
		return UpdateResult{}, w.fail("update", id, err)
	}

	res := UpdateResult{Row: rowNumber, Dropped: sheet.UnmatchedKeys(header, changes)}
	ev := w.log.Info().Str("operation", "update").Str("identifier", id).Int("row", rowNumber)
	if len(res.Dropped) > 0 {
		ev = ev.Strs("dropped_columns", res.Dropped)
	}
	ev.Msg("fila actualizada")
	return res, nil
}

// Header lee sólo la fila de encabezados.
func (w *Writer) Header(ctx context.Context, loc Locator) ([]string, error) {
	prefix, err := w.rangePrefix(ctx, loc)
	if err != nil {
		return nil, err
	}
	return w.header(ctx, loc, prefix)
}

func (w *Writer) header(ctx context.Context, loc Locator, prefix string) ([]string, error) {
	rows, err := w.values.Get(ctx, loc.SpreadsheetID, prefix+"1:1")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, domain.ErrNoHeaders
	}
	return trimAll(rows[0]), nil
}

// Append agrega una fila con los valores ubicados según el encabezado actual y
// devuelve el registro tal como quedó escrito.
func (w *Writer) Append(ctx context.Context, loc Locator, values map[string]string) (entity.Record, error) {
	prefix, err := w.rangePrefix(ctx, loc)
	if err != nil {
		return entity.Record{}, err
	}
	header, err := w.header(ctx, loc, prefix)
	if err != nil {
		return entity.Record{}, w.fail("append", loc.String(), err)
	}
	row := sheet.BuildRow(header, values)
	if err := w.values.Append(ctx, loc.SpreadsheetID, prefix+"A:ZZ", row); err != nil {
		return entity.Record{}, w.fail("append", loc.String(), err)
	}
	w.log.Info().Str("operation", "append").Str("identifier", loc.String()).Int("columns", len(row)).Msg("fila agregada")
	return entity.NewRecord(header, row), nil
}

// AppendRow agrega una fila tal cual, sin ubicar columnas por encabezado.
func (w *Writer) AppendRow(ctx context.Context, loc Locator, row []string) error {
	prefix, err := w.rangePrefix(ctx, loc)
	if err != nil {
		return err
	}
	if err := w.values.Append(ctx, loc.SpreadsheetID, prefix+"A:ZZ", row); err != nil {
		return w.fail("append-row", loc.String(), err)
	}
	w.log.Info().Str("operation", "append-row").Str("identifier", loc.String()).Int("columns", len(row)).Msg("fila agregada")
	return nil
}

// rangePrefix califica los rangos con el título de la pestaña, también en gid 0:
// un rango sin título apunta a la primera pestaña visible, que puede ser otra.
func (w *Writer) rangePrefix(ctx context.Context, loc Locator) (string, error) {
	title, err := w.values.SheetTitle(ctx, loc.SpreadsheetID, loc.gid())
	if err != nil {
		return "", w.fail("resolve-tab", loc.String(), err)
	}
	return "'" + strings.ReplaceAll(title, "'", "''") + "'!", nil
}

func (w *Writer) fail(op, id string, err error) error {
	w.log.Error().Str("operation", op).Str("identifier", id).Err(err).Msg("escritura en hoja fallida")
	return err
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
