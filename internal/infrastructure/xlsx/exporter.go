// Package xlsx exporta el inventario a un libro de Excel conservando el orden
// de columnas de la hoja origen.
package xlsx

import (
	"fmt"

	excelize "github.com/xuri/excelize/v2"

	"github.com/jhoicas/inventario-sheets/internal/domain/entity"
)

const sheetName = "Inventario"

// Exporter arma el libro a partir de los registros.
type Exporter struct{}

// NewExporter crea el exportador.
func NewExporter() *Exporter { return &Exporter{} }

// Export devuelve el .xlsx con el encabezado en negrilla y autofiltro.
func (e *Exporter) Export(header []string, records []entity.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", toRow(header)); err != nil {
		return nil, fmt.Errorf("xlsx: encabezado: %w", err)
	}
	for i, rec := range records {
		cells := make([]interface{}, len(header))
		for j, col := range header {
			cells[j] = rec.Value(col)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("xlsx: celda: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return nil, fmt.Errorf("xlsx: fila %d: %w", i+2, err)
		}
	}

	if len(header) > 0 {
		style, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"00467F"}},
		})
		if err != nil {
			return nil, fmt.Errorf("xlsx: estilo: %w", err)
		}
		last, err := excelize.CoordinatesToCellName(len(header), 1)
		if err != nil {
			return nil, fmt.Errorf("xlsx: celda: %w", err)
		}
		if err := f.SetCellStyle(sheetName, "A1", last, style); err != nil {
			return nil, fmt.Errorf("xlsx: estilo: %w", err)
		}
		lastData, _ := excelize.CoordinatesToCellName(len(header), len(records)+1)
		if err := f.AutoFilter(sheetName, "A1:"+lastData, nil); err != nil {
			return nil, fmt.Errorf("xlsx: autofiltro: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return buf.Bytes(), nil
}

func toRow(values []string) *[]interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return &out
}
