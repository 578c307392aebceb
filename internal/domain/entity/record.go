package entity

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Record representa una fila de la hoja de inventario: nombre de columna -> valor de celda.
// Los nombres de columna se guardan tal como vienen del encabezado (recortados, sin
// normalizar mayúsculas); las búsquedas por nombre conocido sí son insensibles a mayúsculas.
// El orden de columnas es el del encabezado y es el que se serializa a JSON.
type Record struct {
	columns []string
	values  map[string]string
}

// NewRecord arma un Record a partir del encabezado y las celdas de una fila.
// Filas cortas se completan con celdas vacías.
func NewRecord(columns, cells []string) Record {
	r := Record{
		columns: make([]string, len(columns)),
		values:  make(map[string]string, len(columns)),
	}
	copy(r.columns, columns)
	for i, col := range columns {
		v := ""
		if i < len(cells) {
			v = cells[i]
		}
		r.values[col] = v
	}
	return r
}

// RecordFromMap arma un Record con el orden de columnas indicado tomando los valores de m.
func RecordFromMap(columns []string, m map[string]string) Record {
	cells := make([]string, len(columns))
	for i, col := range columns {
		cells[i] = m[col]
	}
	return NewRecord(columns, cells)
}

// Columns devuelve una copia del encabezado en su orden original.
func (r Record) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Has indica si la columna existe con ese nombre exacto.
func (r Record) Has(column string) bool {
	_, ok := r.values[column]
	return ok
}

// Value devuelve la celda de la columna con nombre exacto ("" si no existe).
func (r Record) Value(column string) string {
	return r.values[column]
}

// Column resuelve el nombre real del encabezado para un nombre de campo conocido:
// coincidencia exacta, luego insensible a mayúsculas, luego sin tildes.
func (r Record) Column(name string) (string, bool) {
	if _, ok := r.values[name]; ok {
		return name, true
	}
	key := FoldKey(name)
	for _, col := range r.columns {
		if FoldKey(col) == key {
			return col, true
		}
	}
	key = FoldAccents(key)
	for _, col := range r.columns {
		if FoldAccents(FoldKey(col)) == key {
			return col, true
		}
	}
	return "", false
}

// Get devuelve el valor del campo usando la misma resolución que Column.
func (r Record) Get(name string) (string, bool) {
	col, ok := r.Column(name)
	if !ok {
		return "", false
	}
	return r.values[col], true
}

// Lookup devuelve el primer valor no vacío (recortado) entre los nombres candidatos.
func (r Record) Lookup(names ...string) string {
	for _, n := range names {
		if v, ok := r.Get(n); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// Map devuelve una copia de los valores indexados por nombre de columna.
func (r Record) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// IsBlank indica si todas las celdas están vacías.
func (r Record) IsBlank() bool {
	for _, v := range r.values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// MarshalJSON serializa el Record como objeto respetando el orden del encabezado.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[col])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FoldKey normaliza un nombre de columna para comparación insensible a mayúsculas.
func FoldKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// FoldAccents quita las marcas diacríticas ("Código" -> "Codigo").
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
