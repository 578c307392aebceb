package sheet

import (
	"fmt"
	"strings"

	"github.com/jhoicas/inventario-sheets/internal/domain"
	"github.com/jhoicas/inventario-sheets/internal/domain/entity"
)

const bom = "\ufeff"

// NormalizeHeaders recorta los encabezados, nombra los vacíos "Unnamed: <i>" y
// desambigua repetidos como "X.1", "X.2".
func NormalizeHeaders(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		if i == 0 {
			h = strings.TrimPrefix(h, bom)
		}
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		if n, dup := seen[h]; dup {
			for {
				n++
				name = fmt.Sprintf("%s.%d", h, n)
				if _, taken := seen[name]; !taken {
					break
				}
			}
			seen[h] = n
		}
		seen[name] = 0
		out[i] = name
	}
	return out
}

// IdentifierColumn resuelve la columna de identificador para escritura:
// "ID" exacto en la posición 0, luego "id" sin distinguir mayúsculas, luego
// "codigo"/"código".
func IdentifierColumn(header []string) (int, error) {
	if len(header) == 0 {
		return -1, domain.ErrNoHeaders
	}
	if strings.TrimSpace(header[0]) == "ID" {
		return 0, nil
	}
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), "id") {
			return i, nil
		}
	}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if strings.EqualFold(h, "codigo") || strings.EqualFold(h, "código") {
			return i, nil
		}
	}
	return -1, domain.ErrNoIdentifierColumn
}

// FindRow devuelve el índice (sobre filas de datos) de la primera fila cuya celda
// en col, recortada, es igual a id.
func FindRow(rows [][]string, col int, id string) (int, bool) {
	id = strings.TrimSpace(id)
	for i, row := range rows {
		if col < len(row) && strings.TrimSpace(row[col]) == id {
			return i, true
		}
	}
	return -1, false
}

// MergeRow arma la fila completa respetando el orden del encabezado. Cada
// encabezado toma el valor de changes cuya clave coincide sin distinguir
// mayúsculas; si no hay cambio conserva la celda existente ("" si la fila es corta).
// Claves sin encabezado se descartan.
func MergeRow(header, existing []string, changes map[string]string) []string {
	folded := foldChanges(changes)
	out := make([]string, len(header))
	for i, h := range header {
		if v, ok := folded[strings.ToLower(strings.TrimSpace(h))]; ok {
			out[i] = v
			continue
		}
		if i < len(existing) {
			out[i] = existing[i]
		}
	}
	return out
}

// BuildRow arma una fila nueva en el orden del encabezado; lo ausente queda vacío.
func BuildRow(header []string, values map[string]string) []string {
	return MergeRow(header, nil, values)
}

// UnmatchedKeys claves de changes que no corresponden a ningún encabezado.
func UnmatchedKeys(header []string, changes map[string]string) []string {
	known := make(map[string]struct{}, len(header))
	for _, h := range header {
		known[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
	}
	var out []string
	for _, k := range sortedKeys(changes) {
		if _, ok := known[strings.ToLower(strings.TrimSpace(k))]; !ok {
			out = append(out, k)
		}
	}
	return out
}

// foldChanges indexa los cambios por clave en minúsculas. Si dos claves colisionan
// gana la última en orden lexicográfico, para que el resultado sea determinista.
func foldChanges(changes map[string]string) map[string]string {
	out := make(map[string]string, len(changes))
	for _, k := range sortedKeys(changes) {
		out[strings.ToLower(strings.TrimSpace(k))] = changes[k]
	}
	return out
}

// WriteIdentifier devuelve el valor que el escritor usará para ubicar la fila del
// registro (columna resuelta con IdentifierColumn). Puede diferir del identificador
// de lectura cuando el registro se encontró por Referencia.
func WriteIdentifier(r entity.Record) (string, error) {
	cols := r.Columns()
	col, err := IdentifierColumn(cols)
	if err != nil {
		return "", err
	}
	v := strings.TrimSpace(r.Value(cols[col]))
	if v == "" {
		return "", fmt.Errorf("%w: el registro no tiene valor en %q", domain.ErrNotFound, cols[col])
	}
	return v, nil
}
