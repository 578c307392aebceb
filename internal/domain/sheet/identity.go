// Package sheet contiene las reglas de reconciliación entre una hoja de cálculo
// editada a mano y el modelo de registros: encabezados, identidad de filas,
// consecutivos y mezcla de filas para escritura.
package sheet

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jhoicas/inventario-sheets/internal/domain"
	"github.com/jhoicas/inventario-sheets/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// IdentifierCandidates columnas que pueden contener la identidad de un registro,
// en orden de prioridad. La comparación del nombre es exacta.
var IdentifierCandidates = []string{"id", "ID", "Id", "codigo", "Código", "CODIGO", "Codigo"}

// ReferenceCandidates respaldo cuando ninguna columna de identificador tiene valor.
var ReferenceCandidates = []string{"Referencia", "referencia", "REFERENCIA", "Ref", "ref"}

var codeCandidates = []string{"codigo", "Código", "CODIGO", "Codigo"}

// Identifier devuelve el identificador del registro: la primera columna candidata
// presente y no vacía, luego la familia Referencia.
func Identifier(r entity.Record) (string, bool) {
	if v, ok := firstPresent(r, IdentifierCandidates); ok {
		return v, true
	}
	return firstPresent(r, ReferenceCandidates)
}

func firstPresent(r entity.Record, names []string) (string, bool) {
	for _, n := range names {
		if !r.Has(n) {
			continue
		}
		if v := strings.TrimSpace(r.Value(n)); v != "" {
			return v, true
		}
	}
	return "", false
}

// Materialize arma los registros del conjunto de trabajo. Filas sin identificador
// (separadores, totales, comentarios) quedan fuera.
func Materialize(header []string, rows [][]string) []entity.Record {
	out := make([]entity.Record, 0, len(rows))
	for _, cells := range rows {
		r := entity.NewRecord(header, cells)
		if _, ok := Identifier(r); !ok {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FindByIdentifier busca el primer registro cuyo identificador coincide con key
// (comparación exacta; key ya llega decodificado de la URL). Primero se compara
// la familia ID/Codigo y después la familia Referencia. Duplicados posteriores
// quedan ocultos.
func FindByIdentifier(records []entity.Record, key string) (entity.Record, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return entity.Record{}, domain.ErrNotFound
	}
	for _, r := range records {
		if v, ok := firstPresent(r, IdentifierCandidates); ok && v == key {
			return r, nil
		}
	}
	for _, r := range records {
		if v, ok := firstPresent(r, ReferenceCandidates); ok && v == key {
			return r, nil
		}
	}
	return entity.Record{}, domain.ErrNotFound
}

// NextID devuelve max+1 de los identificadores enteros (1 si ninguno es numérico).
// Valores como "7.0" cuentan como 7; el resto se ignora.
func NextID(records []entity.Record) int {
	max := 0
	for _, r := range records {
		v, ok := Identifier(r)
		if !ok {
			continue
		}
		if n, ok := parseInt(v); ok && n > max {
			max = n
		}
	}
	return max + 1
}

func parseInt(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.Equal(d.Truncate(0)) {
		return 0, false
	}
	return int(d.IntPart()), true
}

// NextConsecutive devuelve el siguiente consecutivo para códigos "<prefix>-<n>".
// Códigos con sufijo no numérico ("RMEC-2X") se ignoran.
func NextConsecutive(records []entity.Record, prefix string) int {
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `-(\d+)$`)
	max := 0
	for _, r := range records {
		for _, col := range codeCandidates {
			if !r.Has(col) {
				continue
			}
			m := re.FindStringSubmatch(strings.TrimSpace(r.Value(col)))
			if m == nil {
				continue
			}
			if n, err := strconv.Atoi(m[1]); err == nil && n > max {
				max = n
			}
		}
	}
	return max + 1
}

// FormatCode arma el código de negocio "<prefix>-<n>".
func FormatCode(prefix string, n int) string {
	return prefix + "-" + strconv.Itoa(n)
}

// DistinctValues valores no vacíos distintos del campo, en orden de aparición.
func DistinctValues(records []entity.Record, names ...string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range records {
		v := r.Lookup(names...)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
