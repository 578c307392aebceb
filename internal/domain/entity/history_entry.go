package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de movimiento de inventario.
const (
	MethodIngreso = "Ingreso" // entrada, suma unidades
	MethodSalida  = "Salida"  // salida, resta unidades
)

// HistoryTimeLayout formato del campo FechaMovimiento en la hoja de histórico.
const HistoryTimeLayout = "2006-01-02 15:04:05"

// HistoryColumns orden de columnas de la hoja de histórico.
var HistoryColumns = []string{
	"Codigo", "Referencia", "Descripcion", "Unidad-medida", "cantidad", "Ubicación",
	"Stock-min", "Estado", "Metodo", "FechaMovimiento", "Usuario", "UnidadesUtilizadas",
}

// HistoryEntry registro inmutable de un movimiento de stock ya aplicado.
// Quantity es la cantidad resultante (después del movimiento); el resto de
// atributos del producto son los previos al movimiento.
type HistoryEntry struct {
	ID          string
	Code        string
	Reference   string
	Description string
	Unit        string
	Quantity    decimal.Decimal
	Location    string
	MinStock    string
	Status      string
	Method      string
	Timestamp   time.Time
	Actor       string
	UnitsMoved  decimal.Decimal
}

// NewHistoryEntry arma la entrada a partir del producto previo al movimiento.
func NewHistoryEntry(id string, p Product, resulting decimal.Decimal, method string, units decimal.Decimal, actor string, at time.Time) HistoryEntry {
	return HistoryEntry{
		ID:          id,
		Code:        p.Code,
		Reference:   p.Reference,
		Description: p.Description,
		Unit:        p.Unit,
		Quantity:    resulting,
		Location:    p.Location,
		MinStock:    p.MinStock,
		Status:      p.Status,
		Method:      method,
		Timestamp:   at,
		Actor:       actor,
		UnitsMoved:  units,
	}
}

// Row devuelve la fila en el orden de HistoryColumns; la fecha se formatea en loc.
func (h HistoryEntry) Row(loc *time.Location) []string {
	ts := h.Timestamp
	if loc != nil {
		ts = ts.In(loc)
	}
	return []string{
		h.Code,
		h.Reference,
		h.Description,
		h.Unit,
		h.Quantity.String(),
		h.Location,
		h.MinStock,
		h.Status,
		h.Method,
		ts.Format(HistoryTimeLayout),
		h.Actor,
		h.UnitsMoved.String(),
	}
}

// HistoryEntryFromRecord reconstruye una entrada leída de la hoja de histórico.
// Valores numéricos ilegibles quedan en cero.
func HistoryEntryFromRecord(r Record, loc *time.Location) HistoryEntry {
	if loc == nil {
		loc = time.UTC
	}
	h := HistoryEntry{
		Code:        r.Lookup("Codigo"),
		Reference:   r.Lookup("Referencia"),
		Description: r.Lookup("Descripcion"),
		Unit:        r.Lookup("Unidad-medida"),
		Location:    r.Lookup("Ubicación"),
		MinStock:    r.Lookup("Stock-min"),
		Status:      r.Lookup("Estado"),
		Method:      r.Lookup("Metodo"),
		Actor:       r.Lookup("Usuario"),
	}
	h.Quantity, _ = decimal.NewFromString(r.Lookup("cantidad"))
	h.UnitsMoved, _ = decimal.NewFromString(r.Lookup("UnidadesUtilizadas"))
	if ts, err := time.ParseInLocation(HistoryTimeLayout, r.Lookup("FechaMovimiento"), loc); err == nil {
		h.Timestamp = ts
	}
	return h
}
