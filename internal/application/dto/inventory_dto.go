package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoryEntryResponse movimiento registrado en el histórico.
type HistoryEntryResponse struct {
	Code        string          `json:"codigo"`
	Reference   string          `json:"referencia"`
	Description string          `json:"descripcion"`
	Unit        string          `json:"unidad_medida"`
	Quantity    decimal.Decimal `json:"cantidad"`
	Location    string          `json:"ubicacion"`
	MinStock    string          `json:"stock_min"`
	Status      string          `json:"estado"`
	Method      string          `json:"metodo"`
	Timestamp   time.Time       `json:"fecha_movimiento"`
	Actor       string          `json:"usuario"`
	UnitsMoved  decimal.Decimal `json:"unidades_utilizadas"`
}

// HistoryListResponse últimos movimientos, el más reciente primero.
type HistoryListResponse struct {
	Items []HistoryEntryResponse `json:"items"`
}
