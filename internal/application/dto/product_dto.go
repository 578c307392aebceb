package dto

import "github.com/jhoicas/inventario-sheets/internal/domain/entity"

// ProductListResponse listado del inventario (dashboard). Si la hoja no se pudo
// leer, Items va vacío y Message trae el diagnóstico.
type ProductListResponse struct {
	Items   []entity.Record `json:"items"`
	Total   int             `json:"total"`
	Message string          `json:"message,omitempty"`
}

// ProductResponse detalle de un producto tal como está en la hoja.
type ProductResponse struct {
	ID      string        `json:"id"`
	Product entity.Record `json:"product"`
}

// ProductFormDefaults valores sugeridos para el formulario de creación.
type ProductFormDefaults struct {
	NextID   int      `json:"next_id"`
	NextCode string   `json:"next_code"`
	Units    []string `json:"units"`
}

// CreateProductRequest campos del formulario de creación: nombre de columna -> valor.
// Las claves se ubican sin distinguir mayúsculas contra el encabezado de la hoja.
type CreateProductRequest map[string]string

// EditProductRequest edición de campos y movimiento opcional de stock.
// Units vacío o "0" sólo edita campos (no registra histórico).
type EditProductRequest struct {
	Fields map[string]string `json:"fields"`
	Method string            `json:"metodo"`
	Units  string            `json:"unidades"`
}

// ProductWriteResponse producto escrito más el resultado de las escrituras secundarias.
type ProductWriteResponse struct {
	WriteResult
	ID       string        `json:"id"`
	Product  entity.Record `json:"product"`
	Quantity string        `json:"cantidad,omitempty"`
	QRFile   string        `json:"qr_file,omitempty"`
}

// UnitsResponse unidades de medida distintas presentes en la hoja.
type UnitsResponse struct {
	Units []string `json:"units"`
}

// QRResponse resultado de publicar la imagen QR de un producto.
type QRResponse struct {
	FileName string `json:"file_name"`
	FileID   string `json:"file_id"`
	Link     string `json:"link"`
}

// QRBatchResponse resumen de la generación masiva de QR.
type QRBatchResponse struct {
	Generated int      `json:"generated"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}
