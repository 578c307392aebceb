package ports

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-sheets/internal/domain/entity"
)

// ObjectStore define el puerto de salida donde se publican las imágenes QR
// (carpeta de Drive o bucket S3). Put sobrescribe un objeto con el mismo nombre.
type ObjectStore interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Exists(ctx context.Context, name string) (bool, error)
}

// ImageRenderer genera la imagen PNG de un código QR.
type ImageRenderer interface {
	PNG(content string) ([]byte, error)
}

// DocumentRenderer genera los PDF imprimibles.
type DocumentRenderer interface {
	GenerateLabel(ctx context.Context, p entity.Product, deepLink string) ([]byte, error)
	GenerateInventoryReport(ctx context.Context, products []entity.Product, at time.Time) ([]byte, error)
}

// SpreadsheetExporter serializa el inventario a un libro descargable.
type SpreadsheetExporter interface {
	Export(header []string, records []entity.Record) ([]byte, error)
}
