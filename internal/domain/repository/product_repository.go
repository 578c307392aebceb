package repository

import (
	"context"

	"github.com/jhoicas/inventario-sheets/internal/domain/entity"
)

// ProductRepository define el puerto de la hoja de inventario (DIP).
// Cada llamada vuelve a leer la hoja completa; no hay caché ni bloqueo.
type ProductRepository interface {
	// List devuelve los registros con identificador, en el orden de la hoja.
	List(ctx context.Context) ([]entity.Record, error)
	// FindByID busca por ID/Codigo y luego por Referencia; la primera coincidencia gana.
	FindByID(ctx context.Context, id string) (entity.Record, error)
	// Update reescribe la fila del identificador conservando las columnas no mencionadas.
	Update(ctx context.Context, id string, changes map[string]string) error
	// Create agrega una fila en el orden del encabezado y devuelve lo escrito.
	Create(ctx context.Context, values map[string]string) (entity.Record, error)
}
