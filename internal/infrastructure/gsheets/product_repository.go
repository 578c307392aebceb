package gsheets

import (
	"context"

	"github.com/jhoicas/inventario-sheets/internal/domain/entity"
	"github.com/jhoicas/inventario-sheets/internal/domain/repository"
	"github.com/jhoicas/inventario-sheets/internal/domain/sheet"
)

// ProductRepository implementa repository.ProductRepository sobre la hoja de inventario:
// lectura por exportación CSV y escritura por la API de valores.
type ProductRepository struct {
	loc    Locator
	reader *Reader
	writer *Writer
}

// NewProductRepository crea el repositorio de la pestaña indicada.
func NewProductRepository(loc Locator, reader *Reader, writer *Writer) *ProductRepository {
	return &ProductRepository{loc: loc, reader: reader, writer: writer}
}

// List implementa repository.ProductRepository.
func (r *ProductRepository) List(ctx context.Context) ([]entity.Record, error) {
	return r.reader.Records(ctx, r.loc)
}

// FindByID implementa repository.ProductRepository.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (entity.Record, error) {
	records, err := r.reader.Records(ctx, r.loc)
	if err != nil {
		return entity.Record{}, err
	}
	return sheet.FindByIdentifier(records, id)
}

// Update implementa repository.ProductRepository.
func (r *ProductRepository) Update(ctx context.Context, id string, changes map[string]string) error {
	_, err := r.writer.Update(ctx, r.loc, id, changes)
	return err
}

// Create implementa repository.ProductRepository.
func (r *ProductRepository) Create(ctx context.Context, values map[string]string) (entity.Record, error) {
	return r.writer.Append(ctx, r.loc, values)
}

var _ repository.ProductRepository = (*ProductRepository)(nil)
