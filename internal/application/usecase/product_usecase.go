package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/inventario-sheets/internal/application/dto"
	"github.com/jhoicas/inventario-sheets/internal/application/ports"
	"github.com/jhoicas/inventario-sheets/internal/application/qr"
	"github.com/jhoicas/inventario-sheets/internal/domain"
	"github.com/jhoicas/inventario-sheets/internal/domain/entity"
	"github.com/jhoicas/inventario-sheets/internal/domain/inventory"
	"github.com/jhoicas/inventario-sheets/internal/domain/repository"
	"github.com/jhoicas/inventario-sheets/internal/domain/sheet"
	"github.com/jhoicas/inventario-sheets/pkg/logger"
)

// ProductUseCase consulta y alta de productos sobre la hoja de inventario, más
// los derivados (QR, etiqueta, exportaciones).
type ProductUseCase struct {
	repo       repository.ProductRepository
	qr         *qr.Service
	docs       ports.DocumentRenderer
	exporter   ports.SpreadsheetExporter
	codePrefix string
	log        *logger.Logger
}

// NewProductUseCase construye el caso de uso. codePrefix es el prefijo de los
// códigos consecutivos ("RMEC").
func NewProductUseCase(
	repo repository.ProductRepository,
	qrSvc *qr.Service,
	docs ports.DocumentRenderer,
	exporter ports.SpreadsheetExporter,
	codePrefix string,
	log *logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		repo:       repo,
		qr:         qrSvc,
		docs:       docs,
		exporter:   exporter,
		codePrefix: codePrefix,
		log:        logger.OrNop(log).Component("products"),
	}
}

// List devuelve el inventario en el orden de la hoja.
func (uc *ProductUseCase) List(ctx context.Context) (*dto.ProductListResponse, error) {
	records, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ProductListResponse{Items: records, Total: len(records)}, nil
}

// Get devuelve el detalle por identificador (ID/Codigo, luego Referencia).
func (uc *ProductUseCase) Get(ctx context.Context, id string) (*dto.ProductResponse, error) {
	record, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resolved, _ := sheet.Identifier(record)
	return &dto.ProductResponse{ID: resolved, Product: record}, nil
}

// Units unidades de medida distintas, en orden de aparición.
func (uc *ProductUseCase) Units(ctx context.Context) ([]string, error) {
	records, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return sheet.DistinctValues(records, entity.FieldUnit...), nil
}

// FormDefaults siguiente ID, siguiente código y unidades para el formulario de alta.
func (uc *ProductUseCase) FormDefaults(ctx context.Context) (*dto.ProductFormDefaults, error) {
	records, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ProductFormDefaults{
		NextID:   sheet.NextID(records),
		NextCode: sheet.FormatCode(uc.codePrefix, sheet.NextConsecutive(records, uc.codePrefix)),
		Units:    sheet.DistinctValues(records, entity.FieldUnit...),
	}, nil
}

// Create agrega el producto con el siguiente ID entero y, si falta, el siguiente
// código consecutivo. Después publica el QR; si eso falla el alta se conserva y
// el resultado es parcial.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest, actor string) (*dto.ProductWriteResponse, error) {
	values := make(map[string]string, len(in)+2)
	for k, v := range in {
		if k = strings.TrimSpace(k); k != "" {
			values[k] = strings.TrimSpace(v)
		}
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: formulario vacío", domain.ErrInvalidInput)
	}
	form := entity.RecordFromMap(keys(values), values)
	if q := form.Lookup(entity.FieldQuantity...); q != "" {
		qty, err := inventory.ParseQuantity(q)
		if err != nil {
			return nil, err
		}
		if qty.IsNegative() {
			return nil, fmt.Errorf("%w: la cantidad inicial no puede ser negativa", domain.ErrInvalidInput)
		}
	}

	records, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	idKey, codeKey := "ID", "Codigo"
	if len(records) > 0 {
		cols := records[0].Columns()
		if col, err := sheet.IdentifierColumn(cols); err == nil {
			idKey = cols[col]
		}
		if col, ok := records[0].Column("Codigo"); ok {
			codeKey = col
		}
	}
	for _, k := range keys(values) {
		if strings.EqualFold(k, idKey) {
			delete(values, k)
		}
	}
	values[idKey] = strconv.Itoa(sheet.NextID(records))
	if form.Lookup(entity.FieldCode...) == "" {
		values[codeKey] = sheet.FormatCode(uc.codePrefix, sheet.NextConsecutive(records, uc.codePrefix))
	}

	written, err := uc.repo.Create(ctx, values)
	if err != nil {
		return nil, err
	}
	id, err := sheet.WriteIdentifier(written)
	if err != nil {
		id, _ = sheet.Identifier(written)
	}
	uc.log.Info().Str("operation", "create").Str("identifier", id).Str("actor", actor).Msg("producto creado")

	res := &dto.ProductWriteResponse{
		ID:       id,
		Product:  written,
		Quantity: written.Lookup(entity.FieldQuantity...),
	}
	var failures []domain.SecondaryFailure
	if uc.qr != nil && uc.qr.Enabled() {
		code := written.Lookup(entity.FieldCode...)
		if out, err := uc.qr.Publish(ctx, id, code); err != nil {
			uc.log.Warn().Str("operation", "qr-publish").Str("identifier", id).Err(err).
				Msg("producto creado pero el QR no se publicó")
			failures = append(failures, domain.NewSecondaryFailure(domain.StepQR))
		} else {
			res.QRFile = out.FileName
		}
	}
	res.WriteResult = dto.NewWriteResult(failures)
	return res, nil
}

// QRImage PNG con el enlace al detalle del producto.
func (uc *ProductUseCase) QRImage(ctx context.Context, id string) ([]byte, error) {
	p, err := uc.product(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.qr.Image(p.ID)
}

// PublishQR regenera y sube el QR del producto.
func (uc *ProductUseCase) PublishQR(ctx context.Context, id string) (*dto.QRResponse, error) {
	p, err := uc.product(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.qr.Publish(ctx, p.ID, p.Code)
}

// PublishAllQR genera los QR de todo el inventario.
func (uc *ProductUseCase) PublishAllQR(ctx context.Context, opts qr.BatchOptions) (*dto.QRBatchResponse, error) {
	records, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return uc.qr.PublishAll(ctx, records, opts)
}

// Label etiqueta PDF imprimible con el QR del producto.
func (uc *ProductUseCase) Label(ctx context.Context, id string) ([]byte, error) {
	p, err := uc.product(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.docs.GenerateLabel(ctx, p, uc.qr.Link(p.ID))
}

// ExportXLSX libro con el inventario tal como está en la hoja.
func (uc *ProductUseCase) ExportXLSX(ctx context.Context) ([]byte, error) {
	records, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	var header []string
	if len(records) > 0 {
		header = records[0].Columns()
	}
	return uc.exporter.Export(header, records)
}

// ReportPDF reporte de existencias; resalta los productos bajo su mínimo.
func (uc *ProductUseCase) ReportPDF(ctx context.Context) ([]byte, error) {
	records, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	products := make([]entity.Product, 0, len(records))
	for _, r := range records {
		id, _ := sheet.Identifier(r)
		products = append(products, entity.ProductFromRecord(id, r))
	}
	return uc.docs.GenerateInventoryReport(ctx, products, time.Now())
}

func (uc *ProductUseCase) product(ctx context.Context, id string) (entity.Product, error) {
	record, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return entity.Product{}, err
	}
	resolved, _ := sheet.Identifier(record)
	return entity.ProductFromRecord(resolved, record), nil
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
