// Package pdf genera documentos imprimibles del inventario con Maroto v2.
//
// Etiqueta de producto (media carta):
//
//	┌──────────────────────────────────────────┐
//	│  Código + Descripción   │  QR (enlace)   │
//	│  Referencia / Ubicación │                │
//	│  ─────────────────────────────────────── │
//	│  Enlace al detalle                       │
//	└──────────────────────────────────────────┘
//
// Reporte de inventario (A4 horizontal): tabla ID | Código | Descripción |
// Unidad | Cantidad | Stock mín. | Ubicación, con las filas bajo mínimo resaltadas.
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-sheets/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator genera etiquetas y reportes.
type MarotoPDFGenerator struct {
	appName string
}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator(appName string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{appName: appName}
}

// GenerateLabel etiqueta con los datos del producto y el QR del enlace al detalle.
func (g *MarotoPDFGenerator) GenerateLabel(_ context.Context, p entity.Product, deepLink string) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(8).WithBottomMargin(8).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 10}).
		WithTitle("Etiqueta "+nonEmpty(p.Code, p.ID), true).
		WithAuthor(g.appName, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(labelRow(p, deepLink))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.4}))
	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New(deepLink, props.Text{Size: 7, Color: colorGray, Top: 2}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar etiqueta: %w", err)
	}
	return doc.GetBytes(), nil
}

// GenerateInventoryReport listado completo del inventario.
func (g *MarotoPDFGenerator) GenerateInventoryReport(_ context.Context, products []entity.Product, at time.Time) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de inventario", true).
		WithAuthor(g.appName, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(reportHeaderRow(g.appName, len(products), at))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	for _, r := range tableDetailRows(products) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar reporte: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// labelRow: datos del producto (izq) y QR (der).
func labelRow(p entity.Product, deepLink string) core.Row {
	return row.New(60).Add(
		col.New(8).Add(
			text.New(nonEmpty(p.Code, p.ID), props.Text{
				Style: fontstyle.Bold, Size: 20, Color: colorPrimary, Top: 2,
			}),
			text.New(nonEmpty(p.Description, "-"), props.Text{
				Size: 12, Top: 14,
			}),
			text.New(fmt.Sprintf("Ref: %s   |   Ubicación: %s   |   Unidad: %s",
				nonEmpty(p.Reference, "-"),
				nonEmpty(p.Location, "-"),
				nonEmpty(p.Unit, "-"),
			), props.Text{Size: 9, Top: 30, Color: colorGray}),
			text.New("ID: "+p.ID, props.Text{Size: 9, Top: 38, Color: colorGray}),
		),
		col.New(4).Add(code.NewQr(deepLink, props.Rect{
			Percent: 95,
			Center:  true,
		})),
	)
}

func reportHeaderRow(appName string, total int, at time.Time) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New("REPORTE DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(appName, props.Text{Size: 9, Top: 8, Color: colorGray}),
		),
		col.New(4).Add(
			text.New(fmt.Sprintf("%d productos", total), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 1,
			}),
			text.New("Generado: "+at.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("ID", 1, align.Left),
		h("Código", 2, align.Left),
		h("Descripción", 4, align.Left),
		h("Unidad", 1, align.Center),
		h("Cantidad", 1, align.Right),
		h("Stock mín.", 1, align.Right),
		h("Ubicación", 2, align.Left),
	)
}

// tableDetailRows: una fila por producto; bajo mínimo en rojo.
func tableDetailRows(products []entity.Product) []core.Row {
	result := make([]core.Row, 0, len(products))
	for _, p := range products {
		style := props.Text{Size: 8, Top: 1, Left: 1}
		if belowMinimum(p) {
			style.Color = colorAlert
			style.Style = fontstyle.Bold
		}
		cell := func(s string, size int, a align.Type) core.Col {
			st := style
			st.Align = a
			return col.New(size).Add(text.New(s, st))
		}
		result = append(result, row.New(6).Add(
			cell(p.ID, 1, align.Left),
			cell(p.Code, 2, align.Left),
			cell(p.Description, 4, align.Left),
			cell(p.Unit, 1, align.Center),
			cell(p.Quantity, 1, align.Right),
			cell(p.MinStock, 1, align.Right),
			cell(p.Location, 2, align.Left),
		))
	}
	return result
}

// ── helpers ───────────────────────────────────────────────────────────────────

func belowMinimum(p entity.Product) bool {
	qty, err := decimal.NewFromString(p.Quantity)
	if err != nil {
		return false
	}
	min, err := decimal.NewFromString(p.MinStock)
	if err != nil {
		return false
	}
	return qty.LessThan(min)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
