package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-sheets/internal/application/inventory"
	"github.com/jhoicas/inventario-sheets/internal/application/usecase"
	"github.com/jhoicas/inventario-sheets/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InventoryHandler histórico de movimientos y exportaciones.
type InventoryHandler struct {
	stock    *inventory.StockUseCase
	products *usecase.ProductUseCase
	log      *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(stock *inventory.StockUseCase, products *usecase.ProductUseCase, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{stock: stock, products: products, log: logger.OrNop(log).Component("http.inventory")}
}

// History godoc
// @Summary      Últimos movimientos de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "máximo de entradas (default 50, máx 500)"
// @Success      200    {object}  dto.HistoryListResponse
// @Failure      503    {object}  dto.ErrorResponse
// @Router       /api/history [get]
func (h *InventoryHandler) History(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	out, err := h.stock.Recent(c.Context(), limit)
	if err != nil {
		return writeError(c, h.log, "history", "", err)
	}
	return c.JSON(out)
}

// ExportXLSX godoc
// @Summary      Exportar inventario a Excel
// @Tags         inventory
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/inventory/export.xlsx [get]
func (h *InventoryHandler) ExportXLSX(c *fiber.Ctx) error {
	book, err := h.products.ExportXLSX(c.Context())
	if err != nil {
		return writeError(c, h.log, "export-xlsx", "", err)
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="inventario.xlsx"`)
	return c.Send(book)
}

// ReportPDF godoc
// @Summary      Reporte PDF de existencias
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Success      200
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/inventory/report.pdf [get]
func (h *InventoryHandler) ReportPDF(c *fiber.Ctx) error {
	doc, err := h.products.ReportPDF(c.Context())
	if err != nil {
		return writeError(c, h.log, "report-pdf", "", err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="inventario.pdf"`)
	return c.Send(doc)
}
