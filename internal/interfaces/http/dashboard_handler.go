package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-sheets/internal/application/dto"
	"github.com/jhoicas/inventario-sheets/internal/application/usecase"
	"github.com/jhoicas/inventario-sheets/internal/domain"
	"github.com/jhoicas/inventario-sheets/internal/domain/entity"
	"github.com/jhoicas/inventario-sheets/pkg/logger"
)

// DashboardHandler listado del inventario y unidades de medida.
type DashboardHandler struct {
	uc  *usecase.ProductUseCase
	log *logger.Logger
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *usecase.ProductUseCase, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{uc: uc, log: logger.OrNop(log).Component("http.dashboard")}
}

// List godoc
// @Summary      Inventario
// @Description  Si la hoja no se puede leer responde 503 con items vacío y el diagnóstico en message.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ProductListResponse
// @Failure      503  {object}  dto.ProductListResponse
// @Router       /api/dashboard [get]
func (h *DashboardHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context())
	if err != nil {
		if errors.Is(err, domain.ErrDataUnavailable) && !domain.IsMisconfiguration(err) {
			h.log.Error().Str("operation", "dashboard").Err(err).Msg("inventario no disponible")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ProductListResponse{
				Items:   []entity.Record{},
				Message: domain.ErrDataUnavailable.Error(),
			})
		}
		return writeError(c, h.log, "dashboard", "", err)
	}
	return c.JSON(out)
}

// Units godoc
// @Summary      Unidades de medida
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.UnitsResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/units [get]
func (h *DashboardHandler) Units(c *fiber.Ctx) error {
	units, err := h.uc.Units(c.Context())
	if err != nil {
		return writeError(c, h.log, "units", "", err)
	}
	return c.JSON(dto.UnitsResponse{Units: units})
}
