package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-sheets/internal/application/dto"
	"github.com/jhoicas/inventario-sheets/internal/application/qr"
	"github.com/jhoicas/inventario-sheets/internal/domain"
	"github.com/jhoicas/inventario-sheets/pkg/logger"
)

// errorStatus traduce un error de dominio a status HTTP y cuerpo. Los errores de
// transporte nunca llegan crudos al cliente: sólo su categoría.
func errorStatus(err error) (int, dto.ErrorResponse) {
	switch {
	case errors.Is(err, domain.ErrServiceNotEnabled):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{
			Code:    "SERVICE_NOT_ENABLED",
			Message: "la API de Google no está habilitada; un administrador debe habilitarla en el proyecto",
		}
	case errors.Is(err, domain.ErrServiceMisconfigured):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{
			Code:    "SERVICE_MISCONFIGURED",
			Message: "credenciales de Google ausentes, inválidas o expiradas; revise GOOGLE_TOKEN_JSON",
		}
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "usuario o contraseña incorrectos"}
	case errors.Is(err, domain.ErrNoIdentifierColumn), errors.Is(err, domain.ErrNoHeaders):
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "NO_ID_COLUMN", Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"}
	case domain.IsValidation(err):
		return fiber.StatusUnprocessableEntity, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.Is(err, domain.ErrDataUnavailable):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Code: "DATA_UNAVAILABLE", Message: domain.ErrDataUnavailable.Error()}
	case errors.Is(err, qr.ErrStoreDisabled):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Code: "QR_DISABLED", Message: err.Error()}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
}

// writeError responde el error traducido y lo registra con la operación y el identificador.
func writeError(c *fiber.Ctx, log *logger.Logger, op, id string, err error) error {
	status, body := errorStatus(err)
	ev := log.Warn()
	if status >= fiber.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Str("operation", op).Str("identifier", id).Str("code", body.Code).Err(err).Msg("petición fallida")
	return c.Status(status).JSON(body)
}
