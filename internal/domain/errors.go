package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Cada error de infraestructura se traduce a uno de estos antes de llegar a los handlers.
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrInsufficientStock    = errors.New("stock insuficiente: la cantidad resultante sería negativa")
	ErrInvalidUnits         = errors.New("unidades inválidas")
	ErrDataUnavailable      = errors.New("inventario temporalmente no disponible")
	ErrNoIdentifierColumn   = errors.New("no se encontró columna de ID en la hoja")
	ErrNoHeaders            = errors.New("la hoja no tiene fila de encabezados")
	ErrServiceMisconfigured = errors.New("credenciales de Google ausentes, inválidas o expiradas")
	ErrServiceNotEnabled    = errors.New("la API de Google no está habilitada en el proyecto")
)

// IsValidation indica si el error corresponde a una falla de validación del usuario
// (unidades no numéricas o negativas, stock resultante negativo, datos de formulario).
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidUnits) ||
		errors.Is(err, ErrInsufficientStock)
}

// IsMisconfiguration indica si el operador debe corregir credenciales o habilitar la API.
func IsMisconfiguration(err error) bool {
	return errors.Is(err, ErrServiceMisconfigured) || errors.Is(err, ErrServiceNotEnabled)
}

// Outcome describe el resultado de una operación con escrituras secundarias
// (histórico, QR). La escritura primaria ya está confirmada en ambos casos.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomePartial Outcome = "partial"
)

// SecondaryFailure describe una escritura secundaria que falló después de
// confirmar la escritura primaria. No hay transacción compensatoria.
type SecondaryFailure struct {
	Step    string `json:"step"` // "history" | "qr"
	Message string `json:"message"`
}

// Pasos secundarios conocidos.
const (
	StepHistory = "history"
	StepQR      = "qr"
)

var secondaryMessages = map[string]string{
	StepHistory: "el producto se guardó pero el movimiento no quedó en el histórico",
	StepQR:      "el producto se guardó pero la imagen QR no se publicó",
}

// NewSecondaryFailure arma la falla con un mensaje fijo por paso: el error de
// transporte no sale hacia el cliente, sólo al log.
func NewSecondaryFailure(step string) SecondaryFailure {
	msg, ok := secondaryMessages[step]
	if !ok {
		msg = "una escritura secundaria falló"
	}
	return SecondaryFailure{Step: step, Message: msg}
}

// OutcomeOf calcula el Outcome a partir de las fallas secundarias registradas.
func OutcomeOf(failures []SecondaryFailure) Outcome {
	if len(failures) > 0 {
		return OutcomePartial
	}
	return OutcomeOK
}
