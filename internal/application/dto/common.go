package dto

import "github.com/jhoicas/inventario-sheets/internal/domain"

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteResult resultado de una operación con escrituras secundarias. La escritura
// primaria ya quedó confirmada; Warnings lista lo que falló después.
type WriteResult struct {
	Outcome  domain.Outcome            `json:"outcome"`
	Warnings []domain.SecondaryFailure `json:"warnings,omitempty"`
}

// NewWriteResult calcula el Outcome a partir de las fallas registradas.
func NewWriteResult(failures []domain.SecondaryFailure) WriteResult {
	return WriteResult{Outcome: domain.OutcomeOf(failures), Warnings: failures}
}
