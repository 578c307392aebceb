package google

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/jhoicas/inventario-sheets/internal/domain"
)

const reasonServiceDisabled = "SERVICE_DISABLED"

// apiError cuerpo de error estándar de las APIs de Google.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Reason string `json:"reason"`
		} `json:"details"`
	} `json:"error"`
}

// Translate traduce el error de una llamada hecha con los clientes generados
// (sheets/v4, drive/v3). Sin *googleapi.Error es un fallo de red o del flujo OAuth.
func Translate(service, op string, err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return TranslateTransport(service, op, err)
	}
	msg := strings.TrimSpace(gerr.Message)
	if msg == "" {
		msg = truncate(strings.TrimSpace(gerr.Body))
	}
	disabled := mentionsDisabled(msg)
	for _, item := range gerr.Errors {
		if item.Reason == reasonServiceDisabled {
			disabled = true
		}
	}
	for _, d := range gerr.Details {
		if m, ok := d.(map[string]interface{}); ok && m["reason"] == reasonServiceDisabled {
			disabled = true
		}
	}
	if !disabled && gerr.Body != "" {
		disabled = bodyDisabled([]byte(gerr.Body))
	}
	return classify(service, op, gerr.Code, msg, disabled)
}

// TranslateStatus traduce una respuesta no exitosa leída a mano (exportación CSV).
func TranslateStatus(service, op string, status int, body []byte) error {
	var ae apiError
	_ = json.Unmarshal(body, &ae)
	msg := strings.TrimSpace(ae.Error.Message)
	if msg == "" {
		msg = truncate(strings.TrimSpace(string(body)))
	}
	return classify(service, op, status, msg, mentionsDisabled(msg) || bodyDisabled(body))
}

// La API deshabilitada se distingue del resto porque la acción del operador es otra.
func classify(service, op string, status int, msg string, disabled bool) error {
	switch {
	case disabled:
		return fmt.Errorf("%w: %s %s: %s", domain.ErrServiceNotEnabled, service, op, msg)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s %s: status %d: %s", domain.ErrServiceMisconfigured, service, op, status, msg)
	default:
		return fmt.Errorf("%w: %s %s: status %d: %s", domain.ErrDataUnavailable, service, op, status, msg)
	}
}

func mentionsDisabled(msg string) bool {
	return strings.Contains(msg, reasonServiceDisabled) || strings.Contains(msg, "has not been used") || strings.Contains(msg, "is disabled")
}

func bodyDisabled(body []byte) bool {
	var ae apiError
	if json.Unmarshal(body, &ae) != nil {
		return false
	}
	for _, d := range ae.Error.Details {
		if d.Reason == reasonServiceDisabled {
			return true
		}
	}
	return false
}

func truncate(s string) string {
	if len(s) > 200 {
		return s[:200]
	}
	return s
}

// TranslateTransport traduce errores de red o del flujo OAuth.
func TranslateTransport(service, op string, err error) error {
	if errors.Is(err, domain.ErrServiceMisconfigured) || errors.Is(err, domain.ErrServiceNotEnabled) {
		return fmt.Errorf("%s %s: %w", service, op, err)
	}
	if te := TranslateError(err); errors.Is(te, domain.ErrServiceMisconfigured) {
		return fmt.Errorf("%s %s: %w", service, op, te)
	}
	return fmt.Errorf("%w: %s %s: %v", domain.ErrDataUnavailable, service, op, err)
}
