package inventory

import (
	"fmt"
	"strings"

	"github.com/jhoicas/inventario-sheets/internal/domain"
	"github.com/jhoicas/inventario-sheets/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Adjustment movimiento de stock (servicio de dominio): dirección Ingreso/Salida
// y unidades no negativas. Cero unidades no mueve stock.
type Adjustment struct {
	Method string
	Units  decimal.Decimal
}

// NewAdjustment valida los valores del formulario. Unidades vacías equivalen a cero;
// unidades no numéricas o negativas son ErrInvalidUnits. La dirección sólo se exige
// cuando hay unidades que mover.
func NewAdjustment(method, units string) (Adjustment, error) {
	u, err := ParseUnits(units)
	if err != nil {
		return Adjustment{}, err
	}
	if u.IsZero() {
		return Adjustment{Units: decimal.Zero}, nil
	}
	m, err := ParseMethod(method)
	if err != nil {
		return Adjustment{}, err
	}
	return Adjustment{Method: m, Units: u}, nil
}

// ParseMethod normaliza la dirección sin distinguir mayúsculas.
func ParseMethod(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ingreso":
		return entity.MethodIngreso, nil
	case "salida":
		return entity.MethodSalida, nil
	}
	return "", fmt.Errorf("%w: método %q debe ser Ingreso o Salida", domain.ErrInvalidInput, s)
}

// ParseUnits interpreta las unidades a mover.
func ParseUnits(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	u, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q no es numérico", domain.ErrInvalidUnits, s)
	}
	if u.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s es negativo", domain.ErrInvalidUnits, s)
	}
	return u, nil
}

// ParseQuantity interpreta la cantidad actual de la hoja. Vacío es cero y se
// acepta coma decimal ("5,5").
func ParseQuantity(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	q, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: cantidad actual %q no es numérica", domain.ErrInvalidInput, s)
	}
	return q, nil
}

// IsZero indica un movimiento sin unidades (sólo edición, sin histórico).
func (a Adjustment) IsZero() bool {
	return a.Units.IsZero()
}

// Delta devuelve las unidades con signo.
func (a Adjustment) Delta() decimal.Decimal {
	if a.Method == entity.MethodSalida {
		return a.Units.Neg()
	}
	return a.Units
}

// Apply calcula la cantidad resultante. Un resultado negativo es ErrInsufficientStock
// y no debe escribirse nada.
func (a Adjustment) Apply(current decimal.Decimal) (decimal.Decimal, error) {
	next := current.Add(a.Delta())
	if next.IsNegative() {
		return current, fmt.Errorf("%w: disponible %s, salida %s", domain.ErrInsufficientStock, current.String(), a.Units.String())
	}
	return next, nil
}

// FormatQuantity representación que se escribe en la hoja ("5", "5.5").
func FormatQuantity(q decimal.Decimal) string {
	return q.String()
}
