package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxAmount mayor monto representable en las columnas NUMERIC(14,2).
var MaxAmount = decimal.RequireFromString("999999999999.99")

// ValidateAmount exige un monto positivo, con a lo sumo dos decimales y dentro de rango.
func ValidateAmount(field string, d decimal.Decimal) error {
	if !d.IsPositive() {
		return fmt.Errorf("%w: %s debe ser mayor a cero", ErrInvalidInput, field)
	}
	return ValidateScale(field, d)
}

// ValidateScale rechaza montos con más de dos decimales o mayores a MaxAmount.
// Los ceros a la derecha (10.000) se aceptan.
func ValidateScale(field string, d decimal.Decimal) error {
	if !d.Equal(d.Truncate(2)) {
		return fmt.Errorf("%w: %s admite como máximo dos decimales", ErrInvalidInput, field)
	}
	if d.Abs().GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: %s excede el máximo %s", ErrInvalidInput, field, MaxAmount.StringFixed(2))
	}
	return nil
}
