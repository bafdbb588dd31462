package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget presupuesto anual de un departamento.
// Invariante: 0 <= RemainingAmount <= TotalAmount. Solo el guardián de presupuesto escribe RemainingAmount.
type Budget struct {
	ID              string
	DepartmentID    string
	FiscalYear      int
	TotalAmount     decimal.Decimal
	RemainingAmount decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CanCover indica si el saldo restante alcanza para amount.
func (b *Budget) CanCover(amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(b.RemainingAmount)
}

// Valid verifica el invariante de saldo.
func (b *Budget) Valid() bool {
	return !b.RemainingAmount.IsNegative() && b.RemainingAmount.LessThanOrEqual(b.TotalAmount)
}

// Spent devuelve lo comprometido o reservado del presupuesto.
func (b *Budget) Spent() decimal.Decimal {
	return b.TotalAmount.Sub(b.RemainingAmount)
}
