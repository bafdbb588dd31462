package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReservationStatus estado de los fondos apartados.
type ReservationStatus string

const (
	ReservationHeld      ReservationStatus = "held"
	ReservationCommitted ReservationStatus = "committed"
	ReservationReleased  ReservationStatus = "released"
)

// Reservation fondos descontados provisionalmente de un presupuesto hasta completar o cancelar la solicitud.
type Reservation struct {
	ID        string
	BudgetID  string
	RequestID string
	Amount    decimal.Decimal
	Status    ReservationStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
