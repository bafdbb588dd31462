package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/procurement-api/internal/domain/entity"
)

// BudgetRepository puerto de persistencia para Budget.
type BudgetRepository interface {
	Create(ctx context.Context, b *entity.Budget) error
	GetByID(ctx context.Context, id string) (*entity.Budget, error)
	// GetForUpdate obtiene el presupuesto bloqueándolo hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Budget, error)
	List(ctx context.Context) ([]*entity.Budget, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]*entity.Budget, error)
	UpdateRemaining(ctx context.Context, id string, remaining decimal.Decimal, updatedAt time.Time) error
}

// ReservationRepository puerto de persistencia para Reservation.
type ReservationRepository interface {
	Create(ctx context.Context, r *entity.Reservation) error
	GetByRequest(ctx context.Context, requestID string) (*entity.Reservation, error)
	UpdateStatus(ctx context.Context, id string, status entity.ReservationStatus, updatedAt time.Time) error
}
