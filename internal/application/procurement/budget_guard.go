package procurement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/procurement-api/internal/domain"
	"github.com/jhoicas/procurement-api/internal/domain/entity"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
)

// BudgetGuard es el único escritor de remaining_amount.
// Debe invocarse con repositorios atados a la transacción del llamador: el bloqueo
// de la fila del presupuesto serializa las mutaciones por budget_id.
type BudgetGuard struct {
	now func() time.Time
}

// NewBudgetGuard construye el guardián.
func NewBudgetGuard() *BudgetGuard {
	return &BudgetGuard{now: time.Now}
}

// Reserve descuenta amount del saldo y registra una reserva held para requestID.
func (g *BudgetGuard) Reserve(ctx context.Context, repos repository.Repos, budgetID string, amount decimal.Decimal, requestID string) (*entity.Reservation, error) {
	if err := domain.ValidateAmount("amount", amount); err != nil {
		return nil, err
	}
	budget, err := repos.Budgets.GetForUpdate(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("reserve: obtener presupuesto: %w", err)
	}
	if budget == nil {
		return nil, fmt.Errorf("%w: presupuesto %s", domain.ErrNotFound, budgetID)
	}
	if !budget.CanCover(amount) {
		return nil, &domain.InsufficientFundsError{
			BudgetID:  budgetID,
			Available: budget.RemainingAmount,
			Requested: amount,
		}
	}

	now := g.now()
	if err := repos.Budgets.UpdateRemaining(ctx, budgetID, budget.RemainingAmount.Sub(amount), now); err != nil {
		return nil, fmt.Errorf("reserve: actualizar saldo: %w", err)
	}
	res := &entity.Reservation{
		ID:        uuid.New().String(),
		BudgetID:  budgetID,
		RequestID: requestID,
		Amount:    amount,
		Status:    entity.ReservationHeld,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repos.Reservations.Create(ctx, res); err != nil {
		return nil, fmt.Errorf("reserve: registrar reserva: %w", err)
	}
	return res, nil
}

// Release devuelve al presupuesto los fondos de una reserva held.
func (g *BudgetGuard) Release(ctx context.Context, repos repository.Repos, res *entity.Reservation) error {
	if res.Status != entity.ReservationHeld {
		return &domain.TransitionError{From: string(res.Status), To: string(entity.ReservationReleased)}
	}
	budget, err := repos.Budgets.GetForUpdate(ctx, res.BudgetID)
	if err != nil {
		return fmt.Errorf("release: obtener presupuesto: %w", err)
	}
	if budget == nil {
		return fmt.Errorf("%w: presupuesto %s", domain.ErrNotFound, res.BudgetID)
	}
	restored := budget.RemainingAmount.Add(res.Amount)
	if restored.GreaterThan(budget.TotalAmount) {
		return fmt.Errorf("%w: liberar %s excede el total del presupuesto %s",
			domain.ErrConstraintViolation, res.Amount.StringFixed(2), res.BudgetID)
	}

	now := g.now()
	if err := repos.Budgets.UpdateRemaining(ctx, res.BudgetID, restored, now); err != nil {
		return fmt.Errorf("release: actualizar saldo: %w", err)
	}
	if err := repos.Reservations.UpdateStatus(ctx, res.ID, entity.ReservationReleased, now); err != nil {
		return fmt.Errorf("release: actualizar reserva: %w", err)
	}
	res.Status = entity.ReservationReleased
	res.UpdatedAt = now
	return nil
}

// Commit consolida una reserva held; el saldo no cambia.
func (g *BudgetGuard) Commit(ctx context.Context, repos repository.Repos, res *entity.Reservation) error {
	if res.Status != entity.ReservationHeld {
		return &domain.TransitionError{From: string(res.Status), To: string(entity.ReservationCommitted)}
	}
	now := g.now()
	if err := repos.Reservations.UpdateStatus(ctx, res.ID, entity.ReservationCommitted, now); err != nil {
		return fmt.Errorf("commit: actualizar reserva: %w", err)
	}
	res.Status = entity.ReservationCommitted
	res.UpdatedAt = now
	return nil
}
