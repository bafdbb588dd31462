// Package procurement contiene el motor de ciclo de vida de solicitudes de compra y
// el guardián de presupuesto que custodia los saldos.
package procurement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/procurement-api/internal/application/unitofwork"
	"github.com/jhoicas/procurement-api/internal/domain"
	"github.com/jhoicas/procurement-api/internal/domain/entity"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
	"github.com/jhoicas/procurement-api/pkg/logger"
)

// Actor identidad provista por el proveedor de identidad; el motor solo autoriza.
type Actor struct {
	UserID string
}

// Draft datos de una nueva solicitud.
type Draft struct {
	RequesterID   string
	BudgetID      string
	DepartmentID  string
	Amount        decimal.Decimal
	Description   string
	Justification string
	FundingSource string
	RequestDate   time.Time // cero = ahora
}

// Engine aplica las transiciones de estado con compare-and-swap y efectos de presupuesto atómicos.
type Engine struct {
	uow   *unitofwork.Executor
	guard *BudgetGuard
	log   *logger.Logger
	now   func() time.Time
}

// NewEngine construye el motor.
func NewEngine(uow *unitofwork.Executor, guard *BudgetGuard, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{uow: uow, guard: guard, log: log, now: time.Now}
}

// Create registra una solicitud en estado Pending; no toca el presupuesto.
func (e *Engine) Create(ctx context.Context, d Draft) (*entity.PurchaseRequest, error) {
	if d.RequesterID == "" || d.BudgetID == "" || d.DepartmentID == "" {
		return nil, fmt.Errorf("%w: solicitante, presupuesto y departamento son obligatorios", domain.ErrInvalidInput)
	}
	if err := domain.ValidateAmount("amount", d.Amount); err != nil {
		return nil, err
	}

	var out *entity.PurchaseRequest
	err := e.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		requester, err := repos.Users.GetByID(ctx, d.RequesterID)
		if err != nil {
			return fmt.Errorf("create: obtener solicitante: %w", err)
		}
		if requester == nil {
			return fmt.Errorf("%w: solicitante %s inexistente", domain.ErrConstraintViolation, d.RequesterID)
		}
		if !requester.IsActive {
			return fmt.Errorf("%w: el solicitante está inactivo", domain.ErrUnauthorized)
		}
		dept, err := repos.Departments.GetByID(ctx, d.DepartmentID)
		if err != nil {
			return fmt.Errorf("create: obtener departamento: %w", err)
		}
		if dept == nil {
			return fmt.Errorf("%w: departamento %s inexistente", domain.ErrConstraintViolation, d.DepartmentID)
		}
		budget, err := repos.Budgets.GetByID(ctx, d.BudgetID)
		if err != nil {
			return fmt.Errorf("create: obtener presupuesto: %w", err)
		}
		if budget == nil {
			return fmt.Errorf("%w: presupuesto %s inexistente", domain.ErrConstraintViolation, d.BudgetID)
		}
		if budget.DepartmentID != d.DepartmentID {
			return fmt.Errorf("%w: el presupuesto no pertenece al departamento", domain.ErrConstraintViolation)
		}

		now := e.now()
		requestDate := d.RequestDate
		if requestDate.IsZero() {
			requestDate = now
		}
		pr := &entity.PurchaseRequest{
			ID:            uuid.New().String(),
			RequesterID:   d.RequesterID,
			BudgetID:      d.BudgetID,
			DepartmentID:  d.DepartmentID,
			Amount:        d.Amount,
			Status:        entity.RequestPending,
			Description:   strings.TrimSpace(d.Description),
			Justification: strings.TrimSpace(d.Justification),
			FundingSource: strings.TrimSpace(d.FundingSource),
			RequestDate:   requestDate,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := repos.Requests.Create(ctx, pr); err != nil {
			return fmt.Errorf("create: insertar solicitud: %w", err)
		}
		if err := repos.RequestEvents.Append(ctx, newEvent(pr, d.RequesterID, entity.ActionCreated, "", now)); err != nil {
			return fmt.Errorf("create: historial: %w", err)
		}
		out = pr
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().
		Str("request_id", out.ID).
		Str("budget_id", out.BudgetID).
		Str("actor_id", out.RequesterID).
		Str("amount", out.Amount.String()).
		Msg("solicitud creada")
	return out, nil
}

// Approve pasa Pending -> Approved reservando el monto en el presupuesto.
// Si la reserva falla (InsufficientFunds) nada cambia.
func (e *Engine) Approve(ctx context.Context, requestID string, approver Actor) (*entity.PurchaseRequest, error) {
	return e.transition(ctx, requestID, approver, entity.RequestApproved, entity.ActionApproved,
		func(ctx context.Context, repos repository.Repos, pr *entity.PurchaseRequest) error {
			if err := requireApprover(ctx, repos, approver, &pr.Amount); err != nil {
				return err
			}
			if _, err := e.guard.Reserve(ctx, repos, pr.BudgetID, pr.Amount, pr.ID); err != nil {
				return err
			}
			pr.ApprovedBy = approver.UserID
			return nil
		})
}

// Reject pasa Pending -> Rejected; sin efecto en el presupuesto.
func (e *Engine) Reject(ctx context.Context, requestID string, approver Actor) (*entity.PurchaseRequest, error) {
	return e.transition(ctx, requestID, approver, entity.RequestRejected, entity.ActionRejected,
		func(ctx context.Context, repos repository.Repos, _ *entity.PurchaseRequest) error {
			return requireApprover(ctx, repos, approver, nil)
		})
}

// Start pasa Approved -> InProgress.
func (e *Engine) Start(ctx context.Context, requestID string, actor Actor) (*entity.PurchaseRequest, error) {
	return e.transition(ctx, requestID, actor, entity.RequestInProgress, entity.ActionStarted,
		func(ctx context.Context, repos repository.Repos, pr *entity.PurchaseRequest) error {
			return requireOwnerOrApprover(ctx, repos, actor, pr)
		})
}

// Cancel pasa Approved|InProgress -> Cancelled liberando la reserva.
func (e *Engine) Cancel(ctx context.Context, requestID string, actor Actor) (*entity.PurchaseRequest, error) {
	return e.transition(ctx, requestID, actor, entity.RequestCancelled, entity.ActionCancelled,
		func(ctx context.Context, repos repository.Repos, pr *entity.PurchaseRequest) error {
			if err := requireOwnerOrApprover(ctx, repos, actor, pr); err != nil {
				return err
			}
			res, err := heldReservation(ctx, repos, pr)
			if err != nil {
				return err
			}
			return e.guard.Release(ctx, repos, res)
		})
}

// Complete pasa InProgress -> Completed consolidando la reserva.
func (e *Engine) Complete(ctx context.Context, requestID string, actor Actor) (*entity.PurchaseRequest, error) {
	return e.transition(ctx, requestID, actor, entity.RequestCompleted, entity.ActionCompleted,
		func(ctx context.Context, repos repository.Repos, pr *entity.PurchaseRequest) error {
			if err := requireOwnerOrApprover(ctx, repos, actor, pr); err != nil {
				return err
			}
			res, err := heldReservation(ctx, repos, pr)
			if err != nil {
				return err
			}
			return e.guard.Commit(ctx, repos, res)
		})
}

// History devuelve las transiciones registradas de una solicitud, en orden.
func (e *Engine) History(ctx context.Context, requestID string) ([]*entity.RequestEvent, error) {
	var out []*entity.RequestEvent
	err := e.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		pr, err := repos.Requests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if pr == nil {
			return fmt.Errorf("%w: solicitud %s", domain.ErrNotFound, requestID)
		}
		out, err = repos.RequestEvents.ListByRequest(ctx, requestID)
		return err
	})
	return out, err
}

type applyFunc func(ctx context.Context, repos repository.Repos, pr *entity.PurchaseRequest) error

// transition valida la arista, ejecuta apply y persiste con CAS sobre el estado leído.
func (e *Engine) transition(
	ctx context.Context,
	requestID string,
	actor Actor,
	to entity.RequestStatus,
	action entity.RequestAction,
	apply applyFunc,
) (*entity.PurchaseRequest, error) {
	var out *entity.PurchaseRequest
	err := e.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		pr, err := repos.Requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return fmt.Errorf("%s: obtener solicitud: %w", action, err)
		}
		if pr == nil {
			return fmt.Errorf("%w: solicitud %s", domain.ErrNotFound, requestID)
		}
		from := pr.Status
		if !from.CanTransitionTo(to) {
			return &domain.TransitionError{From: string(from), To: string(to)}
		}
		if err := apply(ctx, repos, pr); err != nil {
			return err
		}

		now := e.now()
		approvedBy := ""
		if to == entity.RequestApproved {
			approvedBy = pr.ApprovedBy
		}
		if err := repos.Requests.UpdateStatus(ctx, pr.ID, from, to, approvedBy, now); err != nil {
			return err
		}
		if err := repos.RequestEvents.Append(ctx, newEvent(pr, actor.UserID, action, to, now)); err != nil {
			return fmt.Errorf("%s: historial: %w", action, err)
		}
		pr.Status = to
		pr.UpdatedAt = now
		out = pr
		return nil
	})
	if err != nil {
		e.log.Debug().Err(err).
			Str("request_id", requestID).
			Str("actor_id", actor.UserID).
			Str("action", string(action)).
			Msg("transición rechazada")
		return nil, err
	}
	e.log.Info().
		Str("request_id", out.ID).
		Str("budget_id", out.BudgetID).
		Str("actor_id", actor.UserID).
		Str("status", string(out.Status)).
		Msg("solicitud actualizada")
	return out, nil
}

func newEvent(pr *entity.PurchaseRequest, actorID string, action entity.RequestAction, to entity.RequestStatus, at time.Time) *entity.RequestEvent {
	from := pr.Status
	if action == entity.ActionCreated {
		from, to = "", entity.RequestPending
	}
	return &entity.RequestEvent{
		ID:         uuid.New().String(),
		RequestID:  pr.ID,
		ActorID:    actorID,
		Action:     action,
		FromStatus: from,
		ToStatus:   to,
		Amount:     pr.Amount,
		OccurredAt: at,
	}
}

// requireApprover exige un usuario activo con can_approve; si amount no es nil también
// que algún rol cubra el monto.
func requireApprover(ctx context.Context, repos repository.Repos, actor Actor, amount *decimal.Decimal) error {
	roles, err := activeRoles(ctx, repos, actor)
	if err != nil {
		return err
	}
	if amount != nil {
		if !entity.CanApproveAmount(roles, *amount) {
			return fmt.Errorf("%w: ningún rol permite aprobar %s", domain.ErrUnauthorized, amount.StringFixed(2))
		}
		return nil
	}
	if !entity.HasApprover(roles) {
		return fmt.Errorf("%w: el usuario no puede aprobar", domain.ErrUnauthorized)
	}
	return nil
}

// requireOwnerOrApprover permite al solicitante o a un aprobador.
func requireOwnerOrApprover(ctx context.Context, repos repository.Repos, actor Actor, pr *entity.PurchaseRequest) error {
	if actor.UserID != "" && actor.UserID == pr.RequesterID {
		return nil
	}
	return requireApprover(ctx, repos, actor, nil)
}

func activeRoles(ctx context.Context, repos repository.Repos, actor Actor) ([]*entity.Role, error) {
	if actor.UserID == "" {
		return nil, fmt.Errorf("%w: actor requerido", domain.ErrUnauthorized)
	}
	user, err := repos.Users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("autorizar: obtener usuario: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, fmt.Errorf("%w: usuario inexistente o inactivo", domain.ErrUnauthorized)
	}
	roles, err := repos.Roles.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("autorizar: obtener roles: %w", err)
	}
	return roles, nil
}

func heldReservation(ctx context.Context, repos repository.Repos, pr *entity.PurchaseRequest) (*entity.Reservation, error) {
	res, err := repos.Reservations.GetByRequest(ctx, pr.ID)
	if err != nil {
		return nil, fmt.Errorf("obtener reserva: %w", err)
	}
	if res == nil {
		return nil, fmt.Errorf("%w: la solicitud %s no tiene reserva", domain.ErrConstraintViolation, pr.ID)
	}
	return res, nil
}
