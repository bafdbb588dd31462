package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/procurement-api/internal/application/dto"
	"github.com/jhoicas/procurement-api/internal/application/unitofwork"
	"github.com/jhoicas/procurement-api/internal/domain"
	"github.com/jhoicas/procurement-api/internal/domain/entity"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
	"github.com/jhoicas/procurement-api/pkg/logger"
)

// UserUseCase aplica reglas de negocio para usuarios. Los usuarios nacen del canje
// de invitaciones; aquí solo se consultan y administran.
type UserUseCase struct {
	uow *unitofwork.Executor
	log *logger.Logger
	now func() time.Time
}

// NewUserUseCase construye el caso de uso.
func NewUserUseCase(uow *unitofwork.Executor, log *logger.Logger) *UserUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UserUseCase{uow: uow, log: log, now: time.Now}
}

// GetByID obtiene un usuario con sus roles.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	var out *dto.UserResponse
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		u, err := repos.Users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if u == nil {
			return fmt.Errorf("%w: usuario %s", domain.ErrNotFound, id)
		}
		roles, err := repos.Roles.ListByUser(ctx, id)
		if err != nil {
			return err
		}
		out = dto.ToUserResponse(u, roles)
		return nil
	})
	return out, err
}

// List lista usuarios con paginación; con departmentID filtra por departamento.
func (uc *UserUseCase) List(ctx context.Context, departmentID string, page dto.PageRequest) (*dto.UserListResponse, error) {
	page.DefaultPage()
	var list []*entity.User
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		var err error
		if departmentID != "" {
			list, err = repos.Users.ListByDepartment(ctx, departmentID)
			return err
		}
		list, err = repos.Users.List(ctx, page.Limit, page.Offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *dto.ToUserResponse(u, nil))
	}
	return &dto.UserListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// AssignDepartment asigna el departamento del usuario; vacío lo desasigna.
func (uc *UserUseCase) AssignDepartment(ctx context.Context, userID string, in dto.AssignDepartmentRequest) (*dto.UserResponse, error) {
	var out *dto.UserResponse
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		u, err := repos.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return fmt.Errorf("%w: usuario %s", domain.ErrNotFound, userID)
		}
		if in.DepartmentID != "" {
			d, err := repos.Departments.GetByID(ctx, in.DepartmentID)
			if err != nil {
				return err
			}
			if d == nil {
				return fmt.Errorf("%w: departamento %s inexistente", domain.ErrConstraintViolation, in.DepartmentID)
			}
		}
		u.DepartmentID = in.DepartmentID
		u.UpdatedAt = uc.now()
		if err := repos.Users.Update(ctx, u); err != nil {
			return err
		}
		roles, err := repos.Roles.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		out = dto.ToUserResponse(u, roles)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", userID).Str("department_id", in.DepartmentID).Msg("departamento asignado")
	return out, nil
}

// Deactivate marca al usuario como inactivo; deja de poder crear o aprobar solicitudes.
func (uc *UserUseCase) Deactivate(ctx context.Context, userID, actorID string) error {
	if userID == actorID {
		return fmt.Errorf("%w: no puede desactivarse a sí mismo", domain.ErrInvalidInput)
	}
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		u, err := repos.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return fmt.Errorf("%w: usuario %s", domain.ErrNotFound, userID)
		}
		if !u.IsActive {
			return nil
		}
		u.IsActive = false
		u.UpdatedAt = uc.now()
		return repos.Users.Update(ctx, u)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("user_id", userID).Str("actor_id", actorID).Msg("usuario desactivado")
	return nil
}

// RoleUseCase catálogo de roles.
type RoleUseCase struct {
	uow *unitofwork.Executor
	now func() time.Time
}

// NewRoleUseCase construye el caso de uso.
func NewRoleUseCase(uow *unitofwork.Executor) *RoleUseCase {
	return &RoleUseCase{uow: uow, now: time.Now}
}

// List lista los roles por nombre.
func (uc *RoleUseCase) List(ctx context.Context) ([]dto.RoleResponse, error) {
	var list []*entity.Role
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		var err error
		list, err = repos.Roles.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.RoleResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *dto.ToRoleResponse(r))
	}
	return items, nil
}

// Create registra un rol. Un rol aprobador necesita un límite positivo.
func (uc *RoleUseCase) Create(ctx context.Context, in dto.CreateRoleRequest) (*dto.RoleResponse, error) {
	name := strings.ToLower(strings.TrimSpace(in.Name))
	if name == "" {
		return nil, fmt.Errorf("%w: nombre obligatorio", domain.ErrInvalidInput)
	}
	if in.MaxBudgetLimit.IsNegative() {
		return nil, fmt.Errorf("%w: max_budget_limit no puede ser negativo", domain.ErrInvalidInput)
	}
	if err := domain.ValidateScale("max_budget_limit", in.MaxBudgetLimit); err != nil {
		return nil, err
	}
	if in.CanApprove && !in.MaxBudgetLimit.IsPositive() {
		return nil, fmt.Errorf("%w: un rol aprobador necesita max_budget_limit > 0", domain.ErrInvalidInput)
	}
	role := &entity.Role{
		ID:             uuid.New().String(),
		Name:           name,
		Description:    strings.TrimSpace(in.Description),
		MaxBudgetLimit: in.MaxBudgetLimit,
		CanApprove:     in.CanApprove,
		CreatedAt:      uc.now(),
	}
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		return repos.Roles.Create(ctx, role)
	})
	if err != nil {
		return nil, err
	}
	return dto.ToRoleResponse(role), nil
}
