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
)

// DepartmentUseCase casos de uso CRUD para departamentos.
type DepartmentUseCase struct {
	uow *unitofwork.Executor
	now func() time.Time
}

// NewDepartmentUseCase construye el caso de uso.
func NewDepartmentUseCase(uow *unitofwork.Executor) *DepartmentUseCase {
	return &DepartmentUseCase{uow: uow, now: time.Now}
}

// Create crea un departamento; el nombre es único.
func (uc *DepartmentUseCase) Create(ctx context.Context, in dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre obligatorio", domain.ErrInvalidInput)
	}
	now := uc.now()
	d := &entity.Department{ID: uuid.New().String(), Name: name, CreatedAt: now, UpdatedAt: now}
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		return repos.Departments.Create(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	return dto.ToDepartmentResponse(d), nil
}

// GetByID obtiene un departamento por ID.
func (uc *DepartmentUseCase) GetByID(ctx context.Context, id string) (*dto.DepartmentResponse, error) {
	var out *entity.Department
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		d, err := repos.Departments.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("%w: departamento %s", domain.ErrNotFound, id)
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto.ToDepartmentResponse(out), nil
}

// List lista todos los departamentos por nombre.
func (uc *DepartmentUseCase) List(ctx context.Context) ([]dto.DepartmentResponse, error) {
	var list []*entity.Department
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		var err error
		list, err = repos.Departments.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.DepartmentResponse, 0, len(list))
	for _, d := range list {
		items = append(items, *dto.ToDepartmentResponse(d))
	}
	return items, nil
}

// Rename cambia el nombre de un departamento.
func (uc *DepartmentUseCase) Rename(ctx context.Context, id string, in dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre obligatorio", domain.ErrInvalidInput)
	}
	var out *entity.Department
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		d, err := repos.Departments.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("%w: departamento %s", domain.ErrNotFound, id)
		}
		d.Name = name
		d.UpdatedAt = uc.now()
		if err := repos.Departments.Update(ctx, d); err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto.ToDepartmentResponse(out), nil
}

// Delete elimina un departamento sin presupuestos ni usuarios asociados.
func (uc *DepartmentUseCase) Delete(ctx context.Context, id string) error {
	return uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		budgets, users, err := repos.Departments.CountReferences(ctx, id)
		if err != nil {
			return err
		}
		if budgets > 0 || users > 0 {
			return fmt.Errorf("%w: el departamento tiene %d presupuestos y %d usuarios", domain.ErrConstraintViolation, budgets, users)
		}
		return repos.Departments.Delete(ctx, id)
	})
}

// BudgetUseCase alta y consulta de presupuestos anuales.
// El saldo solo se modifica a través del guardián de presupuesto.
type BudgetUseCase struct {
	uow *unitofwork.Executor
	now func() time.Time
}

// NewBudgetUseCase construye el caso de uso.
func NewBudgetUseCase(uow *unitofwork.Executor) *BudgetUseCase {
	return &BudgetUseCase{uow: uow, now: time.Now}
}

// Create registra el presupuesto de un año fiscal con saldo igual al total.
func (uc *BudgetUseCase) Create(ctx context.Context, in dto.CreateBudgetRequest) (*dto.BudgetResponse, error) {
	if err := domain.ValidateAmount("total_amount", in.TotalAmount); err != nil {
		return nil, err
	}
	if in.FiscalYear <= 0 {
		return nil, fmt.Errorf("%w: fiscal_year inválido", domain.ErrInvalidInput)
	}
	now := uc.now()
	b := &entity.Budget{
		ID:              uuid.New().String(),
		DepartmentID:    in.DepartmentID,
		FiscalYear:      in.FiscalYear,
		TotalAmount:     in.TotalAmount,
		RemainingAmount: in.TotalAmount,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		return repos.Budgets.Create(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return dto.ToBudgetResponse(b), nil
}

// GetByID obtiene un presupuesto.
func (uc *BudgetUseCase) GetByID(ctx context.Context, id string) (*dto.BudgetResponse, error) {
	var out *entity.Budget
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		b, err := repos.Budgets.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return fmt.Errorf("%w: presupuesto %s", domain.ErrNotFound, id)
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto.ToBudgetResponse(out), nil
}

// ListByDepartment presupuestos de un departamento, año fiscal descendente.
func (uc *BudgetUseCase) ListByDepartment(ctx context.Context, departmentID string) ([]dto.BudgetResponse, error) {
	var list []*entity.Budget
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		d, err := repos.Departments.GetByID(ctx, departmentID)
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("%w: departamento %s", domain.ErrNotFound, departmentID)
		}
		list, err = repos.Budgets.ListByDepartment(ctx, departmentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.BudgetResponse, 0, len(list))
	for _, b := range list {
		items = append(items, *dto.ToBudgetResponse(b))
	}
	return items, nil
}
