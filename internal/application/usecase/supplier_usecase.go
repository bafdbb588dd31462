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

// SupplierUseCase registro de proveedores.
type SupplierUseCase struct {
	uow *unitofwork.Executor
	now func() time.Time
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(uow *unitofwork.Executor) *SupplierUseCase {
	return &SupplierUseCase{uow: uow, now: time.Now}
}

// Create registra un proveedor; sin estado explícito queda Pending.
func (uc *SupplierUseCase) Create(ctx context.Context, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre obligatorio", domain.ErrInvalidInput)
	}
	status := entity.SupplierPending
	if in.Status != "" {
		status = entity.SupplierStatus(in.Status)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidInput, in.Status)
	}
	now := uc.now()
	s := &entity.Supplier{
		ID:             uuid.New().String(),
		Name:           name,
		ContactEmail:   strings.ToLower(strings.TrimSpace(in.ContactEmail)),
		ContactPhone:   strings.TrimSpace(in.ContactPhone),
		OnboardingDate: now,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		return repos.Suppliers.Create(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	return dto.ToSupplierResponse(s), nil
}

// List lista proveedores; status vacío devuelve todos.
func (uc *SupplierUseCase) List(ctx context.Context, status string) ([]dto.SupplierResponse, error) {
	if status != "" && !entity.SupplierStatus(status).IsValid() {
		return nil, fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidInput, status)
	}
	var list []*entity.Supplier
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		var err error
		if status == "" {
			list, err = repos.Suppliers.List(ctx)
		} else {
			list, err = repos.Suppliers.ListByStatus(ctx, entity.SupplierStatus(status))
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *dto.ToSupplierResponse(s))
	}
	return items, nil
}

// UpdateStatus cambia el estado comercial del proveedor.
func (uc *SupplierUseCase) UpdateStatus(ctx context.Context, id string, in dto.UpdateSupplierStatusRequest) (*dto.SupplierResponse, error) {
	status := entity.SupplierStatus(in.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidInput, in.Status)
	}
	var out *entity.Supplier
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		if err := repos.Suppliers.UpdateStatus(ctx, id, status, uc.now()); err != nil {
			return err
		}
		s, err := repos.Suppliers.GetByID(ctx, id)
		if err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto.ToSupplierResponse(out), nil
}
