package repository

import (
	"context"

	"github.com/jhoicas/procurement-api/internal/domain/entity"
)

// DepartmentRepository puerto de persistencia para Department.
type DepartmentRepository interface {
	Create(ctx context.Context, d *entity.Department) error
	GetByID(ctx context.Context, id string) (*entity.Department, error)
	List(ctx context.Context) ([]*entity.Department, error)
	Update(ctx context.Context, d *entity.Department) error
	Delete(ctx context.Context, id string) error
	// CountReferences cuenta presupuestos y usuarios que apuntan al departamento.
	CountReferences(ctx context.Context, id string) (budgets, users int, err error)
}
