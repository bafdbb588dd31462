package repository

import (
	"context"
	"time"

	"github.com/jhoicas/procurement-api/internal/domain/entity"
)

// SupplierRepository puerto de persistencia para Supplier.
type SupplierRepository interface {
	Create(ctx context.Context, s *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	List(ctx context.Context) ([]*entity.Supplier, error)
	ListByStatus(ctx context.Context, status entity.SupplierStatus) ([]*entity.Supplier, error)
	UpdateStatus(ctx context.Context, id string, status entity.SupplierStatus, updatedAt time.Time) error
}
