package repository

import (
	"context"

	"github.com/jhoicas/procurement-api/internal/domain/entity"
)

// UserRepository puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByEmail busca sin distinguir mayúsculas.
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context, limit, offset int) ([]*entity.User, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}

// RoleRepository puerto de persistencia para Role y UserRole.
type RoleRepository interface {
	Create(ctx context.Context, r *entity.Role) error
	GetByID(ctx context.Context, id string) (*entity.Role, error)
	GetByName(ctx context.Context, name string) (*entity.Role, error)
	List(ctx context.Context) ([]*entity.Role, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Role, error)
	Assign(ctx context.Context, ur entity.UserRole) error
}
