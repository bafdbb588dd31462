package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/procurement-api/internal/domain"
	"github.com/jhoicas/procurement-api/internal/domain/entity"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
)

var (
	_ repository.UserRepository     = (*UserRepo)(nil)
	_ repository.RoleRepository     = (*RoleRepo)(nil)
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
)

// UserRepo usuarios en memoria.
type UserRepo struct{ view }

func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	return r.write(ctx, func(st *state) error {
		if err := checkUser(st, u); err != nil {
			return err
		}
		if _, ok := st.users[u.ID]; ok {
			return constraint("usuario %s duplicado", u.ID)
		}
		st.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.read(ctx, func(st *state) error {
		if u, ok := st.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.read(ctx, func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				u := u
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	all, err := r.filter(ctx, func(entity.User) bool { return true })
	if err != nil {
		return nil, err
	}
	return page(all, limit, offset), nil
}

func (r *UserRepo) ListByDepartment(ctx context.Context, departmentID string) ([]*entity.User, error) {
	return r.filter(ctx, func(u entity.User) bool { return u.DepartmentID == departmentID })
}

func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	return r.write(ctx, func(st *state) error {
		if _, ok := st.users[u.ID]; !ok {
			return domain.ErrNotFound
		}
		if err := checkUser(st, u); err != nil {
			return err
		}
		st.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepo) filter(ctx context.Context, keep func(entity.User) bool) ([]*entity.User, error) {
	var out []*entity.User
	err := r.read(ctx, func(st *state) error {
		for _, u := range st.users {
			if keep(u) {
				u := u
				out = append(out, &u)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

// checkUser aplica las restricciones de unicidad de email y FK de departamento.
func checkUser(st *state, u *entity.User) error {
	for id, other := range st.users {
		if id != u.ID && strings.EqualFold(other.Email, u.Email) {
			return constraint("email %s ya registrado", u.Email)
		}
	}
	if u.DepartmentID != "" {
		if _, ok := st.departments[u.DepartmentID]; !ok {
			return constraint("departamento %s inexistente", u.DepartmentID)
		}
	}
	return nil
}

// RoleRepo roles en memoria.
type RoleRepo struct{ view }

func (r *RoleRepo) Create(ctx context.Context, role *entity.Role) error {
	return r.write(ctx, func(st *state) error {
		for _, other := range st.roles {
			if strings.EqualFold(other.Name, role.Name) {
				return constraint("rol %q duplicado", role.Name)
			}
		}
		st.roles[role.ID] = *role
		return nil
	})
}

func (r *RoleRepo) GetByID(ctx context.Context, id string) (*entity.Role, error) {
	var out *entity.Role
	err := r.read(ctx, func(st *state) error {
		if role, ok := st.roles[id]; ok {
			out = &role
		}
		return nil
	})
	return out, err
}

func (r *RoleRepo) GetByName(ctx context.Context, name string) (*entity.Role, error) {
	var out *entity.Role
	err := r.read(ctx, func(st *state) error {
		for _, role := range st.roles {
			if strings.EqualFold(role.Name, name) {
				role := role
				out = &role
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *RoleRepo) List(ctx context.Context) ([]*entity.Role, error) {
	var out []*entity.Role
	err := r.read(ctx, func(st *state) error {
		for _, role := range st.roles {
			role := role
			out = append(out, &role)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *RoleRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Role, error) {
	var out []*entity.Role
	err := r.read(ctx, func(st *state) error {
		for _, ur := range st.userRoles {
			if ur.UserID != userID {
				continue
			}
			if role, ok := st.roles[ur.RoleID]; ok {
				out = append(out, &role)
			}
		}
		return nil
	})
	return out, err
}

func (r *RoleRepo) Assign(ctx context.Context, ur entity.UserRole) error {
	return r.write(ctx, func(st *state) error {
		if _, ok := st.users[ur.UserID]; !ok {
			return constraint("usuario %s inexistente", ur.UserID)
		}
		if _, ok := st.roles[ur.RoleID]; !ok {
			return constraint("rol %s inexistente", ur.RoleID)
		}
		for _, existing := range st.userRoles {
			if existing.UserID == ur.UserID && existing.RoleID == ur.RoleID {
				return nil
			}
		}
		st.userRoles = append(st.userRoles, ur)
		return nil
	})
}

// SupplierRepo proveedores en memoria.
type SupplierRepo struct{ view }

func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	return r.write(ctx, func(st *state) error {
		if _, ok := st.suppliers[s.ID]; ok {
			return constraint("proveedor %s duplicado", s.ID)
		}
		st.suppliers[s.ID] = *s
		return nil
	})
}

func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.read(ctx, func(st *state) error {
		if s, ok := st.suppliers[id]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *SupplierRepo) List(ctx context.Context) ([]*entity.Supplier, error) {
	return r.filter(ctx, func(entity.Supplier) bool { return true })
}

func (r *SupplierRepo) ListByStatus(ctx context.Context, status entity.SupplierStatus) ([]*entity.Supplier, error) {
	return r.filter(ctx, func(s entity.Supplier) bool { return s.Status == status })
}

func (r *SupplierRepo) UpdateStatus(ctx context.Context, id string, status entity.SupplierStatus, updatedAt time.Time) error {
	return r.write(ctx, func(st *state) error {
		s, ok := st.suppliers[id]
		if !ok {
			return domain.ErrNotFound
		}
		s.Status = status
		s.UpdatedAt = updatedAt
		st.suppliers[id] = s
		return nil
	})
}

func (r *SupplierRepo) filter(ctx context.Context, keep func(entity.Supplier) bool) ([]*entity.Supplier, error) {
	var out []*entity.Supplier
	err := r.read(ctx, func(st *state) error {
		for _, s := range st.suppliers {
			if keep(s) {
				s := s
				out = append(out, &s)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
