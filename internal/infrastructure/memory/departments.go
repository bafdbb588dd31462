package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/procurement-api/internal/domain"
	"github.com/jhoicas/procurement-api/internal/domain/entity"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
)

var (
	_ repository.DepartmentRepository  = (*DepartmentRepo)(nil)
	_ repository.BudgetRepository      = (*BudgetRepo)(nil)
	_ repository.ReservationRepository = (*ReservationRepo)(nil)
)

// DepartmentRepo departamentos en memoria.
type DepartmentRepo struct{ view }

func (r *DepartmentRepo) Create(ctx context.Context, d *entity.Department) error {
	return r.write(ctx, func(st *state) error {
		if _, ok := st.departments[d.ID]; ok {
			return constraint("departamento %s duplicado", d.ID)
		}
		for _, other := range st.departments {
			if strings.EqualFold(other.Name, d.Name) {
				return constraint("nombre de departamento %q en uso", d.Name)
			}
		}
		st.departments[d.ID] = *d
		return nil
	})
}

func (r *DepartmentRepo) GetByID(ctx context.Context, id string) (*entity.Department, error) {
	var out *entity.Department
	err := r.read(ctx, func(st *state) error {
		if d, ok := st.departments[id]; ok {
			out = &d
		}
		return nil
	})
	return out, err
}

func (r *DepartmentRepo) List(ctx context.Context) ([]*entity.Department, error) {
	var out []*entity.Department
	err := r.read(ctx, func(st *state) error {
		for _, d := range st.departments {
			d := d
			out = append(out, &d)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *DepartmentRepo) Update(ctx context.Context, d *entity.Department) error {
	return r.write(ctx, func(st *state) error {
		if _, ok := st.departments[d.ID]; !ok {
			return domain.ErrNotFound
		}
		for id, other := range st.departments {
			if id != d.ID && strings.EqualFold(other.Name, d.Name) {
				return constraint("nombre de departamento %q en uso", d.Name)
			}
		}
		st.departments[d.ID] = *d
		return nil
	})
}

func (r *DepartmentRepo) Delete(ctx context.Context, id string) error {
	return r.write(ctx, func(st *state) error {
		if _, ok := st.departments[id]; !ok {
			return domain.ErrNotFound
		}
		budgets, users := countDepartmentRefs(st, id)
		if budgets > 0 || users > 0 {
			return constraint("departamento %s referenciado", id)
		}
		// Igual que la FK invitations.department_id: cualquier estado bloquea.
		for _, inv := range st.invitations {
			if inv.DepartmentID == id {
				return constraint("departamento %s referenciado por invitaciones", id)
			}
		}
		delete(st.departments, id)
		return nil
	})
}

func (r *DepartmentRepo) CountReferences(ctx context.Context, id string) (budgets, users int, err error) {
	err = r.read(ctx, func(st *state) error {
		budgets, users = countDepartmentRefs(st, id)
		return nil
	})
	return budgets, users, err
}

func countDepartmentRefs(st *state, id string) (budgets, users int) {
	for _, b := range st.budgets {
		if b.DepartmentID == id {
			budgets++
		}
	}
	for _, u := range st.users {
		if u.DepartmentID == id {
			users++
		}
	}
	return budgets, users
}

// BudgetRepo presupuestos en memoria.
type BudgetRepo struct{ view }

func (r *BudgetRepo) Create(ctx context.Context, b *entity.Budget) error {
	return r.write(ctx, func(st *state) error {
		if _, ok := st.departments[b.DepartmentID]; !ok {
			return constraint("departamento %s inexistente", b.DepartmentID)
		}
		for _, other := range st.budgets {
			if other.DepartmentID == b.DepartmentID && other.FiscalYear == b.FiscalYear {
				return constraint("ya existe presupuesto %d para el departamento", b.FiscalYear)
			}
		}
		if !b.Valid() {
			return constraint("saldo fuera de rango")
		}
		st.budgets[b.ID] = *b
		return nil
	})
}

func (r *BudgetRepo) GetByID(ctx context.Context, id string) (*entity.Budget, error) {
	var out *entity.Budget
	err := r.read(ctx, func(st *state) error {
		if b, ok := st.budgets[id]; ok {
			out = &b
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID: dentro de Run el candado global ya serializa.
func (r *BudgetRepo) GetForUpdate(ctx context.Context, id string) (*entity.Budget, error) {
	return r.GetByID(ctx, id)
}

func (r *BudgetRepo) List(ctx context.Context) ([]*entity.Budget, error) {
	return r.filter(ctx, func(entity.Budget) bool { return true })
}

func (r *BudgetRepo) ListByDepartment(ctx context.Context, departmentID string) ([]*entity.Budget, error) {
	return r.filter(ctx, func(b entity.Budget) bool { return b.DepartmentID == departmentID })
}

func (r *BudgetRepo) filter(ctx context.Context, keep func(entity.Budget) bool) ([]*entity.Budget, error) {
	var out []*entity.Budget
	err := r.read(ctx, func(st *state) error {
		for _, b := range st.budgets {
			if keep(b) {
				b := b
				out = append(out, &b)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].FiscalYear != out[j].FiscalYear {
			return out[i].FiscalYear > out[j].FiscalYear
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *BudgetRepo) UpdateRemaining(ctx context.Context, id string, remaining decimal.Decimal, updatedAt time.Time) error {
	return r.write(ctx, func(st *state) error {
		b, ok := st.budgets[id]
		if !ok {
			return domain.ErrNotFound
		}
		b.RemainingAmount = remaining
		b.UpdatedAt = updatedAt
		if !b.Valid() {
			return constraint("saldo fuera de rango para presupuesto %s", id)
		}
		st.budgets[id] = b
		return nil
	})
}

// ReservationRepo reservas en memoria.
type ReservationRepo struct{ view }

func (r *ReservationRepo) Create(ctx context.Context, res *entity.Reservation) error {
	return r.write(ctx, func(st *state) error {
		for _, other := range st.reservations {
			if other.RequestID == res.RequestID {
				return constraint("la solicitud %s ya tiene reserva", res.RequestID)
			}
		}
		st.reservations[res.ID] = *res
		return nil
	})
}

func (r *ReservationRepo) GetByRequest(ctx context.Context, requestID string) (*entity.Reservation, error) {
	var out *entity.Reservation
	err := r.read(ctx, func(st *state) error {
		for _, res := range st.reservations {
			if res.RequestID == requestID {
				res := res
				out = &res
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ReservationRepo) UpdateStatus(ctx context.Context, id string, status entity.ReservationStatus, updatedAt time.Time) error {
	return r.write(ctx, func(st *state) error {
		res, ok := st.reservations[id]
		if !ok {
			return domain.ErrNotFound
		}
		res.Status = status
		res.UpdatedAt = updatedAt
		st.reservations[id] = res
		return nil
	})
}
