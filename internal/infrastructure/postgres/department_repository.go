package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
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

// DepartmentRepo implementación de DepartmentRepository (usable con pool o tx).
type DepartmentRepo struct {
	q Querier
}

// NewDepartmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDepartmentRepository(q Querier) *DepartmentRepo {
	return &DepartmentRepo{q: q}
}

func (r *DepartmentRepo) Create(ctx context.Context, d *entity.Department) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO departments (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		d.ID, d.Name, d.CreatedAt, d.UpdatedAt)
	return wrap("insert department", err)
}

func (r *DepartmentRepo) GetByID(ctx context.Context, id string) (*entity.Department, error) {
	var d entity.Department
	err := r.q.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM departments WHERE id = $1`, id,
	).Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get department", err)
	}
	return &d, nil
}

func (r *DepartmentRepo) List(ctx context.Context) ([]*entity.Department, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, created_at, updated_at FROM departments ORDER BY name`)
	if err != nil {
		return nil, wrap("list departments", err)
	}
	defer rows.Close()
	var out []*entity.Department
	for rows.Next() {
		var d entity.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, wrap("scan department", err)
		}
		out = append(out, &d)
	}
	return out, wrap("list departments", rows.Err())
}

func (r *DepartmentRepo) Update(ctx context.Context, d *entity.Department) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE departments SET name = $2, updated_at = $3 WHERE id = $1`,
		d.ID, d.Name, d.UpdatedAt)
	if err != nil {
		return wrap("update department", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DepartmentRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return wrap("delete department", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DepartmentRepo) CountReferences(ctx context.Context, id string) (budgets, users int, err error) {
	err = r.q.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM budgets WHERE department_id = $1),
		       (SELECT COUNT(*) FROM users   WHERE department_id = $1)`, id,
	).Scan(&budgets, &users)
	return budgets, users, wrap("count department references", err)
}

// BudgetRepo implementación de BudgetRepository.
type BudgetRepo struct {
	q Querier
}

// NewBudgetRepository construye el adaptador.
func NewBudgetRepository(q Querier) *BudgetRepo {
	return &BudgetRepo{q: q}
}

const budgetColumns = `id, department_id, fiscal_year, total_amount, remaining_amount, created_at, updated_at`

func scanBudget(row pgx.Row) (*entity.Budget, error) {
	var b entity.Budget
	if err := row.Scan(&b.ID, &b.DepartmentID, &b.FiscalYear, &b.TotalAmount, &b.RemainingAmount, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BudgetRepo) Create(ctx context.Context, b *entity.Budget) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO budgets (`+budgetColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		b.ID, b.DepartmentID, b.FiscalYear, b.TotalAmount, b.RemainingAmount, b.CreatedAt, b.UpdatedAt)
	return wrap("insert budget", err)
}

func (r *BudgetRepo) GetByID(ctx context.Context, id string) (*entity.Budget, error) {
	return r.get(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = $1`, id)
}

// GetForUpdate toma el candado de fila hasta el fin de la transacción.
func (r *BudgetRepo) GetForUpdate(ctx context.Context, id string) (*entity.Budget, error) {
	return r.get(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = $1 FOR UPDATE`, id)
}

func (r *BudgetRepo) get(ctx context.Context, query, id string) (*entity.Budget, error) {
	b, err := scanBudget(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get budget", err)
	}
	return b, nil
}

func (r *BudgetRepo) List(ctx context.Context) ([]*entity.Budget, error) {
	return r.list(ctx, `SELECT `+budgetColumns+` FROM budgets ORDER BY fiscal_year DESC, id`)
}

func (r *BudgetRepo) ListByDepartment(ctx context.Context, departmentID string) ([]*entity.Budget, error) {
	return r.list(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE department_id = $1 ORDER BY fiscal_year DESC, id`, departmentID)
}

func (r *BudgetRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Budget, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("list budgets", err)
	}
	defer rows.Close()
	var out []*entity.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, wrap("scan budget", err)
		}
		out = append(out, b)
	}
	return out, wrap("list budgets", rows.Err())
}

// UpdateRemaining escribe el saldo; el CHECK de la tabla rechaza valores fuera de [0, total].
func (r *BudgetRepo) UpdateRemaining(ctx context.Context, id string, remaining decimal.Decimal, updatedAt time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE budgets SET remaining_amount = $2, updated_at = $3 WHERE id = $1`,
		id, remaining, updatedAt)
	if err != nil {
		return wrap("update budget remaining", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReservationRepo implementación de ReservationRepository.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador.
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

func (r *ReservationRepo) Create(ctx context.Context, res *entity.Reservation) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO budget_reservations (id, budget_id, request_id, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		res.ID, res.BudgetID, res.RequestID, res.Amount, res.Status, res.CreatedAt, res.UpdatedAt)
	return wrap("insert reservation", err)
}

func (r *ReservationRepo) GetByRequest(ctx context.Context, requestID string) (*entity.Reservation, error) {
	var res entity.Reservation
	err := r.q.QueryRow(ctx, `
		SELECT id, budget_id, request_id, amount, status, created_at, updated_at
		FROM budget_reservations WHERE request_id = $1`, requestID,
	).Scan(&res.ID, &res.BudgetID, &res.RequestID, &res.Amount, &res.Status, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get reservation", err)
	}
	return &res, nil
}

func (r *ReservationRepo) UpdateStatus(ctx context.Context, id string, status entity.ReservationStatus, updatedAt time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE budget_reservations SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, updatedAt)
	if err != nil {
		return wrap("update reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
