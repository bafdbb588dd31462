package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/procurement-api/internal/domain"
	"github.com/jhoicas/procurement-api/internal/domain/entity"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
)

var (
	_ repository.UserRepository     = (*UserRepo)(nil)
	_ repository.RoleRepository     = (*RoleRepo)(nil)
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
)

// UserRepo implementación de UserRepository.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id, first_name, last_name, email, password_hash, department_id, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	var dept *string
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &dept, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.DepartmentID = derefStr(dept)
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, nullIfEmpty(u.DepartmentID), u.IsActive, u.CreatedAt, u.UpdatedAt)
	return wrap("insert user", err)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

func (r *UserRepo) get(ctx context.Context, query string, arg string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get user", err)
	}
	return u, nil
}

func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *UserRepo) ListByDepartment(ctx context.Context, departmentID string) ([]*entity.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE department_id = $1 ORDER BY created_at DESC, id`, departmentID)
}

func (r *UserRepo) list(ctx context.Context, query string, args ...any) ([]*entity.User, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("list users", err)
	}
	defer rows.Close()
	var out []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, wrap("scan user", err)
		}
		out = append(out, u)
	}
	return out, wrap("list users", rows.Err())
}

func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE users
		SET first_name = $2, last_name = $3, email = $4, password_hash = $5,
		    department_id = $6, is_active = $7, updated_at = $8
		WHERE id = $1`,
		u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, nullIfEmpty(u.DepartmentID), u.IsActive, u.UpdatedAt)
	if err != nil {
		return wrap("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RoleRepo implementación de RoleRepository.
type RoleRepo struct {
	q Querier
}

// NewRoleRepository construye el adaptador.
func NewRoleRepository(q Querier) *RoleRepo {
	return &RoleRepo{q: q}
}

const roleColumns = `r.id, r.name, r.description, r.max_budget_limit, r.can_approve, r.created_at`

func scanRole(row pgx.Row) (*entity.Role, error) {
	var role entity.Role
	if err := row.Scan(&role.ID, &role.Name, &role.Description, &role.MaxBudgetLimit, &role.CanApprove, &role.CreatedAt); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepo) Create(ctx context.Context, role *entity.Role) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO roles (id, name, description, max_budget_limit, can_approve, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		role.ID, role.Name, role.Description, role.MaxBudgetLimit, role.CanApprove, role.CreatedAt)
	return wrap("insert role", err)
}

func (r *RoleRepo) GetByID(ctx context.Context, id string) (*entity.Role, error) {
	return r.get(ctx, `SELECT `+roleColumns+` FROM roles r WHERE r.id = $1`, id)
}

func (r *RoleRepo) GetByName(ctx context.Context, name string) (*entity.Role, error) {
	return r.get(ctx, `SELECT `+roleColumns+` FROM roles r WHERE lower(r.name) = lower($1)`, name)
}

func (r *RoleRepo) get(ctx context.Context, query, arg string) (*entity.Role, error) {
	role, err := scanRole(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get role", err)
	}
	return role, nil
}

func (r *RoleRepo) List(ctx context.Context) ([]*entity.Role, error) {
	return r.list(ctx, `SELECT `+roleColumns+` FROM roles r ORDER BY r.name`)
}

func (r *RoleRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Role, error) {
	return r.list(ctx, `
		SELECT `+roleColumns+`
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY ur.assigned_at, r.name`, userID)
}

func (r *RoleRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Role, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("list roles", err)
	}
	defer rows.Close()
	var out []*entity.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, wrap("scan role", err)
		}
		out = append(out, role)
	}
	return out, wrap("list roles", rows.Err())
}

// Assign es idempotente: una asignación repetida no falla.
func (r *RoleRepo) Assign(ctx context.Context, ur entity.UserRole) error {
	assignedAt := ur.AssignedAt
	if assignedAt.IsZero() {
		assignedAt = time.Now()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id, assigned_by, assigned_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, role_id) DO NOTHING`,
		ur.UserID, ur.RoleID, nullIfEmpty(ur.AssignedBy), assignedAt)
	return wrap("assign role", err)
}

// SupplierRepo implementación de SupplierRepository.
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador.
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

const supplierColumns = `id, name, contact_email, contact_phone, onboarding_date, status, created_at, updated_at`

func scanSupplier(row pgx.Row) (*entity.Supplier, error) {
	var s entity.Supplier
	var email, phone *string
	if err := row.Scan(&s.ID, &s.Name, &email, &phone, &s.OnboardingDate, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.ContactEmail = derefStr(email)
	s.ContactPhone = derefStr(phone)
	return &s, nil
}

func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO suppliers (`+supplierColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.Name, nullIfEmpty(s.ContactEmail), nullIfEmpty(s.ContactPhone), s.OnboardingDate, s.Status, s.CreatedAt, s.UpdatedAt)
	return wrap("insert supplier", err)
}

func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	s, err := scanSupplier(r.q.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get supplier", err)
	}
	return s, nil
}

func (r *SupplierRepo) List(ctx context.Context) ([]*entity.Supplier, error) {
	return r.list(ctx, `SELECT `+supplierColumns+` FROM suppliers ORDER BY name`)
}

func (r *SupplierRepo) ListByStatus(ctx context.Context, status entity.SupplierStatus) ([]*entity.Supplier, error) {
	return r.list(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE status = $1 ORDER BY name`, status)
}

func (r *SupplierRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Supplier, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("list suppliers", err)
	}
	defer rows.Close()
	var out []*entity.Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, wrap("scan supplier", err)
		}
		out = append(out, s)
	}
	return out, wrap("list suppliers", rows.Err())
}

func (r *SupplierRepo) UpdateStatus(ctx context.Context, id string, status entity.SupplierStatus, updatedAt time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE suppliers SET status = $2, updated_at = $3 WHERE id = $1`, id, status, updatedAt)
	if err != nil {
		return wrap("update supplier status", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
