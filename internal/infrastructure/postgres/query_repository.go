package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/procurement-api/internal/domain/entity"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
)

var (
	_ repository.RequestQueryRepository = (*QueryRepo)(nil)
	_ repository.AnalyticsRepository    = (*AnalyticsRepo)(nil)
)

// QueryRepo lecturas desnormalizadas de solicitudes; no toma bloqueos.
type QueryRepo struct {
	pool *pgxpool.Pool
}

// NewQueryRepository construye el adaptador de lectura.
func NewQueryRepository(pool *pgxpool.Pool) *QueryRepo {
	return &QueryRepo{pool: pool}
}

const viewSelect = `
	SELECT ` + requestColumns + `,
	       u.first_name, u.last_name, u.email,
	       d.name,
	       b.fiscal_year, b.total_amount, b.remaining_amount,
	       COALESCE(NULLIF(TRIM(a.first_name || ' ' || a.last_name), ''), '')
	FROM purchase_requests pr
	JOIN users       u ON u.id = pr.requester_id
	JOIN departments d ON d.id = pr.department_id
	JOIN budgets     b ON b.id = pr.budget_id
	LEFT JOIN users  a ON a.id = pr.approved_by`

func scanView(row pgx.Row) (*repository.RequestView, error) {
	var v repository.RequestView
	var approvedBy *string
	dest := append(requestDest(&v.Request, &approvedBy),
		&v.RequesterFirstName, &v.RequesterLastName, &v.RequesterEmail,
		&v.DepartmentName,
		&v.FiscalYear, &v.BudgetTotal, &v.BudgetRemaining,
		&v.ApproverName,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	v.Request.ApprovedBy = derefStr(approvedBy)
	return &v, nil
}

// whereClause arma los predicados combinados con AND y sus argumentos.
func whereClause(f repository.RequestFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.RequesterID != "" {
		add("pr.requester_id = $%d", f.RequesterID)
	}
	if f.DepartmentID != "" {
		add("pr.department_id = $%d", f.DepartmentID)
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		add("pr.status = ANY($%d)", statuses)
	}
	if f.From != nil {
		add("pr.request_date >= $%d", *f.From)
	}
	if f.To != nil {
		add("pr.request_date <= $%d", *f.To)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *QueryRepo) List(ctx context.Context, f repository.RequestFilter) ([]*repository.RequestView, error) {
	where, args := whereClause(f)
	query := viewSelect + where + " ORDER BY pr.request_date DESC, pr.id DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("query.List", err)
	}
	defer rows.Close()
	var out []*repository.RequestView
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, wrap("query.List scan", err)
		}
		out = append(out, v)
	}
	return out, wrap("query.List", rows.Err())
}

func (r *QueryRepo) Count(ctx context.Context, f repository.RequestFilter) (int, error) {
	where, args := whereClause(f)
	var n int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM purchase_requests pr"+where, args...).Scan(&n)
	return n, wrap("query.Count", err)
}

func (r *QueryRepo) GetView(ctx context.Context, id string) (*repository.RequestView, error) {
	v, err := scanView(r.pool.QueryRow(ctx, viewSelect+" WHERE pr.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("query.GetView", err)
	}
	return v, nil
}

// AnalyticsRepo consultas de solo lectura para el tablero.
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

// scopeClause filtra solicitudes por departamento, solicitante y año fiscal del presupuesto.
func scopeClause(scope repository.SummaryScope) (string, []any) {
	conds := []string{"TRUE"}
	var args []any
	if scope.DepartmentID != "" {
		args = append(args, scope.DepartmentID)
		conds = append(conds, fmt.Sprintf("pr.department_id = $%d", len(args)))
	}
	if scope.RequesterID != "" {
		args = append(args, scope.RequesterID)
		conds = append(conds, fmt.Sprintf("pr.requester_id = $%d", len(args)))
	}
	if scope.FiscalYear != 0 {
		args = append(args, scope.FiscalYear)
		conds = append(conds, fmt.Sprintf("b.fiscal_year = $%d", len(args)))
	}
	return strings.Join(conds, " AND "), args
}

func (r *AnalyticsRepo) CountByStatus(ctx context.Context, scope repository.SummaryScope) (map[entity.RequestStatus]int, error) {
	where, args := scopeClause(scope)
	rows, err := r.pool.Query(ctx, `
		SELECT pr.status, COUNT(*)
		FROM purchase_requests pr
		JOIN budgets b ON b.id = pr.budget_id
		WHERE `+where+`
		GROUP BY pr.status`, args...)
	if err != nil {
		return nil, wrap("analytics.CountByStatus", err)
	}
	defer rows.Close()
	out := make(map[entity.RequestStatus]int)
	for rows.Next() {
		var status entity.RequestStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, wrap("analytics.CountByStatus scan", err)
		}
		out[status] = n
	}
	return out, wrap("analytics.CountByStatus", rows.Err())
}

// CommittedSpend suma los montos que retienen fondos (Approved, InProgress, Completed).
func (r *AnalyticsRepo) CommittedSpend(ctx context.Context, scope repository.SummaryScope) (decimal.Decimal, error) {
	where, args := scopeClause(scope)
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(pr.amount), 0)
		FROM purchase_requests pr
		JOIN budgets b ON b.id = pr.budget_id
		WHERE `+where+` AND pr.status IN ('Approved', 'InProgress', 'Completed')`, args...,
	).Scan(&total)
	return total, wrap("analytics.CommittedSpend", err)
}

func (r *AnalyticsRepo) BudgetTotals(ctx context.Context, scope repository.SummaryScope) (total, remaining decimal.Decimal, err error) {
	conds := []string{"TRUE"}
	var args []any
	if scope.DepartmentID != "" {
		args = append(args, scope.DepartmentID)
		conds = append(conds, fmt.Sprintf("department_id = $%d", len(args)))
	}
	if scope.FiscalYear != 0 {
		args = append(args, scope.FiscalYear)
		conds = append(conds, fmt.Sprintf("fiscal_year = $%d", len(args)))
	}
	err = r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount), 0), COALESCE(SUM(remaining_amount), 0)
		FROM budgets WHERE `+strings.Join(conds, " AND "), args...,
	).Scan(&total, &remaining)
	return total, remaining, wrap("analytics.BudgetTotals", err)
}
