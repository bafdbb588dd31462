package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/procurement-api/internal/domain/entity"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
)

var (
	_ repository.RequestQueryRepository = (*QueryRepo)(nil)
	_ repository.AnalyticsRepository    = (*AnalyticsRepo)(nil)
)

// QueryRepo proyecciones de solicitudes en memoria.
type QueryRepo struct{ view }

func (r *QueryRepo) List(ctx context.Context, f repository.RequestFilter) ([]*repository.RequestView, error) {
	var out []*repository.RequestView
	err := r.read(ctx, func(st *state) error {
		for _, pr := range st.requests {
			if matches(pr, f) {
				out = append(out, project(st, pr))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Request, out[j].Request
		if !a.RequestDate.Equal(b.RequestDate) {
			return a.RequestDate.After(b.RequestDate)
		}
		return a.ID > b.ID
	})
	return page(out, f.Limit, f.Offset), nil
}

func (r *QueryRepo) Count(ctx context.Context, f repository.RequestFilter) (int, error) {
	n := 0
	err := r.read(ctx, func(st *state) error {
		for _, pr := range st.requests {
			if matches(pr, f) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *QueryRepo) GetView(ctx context.Context, id string) (*repository.RequestView, error) {
	var out *repository.RequestView
	err := r.read(ctx, func(st *state) error {
		if pr, ok := st.requests[id]; ok {
			out = project(st, pr)
		}
		return nil
	})
	return out, err
}

func matches(pr entity.PurchaseRequest, f repository.RequestFilter) bool {
	if f.RequesterID != "" && pr.RequesterID != f.RequesterID {
		return false
	}
	if f.DepartmentID != "" && pr.DepartmentID != f.DepartmentID {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if pr.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.From != nil && pr.RequestDate.Before(*f.From) {
		return false
	}
	if f.To != nil && pr.RequestDate.After(*f.To) {
		return false
	}
	return true
}

func project(st *state, pr entity.PurchaseRequest) *repository.RequestView {
	v := &repository.RequestView{Request: pr}
	if u, ok := st.users[pr.RequesterID]; ok {
		v.RequesterFirstName = u.FirstName
		v.RequesterLastName = u.LastName
		v.RequesterEmail = u.Email
	}
	if d, ok := st.departments[pr.DepartmentID]; ok {
		v.DepartmentName = d.Name
	}
	if b, ok := st.budgets[pr.BudgetID]; ok {
		v.FiscalYear = b.FiscalYear
		v.BudgetTotal = b.TotalAmount
		v.BudgetRemaining = b.RemainingAmount
	}
	if pr.ApprovedBy != "" {
		if a, ok := st.users[pr.ApprovedBy]; ok {
			v.ApproverName = a.FullName()
		}
	}
	return v
}

// AnalyticsRepo agregados del tablero en memoria.
type AnalyticsRepo struct{ view }

func (r *AnalyticsRepo) CountByStatus(ctx context.Context, scope repository.SummaryScope) (map[entity.RequestStatus]int, error) {
	out := make(map[entity.RequestStatus]int)
	err := r.read(ctx, func(st *state) error {
		for _, pr := range st.requests {
			if inScope(st, pr, scope) {
				out[pr.Status]++
			}
		}
		return nil
	})
	return out, err
}

func (r *AnalyticsRepo) CommittedSpend(ctx context.Context, scope repository.SummaryScope) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.read(ctx, func(st *state) error {
		for _, pr := range st.requests {
			if pr.Status.HoldsFunds() && inScope(st, pr, scope) {
				total = total.Add(pr.Amount)
			}
		}
		return nil
	})
	return total, err
}

func (r *AnalyticsRepo) BudgetTotals(ctx context.Context, scope repository.SummaryScope) (total, remaining decimal.Decimal, err error) {
	total, remaining = decimal.Zero, decimal.Zero
	err = r.read(ctx, func(st *state) error {
		for _, b := range st.budgets {
			if scope.DepartmentID != "" && b.DepartmentID != scope.DepartmentID {
				continue
			}
			if scope.FiscalYear != 0 && b.FiscalYear != scope.FiscalYear {
				continue
			}
			total = total.Add(b.TotalAmount)
			remaining = remaining.Add(b.RemainingAmount)
		}
		return nil
	})
	return total, remaining, err
}

func inScope(st *state, pr entity.PurchaseRequest, scope repository.SummaryScope) bool {
	if scope.DepartmentID != "" && pr.DepartmentID != scope.DepartmentID {
		return false
	}
	if scope.RequesterID != "" && pr.RequesterID != scope.RequesterID {
		return false
	}
	if scope.FiscalYear != 0 {
		b, ok := st.budgets[pr.BudgetID]
		if !ok || b.FiscalYear != scope.FiscalYear {
			return false
		}
	}
	return true
}
