package analytics_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/procurement-api/internal/application/analytics"
	"github.com/jhoicas/procurement-api/internal/application/dto"
	"github.com/jhoicas/procurement-api/internal/domain/entity"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
	"github.com/jhoicas/procurement-api/internal/infrastructure/memory"
)

type mapCache struct {
	mu   sync.Mutex
	data map[string]*dto.DashboardSummaryDTO
	hits int
}

func (c *mapCache) Get(_ context.Context, key string) (*dto.DashboardSummaryDTO, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.data[key]
	if ok {
		c.hits++
	}
	return s, ok
}

func (c *mapCache) Set(_ context.Context, key string, s *dto.DashboardSummaryDTO) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = s
}

func TestGetSummary(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repos := store.Repos()

	dept, budget, me, other := uuid.New().String(), uuid.New().String(), uuid.New().String(), uuid.New().String()
	require.NoError(t, repos.Departments.Create(ctx, &entity.Department{ID: dept, Name: "Finance"}))
	require.NoError(t, repos.Budgets.Create(ctx, &entity.Budget{
		ID: budget, DepartmentID: dept, FiscalYear: 2024,
		TotalAmount: decimal.NewFromInt(1000), RemainingAmount: decimal.NewFromInt(600),
	}))
	require.NoError(t, repos.Users.Create(ctx, &entity.User{ID: me, Email: "me@uni.edu", IsActive: true}))
	require.NoError(t, repos.Users.Create(ctx, &entity.User{ID: other, Email: "other@uni.edu", IsActive: true}))

	add := func(requester string, status entity.RequestStatus, amount int64) {
		require.NoError(t, repos.Requests.Create(ctx, &entity.PurchaseRequest{
			ID: uuid.New().String(), RequesterID: requester, BudgetID: budget, DepartmentID: dept,
			Amount: decimal.NewFromInt(amount), Status: status,
		}))
	}
	add(me, entity.RequestPending, 50)
	add(me, entity.RequestApproved, 300)
	add(other, entity.RequestCompleted, 100)
	add(other, entity.RequestRejected, 999)

	cache := &mapCache{data: map[string]*dto.DashboardSummaryDTO{}}
	uc := analytics.NewDashboardUseCase(store.Analytics(), cache)

	scope := repository.SummaryScope{DepartmentID: dept, FiscalYear: 2024}
	out, err := uc.GetSummary(ctx, scope, me)
	require.NoError(t, err)

	assert.Equal(t, 4, out.TotalRequests)
	assert.Equal(t, 1, out.PendingCount)
	assert.Equal(t, 2, out.MyRequests)
	assert.Equal(t, 1, out.CountsByStatus["Rejected"])
	assert.Equal(t, 0, out.CountsByStatus["Cancelled"])
	assert.True(t, out.CommittedSpend.Equal(decimal.NewFromInt(400)), "Approved + Completed")
	assert.True(t, out.TotalBudget.Equal(decimal.NewFromInt(1000)))
	assert.True(t, out.RemainingBudget.Equal(decimal.NewFromInt(600)))
	assert.True(t, out.UtilizationPct.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, "$400.00", out.CommittedDisplay)

	again, err := uc.GetSummary(ctx, scope, me)
	require.NoError(t, err)
	assert.Same(t, out, again)
	assert.Equal(t, 1, cache.hits)
}
