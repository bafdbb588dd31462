package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/procurement-api/internal/domain"
	"github.com/jhoicas/procurement-api/internal/domain/entity"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
	"github.com/jhoicas/procurement-api/internal/infrastructure/memory"
)

func TestRun_RestauraAnteError(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	dept := &entity.Department{ID: uuid.New().String(), Name: "Finance"}
	require.NoError(t, store.Repos().Departments.Create(ctx, dept))

	boom := errors.New("boom")
	err := store.Run(ctx, func(repos repository.Repos) error {
		require.NoError(t, repos.Budgets.Create(ctx, &entity.Budget{
			ID: uuid.New().String(), DepartmentID: dept.ID, FiscalYear: 2024,
			TotalAmount: decimal.NewFromInt(10), RemainingAmount: decimal.NewFromInt(10),
		}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	budgets, err := store.Repos().Budgets.ListByDepartment(ctx, dept.ID)
	require.NoError(t, err)
	assert.Empty(t, budgets, "la escritura dentro de la transacción fallida no persiste")
}

func TestRun_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := memory.New().Run(ctx, func(repository.Repos) error { return nil })
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

// Una transacción lenta no bloquea a las demás más allá de su timeout.
func TestRun_EsperaRespetaTimeout(t *testing.T) {
	store := memory.New()
	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- store.Run(context.Background(), func(repository.Repos) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := store.Run(ctx, func(repository.Repos) error { return nil })
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Less(t, time.Since(start), time.Second)

	_, err = store.Repos().Departments.List(ctx)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable, "las lecturas también respetan el contexto")

	close(release)
	require.NoError(t, <-done)
	require.NoError(t, store.Run(context.Background(), func(repository.Repos) error { return nil }))
}

func TestBudget_InvarianteDeSaldo(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repos := store.Repos()
	dept := &entity.Department{ID: uuid.New().String(), Name: "Physics"}
	require.NoError(t, repos.Departments.Create(ctx, dept))
	b := &entity.Budget{ID: uuid.New().String(), DepartmentID: dept.ID, FiscalYear: 2024,
		TotalAmount: decimal.NewFromInt(100), RemainingAmount: decimal.NewFromInt(100)}
	require.NoError(t, repos.Budgets.Create(ctx, b))

	now := time.Now()
	assert.ErrorIs(t, repos.Budgets.UpdateRemaining(ctx, b.ID, decimal.NewFromInt(-1), now), domain.ErrConstraintViolation)
	assert.ErrorIs(t, repos.Budgets.UpdateRemaining(ctx, b.ID, decimal.NewFromInt(101), now), domain.ErrConstraintViolation)
	require.NoError(t, repos.Budgets.UpdateRemaining(ctx, b.ID, decimal.Zero, now))
}

func TestPurchaseRequest_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repos := store.Repos()
	dept := &entity.Department{ID: uuid.New().String(), Name: "Biology"}
	require.NoError(t, repos.Departments.Create(ctx, dept))
	b := &entity.Budget{ID: uuid.New().String(), DepartmentID: dept.ID, FiscalYear: 2024,
		TotalAmount: decimal.NewFromInt(100), RemainingAmount: decimal.NewFromInt(100)}
	require.NoError(t, repos.Budgets.Create(ctx, b))
	u := &entity.User{ID: uuid.New().String(), Email: "x@uni.edu", IsActive: true}
	require.NoError(t, repos.Users.Create(ctx, u))

	pr := &entity.PurchaseRequest{ID: uuid.New().String(), RequesterID: u.ID, BudgetID: b.ID,
		DepartmentID: dept.ID, Amount: decimal.NewFromInt(5), Status: entity.RequestPending}
	require.NoError(t, repos.Requests.Create(ctx, pr))

	require.NoError(t, repos.Requests.UpdateStatus(ctx, pr.ID, entity.RequestPending, entity.RequestRejected, "", time.Now()))
	err := repos.Requests.UpdateStatus(ctx, pr.ID, entity.RequestPending, entity.RequestApproved, u.ID, time.Now())
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)

	err = repos.Requests.Create(ctx, &entity.PurchaseRequest{ID: uuid.New().String(), RequesterID: uuid.New().String(),
		BudgetID: b.ID, DepartmentID: dept.ID, Amount: decimal.NewFromInt(1), Status: entity.RequestPending})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
}

func TestInvitation_UnicaPendientePorEmail(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repos := store.Repos()
	dept := &entity.Department{ID: uuid.New().String(), Name: "Library"}
	require.NoError(t, repos.Departments.Create(ctx, dept))

	inv := func(email, token string) *entity.Invitation {
		return &entity.Invitation{ID: uuid.New().String(), Email: email, Token: token, DepartmentID: dept.ID,
			Status: entity.InvitationPending, ExpiresAt: time.Now().Add(time.Hour)}
	}
	require.NoError(t, repos.Invitations.Create(ctx, inv("a@uni.edu", "t1")))
	assert.ErrorIs(t, repos.Invitations.Create(ctx, inv("A@UNI.EDU", "t2")), domain.ErrDuplicateInvitation)
	assert.ErrorIs(t, repos.Invitations.Create(ctx, inv("b@uni.edu", "t1")), domain.ErrConstraintViolation)
}

func TestDepartment_DeleteConInvitacionPendiente(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repos := store.Repos()
	dept := &entity.Department{ID: uuid.New().String(), Name: "Library"}
	require.NoError(t, repos.Departments.Create(ctx, dept))
	require.NoError(t, repos.Invitations.Create(ctx, &entity.Invitation{ID: uuid.New().String(), Email: "a@uni.edu",
		Token: "t1", DepartmentID: dept.ID, Status: entity.InvitationPending, ExpiresAt: time.Now().Add(time.Hour)}))

	assert.ErrorIs(t, repos.Departments.Delete(ctx, dept.ID), domain.ErrConstraintViolation)
	d, err := repos.Departments.GetByID(ctx, dept.ID)
	require.NoError(t, err)
	assert.NotNil(t, d, "el departamento sigue existiendo")
}
