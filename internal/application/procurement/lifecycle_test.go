package procurement_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/procurement-api/internal/application/procurement"
	"github.com/jhoicas/procurement-api/internal/application/unitofwork"
	"github.com/jhoicas/procurement-api/internal/domain"
	"github.com/jhoicas/procurement-api/internal/domain/entity"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
	"github.com/jhoicas/procurement-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	store       *memory.Store
	engine      *procurement.Engine
	deptID      string
	budgetID    string
	requester   procurement.Actor
	approver    procurement.Actor
	lowApprover procurement.Actor
	outsider    procurement.Actor
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newFixture(t *testing.T, total string) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	repos := store.Repos()
	now := time.Now()

	f := &fixture{
		store:       store,
		deptID:      uuid.New().String(),
		budgetID:    uuid.New().String(),
		requester:   procurement.Actor{UserID: uuid.New().String()},
		approver:    procurement.Actor{UserID: uuid.New().String()},
		lowApprover: procurement.Actor{UserID: uuid.New().String()},
		outsider:    procurement.Actor{UserID: uuid.New().String()},
	}
	require.NoError(t, repos.Departments.Create(ctx, &entity.Department{ID: f.deptID, Name: "Finance", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repos.Budgets.Create(ctx, &entity.Budget{
		ID: f.budgetID, DepartmentID: f.deptID, FiscalYear: 2024,
		TotalAmount: dec(total), RemainingAmount: dec(total), CreatedAt: now, UpdatedAt: now,
	}))

	chair := &entity.Role{ID: uuid.New().String(), Name: "chair", MaxBudgetLimit: dec("50000"), CanApprove: true}
	clerk := &entity.Role{ID: uuid.New().String(), Name: "clerk", MaxBudgetLimit: dec("100"), CanApprove: true}
	staff := &entity.Role{ID: uuid.New().String(), Name: "staff", MaxBudgetLimit: dec("0"), CanApprove: false}
	for _, r := range []*entity.Role{chair, clerk, staff} {
		require.NoError(t, repos.Roles.Create(ctx, r))
	}

	users := []struct {
		actor procurement.Actor
		email string
		role  *entity.Role
	}{
		{f.requester, "requester@uni.edu", staff},
		{f.approver, "chair@uni.edu", chair},
		{f.lowApprover, "clerk@uni.edu", clerk},
		{f.outsider, "outsider@uni.edu", staff},
	}
	for _, u := range users {
		require.NoError(t, repos.Users.Create(ctx, &entity.User{
			ID: u.actor.UserID, Email: u.email, FirstName: "Test", LastName: "User",
			DepartmentID: f.deptID, IsActive: true, CreatedAt: now, UpdatedAt: now,
		}))
		require.NoError(t, repos.Roles.Assign(ctx, entity.UserRole{UserID: u.actor.UserID, RoleID: u.role.ID, AssignedAt: now}))
	}

	uow := unitofwork.New(store, unitofwork.Options{Timeout: time.Second}, nil)
	f.engine = procurement.NewEngine(uow, procurement.NewBudgetGuard(), nil)
	return f
}

func (f *fixture) create(t *testing.T, amount string) *entity.PurchaseRequest {
	t.Helper()
	pr, err := f.engine.Create(context.Background(), procurement.Draft{
		RequesterID:   f.requester.UserID,
		BudgetID:      f.budgetID,
		DepartmentID:  f.deptID,
		Amount:        dec(amount),
		Description:   "Laptops",
		Justification: "Renovación",
		FundingSource: "Operating",
	})
	require.NoError(t, err)
	return pr
}

func (f *fixture) remaining(t *testing.T) decimal.Decimal {
	t.Helper()
	b, err := f.store.Repos().Budgets.GetByID(context.Background(), f.budgetID)
	require.NoError(t, err)
	require.NotNil(t, b)
	return b.RemainingAmount
}

func (f *fixture) status(t *testing.T, id string) entity.RequestStatus {
	t.Helper()
	pr, err := f.store.Repos().Requests.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, pr)
	return pr.Status
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_QuedaPendingSinTocarPresupuesto(t *testing.T) {
	f := newFixture(t, "1000")
	pr := f.create(t, "250")

	assert.Equal(t, entity.RequestPending, pr.Status)
	assert.False(t, pr.RequestDate.IsZero(), "request_date por defecto es ahora")
	assert.True(t, f.remaining(t).Equal(dec("1000")))
}

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(t, "1000")
	ctx := context.Background()
	base := procurement.Draft{RequesterID: f.requester.UserID, BudgetID: f.budgetID, DepartmentID: f.deptID, Amount: dec("10")}

	cases := []struct {
		name   string
		mutate func(d *procurement.Draft)
		want   error
	}{
		{"monto cero", func(d *procurement.Draft) { d.Amount = decimal.Zero }, domain.ErrInvalidInput},
		{"monto negativo", func(d *procurement.Draft) { d.Amount = dec("-5") }, domain.ErrInvalidInput},
		{"sub-centavo", func(d *procurement.Draft) { d.Amount = dec("0.004") }, domain.ErrInvalidInput},
		{"tres decimales", func(d *procurement.Draft) { d.Amount = dec("100.005") }, domain.ErrInvalidInput},
		{"fuera de rango", func(d *procurement.Draft) { d.Amount = dec("1000000000000") }, domain.ErrInvalidInput},
		{"presupuesto inexistente", func(d *procurement.Draft) { d.BudgetID = uuid.New().String() }, domain.ErrConstraintViolation},
		{"solicitante inexistente", func(d *procurement.Draft) { d.RequesterID = uuid.New().String() }, domain.ErrConstraintViolation},
		{"departamento inexistente", func(d *procurement.Draft) { d.DepartmentID = uuid.New().String() }, domain.ErrConstraintViolation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := base
			tc.mutate(&d)
			_, err := f.engine.Create(ctx, d)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreate_PresupuestoDeOtroDepartamento(t *testing.T) {
	f := newFixture(t, "1000")
	ctx := context.Background()
	otherDept := &entity.Department{ID: uuid.New().String(), Name: "Physics"}
	require.NoError(t, f.store.Repos().Departments.Create(ctx, otherDept))

	_, err := f.engine.Create(ctx, procurement.Draft{
		RequesterID: f.requester.UserID, BudgetID: f.budgetID, DepartmentID: otherDept.ID, Amount: dec("10"),
	})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
}

// ──────────────────────────────────────────────────────────────────────────────
// Approve / Reject
// ──────────────────────────────────────────────────────────────────────────────

func TestApprove_ReservaFondos(t *testing.T) {
	f := newFixture(t, "1000")
	pr := f.create(t, "300")

	out, err := f.engine.Approve(context.Background(), pr.ID, f.approver)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestApproved, out.Status)
	assert.Equal(t, f.approver.UserID, out.ApprovedBy)
	assert.True(t, f.remaining(t).Equal(dec("700")))

	res, err := f.store.Repos().Reservations.GetByRequest(context.Background(), pr.ID)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, entity.ReservationHeld, res.Status)
	assert.True(t, res.Amount.Equal(dec("300")))
}

func TestApprove_FondosInsuficientesNoCambiaNada(t *testing.T) {
	f := newFixture(t, "100")
	pr := f.create(t, "150")

	_, err := f.engine.Approve(context.Background(), pr.ID, f.approver)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	var fundsErr *domain.InsufficientFundsError
	require.True(t, errors.As(err, &fundsErr))
	assert.True(t, fundsErr.Available.Equal(dec("100")))
	assert.True(t, fundsErr.Requested.Equal(dec("150")))

	assert.Equal(t, entity.RequestPending, f.status(t, pr.ID))
	assert.True(t, f.remaining(t).Equal(dec("100")))
}

func TestApprove_LimiteDelRol(t *testing.T) {
	f := newFixture(t, "1000")
	pr := f.create(t, "500")

	_, err := f.engine.Approve(context.Background(), pr.ID, f.lowApprover)
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "clerk solo aprueba hasta 100")

	_, err = f.engine.Approve(context.Background(), pr.ID, f.outsider)
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "staff no puede aprobar")

	assert.Equal(t, entity.RequestPending, f.status(t, pr.ID))
	assert.True(t, f.remaining(t).Equal(dec("1000")))
}

func TestApprove_SoloDesdePending(t *testing.T) {
	f := newFixture(t, "1000")
	pr := f.create(t, "100")
	_, err := f.engine.Reject(context.Background(), pr.ID, f.approver)
	require.NoError(t, err)

	_, err = f.engine.Approve(context.Background(), pr.ID, f.approver)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "Rejected nunca llega a Approved")
}

func TestReject_NoTocaPresupuesto(t *testing.T) {
	f := newFixture(t, "1000")
	pr := f.create(t, "400")

	out, err := f.engine.Reject(context.Background(), pr.ID, f.approver)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestRejected, out.Status)
	assert.True(t, f.remaining(t).Equal(dec("1000")))

	_, err = f.engine.Reject(context.Background(), pr.ID, f.outsider)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestReject_RequiereAprobador(t *testing.T) {
	f := newFixture(t, "1000")
	pr := f.create(t, "400")

	_, err := f.engine.Reject(context.Background(), pr.ID, f.outsider)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestApprove_SolicitudInexistente(t *testing.T) {
	f := newFixture(t, "1000")
	_, err := f.engine.Approve(context.Background(), uuid.New().String(), f.approver)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Start / Cancel / Complete
// ──────────────────────────────────────────────────────────────────────────────

func TestCancel_RestauraPresupuesto(t *testing.T) {
	f := newFixture(t, "1000")
	pr := f.create(t, "350")
	ctx := context.Background()

	_, err := f.engine.Approve(ctx, pr.ID, f.approver)
	require.NoError(t, err)
	require.True(t, f.remaining(t).Equal(dec("650")))

	out, err := f.engine.Cancel(ctx, pr.ID, f.requester)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestCancelled, out.Status)
	assert.True(t, f.remaining(t).Equal(dec("1000")))

	res, err := f.store.Repos().Reservations.GetByRequest(ctx, pr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationReleased, res.Status)
}

func TestCancel_DesdeInProgress(t *testing.T) {
	f := newFixture(t, "1000")
	pr := f.create(t, "200")
	ctx := context.Background()

	_, err := f.engine.Approve(ctx, pr.ID, f.approver)
	require.NoError(t, err)
	_, err = f.engine.Start(ctx, pr.ID, f.requester)
	require.NoError(t, err)
	_, err = f.engine.Cancel(ctx, pr.ID, f.approver)
	require.NoError(t, err)

	assert.True(t, f.remaining(t).Equal(dec("1000")))
}

func TestCancel_DesdePendingEsInvalido(t *testing.T) {
	f := newFixture(t, "1000")
	pr := f.create(t, "200")

	_, err := f.engine.Cancel(context.Background(), pr.ID, f.requester)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancel_TerceroNoAutorizado(t *testing.T) {
	f := newFixture(t, "1000")
	pr := f.create(t, "200")
	ctx := context.Background()
	_, err := f.engine.Approve(ctx, pr.ID, f.approver)
	require.NoError(t, err)

	_, err = f.engine.Cancel(ctx, pr.ID, f.outsider)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.True(t, f.remaining(t).Equal(dec("800")), "el rechazo no libera fondos")
}

func TestComplete_ConsolidaReserva(t *testing.T) {
	f := newFixture(t, "1000")
	pr := f.create(t, "450")
	ctx := context.Background()

	_, err := f.engine.Approve(ctx, pr.ID, f.approver)
	require.NoError(t, err)

	_, err = f.engine.Complete(ctx, pr.ID, f.requester)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "Approved no pasa directo a Completed")

	_, err = f.engine.Start(ctx, pr.ID, f.requester)
	require.NoError(t, err)
	out, err := f.engine.Complete(ctx, pr.ID, f.requester)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestCompleted, out.Status)
	assert.True(t, f.remaining(t).Equal(dec("550")))

	res, err := f.store.Repos().Reservations.GetByRequest(ctx, pr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationCommitted, res.Status)

	_, err = f.engine.Cancel(ctx, pr.ID, f.requester)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "Completed es terminal")
}

func TestHistory_RegistraCadaTransicion(t *testing.T) {
	f := newFixture(t, "1000")
	pr := f.create(t, "100")
	ctx := context.Background()

	_, err := f.engine.Approve(ctx, pr.ID, f.approver)
	require.NoError(t, err)
	_, err = f.engine.Start(ctx, pr.ID, f.requester)
	require.NoError(t, err)

	events, err := f.engine.History(ctx, pr.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, entity.ActionCreated, events[0].Action)
	assert.Equal(t, entity.ActionApproved, events[1].Action)
	assert.Equal(t, entity.RequestPending, events[1].FromStatus)
	assert.Equal(t, entity.RequestApproved, events[1].ToStatus)
	assert.Equal(t, f.approver.UserID, events[1].ActorID)
	assert.Equal(t, entity.ActionStarted, events[2].Action)

	_, err = f.engine.History(ctx, uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

// Dos aprobaciones simultáneas (600 y 500) sobre 1000: exactamente una gana.
func TestApprove_ConcurrenteSoloUnaReserva(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := newFixture(t, "1000")
		a := f.create(t, "600")
		b := f.create(t, "500")

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for idx, id := range []string{a.ID, b.ID} {
			wg.Add(1)
			go func(idx int, id string) {
				defer wg.Done()
				_, errs[idx] = f.engine.Approve(context.Background(), id, f.approver)
			}(idx, id)
		}
		wg.Wait()

		var won []decimal.Decimal
		failures := 0
		for idx, err := range errs {
			if err == nil {
				won = append(won, []decimal.Decimal{dec("600"), dec("500")}[idx])
				continue
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
			failures++
		}
		require.Len(t, won, 1, "exactamente una aprobación debe prosperar")
		assert.Equal(t, 1, failures)
		assert.True(t, f.remaining(t).Equal(dec("1000").Sub(won[0])))
		assert.False(t, f.remaining(t).IsNegative())
	}
}

// Dos aprobaciones simultáneas de la misma solicitud: una gana, la otra ve el estado ya cambiado.
func TestApprove_MismaSolicitudConcurrente(t *testing.T) {
	f := newFixture(t, "1000")
	pr := f.create(t, "100")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.engine.Approve(context.Background(), pr.ID, f.approver)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, domain.ErrConcurrentModification))
	}
	assert.Equal(t, 1, ok)
	assert.True(t, f.remaining(t).Equal(dec("900")), "solo se reserva una vez")
}

// ──────────────────────────────────────────────────────────────────────────────
// Reintento ante almacenamiento no disponible
// ──────────────────────────────────────────────────────────────────────────────

type flakyRunner struct {
	inner    *memory.Store
	failures int
	calls    int
	mu       sync.Mutex
}

func (r *flakyRunner) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	r.mu.Lock()
	r.calls++
	fail := r.calls <= r.failures
	r.mu.Unlock()
	if fail {
		return domain.ErrStoreUnavailable
	}
	return r.inner.Run(ctx, fn)
}

func TestApprove_ReintentaUnaVez(t *testing.T) {
	f := newFixture(t, "1000")
	pr := f.create(t, "100")

	runner := &flakyRunner{inner: f.store, failures: 1}
	uow := unitofwork.New(runner, unitofwork.Options{RetryBackoff: time.Millisecond}, nil)
	engine := procurement.NewEngine(uow, procurement.NewBudgetGuard(), nil)

	_, err := engine.Approve(context.Background(), pr.ID, f.approver)
	require.NoError(t, err)
	assert.Equal(t, 2, runner.calls)
	assert.True(t, f.remaining(t).Equal(dec("900")))
}

func TestApprove_SinSegundoReintento(t *testing.T) {
	f := newFixture(t, "1000")
	pr := f.create(t, "100")

	runner := &flakyRunner{inner: f.store, failures: 5}
	uow := unitofwork.New(runner, unitofwork.Options{RetryBackoff: time.Millisecond}, nil)
	engine := procurement.NewEngine(uow, procurement.NewBudgetGuard(), nil)

	_, err := engine.Approve(context.Background(), pr.ID, f.approver)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Equal(t, 2, runner.calls)
	assert.Equal(t, entity.RequestPending, f.status(t, pr.ID))
}
