package onboarding_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/procurement-api/internal/application/onboarding"
	"github.com/jhoicas/procurement-api/internal/application/unitofwork"
	"github.com/jhoicas/procurement-api/internal/domain"
	"github.com/jhoicas/procurement-api/internal/domain/entity"
	"github.com/jhoicas/procurement-api/internal/infrastructure/memory"
	"github.com/jhoicas/procurement-api/internal/infrastructure/security"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	store   *memory.Store
	svc     *onboarding.Service
	clock   *clock
	adminID string
	deptID  string
	roleID  string
}

const ttl = 48 * time.Hour

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	repos := store.Repos()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	f := &fixture{
		store:   store,
		clock:   &clock{now: now},
		adminID: uuid.New().String(),
		deptID:  uuid.New().String(),
		roleID:  uuid.New().String(),
	}
	require.NoError(t, repos.Departments.Create(ctx, &entity.Department{ID: f.deptID, Name: "Finance"}))
	require.NoError(t, repos.Roles.Create(ctx, &entity.Role{ID: f.roleID, Name: "approver", CanApprove: true, MaxBudgetLimit: decimal.NewFromInt(5000)}))
	require.NoError(t, repos.Users.Create(ctx, &entity.User{
		ID: f.adminID, FirstName: "Ada", LastName: "Admin", Email: "admin@uni.edu", IsActive: true, CreatedAt: now, UpdatedAt: now,
	}))

	uow := unitofwork.New(store, unitofwork.Options{Timeout: 5 * time.Second}, nil)
	f.svc = onboarding.NewService(uow,
		security.NewBcryptHasher(bcrypt.MinCost),
		security.NewRandomTokenGenerator(),
		onboarding.Options{TTL: ttl},
		nil,
	).WithClock(f.clock.Now)
	return f
}

func (f *fixture) issue(t *testing.T, email string) *entity.Invitation {
	t.Helper()
	inv, err := f.svc.Issue(context.Background(), onboarding.IssueInput{
		Email: email, FirstName: "Nora", LastName: "Nueva", DepartmentID: f.deptID, RoleIDs: []string{f.roleID},
	}, f.adminID)
	require.NoError(t, err)
	return inv
}

// ──────────────────────────────────────────────────────────────────────────────
// Issue
// ──────────────────────────────────────────────────────────────────────────────

func TestIssue_CreaInvitacionPendiente(t *testing.T) {
	f := newFixture(t)
	inv := f.issue(t, "  Nora@Uni.EDU ")

	assert.Equal(t, entity.InvitationPending, inv.Status)
	assert.Equal(t, "nora@uni.edu", inv.Email, "el email se normaliza")
	assert.NotEmpty(t, inv.Token)
	assert.Equal(t, f.clock.Now().Add(ttl), inv.ExpiresAt)
}

func TestIssue_DuplicadaPendiente(t *testing.T) {
	f := newFixture(t)
	f.issue(t, "nora@uni.edu")

	_, err := f.svc.Issue(context.Background(), onboarding.IssueInput{
		Email: "NORA@uni.edu", DepartmentID: f.deptID, RoleIDs: []string{f.roleID},
	}, f.adminID)
	assert.ErrorIs(t, err, domain.ErrDuplicateInvitation)
}

func TestIssue_TrasExpiracionPermiteNueva(t *testing.T) {
	f := newFixture(t)
	first := f.issue(t, "nora@uni.edu")

	f.clock.Advance(ttl + time.Minute)
	second := f.issue(t, "nora@uni.edu")
	assert.NotEqual(t, first.Token, second.Token)

	old, err := f.store.Repos().Invitations.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvitationExpired, old.Status, "la vencida queda marcada Expired")
}

func TestIssue_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Issue(ctx, onboarding.IssueInput{Email: "sin-arroba", DepartmentID: f.deptID, RoleIDs: []string{f.roleID}}, f.adminID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Issue(ctx, onboarding.IssueInput{Email: "a@uni.edu", DepartmentID: uuid.New().String(), RoleIDs: []string{f.roleID}}, f.adminID)
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)

	_, err = f.svc.Issue(ctx, onboarding.IssueInput{Email: "a@uni.edu", DepartmentID: f.deptID, RoleIDs: []string{uuid.New().String()}}, f.adminID)
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)

	_, err = f.svc.Issue(ctx, onboarding.IssueInput{Email: "admin@uni.edu", DepartmentID: f.deptID, RoleIDs: []string{f.roleID}}, f.adminID)
	assert.ErrorIs(t, err, domain.ErrConstraintViolation, "el email ya pertenece a un usuario")

	_, err = f.svc.Issue(ctx, onboarding.IssueInput{Email: "a@uni.edu", DepartmentID: f.deptID, RoleIDs: []string{f.roleID}}, uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// ──────────────────────────────────────────────────────────────────────────────
// Redeem
// ──────────────────────────────────────────────────────────────────────────────

func TestRedeem_CreaUsuarioConRoles(t *testing.T) {
	f := newFixture(t)
	inv := f.issue(t, "nora@uni.edu")
	ctx := context.Background()

	user, err := f.svc.Redeem(ctx, inv.Token, "contraseña-segura")
	require.NoError(t, err)
	assert.Equal(t, "nora@uni.edu", user.Email)
	assert.Equal(t, f.deptID, user.DepartmentID)
	assert.True(t, user.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("contraseña-segura")))

	roles, err := f.store.Repos().Roles.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, f.roleID, roles[0].ID)

	stored, err := f.store.Repos().Invitations.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvitationAccepted, stored.Status)
	require.NotNil(t, stored.AcceptedAt)

	_, err = f.svc.Redeem(ctx, inv.Token, "contraseña-segura")
	assert.ErrorIs(t, err, domain.ErrAlreadyUsed)
}

func TestRedeem_Errores(t *testing.T) {
	f := newFixture(t)
	inv := f.issue(t, "nora@uni.edu")
	ctx := context.Background()

	_, err := f.svc.Redeem(ctx, "token-desconocido", "contraseña-segura")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Redeem(ctx, inv.Token, "corta")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	f.clock.Advance(ttl + time.Second)
	_, err = f.svc.Redeem(ctx, inv.Token, "contraseña-segura")
	assert.ErrorIs(t, err, domain.ErrExpired)

	user, err := f.store.Repos().Users.GetByEmail(ctx, "nora@uni.edu")
	require.NoError(t, err)
	assert.Nil(t, user, "una invitación vencida no crea usuario")
}

// bcrypt limita a 72 bytes: "ñ" ocupa dos.
func TestRedeem_ClaveMultibyte(t *testing.T) {
	f := newFixture(t)
	inv := f.issue(t, "nora@uni.edu")
	ctx := context.Background()

	_, err := f.svc.Redeem(ctx, inv.Token, strings.Repeat("ñ", 40))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	user, err := f.svc.Redeem(ctx, inv.Token, strings.Repeat("ñ", 36))
	require.NoError(t, err)
	assert.Equal(t, "nora@uni.edu", user.Email)
}

func TestRedeem_Cancelada(t *testing.T) {
	f := newFixture(t)
	inv := f.issue(t, "nora@uni.edu")
	ctx := context.Background()

	_, err := f.svc.Cancel(ctx, inv.ID, f.adminID)
	require.NoError(t, err)

	_, err = f.svc.Redeem(ctx, inv.Token, "contraseña-segura")
	assert.ErrorIs(t, err, domain.ErrAlreadyUsed)

	_, err = f.svc.Cancel(ctx, inv.ID, f.adminID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// Dos canjes simultáneos del mismo token: un usuario y un AlreadyUsed.
func TestRedeem_ConcurrenteUnSoloUsuario(t *testing.T) {
	f := newFixture(t)
	inv := f.issue(t, "nora@uni.edu")
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Redeem(ctx, inv.Token, "contraseña-segura")
		}(i)
	}
	wg.Wait()

	ok, used := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrAlreadyUsed):
			used++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, used)

	users, err := f.store.Repos().Users.ListByDepartment(ctx, f.deptID)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lookup / ExpireOverdue
// ──────────────────────────────────────────────────────────────────────────────

func TestLookup_ResuelveNombres(t *testing.T) {
	f := newFixture(t)
	inv := f.issue(t, "nora@uni.edu")

	view, err := f.svc.Lookup(context.Background(), inv.Token)
	require.NoError(t, err)
	assert.Equal(t, "Finance", view.DepartmentName)
	assert.Equal(t, "Ada Admin", view.InviterName)
	require.Len(t, view.Roles, 1)
	assert.Equal(t, "approver", view.Roles[0].Name)

	_, err = f.svc.Lookup(context.Background(), "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExpireOverdue(t *testing.T) {
	f := newFixture(t)
	f.issue(t, "a@uni.edu")
	f.clock.Advance(time.Hour)
	f.issue(t, "b@uni.edu")

	f.clock.Advance(ttl - 30*time.Minute)
	n, err := f.svc.ExpireOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n, "solo la primera venció")

	pending, err := f.svc.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "b@uni.edu", pending[0].Email)
}
