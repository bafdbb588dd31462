// Package memory implementa el almacén del libro mayor en memoria, para pruebas y modo desarrollo.
// Una transacción toma el candado de escritura, guarda una instantánea y la restaura si fn falla.
package memory

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/jhoicas/procurement-api/internal/application/ports"
	"github.com/jhoicas/procurement-api/internal/domain"
	"github.com/jhoicas/procurement-api/internal/domain/entity"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

type state struct {
	departments  map[string]entity.Department
	budgets      map[string]entity.Budget
	reservations map[string]entity.Reservation
	users        map[string]entity.User
	roles        map[string]entity.Role
	userRoles    []entity.UserRole
	suppliers    map[string]entity.Supplier
	requests     map[string]entity.PurchaseRequest
	events       []entity.RequestEvent
	invitations  map[string]entity.Invitation
}

func newState() *state {
	return &state{
		departments:  make(map[string]entity.Department),
		budgets:      make(map[string]entity.Budget),
		reservations: make(map[string]entity.Reservation),
		users:        make(map[string]entity.User),
		roles:        make(map[string]entity.Role),
		suppliers:    make(map[string]entity.Supplier),
		requests:     make(map[string]entity.PurchaseRequest),
		invitations:  make(map[string]entity.Invitation),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.departments {
		c.departments[k] = v
	}
	for k, v := range s.budgets {
		c.budgets[k] = v
	}
	for k, v := range s.reservations {
		c.reservations[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.roles {
		c.roles[k] = v
	}
	c.userRoles = append(c.userRoles, s.userRoles...)
	for k, v := range s.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range s.requests {
		c.requests[k] = v
	}
	c.events = append(c.events, s.events...)
	for k, v := range s.invitations {
		c.invitations[k] = copyInvitation(v)
	}
	return c
}

// writerWeight peso de una transacción: excluye a todos los lectores.
const writerWeight = 1 << 20

// Store almacén en memoria seguro para uso concurrente.
// El semáforo actúa como candado lector/escritor que respeta el contexto:
// lectores toman peso 1, escritores writerWeight.
type Store struct {
	sem  *semaphore.Weighted
	data *state
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{sem: semaphore.NewWeighted(writerWeight), data: newState()}
}

// acquire espera el candado hasta que ctx vence.
func (s *Store) acquire(ctx context.Context, weight int64) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	if err := s.sem.Acquire(ctx, weight); err != nil {
		return fmt.Errorf("%w: esperando candado: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Run ejecuta fn de forma serializada; si fn falla se restaura la instantánea previa.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	if err := s.acquire(ctx, writerWeight); err != nil {
		return err
	}
	defer s.sem.Release(writerWeight)

	snapshot := s.data.clone()
	if err := fn(s.repos(true)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// Repos devuelve repositorios fuera de transacción (cada operación toma su propio candado).
func (s *Store) Repos() repository.Repos {
	return s.repos(false)
}

// Queries devuelve el repositorio de lectura de solicitudes.
func (s *Store) Queries() *QueryRepo {
	return &QueryRepo{view{s: s}}
}

// Analytics devuelve el repositorio de agregados.
func (s *Store) Analytics() *AnalyticsRepo {
	return &AnalyticsRepo{view{s: s}}
}

func (s *Store) repos(inTx bool) repository.Repos {
	v := view{s: s, inTx: inTx}
	return repository.Repos{
		Departments:   &DepartmentRepo{v},
		Budgets:       &BudgetRepo{v},
		Reservations:  &ReservationRepo{v},
		Users:         &UserRepo{v},
		Roles:         &RoleRepo{v},
		Suppliers:     &SupplierRepo{v},
		Requests:      &PurchaseRequestRepo{v},
		RequestEvents: &RequestEventRepo{v},
		Invitations:   &InvitationRepo{v},
	}
}

// view da acceso al estado; dentro de Run el candado ya está tomado.
type view struct {
	s    *Store
	inTx bool
}

func (v view) read(ctx context.Context, fn func(st *state) error) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	if !v.inTx {
		if err := v.s.acquire(ctx, 1); err != nil {
			return err
		}
		defer v.s.sem.Release(1)
	}
	return fn(v.s.data)
}

func (v view) write(ctx context.Context, fn func(st *state) error) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	if !v.inTx {
		if err := v.s.acquire(ctx, writerWeight); err != nil {
			return err
		}
		defer v.s.sem.Release(writerWeight)
	}
	return fn(v.s.data)
}

func checkCtx(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func constraint(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrConstraintViolation, fmt.Sprintf(format, args...))
}
