// Package onboarding emite y canjea invitaciones de registro.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/procurement-api/internal/application/unitofwork"
	"github.com/jhoicas/procurement-api/internal/domain"
	"github.com/jhoicas/procurement-api/internal/domain/entity"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
	"github.com/jhoicas/procurement-api/pkg/logger"
)

// maxPasswordBytes límite de bcrypt; se mide en bytes, no en caracteres.
const maxPasswordBytes = 72

// PasswordHasher puerto para derivar el hash de la credencial.
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// TokenGenerator puerto para producir tokens no adivinables.
type TokenGenerator interface {
	NewToken() (string, error)
}

// Options parámetros del servicio.
type Options struct {
	TTL               time.Duration // vigencia de la invitación (por defecto 7 días)
	MinPasswordLength int           // por defecto 8
}

// IssueInput datos de una invitación nueva.
type IssueInput struct {
	Email        string
	FirstName    string
	LastName     string
	DepartmentID string
	RoleIDs      []string
}

// InvitationView invitación con nombres resueltos para la página de registro.
type InvitationView struct {
	Invitation     entity.Invitation
	DepartmentName string
	InviterName    string
	Roles          []*entity.Role
}

// Service casos de uso de invitación y registro.
type Service struct {
	uow    *unitofwork.Executor
	hasher PasswordHasher
	tokens TokenGenerator
	opts   Options
	log    *logger.Logger
	now    func() time.Time
}

// NewService construye el servicio.
func NewService(uow *unitofwork.Executor, hasher PasswordHasher, tokens TokenGenerator, opts Options, log *logger.Logger) *Service {
	if opts.TTL <= 0 {
		opts.TTL = 7 * 24 * time.Hour
	}
	if opts.MinPasswordLength <= 0 {
		opts.MinPasswordLength = 8
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{uow: uow, hasher: hasher, tokens: tokens, opts: opts, log: log, now: time.Now}
}

// WithClock reemplaza el reloj (pruebas).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Issue crea una invitación Pending. Falla con ErrDuplicateInvitation si ya hay una vigente
// para el email; las pendientes vencidas se marcan Expired en la misma transacción.
func (s *Service) Issue(ctx context.Context, in IssueInput, issuedBy string) (*entity.Invitation, error) {
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email inválido", domain.ErrInvalidInput)
	}
	if in.DepartmentID == "" || len(in.RoleIDs) == 0 {
		return nil, fmt.Errorf("%w: departamento y al menos un rol son obligatorios", domain.ErrInvalidInput)
	}
	token, err := s.tokens.NewToken()
	if err != nil {
		return nil, fmt.Errorf("issue: generar token: %w", err)
	}

	var out *entity.Invitation
	err = s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		issuer, err := repos.Users.GetByID(ctx, issuedBy)
		if err != nil {
			return fmt.Errorf("issue: obtener emisor: %w", err)
		}
		if issuer == nil || !issuer.IsActive {
			return fmt.Errorf("%w: emisor inexistente o inactivo", domain.ErrUnauthorized)
		}
		existing, err := repos.Users.GetByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("issue: buscar usuario: %w", err)
		}
		if existing != nil {
			return fmt.Errorf("%w: ya existe un usuario con email %s", domain.ErrConstraintViolation, email)
		}
		dept, err := repos.Departments.GetByID(ctx, in.DepartmentID)
		if err != nil {
			return fmt.Errorf("issue: obtener departamento: %w", err)
		}
		if dept == nil {
			return fmt.Errorf("%w: departamento %s inexistente", domain.ErrConstraintViolation, in.DepartmentID)
		}
		for _, roleID := range in.RoleIDs {
			role, err := repos.Roles.GetByID(ctx, roleID)
			if err != nil {
				return fmt.Errorf("issue: obtener rol: %w", err)
			}
			if role == nil {
				return fmt.Errorf("%w: rol %s inexistente", domain.ErrConstraintViolation, roleID)
			}
		}

		now := s.now()
		pending, err := repos.Invitations.ListPendingByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("issue: invitaciones pendientes: %w", err)
		}
		for _, p := range pending {
			if p.IsOpen(now) {
				return domain.ErrDuplicateInvitation
			}
			if err := repos.Invitations.UpdateStatus(ctx, p.ID, entity.InvitationPending, entity.InvitationExpired, nil); err != nil {
				return fmt.Errorf("issue: expirar invitación previa: %w", err)
			}
		}

		inv := &entity.Invitation{
			ID:           uuid.New().String(),
			Email:        email,
			FirstName:    strings.TrimSpace(in.FirstName),
			LastName:     strings.TrimSpace(in.LastName),
			DepartmentID: in.DepartmentID,
			RoleIDs:      append([]string(nil), in.RoleIDs...),
			Token:        token,
			InvitedBy:    issuedBy,
			Status:       entity.InvitationPending,
			ExpiresAt:    now.Add(s.opts.TTL),
			CreatedAt:    now,
		}
		if err := repos.Invitations.Create(ctx, inv); err != nil {
			return err
		}
		out = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("invitation_id", out.ID).
		Str("department_id", out.DepartmentID).
		Str("actor_id", issuedBy).
		Time("expires_at", out.ExpiresAt).
		Msg("invitación emitida")
	return out, nil
}

// Redeem canjea la invitación: crea el usuario con la credencial hasheada, asigna los
// roles y marca la invitación Accepted, todo en una transacción.
func (s *Service) Redeem(ctx context.Context, token, password string) (*entity.User, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: invitación", domain.ErrNotFound)
	}
	if len(password) < s.opts.MinPasswordLength {
		return nil, fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrInvalidInput, s.opts.MinPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: la contraseña no puede superar %d bytes", domain.ErrInvalidInput, maxPasswordBytes)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("redeem: hash: %w", err)
	}

	var out *entity.User
	err = s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		inv, err := repos.Invitations.GetByTokenForUpdate(ctx, token)
		if err != nil {
			return fmt.Errorf("redeem: obtener invitación: %w", err)
		}
		if inv == nil {
			return fmt.Errorf("%w: invitación", domain.ErrNotFound)
		}
		now := s.now()
		switch inv.Status {
		case entity.InvitationAccepted, entity.InvitationCancelled:
			return domain.ErrAlreadyUsed
		case entity.InvitationExpired:
			return domain.ErrExpired
		}
		if inv.IsOverdue(now) {
			return domain.ErrExpired
		}

		existing, err := repos.Users.GetByEmail(ctx, inv.Email)
		if err != nil {
			return fmt.Errorf("redeem: buscar usuario: %w", err)
		}
		if existing != nil {
			return fmt.Errorf("%w: ya existe un usuario con email %s", domain.ErrConstraintViolation, inv.Email)
		}

		user := &entity.User{
			ID:           uuid.New().String(),
			FirstName:    inv.FirstName,
			LastName:     inv.LastName,
			Email:        inv.Email,
			PasswordHash: hash,
			DepartmentID: inv.DepartmentID,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := repos.Users.Create(ctx, user); err != nil {
			return fmt.Errorf("redeem: crear usuario: %w", err)
		}
		for _, roleID := range inv.RoleIDs {
			ur := entity.UserRole{UserID: user.ID, RoleID: roleID, AssignedBy: inv.InvitedBy, AssignedAt: now}
			if err := repos.Roles.Assign(ctx, ur); err != nil {
				return fmt.Errorf("redeem: asignar rol: %w", err)
			}
		}
		err = repos.Invitations.UpdateStatus(ctx, inv.ID, entity.InvitationPending, entity.InvitationAccepted, &now)
		if errors.Is(err, domain.ErrConcurrentModification) {
			return domain.ErrAlreadyUsed
		}
		if err != nil {
			return fmt.Errorf("redeem: marcar aceptada: %w", err)
		}
		out = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("user_id", out.ID).
		Str("department_id", out.DepartmentID).
		Msg("invitación canjeada")
	return out, nil
}

// Lookup devuelve la invitación con departamento, invitador y roles resueltos.
func (s *Service) Lookup(ctx context.Context, token string) (*InvitationView, error) {
	var out *InvitationView
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		inv, err := repos.Invitations.GetByToken(ctx, token)
		if err != nil {
			return err
		}
		if inv == nil {
			return fmt.Errorf("%w: invitación", domain.ErrNotFound)
		}
		view := &InvitationView{Invitation: *inv}
		if dept, err := repos.Departments.GetByID(ctx, inv.DepartmentID); err != nil {
			return err
		} else if dept != nil {
			view.DepartmentName = dept.Name
		}
		if inviter, err := repos.Users.GetByID(ctx, inv.InvitedBy); err != nil {
			return err
		} else if inviter != nil {
			view.InviterName = inviter.FullName()
		}
		for _, roleID := range inv.RoleIDs {
			role, err := repos.Roles.GetByID(ctx, roleID)
			if err != nil {
				return err
			}
			if role != nil {
				view.Roles = append(view.Roles, role)
			}
		}
		out = view
		return nil
	})
	return out, err
}

// Cancel anula una invitación Pending.
func (s *Service) Cancel(ctx context.Context, invitationID, actorID string) (*entity.Invitation, error) {
	var out *entity.Invitation
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		inv, err := repos.Invitations.GetByID(ctx, invitationID)
		if err != nil {
			return err
		}
		if inv == nil {
			return fmt.Errorf("%w: invitación %s", domain.ErrNotFound, invitationID)
		}
		if inv.Status != entity.InvitationPending {
			return &domain.TransitionError{From: string(inv.Status), To: string(entity.InvitationCancelled)}
		}
		if err := repos.Invitations.UpdateStatus(ctx, inv.ID, entity.InvitationPending, entity.InvitationCancelled, nil); err != nil {
			return err
		}
		inv.Status = entity.InvitationCancelled
		out = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("invitation_id", out.ID).Str("actor_id", actorID).Msg("invitación cancelada")
	return out, nil
}

// ListPending lista las invitaciones pendientes, más recientes primero.
func (s *Service) ListPending(ctx context.Context) ([]*entity.Invitation, error) {
	var out []*entity.Invitation
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		var err error
		out, err = repos.Invitations.ListPending(ctx)
		return err
	})
	return out, err
}

// ExpireOverdue marca Expired las invitaciones pendientes vencidas.
func (s *Service) ExpireOverdue(ctx context.Context) (int, error) {
	n := 0
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		var err error
		n, err = repos.Invitations.ExpireOverdue(ctx, s.now())
		return err
	})
	if err == nil && n > 0 {
		s.log.Info().Int("count", n).Msg("invitaciones expiradas")
	}
	return n, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
