package repository

import (
	"context"
	"time"

	"github.com/jhoicas/procurement-api/internal/domain/entity"
)

// InvitationRepository puerto de persistencia para Invitation.
type InvitationRepository interface {
	Create(ctx context.Context, inv *entity.Invitation) error
	GetByID(ctx context.Context, id string) (*entity.Invitation, error)
	GetByToken(ctx context.Context, token string) (*entity.Invitation, error)
	// GetByTokenForUpdate bloquea la invitación durante el canje.
	GetByTokenForUpdate(ctx context.Context, token string) (*entity.Invitation, error)
	ListPendingByEmail(ctx context.Context, email string) ([]*entity.Invitation, error)
	ListPending(ctx context.Context) ([]*entity.Invitation, error)
	// UpdateStatus es compare-and-swap sobre (id, expected).
	UpdateStatus(ctx context.Context, id string, expected, next entity.InvitationStatus, acceptedAt *time.Time) error
	// ExpireOverdue marca como Expired las pendientes vencidas a now; devuelve cuántas cambió.
	ExpireOverdue(ctx context.Context, now time.Time) (int, error)
}
