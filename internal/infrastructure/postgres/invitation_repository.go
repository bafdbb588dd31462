package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/procurement-api/internal/domain"
	"github.com/jhoicas/procurement-api/internal/domain/entity"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
)

var _ repository.InvitationRepository = (*InvitationRepo)(nil)

// índice parcial único sobre lower(email) WHERE status = 'Pending'.
const pendingEmailIndex = "invitations_pending_email_key"

// InvitationRepo implementación de InvitationRepository.
type InvitationRepo struct {
	q Querier
}

// NewInvitationRepository construye el adaptador.
func NewInvitationRepository(q Querier) *InvitationRepo {
	return &InvitationRepo{q: q}
}

const invitationColumns = `id, email, first_name, last_name, department_id, role_ids, token, invited_by,
	status, expires_at, accepted_at, created_at`

func scanInvitation(row pgx.Row) (*entity.Invitation, error) {
	var inv entity.Invitation
	var invitedBy *string
	if err := row.Scan(&inv.ID, &inv.Email, &inv.FirstName, &inv.LastName, &inv.DepartmentID, &inv.RoleIDs,
		&inv.Token, &invitedBy, &inv.Status, &inv.ExpiresAt, &inv.AcceptedAt, &inv.CreatedAt); err != nil {
		return nil, err
	}
	inv.InvitedBy = derefStr(invitedBy)
	return &inv, nil
}

func (r *InvitationRepo) Create(ctx context.Context, inv *entity.Invitation) error {
	roleIDs := inv.RoleIDs
	if roleIDs == nil {
		roleIDs = []string{}
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO invitations (`+invitationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		inv.ID, inv.Email, inv.FirstName, inv.LastName, inv.DepartmentID, roleIDs,
		inv.Token, nullIfEmpty(inv.InvitedBy), inv.Status, inv.ExpiresAt, inv.AcceptedAt, inv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) && constraintName(err) == pendingEmailIndex {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateInvitation, inv.Email)
		}
		return wrap("insert invitation", err)
	}
	return nil
}

func (r *InvitationRepo) GetByID(ctx context.Context, id string) (*entity.Invitation, error) {
	return r.get(ctx, `SELECT `+invitationColumns+` FROM invitations WHERE id = $1`, id)
}

func (r *InvitationRepo) GetByToken(ctx context.Context, token string) (*entity.Invitation, error) {
	return r.get(ctx, `SELECT `+invitationColumns+` FROM invitations WHERE token = $1`, token)
}

// GetByTokenForUpdate bloquea la fila: un segundo canje concurrente espera y luego ve Accepted.
func (r *InvitationRepo) GetByTokenForUpdate(ctx context.Context, token string) (*entity.Invitation, error) {
	return r.get(ctx, `SELECT `+invitationColumns+` FROM invitations WHERE token = $1 FOR UPDATE`, token)
}

func (r *InvitationRepo) get(ctx context.Context, query, arg string) (*entity.Invitation, error) {
	inv, err := scanInvitation(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get invitation", err)
	}
	return inv, nil
}

func (r *InvitationRepo) ListPendingByEmail(ctx context.Context, email string) ([]*entity.Invitation, error) {
	return r.list(ctx, `
		SELECT `+invitationColumns+` FROM invitations
		WHERE status = 'Pending' AND lower(email) = lower($1)
		ORDER BY created_at DESC
		FOR UPDATE`, email)
}

func (r *InvitationRepo) ListPending(ctx context.Context) ([]*entity.Invitation, error) {
	return r.list(ctx, `SELECT `+invitationColumns+` FROM invitations WHERE status = 'Pending' ORDER BY created_at DESC`)
}

func (r *InvitationRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Invitation, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("list invitations", err)
	}
	defer rows.Close()
	var out []*entity.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, wrap("scan invitation", err)
		}
		out = append(out, inv)
	}
	return out, wrap("list invitations", rows.Err())
}

// UpdateStatus es compare-and-swap sobre (id, expected).
func (r *InvitationRepo) UpdateStatus(ctx context.Context, id string, expected, next entity.InvitationStatus, acceptedAt *time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE invitations
		SET status = $3, accepted_at = COALESCE($4, accepted_at)
		WHERE id = $1 AND status = $2`,
		id, expected, next, acceptedAt)
	if err != nil {
		return wrap("update invitation status", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invitations WHERE id = $1)`, id).Scan(&exists); err != nil {
		return wrap("check invitation", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return fmt.Errorf("%w: invitación %s ya no está en %s", domain.ErrConcurrentModification, id, expected)
}

func (r *InvitationRepo) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE invitations SET status = 'Expired' WHERE status = 'Pending' AND expires_at < $1`, now)
	if err != nil {
		return 0, wrap("expire invitations", err)
	}
	return int(tag.RowsAffected()), nil
}
