package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/procurement-api/internal/domain"
	"github.com/jhoicas/procurement-api/internal/domain/entity"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
)

var (
	_ repository.PurchaseRequestRepository = (*PurchaseRequestRepo)(nil)
	_ repository.RequestEventRepository    = (*RequestEventRepo)(nil)
	_ repository.InvitationRepository      = (*InvitationRepo)(nil)
)

// PurchaseRequestRepo solicitudes en memoria.
type PurchaseRequestRepo struct{ view }

func (r *PurchaseRequestRepo) Create(ctx context.Context, pr *entity.PurchaseRequest) error {
	return r.write(ctx, func(st *state) error {
		if _, ok := st.requests[pr.ID]; ok {
			return constraint("solicitud %s duplicada", pr.ID)
		}
		if _, ok := st.users[pr.RequesterID]; !ok {
			return constraint("solicitante %s inexistente", pr.RequesterID)
		}
		if _, ok := st.budgets[pr.BudgetID]; !ok {
			return constraint("presupuesto %s inexistente", pr.BudgetID)
		}
		if _, ok := st.departments[pr.DepartmentID]; !ok {
			return constraint("departamento %s inexistente", pr.DepartmentID)
		}
		st.requests[pr.ID] = *pr
		return nil
	})
}

func (r *PurchaseRequestRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseRequest, error) {
	var out *entity.PurchaseRequest
	err := r.read(ctx, func(st *state) error {
		if pr, ok := st.requests[id]; ok {
			out = &pr
		}
		return nil
	})
	return out, err
}

func (r *PurchaseRequestRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *PurchaseRequestRepo) UpdateStatus(ctx context.Context, id string, expected, next entity.RequestStatus, approvedBy string, updatedAt time.Time) error {
	return r.write(ctx, func(st *state) error {
		pr, ok := st.requests[id]
		if !ok {
			return domain.ErrNotFound
		}
		if pr.Status != expected {
			return domain.ErrConcurrentModification
		}
		pr.Status = next
		if approvedBy != "" {
			pr.ApprovedBy = approvedBy
		}
		pr.UpdatedAt = updatedAt
		st.requests[id] = pr
		return nil
	})
}

func (r *PurchaseRequestRepo) CountByRequester(ctx context.Context, userID string) (int, error) {
	n := 0
	err := r.read(ctx, func(st *state) error {
		for _, pr := range st.requests {
			if pr.RequesterID == userID {
				n++
			}
		}
		return nil
	})
	return n, err
}

// RequestEventRepo historial en memoria (solo anexar).
type RequestEventRepo struct{ view }

func (r *RequestEventRepo) Append(ctx context.Context, e *entity.RequestEvent) error {
	return r.write(ctx, func(st *state) error {
		st.events = append(st.events, *e)
		return nil
	})
}

func (r *RequestEventRepo) ListByRequest(ctx context.Context, requestID string) ([]*entity.RequestEvent, error) {
	var out []*entity.RequestEvent
	err := r.read(ctx, func(st *state) error {
		for _, e := range st.events {
			if e.RequestID == requestID {
				e := e
				out = append(out, &e)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, err
}

// InvitationRepo invitaciones en memoria.
type InvitationRepo struct{ view }

func (r *InvitationRepo) Create(ctx context.Context, inv *entity.Invitation) error {
	return r.write(ctx, func(st *state) error {
		for _, other := range st.invitations {
			if other.Token == inv.Token {
				return constraint("token de invitación duplicado")
			}
			if other.Status == entity.InvitationPending && inv.Status == entity.InvitationPending &&
				strings.EqualFold(other.Email, inv.Email) {
				return domain.ErrDuplicateInvitation
			}
		}
		if _, ok := st.departments[inv.DepartmentID]; !ok {
			return constraint("departamento %s inexistente", inv.DepartmentID)
		}
		st.invitations[inv.ID] = copyInvitation(*inv)
		return nil
	})
}

func (r *InvitationRepo) GetByID(ctx context.Context, id string) (*entity.Invitation, error) {
	var out *entity.Invitation
	err := r.read(ctx, func(st *state) error {
		if inv, ok := st.invitations[id]; ok {
			c := copyInvitation(inv)
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *InvitationRepo) GetByToken(ctx context.Context, token string) (*entity.Invitation, error) {
	var out *entity.Invitation
	err := r.read(ctx, func(st *state) error {
		for _, inv := range st.invitations {
			if inv.Token == token {
				c := copyInvitation(inv)
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *InvitationRepo) GetByTokenForUpdate(ctx context.Context, token string) (*entity.Invitation, error) {
	return r.GetByToken(ctx, token)
}

func (r *InvitationRepo) ListPendingByEmail(ctx context.Context, email string) ([]*entity.Invitation, error) {
	return r.filter(ctx, func(inv entity.Invitation) bool {
		return inv.Status == entity.InvitationPending && strings.EqualFold(inv.Email, email)
	})
}

func (r *InvitationRepo) ListPending(ctx context.Context) ([]*entity.Invitation, error) {
	return r.filter(ctx, func(inv entity.Invitation) bool { return inv.Status == entity.InvitationPending })
}

func (r *InvitationRepo) UpdateStatus(ctx context.Context, id string, expected, next entity.InvitationStatus, acceptedAt *time.Time) error {
	return r.write(ctx, func(st *state) error {
		inv, ok := st.invitations[id]
		if !ok {
			return domain.ErrNotFound
		}
		if inv.Status != expected {
			return domain.ErrConcurrentModification
		}
		inv.Status = next
		if acceptedAt != nil {
			t := *acceptedAt
			inv.AcceptedAt = &t
		}
		st.invitations[id] = inv
		return nil
	})
}

func (r *InvitationRepo) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	n := 0
	err := r.write(ctx, func(st *state) error {
		for id, inv := range st.invitations {
			if inv.Status == entity.InvitationPending && inv.IsOverdue(now) {
				inv.Status = entity.InvitationExpired
				st.invitations[id] = inv
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *InvitationRepo) filter(ctx context.Context, keep func(entity.Invitation) bool) ([]*entity.Invitation, error) {
	var out []*entity.Invitation
	err := r.read(ctx, func(st *state) error {
		for _, inv := range st.invitations {
			if keep(inv) {
				c := copyInvitation(inv)
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, err
}

func copyInvitation(inv entity.Invitation) entity.Invitation {
	inv.RoleIDs = append([]string(nil), inv.RoleIDs...)
	if inv.AcceptedAt != nil {
		t := *inv.AcceptedAt
		inv.AcceptedAt = &t
	}
	return inv
}
