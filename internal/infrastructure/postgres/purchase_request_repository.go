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

var (
	_ repository.PurchaseRequestRepository = (*PurchaseRequestRepo)(nil)
	_ repository.RequestEventRepository    = (*RequestEventRepo)(nil)
)

// PurchaseRequestRepo implementación de PurchaseRequestRepository.
type PurchaseRequestRepo struct {
	q Querier
}

// NewPurchaseRequestRepository construye el adaptador.
func NewPurchaseRequestRepository(q Querier) *PurchaseRequestRepo {
	return &PurchaseRequestRepo{q: q}
}

const requestColumns = `pr.id, pr.requester_id, pr.budget_id, pr.department_id, pr.amount, pr.status,
	pr.description, pr.justification, pr.funding_source, pr.request_date, pr.approved_by,
	pr.created_at, pr.updated_at`

// requestDest devuelve los destinos de Scan para requestColumns.
func requestDest(pr *entity.PurchaseRequest, approvedBy **string) []any {
	return []any{
		&pr.ID, &pr.RequesterID, &pr.BudgetID, &pr.DepartmentID, &pr.Amount, &pr.Status,
		&pr.Description, &pr.Justification, &pr.FundingSource, &pr.RequestDate, approvedBy,
		&pr.CreatedAt, &pr.UpdatedAt,
	}
}

func (r *PurchaseRequestRepo) Create(ctx context.Context, pr *entity.PurchaseRequest) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchase_requests (id, requester_id, budget_id, department_id, amount, status,
		    description, justification, funding_source, request_date, approved_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		pr.ID, pr.RequesterID, pr.BudgetID, pr.DepartmentID, pr.Amount, pr.Status,
		pr.Description, pr.Justification, pr.FundingSource, pr.RequestDate, nullIfEmpty(pr.ApprovedBy),
		pr.CreatedAt, pr.UpdatedAt)
	return wrap("insert purchase request", err)
}

func (r *PurchaseRequestRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseRequest, error) {
	return r.get(ctx, `SELECT `+requestColumns+` FROM purchase_requests pr WHERE pr.id = $1`, id)
}

// GetForUpdate bloquea la fila de la solicitud durante la transición.
func (r *PurchaseRequestRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseRequest, error) {
	return r.get(ctx, `SELECT `+requestColumns+` FROM purchase_requests pr WHERE pr.id = $1 FOR UPDATE`, id)
}

func (r *PurchaseRequestRepo) get(ctx context.Context, query, id string) (*entity.PurchaseRequest, error) {
	var pr entity.PurchaseRequest
	var approvedBy *string
	if err := r.q.QueryRow(ctx, query, id).Scan(requestDest(&pr, &approvedBy)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get purchase request", err)
	}
	pr.ApprovedBy = derefStr(approvedBy)
	return &pr, nil
}

// UpdateStatus es compare-and-swap: solo actualiza si el estado almacenado sigue siendo expected.
func (r *PurchaseRequestRepo) UpdateStatus(ctx context.Context, id string, expected, next entity.RequestStatus, approvedBy string, updatedAt time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE purchase_requests
		SET status = $3, approved_by = COALESCE($4, approved_by), updated_at = $5
		WHERE id = $1 AND status = $2`,
		id, expected, next, nullIfEmpty(approvedBy), updatedAt)
	if err != nil {
		return wrap("update purchase request status", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM purchase_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return wrap("check purchase request", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return fmt.Errorf("%w: solicitud %s ya no está en %s", domain.ErrConcurrentModification, id, expected)
}

func (r *PurchaseRequestRepo) CountByRequester(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM purchase_requests WHERE requester_id = $1`, userID).Scan(&n)
	return n, wrap("count purchase requests", err)
}

// RequestEventRepo historial de transiciones (solo anexar).
type RequestEventRepo struct {
	q Querier
}

// NewRequestEventRepository construye el adaptador.
func NewRequestEventRepository(q Querier) *RequestEventRepo {
	return &RequestEventRepo{q: q}
}

func (r *RequestEventRepo) Append(ctx context.Context, e *entity.RequestEvent) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO request_events (id, request_id, actor_id, action, from_status, to_status, amount, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.RequestID, e.ActorID, e.Action, nullIfEmpty(string(e.FromStatus)), e.ToStatus, e.Amount, e.OccurredAt)
	return wrap("insert request event", err)
}

func (r *RequestEventRepo) ListByRequest(ctx context.Context, requestID string) ([]*entity.RequestEvent, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, request_id, actor_id, action, COALESCE(from_status, ''), to_status, amount, occurred_at
		FROM request_events WHERE request_id = $1
		ORDER BY occurred_at, id`, requestID)
	if err != nil {
		return nil, wrap("list request events", err)
	}
	defer rows.Close()
	var out []*entity.RequestEvent
	for rows.Next() {
		var e entity.RequestEvent
		if err := rows.Scan(&e.ID, &e.RequestID, &e.ActorID, &e.Action, &e.FromStatus, &e.ToStatus, &e.Amount, &e.OccurredAt); err != nil {
			return nil, wrap("scan request event", err)
		}
		out = append(out, &e)
	}
	return out, wrap("list request events", rows.Err())
}
