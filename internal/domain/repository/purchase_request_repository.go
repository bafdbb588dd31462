package repository

import (
	"context"
	"time"

	"github.com/jhoicas/procurement-api/internal/domain/entity"
)

// PurchaseRequestRepository puerto de persistencia para PurchaseRequest.
// Solo el motor de ciclo de vida escribe a través de este puerto.
type PurchaseRequestRepository interface {
	Create(ctx context.Context, r *entity.PurchaseRequest) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseRequest, error)
	GetForUpdate(ctx context.Context, id string) (*entity.PurchaseRequest, error)
	// UpdateStatus es compare-and-swap sobre (id, expected); devuelve domain.ErrConcurrentModification
	// si el estado almacenado ya no es expected.
	UpdateStatus(ctx context.Context, id string, expected, next entity.RequestStatus, approvedBy string, updatedAt time.Time) error
	CountByRequester(ctx context.Context, userID string) (int, error)
}

// RequestEventRepository historial de transiciones de solicitudes.
type RequestEventRepository interface {
	Append(ctx context.Context, e *entity.RequestEvent) error
	ListByRequest(ctx context.Context, requestID string) ([]*entity.RequestEvent, error)
}
